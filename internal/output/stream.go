package output

import (
	"github.com/tyemirov/mdctx/internal/types"
)

// DocumentRenderer emits the sections of a context document in the order they are called.
type DocumentRenderer interface {
	Title() error
	GitInformation(information types.GitInformation) error
	RepositoryMap(trackedFiles []string) error
	FilesHeader() error
	File(section types.FileSection) error
	Prompt(text string) error
	Flush() error
}
