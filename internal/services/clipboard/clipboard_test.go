package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceCopyWritesText(t *testing.T) {
	var copied string
	service := &Service{writeAll: func(text string) error {
		copied = text
		return nil
	}}
	require.NoError(t, service.Copy("# Repository Context\n"))
	require.Equal(t, "# Repository Context\n", copied)
}

func TestServiceCopyWrapsWriteErrors(t *testing.T) {
	writeFailure := errors.New("xclip exited 1")
	service := &Service{writeAll: func(string) error { return writeFailure }}
	copyError := service.Copy("text")
	require.ErrorIs(t, copyError, writeFailure)
	require.Contains(t, copyError.Error(), "write clipboard")
}

func TestServiceCopyReportsUnsupportedClipboard(t *testing.T) {
	service := &Service{unsupported: true, writeAll: func(string) error {
		t.Fatal("writeAll must not run without clipboard support")
		return nil
	}}
	require.ErrorIs(t, service.Copy("text"), ErrUnsupported)
}
