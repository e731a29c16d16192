package summary

import (
	"go/ast"
	"go/doc"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

const (
	goFileExtension      = ".go"
	goModFileName        = "go.mod"
	goPackageLabel       = "package"
	goDeclaresLabel      = "declares"
	goMaximumListedNames = 6
	goReceiverSeparator  = "."
)

// goExtractor reports the package clause, its import path when a go.mod can be
// found above the file, the package synopsis and the exported declarations.
type goExtractor struct {
	importPathCache map[string]string
}

func newGoExtractor() *goExtractor {
	return &goExtractor{importPathCache: map[string]string{}}
}

func (extractor *goExtractor) describe(filePath string, content []byte) (string, error) {
	fileSet := token.NewFileSet()
	fileAST, parseError := parser.ParseFile(fileSet, filePath, content, parser.ParseComments|parser.SkipObjectResolution)
	if parseError != nil {
		return "", parseError
	}

	heading := goPackageLabel + " " + fileAST.Name.Name
	if importPath := extractor.importPath(filePath); importPath != "" {
		heading += " (" + importPath + ")"
	}

	var details []string
	if fileAST.Doc != nil {
		var synopsisSource doc.Package
		if synopsis := synopsisSource.Synopsis(fileAST.Doc.Text()); synopsis != "" {
			details = append(details, synopsis)
		}
	}
	if declarations := joinNames(goDeclaresLabel, exportedGoNames(fileAST), goMaximumListedNames); declarations != "" {
		details = append(details, declarations)
	}
	if len(details) == 0 {
		return heading, nil
	}
	return heading + ": " + strings.Join(details, summaryPartSeparator), nil
}

func exportedGoNames(fileAST *ast.File) []string {
	var names []string
	for _, declaration := range fileAST.Decls {
		switch typed := declaration.(type) {
		case *ast.FuncDecl:
			if !typed.Name.IsExported() {
				continue
			}
			if receiver := receiverTypeName(typed); receiver != "" {
				if !ast.IsExported(receiver) {
					continue
				}
				names = append(names, receiver+goReceiverSeparator+typed.Name.Name)
				continue
			}
			names = append(names, typed.Name.Name)
		case *ast.GenDecl:
			if typed.Tok != token.TYPE {
				continue
			}
			for _, specification := range typed.Specs {
				if typeSpecification, isType := specification.(*ast.TypeSpec); isType && typeSpecification.Name.IsExported() {
					names = append(names, typeSpecification.Name.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

func receiverTypeName(function *ast.FuncDecl) string {
	if function.Recv == nil || len(function.Recv.List) == 0 {
		return ""
	}
	expression := function.Recv.List[0].Type
	for {
		switch typed := expression.(type) {
		case *ast.StarExpr:
			expression = typed.X
		case *ast.IndexExpr:
			expression = typed.X
		case *ast.IndexListExpr:
			expression = typed.X
		case *ast.Ident:
			return typed.Name
		default:
			return ""
		}
	}
}

// importPath resolves the package import path from the nearest enclosing go.mod.
func (extractor *goExtractor) importPath(filePath string) string {
	absolutePath, absoluteError := filepath.Abs(filePath)
	if absoluteError != nil {
		return ""
	}
	directory := filepath.Dir(absolutePath)
	if cached, found := extractor.importPathCache[directory]; found {
		return cached
	}

	resolved := ""
	for current := directory; ; {
		goModBytes, readError := os.ReadFile(filepath.Join(current, goModFileName))
		if readError == nil {
			modulePath := modfile.ModulePath(goModBytes)
			if modulePath != "" {
				relativeDirectory, relativeError := filepath.Rel(current, directory)
				if relativeError == nil {
					resolved = path.Join(modulePath, filepath.ToSlash(relativeDirectory))
				}
			}
			break
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	extractor.importPathCache[directory] = resolved
	return resolved
}
