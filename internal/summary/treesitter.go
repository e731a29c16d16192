//go:build cgo

package summary

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	definesLabel               = "defines"
	maximumListedDeclarations  = 6
	nameField                  = "name"
	valueField                 = "value"
	declarationField           = "declaration"
	definitionField            = "definition"
	classKind                  = "class"
	functionKind               = "function"
	pythonFunctionNodeType     = "function_definition"
	pythonClassNodeType        = "class_definition"
	pythonDecoratedNodeType    = "decorated_definition"
	javaScriptFunctionNodeType = "function_declaration"
	javaScriptGeneratorType    = "generator_function_declaration"
	javaScriptClassNodeType    = "class_declaration"
	javaScriptExportNodeType   = "export_statement"
	javaScriptLexicalNodeType  = "lexical_declaration"
	javaScriptVariableNodeType = "variable_declaration"
	javaScriptDeclaratorType   = "variable_declarator"
	javaScriptArrowType        = "arrow_function"
	javaScriptFunctionType     = "function_expression"
	javaScriptLegacyFunction   = "function"
)

var (
	pythonExtensions     = []string{".py"}
	javaScriptExtensions = []string{".js", ".mjs", ".cjs", ".jsx"}
)

type topLevelDeclaration struct {
	kind string
	name string
}

// treeSitterExtractor lists the top-level classes and functions of one language.
type treeSitterExtractor struct {
	language *sitter.Language
	collect  func(root *sitter.Node, content []byte) []topLevelDeclaration
}

func newTreeSitterExtractors() map[string]declarationExtractor {
	extractors := map[string]declarationExtractor{}
	pythonExtractor := &treeSitterExtractor{language: python.GetLanguage(), collect: collectPythonDeclarations}
	for _, extension := range pythonExtensions {
		extractors[extension] = pythonExtractor.describe
	}
	javaScriptExtractor := &treeSitterExtractor{language: javascript.GetLanguage(), collect: collectJavaScriptDeclarations}
	for _, extension := range javaScriptExtensions {
		extractors[extension] = javaScriptExtractor.describe
	}
	return extractors
}

func (extractor *treeSitterExtractor) describe(_ string, content []byte) (string, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(extractor.language)
	tree, parseError := parser.ParseCtx(context.Background(), nil, content)
	if parseError != nil {
		return "", parseError
	}
	defer tree.Close()

	declarations := extractor.collect(tree.RootNode(), content)
	if len(declarations) == 0 {
		return "", nil
	}
	labels := make([]string, 0, len(declarations))
	for _, declaration := range declarations {
		labels = append(labels, declaration.kind+" "+declaration.name)
	}
	description := joinNames(definesLabel, labels, maximumListedDeclarations)
	if comment := LeadingComment(content); comment != "" {
		return comment + summaryPartSeparator + description, nil
	}
	return description, nil
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return strings.TrimSpace(node.Content(content))
}

func collectPythonDeclarations(root *sitter.Node, content []byte) []topLevelDeclaration {
	var declarations []topLevelDeclaration
	for childIndex := 0; childIndex < int(root.NamedChildCount()); childIndex++ {
		child := root.NamedChild(childIndex)
		if child.Type() == pythonDecoratedNodeType {
			child = child.ChildByFieldName(definitionField)
			if child == nil {
				continue
			}
		}
		switch child.Type() {
		case pythonClassNodeType:
			declarations = appendNamed(declarations, classKind, nodeText(child.ChildByFieldName(nameField), content))
		case pythonFunctionNodeType:
			declarations = appendNamed(declarations, functionKind, nodeText(child.ChildByFieldName(nameField), content))
		}
	}
	return declarations
}

func collectJavaScriptDeclarations(root *sitter.Node, content []byte) []topLevelDeclaration {
	var declarations []topLevelDeclaration
	for childIndex := 0; childIndex < int(root.NamedChildCount()); childIndex++ {
		child := root.NamedChild(childIndex)
		if child.Type() == javaScriptExportNodeType {
			if exported := child.ChildByFieldName(declarationField); exported != nil {
				child = exported
			}
		}
		switch child.Type() {
		case javaScriptClassNodeType:
			declarations = appendNamed(declarations, classKind, nodeText(child.ChildByFieldName(nameField), content))
		case javaScriptFunctionNodeType, javaScriptGeneratorType:
			declarations = appendNamed(declarations, functionKind, nodeText(child.ChildByFieldName(nameField), content))
		case javaScriptLexicalNodeType, javaScriptVariableNodeType:
			for declaratorIndex := 0; declaratorIndex < int(child.NamedChildCount()); declaratorIndex++ {
				declarator := child.NamedChild(declaratorIndex)
				if declarator.Type() != javaScriptDeclaratorType {
					continue
				}
				value := declarator.ChildByFieldName(valueField)
				if value == nil {
					continue
				}
				switch value.Type() {
				case javaScriptArrowType, javaScriptFunctionType, javaScriptLegacyFunction:
					declarations = appendNamed(declarations, functionKind, nodeText(declarator.ChildByFieldName(nameField), content))
				}
			}
		}
	}
	return declarations
}

func appendNamed(declarations []topLevelDeclaration, kind string, name string) []topLevelDeclaration {
	if name == "" {
		return declarations
	}
	return append(declarations, topLevelDeclaration{kind: kind, name: name})
}
