package extract

import "strings"

// symbolExtractor walks a parsed Tree and pulls out top-level declarations
// per the tree's language's LanguageConfig.
type symbolExtractor struct {
	registry *LanguageRegistry
}

func newSymbolExtractor(registry *LanguageRegistry) *symbolExtractor {
	return &symbolExtractor{registry: registry}
}

// extract returns every symbol found in tree, in tree order.
func (e *symbolExtractor) extract(tree *Tree) []*Symbol {
	if tree == nil || tree.Root == nil {
		return []*Symbol{}
	}
	config, ok := e.registry.GetByName(tree.Language)
	if !ok {
		return []*Symbol{}
	}

	var symbols []*Symbol
	tree.Root.Walk(func(n *Node) bool {
		if sym := e.symbolFromNode(n, tree.Source, config, tree.Language); sym != nil {
			symbols = append(symbols, sym)
		}
		return true
	})
	return symbols
}

func (e *symbolExtractor) symbolFromNode(n *Node, source []byte, config *LanguageConfig, language string) *Symbol {
	symType, found := classifyNode(n.Type, config)
	if !found {
		if language == "javascript" || language == "jsx" || language == "typescript" || language == "tsx" {
			return e.extractJSVariableFunctionSymbol(n, source)
		}
		return nil
	}

	name := e.extractName(n, source, language)
	if name == "" {
		return nil
	}

	return &Symbol{
		Name:       name,
		Type:       symType,
		StartLine:  int(n.StartPoint.Row) + 1,
		EndLine:    int(n.EndPoint.Row) + 1,
		Signature:  extractSignature(n, source, symType, language),
		DocComment: extractDocComment(n, source, language),
	}
}

func classifyNode(nodeType string, config *LanguageConfig) (SymbolType, bool) {
	groups := []struct {
		types []string
		kind  SymbolType
	}{
		{config.FunctionTypes, SymbolTypeFunction},
		{config.MethodTypes, SymbolTypeMethod},
		{config.ClassTypes, SymbolTypeClass},
		{config.InterfaceTypes, SymbolTypeInterface},
		{config.TypeDefTypes, SymbolTypeType},
		{config.ConstantTypes, SymbolTypeConstant},
		{config.VariableTypes, SymbolTypeVariable},
	}
	for _, g := range groups {
		for _, t := range g.types {
			if t == nodeType {
				return g.kind, true
			}
		}
	}
	return "", false
}

func (e *symbolExtractor) extractName(n *Node, source []byte, language string) string {
	switch language {
	case "go":
		return extractGoName(n, source)
	default:
		for _, child := range n.Children {
			if child.Type == "identifier" || child.Type == "field_identifier" {
				return child.GetContent(source)
			}
			if child.Type == "variable_declarator" {
				for _, grandchild := range child.Children {
					if grandchild.Type == "identifier" {
						return grandchild.GetContent(source)
					}
				}
			}
		}
	}
	return ""
}

func extractGoName(n *Node, source []byte) string {
	switch n.Type {
	case "function_declaration":
		if c := n.FindChildByType("identifier"); c != nil {
			return c.GetContent(source)
		}
	case "method_declaration":
		if c := n.FindChildByType("field_identifier"); c != nil {
			return c.GetContent(source)
		}
	case "type_declaration":
		for _, child := range n.Children {
			if child.Type == "type_spec" {
				if c := child.FindChildByType("type_identifier"); c != nil {
					return c.GetContent(source)
				}
			}
		}
	case "const_declaration":
		for _, child := range n.Children {
			if child.Type == "const_spec" {
				if c := child.FindChildByType("identifier"); c != nil {
					return c.GetContent(source)
				}
			}
		}
	case "var_declaration":
		for _, child := range n.Children {
			if child.Type == "var_spec" {
				if c := child.FindChildByType("identifier"); c != nil {
					return c.GetContent(source)
				}
			}
		}
	}
	return ""
}

// extractJSVariableFunctionSymbol handles `const f = () => {}` and
// `const f = function() {}`, which tree-sitter types as a plain
// lexical_declaration rather than a function node.
func (e *symbolExtractor) extractJSVariableFunctionSymbol(n *Node, source []byte) *Symbol {
	if n.Type != "lexical_declaration" && n.Type != "variable_declaration" {
		return nil
	}
	for _, child := range n.Children {
		if child.Type != "variable_declarator" {
			continue
		}
		var name string
		var hasFunction bool
		for _, grandchild := range child.Children {
			if grandchild.Type == "identifier" {
				name = grandchild.GetContent(source)
			}
			if grandchild.Type == "arrow_function" || grandchild.Type == "function" || grandchild.Type == "function_expression" {
				hasFunction = true
			}
		}
		if name != "" && hasFunction {
			return &Symbol{
				Name:      name,
				Type:      SymbolTypeFunction,
				StartLine: int(n.StartPoint.Row) + 1,
				EndLine:   int(n.EndPoint.Row) + 1,
				Signature: firstSignatureLine(n.GetContent(source)),
			}
		}
	}
	return nil
}

// extractDocComment looks one line above n for a line comment.
func extractDocComment(n *Node, source []byte, language string) string {
	if n.StartPoint.Row == 0 {
		return ""
	}
	lineStart := int(n.StartByte)
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	if lineStart <= 1 {
		return ""
	}

	prevLineEnd := lineStart - 1
	prevLineStart := prevLineEnd - 1
	for prevLineStart > 0 && source[prevLineStart-1] != '\n' {
		prevLineStart--
	}
	prevLine := strings.TrimSpace(string(source[prevLineStart:prevLineEnd]))

	switch language {
	case "python":
		return ""
	default:
		if strings.HasPrefix(prevLine, "//") {
			return strings.TrimPrefix(prevLine, "//")
		}
	}
	return ""
}

func extractSignature(n *Node, source []byte, symType SymbolType, language string) string {
	content := n.GetContent(source)
	if content == "" {
		return ""
	}
	switch symType {
	case SymbolTypeFunction, SymbolTypeMethod:
		return firstSignatureLine(content)
	case SymbolTypeClass, SymbolTypeInterface, SymbolTypeType:
		return firstSignatureLine(content)
	}
	return ""
}

// firstSignatureLine returns the declaration's first line up to (not
// including) its opening brace, or the whole first line if there is none —
// enough for an embedding model to see the interface without the body.
func firstSignatureLine(content string) string {
	line := strings.SplitN(content, "\n", 2)[0]
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, "{"); idx != -1 {
		return strings.TrimSpace(line[:idx])
	}
	return line
}
