// Package extract turns raw ingested file bytes into flattened text ready
// for the semantic chunker (internal/chunk): plain passthrough for .txt,
// frontmatter-stripped passthrough for .md, and tree-sitter-based top-level
// symbol extraction for source code.
package extract

// Point is a source position, 0-indexed, mirroring tree-sitter's own.
type Point struct {
	Row    uint32
	Column uint32
}

// Node is a simplified tree-sitter AST node, decoupled from the sitter.Node
// pointer graph so callers never reach into the underlying C tree.
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	HasError   bool
	Children   []*Node
}

// GetContent returns the source slice covered by the node.
func (n *Node) GetContent(source []byte) string {
	if n.StartByte >= n.EndByte || int(n.EndByte) > len(source) {
		return ""
	}
	return string(source[n.StartByte:n.EndByte])
}

// FindChildByType returns the first direct child with the given type.
func (n *Node) FindChildByType(nodeType string) *Node {
	for _, child := range n.Children {
		if child.Type == nodeType {
			return child
		}
	}
	return nil
}

// Walk traverses the tree depth-first, calling fn for each node. fn returns
// false to skip that node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Tree is a parsed source file.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// SymbolType classifies a top-level declaration extracted from source.
type SymbolType string

const (
	SymbolTypeFunction  SymbolType = "function"
	SymbolTypeMethod    SymbolType = "method"
	SymbolTypeClass     SymbolType = "class"
	SymbolTypeInterface SymbolType = "interface"
	SymbolTypeType      SymbolType = "type"
	SymbolTypeConstant  SymbolType = "constant"
	SymbolTypeVariable  SymbolType = "variable"
)

// Symbol is a top-level declaration pulled out of a source file's AST.
type Symbol struct {
	Name       string
	Type       SymbolType
	StartLine  int // 1-indexed
	EndLine    int
	Signature  string
	DocComment string
}

// LanguageConfig declares, for one language, which tree-sitter node types
// correspond to which SymbolType.
type LanguageConfig struct {
	Name           string
	Extensions     []string
	FunctionTypes  []string
	MethodTypes    []string
	ClassTypes     []string
	InterfaceTypes []string
	TypeDefTypes   []string
	ConstantTypes  []string
	VariableTypes  []string
}
