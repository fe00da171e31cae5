package extract

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// parser wraps a tree-sitter parser and converts its result into the
// package's own Node tree, so nothing downstream holds a pointer into the
// C-backed tree-sitter tree past the parse call.
type parser struct {
	sp *sitter.Parser
}

func newParser() *parser {
	return &parser{sp: sitter.NewParser()}
}

func (p *parser) parse(ctx context.Context, source []byte, lang *sitter.Language, langName string) (*Tree, error) {
	p.sp.SetLanguage(lang)

	tsTree, err := p.sp.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	if tsTree == nil {
		return nil, fmt.Errorf("parse source: nil tree")
	}

	return &Tree{
		Root:     convertNode(tsTree.RootNode()),
		Source:   source,
		Language: langName,
	}, nil
}

func (p *parser) close() {
	p.sp.Close()
}

func convertNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	node := &Node{
		Type:      tsNode.Type(),
		StartByte: tsNode.StartByte(),
		EndByte:   tsNode.EndByte(),
		StartPoint: Point{
			Row:    tsNode.StartPoint().Row,
			Column: tsNode.StartPoint().Column,
		},
		EndPoint: Point{
			Row:    tsNode.EndPoint().Row,
			Column: tsNode.EndPoint().Column,
		},
		HasError: tsNode.HasError(),
		Children: make([]*Node, 0, int(tsNode.ChildCount())),
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		if child := tsNode.Child(i); child != nil {
			node.Children = append(node.Children, convertNode(child))
		}
	}
	return node
}
