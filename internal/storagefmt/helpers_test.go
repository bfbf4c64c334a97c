package storagefmt

import (
	"testing"

	"github.com/goliatone/go-markspace/internal/doctree"
)

type mapResolver map[string]string

func (m mapResolver) TitleFor(path string) (string, bool) {
	title, ok := m[path]
	return title, ok
}

func text(tree *doctree.Tree, parent doctree.NodeID, value string) doctree.NodeID {
	return tree.Append(parent, doctree.Node{Kind: doctree.KindText, Literal: []byte(value)})
}

func paragraph(tree *doctree.Tree, parent doctree.NodeID, value string) doctree.NodeID {
	p := tree.Append(parent, doctree.Node{Kind: doctree.KindParagraph})
	text(tree, p, value)
	return p
}

func render(t *testing.T, tree *doctree.Tree, source string, opts ...Option) (string, Report) {
	t.Helper()
	out, report, err := NewRenderer(mapResolver{}, opts...).RenderString(tree, source)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, report
}
