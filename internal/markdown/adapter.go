package markdown

import (
	"bytes"
	"strings"

	east "github.com/yuin/goldmark-emoji/ast"
	gast "github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-markspace/internal/doctree"
)

// converter maps a goldmark AST onto a doctree.Tree. Every entered goldmark
// node pushes the doctree parent its children attach to, and every leave pops
// it, so dropped or flattened nodes push a placeholder.
type converter struct {
	source []byte
	tree   *doctree.Tree
	stack  []doctree.NodeID

	footnoteRefs   map[int]string
	footnoteCounts map[int]int

	alertPara     gast.Node
	alertLineStop int
	alertSkipping bool
}

func buildTree(root gast.Node, source []byte) *doctree.Tree {
	c := &converter{
		source:         source,
		tree:           doctree.New(),
		footnoteRefs:   map[int]string{},
		footnoteCounts: map[int]int{},
	}
	c.stack = []doctree.NodeID{c.tree.Root}
	c.scanFootnotes(root)
	_ = gast.Walk(root, c.visit)
	return c.tree
}

func (c *converter) scanFootnotes(root gast.Node) {
	_ = gast.Walk(root, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *extast.Footnote:
			c.footnoteRefs[node.Index] = string(node.Ref)
		case *extast.FootnoteLink:
			c.footnoteCounts[node.Index]++
		}
		return gast.WalkContinue, nil
	})
}

func (c *converter) parent() doctree.NodeID {
	return c.stack[len(c.stack)-1]
}

func (c *converter) visit(n gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		c.stack = c.stack[:len(c.stack)-1]
		if n == c.alertPara {
			c.finishAlertParagraph()
		}
		return gast.WalkContinue, nil
	}

	if c.alertPara != nil && n.Parent() == c.alertPara && c.skipAlertTitle(n) {
		c.stack = append(c.stack, c.parent())
		return gast.WalkSkipChildren, nil
	}

	id, status := c.convert(n)
	c.stack = append(c.stack, id)
	return status, nil
}

func (c *converter) add(node doctree.Node) doctree.NodeID {
	return c.tree.Append(c.parent(), node)
}

func (c *converter) convert(n gast.Node) (doctree.NodeID, gast.WalkStatus) {
	switch node := n.(type) {
	case *gast.Document:
		return c.tree.Root, gast.WalkContinue

	case *gast.Heading:
		return c.add(doctree.Node{Kind: doctree.KindHeading, Level: node.Level}), gast.WalkContinue

	case *gast.Paragraph, *gast.TextBlock:
		return c.add(doctree.Node{Kind: doctree.KindParagraph}), gast.WalkContinue

	case *gast.Blockquote:
		if alert, ok := c.detectAlert(node); ok {
			return c.add(doctree.Node{Kind: doctree.KindAlert, Alert: alert}), gast.WalkContinue
		}
		return c.add(doctree.Node{Kind: doctree.KindBlockQuote}), gast.WalkContinue

	case *gast.List:
		return c.add(doctree.Node{Kind: doctree.KindList, List: doctree.ListData{
			Ordered: node.IsOrdered(),
			Start:   node.Start,
			Tight:   node.IsTight,
		}}), gast.WalkContinue

	case *gast.ListItem:
		if checked, ok := taskState(node); ok {
			return c.add(doctree.Node{Kind: doctree.KindTaskItem, Checked: checked}), gast.WalkContinue
		}
		return c.add(doctree.Node{Kind: doctree.KindItem}), gast.WalkContinue

	case *gast.FencedCodeBlock:
		info := ""
		if node.Info != nil {
			info = string(node.Language(c.source))
		}
		return c.add(doctree.Node{Kind: doctree.KindCodeBlock, Info: info, Literal: c.lines(node.Lines())}), gast.WalkSkipChildren

	case *gast.CodeBlock:
		return c.add(doctree.Node{Kind: doctree.KindCodeBlock, Literal: c.lines(node.Lines())}), gast.WalkSkipChildren

	case *gast.HTMLBlock:
		literal := c.lines(node.Lines())
		if node.HasClosure() {
			literal = append(literal, node.ClosureLine.Value(c.source)...)
		}
		return c.add(doctree.Node{Kind: doctree.KindHTMLBlock, Literal: literal}), gast.WalkSkipChildren

	case *gast.ThematicBreak:
		return c.add(doctree.Node{Kind: doctree.KindThematicBreak}), gast.WalkSkipChildren

	case *gast.Text:
		c.addText(node.Value(c.source), node.IsRaw())
		if node.HardLineBreak() {
			c.add(doctree.Node{Kind: doctree.KindLineBreak})
		} else if node.SoftLineBreak() {
			c.add(doctree.Node{Kind: doctree.KindSoftBreak})
		}
		return c.parent(), gast.WalkSkipChildren

	case *gast.String:
		c.addText(node.Value, node.IsRaw() || node.IsCode())
		return c.parent(), gast.WalkSkipChildren

	case *gast.CodeSpan:
		return c.add(doctree.Node{Kind: doctree.KindCode, Literal: c.codeSpan(node)}), gast.WalkSkipChildren

	case *gast.RawHTML:
		return c.add(doctree.Node{Kind: doctree.KindHTMLInline, Literal: node.Segments.Value(c.source)}), gast.WalkSkipChildren

	case *gast.Emphasis:
		if node.Level >= 2 {
			return c.add(doctree.Node{Kind: doctree.KindStrong}), gast.WalkContinue
		}
		return c.add(doctree.Node{Kind: doctree.KindEmph}), gast.WalkContinue

	case *gast.Link:
		return c.add(doctree.Node{Kind: doctree.KindLink, Link: doctree.LinkData{
			URL:   decode(node.Destination),
			Title: decode(node.Title),
		}}), gast.WalkContinue

	case *gast.Image:
		return c.add(doctree.Node{Kind: doctree.KindImage, Link: doctree.LinkData{
			URL:   decode(node.Destination),
			Title: decode(node.Title),
		}}), gast.WalkContinue

	case *gast.AutoLink:
		url := string(node.URL(c.source))
		if node.AutoLinkType == gast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		id := c.add(doctree.Node{Kind: doctree.KindLink, Link: doctree.LinkData{URL: url}})
		c.tree.Append(id, doctree.Node{Kind: doctree.KindText, Literal: node.Label(c.source)})
		return id, gast.WalkSkipChildren

	case *extast.Strikethrough:
		return c.add(doctree.Node{Kind: doctree.KindStrikethrough}), gast.WalkContinue

	case *extast.TaskCheckBox:
		return c.parent(), gast.WalkSkipChildren

	case *extast.Table:
		alignments := make([]doctree.Alignment, len(node.Alignments))
		for i, a := range node.Alignments {
			alignments[i] = alignment(a)
		}
		return c.add(doctree.Node{Kind: doctree.KindTable, Alignments: alignments}), gast.WalkContinue

	case *extast.TableHeader:
		return c.add(doctree.Node{Kind: doctree.KindTableRow, Header: true}), gast.WalkContinue

	case *extast.TableRow:
		return c.add(doctree.Node{Kind: doctree.KindTableRow}), gast.WalkContinue

	case *extast.TableCell:
		return c.add(doctree.Node{Kind: doctree.KindTableCell}), gast.WalkContinue

	case *extast.DefinitionList:
		return c.add(doctree.Node{Kind: doctree.KindDescriptionList}), gast.WalkContinue

	case *extast.DefinitionTerm:
		return c.add(doctree.Node{Kind: doctree.KindDescriptionTerm}), gast.WalkContinue

	case *extast.DefinitionDescription:
		return c.add(doctree.Node{Kind: doctree.KindDescriptionDetails}), gast.WalkContinue

	case *extast.FootnoteList:
		return c.tree.Root, gast.WalkContinue

	case *extast.Footnote:
		return c.tree.Append(c.tree.Root, doctree.Node{Kind: doctree.KindFootnoteDefinition, Footnote: doctree.FootnoteData{
			Name:     string(node.Ref),
			Index:    node.Index,
			RefCount: c.footnoteCounts[node.Index],
		}}), gast.WalkContinue

	case *extast.FootnoteLink:
		return c.add(doctree.Node{Kind: doctree.KindFootnoteReference, Footnote: doctree.FootnoteData{
			Name:   c.footnoteRefs[node.Index],
			Index:  node.Index,
			RefNum: node.RefIndex + 1,
		}}), gast.WalkSkipChildren

	case *extast.FootnoteBacklink:
		return c.parent(), gast.WalkSkipChildren

	case *east.Emoji:
		value := ":" + string(node.ShortName) + ":"
		if node.Value != nil && len(node.Value.Unicode) > 0 {
			value = string(node.Value.Unicode)
		}
		return c.add(doctree.Node{Kind: doctree.KindShortCode, Emoji: value}), gast.WalkSkipChildren
	}

	return c.add(doctree.Node{Kind: doctree.KindUnknown}), gast.WalkSkipChildren
}

// addText appends literal text, merging with a directly preceding text node.
func (c *converter) addText(value []byte, raw bool) {
	if !raw {
		value = decodeBytes(value)
	}
	if len(value) == 0 {
		return
	}
	parent := c.parent()
	if last := c.tree.LastChild(parent); last != doctree.NoNode && c.tree.KindOf(last) == doctree.KindText {
		node := c.tree.Node(last)
		node.Literal = append(node.Literal, value...)
		return
	}
	c.tree.Append(parent, doctree.Node{Kind: doctree.KindText, Literal: append([]byte(nil), value...)})
}

func (c *converter) lines(segments *text.Segments) []byte {
	return append([]byte(nil), segments.Value(c.source)...)
}

func (c *converter) codeSpan(node *gast.CodeSpan) []byte {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *gast.Text:
			value := t.Segment.Value(c.source)
			if bytes.HasSuffix(value, []byte("\n")) {
				buf.Write(value[:len(value)-1])
				buf.WriteByte(' ')
				continue
			}
			buf.Write(value)
		case *gast.String:
			buf.Write(t.Value)
		}
	}
	return buf.Bytes()
}

func taskState(item *gast.ListItem) (bool, bool) {
	first := item.FirstChild()
	if first == nil {
		return false, false
	}
	box, ok := first.FirstChild().(*extast.TaskCheckBox)
	if !ok {
		return false, false
	}
	return box.IsChecked, true
}

func alignment(a extast.Alignment) doctree.Alignment {
	switch a {
	case extast.AlignLeft:
		return doctree.AlignLeft
	case extast.AlignCenter:
		return doctree.AlignCenter
	case extast.AlignRight:
		return doctree.AlignRight
	}
	return doctree.AlignNone
}

func decode(value []byte) string {
	return string(decodeBytes(value))
}

// decodeBytes resolves backslash escapes and character references.
func decodeBytes(value []byte) []byte {
	if len(value) == 0 {
		return value
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	return util.ResolveEntityNames(value)
}
