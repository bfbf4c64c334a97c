package markdown

import (
	"bytes"
	"strings"

	gast "github.com/yuin/goldmark/ast"

	"github.com/goliatone/go-markspace/internal/doctree"
)

// detectAlert recognises a blockquote whose first line is "[!type] title".
// The marker line is dropped from the body and the rest of the line becomes
// the alert title.
func (c *converter) detectAlert(quote *gast.Blockquote) (doctree.AlertData, bool) {
	para, ok := quote.FirstChild().(*gast.Paragraph)
	if !ok || para.Lines().Len() == 0 {
		return doctree.AlertData{}, false
	}
	first := para.Lines().At(0)
	line := bytes.TrimRight(first.Value(c.source), "\r\n")
	alertType, title, ok := parseAlertMarker(string(line))
	if !ok {
		return doctree.AlertData{}, false
	}
	c.alertPara = para
	c.alertLineStop = first.Stop
	c.alertSkipping = true
	return doctree.AlertData{Type: alertType, Title: title}, true
}

func parseAlertMarker(line string) (doctree.AlertType, string, bool) {
	line = strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(line, "[!") {
		return doctree.AlertNote, "", false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return doctree.AlertNote, "", false
	}
	alertType, ok := doctree.ParseAlertType(line[2:end])
	if !ok {
		return doctree.AlertNote, "", false
	}
	return alertType, strings.TrimSpace(line[end+1:]), true
}

// skipAlertTitle reports whether a direct child of the alert's first
// paragraph belongs to the marker line. Children with no source position
// are skipped while the marker line is still being consumed.
func (c *converter) skipAlertTitle(n gast.Node) bool {
	if !c.alertSkipping {
		return false
	}
	if start := inlineStart(n); start >= c.alertLineStop {
		c.alertSkipping = false
		return false
	}
	return true
}

// finishAlertParagraph drops the first paragraph when the marker line was
// all it held.
func (c *converter) finishAlertParagraph() {
	para := c.tree.LastChild(c.parent())
	if para != doctree.NoNode && c.tree.KindOf(para) == doctree.KindParagraph && len(c.tree.Children(para)) == 0 {
		c.tree.Detach(para)
	}
	c.alertPara = nil
	c.alertSkipping = false
}

// inlineStart returns the source offset of the first text below n, or -1.
func inlineStart(n gast.Node) int {
	start := -1
	_ = gast.Walk(n, func(node gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *gast.Text:
			start = t.Segment.Start
			return gast.WalkStop, nil
		case *gast.RawHTML:
			if t.Segments.Len() > 0 {
				start = t.Segments.At(0).Start
				return gast.WalkStop, nil
			}
		}
		return gast.WalkContinue, nil
	})
	return start
}
