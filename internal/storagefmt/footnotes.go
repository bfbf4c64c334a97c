package storagefmt

import (
	"strconv"

	"github.com/goliatone/go-markspace/internal/doctree"
)

func (s *renderState) enterFootnoteDefinition(n *doctree.Node) error {
	if s.footnoteIx == 0 {
		if err := s.write("<section class=\"footnotes\" data-footnotes>\n<ol>\n"); err != nil {
			return err
		}
	}
	s.footnoteIx++
	if err := s.write(`<li id="fn-`); err != nil {
		return err
	}
	if err := EscapeHref(s.out, []byte(n.Footnote.Name)); err != nil {
		return err
	}
	return s.write(`">`)
}

func (s *renderState) leaveFootnoteDefinition(n *doctree.Node) error {
	wrote, err := s.writeFootnoteBackref(n)
	if err != nil {
		return err
	}
	if wrote {
		if err := s.write("\n"); err != nil {
			return err
		}
	}
	return s.write("</li>\n")
}

// writeFootnoteBackref writes the links back to every citation of the
// current footnote. It writes at most once per definition, tracked by the
// index of the last definition it completed.
func (s *renderState) writeFootnoteBackref(def *doctree.Node) (bool, error) {
	if s.writtenFootnoteIx >= s.footnoteIx {
		return false, nil
	}
	s.writtenFootnoteIx = s.footnoteIx

	ix := strconv.Itoa(s.footnoteIx)
	total := def.Footnote.RefCount
	if total < 1 {
		total = 1
	}
	for refNum := 1; refNum <= total; refNum++ {
		suffix, superscript := "", ""
		if refNum > 1 {
			suffix = "-" + strconv.Itoa(refNum)
			superscript = `<sup class="footnote-ref">` + strconv.Itoa(refNum) + `</sup>`
			if err := s.write(" "); err != nil {
				return false, err
			}
		}
		if err := s.write(`<a href="#fnref-`); err != nil {
			return false, err
		}
		if err := EscapeHref(s.out, []byte(def.Footnote.Name)); err != nil {
			return false, err
		}
		if err := s.write(
			suffix,
			`" class="footnote-backref" data-footnote-backref data-footnote-backref-idx="`, ix, suffix,
			`" aria-label="Back to reference `, ix, suffix, `">↩`, superscript, `</a>`,
		); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *renderState) writeFootnoteReference(n *doctree.Node) error {
	refID := "fnref-" + n.Footnote.Name
	if n.Footnote.RefNum > 1 {
		refID += "-" + strconv.Itoa(n.Footnote.RefNum)
	}
	if err := s.write(`<sup class="footnote-ref"><a href="#fn-`); err != nil {
		return err
	}
	if err := EscapeHref(s.out, []byte(n.Footnote.Name)); err != nil {
		return err
	}
	if err := s.write(`" id="`); err != nil {
		return err
	}
	if err := EscapeHref(s.out, []byte(refID)); err != nil {
		return err
	}
	return s.write(`" data-footnote-ref>`, strconv.Itoa(n.Footnote.Index), `</a></sup>`)
}
