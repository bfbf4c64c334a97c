package storagefmt

import (
	"github.com/goliatone/go-markspace/internal/doctree"
	"github.com/goliatone/go-markspace/internal/links"
)

// enterImage writes the opening image element and its resource reference.
// Remote images are referenced by URL, local files by their flat attachment
// name. The alt text children are not rendered.
func (s *renderState) enterImage(n *doctree.Node) error {
	if err := s.write(`<ac:image ac:align="center"`); err != nil {
		return err
	}
	if n.Link.Title != "" {
		if err := s.write(` ac:title="`); err != nil {
			return err
		}
		if err := Escape(s.out, []byte(n.Link.Title)); err != nil {
			return err
		}
		if err := s.write(`"`); err != nil {
			return err
		}
	}
	if err := s.write(">"); err != nil {
		return err
	}

	url := n.Link.URL
	if links.IsExternal(url) {
		if err := s.write(`<ri:url ri:value="`); err != nil {
			return err
		}
		if err := EscapeHref(s.out, []byte(url)); err != nil {
			return err
		}
	} else {
		if err := s.write(`<ri:attachment ri:filename="`); err != nil {
			return err
		}
		if err := Escape(s.out, []byte(links.AttachmentName(url))); err != nil {
			return err
		}
	}
	return s.write(`"/>`)
}
