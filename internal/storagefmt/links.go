package storagefmt

import (
	"github.com/goliatone/go-markspace/internal/doctree"
	"github.com/goliatone/go-markspace/internal/links"
)

// linkForm records which markup a link opened so the Post phase can close it.
type linkForm uint8

const (
	linkExternal linkForm = iota + 1
	linkAnchor
	linkPage
	linkViewFile
	linkPlaceholder
)

func (s *renderState) enterLink(id doctree.NodeID, n *doctree.Node) (childMode, error) {
	url := n.Link.URL
	if links.IsExternal(url) {
		s.openLinks[id] = linkExternal
		if err := s.write(`<a href="`); err != nil {
			return childrenNormal, err
		}
		if err := EscapeHref(s.out, []byte(url)); err != nil {
			return childrenNormal, err
		}
		if n.Link.Title != "" {
			if err := s.write(`" title="`); err != nil {
				return childrenNormal, err
			}
			if err := Escape(s.out, []byte(n.Link.Title)); err != nil {
				return childrenNormal, err
			}
		}
		return childrenNormal, s.write(`">`)
	}

	local, err := links.ParseLocalLink(s.dir, url)
	if err != nil {
		s.openLinks[id] = linkPlaceholder
		s.report.InvalidLinks = append(s.report.InvalidLinks, url)
		s.logger.Warn("invalid local link", "source", s.source, "link", url, "error", err)
		return childrenNormal, s.writeComment("invalid local link: ", url)
	}

	switch {
	case local.IsSamePage():
		s.openLinks[id] = linkAnchor
		if err := s.write(`<ac:link ac:anchor="`); err != nil {
			return childrenPlain, err
		}
		if err := Escape(s.out, []byte(local.Anchor)); err != nil {
			return childrenPlain, err
		}
		return childrenPlain, s.write(`"><ac:plain-text-link-body><![CDATA[`)

	case !local.IsDocument():
		s.openLinks[id] = linkViewFile
		if err := s.write(`<ac:structured-macro ac:name="view-file"><ac:parameter ac:name="name"><ri:attachment ri:filename="`); err != nil {
			return childrenNormal, err
		}
		if err := Escape(s.out, []byte(links.AttachmentName(url))); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write(`"/></ac:parameter></ac:structured-macro>`)
	}

	title, ok := s.titleFor(local.Target)
	if !ok {
		s.openLinks[id] = linkPlaceholder
		s.report.UnresolvedLinks = append(s.report.UnresolvedLinks, local.String())
		s.logger.Warn("unknown local link", "source", s.source, "link", local.String())
		return childrenNormal, s.writeComment("unknown local link: ", local.String())
	}

	s.openLinks[id] = linkPage
	if err := s.write(`<ac:link`); err != nil {
		return childrenPlain, err
	}
	if local.HasAnchor() {
		if err := s.write(` ac:anchor="`); err != nil {
			return childrenPlain, err
		}
		if err := Escape(s.out, []byte(local.Anchor)); err != nil {
			return childrenPlain, err
		}
		if err := s.write(`"`); err != nil {
			return childrenPlain, err
		}
	}
	if err := s.write(`><ri:page ri:content-title="`); err != nil {
		return childrenPlain, err
	}
	if err := Escape(s.out, []byte(title)); err != nil {
		return childrenPlain, err
	}
	if err := s.write(`"/><ac:plain-text-link-body><![CDATA[`); err != nil {
		return childrenPlain, err
	}
	if len(s.tree.Children(id)) == 0 {
		// Autolinks and empty bodies fall back to the page title.
		if err := writeCDATA(s.out, []byte(title)); err != nil {
			return childrenPlain, err
		}
	}
	return childrenPlain, nil
}

func (s *renderState) leaveLink(id doctree.NodeID) error {
	form := s.openLinks[id]
	delete(s.openLinks, id)
	switch form {
	case linkExternal:
		return s.write("</a>")
	case linkAnchor, linkPage:
		return s.write("]]></ac:plain-text-link-body></ac:link>")
	}
	return nil
}

func (s *renderState) titleFor(target string) (string, bool) {
	if s.resolver == nil {
		return "", false
	}
	return s.resolver.TitleFor(target)
}

// writeComment emits a visible marker for a link that could not be rendered.
// Comment terminators in the text are defused.
func (s *renderState) writeComment(prefix, text string) error {
	if err := s.write("<!-- ", prefix); err != nil {
		return err
	}
	safe := []byte(text)
	for i := 0; i+1 < len(safe); i++ {
		if safe[i] == '-' && safe[i+1] == '-' {
			safe[i+1] = '_'
		}
	}
	if err := Escape(s.out, safe); err != nil {
		return err
	}
	return s.write(" -->")
}
