package links

import (
	"path"
	"strings"
)

// DocumentExt is the extension of files treated as space pages.
const DocumentExt = ".md"

// LocalLink is a link from one space document to another file inside the
// same space tree.
type LocalLink struct {
	// Source is the space-relative path of the referring document.
	Source string
	// Text is the link destination as written.
	Text string
	// Target is the space-relative path of the destination. Empty means the
	// link points into the referring document itself.
	Target string
	Anchor string
}

// HasAnchor reports whether the link carried a fragment.
func (l LocalLink) HasAnchor() bool {
	return l.Anchor != ""
}

// IsSamePage reports whether the link only selects an anchor in the current
// document.
func (l LocalLink) IsSamePage() bool {
	return l.Target == ""
}

// IsDocument reports whether the target is a space page rather than a plain
// file.
func (l LocalLink) IsDocument() bool {
	return strings.EqualFold(path.Ext(l.Target), DocumentExt)
}

// String renders the link as path#anchor with forward slashes.
func (l LocalLink) String() string {
	if l.Anchor == "" {
		return l.Target
	}
	return l.Target + "#" + l.Anchor
}

// Dir returns the directory portion of a space-relative document path, using
// "" for the space root.
func Dir(docPath string) string {
	dir := path.Dir(NormalizePath(docPath))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// ParseLocalLink resolves link relative to sourceDir, the directory of the
// referring document. Resolution is purely lexical.
func ParseLocalLink(sourceDir, link string) (LocalLink, error) {
	target := link
	anchor := ""
	if idx := strings.IndexByte(link, '#'); idx >= 0 {
		target, anchor = link[:idx], link[idx+1:]
		if anchor == "" {
			return LocalLink{}, emptyAnchorError(link)
		}
	}

	joined := target
	if target != "" {
		joined = joinPath(NormalizePath(sourceDir), NormalizePath(target))
	}
	simplified, err := SimplifyPath(joined)
	if err != nil {
		return LocalLink{}, err
	}

	return LocalLink{
		Text:   link,
		Target: simplified,
		Anchor: anchor,
	}, nil
}

// ParseDocumentLink is ParseLocalLink with the referring document's path
// instead of its directory.
func ParseDocumentLink(docPath, link string) (LocalLink, error) {
	parsed, err := ParseLocalLink(Dir(docPath), link)
	if err != nil {
		return LocalLink{}, err
	}
	parsed.Source = NormalizePath(docPath)
	return parsed, nil
}

func joinPath(dir, rel string) string {
	if dir == "" || strings.HasPrefix(rel, "/") {
		return rel
	}
	return dir + "/" + rel
}

// SimplifyPath removes "." and ".." components lexically. A ".." that would
// climb above the root is an error rather than being clamped.
func SimplifyPath(p string) (string, error) {
	parts := strings.Split(NormalizePath(p), "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return "", outsideTreeError(p)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}
	return strings.Join(out, "/"), nil
}

// NormalizePath converts platform separators to forward slashes.
func NormalizePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// IsExternal reports whether a link destination points outside the space.
// Any destination with a scheme separator counts, as do mailto links.
func IsExternal(url string) bool {
	if strings.Contains(url, "://") {
		return true
	}
	return len(url) >= len(mailtoScheme) && strings.EqualFold(url[:len(mailtoScheme)], mailtoScheme)
}

const mailtoScheme = "mailto:"
