package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/doctree"
	"github.com/goliatone/go-markspace/internal/links"
	"github.com/goliatone/go-markspace/internal/storagefmt"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// Heading is a section heading found below the title heading.
type Heading struct {
	Level int
	Text  string
}

// Page is a parsed space document ready to be rendered.
type Page struct {
	// Source is the space-relative path with forward slashes.
	Source      string
	Title       string
	FrontMatter interfaces.FrontMatter
	Headings    []Heading
	// LocalLinks are links to other documents of the space.
	LocalLinks []links.LocalLink
	// Attachments are local images and links to non-document files.
	Attachments []interfaces.Attachment
	// Warnings collects links that could not be parsed.
	Warnings []string

	tree *doctree.Tree
}

// ParsePage splits the front matter from source and parses the body.
func ParsePage(path string, source []byte, parser *Parser) (*Page, error) {
	doc, err := BuildDocument(path, source, time.Time{})
	if err != nil {
		return nil, err
	}
	return NewPage(doc, parser)
}

// NewPage parses the body of doc. The first heading is the page title and is
// removed from the tree; a front matter title takes precedence over its text.
func NewPage(doc *interfaces.Document, parser *Parser) (*Page, error) {
	if parser == nil {
		parser = NewParser(interfaces.RenderOptions{})
	}
	source := links.NormalizePath(doc.FilePath)
	tree := parser.Parse(doc.Body)

	page := &Page{
		Source:      source,
		FrontMatter: doc.FrontMatter,
		tree:        tree,
	}

	titleHeading := doctree.NoNode
	for _, id := range tree.Find(doctree.KindHeading) {
		if titleHeading == doctree.NoNode {
			titleHeading = id
			continue
		}
		page.Headings = append(page.Headings, Heading{
			Level: tree.Node(id).Level,
			Text:  tree.TextContent(id),
		})
	}

	if titleHeading != doctree.NoNode {
		page.Title = strings.TrimSpace(tree.TextContent(titleHeading))
		tree.Detach(titleHeading)
	}
	if doc.FrontMatter.Title != "" {
		page.Title = doc.FrontMatter.Title
	}
	if page.Title == "" {
		return nil, missingTitleError(source)
	}

	page.collectReferences()
	return page, nil
}

func (p *Page) collectReferences() {
	seen := map[string]struct{}{}
	addAttachment := func(raw, target string) {
		if _, dup := seen[raw]; dup {
			return
		}
		seen[raw] = struct{}{}
		p.Attachments = append(p.Attachments, interfaces.Attachment{
			Name:   links.AttachmentName(raw),
			Source: raw,
			Path:   target,
		})
	}

	_ = p.tree.Walk(p.tree.Root, func(id doctree.NodeID, phase doctree.Phase) (doctree.WalkStatus, error) {
		if phase != doctree.Pre {
			return doctree.WalkContinue, nil
		}
		node := p.tree.Node(id)
		switch node.Kind {
		case doctree.KindImage, doctree.KindLink:
		default:
			return doctree.WalkContinue, nil
		}

		raw := node.Link.URL
		if raw == "" || links.IsExternal(raw) {
			return doctree.WalkContinue, nil
		}
		local, err := links.ParseDocumentLink(p.Source, raw)
		if err != nil {
			p.Warnings = append(p.Warnings, p.Source+": "+err.Error())
			return doctree.WalkContinue, nil
		}
		switch {
		case node.Kind == doctree.KindImage:
			addAttachment(raw, local.Target)
		case local.IsSamePage():
		case local.IsDocument():
			p.LocalLinks = append(p.LocalLinks, local)
		default:
			addAttachment(raw, local.Target)
		}
		return doctree.WalkContinue, nil
	})

	if cover := p.FrontMatter.Cover; cover != "" && !links.IsExternal(cover) {
		local, err := links.ParseDocumentLink(p.Source, cover)
		if err != nil || local.IsSamePage() {
			p.Warnings = append(p.Warnings, p.Source+": invalid cover "+cover)
			return
		}
		addAttachment(cover, local.Target)
	}
}

// CoverLink returns the cover as written in the front matter and whether it
// names a local file uploaded with the page.
func (p *Page) CoverLink() (string, bool) {
	cover := p.FrontMatter.Cover
	if cover == "" {
		return "", false
	}
	return cover, !links.IsExternal(cover)
}

// SortsChildren reports whether the page's children are ordered by title.
func (p *Page) SortsChildren() bool {
	return p.FrontMatter.Sort == interfaces.SortIncrementing
}

// Tree exposes the parsed body, without the title heading.
func (p *Page) Tree() *doctree.Tree {
	return p.tree
}

// IsFolder reports whether the page is published as a folder.
func (p *Page) IsFolder() bool {
	return p.FrontMatter.Folder
}

// IsHome reports whether the page is the space home page.
func (p *Page) IsHome() bool {
	return p.Source == links.HomePage
}

// ParentPath returns the path of the page that contains this one, or "" for
// top-level pages. A page's parent is the index.md of its directory; an
// index.md's parent is the index.md one directory up.
func ParentPath(source string) string {
	source = links.NormalizePath(source)
	dir := path.Dir(source)
	if dir == "." || dir == "/" {
		return ""
	}
	if path.Base(source) == links.HomePage {
		dir = path.Dir(dir)
		if dir == "." || dir == "/" {
			return ""
		}
	}
	return dir + "/" + links.HomePage
}

// Parent resolves the title of the containing page. Top-level pages have none.
func (p *Page) Parent(resolver storagefmt.TitleResolver) (string, error) {
	parentPath := ParentPath(p.Source)
	if parentPath == "" {
		return "", nil
	}
	if resolver != nil {
		if title, ok := resolver.TitleFor(parentPath); ok {
			return title, nil
		}
	}
	return "", missingParentError(p.Source, parentPath)
}

// RenderedPage is the storage-format output of a page plus the metadata the
// sync needs to publish it.
type RenderedPage struct {
	Title   string
	Content string
	Source  string
	Parent  string
	// Checksum is the hex SHA-256 of Content.
	Checksum string
	Report   storagefmt.Report
	Labels   []string
	Emoji    string
	Status   interfaces.PageStatus
	Folder   bool
}

// Render converts the page body against resolver, which must already know
// every document of the space.
func (p *Page) Render(resolver storagefmt.TitleResolver, opts ...storagefmt.Option) (*RenderedPage, error) {
	parent, err := p.Parent(resolver)
	if err != nil {
		return nil, err
	}

	renderer := storagefmt.NewRenderer(resolver, opts...)
	content, report, err := renderer.RenderString(p.tree, p.Source)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "render "+p.Source).
			WithTextCode(TextCodeRenderFailed).
			WithMetadata(map[string]any{"source": p.Source})
	}

	sum := sha256.Sum256([]byte(content))
	return &RenderedPage{
		Title:    p.Title,
		Content:  content,
		Source:   p.Source,
		Parent:   parent,
		Checksum: hex.EncodeToString(sum[:]),
		Report:   report,
		Labels:   append([]string(nil), p.FrontMatter.Labels...),
		Emoji:    p.FrontMatter.Emoji,
		Status:   interfaces.PageStatus(p.FrontMatter.Status),
		Folder:   p.FrontMatter.Folder,
	}, nil
}

// IsHomePage reports whether the page is published as the space home page.
func (r *RenderedPage) IsHomePage() bool {
	return r.Source == links.HomePage
}

// VersionMessage is the message stored with each published version. It marks
// the version as managed and records what it was rendered from.
func (r *RenderedPage) VersionMessage() string {
	return interfaces.VersionMessagePrefix + " source=" + links.NormalizePath(r.Source) + "; checksum=" + r.Checksum
}

// ParseVersionMessage extracts the source path and checksum from a message
// written by VersionMessage.
func ParseVersionMessage(message string) (source, checksum string, ok bool) {
	rest, found := strings.CutPrefix(message, interfaces.VersionMessagePrefix)
	if !found {
		return "", "", false
	}
	for _, part := range strings.Split(rest, ";") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(part), "=")
		if !hasValue {
			continue
		}
		switch key {
		case "source":
			source = value
		case "checksum":
			checksum = value
		}
	}
	return source, checksum, source != "" && checksum != ""
}
