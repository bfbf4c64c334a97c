package storagefmt

import (
	"bytes"
	"io"
	"strconv"

	"github.com/goliatone/go-markspace/internal/doctree"
	"github.com/goliatone/go-markspace/internal/links"
	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// TitleResolver maps a space-relative document path to its published title.
// *links.Registry satisfies it.
type TitleResolver interface {
	TitleFor(path string) (string, bool)
}

// Renderer converts document trees into storage-format markup.
type Renderer struct {
	resolver TitleResolver
	opts     Options
	logger   interfaces.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithOptions replaces the rendering options.
func WithOptions(opts Options) Option {
	return func(r *Renderer) {
		r.opts = opts
	}
}

// WithLogger attaches the logger used for unresolved link warnings.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRenderer builds a renderer that resolves local links through resolver.
// A nil resolver treats every cross-document link as unknown.
func NewRenderer(resolver TitleResolver, opts ...Option) *Renderer {
	r := &Renderer{
		resolver: resolver,
		opts:     DefaultOptions(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Report lists the links a render had to degrade to placeholders.
type Report struct {
	UnresolvedLinks []string
	InvalidLinks    []string
}

// Degraded reports whether any link was replaced by a placeholder.
func (r Report) Degraded() bool {
	return len(r.UnresolvedLinks) > 0 || len(r.InvalidLinks) > 0
}

// Render writes the storage form of tree to w. source is the space-relative
// path of the document and anchors relative link resolution. Any write error
// aborts the render.
func (r *Renderer) Render(w io.Writer, tree *doctree.Tree, source string) (Report, error) {
	state := &renderState{
		Renderer:   r,
		out:        newOutput(w),
		tree:       tree,
		source:     links.NormalizePath(source),
		dir:        links.Dir(source),
		nextTaskID: 1,
		openLinks:  map[doctree.NodeID]linkForm{},
	}
	if err := state.format(tree.Root, false); err != nil {
		return state.report, err
	}
	if state.footnoteIx > 0 {
		if _, err := state.out.WriteString("</ol>\n</section>\n"); err != nil {
			return state.report, err
		}
	}
	return state.report, nil
}

// RenderString is Render into a string.
func (r *Renderer) RenderString(tree *doctree.Tree, source string) (string, Report, error) {
	var buf bytes.Buffer
	report, err := r.Render(&buf, tree, source)
	return buf.String(), report, err
}

// childMode tells the traversal how to treat the children of a node that was
// just opened.
type childMode uint8

const (
	childrenNormal childMode = iota
	childrenPlain
	childrenSkip
)

type renderState struct {
	*Renderer

	out    *output
	tree   *doctree.Tree
	source string
	dir    string

	footnoteIx        int
	writtenFootnoteIx int
	nextTaskID        int

	openLinks map[doctree.NodeID]linkForm
	report    Report
}

type frame struct {
	id    doctree.NodeID
	plain bool
	phase doctree.Phase
}

// format walks the subtree at root with an explicit stack. Each node is
// pushed back for its Post phase before its children, which are pushed in
// reverse so they pop in document order. Nodes reached in plain mode only
// contribute their text and never get a Post phase.
func (s *renderState) format(root doctree.NodeID, plain bool) error {
	stack := []frame{{id: root, plain: plain, phase: doctree.Pre}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.phase == doctree.Post {
			if err := s.leave(top.id); err != nil {
				return err
			}
			continue
		}

		childPlain := top.plain
		mode := childrenNormal
		if top.plain {
			if err := s.writePlain(top.id); err != nil {
				return err
			}
		} else {
			stack = append(stack, frame{id: top.id, phase: doctree.Post})
			var err error
			mode, err = s.enter(top.id)
			if err != nil {
				return err
			}
			childPlain = mode == childrenPlain
		}
		if mode == childrenSkip {
			continue
		}

		children := s.tree.Children(top.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], plain: childPlain, phase: doctree.Pre})
		}
	}
	return nil
}

// writePlain emits the text of a node rendered inside a CDATA body.
func (s *renderState) writePlain(id doctree.NodeID) error {
	n := s.tree.Node(id)
	switch n.Kind {
	case doctree.KindText, doctree.KindCode, doctree.KindHTMLInline:
		return writeCDATA(s.out, n.Literal)
	case doctree.KindShortCode:
		return writeCDATA(s.out, []byte(n.Emoji))
	case doctree.KindLineBreak, doctree.KindSoftBreak:
		_, err := s.out.WriteString(" ")
		return err
	}
	return nil
}

func (s *renderState) write(parts ...string) error {
	for _, part := range parts {
		if _, err := s.out.WriteString(part); err != nil {
			return err
		}
	}
	return nil
}

func (s *renderState) enter(id doctree.NodeID) (childMode, error) {
	n := s.tree.Node(id)
	switch n.Kind {
	case doctree.KindDocument:
		return childrenNormal, nil

	case doctree.KindBlockQuote:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<blockquote>\n")

	case doctree.KindList:
		return childrenNormal, s.enterList(id, n)

	case doctree.KindItem:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<li>")

	case doctree.KindTaskItem:
		return childrenNormal, s.enterTask(n)

	case doctree.KindDescriptionList:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<dl>")

	case doctree.KindDescriptionTerm:
		return childrenNormal, s.write("<dt>")

	case doctree.KindDescriptionDetails:
		return childrenNormal, s.write("<dd>")

	case doctree.KindHeading:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<h", strconv.Itoa(n.Level), ">")

	case doctree.KindCodeBlock:
		return childrenSkip, s.writeCodeBlock(n)

	case doctree.KindHTMLBlock:
		if err := s.out.cr(); err != nil {
			return childrenSkip, err
		}
		if err := s.writeRawHTMLBlock(n.Literal); err != nil {
			return childrenSkip, err
		}
		return childrenSkip, s.out.cr()

	case doctree.KindThematicBreak:
		if err := s.out.cr(); err != nil {
			return childrenSkip, err
		}
		return childrenSkip, s.write("<hr />\n")

	case doctree.KindParagraph:
		if s.tightParagraph(id) {
			return childrenNormal, nil
		}
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<p>")

	case doctree.KindText:
		return childrenSkip, Escape(s.out, n.Literal)

	case doctree.KindLineBreak:
		return childrenSkip, s.write("<br />\n")

	case doctree.KindSoftBreak:
		if s.opts.HardBreaks {
			return childrenSkip, s.write("<br />\n")
		}
		return childrenSkip, s.write(" ")

	case doctree.KindCode:
		if err := s.write("<code>"); err != nil {
			return childrenSkip, err
		}
		if err := Escape(s.out, n.Literal); err != nil {
			return childrenSkip, err
		}
		return childrenSkip, s.write("</code>")

	case doctree.KindHTMLInline:
		return childrenSkip, s.writeRawHTMLInline(n.Literal)

	case doctree.KindStrong:
		if s.tree.KindOf(s.tree.Parent(id)) == doctree.KindStrong {
			return childrenNormal, nil
		}
		return childrenNormal, s.write("<strong>")

	case doctree.KindEmph:
		return childrenNormal, s.write("<em>")

	case doctree.KindStrikethrough:
		return childrenNormal, s.write("<del>")

	case doctree.KindSuperscript:
		return childrenNormal, s.write("<sup>")

	case doctree.KindLink:
		return s.enterLink(id, n)

	case doctree.KindImage:
		return childrenSkip, s.enterImage(n)

	case doctree.KindShortCode:
		return childrenSkip, s.write(n.Emoji)

	case doctree.KindTable:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write("<table>\n")

	case doctree.KindTableRow:
		return childrenNormal, s.enterTableRow(id, n)

	case doctree.KindTableCell:
		return childrenNormal, s.enterTableCell(id)

	case doctree.KindFootnoteDefinition:
		return childrenNormal, s.enterFootnoteDefinition(n)

	case doctree.KindFootnoteReference:
		return childrenSkip, s.writeFootnoteReference(n)

	case doctree.KindAlert:
		if err := s.out.cr(); err != nil {
			return childrenNormal, err
		}
		return childrenNormal, s.write(alertOpen(n.Alert))
	}
	return childrenSkip, nil
}

func (s *renderState) leave(id doctree.NodeID) error {
	n := s.tree.Node(id)
	switch n.Kind {
	case doctree.KindBlockQuote:
		if err := s.out.cr(); err != nil {
			return err
		}
		return s.write("</blockquote>\n")

	case doctree.KindList:
		return s.leaveList(id, n)

	case doctree.KindItem:
		return s.write("</li>\n")

	case doctree.KindTaskItem:
		return s.write("</ac:task-body></ac:task>\n")

	case doctree.KindDescriptionList:
		return s.write("</dl>\n")

	case doctree.KindDescriptionTerm:
		return s.write("</dt>\n")

	case doctree.KindDescriptionDetails:
		return s.write("</dd>\n")

	case doctree.KindHeading:
		return s.write("</h", strconv.Itoa(n.Level), ">\n")

	case doctree.KindParagraph:
		if s.tightParagraph(id) {
			return nil
		}
		parent := s.tree.Parent(id)
		if s.tree.KindOf(parent) == doctree.KindFootnoteDefinition && s.tree.LastChild(parent) == id {
			if err := s.write(" "); err != nil {
				return err
			}
			if _, err := s.writeFootnoteBackref(s.tree.Node(parent)); err != nil {
				return err
			}
		}
		return s.write("</p>\n")

	case doctree.KindStrong:
		if s.tree.KindOf(s.tree.Parent(id)) == doctree.KindStrong {
			return nil
		}
		return s.write("</strong>")

	case doctree.KindEmph:
		return s.write("</em>")

	case doctree.KindStrikethrough:
		return s.write("</del>")

	case doctree.KindSuperscript:
		return s.write("</sup>")

	case doctree.KindLink:
		return s.leaveLink(id)

	case doctree.KindImage:
		return s.write("</ac:image>")

	case doctree.KindTable:
		return s.leaveTable(id)

	case doctree.KindTableRow:
		return s.leaveTableRow(n)

	case doctree.KindTableCell:
		return s.leaveTableCell(id)

	case doctree.KindFootnoteDefinition:
		return s.leaveFootnoteDefinition(n)

	case doctree.KindAlert:
		return s.write(alertClose(n.Alert))
	}
	return nil
}

// tightParagraph reports whether a paragraph is rendered without its own tag:
// inside a tight list or directly under a description term.
func (s *renderState) tightParagraph(id doctree.NodeID) bool {
	parent := s.tree.Parent(id)
	if s.tree.KindOf(parent) == doctree.KindDescriptionTerm {
		return true
	}
	grand := s.tree.Parent(parent)
	if s.tree.KindOf(grand) == doctree.KindList {
		return s.tree.Node(grand).List.Tight
	}
	return false
}

func (s *renderState) enterList(id doctree.NodeID, n *doctree.Node) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	switch {
	case !n.List.Ordered && s.hasTaskChildren(id):
		return s.write("<ac:task-list>")
	case !n.List.Ordered:
		return s.write("<ul>\n")
	case n.List.Start == 1 || n.List.Start == 0:
		return s.write("<ol>\n")
	default:
		return s.write("<ol start=\"", strconv.Itoa(n.List.Start), "\">\n")
	}
}

func (s *renderState) leaveList(id doctree.NodeID, n *doctree.Node) error {
	switch {
	case !n.List.Ordered && s.hasTaskChildren(id):
		return s.write("</ac:task-list>\n")
	case !n.List.Ordered:
		return s.write("</ul>\n")
	default:
		return s.write("</ol>\n")
	}
}

func (s *renderState) hasTaskChildren(id doctree.NodeID) bool {
	for _, child := range s.tree.Children(id) {
		if s.tree.KindOf(child) == doctree.KindTaskItem {
			return true
		}
	}
	return false
}

func (s *renderState) enterTask(n *doctree.Node) error {
	if err := s.out.cr(); err != nil {
		return err
	}
	status := "incomplete"
	if n.Checked {
		status = "complete"
	}
	id := s.nextTaskID
	s.nextTaskID++
	return s.write(
		"<ac:task><ac:task-id>", strconv.Itoa(id), "</ac:task-id>",
		"<ac:task-status>", status, "</ac:task-status><ac:task-body>",
	)
}

func (s *renderState) writeRawHTMLBlock(literal []byte) error {
	switch s.opts.RawHTML {
	case RawHTMLEscape:
		return Escape(s.out, literal)
	case RawHTMLUnsafe:
		if s.opts.TagFilter {
			return FilterTags(s.out, literal)
		}
		_, err := s.out.Write(literal)
		return err
	}
	return s.write("<!-- raw HTML omitted -->")
}

func (s *renderState) writeRawHTMLInline(literal []byte) error {
	switch s.opts.RawHTML {
	case RawHTMLEscape:
		return Escape(s.out, literal)
	case RawHTMLUnsafe:
		if s.opts.TagFilter && TagFilter(literal) {
			if err := s.write("&lt;"); err != nil {
				return err
			}
			_, err := s.out.Write(literal[1:])
			return err
		}
		_, err := s.out.Write(literal)
		return err
	}
	return s.write("<!-- raw HTML omitted -->")
}
