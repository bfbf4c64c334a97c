package doctree

// NodeID addresses a node inside a Tree arena.
type NodeID int

// NoNode is returned where a lookup has no result, such as the parent of the
// document root.
const NoNode NodeID = -1

// ListData describes a bullet or ordered list.
type ListData struct {
	Ordered bool
	Start   int
	Tight   bool
}

// LinkData carries the destination of a link or image.
type LinkData struct {
	URL   string
	Title string
}

// FootnoteData carries footnote bookkeeping. On definitions RefCount is the
// number of citations; on references RefNum is the 1-based citation number.
type FootnoteData struct {
	Name     string
	Index    int
	RefNum   int
	RefCount int
}

// AlertData describes an admonition block.
type AlertData struct {
	Type  AlertType
	Title string
}

// Node is a single arena slot. Only the payload fields relevant to Kind are
// populated.
type Node struct {
	Kind Kind

	// Literal holds text content for leaves: text, code spans, raw HTML and
	// code block bodies.
	Literal []byte
	// Info is the code block info string.
	Info  string
	Level int

	List     ListData
	Link     LinkData
	Footnote FootnoteData
	Alert    AlertData

	Checked    bool
	Header     bool
	Alignments []Alignment
	Emoji      string

	parent   NodeID
	children []NodeID
}
