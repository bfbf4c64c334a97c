package doctree

import (
	"bytes"
	"fmt"
)

// Tree is an arena of nodes rooted at Root.
type Tree struct {
	nodes []Node
	Root  NodeID
}

// New returns a tree holding only an empty document node.
func New() *Tree {
	t := &Tree{}
	t.Root = t.add(Node{Kind: KindDocument})
	return t
}

func (t *Tree) add(n Node) NodeID {
	n.parent = NoNode
	n.children = nil
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Len reports how many arena slots are in use, detached nodes included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns the node stored at id. The pointer stays valid until the next
// Append call.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Append stores n as the last child of parent and returns its id.
func (t *Tree) Append(parent NodeID, n Node) NodeID {
	if !t.valid(parent) {
		panic(fmt.Sprintf("doctree: append to unknown node %d", parent))
	}
	id := t.add(n)
	t.nodes[id].parent = parent
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Detach unlinks id from its parent. The node and its subtree stay in the
// arena but are no longer reachable from the root.
func (t *Tree) Detach(id NodeID) {
	if !t.valid(id) {
		return
	}
	parent := t.nodes[id].parent
	if parent == NoNode {
		return
	}
	siblings := t.nodes[parent].children
	for i, child := range siblings {
		if child == id {
			t.nodes[parent].children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	t.nodes[id].parent = NoNode
}

// Children returns the ordered child ids of id. Callers must not modify the
// returned slice.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id].children
}

// Parent returns the parent of id or NoNode.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].parent
}

// FirstChild returns the first child of id or NoNode.
func (t *Tree) FirstChild(id NodeID) NodeID {
	children := t.Children(id)
	if len(children) == 0 {
		return NoNode
	}
	return children[0]
}

// LastChild returns the last child of id or NoNode.
func (t *Tree) LastChild(id NodeID) NodeID {
	children := t.Children(id)
	if len(children) == 0 {
		return NoNode
	}
	return children[len(children)-1]
}

// PreviousSibling returns the sibling immediately before id or NoNode.
func (t *Tree) PreviousSibling(id NodeID) NodeID {
	parent := t.Parent(id)
	if parent == NoNode {
		return NoNode
	}
	prev := NoNode
	for _, child := range t.nodes[parent].children {
		if child == id {
			return prev
		}
		prev = child
	}
	return NoNode
}

// Index returns the position of id among its siblings, or -1.
func (t *Tree) Index(id NodeID) int {
	parent := t.Parent(id)
	if parent == NoNode {
		return -1
	}
	for i, child := range t.nodes[parent].children {
		if child == id {
			return i
		}
	}
	return -1
}

// KindOf returns the kind at id, or KindUnknown for NoNode.
func (t *Tree) KindOf(id NodeID) Kind {
	if !t.valid(id) {
		return KindUnknown
	}
	return t.nodes[id].Kind
}

// Phase marks whether Walk is entering or leaving a node.
type Phase uint8

const (
	Pre Phase = iota
	Post
)

// WalkStatus steers Walk from inside the visitor.
type WalkStatus uint8

const (
	WalkContinue WalkStatus = iota
	WalkSkipChildren
	WalkStop
)

// Walk visits the subtree rooted at id depth first with an explicit stack.
// Each node is seen twice: once in Pre and once in Post, unless the Pre visit
// returned WalkSkipChildren, in which case Post is still delivered.
func (t *Tree) Walk(id NodeID, visit func(id NodeID, phase Phase) (WalkStatus, error)) error {
	type frame struct {
		id    NodeID
		phase Phase
	}
	if !t.valid(id) {
		return nil
	}
	stack := []frame{{id: id, phase: Pre}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		status, err := visit(top.id, top.phase)
		if err != nil {
			return err
		}
		if status == WalkStop {
			return nil
		}
		if top.phase == Post {
			continue
		}
		stack = append(stack, frame{id: top.id, phase: Post})
		if status == WalkSkipChildren {
			continue
		}
		children := t.nodes[top.id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], phase: Pre})
		}
	}
	return nil
}

// TextContent concatenates the literal text below id, turning line breaks
// into spaces.
func (t *Tree) TextContent(id NodeID) string {
	var buf bytes.Buffer
	_ = t.Walk(id, func(cur NodeID, phase Phase) (WalkStatus, error) {
		if phase != Pre {
			return WalkContinue, nil
		}
		n := &t.nodes[cur]
		switch n.Kind {
		case KindText, KindCode, KindHTMLInline:
			buf.Write(n.Literal)
		case KindLineBreak, KindSoftBreak:
			buf.WriteByte(' ')
		case KindShortCode:
			buf.WriteString(n.Emoji)
		}
		return WalkContinue, nil
	})
	return buf.String()
}

// Find returns every reachable node of the given kind in document order.
func (t *Tree) Find(kind Kind) []NodeID {
	var out []NodeID
	_ = t.Walk(t.Root, func(cur NodeID, phase Phase) (WalkStatus, error) {
		if phase == Pre && t.nodes[cur].Kind == kind {
			out = append(out, cur)
		}
		return WalkContinue, nil
	})
	return out
}
