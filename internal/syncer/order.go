package syncer

import (
	"slices"
	"strings"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// move places ID directly after its sibling After.
type move struct {
	ID    string
	After string
}

// planMoves returns the moves that order children, given in their current
// order, by title. The longest run already in order starting at the first
// title stays in place; every other child is moved after its predecessor,
// in title order, so each move lands in its final slot.
func planMoves(children []interfaces.RemoteDocument) []move {
	if len(children) < 2 {
		return nil
	}
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b interfaces.RemoteDocument) int {
		return strings.Compare(a.Title, b.Title)
	})
	rank := make(map[string]int, len(sorted))
	for i, doc := range sorted {
		rank[doc.ID] = i
	}

	start := slices.IndexFunc(children, func(doc interfaces.RemoteDocument) bool {
		return doc.ID == sorted[0].ID
	})
	tail := children[start:]
	length := make([]int, len(tail))
	prev := make([]int, len(tail))
	length[0], prev[0] = 1, -1
	best := 0
	for i := 1; i < len(tail); i++ {
		prev[i] = -1
		for j := 0; j < i; j++ {
			if length[j] > 0 && rank[tail[j].ID] < rank[tail[i].ID] && length[j]+1 > length[i] {
				length[i], prev[i] = length[j]+1, j
			}
		}
		if length[i] > length[best] {
			best = i
		}
	}
	keep := map[string]bool{}
	for i := best; i >= 0; i = prev[i] {
		keep[tail[i].ID] = true
	}

	var moves []move
	for i := 1; i < len(sorted); i++ {
		if !keep[sorted[i].ID] {
			moves = append(moves, move{ID: sorted[i].ID, After: sorted[i-1].ID})
		}
	}
	return moves
}

// childrenOf lists the live nodes under parentID in their stored order.
func childrenOf(docs map[string]interfaces.RemoteDocument, parentID string) []interfaces.RemoteDocument {
	var out []interfaces.RemoteDocument
	for _, doc := range docs {
		if doc.ParentID != parentID || doc.Archived() || doc.Status == interfaces.RemoteStatusTrashed {
			continue
		}
		out = append(out, doc)
	}
	slices.SortFunc(out, func(a, b interfaces.RemoteDocument) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out
}
