package syncer

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

func childrenInOrder(ids ...string) []interfaces.RemoteDocument {
	out := make([]interfaces.RemoteDocument, len(ids))
	for i, id := range ids {
		out[i] = interfaces.RemoteDocument{ID: id, Title: "Page " + id, ParentID: "99", Position: i}
	}
	return out
}

// applyMoves replays moves against ids the way MoveAfter does.
func applyMoves(ids []string, moves []move) []string {
	order := slices.Clone(ids)
	for _, m := range moves {
		order = slices.DeleteFunc(order, func(id string) bool { return id == m.ID })
		at := slices.Index(order, m.After) + 1
		order = slices.Insert(order, at, m.ID)
	}
	return order
}

func TestPlanMoves(t *testing.T) {
	cases := []struct {
		name  string
		input []string
		moves []move
	}{
		{name: "two pages", input: []string{"3", "2"}, moves: []move{{ID: "3", After: "2"}}},
		{name: "already sorted", input: []string{"0", "1", "2"}},
		{name: "one out of place", input: []string{"0", "3", "1", "2"}, moves: []move{{ID: "3", After: "2"}}},
		{name: "first to last", input: []string{"3", "0", "1", "2"}, moves: []move{{ID: "3", After: "2"}}},
		{name: "last two to front", input: []string{"2", "3", "0", "1"}, moves: []move{{ID: "2", After: "1"}, {ID: "3", After: "2"}}},
		{name: "reversed head", input: []string{"3", "2", "0", "1"}, moves: []move{{ID: "2", After: "1"}, {ID: "3", After: "2"}}},
		{name: "fully reversed", input: []string{"3", "2", "1", "0"}, moves: []move{{ID: "1", After: "0"}, {ID: "2", After: "1"}, {ID: "3", After: "2"}}},
		{name: "single child", input: []string{"0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			moves := planMoves(childrenInOrder(tc.input...))
			if diff := cmp.Diff(tc.moves, moves); diff != "" {
				t.Fatalf("moves mismatch (-want +got):\n%s", diff)
			}
			result := applyMoves(tc.input, moves)
			if !slices.IsSorted(result) {
				t.Fatalf("not sorted after moves: %v", result)
			}
		})
	}
}

func TestChildrenOfSkipsArchivedAndOrdersByPosition(t *testing.T) {
	docs := map[string]interfaces.RemoteDocument{
		"a": {ID: "a", Title: "A", ParentID: "p", Position: 2},
		"b": {ID: "b", Title: "B", ParentID: "p", Position: 0},
		"c": {ID: "c", Title: "C", ParentID: "p", Position: 1, Status: interfaces.RemoteStatusArchived},
		"d": {ID: "d", Title: "D", ParentID: "other"},
	}
	var ids []string
	for _, doc := range childrenOf(docs, "p") {
		ids = append(ids, doc.ID)
	}
	if diff := cmp.Diff([]string{"b", "a"}, ids); diff != "" {
		t.Fatalf("children mismatch (-want +got):\n%s", diff)
	}
}
