// Package archive decides lifecycle transitions for remote documents that no
// longer, or once again, correspond to a local page.
package archive

import "github.com/goliatone/go-markspace/pkg/interfaces"

// OrphanResolver reports whether a remote document lacks a local source.
// *links.Registry satisfies it.
type OrphanResolver interface {
	IsOrphaned(doc interfaces.RemoteDocument) bool
}

// Action is the transition the policy selects for a remote document.
type Action string

const (
	ActionKeep      Action = "keep"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
)

// ShouldArchive reports whether doc is a managed, unarchived page whose title
// is no longer claimed locally.
func ShouldArchive(doc interfaces.RemoteDocument, resolver OrphanResolver) bool {
	if doc.IsFolder() || doc.Archived() || !doc.Managed() {
		return false
	}
	return resolver.IsOrphaned(doc)
}

// ShouldUnarchive reports whether doc is a managed, archived page whose title
// is claimed locally again.
func ShouldUnarchive(doc interfaces.RemoteDocument, resolver OrphanResolver) bool {
	if doc.IsFolder() || !doc.Archived() || !doc.Managed() {
		return false
	}
	return !resolver.IsOrphaned(doc)
}

// Decide folds both predicates into a single action.
func Decide(doc interfaces.RemoteDocument, resolver OrphanResolver) Action {
	switch {
	case ShouldArchive(doc, resolver):
		return ActionArchive
	case ShouldUnarchive(doc, resolver):
		return ActionUnarchive
	}
	return ActionKeep
}

// Decision pairs a remote document with the action chosen for it.
type Decision struct {
	Document interfaces.RemoteDocument
	Action   Action
}

// Plan returns the non-keep decisions for docs in their listed order.
func Plan(docs []interfaces.RemoteDocument, resolver OrphanResolver) []Decision {
	var out []Decision
	for _, doc := range docs {
		if action := Decide(doc, resolver); action != ActionKeep {
			out = append(out, Decision{Document: doc, Action: action})
		}
	}
	return out
}
