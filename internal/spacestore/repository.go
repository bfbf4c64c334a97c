// Package spacestore keeps a local mirror of a published space. It backs the
// CLI's offline publishing target and the sync tests.
package spacestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/identity"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

const (
	TextCodeNodeNotFound     = "NODE_NOT_FOUND"
	TextCodeNodeExists       = "NODE_EXISTS"
	TextCodeTitleRequired    = "TITLE_REQUIRED"
	TextCodeNotAPage         = "NOT_A_PAGE"
	TextCodeAttachmentNoName = "ATTACHMENT_NAME_REQUIRED"
	TextCodeAttachmentAbsent = "ATTACHMENT_NOT_FOUND"
	TextCodeNotSiblings      = "NOT_SIBLINGS"
)

// Repository is a RemoteSpace that can also be inspected.
type Repository interface {
	interfaces.RemoteSpace
	Get(ctx context.Context, id string) (*interfaces.RemoteDocument, error)
	// Children lists the nodes under parentID in their stored order.
	Children(ctx context.Context, parentID string) ([]interfaces.RemoteDocument, error)
}

func nodeNotFoundError(id string) *goerrors.Error {
	return goerrors.New("node not found: "+id, goerrors.CategoryNotFound).
		WithTextCode(TextCodeNodeNotFound).
		WithMetadata(map[string]any{"id": id})
}

func nodeExistsError(title string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("a node titled '%s' already exists", title), goerrors.CategoryConflict).
		WithTextCode(TextCodeNodeExists).
		WithMetadata(map[string]any{"title": title})
}

func titleRequiredError() *goerrors.Error {
	return goerrors.New("node title is required", goerrors.CategoryBadInput).
		WithTextCode(TextCodeTitleRequired)
}

func notAPageError(id string) *goerrors.Error {
	return goerrors.New("attachments and content can only be stored on pages: "+id, goerrors.CategoryBadInput).
		WithTextCode(TextCodeNotAPage).
		WithMetadata(map[string]any{"id": id})
}

func attachmentNameError(pageID string) *goerrors.Error {
	return goerrors.New("attachment name is required", goerrors.CategoryBadInput).
		WithTextCode(TextCodeAttachmentNoName).
		WithMetadata(map[string]any{"page_id": pageID})
}

func attachmentNotFoundError(id string) *goerrors.Error {
	return goerrors.New("attachment not found: "+id, goerrors.CategoryNotFound).
		WithTextCode(TextCodeAttachmentAbsent).
		WithMetadata(map[string]any{"id": id})
}

func notSiblingsError(id, targetID string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("%s and %s do not share a parent", id, targetID), goerrors.CategoryBadInput).
		WithTextCode(TextCodeNotSiblings).
		WithMetadata(map[string]any{"id": id, "target_id": targetID})
}

// IsNotFound reports whether err was raised for an unknown node.
func IsNotFound(err error) bool {
	var typed *goerrors.Error
	return goerrors.As(err, &typed) && typed.TextCode == TextCodeNodeNotFound
}

func validateCreate(node interfaces.CreateNode) (interfaces.CreateNode, error) {
	node.Title = strings.TrimSpace(node.Title)
	if node.Title == "" {
		return node, titleRequiredError()
	}
	if node.Kind == "" {
		node.Kind = interfaces.NodeKindPage
	}
	return node, nil
}

func nodeID(spaceKey, title string) string {
	return identity.NodeUUID(spaceKey, title).String()
}

func attachmentID(pageID, name string) string {
	return identity.AttachmentUUID(pageID, name).String()
}

func attachmentDigest(attachment interfaces.Attachment) string {
	if attachment.Digest != "" {
		return attachment.Digest
	}
	sum := sha256.Sum256(attachment.Data)
	return hex.EncodeToString(sum[:])
}

func cloneDocument(doc interfaces.RemoteDocument) interfaces.RemoteDocument {
	doc.Labels = slices.Clone(doc.Labels)
	return doc
}

func sortDocuments(docs []interfaces.RemoteDocument) {
	slices.SortFunc(docs, func(a, b interfaces.RemoteDocument) int {
		return strings.Compare(a.Title, b.Title)
	})
}

func sortAttachments(items []interfaces.RemoteAttachment) {
	slices.SortFunc(items, func(a, b interfaces.RemoteAttachment) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// sortSiblings orders nodes by position, then by title for nodes that share
// a position.
func sortSiblings(docs []interfaces.RemoteDocument) {
	slices.SortStableFunc(docs, func(a, b interfaces.RemoteDocument) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Title, b.Title)
	})
}

// moveAfter returns the ids of siblings, already in stored order, with id
// moved directly after targetID.
func moveAfter(siblings []interfaces.RemoteDocument, id, targetID string) []string {
	order := make([]string, 0, len(siblings))
	for _, doc := range siblings {
		if doc.ID != id {
			order = append(order, doc.ID)
		}
	}
	at := slices.Index(order, targetID) + 1
	return slices.Insert(order, at, id)
}
