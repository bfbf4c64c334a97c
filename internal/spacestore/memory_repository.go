package spacestore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// MemoryRepository mirrors a space in memory for tests and dry runs.
type MemoryRepository struct {
	mu          sync.RWMutex
	spaceKey    string
	nodes       map[string]interfaces.RemoteDocument
	attachments map[string]interfaces.RemoteAttachment
}

// NewMemoryRepository constructs an empty mirror of spaceKey.
func NewMemoryRepository(spaceKey string) *MemoryRepository {
	return &MemoryRepository{
		spaceKey:    spaceKey,
		nodes:       make(map[string]interfaces.RemoteDocument),
		attachments: make(map[string]interfaces.RemoteAttachment),
	}
}

// Seed stores documents as they are, keeping their ids. Documents without an
// id get the deterministic id of their title.
func (r *MemoryRepository) Seed(docs ...interfaces.RemoteDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = nodeID(r.spaceKey, doc.Title)
		}
		if doc.Status == "" {
			doc.Status = interfaces.RemoteStatusCurrent
		}
		if doc.Kind == "" {
			doc.Kind = interfaces.NodeKindPage
		}
		r.nodes[doc.ID] = cloneDocument(doc)
	}
}

// List returns every node ordered by title.
func (r *MemoryRepository) List(context.Context) ([]interfaces.RemoteDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]interfaces.RemoteDocument, 0, len(r.nodes))
	for _, doc := range r.nodes {
		out = append(out, cloneDocument(doc))
	}
	sortDocuments(out)
	return out, nil
}

// Get retrieves a node by id.
func (r *MemoryRepository) Get(_ context.Context, id string) (*interfaces.RemoteDocument, error) {
	r.mu.RLock()
	doc, ok := r.nodes[strings.TrimSpace(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, nodeNotFoundError(id)
	}
	cloned := cloneDocument(doc)
	return &cloned, nil
}

// Create adds an empty node. Titles are unique across the space.
func (r *MemoryRepository) Create(_ context.Context, node interfaces.CreateNode) (*interfaces.RemoteDocument, error) {
	node, err := validateCreate(node)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.nodes {
		if existing.Title == node.Title {
			return nil, nodeExistsError(node.Title)
		}
	}
	if node.ParentID != "" {
		if _, ok := r.nodes[node.ParentID]; !ok {
			return nil, nodeNotFoundError(node.ParentID)
		}
	}

	doc := interfaces.RemoteDocument{
		ID:            nodeID(r.spaceKey, node.Title),
		Title:         node.Title,
		Status:        interfaces.RemoteStatusCurrent,
		Kind:          node.Kind,
		ParentID:      node.ParentID,
		Path:          node.Path,
		VersionNumber: 1,
		Position:      r.childCount(node.ParentID),
	}
	r.nodes[doc.ID] = doc
	out := cloneDocument(doc)
	return &out, nil
}

// Update publishes a new version of a page.
func (r *MemoryRepository) Update(_ context.Context, node interfaces.UpdateNode) (*interfaces.RemoteDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.nodes[node.ID]
	if !ok {
		return nil, nodeNotFoundError(node.ID)
	}
	if doc.IsFolder() {
		return nil, notAPageError(node.ID)
	}
	if title := strings.TrimSpace(node.Title); title != "" {
		doc.Title = title
	}
	if node.ParentID != "" && node.ParentID != doc.ParentID {
		doc.Position = r.childCount(node.ParentID)
		doc.ParentID = node.ParentID
	}
	doc.Body = node.Body
	doc.VersionMessage = node.VersionMessage
	doc.VersionNumber++
	doc.Labels = slices.Clone(node.Labels)
	doc.Emoji = node.Emoji
	doc.PageStatus = node.Status
	r.nodes[doc.ID] = doc

	out := cloneDocument(doc)
	return &out, nil
}

// Archive moves a node to the archived state.
func (r *MemoryRepository) Archive(_ context.Context, id string) error {
	return r.setStatus(id, interfaces.RemoteStatusArchived)
}

// Unarchive moves a node back to the current state.
func (r *MemoryRepository) Unarchive(_ context.Context, id string) error {
	return r.setStatus(id, interfaces.RemoteStatusCurrent)
}

func (r *MemoryRepository) setStatus(id string, status interfaces.RemoteStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.nodes[id]
	if !ok {
		return nodeNotFoundError(id)
	}
	doc.Status = status
	r.nodes[id] = doc
	return nil
}

// UploadAttachment stores or replaces an attachment of a page.
func (r *MemoryRepository) UploadAttachment(_ context.Context, pageID string, attachment interfaces.Attachment) (string, error) {
	name := strings.TrimSpace(attachment.Name)
	if name == "" {
		return "", attachmentNameError(pageID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	page, ok := r.nodes[pageID]
	if !ok {
		return "", nodeNotFoundError(pageID)
	}
	if page.IsFolder() {
		return "", notAPageError(pageID)
	}

	id := attachmentID(pageID, name)
	r.attachments[id] = interfaces.RemoteAttachment{
		ID:     id,
		PageID: pageID,
		Name:   name,
		Digest: attachmentDigest(attachment),
		Size:   len(attachment.Data),
	}
	return id, nil
}

// Attachments lists the attachments of a page ordered by name.
func (r *MemoryRepository) Attachments(_ context.Context, pageID string) ([]interfaces.RemoteAttachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.nodes[pageID]; !ok {
		return nil, nodeNotFoundError(pageID)
	}
	var out []interfaces.RemoteAttachment
	for _, stored := range r.attachments {
		if stored.PageID == pageID {
			out = append(out, stored)
		}
	}
	sortAttachments(out)
	return out, nil
}

// RemoveAttachment deletes an attachment by id.
func (r *MemoryRepository) RemoveAttachment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[id]; !ok {
		return attachmentNotFoundError(id)
	}
	delete(r.attachments, id)
	return nil
}

// SetCover replaces the cover picture of a page.
func (r *MemoryRepository) SetCover(_ context.Context, pageID, cover string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.nodes[pageID]
	if !ok {
		return nodeNotFoundError(pageID)
	}
	if doc.IsFolder() {
		return notAPageError(pageID)
	}
	doc.Cover = cover
	r.nodes[pageID] = doc
	return nil
}

// Children lists the nodes under parentID in their stored order.
func (r *MemoryRepository) Children(_ context.Context, parentID string) ([]interfaces.RemoteDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.nodes[parentID]; !ok {
		return nil, nodeNotFoundError(parentID)
	}
	return r.children(parentID), nil
}

// MoveAfter places id directly after its sibling targetID and renumbers the
// siblings.
func (r *MemoryRepository) MoveAfter(_ context.Context, id, targetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.nodes[id]
	if !ok {
		return nodeNotFoundError(id)
	}
	target, ok := r.nodes[targetID]
	if !ok {
		return nodeNotFoundError(targetID)
	}
	if doc.ParentID != target.ParentID || id == targetID {
		return notSiblingsError(id, targetID)
	}
	for position, siblingID := range moveAfter(r.children(doc.ParentID), id, targetID) {
		sibling := r.nodes[siblingID]
		sibling.Position = position
		r.nodes[siblingID] = sibling
	}
	return nil
}

func (r *MemoryRepository) children(parentID string) []interfaces.RemoteDocument {
	var out []interfaces.RemoteDocument
	for _, doc := range r.nodes {
		if doc.ParentID == parentID {
			out = append(out, cloneDocument(doc))
		}
	}
	sortSiblings(out)
	return out
}

func (r *MemoryRepository) childCount(parentID string) int {
	n := 0
	for _, doc := range r.nodes {
		if doc.ParentID == parentID {
			n++
		}
	}
	return n
}

var _ Repository = (*MemoryRepository)(nil)
