package interfaces

import (
	"context"
	"strings"
)

// VersionMessagePrefix marks every version written by markspace. Remote
// documents whose latest version message starts with it are considered managed.
const VersionMessagePrefix = "updated by markspace:"

// RemoteStatus is the lifecycle state of a document in the remote space.
type RemoteStatus string

const (
	RemoteStatusCurrent  RemoteStatus = "current"
	RemoteStatusArchived RemoteStatus = "archived"
	RemoteStatusDraft    RemoteStatus = "draft"
	RemoteStatusTrashed  RemoteStatus = "trashed"
)

// NodeKind distinguishes leaf pages from container folders.
type NodeKind string

const (
	NodeKindPage   NodeKind = "page"
	NodeKindFolder NodeKind = "folder"
)

// RemoteDocument describes a node already published to the remote space.
type RemoteDocument struct {
	ID             string
	Title          string
	Status         RemoteStatus
	Kind           NodeKind
	ParentID       string
	Path           string
	VersionMessage string
	VersionNumber  int
	Body           string
	Labels         []string
	Emoji          string
	PageStatus     PageStatus
	// Cover is the published cover picture: an attachment id or a URL.
	Cover string
	// Position orders a node among the children of its parent.
	Position int
}

// Managed reports whether the last version was written by markspace.
func (d RemoteDocument) Managed() bool {
	return strings.HasPrefix(d.VersionMessage, VersionMessagePrefix)
}

// Archived reports whether the document is in the archived state.
func (d RemoteDocument) Archived() bool {
	return d.Status == RemoteStatusArchived
}

// IsFolder reports whether the document is a container node.
func (d RemoteDocument) IsFolder() bool {
	return d.Kind == NodeKindFolder
}

// CreateNode requests a new, empty node in the remote space.
type CreateNode struct {
	Title    string
	Kind     NodeKind
	ParentID string
	Path     string
}

// UpdateNode publishes new content for an existing page.
type UpdateNode struct {
	ID             string
	Title          string
	ParentID       string
	Body           string
	VersionMessage string
	Labels         []string
	Emoji          string
	Status         PageStatus
}

// Attachment is a local file embedded by or linked from a page.
type Attachment struct {
	// Name is the flat file name used on the remote side.
	Name string
	// Source is the raw link text as written in the page.
	Source string
	Path   string
	Digest string
	Data   []byte
}

// CoverPosition is the vertical focus, in percent, stored with every cover.
const CoverPosition = 50

// RemoteAttachment is an attachment already stored on a remote page.
type RemoteAttachment struct {
	ID     string
	PageID string
	Name   string
	// Digest is the hex SHA-256 recorded when the attachment was uploaded.
	Digest string
	Size   int
}

// RemoteSpace is the collaborator that owns the published state of a space.
// Implementations perform any network or storage I/O; the rendering core never
// calls it directly.
type RemoteSpace interface {
	List(ctx context.Context) ([]RemoteDocument, error)
	Create(ctx context.Context, node CreateNode) (*RemoteDocument, error)
	Update(ctx context.Context, node UpdateNode) (*RemoteDocument, error)
	Archive(ctx context.Context, id string) error
	Unarchive(ctx context.Context, id string) error
	UploadAttachment(ctx context.Context, pageID string, attachment Attachment) (string, error)
	Attachments(ctx context.Context, pageID string) ([]RemoteAttachment, error)
	RemoveAttachment(ctx context.Context, id string) error
	// SetCover replaces the cover picture of a page; an empty cover clears it.
	SetCover(ctx context.Context, pageID, cover string) error
	// MoveAfter places id directly after its sibling targetID.
	MoveAfter(ctx context.Context, id, targetID string) error
}
