package spacestore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// BunRepository mirrors a space in a Bun-backed database. Several spaces can
// share the same tables.
type BunRepository struct {
	db       *bun.DB
	spaceKey string
}

// NewBunRepository constructs a mirror of spaceKey stored in db.
func NewBunRepository(db *bun.DB, spaceKey string) *BunRepository {
	return &BunRepository{db: db, spaceKey: spaceKey}
}

// List returns every node of the space ordered by title.
func (r *BunRepository) List(ctx context.Context) ([]interfaces.RemoteDocument, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var models []nodeModel
	if err := r.db.NewSelect().Model(&models).Where("space_key = ?", r.spaceKey).Order("title ASC").Scan(ctx); err != nil {
		return nil, storageError(err, "list nodes")
	}
	out := make([]interfaces.RemoteDocument, len(models))
	for i := range models {
		out[i] = modelToDocument(&models[i])
	}
	return out, nil
}

// Get retrieves a node by id.
func (r *BunRepository) Get(ctx context.Context, id string) (*interfaces.RemoteDocument, error) {
	model, err := r.find(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	doc := modelToDocument(model)
	return &doc, nil
}

// Create adds an empty node. Titles are unique across the space.
func (r *BunRepository) Create(ctx context.Context, node interfaces.CreateNode) (*interfaces.RemoteDocument, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	node, err := validateCreate(node)
	if err != nil {
		return nil, err
	}

	exists, err := r.db.NewSelect().Model((*nodeModel)(nil)).
		Where("space_key = ?", r.spaceKey).
		Where("title = ?", node.Title).
		Exists(ctx)
	if err != nil {
		return nil, storageError(err, "check title")
	}
	if exists {
		return nil, nodeExistsError(node.Title)
	}
	if node.ParentID != "" {
		if _, err := r.find(ctx, node.ParentID); err != nil {
			return nil, err
		}
	}

	position, err := r.childCount(ctx, node.ParentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	model := nodeModel{
		ID:            nodeID(r.spaceKey, node.Title),
		SpaceKey:      r.spaceKey,
		Title:         node.Title,
		Kind:          string(node.Kind),
		Status:        string(interfaces.RemoteStatusCurrent),
		ParentID:      node.ParentID,
		Path:          node.Path,
		VersionNumber: 1,
		Position:      position,
		Labels:        []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := r.db.NewInsert().Model(&model).Exec(ctx); err != nil {
		return nil, storageError(err, "create node")
	}
	doc := modelToDocument(&model)
	return &doc, nil
}

// Update publishes a new version of a page.
func (r *BunRepository) Update(ctx context.Context, node interfaces.UpdateNode) (*interfaces.RemoteDocument, error) {
	model, err := r.find(ctx, node.ID)
	if err != nil {
		return nil, err
	}
	if model.Kind == string(interfaces.NodeKindFolder) {
		return nil, notAPageError(node.ID)
	}

	if title := strings.TrimSpace(node.Title); title != "" {
		model.Title = title
	}
	if node.ParentID != "" && node.ParentID != model.ParentID {
		position, err := r.childCount(ctx, node.ParentID)
		if err != nil {
			return nil, err
		}
		model.ParentID = node.ParentID
		model.Position = position
	}
	model.Body = node.Body
	model.VersionMessage = node.VersionMessage
	model.VersionNumber++
	model.Labels = append([]string{}, node.Labels...)
	model.Emoji = node.Emoji
	model.PageStatus = string(node.Status)
	model.UpdatedAt = time.Now().UTC()

	if _, err := r.db.NewUpdate().
		Model(model).
		Column("title", "parent_id", "position", "body", "version_message", "version_number", "labels", "emoji", "page_status", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, storageError(err, "update node")
	}
	doc := modelToDocument(model)
	return &doc, nil
}

// Archive moves a node to the archived state.
func (r *BunRepository) Archive(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, interfaces.RemoteStatusArchived)
}

// Unarchive moves a node back to the current state.
func (r *BunRepository) Unarchive(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, interfaces.RemoteStatusCurrent)
}

func (r *BunRepository) setStatus(ctx context.Context, id string, status interfaces.RemoteStatus) error {
	model, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	model.Status = string(status)
	model.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NewUpdate().Model(model).Column("status", "updated_at").WherePK().Exec(ctx); err != nil {
		return storageError(err, "update node status")
	}
	return nil
}

// UploadAttachment stores or replaces an attachment of a page.
func (r *BunRepository) UploadAttachment(ctx context.Context, pageID string, attachment interfaces.Attachment) (string, error) {
	name := strings.TrimSpace(attachment.Name)
	if name == "" {
		return "", attachmentNameError(pageID)
	}
	page, err := r.find(ctx, pageID)
	if err != nil {
		return "", err
	}
	if page.Kind == string(interfaces.NodeKindFolder) {
		return "", notAPageError(pageID)
	}

	now := time.Now().UTC()
	model := attachmentModel{
		ID:        attachmentID(pageID, name),
		PageID:    pageID,
		Name:      name,
		Digest:    attachmentDigest(attachment),
		Size:      len(attachment.Data),
		Data:      attachment.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.NewInsert().
		Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("digest = EXCLUDED.digest").
		Set("size = EXCLUDED.size").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return "", storageError(err, "upload attachment")
	}
	return model.ID, nil
}

// Attachments lists the attachments of a page ordered by name.
func (r *BunRepository) Attachments(ctx context.Context, pageID string) ([]interfaces.RemoteAttachment, error) {
	if _, err := r.find(ctx, pageID); err != nil {
		return nil, err
	}
	var models []attachmentModel
	if err := r.db.NewSelect().
		Model(&models).
		Column("id", "page_id", "name", "digest", "size").
		Where("page_id = ?", pageID).
		Order("name ASC").
		Scan(ctx); err != nil {
		return nil, storageError(err, "list attachments")
	}
	out := make([]interfaces.RemoteAttachment, len(models))
	for i, model := range models {
		out[i] = interfaces.RemoteAttachment{
			ID:     model.ID,
			PageID: model.PageID,
			Name:   model.Name,
			Digest: model.Digest,
			Size:   model.Size,
		}
	}
	return out, nil
}

// RemoveAttachment deletes an attachment by id.
func (r *BunRepository) RemoveAttachment(ctx context.Context, id string) error {
	if err := r.ready(); err != nil {
		return err
	}
	res, err := r.db.NewDelete().Model((*attachmentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return storageError(err, "remove attachment")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return attachmentNotFoundError(id)
	}
	return nil
}

// SetCover replaces the cover picture of a page.
func (r *BunRepository) SetCover(ctx context.Context, pageID, cover string) error {
	model, err := r.find(ctx, pageID)
	if err != nil {
		return err
	}
	if model.Kind == string(interfaces.NodeKindFolder) {
		return notAPageError(pageID)
	}
	model.Cover = cover
	model.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NewUpdate().Model(model).Column("cover", "updated_at").WherePK().Exec(ctx); err != nil {
		return storageError(err, "set cover")
	}
	return nil
}

// Children lists the nodes under parentID in their stored order.
func (r *BunRepository) Children(ctx context.Context, parentID string) ([]interfaces.RemoteDocument, error) {
	if _, err := r.find(ctx, parentID); err != nil {
		return nil, err
	}
	return r.children(ctx, r.db, parentID)
}

// MoveAfter places id directly after its sibling targetID and renumbers the
// siblings in one transaction.
func (r *BunRepository) MoveAfter(ctx context.Context, id, targetID string) error {
	model, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	target, err := r.find(ctx, targetID)
	if err != nil {
		return err
	}
	if model.ParentID != target.ParentID || id == targetID {
		return notSiblingsError(id, targetID)
	}

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		siblings, err := r.children(ctx, tx, model.ParentID)
		if err != nil {
			return err
		}
		for position, siblingID := range moveAfter(siblings, id, targetID) {
			if _, err := tx.NewUpdate().
				Model((*nodeModel)(nil)).
				Set("position = ?", position).
				Where("id = ?", siblingID).
				Where("space_key = ?", r.spaceKey).
				Exec(ctx); err != nil {
				return storageError(err, "move node")
			}
		}
		return nil
	})
}

func (r *BunRepository) children(ctx context.Context, db bun.IDB, parentID string) ([]interfaces.RemoteDocument, error) {
	var models []nodeModel
	if err := db.NewSelect().Model(&models).
		Where("space_key = ?", r.spaceKey).
		Where("parent_id = ?", parentID).
		Order("position ASC", "title ASC").
		Scan(ctx); err != nil {
		return nil, storageError(err, "list children")
	}
	out := make([]interfaces.RemoteDocument, len(models))
	for i := range models {
		out[i] = modelToDocument(&models[i])
	}
	return out, nil
}

func (r *BunRepository) childCount(ctx context.Context, parentID string) (int, error) {
	count, err := r.db.NewSelect().Model((*nodeModel)(nil)).
		Where("space_key = ?", r.spaceKey).
		Where("parent_id = ?", parentID).
		Count(ctx)
	if err != nil {
		return 0, storageError(err, "count children")
	}
	return count, nil
}

func (r *BunRepository) find(ctx context.Context, id string) (*nodeModel, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var model nodeModel
	err := r.db.NewSelect().Model(&model).
		Where("id = ?", id).
		Where("space_key = ?", r.spaceKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nodeNotFoundError(id)
		}
		return nil, storageError(err, "load node")
	}
	return &model, nil
}

func (r *BunRepository) ready() error {
	if r.db == nil {
		return goerrors.New("spacestore: bun repository requires a database", goerrors.CategoryInternal)
	}
	return nil
}

func storageError(err error, operation string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "spacestore: "+operation).
		WithMetadata(map[string]any{"operation": operation})
}

type nodeModel struct {
	bun.BaseModel `bun:"table:space_nodes"`

	ID             string    `bun:",pk"`
	SpaceKey       string    `bun:"space_key,notnull"`
	Title          string    `bun:"title,notnull"`
	Kind           string    `bun:"kind"`
	Status         string    `bun:"status"`
	ParentID       string    `bun:"parent_id"`
	Path           string    `bun:"path"`
	VersionMessage string    `bun:"version_message"`
	VersionNumber  int       `bun:"version_number"`
	Body           string    `bun:"body"`
	Labels         []string  `bun:"labels,type:jsonb"`
	Emoji          string    `bun:"emoji"`
	PageStatus     string    `bun:"page_status"`
	Cover          string    `bun:"cover"`
	Position       int       `bun:"position"`
	CreatedAt      time.Time `bun:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

type attachmentModel struct {
	bun.BaseModel `bun:"table:space_attachments"`

	ID        string    `bun:",pk"`
	PageID    string    `bun:"page_id,notnull"`
	Name      string    `bun:"name,notnull"`
	Digest    string    `bun:"digest"`
	Size      int       `bun:"size"`
	Data      []byte    `bun:"data"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

func modelToDocument(model *nodeModel) interfaces.RemoteDocument {
	if model == nil {
		return interfaces.RemoteDocument{}
	}
	var labels []string
	if len(model.Labels) > 0 {
		labels = append([]string(nil), model.Labels...)
	}
	return interfaces.RemoteDocument{
		ID:             model.ID,
		Title:          model.Title,
		Status:         interfaces.RemoteStatus(model.Status),
		Kind:           interfaces.NodeKind(model.Kind),
		ParentID:       model.ParentID,
		Path:           model.Path,
		VersionMessage: model.VersionMessage,
		VersionNumber:  model.VersionNumber,
		Body:           model.Body,
		Labels:         labels,
		Emoji:          model.Emoji,
		PageStatus:     interfaces.PageStatus(model.PageStatus),
		Cover:          model.Cover,
		Position:       model.Position,
	}
}

var _ Repository = (*BunRepository)(nil)
