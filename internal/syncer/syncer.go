// Package syncer publishes a space directory to a RemoteSpace in phases:
// discovery, title registration, node creation, rendering, content updates,
// attachment uploads, covers, child ordering and archive reconciliation.
package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/goliatone/go-markspace/internal/archive"
	"github.com/goliatone/go-markspace/internal/links"
	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/internal/markdown"
	"github.com/goliatone/go-markspace/internal/storagefmt"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// SpaceSource is the local side of a sync.
type SpaceSource interface {
	Key() string
	LoadSpace(ctx context.Context) (*markdown.Space, error)
	ReadAttachment(attachment interfaces.Attachment) ([]byte, error)
	RendererOptions() []storagefmt.Option
}

// Syncer publishes one space.
type Syncer struct {
	source      SpaceSource
	remote      interfaces.RemoteSpace
	logger      interfaces.Logger
	dryRun      bool
	archive     bool
	homepageID  string
	concurrency int
	timeout     time.Duration
}

// Option customises a Syncer.
type Option func(*Syncer)

// WithLogger sets the logger used for progress and diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDryRun plans the sync without calling any mutating remote operation.
func WithDryRun(dryRun bool) Option {
	return func(s *Syncer) {
		s.dryRun = dryRun
	}
}

// WithArchive enables archive reconciliation of orphaned managed pages.
func WithArchive(enabled bool) Option {
	return func(s *Syncer) {
		s.archive = enabled
	}
}

// WithHomepageID binds index.md to an existing remote home page.
func WithHomepageID(id string) Option {
	return func(s *Syncer) {
		s.homepageID = id
	}
}

// WithConcurrency bounds how many pages render at once.
func WithConcurrency(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithTimeout bounds the whole sync.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Syncer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// New constructs a Syncer publishing source to remote.
func New(source SpaceSource, remote interfaces.RemoteSpace, opts ...Option) *Syncer {
	s := &Syncer{
		source:      source,
		remote:      remote,
		logger:      logging.NoOp(),
		concurrency: 4,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// run holds the state shared by the phases of one sync.
type run struct {
	*Syncer
	space    *markdown.Space
	registry *links.Registry
	docs     map[string]interfaces.RemoteDocument
	listed   []interfaces.RemoteDocument
	acc      *reportAccumulator
}

// Sync publishes the space. Errors that stop the whole sync (an invalid space,
// a duplicate title, a failed listing) are returned directly; per-page
// failures are recorded in the report and folded into the returned error.
func (s *Syncer) Sync(ctx context.Context) (*Report, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	r := &run{
		Syncer: s,
		docs:   map[string]interfaces.RemoteDocument{},
		acc:    newReportAccumulator(s.source.Key(), s.dryRun),
	}

	space, err := s.source.LoadSpace(ctx)
	if err != nil {
		return nil, err
	}
	r.space = space
	for _, warning := range space.Warnings {
		r.acc.warn(warning)
	}

	registry, err := space.Registry(s.homepageID)
	if err != nil {
		return nil, err
	}
	r.registry = registry

	if err := r.bindRemote(ctx); err != nil {
		return nil, err
	}
	r.createNodes(ctx)
	rendered := r.render(ctx)
	r.publish(ctx, rendered)
	r.uploadAttachments(ctx)
	r.applyCovers(ctx)
	r.sortChildren(ctx)
	if s.archive {
		r.reconcile(ctx)
	}

	report := r.acc.result()
	s.logger.Info("space synced", "summary", report.Summary(), "dry_run", s.dryRun)
	return report, report.Err()
}

// bindRemote lists the remote space and binds every remote node to the local
// page claiming its title.
func (r *run) bindRemote(ctx context.Context) error {
	docs, err := r.remote.List(ctx)
	if err != nil {
		return remoteError(err, "list", r.source.Key())
	}
	r.listed = docs
	for _, doc := range docs {
		r.docs[doc.ID] = doc
		r.registry.RegisterRemote(doc)
	}

	for _, page := range r.space.Pages {
		id, ok := r.registry.FileID(page.Source)
		if !ok {
			continue
		}
		doc, ok := r.docs[id]
		if !ok || doc.IsFolder() == page.IsFolder() {
			continue
		}
		r.acc.failed(page.Source, page.Title, pageFolderConflictError(page.Source, page.Title, page.IsFolder()))
	}
	return nil
}

// createNodes creates every page missing remotely, parents first. Folders are
// created as folders and pages as empty pages that the publish phase fills.
func (r *run) createNodes(ctx context.Context) {
	created := map[string]bool{}
	var ensure func(page *markdown.Page) bool
	ensure = func(page *markdown.Page) bool {
		if _, ok := r.registry.FileID(page.Source); ok {
			return true
		}
		if done, seen := created[page.Source]; seen {
			return done
		}
		created[page.Source] = false

		parentID := ""
		if parentPath := markdown.ParentPath(page.Source); parentPath != "" {
			parent, ok := r.space.Page(parentPath)
			if !ok || !ensure(parent) {
				r.acc.failed(page.Source, page.Title, missingParentNode(page.Source, parentPath))
				return false
			}
			parentID, _ = r.registry.FileID(parentPath)
		}

		kind := interfaces.NodeKindPage
		if page.IsFolder() {
			kind = interfaces.NodeKindFolder
		}
		logger := logging.WithDocumentContext(r.logger, page.Source, page.Title, "create")
		if r.dryRun {
			r.acc.record(Entry{Source: page.Source, Title: page.Title, Status: StatusCreated, Message: "would create " + string(kind)})
			created[page.Source] = true
			return true
		}

		doc, err := r.remote.Create(ctx, interfaces.CreateNode{
			Title:    page.Title,
			Kind:     kind,
			ParentID: parentID,
			Path:     page.Source,
		})
		if err != nil {
			r.acc.failed(page.Source, page.Title, remoteError(err, "create", page.Title))
			return false
		}
		r.registry.RegisterRemote(*doc)
		r.docs[doc.ID] = *doc
		r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: doc.ID, Status: StatusCreated, Message: "created " + string(kind)})
		logger.Debug("node created", "id", doc.ID, "kind", kind)
		created[page.Source] = true
		return true
	}

	for _, title := range r.registry.NodesToCreate() {
		file, _ := r.registry.FileFor(title)
		page, ok := r.space.Page(file)
		if !ok || r.acc.failedSource(page.Source) {
			continue
		}
		ensure(page)
	}
}

type renderResult struct {
	page     *markdown.Page
	rendered *markdown.RenderedPage
	err      error
}

// render renders every page. Rendering only reads the registry, so pages are
// rendered concurrently up to the configured limit.
func (r *run) render(ctx context.Context) []renderResult {
	results := make([]renderResult, len(r.space.Pages))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	opts := r.source.RendererOptions()

	for i, page := range r.space.Pages {
		results[i].page = page
		if page.IsFolder() || r.acc.failedSource(page.Source) {
			continue
		}
		wg.Add(1)
		go func(i int, page *markdown.Page) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].err = ctx.Err()
				return
			}
			defer func() { <-sem }()
			results[i].rendered, results[i].err = page.Render(r.registry, opts...)
		}(i, page)
	}
	wg.Wait()
	return results
}

// publish updates every rendered page whose content, title or parent changed.
func (r *run) publish(ctx context.Context, results []renderResult) {
	for _, result := range results {
		page := result.page
		if r.acc.failedSource(page.Source) {
			continue
		}
		if page.IsFolder() {
			id, _ := r.registry.FileID(page.Source)
			r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: id, Status: StatusSkipped, Message: "folder"})
			continue
		}
		if result.err != nil {
			r.acc.failed(page.Source, page.Title, result.err)
			continue
		}
		rendered := result.rendered
		logger := logging.WithDocumentContext(r.logger, page.Source, page.Title, "update")
		for _, unresolved := range rendered.Report.UnresolvedLinks {
			r.acc.warn(page.Source + ": unresolved link " + unresolved)
		}
		for _, invalid := range rendered.Report.InvalidLinks {
			r.acc.warn(page.Source + ": invalid link " + invalid)
		}

		id, _ := r.registry.FileID(page.Source)
		parentID := ""
		if rendered.Parent != "" {
			parentID, _ = r.registry.TitleID(rendered.Parent)
		}

		if current, ok := r.docs[id]; ok && unchanged(current, rendered, parentID) {
			r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: id, Status: StatusSkipped, Message: "unchanged"})
			continue
		}

		if r.dryRun {
			r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: id, Status: StatusUpdated, Message: "would update"})
			continue
		}

		doc, err := r.remote.Update(ctx, interfaces.UpdateNode{
			ID:             id,
			Title:          rendered.Title,
			ParentID:       parentID,
			Body:           rendered.Content,
			VersionMessage: rendered.VersionMessage(),
			Labels:         rendered.Labels,
			Emoji:          rendered.Emoji,
			Status:         rendered.Status,
		})
		if err != nil {
			r.acc.failed(page.Source, page.Title, remoteError(err, "update", page.Title))
			continue
		}
		r.docs[doc.ID] = *doc
		r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: doc.ID, Status: StatusUpdated, Message: "updated"})
		logger.Debug("page updated", "id", doc.ID, "version", doc.VersionNumber)
	}
}

// unchanged reports whether the remote version already carries the rendered
// content under the same title and parent.
func unchanged(current interfaces.RemoteDocument, rendered *markdown.RenderedPage, parentID string) bool {
	_, checksum, ok := markdown.ParseVersionMessage(current.VersionMessage)
	if !ok || checksum != rendered.Checksum {
		return false
	}
	return current.Title == rendered.Title && current.ParentID == parentID
}

// uploadAttachments synchronises the files referenced by every published
// page. A file whose stored digest matches is not uploaded again, and stored
// files no page references any more are removed. Every attachment id ends up
// in the registry.
func (r *run) uploadAttachments(ctx context.Context) {
	if r.dryRun {
		return
	}
	for _, page := range r.space.Pages {
		if page.IsFolder() || r.acc.failedSource(page.Source) {
			continue
		}
		pageID, ok := r.registry.FileID(page.Source)
		if !ok {
			continue
		}
		if err := r.syncAttachments(ctx, page, pageID); err != nil {
			r.acc.failed(page.Source, page.Title, err)
		}
	}
}

func (r *run) syncAttachments(ctx context.Context, page *markdown.Page, pageID string) error {
	logger := logging.WithDocumentContext(r.logger, page.Source, page.Title, "attachments")
	existing, err := r.remote.Attachments(ctx, pageID)
	if err != nil {
		return remoteError(err, "list attachments of", page.Title)
	}
	stored := make(map[string]interfaces.RemoteAttachment, len(existing))
	for _, attachment := range existing {
		stored[attachment.Name] = attachment
	}

	referenced := map[string]bool{}
	for _, attachment := range page.Attachments {
		referenced[attachment.Name] = true
		data, err := r.source.ReadAttachment(attachment)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		attachment.Data = data
		attachment.Digest = hex.EncodeToString(sum[:])

		if current, ok := stored[attachment.Name]; ok && current.Digest == attachment.Digest {
			r.registry.RegisterAttachmentID(page.Source, attachment.Source, current.ID)
			logger.Debug("attachment unchanged", "name", attachment.Name, "id", current.ID)
			continue
		}
		id, err := r.remote.UploadAttachment(ctx, pageID, attachment)
		if err != nil {
			return remoteError(err, "upload attachment to", page.Title)
		}
		stored[attachment.Name] = interfaces.RemoteAttachment{
			ID:     id,
			PageID: pageID,
			Name:   attachment.Name,
			Digest: attachment.Digest,
			Size:   len(data),
		}
		r.registry.RegisterAttachmentID(page.Source, attachment.Source, id)
		logger.Debug("attachment uploaded", "name", attachment.Name, "id", id)
	}

	for _, attachment := range existing {
		if referenced[attachment.Name] {
			continue
		}
		if err := r.remote.RemoveAttachment(ctx, attachment.ID); err != nil {
			return remoteError(err, "remove attachment from", page.Title)
		}
		r.acc.append(Entry{Source: page.Source, Title: attachment.Name, ID: attachment.ID, Status: StatusDeleted, Message: "attachment removed"})
		logger.Debug("attachment removed", "name", attachment.Name, "id", attachment.ID)
	}
	return nil
}

// applyCovers publishes the cover picture of every page. A local cover is
// published as the id its attachment was stored under; a page without a
// cover clears any cover set before.
func (r *run) applyCovers(ctx context.Context) {
	if r.dryRun {
		return
	}
	for _, page := range r.space.Pages {
		if page.IsFolder() || r.acc.failedSource(page.Source) {
			continue
		}
		pageID, ok := r.registry.FileID(page.Source)
		if !ok {
			continue
		}
		doc, ok := r.docs[pageID]
		if !ok {
			continue
		}

		cover, local := page.CoverLink()
		if local {
			id, found := r.registry.AttachmentID(page.Source, cover)
			if !found {
				r.acc.failed(page.Source, page.Title, missingCoverError(page.Source, cover))
				continue
			}
			cover = id
		}
		if doc.Cover == cover {
			continue
		}
		if err := r.remote.SetCover(ctx, pageID, cover); err != nil {
			r.acc.failed(page.Source, page.Title, remoteError(err, "set cover of", page.Title))
			continue
		}
		doc.Cover = cover
		r.docs[pageID] = doc
		r.acc.record(Entry{Source: page.Source, Title: page.Title, ID: pageID, Status: StatusUpdated, Message: "cover updated"})
		logging.WithDocumentContext(r.logger, page.Source, page.Title, "cover").Debug("cover updated", "cover", cover)
	}
}

// sortChildren orders by title the children of every page that asks for it.
// Only children out of place are moved.
func (r *run) sortChildren(ctx context.Context) {
	for _, page := range r.space.Pages {
		if !page.SortsChildren() || r.acc.failedSource(page.Source) {
			continue
		}
		parentID, ok := r.registry.FileID(page.Source)
		if !ok {
			continue
		}
		logger := logging.WithDocumentContext(r.logger, page.Source, page.Title, "sort")
		for _, m := range planMoves(childrenOf(r.docs, parentID)) {
			child, after := r.docs[m.ID], r.docs[m.After]
			source, _ := r.registry.FileFor(child.Title)
			if r.dryRun {
				r.acc.append(Entry{Source: source, Title: child.Title, ID: child.ID, Status: StatusReordered, Message: "would move after " + after.Title})
				continue
			}
			if err := r.remote.MoveAfter(ctx, m.ID, m.After); err != nil {
				r.acc.failed(page.Source, page.Title, remoteError(err, "reorder children of", page.Title))
				break
			}
			r.acc.append(Entry{Source: source, Title: child.Title, ID: child.ID, Status: StatusReordered, Message: "moved after " + after.Title})
			logger.Debug("child reordered", "child", child.Title, "after", after.Title)
		}
	}
}

// reconcile archives managed pages no local page claims any more and
// unarchives those that are claimed again. It plans over the remote state as
// left by the publish phase, so pages retitled in this run count as claimed.
func (r *run) reconcile(ctx context.Context) {
	current := make([]interfaces.RemoteDocument, 0, len(r.listed))
	for _, doc := range r.listed {
		if published, ok := r.docs[doc.ID]; ok {
			doc = published
		}
		current = append(current, doc)
	}

	for _, decision := range archive.Plan(current, r.registry) {
		doc := decision.Document
		status := StatusArchived
		call := r.remote.Archive
		if decision.Action == archive.ActionUnarchive {
			status = StatusUnarchived
			call = r.remote.Unarchive
		}

		source, _ := r.registry.FileFor(doc.Title)
		if r.dryRun {
			r.acc.append(Entry{Source: source, Title: doc.Title, ID: doc.ID, Status: status, Message: "would " + string(decision.Action)})
			continue
		}
		if err := call(ctx, doc.ID); err != nil {
			wrapped := remoteError(err, string(decision.Action), doc.Title)
			r.acc.append(Entry{Source: source, Title: doc.Title, ID: doc.ID, Status: StatusError, Message: wrapped.Error(), Err: wrapped})
			continue
		}
		r.acc.append(Entry{Source: source, Title: doc.Title, ID: doc.ID, Status: status, Message: string(decision.Action) + "d"})
		logging.WithDocumentContext(r.logger, source, doc.Title, string(decision.Action)).
			Info("remote document "+string(status), "id", doc.ID)
	}
}
