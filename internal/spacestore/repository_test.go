package spacestore

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-markspace/internal/identity"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func repositories(t *testing.T) map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(*testing.T) Repository { return NewMemoryRepository("DOCS") },
		"bun": func(t *testing.T) Repository {
			return NewBunRepository(newTestDB(t), "DOCS")
		},
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			folder, err := repo.Create(ctx, interfaces.CreateNode{Title: "Guides", Kind: interfaces.NodeKindFolder})
			if err != nil {
				t.Fatalf("Create folder: %v", err)
			}
			if folder.ID != identity.NodeUUID("DOCS", "Guides").String() {
				t.Fatalf("expected deterministic id, got %s", folder.ID)
			}

			page, err := repo.Create(ctx, interfaces.CreateNode{Title: "Setup", ParentID: folder.ID, Path: "guides/setup.md"})
			if err != nil {
				t.Fatalf("Create page: %v", err)
			}
			if page.Kind != interfaces.NodeKindPage || page.Status != interfaces.RemoteStatusCurrent || page.VersionNumber != 1 {
				t.Fatalf("unexpected new page %+v", page)
			}

			updated, err := repo.Update(ctx, interfaces.UpdateNode{
				ID:             page.ID,
				Body:           "<p>hello</p>",
				VersionMessage: interfaces.VersionMessagePrefix + " source=guides/setup.md; checksum=abc",
				Labels:         []string{"setup"},
				Emoji:          "rocket",
				Status:         interfaces.PageStatusVerified,
			})
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if updated.VersionNumber != 2 || !updated.Managed() || updated.Body != "<p>hello</p>" {
				t.Fatalf("unexpected update result %+v", updated)
			}

			if err := repo.Archive(ctx, page.ID); err != nil {
				t.Fatalf("Archive: %v", err)
			}
			stored, err := repo.Get(ctx, page.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !stored.Archived() {
				t.Fatalf("expected archived page, got %+v", stored)
			}
			if diff := cmp.Diff([]string{"setup"}, stored.Labels); diff != "" {
				t.Fatalf("labels mismatch (-want +got):\n%s", diff)
			}
			if stored.PageStatus != interfaces.PageStatusVerified || stored.Emoji != "rocket" || stored.ParentID != folder.ID {
				t.Fatalf("metadata not persisted: %+v", stored)
			}

			if err := repo.Unarchive(ctx, page.ID); err != nil {
				t.Fatalf("Unarchive: %v", err)
			}

			docs, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var titles []string
			for _, doc := range docs {
				titles = append(titles, doc.Title+":"+string(doc.Status))
			}
			if diff := cmp.Diff([]string{"Guides:current", "Setup:current"}, titles); diff != "" {
				t.Fatalf("list mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositoryRejectsInvalidOperations(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			if _, err := repo.Create(ctx, interfaces.CreateNode{Title: "  "}); err == nil {
				t.Fatalf("expected empty title to be rejected")
			}
			folder, err := repo.Create(ctx, interfaces.CreateNode{Title: "Guides", Kind: interfaces.NodeKindFolder})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := repo.Create(ctx, interfaces.CreateNode{Title: "Guides"}); err == nil {
				t.Fatalf("expected duplicate title to be rejected")
			}
			if _, err := repo.Create(ctx, interfaces.CreateNode{Title: "Orphan", ParentID: "missing"}); !IsNotFound(err) {
				t.Fatalf("expected unknown parent to be not found, got %v", err)
			}
			if _, err := repo.Update(ctx, interfaces.UpdateNode{ID: folder.ID, Body: "x"}); err == nil {
				t.Fatalf("expected folder content update to be rejected")
			}
			if _, err := repo.Update(ctx, interfaces.UpdateNode{ID: "missing"}); !IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
			if err := repo.Archive(ctx, "missing"); !IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
			if _, err := repo.UploadAttachment(ctx, folder.ID, interfaces.Attachment{Name: "a.png"}); err == nil {
				t.Fatalf("expected folder attachment to be rejected")
			}
		})
	}
}

func TestRepositoryAttachments(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			page, err := repo.Create(ctx, interfaces.CreateNode{Title: "Home"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}

			first, err := repo.UploadAttachment(ctx, page.ID, interfaces.Attachment{Name: "b.png", Data: []byte("one")})
			if err != nil {
				t.Fatalf("UploadAttachment: %v", err)
			}
			again, err := repo.UploadAttachment(ctx, page.ID, interfaces.Attachment{Name: "b.png", Data: []byte("three")})
			if err != nil {
				t.Fatalf("UploadAttachment replace: %v", err)
			}
			if first != again {
				t.Fatalf("expected re-upload to keep the attachment id")
			}
			if _, err := repo.UploadAttachment(ctx, page.ID, interfaces.Attachment{Name: "a.pdf", Digest: "fixed"}); err != nil {
				t.Fatalf("UploadAttachment: %v", err)
			}
			if _, err := repo.UploadAttachment(ctx, page.ID, interfaces.Attachment{}); err == nil {
				t.Fatalf("expected nameless attachment to be rejected")
			}

			stored, err := repo.Attachments(ctx, page.ID)
			if err != nil {
				t.Fatalf("Attachments: %v", err)
			}
			if len(stored) != 2 {
				t.Fatalf("expected two attachments, got %+v", stored)
			}
			if stored[0].Name != "a.pdf" || stored[0].Digest != "fixed" {
				t.Fatalf("unexpected first attachment %+v", stored[0])
			}
			if stored[1].Name != "b.png" || stored[1].Size != 5 || len(stored[1].Digest) != 64 {
				t.Fatalf("unexpected replaced attachment %+v", stored[1])
			}
		})
	}
}

func TestRepositoryRemoveAttachmentAndCover(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			page, err := repo.Create(ctx, interfaces.CreateNode{Title: "Home"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			id, err := repo.UploadAttachment(ctx, page.ID, interfaces.Attachment{Name: "cover.png", Data: []byte("png")})
			if err != nil {
				t.Fatalf("UploadAttachment: %v", err)
			}

			if err := repo.SetCover(ctx, page.ID, id); err != nil {
				t.Fatalf("SetCover: %v", err)
			}
			stored, err := repo.Get(ctx, page.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if stored.Cover != id {
				t.Fatalf("expected cover %s, got %q", id, stored.Cover)
			}

			if err := repo.RemoveAttachment(ctx, id); err != nil {
				t.Fatalf("RemoveAttachment: %v", err)
			}
			if err := repo.RemoveAttachment(ctx, id); err == nil {
				t.Fatalf("expected removing a missing attachment to fail")
			}
			remaining, err := repo.Attachments(ctx, page.ID)
			if err != nil {
				t.Fatalf("Attachments: %v", err)
			}
			if len(remaining) != 0 {
				t.Fatalf("expected no attachments, got %+v", remaining)
			}

			folder, err := repo.Create(ctx, interfaces.CreateNode{Title: "Guides", Kind: interfaces.NodeKindFolder})
			if err != nil {
				t.Fatalf("Create folder: %v", err)
			}
			if err := repo.SetCover(ctx, folder.ID, "https://example.com/a.png"); err == nil {
				t.Fatalf("expected folder cover to be rejected")
			}
		})
	}
}

func TestRepositoryMoveAfter(t *testing.T) {
	for name, factory := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory(t)
			ctx := context.Background()

			parent, err := repo.Create(ctx, interfaces.CreateNode{Title: "Home"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			ids := map[string]string{}
			for _, title := range []string{"C", "A", "B"} {
				child, err := repo.Create(ctx, interfaces.CreateNode{Title: title, ParentID: parent.ID})
				if err != nil {
					t.Fatalf("Create %s: %v", title, err)
				}
				ids[title] = child.ID
			}

			order := func() []string {
				t.Helper()
				children, err := repo.Children(ctx, parent.ID)
				if err != nil {
					t.Fatalf("Children: %v", err)
				}
				var titles []string
				for _, child := range children {
					titles = append(titles, child.Title)
				}
				return titles
			}
			if diff := cmp.Diff([]string{"C", "A", "B"}, order()); diff != "" {
				t.Fatalf("creation order mismatch (-want +got):\n%s", diff)
			}

			if err := repo.MoveAfter(ctx, ids["C"], ids["B"]); err != nil {
				t.Fatalf("MoveAfter: %v", err)
			}
			if diff := cmp.Diff([]string{"A", "B", "C"}, order()); diff != "" {
				t.Fatalf("moved order mismatch (-want +got):\n%s", diff)
			}

			if err := repo.MoveAfter(ctx, ids["A"], parent.ID); err == nil {
				t.Fatalf("expected moving after a non-sibling to fail")
			}
			if err := repo.MoveAfter(ctx, ids["A"], "missing"); !IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
		})
	}
}

func TestBunRepositoryScopesBySpace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	docs := NewBunRepository(db, "DOCS")
	team := NewBunRepository(db, "TEAM")
	if _, err := docs.Create(ctx, interfaces.CreateNode{Title: "Home"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := team.Create(ctx, interfaces.CreateNode{Title: "Home"}); err != nil {
		t.Fatalf("same title in another space must be allowed: %v", err)
	}
	listed, err := team.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != identity.NodeUUID("TEAM", "Home").String() {
		t.Fatalf("unexpected team listing %+v", listed)
	}
}

func TestMemoryRepositorySeed(t *testing.T) {
	repo := NewMemoryRepository("DOCS")
	repo.Seed(interfaces.RemoteDocument{ID: "42", Title: "Legacy", Status: interfaces.RemoteStatusArchived})
	repo.Seed(interfaces.RemoteDocument{Title: "Fresh"})

	docs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []interfaces.RemoteDocument{
		{ID: identity.NodeUUID("DOCS", "Fresh").String(), Title: "Fresh", Status: interfaces.RemoteStatusCurrent, Kind: interfaces.NodeKindPage},
		{ID: "42", Title: "Legacy", Status: interfaces.RemoteStatusArchived, Kind: interfaces.NodeKindPage},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("seeded documents mismatch (-want +got):\n%s", diff)
	}
}

type capturingLogger struct {
	messages []string
}

func (l *capturingLogger) Trace(string, ...any) {}
func (l *capturingLogger) Debug(msg string, _ ...any) {
	l.messages = append(l.messages, msg)
}
func (l *capturingLogger) Info(string, ...any)  {}
func (l *capturingLogger) Warn(string, ...any)  {}
func (l *capturingLogger) Error(string, ...any) {}
func (l *capturingLogger) Fatal(string, ...any) {}
func (l *capturingLogger) WithContext(context.Context) interfaces.Logger {
	return l
}

func TestOpenWithDebugLogsQueries(t *testing.T) {
	logger := &capturingLogger{}
	repo, closeFn, err := Open(context.Background(), OpenConfig{
		Driver: DriverSQLite,
		DSN:    "file:debug_test?mode=memory&cache=shared",
		Debug:  true,
		Logger: logger,
	}, "DOCS")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer closeFn()

	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(logger.messages) == 0 || logger.messages[len(logger.messages)-1] != "spacestore.query" {
		t.Fatalf("expected queries to be logged, got %v", logger.messages)
	}
}

func TestOpen(t *testing.T) {
	repo, closeFn, err := Open(context.Background(), OpenConfig{}, "DOCS")
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := repo.(*MemoryRepository); !ok {
		t.Fatalf("expected memory repository, got %T", repo)
	}
	_ = closeFn()

	repo, closeFn, err = Open(context.Background(), OpenConfig{Driver: DriverSQLite, DSN: "file:open_test?mode=memory&cache=shared"}, "DOCS")
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer closeFn()
	if _, ok := repo.(*BunRepository); !ok {
		t.Fatalf("expected bun repository, got %T", repo)
	}

	if _, _, err := Open(context.Background(), OpenConfig{Driver: "oracle", DSN: "dsn"}, "DOCS"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := OpenDB(DriverPostgres, ""); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}
