package links

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

func TestRegistryRejectsDuplicateTitles(t *testing.T) {
	first := NewRegistry("")
	if err := first.Register("a.md", "Same"); err != nil {
		t.Fatalf("register a.md: %v", err)
	}
	second := NewRegistry("")
	if err := second.Register("b.md", "Same"); err != nil {
		t.Fatalf("register b.md alone: %v", err)
	}

	err := first.Register("b.md", "Same")
	if err == nil {
		t.Fatalf("expected duplicate title error")
	}
	if textCode(err) != TextCodeDuplicateTitle || !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected duplicate title conflict, got %v", err)
	}
	if title, _ := first.TitleFor("a.md"); title != "Same" {
		t.Fatalf("original registration must be kept, got %q", title)
	}
	if _, ok := first.TitleFor("b.md"); ok {
		t.Fatalf("rejected document must not be registered")
	}
}

func TestRegistryNormalizesPaths(t *testing.T) {
	reg := NewRegistry("")
	if err := reg.Register("docs\\guide.md", "Guide"); err != nil {
		t.Fatalf("register: %v", err)
	}
	title, ok := reg.TitleFor("docs/guide.md")
	if !ok || title != "Guide" {
		t.Fatalf("expected normalized lookup, got %q %v", title, ok)
	}
	if !reg.HasTitle("Guide") || reg.HasTitle("Other") {
		t.Fatalf("unexpected HasTitle results")
	}
}

func TestRegistryAttachmentIDsKeyedByRawURL(t *testing.T) {
	reg := NewRegistry("")
	reg.RegisterAttachmentID("a/page.md", "../img/x.png", "att-1")

	if id, ok := reg.AttachmentID("a/page.md", "../img/x.png"); !ok || id != "att-1" {
		t.Fatalf("expected att-1, got %q %v", id, ok)
	}
	if _, ok := reg.AttachmentID("a/page.md", "img/x.png"); ok {
		t.Fatalf("different spelling must not match")
	}
	if _, ok := reg.AttachmentID("b/page.md", "../img/x.png"); ok {
		t.Fatalf("different document must not match")
	}
}

func TestRegistryOrphans(t *testing.T) {
	reg := NewRegistry("")
	_ = reg.Register("kept.md", "Kept")

	managed := interfaces.VersionMessagePrefix + " source=x.md; checksum=abc"
	cases := []struct {
		name string
		doc  interfaces.RemoteDocument
		want bool
	}{
		{name: "managed and claimed", doc: interfaces.RemoteDocument{Title: "Kept", VersionMessage: managed}, want: false},
		{name: "managed and unclaimed", doc: interfaces.RemoteDocument{Title: "Gone", VersionMessage: managed}, want: true},
		{name: "unmanaged and unclaimed", doc: interfaces.RemoteDocument{Title: "Gone", VersionMessage: "edited by hand"}, want: false},
	}
	for _, tc := range cases {
		if got := reg.IsOrphaned(tc.doc); got != tc.want {
			t.Fatalf("%s: IsOrphaned = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRegistryRetitledDocumentIsNotOrphaned(t *testing.T) {
	reg := NewRegistry("")
	_ = reg.Register("notes/todo.md", "Todo Renamed")

	managed := interfaces.VersionMessagePrefix + " source=notes/todo.md; checksum=abc"
	retitled := interfaces.RemoteDocument{ID: "7", Title: "Todo", Path: "notes/todo.md", VersionMessage: managed}
	removed := interfaces.RemoteDocument{ID: "8", Title: "Deleted", Path: "notes/deleted.md", VersionMessage: managed}
	reg.RegisterRemote(retitled)
	reg.RegisterRemote(removed)

	if !reg.IsBound("7") {
		t.Fatalf("expected retitled page to stay bound to its file")
	}
	if reg.IsOrphaned(retitled) {
		t.Fatalf("retitled page must not be orphaned")
	}
	if reg.IsBound("8") {
		t.Fatalf("a path without a local file must not count as bound")
	}
	if !reg.IsOrphaned(removed) {
		t.Fatalf("page of a removed file must be orphaned")
	}
}

func TestRegistryNodesToCreate(t *testing.T) {
	reg := NewRegistry("home")
	_ = reg.Register("index.md", "Home")
	_ = reg.RegisterFolder("guides/index.md", "Guides")
	_ = reg.Register("guides/moved.md", "Moved")
	_ = reg.Register("guides/new.md", "New")

	reg.RegisterRemote(interfaces.RemoteDocument{ID: "home", Title: "Space Home"})
	reg.RegisterRemote(interfaces.RemoteDocument{ID: "42", Title: "Old Title", Path: "guides\\moved.md"})

	if diff := cmp.Diff([]string{"Guides", "New"}, reg.NodesToCreate()); diff != "" {
		t.Fatalf("nodes to create mismatch (-want +got):\n%s", diff)
	}
	if id, _ := reg.FileID("index.md"); id != "home" {
		t.Fatalf("expected home page binding, got %q", id)
	}
	if id, _ := reg.FileID("guides/moved.md"); id != "42" {
		t.Fatalf("expected moved page to bind through version path, got %q", id)
	}
	if !reg.IsFolder("Guides") || reg.IsFolder("New") {
		t.Fatalf("unexpected folder flags")
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg := NewRegistry("")
	_ = reg.Register("a.md", "A")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg.RegisterAttachmentID("a.md", string(rune('a'+i)), "id")
			_, _ = reg.TitleFor("a.md")
			_, _ = reg.AttachmentID("a.md", "a")
		}(i)
	}
	wg.Wait()
}

func textCode(err error) string {
	var typed *goerrors.Error
	if goerrors.As(err, &typed) {
		return typed.TextCode
	}
	return ""
}
