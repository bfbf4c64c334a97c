package markdown

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markspace/internal/links"
)

func spaceFS() fstest.MapFS {
	return fstest.MapFS{
		"index.md":              {Data: []byte("# Home\n\nWelcome. See [the guide](guides/setup.md).\n")},
		"guides/index.md":       {Data: []byte("---\nfolder: true\n---\n# Guides\n")},
		"guides/setup.md":       {Data: []byte("# Setup Guide\n\n![diagram](../assets/diagram.png)\n\n[Back home](../index.md#intro)\n")},
		"assets/diagram.png":    {Data: []byte("png")},
		"notes/todo.md":         {Data: []byte("# Todo\n")},
		"_templates/partial.md": {Data: []byte("no heading here")},
		".git/HEAD.md":          {Data: []byte("ignored")},
	}
}

func newSpaceService(t *testing.T, fsys fstest.MapFS) *Service {
	t.Helper()
	svc, err := NewServiceFS(fsys, Config{Key: "DOCS", Recursive: true})
	if err != nil {
		t.Fatalf("NewServiceFS: %v", err)
	}
	return svc
}

func pageSources(space *Space) []string {
	out := make([]string, 0, len(space.Pages))
	for _, page := range space.Pages {
		out = append(out, page.Source)
	}
	return out
}

func TestLoadSpace(t *testing.T) {
	svc := newSpaceService(t, spaceFS())

	space, err := svc.LoadSpace(context.Background())
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}

	want := []string{"guides/index.md", "guides/setup.md", "index.md", "notes/todo.md"}
	if diff := cmp.Diff(want, pageSources(space)); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	wantWarnings := []string{
		"directory assets is missing index.md",
		"directory notes is missing index.md",
	}
	if diff := cmp.Diff(wantWarnings, space.Warnings); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if space.Key != "DOCS" {
		t.Fatalf("unexpected key %q", space.Key)
	}
}

func TestLoadSpaceNonRecursive(t *testing.T) {
	svc, err := NewServiceFS(spaceFS(), Config{Key: "DOCS"})
	if err != nil {
		t.Fatalf("NewServiceFS: %v", err)
	}
	space, err := svc.LoadSpace(context.Background())
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}
	if diff := cmp.Diff([]string{"index.md"}, pageSources(space)); diff != "" {
		t.Fatalf("expected only root pages (-want +got):\n%s", diff)
	}
}

func TestLoadSpaceRegistry(t *testing.T) {
	svc := newSpaceService(t, spaceFS())
	space, err := svc.LoadSpace(context.Background())
	if err != nil {
		t.Fatalf("LoadSpace: %v", err)
	}

	registry, err := space.Registry("")
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if title, ok := registry.TitleFor("guides/setup.md"); !ok || title != "Setup Guide" {
		t.Fatalf("expected setup title, got %q %v", title, ok)
	}
	if !registry.IsFolder("Guides") {
		t.Fatalf("expected front matter folder to register as a folder")
	}
	if registry.IsFolder("Home") {
		t.Fatalf("home is a page")
	}
}

func TestLoadSpaceCollectsErrorsAcrossPages(t *testing.T) {
	fsys := spaceFS()
	fsys["broken.md"] = &fstest.MapFile{Data: []byte("no title")}
	fsys["copy.md"] = &fstest.MapFile{Data: []byte("# Home\n")}
	fsys["linker.md"] = &fstest.MapFile{Data: []byte("# Linker\n\n[gone](gone.md) ![pic](missing.png)\n")}

	_, err := newSpaceService(t, fsys).LoadSpace(context.Background())
	if err == nil {
		t.Fatalf("expected load errors")
	}
	for _, code := range []string{
		TextCodeSpaceInvalid,
		TextCodeMissingTitle,
		links.TextCodeDuplicateTitle,
		TextCodeMissingFileLink,
		TextCodeMissingAttachment,
	} {
		if !HasTextCode(err, code) {
			t.Fatalf("expected %s in %v", code, err)
		}
	}
	if !strings.Contains(err.Error(), "4 error(s) parsing space DOCS") {
		t.Fatalf("expected aggregate message, got %v", err)
	}
}

func TestLoadSpaceRejectsMissingCover(t *testing.T) {
	fsys := spaceFS()
	fsys["covered.md"] = &fstest.MapFile{Data: []byte("---\ncover: missing.png\n---\n# Covered\n")}

	_, err := newSpaceService(t, fsys).LoadSpace(context.Background())
	if !HasTextCode(err, TextCodeMissingAttachment) {
		t.Fatalf("expected %s, got %v", TextCodeMissingAttachment, err)
	}
}

func TestNewServiceValidatesSpaceKey(t *testing.T) {
	_, err := NewServiceFS(spaceFS(), Config{Key: "my-space"})
	if !HasTextCode(err, TextCodeInvalidSpaceKey) {
		t.Fatalf("expected %s, got %v", TextCodeInvalidSpaceKey, err)
	}
	if !strings.Contains(err.Error(), "can only be letters and numbers") {
		t.Fatalf("unexpected message %v", err)
	}

	for _, key := range []string{"DOCS", "team42", "a"} {
		if err := ValidateSpaceKey(key); err != nil {
			t.Fatalf("ValidateSpaceKey(%q): %v", key, err)
		}
	}
}

func TestPreviewRendersAgainstWholeSpace(t *testing.T) {
	svc := newSpaceService(t, spaceFS())

	rendered, err := svc.Preview(context.Background(), "guides/setup.md")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if rendered.Parent != "Guides" {
		t.Fatalf("expected parent Guides, got %q", rendered.Parent)
	}
	for _, fragment := range []string{
		`<ri:attachment ri:filename=".._assets_diagram.png"/>`,
		`<ac:link ac:anchor="intro"><ri:page ri:content-title="Home"/>`,
	} {
		if !strings.Contains(rendered.Content, fragment) {
			t.Fatalf("expected %q in %q", fragment, rendered.Content)
		}
	}

	if _, err := svc.Preview(context.Background(), "nope.md"); err == nil {
		t.Fatalf("expected unknown page error")
	}
}

func TestReadAttachment(t *testing.T) {
	svc := newSpaceService(t, spaceFS())
	page, err := svc.LoadPage(context.Background(), "guides/setup.md")
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if len(page.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %+v", page.Attachments)
	}
	data, err := svc.ReadAttachment(page.Attachments[0])
	if err != nil {
		t.Fatalf("ReadAttachment: %v", err)
	}
	if string(data) != "png" {
		t.Fatalf("unexpected attachment data %q", data)
	}
}

func TestNewServiceFromDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "TEAM")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "index.md"), []byte("# Team Home\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	svc, err := NewService(Config{BasePath: root, Recursive: true})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if svc.Key() != "TEAM" {
		t.Fatalf("expected key from directory name, got %q", svc.Key())
	}

	rendered, err := svc.Preview(context.Background(), filepath.Join(root, "index.md"))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if rendered.Title != "Team Home" || !rendered.IsHomePage() {
		t.Fatalf("unexpected preview %+v", rendered)
	}

	if _, err := NewService(Config{BasePath: filepath.Join(root, "missing")}); err == nil {
		t.Fatalf("expected missing directory error")
	}
}

func TestLoaderMatchesPattern(t *testing.T) {
	loader := NewLoader(fstest.MapFS{}, LoaderConfig{})
	cases := []struct {
		path     string
		override string
		want     bool
	}{
		{"guides/setup.md", "", true},
		{"guides/setup.txt", "", false},
		{"guides/setup.md", "guides/*.md", true},
		{"other/setup.md", "guides/*.md", false},
		{"deep/nested/page.md", "**/*.md", true},
	}
	for _, tc := range cases {
		if got := loader.matchesPattern(tc.path, tc.override); got != tc.want {
			t.Fatalf("matchesPattern(%q, %q) = %v, want %v", tc.path, tc.override, got, tc.want)
		}
	}
}
