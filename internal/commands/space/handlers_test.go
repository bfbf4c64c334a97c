package spacecmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/internal/runtimeconfig"
	"github.com/goliatone/go-markspace/internal/spacestore"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

func writeSpace(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "DOCS")
	files := map[string]string{
		"index.md":        "# Home\n\nRead the [guide](guides/setup.md).\n",
		"guides/index.md": "# Guides\n",
		"guides/setup.md": "# Setup\n\nRun `make`.\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func newWorkspace(repo *spacestore.MemoryRepository, out *bytes.Buffer) Workspace {
	return Workspace{
		Config: runtimeconfig.DefaultConfig(),
		OpenRemote: func(context.Context, string) (interfaces.RemoteSpace, func() error, error) {
			return repo, func() error { return nil }, nil
		},
		Out: out,
	}
}

func TestMessagesValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{"render ok", RenderDocumentCommand{Path: "index.md"}, false},
		{"render blank", RenderDocumentCommand{Path: "  "}, true},
		{"sync ok", SyncSpaceCommand{Dir: "docs"}, false},
		{"sync missing", SyncSpaceCommand{}, true},
		{"plan ok", PlanSpaceCommand{Dir: "docs"}, false},
		{"plan blank", PlanSpaceCommand{Dir: "\t"}, true},
	}
	for _, tc := range cases {
		if err := tc.msg.Validate(); (err != nil) != tc.wantErr {
			t.Fatalf("%s: Validate() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestSyncSpaceHandlerPublishesAndPrints(t *testing.T) {
	root := writeSpace(t)
	repo := spacestore.NewMemoryRepository("DOCS")
	var out bytes.Buffer

	handler := NewSyncSpaceHandler(newWorkspace(repo, &out))
	if err := handler.Execute(context.Background(), SyncSpaceCommand{Dir: root}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	docs, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected three published pages, got %+v", docs)
	}
	for _, line := range []string{"created    Home (index.md)", "created    Setup (guides/setup.md)"} {
		if !strings.Contains(out.String(), line) {
			t.Fatalf("expected %q in output:\n%s", line, out.String())
		}
	}

	out.Reset()
	if err := handler.Execute(context.Background(), SyncSpaceCommand{Dir: root}); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if strings.Count(out.String(), "skipped") != 3 {
		t.Fatalf("expected every page skipped on the second run:\n%s", out.String())
	}
}

type namedProvider struct {
	names []string
}

func (p *namedProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return logging.NoOp()
}

func TestSyncUsesModuleLoggers(t *testing.T) {
	root := writeSpace(t)
	provider := &namedProvider{}
	set, err := RegisterSpaceCommands(nil, newWorkspace(spacestore.NewMemoryRepository("DOCS"), &bytes.Buffer{}), provider)
	if err != nil {
		t.Fatalf("RegisterSpaceCommands: %v", err)
	}
	if err := set.Sync.Execute(context.Background(), SyncSpaceCommand{Dir: root}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, module := range []string{"markspace.render", "markspace.links", "markspace.sync"} {
		if !slices.Contains(provider.names, module) {
			t.Fatalf("expected a %s logger, got %v", module, provider.names)
		}
	}
}

func TestPlanSpaceHandlerLeavesStoreUntouched(t *testing.T) {
	root := writeSpace(t)
	repo := spacestore.NewMemoryRepository("DOCS")
	var out bytes.Buffer

	if err := NewPlanSpaceHandler(newWorkspace(repo, &out)).Execute(context.Background(), PlanSpaceCommand{Dir: root}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	docs, _ := repo.List(context.Background())
	if len(docs) != 0 {
		t.Fatalf("plan must not publish, got %+v", docs)
	}
	if strings.Count(out.String(), "created") != 3 {
		t.Fatalf("expected three planned creations:\n%s", out.String())
	}
}

func TestRenderDocumentHandler(t *testing.T) {
	root := writeSpace(t)
	var out bytes.Buffer
	ws := newWorkspace(spacestore.NewMemoryRepository("DOCS"), &out)
	handler := NewRenderDocumentHandler(ws)

	if err := handler.Execute(context.Background(), RenderDocumentCommand{Dir: root, Path: "index.md"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), `<ri:page ri:content-title="Setup"/>`) {
		t.Fatalf("unexpected preview %q", out.String())
	}

	output := filepath.Join(t.TempDir(), "setup.xml")
	msg := RenderDocumentCommand{Dir: root, Path: filepath.Join(root, "guides", "setup.md"), Output: output}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute to file: %v", err)
	}
	written, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(written), "<code>make</code>") {
		t.Fatalf("unexpected rendered file %q", written)
	}
}

func TestHandlersWrapFailures(t *testing.T) {
	var out bytes.Buffer
	ws := newWorkspace(spacestore.NewMemoryRepository("DOCS"), &out)

	err := NewSyncSpaceHandler(ws).Execute(context.Background(), SyncSpaceCommand{Dir: filepath.Join(t.TempDir(), "missing")})
	if err == nil {
		t.Fatalf("expected missing directory to fail")
	}

	err = NewSyncSpaceHandler(ws).Execute(context.Background(), SyncSpaceCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	ws.OpenRemote = nil
	err = NewPlanSpaceHandler(ws).Execute(context.Background(), PlanSpaceCommand{Dir: "docs"})
	if !errors.Is(err, ErrRemoteRequired) {
		t.Fatalf("expected ErrRemoteRequired, got %v", err)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestRegisterSpaceCommands(t *testing.T) {
	reg := &recordingRegistry{}
	set, err := RegisterSpaceCommands(reg, newWorkspace(spacestore.NewMemoryRepository("DOCS"), &bytes.Buffer{}), nil)
	if err != nil {
		t.Fatalf("RegisterSpaceCommands: %v", err)
	}
	if set.Render == nil || set.Sync == nil || set.Plan == nil {
		t.Fatalf("expected every handler, got %+v", set)
	}
	if len(reg.handlers) != 3 {
		t.Fatalf("expected three registrations, got %d", len(reg.handlers))
	}

	if _, err := RegisterSpaceCommands(nil, Workspace{}, nil); err == nil {
		t.Fatalf("expected missing opener to be rejected")
	}
}
