package logging

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "markspace.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger = WithFields(logger, map[string]any{"foo": "bar"})
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := SyncLogger(provider)

	if diff := cmp.Diff([]string{syncModule}, provider.requested); diff != "" {
		t.Fatalf("requested modules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]map[string]any{{"module": syncModule}}, rec.fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = ModuleLogger(provider, "")
	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestNamedModuleLoggers(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		renderModule: RenderLogger,
		linksModule:  LinksLogger,
		storeModule:  StoreLogger,
	}
	for module, build := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = build(provider)
		if len(provider.requested) != 1 || provider.requested[0] != module {
			t.Fatalf("expected %s request, got %v", module, provider.requested)
		}
	}
}

func TestWithDocumentContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	WithDocumentContext(rec, " docs/index.md ", "", "update")
	want := []map[string]any{{
		fieldDocumentPath: "docs/index.md",
		fieldSyncAction:   "update",
	}}
	if diff := cmp.Diff(want, rec.fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	rec = &recordingLogger{}
	WithSpace(rec, " ")
	if len(rec.fields) != 0 {
		t.Fatalf("blank space key must not add fields")
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = ContextWithFields(ctx, map[string]any{"b": 2, "a": 3})
	if diff := cmp.Diff(map[string]any{"a": 3, "b": 2}, ContextFields(ctx)); diff != "" {
		t.Fatalf("context fields mismatch (-want +got):\n%s", diff)
	}
	fields := ContextFields(ctx)
	fields["c"] = 4
	if _, ok := ContextFields(ctx)["c"]; ok {
		t.Fatalf("ContextFields must return a copy")
	}
}
