package spacecmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-markspace/internal/commands"
	"github.com/goliatone/go-markspace/internal/logging"
)

const (
	renderOperation = "space.render_document"
	syncOperation   = "space.sync"
	planOperation   = "space.plan"
)

// ErrRemoteRequired is returned when a sync or plan runs without a store.
var ErrRemoteRequired = errors.New("space command: remote opener is required")

var (
	_ command.Commander[RenderDocumentCommand] = (*RenderDocumentHandler)(nil)
	_ command.Commander[SyncSpaceCommand]      = (*SyncSpaceHandler)(nil)
	_ command.Commander[PlanSpaceCommand]      = (*PlanSpaceHandler)(nil)
)

// RenderDocumentHandler previews one page in storage format.
type RenderDocumentHandler struct {
	inner *commands.Handler[RenderDocumentCommand]
}

// NewRenderDocumentHandler creates a handler rendering pages of ws.
func NewRenderDocumentHandler(ws Workspace, opts ...commands.HandlerOption[RenderDocumentCommand]) *RenderDocumentHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg RenderDocumentCommand) error {
		service, err := ws.service(msg.Dir)
		if err != nil {
			return err
		}
		rendered, err := service.Preview(ctx, resolvePath(msg.Path))
		if err != nil {
			return err
		}
		for _, unresolved := range rendered.Report.UnresolvedLinks {
			logger.Warn("space.render.unresolved_link", "link", unresolved, "source", rendered.Source)
		}

		if msg.Output != "" {
			if err := os.WriteFile(msg.Output, []byte(rendered.Content), 0o644); err != nil {
				return err
			}
		} else if _, err := fmt.Fprint(ws.out(), rendered.Content); err != nil {
			return err
		}

		logging.WithFields(logger, map[string]any{
			"title":    rendered.Title,
			"parent":   rendered.Parent,
			"checksum": rendered.Checksum,
			"degraded": rendered.Report.Degraded(),
		}).Info("space.command.render_document.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDocumentCommand]{
		commands.WithLogger[RenderDocumentCommand](logger),
		commands.WithOperation[RenderDocumentCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderDocumentCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDocumentCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderDocumentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RenderDocumentCommand].
func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncSpaceHandler publishes a space.
type SyncSpaceHandler struct {
	inner *commands.Handler[SyncSpaceCommand]
}

// NewSyncSpaceHandler creates a handler syncing spaces of ws.
func NewSyncSpaceHandler(ws Workspace, opts ...commands.HandlerOption[SyncSpaceCommand]) *SyncSpaceHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg SyncSpaceCommand) error {
		if ws.OpenRemote == nil {
			return ErrRemoteRequired
		}
		dryRun := msg.DryRun || ws.Config.Sync.DryRun
		archive := msg.Archive || ws.Config.Sync.Archive
		report, err := ws.sync(ctx, msg.Dir, dryRun, archive)
		if report != nil {
			logging.WithFields(logger, map[string]any{
				"summary": report.Summary(),
				"dry_run": dryRun,
				"archive": archive,
			}).Info("space.command.sync.completed")
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[SyncSpaceCommand]{
		commands.WithLogger[SyncSpaceCommand](logger),
		commands.WithOperation[SyncSpaceCommand](syncOperation),
		commands.WithTimeout[SyncSpaceCommand](0),
		commands.WithMessageFields(func(msg SyncSpaceCommand) map[string]any {
			fields := map[string]any{"dir": msg.Dir}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Archive {
				fields["archive"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncSpaceCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncSpaceHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncSpaceCommand].
func (h *SyncSpaceHandler) Execute(ctx context.Context, msg SyncSpaceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PlanSpaceHandler prints the plan of a sync without changing the store.
type PlanSpaceHandler struct {
	inner *commands.Handler[PlanSpaceCommand]
}

// NewPlanSpaceHandler creates a handler planning syncs of spaces of ws.
func NewPlanSpaceHandler(ws Workspace, opts ...commands.HandlerOption[PlanSpaceCommand]) *PlanSpaceHandler {
	logger := ws.logger()

	exec := func(ctx context.Context, msg PlanSpaceCommand) error {
		if ws.OpenRemote == nil {
			return ErrRemoteRequired
		}
		archive := msg.Archive || ws.Config.Sync.Archive
		report, err := ws.sync(ctx, msg.Dir, true, archive)
		if report != nil {
			logger.Info("space.command.plan.completed", "summary", report.Summary())
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[PlanSpaceCommand]{
		commands.WithLogger[PlanSpaceCommand](logger),
		commands.WithOperation[PlanSpaceCommand](planOperation),
		commands.WithTimeout[PlanSpaceCommand](0),
		commands.WithMessageFields(func(msg PlanSpaceCommand) map[string]any {
			return map[string]any{"dir": msg.Dir}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PlanSpaceCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PlanSpaceHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PlanSpaceCommand].
func (h *PlanSpaceHandler) Execute(ctx context.Context, msg PlanSpaceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// resolvePath makes a path that exists relative to the working directory
// absolute, so it is not mistaken for a path relative to the space root.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err != nil {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
