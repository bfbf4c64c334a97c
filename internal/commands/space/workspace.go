package spacecmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-markspace/internal/console"
	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/internal/markdown"
	"github.com/goliatone/go-markspace/internal/runtimeconfig"
	"github.com/goliatone/go-markspace/internal/syncer"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// RemoteOpener returns the remote side of a sync for spaceKey and a function
// releasing it.
type RemoteOpener func(ctx context.Context, spaceKey string) (interfaces.RemoteSpace, func() error, error)

// Workspace carries what the space handlers share: configuration, where to
// publish, where to print and how to log.
type Workspace struct {
	Config     runtimeconfig.Config
	OpenRemote RemoteOpener
	Out        io.Writer
	Logger     interfaces.Logger
	// Provider, when set, supplies the render, links and sync module loggers.
	// Without it every stage logs through Logger.
	Provider interfaces.LoggerProvider
}

func (w Workspace) out() io.Writer {
	if w.Out == nil {
		return os.Stdout
	}
	return w.Out
}

func (w Workspace) logger() interfaces.Logger {
	if w.Logger == nil {
		return logging.NoOp()
	}
	return w.Logger
}

func (w Workspace) moduleLogger(build func(interfaces.LoggerProvider) interfaces.Logger) interfaces.Logger {
	if w.Provider == nil {
		return w.logger()
	}
	return build(w.Provider)
}

// service opens the space in dir, falling back to the configured directory.
func (w Workspace) service(dir string) (*markdown.Service, error) {
	if strings.TrimSpace(dir) == "" {
		dir = w.Config.Space.Dir
	}
	return markdown.NewService(markdown.Config{
		BasePath:  dir,
		Key:       w.Config.Space.Key,
		Pattern:   w.Config.Space.Pattern,
		Recursive: w.Config.Space.Recursive,
		Render:    w.Config.Render.RenderOptions(),
	},
		markdown.WithServiceLogger(w.moduleLogger(logging.RenderLogger)),
		markdown.WithLinksLogger(w.moduleLogger(logging.LinksLogger)),
	)
}

// sync runs the phased sync of dir and prints one status line per entry.
func (w Workspace) sync(ctx context.Context, dir string, dryRun, archive bool) (*syncer.Report, error) {
	service, err := w.service(dir)
	if err != nil {
		return nil, err
	}
	remote, release, err := w.OpenRemote(ctx, service.Key())
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(); err != nil {
			w.logger().Warn("space.remote.close_failed", "error", err)
		}
	}()

	report, err := syncer.New(service, remote,
		syncer.WithLogger(w.moduleLogger(logging.SyncLogger)),
		syncer.WithDryRun(dryRun),
		syncer.WithArchive(archive),
		syncer.WithHomepageID(w.Config.Space.HomepageID),
		syncer.WithConcurrency(w.Config.Sync.Concurrency),
		syncer.WithTimeout(w.Config.Sync.Timeout),
	).Sync(ctx)
	if report != nil {
		w.print(report)
	}
	return report, err
}

func (w Workspace) print(report *syncer.Report) {
	out := w.out()
	for _, warning := range report.Warnings {
		w.logger().Warn(warning)
	}
	for _, entry := range report.Entries {
		message := entry.Title
		if entry.Source != "" {
			message += " (" + entry.Source + ")"
		}
		if entry.Status == syncer.StatusError {
			message += ": " + entry.Message
		}
		_ = console.PrintStatus(out, string(entry.Status), message)
	}
}
