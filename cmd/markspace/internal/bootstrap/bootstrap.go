package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/goliatone/go-command/dispatcher"

	spacecmd "github.com/goliatone/go-markspace/internal/commands/space"
	"github.com/goliatone/go-markspace/internal/logging"
	"github.com/goliatone/go-markspace/internal/logging/console"
	"github.com/goliatone/go-markspace/internal/logging/gologger"
	"github.com/goliatone/go-markspace/internal/runtimeconfig"
	"github.com/goliatone/go-markspace/internal/spacestore"
	"github.com/goliatone/go-markspace/pkg/interfaces"
)

// Options captures the CLI overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	LogLevel   string
	// LogFormat selects a go-logger output (json, console, pretty) and
	// switches the provider to go-logger.
	LogFormat string
	// DB is a storage DSN. postgres:// URLs select the postgres driver, any
	// other value selects sqlite3 unless the config names a SQL driver.
	DB string

	Out            io.Writer
	LoggerProvider interfaces.LoggerProvider
}

type subscription interface {
	Unsubscribe()
}

// Module holds the configured space command handlers. The handlers are
// subscribed to the go-command dispatcher until Close is called.
type Module struct {
	Config   runtimeconfig.Config
	Logger   interfaces.Logger
	Handlers *spacecmd.HandlerSet

	subs []subscription
}

// Close unsubscribes the handlers from the dispatcher.
func (m *Module) Close() {
	if m == nil {
		return
	}
	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	m.subs = nil
}

// BuildModule loads configuration, wires logging and storage and registers the
// space command handlers.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := runtimeconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	ApplyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider, err = NewLoggerProvider(cfg.Logging, os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("configure logging: %w", err)
		}
	}

	module := &Module{
		Config: cfg,
		Logger: logging.ModuleLogger(provider, "cli"),
	}

	ws := spacecmd.Workspace{
		Config:     cfg,
		OpenRemote: RemoteOpener(cfg.Storage, logging.StoreLogger(provider)),
		Out:        opts.Out,
	}

	registry := &dispatchRegistry{}
	handlers, err := spacecmd.RegisterSpaceCommands(registry, ws, provider)
	if err != nil {
		registry.close()
		return nil, fmt.Errorf("register space commands: %w", err)
	}
	module.Handlers = handlers
	module.subs = registry.subs
	return module, nil
}

// ApplyOverrides folds the CLI flags into cfg.
func ApplyOverrides(cfg *runtimeconfig.Config, opts Options) {
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}
	if dsn := strings.TrimSpace(opts.DB); dsn != "" {
		cfg.Storage.DSN = dsn
		cfg.Storage.Driver = driverForDSN(cfg.Storage.Driver, dsn)
	}
}

func driverForDSN(configured, dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return spacestore.DriverPostgres
	}
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case spacestore.DriverSQLite, spacestore.DriverPostgres:
		return configured
	}
	return spacestore.DriverSQLite
}

// NewLoggerProvider builds the provider named by cfg.Provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	case "", "console":
		level, _ := console.ParseLevel(cfg.Level)
		return console.NewProvider(console.Options{Writer: w, MinLevel: &level}), nil
	}
	return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
}

// RemoteOpener opens the configured space store. Memory stores are kept per
// space key for the life of the process so plan and sync observe each other.
func RemoteOpener(cfg runtimeconfig.StorageConfig, logger interfaces.Logger) spacecmd.RemoteOpener {
	var (
		mu     sync.Mutex
		memory = map[string]*spacestore.MemoryRepository{}
	)
	noop := func() error { return nil }

	return func(ctx context.Context, spaceKey string) (interfaces.RemoteSpace, func() error, error) {
		driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
		if driver == "" || driver == spacestore.DriverMemory {
			mu.Lock()
			defer mu.Unlock()
			repo, ok := memory[spaceKey]
			if !ok {
				repo = spacestore.NewMemoryRepository(spaceKey)
				memory[spaceKey] = repo
			}
			return repo, noop, nil
		}
		repo, release, err := spacestore.Open(ctx, spacestore.OpenConfig{
			Driver: driver,
			DSN:    cfg.DSN,
			Debug:  cfg.Debug,
			Logger: logger,
		}, spaceKey)
		if err != nil {
			return nil, nil, err
		}
		return repo, release, nil
	}
}

// dispatchRegistry subscribes each space handler to the go-command dispatcher.
type dispatchRegistry struct {
	subs []subscription
}

func (r *dispatchRegistry) RegisterCommand(handler any) error {
	switch h := handler.(type) {
	case *spacecmd.RenderDocumentHandler:
		r.subs = append(r.subs, dispatcher.SubscribeCommand[spacecmd.RenderDocumentCommand](h))
	case *spacecmd.SyncSpaceHandler:
		r.subs = append(r.subs, dispatcher.SubscribeCommand[spacecmd.SyncSpaceCommand](h))
	case *spacecmd.PlanSpaceHandler:
		r.subs = append(r.subs, dispatcher.SubscribeCommand[spacecmd.PlanSpaceCommand](h))
	default:
		return fmt.Errorf("unsupported command handler %T", handler)
	}
	return nil
}

func (r *dispatchRegistry) close() {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
}
