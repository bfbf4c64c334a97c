package spacestore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-markspace/pkg/interfaces"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// OpenDB opens a Bun database for one of the supported SQL drivers.
func OpenDB(driver, dsn string) (*bun.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if strings.TrimSpace(dsn) == "" {
		return nil, goerrors.New("spacestore: dsn is required for driver "+driver, goerrors.CategoryBadInput)
	}

	switch driver {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, storageError(err, "open sqlite")
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case DriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, storageError(err, "open postgres")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return nil, goerrors.New("spacestore: unsupported driver "+driver, goerrors.CategoryBadInput).
		WithMetadata(map[string]any{"driver": driver})
}

// Migrate creates the mirror tables when they do not exist yet.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{(*nodeModel)(nil), (*attachmentModel)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return storageError(err, "create tables")
		}
	}
	return nil
}

// OpenConfig selects and configures the mirror returned by Open.
type OpenConfig struct {
	Driver string
	DSN    string
	// Debug logs every SQL query through Logger.
	Debug  bool
	Logger interfaces.Logger
}

// Open returns the repository for cfg.Driver. The memory driver needs no
// database; the returned close function is always safe to call.
func Open(ctx context.Context, cfg OpenConfig, spaceKey string) (Repository, func() error, error) {
	if cfg.Driver == "" || strings.EqualFold(cfg.Driver, DriverMemory) {
		return NewMemoryRepository(spaceKey), func() error { return nil }, nil
	}
	db, err := OpenDB(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug && cfg.Logger != nil {
		db.AddQueryHook(queryLogger{logger: cfg.Logger})
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewBunRepository(db, spaceKey), db.Close, nil
}

// queryLogger is a bun.QueryHook logging each query at debug level.
type queryLogger struct {
	logger interfaces.Logger
}

func (h queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{"query", event.Query, "duration_ms", time.Since(event.StartTime).Milliseconds()}
	if event.Err != nil && event.Err != sql.ErrNoRows {
		args = append(args, "error", event.Err)
	}
	h.logger.Debug("spacestore.query", args...)
}
