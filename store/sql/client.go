package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-oauth1/core"
	"github.com/goliatone/go-oauth1/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const defaultPingTimeout = 5 * time.Second

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool {
	return c.debug
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return defaultPingTimeout
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-oauth1"
}

// OpenClient opens the configured database and wraps it in a persistence
// client. The handle is owned by the caller, who must Close it.
func OpenClient(ctx context.Context, cfg core.DatabaseConfig) (*persistence.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = core.DriverSQLite
	}
	dsn, err := ResolveDSN(driver, cfg.DSN)
	if err != nil {
		return nil, core.StorageError(err, "sqlstore: resolve database location")
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, core.StorageError(err, "sqlstore: open database")
	}
	pcfg := persistenceConfig{driver: driver, server: dsn, debug: cfg.Debug}

	var client *persistence.Client
	switch driver {
	case core.DriverSQLite:
		sqlDB.SetMaxOpenConns(1)
		client, err = persistence.New(pcfg, sqlDB, sqlitedialect.New())
	case core.DriverPostgres:
		client, err = persistence.New(pcfg, sqlDB, pgdialect.New())
	default:
		err = fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	if err != nil {
		_ = sqlDB.Close()
		return nil, core.StorageError(err, "sqlstore: create persistence client")
	}
	return client, nil
}

// Migrate registers the embedded migrations for driver and applies them.
func Migrate(ctx context.Context, client *persistence.Client, driver string) error {
	if client == nil {
		return core.StorageError(fmt.Errorf("sqlstore: persistence client is required"), "sqlstore: migrate")
	}
	dialect, err := migrations.DialectForDriver(driver)
	if err != nil {
		return core.StorageError(err, "sqlstore: migrate")
	}
	_, err = migrations.Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		client.RegisterSQLMigrations(fsys)
		return nil
	}, migrations.WithValidationTargets(dialect))
	if err != nil {
		return core.StorageError(err, "sqlstore: register migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		return core.StorageError(err, "sqlstore: apply migrations")
	}
	return nil
}

// ResolveDSN turns a sqlite file path into a driver DSN with foreign keys
// enabled. Postgres DSNs and explicit sqlite URIs pass through unchanged.
func ResolveDSN(driver string, dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", fmt.Errorf("sqlstore: database dsn is required")
	}
	if driver != core.DriverSQLite {
		return dsn, nil
	}
	if strings.HasPrefix(dsn, "file:") || dsn == ":memory:" {
		return dsn, nil
	}
	if strings.HasPrefix(dsn, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("sqlstore: resolve home directory: %w", err)
		}
		dsn = filepath.Join(home, strings.TrimPrefix(dsn, "~/"))
	}
	return "file:" + dsn + "?_foreign_keys=on", nil
}
