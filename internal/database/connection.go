// Package database provides connection management, migrations and the row
// records used by the reconciliation engine.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	"github.com/locsync/locsync/db/migrations"
	"github.com/locsync/locsync/internal/config"
	"github.com/locsync/locsync/internal/database/sqldb"
	"github.com/locsync/locsync/internal/errors"

	// Import the PostgreSQL driver for database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// Context holds the database connection and query interface.
type Context struct {
	DB      *sql.DB
	Queries *sqldb.Queries
	Dialect sqldb.Dialect
}

// Options selects the store to open.
type Options struct {
	// Driver is config.DriverSQLite (default) or config.DriverPostgres.
	Driver string
	// DSN overrides the connection string built from Path.
	DSN string
	// Path is the SQLite file. Empty means the default data dir, ":memory:" a private in-memory store.
	Path string
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Path:   cfg.Database.Path,
	}
}

// CreateDatabase opens the store described by opts and applies migrations.
func CreateDatabase(opts Options) (*Context, error) {
	switch opts.Driver {
	case "", config.DriverSQLite:
		return openSQLite(opts)
	case config.DriverPostgres:
		return openPostgres(opts)
	default:
		return nil, errors.NewConfigError("database", fmt.Sprintf("unsupported driver %q", opts.Driver), nil)
	}
}

// OpenMemory opens a migrated in-memory SQLite store that lives until closed.
func OpenMemory() (*Context, error) {
	return CreateDatabase(Options{Driver: config.DriverSQLite, Path: ":memory:"})
}

func openSQLite(opts Options) (*Context, error) {
	path := opts.Path
	if path == "" {
		path = config.GetDBPath()
	}

	useMemory := opts.DSN == "" && path == ":memory:"

	dsn := opts.DSN
	switch {
	case dsn != "":
	case useMemory:
		// Each in-memory store gets its own name so parallel tests never share data.
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(ON)&_txlock=immediate", uuid.NewString())
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate",
			filepath.ToSlash(absPath))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if useMemory {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise migrate driver: %w", err)
	}
	if err := runMigrations(driver, "sqlite", config.DriverSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Context{
		DB:      db,
		Queries: sqldb.New(db, sqldb.SQLite),
		Dialect: sqldb.SQLite,
	}, nil
}

// openPostgres connects through pgx. An empty DSN lets pgx read the PG*
// environment variables.
func openPostgres(opts Options) (*Context, error) {
	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialise migrate driver: %w", err)
	}
	if err := runMigrations(driver, "pgx5", config.DriverPostgres); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Context{
		DB:      db,
		Queries: sqldb.New(db, sqldb.Postgres),
		Dialect: sqldb.Postgres,
	}, nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// ClearDatabase removes all data from the database.
func ClearDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.RunInTx(context.Background(), func(txCtx context.Context, q *sqldb.Queries) error {
		if err := q.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("failed to clear database: %w", err)
		}
		return nil
	})
}

func runMigrations(driver migratedb.Driver, driverName, dir string) error {
	sourceDriver, err := iofs.New(migrations.Files, dir)
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, driverName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
