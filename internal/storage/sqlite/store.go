// Package sqlite implements the storage interface using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	// Import SQLite driver
	sqlite3 "github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/tetratelabs/wazero"

	"github.com/dailyworkspace/daybook/internal/debug"
	"github.com/dailyworkspace/daybook/internal/storage"
	"github.com/dailyworkspace/daybook/internal/types"
)

// Verify SQLiteStorage implements storage.Storage at compile time
var _ storage.Storage = (*SQLiteStorage)(nil)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	queries
	db     *sql.DB
	dbPath string
	closed atomic.Bool // Tracks whether Close() has been called
}

// Options tunes how the database is opened.
type Options struct {
	// LockTimeout is the SQLite busy timeout. Zero means storage.DefaultLockTimeout.
	LockTimeout time.Duration
}

// setupWASMCache configures WASM compilation caching to reduce SQLite startup time.
// Returns the cache directory path (empty string if using in-memory cache).
//
// The cache lives under os.UserCacheDir()/daybook/wasm and is keyed by the
// wazero version, so stale entries from older builds are simply ignored.
func setupWASMCache() string {
	cacheDir := ""
	if userCache, err := os.UserCacheDir(); err == nil {
		cacheDir = filepath.Join(userCache, "daybook", "wasm")
	}

	var cache wazero.CompilationCache
	if cacheDir != "" {
		if c, err := wazero.NewCompilationCacheWithDir(cacheDir); err == nil {
			cache = c
		}
	}

	if cache == nil {
		cache = wazero.NewCompilationCache()
		cacheDir = ""
	}

	sqlite3.RuntimeConfig = wazero.NewRuntimeConfig().WithCompilationCache(cache)

	return cacheDir
}

func init() {
	_ = setupWASMCache()
}

// New creates a new SQLite storage backend with default options.
func New(ctx context.Context, path string) (*SQLiteStorage, error) {
	return NewWithOptions(ctx, path, Options{})
}

// NewWithOptions creates a new SQLite storage backend.
func NewWithOptions(ctx context.Context, path string, opts Options) (*SQLiteStorage, error) {
	isInMemory := storage.IsInMemory(path)
	if !isInMemory {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	connStr := storage.SQLiteConnString(path, opts.LockTimeout)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases are per-connection unless pinned to one.
	if isInMemory {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		// 1 writer + N readers under WAL.
		maxConns := runtime.NumCPU() + 1
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(0)
	}

	if !isInMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	absPath := path
	if !isInMemory {
		absPath, err = filepath.Abs(path)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
	}

	s := &SQLiteStorage{
		queries: queries{q: db, db: db},
		db:      db,
		dbPath:  absPath,
	}

	if err := s.SetMetadata(ctx, "schema_version", schemaVersion); err != nil {
		_ = db.Close()
		return nil, err
	}

	debug.Logf("opened database %s\n", absPath)
	return s, nil
}

// EnsureAppSettings creates the singleton settings row if it does not exist.
func (s *SQLiteStorage) EnsureAppSettings(ctx context.Context) (*types.AppSettings, error) {
	ts := formatTime(now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, sprint_goals, quarterly_goals, created_at, updated_at)
		VALUES (?, '', '', ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, types.AppSettingsID, ts, ts)
	if err != nil {
		return nil, wrapDBError("ensure app settings", err)
	}
	return s.GetAppSettings(ctx)
}

// Close closes the database connection.
// It checkpoints the WAL to ensure all writes are flushed to the main database file.
func (s *SQLiteStorage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// Path returns the absolute path to the database file
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// IsClosed returns true if Close() has been called on this storage
func (s *SQLiteStorage) IsClosed() bool {
	return s.closed.Load()
}

// UnderlyingDB returns the underlying *sql.DB connection.
// Callers must not close it or change pragmas.
func (s *SQLiteStorage) UnderlyingDB() *sql.DB {
	return s.db
}
