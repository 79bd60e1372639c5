package storage

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLockTimeout is the SQLite busy timeout used when none is configured.
const DefaultLockTimeout = 30 * time.Second

// SQLiteConnString builds a SQLite connection string with standard pragmas.
//
// Includes busy_timeout (prevents "database is locked" under concurrency) and
// foreign_keys (enforces referential integrity). A zero busy duration means
// DefaultLockTimeout. If path is already a file: URI, pragmas are appended
// only if absent. The special path ":memory:" maps to a named shared-cache
// in-memory database so every pooled connection sees the same data.
func SQLiteConnString(path string, busy time.Duration) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if busy <= 0 {
		busy = DefaultLockTimeout
	}
	busyMs := int64(busy / time.Millisecond)

	if path == ":memory:" {
		// WAL doesn't work with shared in-memory databases.
		return fmt.Sprintf("file:daybook?mode=memory&cache=shared&_pragma=journal_mode(DELETE)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)", busyMs)
	}

	if strings.HasPrefix(path, "file:") {
		conn := path
		sep := "?"
		if strings.Contains(conn, "?") {
			sep = "&"
		}
		if !strings.Contains(conn, "_pragma=busy_timeout") {
			conn += fmt.Sprintf("%s_pragma=busy_timeout(%d)", sep, busyMs)
			sep = "&"
		}
		if !strings.Contains(conn, "_pragma=foreign_keys") {
			conn += sep + "_pragma=foreign_keys(ON)"
		}
		return conn
	}

	return fmt.Sprintf("file:%s?_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)", path, busyMs)
}

// IsInMemory reports whether path names an in-memory database.
func IsInMemory(path string) bool {
	return path == ":memory:" ||
		(strings.HasPrefix(path, "file:") && strings.Contains(path, "mode=memory"))
}
