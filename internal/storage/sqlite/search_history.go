package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/dailyworkspace/daybook/internal/types"
)

// AddSearchHistory logs a query at the given time. Blank queries are ignored.
func (qs queries) AddSearchHistory(ctx context.Context, query string, at time.Time) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if at.IsZero() {
		at = now()
	}
	_, err := qs.q.ExecContext(ctx, `INSERT INTO search_history (query, created_at) VALUES (?, ?)`, query, formatTime(at))
	return wrapDBError("add search history", err)
}

// HasSearchHistory reports whether the (query, timestamp) pair is logged.
// The query is trimmed the same way AddSearchHistory stores it.
func (qs queries) HasSearchHistory(ctx context.Context, query string, at time.Time) (bool, error) {
	query = strings.TrimSpace(query)
	var n int
	err := qs.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM search_history WHERE query = ? AND created_at = ?
	`, query, formatTime(at)).Scan(&n)
	if err != nil {
		return false, wrapDBError("check search history", err)
	}
	return n > 0, nil
}

// ListSearchHistory returns one row per distinct query carrying its most
// recent timestamp, newest first.
func (qs queries) ListSearchHistory(ctx context.Context) ([]*types.SearchHistory, error) {
	return qs.querySearchHistory(ctx, `
		SELECT MAX(id), query, MAX(created_at) AS last_at
		FROM search_history
		GROUP BY query
		ORDER BY last_at DESC, query
	`)
}

// ListAllSearchHistory returns every logged row, newest first. Export uses it.
func (qs queries) ListAllSearchHistory(ctx context.Context) ([]*types.SearchHistory, error) {
	return qs.querySearchHistory(ctx, `
		SELECT id, query, created_at FROM search_history ORDER BY created_at DESC, id DESC
	`)
}

func (qs queries) querySearchHistory(ctx context.Context, query string) ([]*types.SearchHistory, error) {
	rows, err := qs.q.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapDBError("list search history", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.SearchHistory
	for rows.Next() {
		var h types.SearchHistory
		var createdAt string
		if err := rows.Scan(&h.ID, &h.Query, &createdAt); err != nil {
			return nil, wrapDBError("scan search history", err)
		}
		h.CreatedAt = parseTimeString(createdAt)
		items = append(items, &h)
	}
	return items, wrapDBError("list search history", rows.Err())
}

func (qs queries) ClearSearchHistory(ctx context.Context) error {
	_, err := qs.q.ExecContext(ctx, `DELETE FROM search_history`)
	return wrapDBError("clear search history", err)
}
