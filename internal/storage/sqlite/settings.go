package sqlite

import (
	"context"
	"fmt"

	"github.com/dailyworkspace/daybook/internal/types"
)

// GetAppSettings reads the singleton settings row. It never creates it:
// EnsureAppSettings runs at startup.
func (qs queries) GetAppSettings(ctx context.Context) (*types.AppSettings, error) {
	var s types.AppSettings
	var createdAt, updatedAt string
	err := qs.q.QueryRowContext(ctx, `
		SELECT id, sprint_goals, quarterly_goals, created_at, updated_at FROM app_settings WHERE id = ?
	`, types.AppSettingsID).Scan(&s.ID, &s.SprintGoals, &s.QuarterlyGoals, &createdAt, &updatedAt)
	if err != nil {
		return nil, wrapDBError("get app settings", err)
	}
	s.CreatedAt = parseTimeString(createdAt)
	s.UpdatedAt = parseTimeString(updatedAt)
	return &s, nil
}

func (qs queries) UpdateAppSettings(ctx context.Context, settings *types.AppSettings) error {
	settings.ID = types.AppSettingsID
	settings.UpdatedAt = now()
	res, err := qs.q.ExecContext(ctx, `
		UPDATE app_settings SET sprint_goals = ?, quarterly_goals = ?, updated_at = ? WHERE id = ?
	`, settings.SprintGoals, settings.QuarterlyGoals, formatTime(settings.UpdatedAt), settings.ID)
	if err != nil {
		return wrapDBError("update app settings", err)
	}
	return notFoundIfNoRows(res, "update app settings")
}

// SetMetadata upserts a metadata key.
func (qs queries) SetMetadata(ctx context.Context, key, value string) error {
	_, err := qs.q.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return wrapDBErrorf(err, "set metadata %s", key)
}

// GetMetadata returns the value for key, or ErrNotFound.
func (qs queries) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := qs.q.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", wrapDBError(fmt.Sprintf("get metadata %s", key), err)
	}
	return value, nil
}
