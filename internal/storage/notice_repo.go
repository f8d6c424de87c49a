package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agentrpg/internal/progression"
)

// NoticeRepo records notifications surfaced by past runs so the user can
// review and dismiss them from any later invocation.
type NoticeRepo struct {
	db dbtx
}

func NewNoticeRepo(db *sql.DB) *NoticeRepo {
	return &NoticeRepo{db: db}
}

func (r *NoticeRepo) Insert(ctx context.Context, n progression.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notices (id, category, title, message, icon, priority, duration_ms, created_at, dismissed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, string(n.Category), n.Title, n.Message, n.Icon, string(n.Priority),
		n.Duration.Milliseconds(), n.Timestamp, boolToInt(n.Dismissed))
	if err != nil {
		return fmt.Errorf("notice insert: %w", err)
	}
	return nil
}

func (r *NoticeRepo) ListActive(ctx context.Context) ([]progression.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, title, message, icon, priority, duration_ms, created_at, dismissed
		FROM notices
		WHERE dismissed = 0
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("notice list: %w", err)
	}
	defer rows.Close()

	var out []progression.Notification
	for rows.Next() {
		var n progression.Notification
		var category, priority string
		var durationMS int64
		var dismissed int
		if err := rows.Scan(&n.ID, &category, &n.Title, &n.Message, &n.Icon, &priority, &durationMS, &n.Timestamp, &dismissed); err != nil {
			return nil, fmt.Errorf("notice scan: %w", err)
		}
		n.Category = progression.NotificationCategory(category)
		n.Priority = progression.Priority(priority)
		n.Duration = time.Duration(durationMS) * time.Millisecond
		n.Dismissed = dismissed != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NoticeRepo) Dismiss(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE notices SET dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("notice dismiss: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("notice dismiss rows: %w", err)
	}
	return n > 0, nil
}

// ClearDismissed deletes dismissed rows and returns how many went away.
func (r *NoticeRepo) ClearDismissed(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE dismissed = 1`)
	if err != nil {
		return 0, fmt.Errorf("notice clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("notice clear rows: %w", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
