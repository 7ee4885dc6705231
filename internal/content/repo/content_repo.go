package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
)

var ErrNotFound = errors.New("content not found")

const contentColumns = `id, kiosk_id, title, body, content_type, scheduled_time, is_active, created_at, updated_at`

type ContentRepo struct {
	db *sqlx.DB
}

func NewContentRepo(db *sqlx.DB) *ContentRepo {
	return &ContentRepo{db: db}
}

// EnsureTable creates the contents table. The unique (kiosk_id, title) pair is
// the conflict target of Upsert.
func (r *ContentRepo) EnsureTable(ctx context.Context) error {
	ts := database.TimestampType(r.db.DriverName())
	tbl := `CREATE TABLE IF NOT EXISTS contents (
		id VARCHAR(32) PRIMARY KEY,
		kiosk_id VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		body TEXT NOT NULL,
		content_type VARCHAR(32) NOT NULL,
		scheduled_time ` + ts + ` NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT false,
		created_at ` + ts + ` NOT NULL,
		updated_at ` + ts + ` NOT NULL,
		UNIQUE (kiosk_id, title)
	)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return fmt.Errorf("create contents: %w", err)
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_contents_due ON contents (is_active, scheduled_time)`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create contents index: %w", err)
	}
	return nil
}

// Upsert inserts c or, when its slot already exists, overwrites body, type,
// schedule and active flag in the same statement. It returns the id of the
// stored row: c.ID for a new row, the existing id otherwise.
func (r *ContentRepo) Upsert(ctx context.Context, c *entity.Content) (string, error) {
	q := r.db.Rebind(`INSERT INTO contents (` + contentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kiosk_id, title) DO UPDATE SET
			body = excluded.body,
			content_type = excluded.content_type,
			scheduled_time = excluded.scheduled_time,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at
		RETURNING id`)
	var id string
	err := r.db.GetContext(ctx, &id, q,
		c.ID, c.KioskID, c.Title, c.Body, c.ContentType, c.ScheduledTime, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FindBySlot returns the item stored for (kioskID, title) or ErrNotFound.
func (r *ContentRepo) FindBySlot(ctx context.Context, kioskID, title string) (*entity.Content, error) {
	q := r.db.Rebind(`SELECT ` + contentColumns + ` FROM contents WHERE kiosk_id = ? AND title = ?`)
	var c entity.Content
	if err := r.db.GetContext(ctx, &c, q, kioskID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListDue returns active items scheduled at or before now, oldest schedule
// first. An empty kioskID matches every kiosk.
func (r *ContentRepo) ListDue(ctx context.Context, kioskID string, now time.Time) ([]entity.Content, error) {
	q := `SELECT ` + contentColumns + ` FROM contents WHERE is_active = ? AND scheduled_time <= ?`
	args := []any{true, now}
	if kioskID != "" {
		q += ` AND kiosk_id = ?`
		args = append(args, kioskID)
	}
	q += ` ORDER BY scheduled_time ASC, id ASC`
	rows := []entity.Content{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of stored items.
func (r *ContentRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM contents`); err != nil {
		return 0, err
	}
	return n, nil
}
