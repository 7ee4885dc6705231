package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
)

// InteractionRepo is an append-only store of device interactions.
type InteractionRepo struct {
	db *sqlx.DB
}

func NewInteractionRepo(db *sqlx.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// EnsureTable creates the device_interactions table and its time index.
func (r *InteractionRepo) EnsureTable(ctx context.Context) error {
	ts := database.TimestampType(r.db.DriverName())
	tbl := `CREATE TABLE IF NOT EXISTS device_interactions (
		id VARCHAR(32) PRIMARY KEY,
		kiosk_id VARCHAR(64),
		user_id VARCHAR(32),
		action VARCHAR(64) NOT NULL,
		description TEXT,
		created_at ` + ts + ` NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return fmt.Errorf("create device_interactions: %w", err)
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_device_interactions_created_at ON device_interactions (created_at)`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create device_interactions index: %w", err)
	}
	return nil
}

func (r *InteractionRepo) Create(ctx context.Context, in *entity.Interaction) error {
	q := `INSERT INTO device_interactions (id, kiosk_id, user_id, action, description, created_at)
		VALUES (:id, :kiosk_id, :user_id, :action, :description, :created_at)`
	_, err := r.db.NamedExecContext(ctx, q, in)
	return err
}

// List returns every interaction, oldest first.
func (r *InteractionRepo) List(ctx context.Context) ([]entity.Interaction, error) {
	const q = `SELECT id, kiosk_id, user_id, action, description, created_at
		FROM device_interactions ORDER BY created_at ASC, id ASC`
	var rows []entity.Interaction
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
