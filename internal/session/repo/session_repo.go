package repo

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/database"
)

var ErrNotFound = errors.New("session not found")

type SessionRepo struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// EnsureTable creates the sessions table and the expiry index used by the sweeper.
func (r *SessionRepo) EnsureTable(ctx context.Context) error {
	ts := database.TimestampType(r.db.DriverName())
	tbl := `CREATE TABLE IF NOT EXISTS sessions (
		token_hash CHAR(64) PRIMARY KEY,
		user_id VARCHAR(32) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		issued_at ` + ts + ` NOT NULL,
		expires_at ` + ts + ` NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}
	const idx = `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

func (r *SessionRepo) Create(ctx context.Context, s *entity.Session) error {
	q := `INSERT INTO sessions (token_hash, user_id, subject, issued_at, expires_at)
		VALUES (:token_hash, :user_id, :subject, :issued_at, :expires_at)`
	_, err := r.db.NamedExecContext(ctx, q, s)
	return err
}

// Find returns the session for tokenHash or ErrNotFound. Expired rows are returned as-is.
func (r *SessionRepo) Find(ctx context.Context, tokenHash string) (*entity.Session, error) {
	q := r.db.Rebind(`SELECT token_hash, user_id, subject, issued_at, expires_at FROM sessions WHERE token_hash = ?`)
	var s entity.Session
	if err := r.db.GetContext(ctx, &s, q, tokenHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE token_hash = ?`), tokenHash)
	return err
}

// DeleteActive removes the session only if it has not expired at now, in one
// statement. It reports whether a row was removed; expired rows are left in place.
func (r *SessionRepo) DeleteActive(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	q := r.db.Rebind(`DELETE FROM sessions WHERE token_hash = ? AND expires_at > ?`)
	res, err := r.db.ExecContext(ctx, q, tokenHash, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes every session with expires_at <= now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the number of stored sessions, expired or not.
func (r *SessionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM sessions`); err != nil {
		return 0, err
	}
	return n, nil
}
