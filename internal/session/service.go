package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/token"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user"
	userentity "github.com/ovaphlow/pitchfork/service-kiosk/internal/user/entity"
)

// DefaultAccessTTL is the lifetime of a login session.
const DefaultAccessTTL = 30 * time.Minute

// Caller-visible messages.
const (
	MsgLoginSuccess       = "Login successful"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLogoutSuccess      = "Session terminated successfully."
	MsgInvalidSession     = "Invalid session token or token already expired."
)

// Authenticator verifies a credential. It must return user.ErrBadCredentials
// for both unknown users and wrong passwords.
type Authenticator interface {
	AuthenticatePassword(ctx context.Context, email, password string) (*userentity.User, error)
}

// Service runs the login/logout lifecycle on top of the session store.
type Service struct {
	repo   *repo.SessionRepo
	auth   Authenticator
	issuer *token.Issuer
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewService(r *repo.SessionRepo, auth Authenticator, issuer *token.Issuer, ttl time.Duration, clock clockwork.Clock) *Service {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: r, auth: auth, issuer: issuer, ttl: ttl, clock: clock}
}

// Repo exposes the underlying repository (schema setup, CLI).
func (s *Service) Repo() *repo.SessionRepo { return s.repo }

// LoginResult is the single response shape of Login.
type LoginResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Token     string    `json:"token,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	ExpiresAt time.Time `json:"-"`
}

// Login verifies the credential, issues a token and records the session.
// The token is only returned once the session row is written.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.auth.AuthenticatePassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrBadCredentials) {
			return nil, failure.Auth(MsgInvalidCredentials)
		}
		return nil, err
	}
	issued, err := s.issuer.Issue(map[string]any{"sub": u.Email}, s.ttl)
	if err != nil {
		return nil, err
	}
	sess := &entity.Session{
		TokenHash: repo.HashToken(issued.Token),
		UserID:    u.ID,
		Subject:   u.Email,
		IssuedAt:  issued.IssuedAt,
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}
	return &LoginResult{
		Success:   true,
		Message:   MsgLoginSuccess,
		Token:     issued.Token,
		UserID:    u.ID,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// LogoutResult is the single response shape of Logout.
type LogoutResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Logout revokes an active session. Absent, revoked and expired tokens all
// fail with the same message. An expired session is not deleted here; the
// sweeper evicts it.
func (s *Service) Logout(ctx context.Context, rawToken string) (*LogoutResult, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, failure.Auth(MsgInvalidSession)
	}
	removed, err := s.repo.DeleteActive(ctx, repo.HashToken(rawToken), s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("revoke session: %w", err)
	}
	if !removed {
		return nil, failure.Auth(MsgInvalidSession)
	}
	return &LogoutResult{Status: "success", Message: MsgLogoutSuccess}, nil
}

// Lookup returns the session for rawToken while it is active.
func (s *Service) Lookup(ctx context.Context, rawToken string) (*entity.Session, error) {
	sess, err := s.repo.Find(ctx, repo.HashToken(strings.TrimSpace(rawToken)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, failure.Auth(MsgInvalidSession)
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if !sess.ActiveAt(s.clock.Now()) {
		return nil, failure.Auth(MsgInvalidSession)
	}
	return sess, nil
}

// Revoke removes the session for rawToken whether or not it has expired.
// Revoking an unknown token is not an error.
func (s *Service) Revoke(ctx context.Context, rawToken string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return failure.Validation("token is required", nil)
	}
	if err := s.repo.Delete(ctx, repo.HashToken(rawToken)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session whose expiry has passed.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}
