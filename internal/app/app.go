// Package app wires repositories and services around a single database handle.
package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit"
	auditrepo "github.com/ovaphlow/pitchfork/service-kiosk/internal/audit/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/config"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content"
	contentrepo "github.com/ovaphlow/pitchfork/service-kiosk/internal/content/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/session"
	sessionrepo "github.com/ovaphlow/pitchfork/service-kiosk/internal/session/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/token"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/user"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

type Container struct {
	DB       *sqlx.DB
	Clock    clockwork.Clock
	Issuer   *token.Issuer
	Users    *user.UserService
	Sessions *session.Service
	Content  *content.Service
	Audit    *audit.Service
	Metrics  *metrics.Metrics
}

// Option adjusts construction, mainly for tests.
type Option func(*options)

type options struct {
	clock  clockwork.Clock
	hasher user.PasswordHasher
}

func WithClock(c clockwork.Clock) Option { return func(o *options) { o.clock = c } }

func WithHasher(h user.PasswordHasher) Option { return func(o *options) { o.hasher = h } }

// New builds every service on db using cfg.
func New(cfg *config.Config, db *sqlx.DB, opts ...Option) (*Container, error) {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	issuer, err := token.NewIssuer(cfg.TokenConfig(), o.clock)
	if err != nil {
		return nil, err
	}
	ids := utilities.NewIDGenerator(cfg.IDs.SnowflakeNode)
	users := user.NewUserService(db, o.hasher, ids, o.clock)
	return &Container{
		DB:       db,
		Clock:    o.clock,
		Issuer:   issuer,
		Users:    users,
		Sessions: session.NewService(sessionrepo.NewSessionRepo(db), users, issuer, cfg.Auth.AccessTTL, o.clock),
		Content:  content.NewService(contentrepo.NewContentRepo(db), ids, o.clock),
		Audit:    audit.NewService(auditrepo.NewInteractionRepo(db), o.clock),
		Metrics:  metrics.New(),
	}, nil
}

// EnsureSchema creates any missing table. It is idempotent.
func (c *Container) EnsureSchema(ctx context.Context) error {
	steps := []func(context.Context) error{
		c.Users.Repo().EnsureTable,
		c.Sessions.Repo().EnsureTable,
		c.Content.Repo().EnsureTable,
		c.Audit.Repo().EnsureTable,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
