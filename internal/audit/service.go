package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// Defaults substituted for missing interaction fields.
const (
	UnknownUser      = "Unknown"
	NoDetailsMessage = "No details provided."
)

// Actions recorded by the HTTP layer.
const (
	ActionLogin             = "login"
	ActionLoginFailed       = "login_failed"
	ActionLogout            = "logout"
	ActionLogoutFailed      = "logout_failed"
	ActionContentUpdate     = "content_update"
	ActionPermissionsUpdate = "permissions_update"
)

// RecordInput describes an interaction to append. Empty strings are stored as NULL.
// The creation time always comes from the server clock.
type RecordInput struct {
	KioskID     string
	UserID      string
	Action      string
	Description string
}

// Recorder appends interactions; handlers depend on this instead of *Service.
type Recorder interface {
	Record(ctx context.Context, in RecordInput) (string, error)
}

type Service struct {
	repo  *repo.InteractionRepo
	clock clockwork.Clock
}

func NewService(r *repo.InteractionRepo, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: r, clock: clock}
}

// Repo exposes the underlying repository (schema setup, CLI).
func (s *Service) Repo() *repo.InteractionRepo { return s.repo }

// Record stores an interaction and returns its id.
func (s *Service) Record(ctx context.Context, in RecordInput) (string, error) {
	action := strings.TrimSpace(in.Action)
	if action == "" {
		return "", failure.Validation("action is required", nil)
	}
	it := &entity.Interaction{
		ID:          utilities.NewKSUID(),
		KioskID:     optional(in.KioskID),
		UserID:      optional(in.UserID),
		Action:      action,
		Description: optional(in.Description),
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, it); err != nil {
		return "", fmt.Errorf("record interaction: %w", err)
	}
	return it.ID, nil
}

// Log projects every stored interaction into a SecurityEvent.
func (s *Service) Log(ctx context.Context) ([]entity.SecurityEvent, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	out := make([]entity.SecurityEvent, 0, len(rows))
	for _, it := range rows {
		out = append(out, Project(it))
	}
	return out, nil
}

// Project applies the defaulting rules to a single interaction.
func Project(it entity.Interaction) entity.SecurityEvent {
	ev := entity.SecurityEvent{
		Timestamp: it.CreatedAt,
		UserID:    UnknownUser,
		Action:    it.Action,
		Details:   NoDetailsMessage,
	}
	if it.UserID != nil && *it.UserID != "" {
		ev.UserID = *it.UserID
	}
	if it.Description != nil && *it.Description != "" {
		ev.Details = *it.Description
	}
	return ev
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
