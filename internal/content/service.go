package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content/repo"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

const (
	MsgContentUpdated = "Content updated successfully."
	MsgContentAdded   = "New content added successfully."
)

type Service struct {
	repo  *repo.ContentRepo
	ids   *utilities.IDGenerator
	clock clockwork.Clock
}

func NewService(r *repo.ContentRepo, ids *utilities.IDGenerator, clock clockwork.Clock) *Service {
	if ids == nil {
		ids = utilities.NewIDGeneratorFromEnv()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: r, ids: ids, clock: clock}
}

// Repo exposes the underlying repository (schema setup, CLI).
func (s *Service) Repo() *repo.ContentRepo { return s.repo }

// UpsertInput is one write into a kiosk's content slot.
type UpsertInput struct {
	KioskID       string
	Title         string
	Body          string
	ContentType   string
	ScheduledTime string
	IsActive      bool
}

type UpsertResult struct {
	ContentID string `json:"contentId"`
	Message   string `json:"message"`
	Created   bool   `json:"-"`
}

// Upsert stores in under its (kiosk, title) slot. Concurrent writes to the same
// slot resolve to a single row.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*UpsertResult, error) {
	kioskID := strings.TrimSpace(in.KioskID)
	title := strings.TrimSpace(in.Title)
	if kioskID == "" {
		return nil, failure.Validation("kiosk id is required", nil)
	}
	if title == "" {
		return nil, failure.Validation("title is required", nil)
	}
	at, err := ParseScheduledTime(in.ScheduledTime)
	if err != nil {
		return nil, failure.Validation("scheduledTime must be an ISO-8601 timestamp", err)
	}

	now := s.clock.Now().UTC()
	c := &entity.Content{
		ID:            s.ids.NewID(),
		KioskID:       kioskID,
		Title:         title,
		Body:          in.Body,
		ContentType:   in.ContentType,
		ScheduledTime: at,
		IsActive:      in.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := s.repo.Upsert(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("upsert content: %w", err)
	}
	if id == c.ID {
		return &UpsertResult{ContentID: id, Message: MsgContentAdded, Created: true}, nil
	}
	return &UpsertResult{ContentID: id, Message: MsgContentUpdated}, nil
}

// Due lists active content whose scheduled time has been reached. An empty
// kioskID covers all kiosks.
func (s *Service) Due(ctx context.Context, kioskID string) ([]entity.Content, error) {
	items, err := s.repo.ListDue(ctx, strings.TrimSpace(kioskID), s.clock.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list due content: %w", err)
	}
	return items, nil
}

// Slot returns the item stored for (kioskID, title).
func (s *Service) Slot(ctx context.Context, kioskID, title string) (*entity.Content, error) {
	c, err := s.repo.FindBySlot(ctx, kioskID, title)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, failure.NotFound("content not found")
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	return c, nil
}
