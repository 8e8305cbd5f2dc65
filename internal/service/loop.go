// Package service contains the business logic for Loopspot.
// Services validate inputs, enforce business rules, and orchestrate store calls.
// No storage details live here; services depend on the repo.LoopStore
// interface, not on any one backend.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/linkcodec"
	"github.com/loopspot/loopspot/internal/repo"
)

// IDGenerator mints loop ids. *idgen.Generator satisfies it.
type IDGenerator interface {
	Generate() string
}

// CreateLoopInput carries the user-supplied fields of a new loop.
type CreateLoopInput struct {
	Name       string
	StartAt    time.Time
	EndAt      time.Time
	ApproxStay string
}

// ShareLink is what the user sends to invitees.
type ShareLink struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// LoopService creates, resolves and persists loops on this device.
// The local store is the authoritative copy; share links only bootstrap a
// loop on a device that has never seen it.
type LoopService struct {
	store repo.LoopStore
	ids   IDGenerator
	codec *linkcodec.Codec
	log   *slog.Logger
	now   func() time.Time
}

// LoopOption configures a LoopService.
type LoopOption func(*LoopService)

// WithClock replaces time.Now as the source of CreatedAt.
func WithClock(now func() time.Time) LoopOption {
	return func(s *LoopService) { s.now = now }
}

// NewLoopService constructs a LoopService. A nil logger falls back to slog.Default.
func NewLoopService(store repo.LoopStore, ids IDGenerator, codec *linkcodec.Codec, log *slog.Logger, opts ...LoopOption) *LoopService {
	if log == nil {
		log = slog.Default()
	}
	s := &LoopService{store: store, ids: ids, codec: codec, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, assigns a fresh id and persists a loop with no
// waypoints.
// Returns domain.ErrInvalidName or domain.ErrInvalidRange for bad input.
// On domain.ErrPersistenceFailed the built loop is returned alongside the
// error so the caller can retry with Save.
func (s *LoopService) Create(ctx context.Context, in CreateLoopInput) (domain.Loop, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Create: %w", domain.ErrInvalidName)
	}
	if in.StartAt.IsZero() || in.EndAt.IsZero() {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Create: %w: start and end are required", domain.ErrValidation)
	}
	if in.EndAt.Before(in.StartAt) {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Create: %w", domain.ErrInvalidRange)
	}

	l := domain.Loop{
		ID:         s.ids.Generate(),
		Name:       name,
		StartAt:    in.StartAt.UTC(),
		EndAt:      in.EndAt.UTC(),
		ApproxStay: strings.TrimSpace(in.ApproxStay),
		CreatedAt:  s.now().UTC(),
		Waypoints:  []domain.Waypoint{},
	}
	if err := s.Save(ctx, l); err != nil {
		return l, fmt.Errorf("service.LoopService.Create: %w", err)
	}
	s.log.InfoContext(ctx, "loop created", "loop_id", l.ID)
	return l, nil
}

// Resolve returns the loop for id, preferring the local record over the link
// payload so that waypoints added on this device survive re-opening a link.
// When no record exists and payload is usable, the loop is built from it and
// stored. A record that cannot be decoded is treated as absent.
//
// Returns domain.ErrLoopNotFound when neither source yields a loop. If storing
// the bootstrapped loop fails, the loop is returned together with
// domain.ErrPersistenceFailed.
func (s *LoopService) Resolve(ctx context.Context, id string, payload *domain.SharePayload) (domain.Loop, error) {
	if id == "" && payload != nil {
		id = strings.TrimSpace(payload.ID)
	}
	if id == "" {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Resolve: %w", domain.ErrLoopNotFound)
	}

	data, err := s.store.Get(ctx, id)
	switch {
	case err == nil:
		l, decodeErr := decodeLoop(id, data)
		if decodeErr == nil {
			l.ID = id
			return l, nil
		}
		s.log.WarnContext(ctx, "ignoring unreadable loop record", "loop_id", id, "error", decodeErr)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Loop{}, fmt.Errorf("service.LoopService.Resolve: %w: %w", domain.ErrPersistenceFailed, err)
	}

	if payload == nil {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Resolve: %w", domain.ErrLoopNotFound)
	}
	l, ok := s.codec.ToLoop(id, *payload)
	if !ok {
		return domain.Loop{}, fmt.Errorf("service.LoopService.Resolve: %w", domain.ErrLoopNotFound)
	}
	if err := s.Save(ctx, l); err != nil {
		return l, fmt.Errorf("service.LoopService.Resolve: %w", err)
	}
	s.log.InfoContext(ctx, "loop accepted from link", "loop_id", id)
	return l, nil
}

// Get returns the stored loop for id.
// Returns domain.ErrLoopNotFound if this device has no record of it.
func (s *LoopService) Get(ctx context.Context, id string) (domain.Loop, error) {
	return s.Resolve(ctx, id, nil)
}

// Save upserts l into the local store. Saving the same loop twice leaves the
// store unchanged.
// Store failures are reported as domain.ErrPersistenceFailed.
func (s *LoopService) Save(ctx context.Context, l domain.Loop) error {
	if l.ID == "" {
		return fmt.Errorf("service.LoopService.Save: %w: id is required", domain.ErrValidation)
	}
	data, err := encodeLoop(l)
	if err != nil {
		return fmt.Errorf("service.LoopService.Save: %w: %w", domain.ErrPersistenceFailed, err)
	}
	if err := s.store.Set(ctx, l.ID, data); err != nil {
		return fmt.Errorf("service.LoopService.Save: %w: %w", domain.ErrPersistenceFailed, err)
	}
	return nil
}

// Discard removes the loop from this device.
// Returns domain.ErrLoopNotFound if there is nothing to remove.
func (s *LoopService) Discard(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.InfoContext(ctx, "loop discarded", "loop_id", id)
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("service.LoopService.Discard: %w", domain.ErrLoopNotFound)
	default:
		return fmt.Errorf("service.LoopService.Discard: %w: %w", domain.ErrPersistenceFailed, err)
	}
}

// List returns one page of stored loops ordered by id, plus the total number
// of records. Unreadable records are skipped.
// Always returns a non-nil slice so callers can safely range over it.
func (s *LoopService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Loop, int64, error) {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LoopService.List: %w: %w", domain.ErrPersistenceFailed, err)
	}

	start, end := p.Window(len(keys))
	loops := make([]domain.Loop, 0, end-start)
	for _, id := range keys[start:end] {
		data, err := s.store.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, fmt.Errorf("service.LoopService.List: %w: %w", domain.ErrPersistenceFailed, err)
		}
		l, err := decodeLoop(id, data)
		if err != nil {
			s.log.WarnContext(ctx, "skipping unreadable loop record", "loop_id", id, "error", err)
			continue
		}
		l.ID = id
		loops = append(loops, l)
	}
	return loops, int64(len(keys)), nil
}

// OpenLink decodes a share URL and resolves the loop it names.
// Returns domain.ErrMalformedLink when the URL carries no loop id.
func (s *LoopService) OpenLink(ctx context.Context, raw string) (domain.Loop, error) {
	link, err := s.codec.Decode(raw)
	if err != nil {
		return domain.Loop{}, fmt.Errorf("service.LoopService.OpenLink: %w", err)
	}
	l, err := s.Resolve(ctx, link.ID, link.Payload)
	if err != nil {
		return l, fmt.Errorf("service.LoopService.OpenLink: %w", err)
	}
	return l, nil
}

// Share returns the share URL and message for a stored loop.
func (s *LoopService) Share(ctx context.Context, id string) (ShareLink, error) {
	l, err := s.Get(ctx, id)
	if err != nil {
		return ShareLink{}, fmt.Errorf("service.LoopService.Share: %w", err)
	}
	return s.ShareLinkFor(l), nil
}

// ShareLinkFor builds the share URL and message for l without touching the store.
func (s *LoopService) ShareLinkFor(l domain.Loop) ShareLink {
	url := s.codec.Encode(l)
	return ShareLink{URL: url, Message: linkcodec.ShareMessage(s.codec.Payload(l), url)}
}
