package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	supportRepo    domain.EventSupportRepository
	inviteRepo     domain.EventInviteRepository
	identities     domain.IdentityResolver
	categories     domain.CategoryResolver
	invites        domain.InviteResolver
	notifier       domain.NotificationSender
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	supportRepo domain.EventSupportRepository,
	inviteRepo domain.EventInviteRepository,
	identities domain.IdentityResolver,
	categories domain.CategoryResolver,
	invites domain.InviteResolver,
	notifier domain.NotificationSender,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		supportRepo:    supportRepo,
		inviteRepo:     inviteRepo,
		identities:     identities,
		categories:     categories,
		invites:        invites,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, input *domain.CreateEventInput, actor *domain.Actor) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
	}
	if len(input.CategoryIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", domain.ErrInvalidInput)
	}
	if err := s.checkCategoryIDs(ctx, input.CategoryIDs); err != nil {
		return nil, err
	}
	// Pre-check link membership before any write so a bad supporter or invite
	// id rejects the whole create instead of leaving a half-built fan-out.
	if err := s.checkSupporterIDs(ctx, input.Supporters); err != nil {
		return nil, err
	}
	if err := s.checkInviteIDs(ctx, input.Invites); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	coverImage := input.CoverImage
	if coverImage == "" {
		coverImage = domain.DefaultCoverImage
	}
	event := &domain.Event{
		Title:         input.Title,
		Description:   input.Description,
		StartDate:     input.StartDate.UTC(),
		EndDate:       input.EndDate.UTC(),
		Location:      input.Location,
		CoverImage:    coverImage,
		Status:        domain.EventStatusCreate,
		CategoryIDs:   input.CategoryIDs,
		IsLimitSeat:   input.IsLimitSeat,
		TotalSeats:    input.TotalSeats,
		EstimatePrice: input.EstimatePrice,
		RealPrice:     input.RealPrice,
		CreatedBy:     actor.ID,
		UpdatedBy:     actor.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	// Link writes are side effects of the create, not part of the returned
	// value. The event write and the link writes are not transactional; a
	// failure here is logged and the upsert self-heals on the next update.
	if len(input.Supporters) > 0 {
		if err := s.upsertSupport(ctx, event, input.Supporters, input.Responsible, input.Note, actor); err != nil {
			s.logger.ErrorContext(ctx, "support link write failed", "event_id", event.ID, "err", err)
		}
	}
	if len(input.Invites) > 0 {
		if err := s.upsertInvite(ctx, event.ID, input.Invites, input.Note, actor); err != nil {
			s.logger.ErrorContext(ctx, "invite link write failed", "event_id", event.ID, "err", err)
		}
	}

	return event, nil
}

func (s *eventService) Update(ctx context.Context, eventID string, input *domain.UpdateEventInput, actor *domain.Actor) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.IsValidID(eventID) {
		return nil, fmt.Errorf("%w: malformed event id: %s", domain.ErrInvalidInput, eventID)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.CanMutate(actor, event.CreatedBy) {
		return nil, domain.ErrForbidden
	}

	patch := input.Patch
	// Ordering is only re-validated when the patch carries both dates. A patch
	// that moves a single endpoint is not checked against the stored other
	// endpoint; see the design notes.
	if patch.StartDate != nil && patch.EndDate != nil {
		if !patch.EndDate.After(*patch.StartDate) {
			return nil, fmt.Errorf("%w: end date must be after start date", domain.ErrInvalidInput)
		}
	}
	if patch.StartDate != nil {
		utc := patch.StartDate.UTC()
		patch.StartDate = &utc
	}
	if patch.EndDate != nil {
		utc := patch.EndDate.UTC()
		patch.EndDate = &utc
	}
	if patch.CategoryIDs != nil {
		if len(patch.CategoryIDs) == 0 {
			return nil, fmt.Errorf("%w: at least one category is required", domain.ErrInvalidInput)
		}
		if err := s.checkCategoryIDs(ctx, patch.CategoryIDs); err != nil {
			return nil, err
		}
	}
	if err := s.checkSupporterIDs(ctx, input.Supporters); err != nil {
		return nil, err
	}
	if err := s.checkInviteIDs(ctx, input.Invites); err != nil {
		return nil, err
	}

	patch.UpdatedBy = actor.ID
	updated, err := s.eventRepo.Update(ctx, eventID, &patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}

	if input.Supporters != nil {
		if err := s.upsertSupport(ctx, updated, input.Supporters, "", "", actor); err != nil {
			s.logger.ErrorContext(ctx, "support link upsert failed", "event_id", eventID, "err", err)
		}
	}
	if input.Invites != nil {
		if err := s.upsertInvite(ctx, eventID, input.Invites, "", actor); err != nil {
			s.logger.ErrorContext(ctx, "invite link upsert failed", "event_id", eventID, "err", err)
		}
	}

	return updated, nil
}

func (s *eventService) Cancel(ctx context.Context, eventID string, actor *domain.Actor) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.IsValidID(eventID) {
		return nil, fmt.Errorf("%w: malformed event id: %s", domain.ErrInvalidInput, eventID)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !domain.CanMutate(actor, event.CreatedBy) {
		return nil, domain.ErrForbidden
	}
	// Cancelling an already-cancelled event is not an error.
	if event.Status == domain.EventStatusCancelled {
		return event, nil
	}
	cancelled, err := s.eventRepo.SetStatus(ctx, eventID, domain.EventStatusCancelled)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("cancel event: %w", err)
	}
	return cancelled, nil
}

func (s *eventService) Delete(ctx context.Context, eventID string, actor *domain.Actor) error {
	if _, err := s.Cancel(ctx, eventID, actor); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Link rows survive the event; they are only deactivated, never removed.
	if err := s.supportRepo.Deactivate(ctx, eventID); err != nil {
		s.logger.ErrorContext(ctx, "support link deactivate failed", "event_id", eventID, "err", err)
	}
	if err := s.inviteRepo.Deactivate(ctx, eventID); err != nil {
		s.logger.ErrorContext(ctx, "invite link deactivate failed", "event_id", eventID, "err", err)
	}
	return nil
}

func (s *eventService) GetByID(ctx context.Context, eventID string, actor *domain.Actor) (*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !domain.IsValidID(eventID) {
		return nil, fmt.Errorf("%w: malformed event id: %s", domain.ErrInvalidInput, eventID)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// checkCategoryIDs validates id shape first, then existence through the
// category collaborator. Both failure messages name the offending id.
func (s *eventService) checkCategoryIDs(ctx context.Context, categoryIDs []string) error {
	for _, id := range categoryIDs {
		if !domain.IsValidID(id) {
			return fmt.Errorf("%w: malformed category id: %s", domain.ErrInvalidInput, id)
		}
	}
	for _, id := range categoryIDs {
		exists, err := s.categories.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check category %s: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("%w: category: %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

func (s *eventService) checkSupporterIDs(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		if !domain.IsValidID(id) {
			return fmt.Errorf("%w: malformed user id: %s", domain.ErrInvalidInput, id)
		}
		if _, err := s.identities.Resolve(ctx, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: user: %s", domain.ErrNotFound, id)
			}
			return fmt.Errorf("resolve user %s: %w", id, err)
		}
	}
	return nil
}

func (s *eventService) checkInviteIDs(ctx context.Context, inviteIDs []string) error {
	for _, id := range inviteIDs {
		if !domain.IsValidID(id) {
			return fmt.Errorf("%w: malformed invite id: %s", domain.ErrInvalidInput, id)
		}
		exists, err := s.invites.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check invite %s: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("%w: invite: %s", domain.ErrNotFound, id)
		}
	}
	return nil
}
