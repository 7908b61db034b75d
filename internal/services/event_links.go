package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// upsertSupport replaces the support link membership for the event, creating
// the single link row on first write. Membership ids are assumed to be
// pre-checked. Newly assigned supporters are notified fire-and-forget.
func (s *eventService) upsertSupport(ctx context.Context, event *domain.Event, userIDs []string, responsible, note string, actor *domain.Actor) error {
	existing, err := s.supportRepo.GetByEventID(ctx, event.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get support link: %w", err)
	}

	var previous []string
	if existing == nil {
		now := time.Now().UTC()
		link := &domain.EventSupport{
			EventID:     event.ID,
			UserIDs:     userIDs,
			Responsible: responsible,
			Note:        note,
			IsAccept:    domain.AcceptStatusAccepted,
			Status:      domain.LinkStatusActive,
			CreatedBy:   actor.ID,
			UpdatedBy:   actor.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.supportRepo.Create(ctx, link); err != nil {
			return fmt.Errorf("create support link: %w", err)
		}
	} else {
		previous = existing.UserIDs
		existing.UserIDs = userIDs
		if responsible != "" {
			existing.Responsible = responsible
		}
		if note != "" {
			existing.Note = note
		}
		existing.UpdatedBy = actor.ID
		if err := s.supportRepo.Update(ctx, existing); err != nil {
			return fmt.Errorf("update support link: %w", err)
		}
	}

	s.notifyNewSupporters(ctx, event, previous, userIDs)
	return nil
}

// upsertInvite is the invited-party counterpart of upsertSupport.
func (s *eventService) upsertInvite(ctx context.Context, eventID string, inviteIDs []string, note string, actor *domain.Actor) error {
	existing, err := s.inviteRepo.GetByEventID(ctx, eventID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get invite link: %w", err)
	}

	if existing == nil {
		now := time.Now().UTC()
		link := &domain.EventInvite{
			EventID:   eventID,
			InviteIDs: inviteIDs,
			Note:      note,
			Status:    domain.LinkStatusActive,
			CreatedBy: actor.ID,
			UpdatedBy: actor.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.inviteRepo.Create(ctx, link); err != nil {
			return fmt.Errorf("create invite link: %w", err)
		}
		return nil
	}

	existing.InviteIDs = inviteIDs
	if note != "" {
		existing.Note = note
	}
	existing.UpdatedBy = actor.ID
	if err := s.inviteRepo.Update(ctx, existing); err != nil {
		return fmt.Errorf("update invite link: %w", err)
	}
	return nil
}

// notifyNewSupporters sends a notification to every user present in the new
// membership but not the old one. Delivery failures are logged and dropped.
func (s *eventService) notifyNewSupporters(ctx context.Context, event *domain.Event, previous, current []string) {
	known := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		known[id] = struct{}{}
	}
	for _, id := range current {
		if _, ok := known[id]; ok {
			continue
		}
		message := fmt.Sprintf("You have been assigned to support the event %q.", event.Title)
		if err := s.notifier.Notify(ctx, id, message); err != nil {
			s.logger.WarnContext(ctx, "supporter notification failed", "event_id", event.ID, "user_id", id, "err", err)
		}
	}
}
