package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"
)

// sortColumns whitelists the caller-facing sort keys and maps them to columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"startDate": "start_date",
	"endDate":   "end_date",
	"status":    "status",
}

// resolveSort maps a caller-supplied sort key and direction onto the column
// whitelist. Unknown or absent keys fall back to createdAt ascending.
func resolveSort(sortBy, sortOrder string) domain.SortSpec {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	return domain.SortSpec{Field: column, Ascending: sortOrder != "desc"}
}

func (s *eventService) List(ctx context.Context, filter domain.EventFilter, sortBy, sortOrder string, params domain.PaginationParams, actor *domain.Actor) ([]*domain.EventListItem, int, error) {
	if actor == nil {
		return nil, 0, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, resolveSort(sortBy, sortOrder), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	items := make([]*domain.EventListItem, 0, len(events))
	for _, event := range events {
		items = append(items, s.enrich(ctx, event))
	}
	return items, total, nil
}

// enrich joins one event with its support link (members resolved to display
// names), its invite link, its categories, and its creator. Enrichment is
// best-effort: a missing link or an unresolvable reference leaves that part
// empty rather than failing the page.
func (s *eventService) enrich(ctx context.Context, event *domain.Event) *domain.EventListItem {
	item := &domain.EventListItem{
		Event:      event,
		Supporters: []domain.MemberRef{},
		Invitees:   []string{},
		Categories: []domain.Category{},
	}

	if link, err := s.supportRepo.GetByEventID(ctx, event.ID); err == nil && link.Status == domain.LinkStatusActive {
		for _, userID := range link.UserIDs {
			ident, err := s.identities.Resolve(ctx, userID)
			if err != nil {
				s.logger.DebugContext(ctx, "supporter resolve skipped", "event_id", event.ID, "user_id", userID, "err", err)
				continue
			}
			item.Supporters = append(item.Supporters, domain.MemberRef{ID: ident.ID, Name: ident.DisplayName})
		}
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "support link read failed", "event_id", event.ID, "err", err)
	}

	if link, err := s.inviteRepo.GetByEventID(ctx, event.ID); err == nil && link.Status == domain.LinkStatusActive {
		item.Invitees = link.InviteIDs
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "invite link read failed", "event_id", event.ID, "err", err)
	}

	for _, categoryID := range event.CategoryIDs {
		cat, err := s.categories.Resolve(ctx, categoryID)
		if err != nil {
			s.logger.DebugContext(ctx, "category resolve skipped", "event_id", event.ID, "category_id", categoryID, "err", err)
			continue
		}
		item.Categories = append(item.Categories, *cat)
	}

	if ident, err := s.identities.Resolve(ctx, event.CreatedBy); err == nil {
		item.Creator = &domain.MemberRef{ID: ident.ID, Name: ident.DisplayName}
	}

	return item
}

func (s *eventService) MyEvents(ctx context.Context, actor *domain.Actor) ([]*domain.Event, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list my events: %w", err)
	}
	return events, nil
}

func (s *eventService) ListByCategories(ctx context.Context, categoryIDs []string, sortBy, sortOrder string, params domain.PaginationParams, actor *domain.Actor) ([]*domain.Event, int, error) {
	if actor == nil {
		return nil, 0, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if len(categoryIDs) == 0 {
		return nil, 0, fmt.Errorf("%w: at least one category id is required", domain.ErrInvalidInput)
	}
	for _, id := range categoryIDs {
		if !domain.IsValidID(id) {
			return nil, 0, fmt.Errorf("%w: malformed category id: %s", domain.ErrInvalidInput, id)
		}
	}

	events, total, err := s.eventRepo.ListByCategories(ctx, categoryIDs, resolveSort(sortBy, sortOrder), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events by categories: %w", err)
	}
	return events, total, nil
}
