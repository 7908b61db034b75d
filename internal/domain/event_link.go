package domain

import (
	"context"
	"time"
)

// LinkStatus is the soft-delete flag on support/invite link rows.
type LinkStatus int

const (
	LinkStatusInactive LinkStatus = 0
	LinkStatusActive   LinkStatus = 1
)

// AcceptStatus records whether the assigned supporters accepted the assignment.
type AcceptStatus int

const (
	AcceptStatusDeclined AcceptStatus = 0
	AcceptStatusAccepted AcceptStatus = 1
)

// EventSupport is the single per-event row holding the current set of
// supporting users. It is created lazily on the first write that carries
// supporter data and updated in place afterwards; it is never duplicated and
// never hard-deleted, only soft-deactivated.
// swagger:model EventSupport
type EventSupport struct {
	ID          string       `json:"id"`
	EventID     string       `json:"event_id"`
	UserIDs     []string     `json:"user_ids"`
	Responsible string       `json:"responsible,omitempty"`
	Description string       `json:"description,omitempty"`
	Note        string       `json:"note,omitempty"`
	IsAccept    AcceptStatus `json:"is_accept"`
	Status      LinkStatus   `json:"status"`
	CreatedBy   string       `json:"created_by"`
	UpdatedBy   string       `json:"updated_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EventInvite is the invited-party counterpart of EventSupport: one row per
// event holding the current invitee ids, same lazy-create/update-in-place
// lifecycle.
// swagger:model EventInvite
type EventInvite struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	InviteIDs []string   `json:"invite_ids"`
	Note      string     `json:"note,omitempty"`
	Status    LinkStatus `json:"status"`
	CreatedBy string     `json:"created_by"`
	UpdatedBy string     `json:"updated_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EventSupportRepository defines storage for the per-event support link row.
// GetByEventID returns ErrNotFound when the event has no row yet.
type EventSupportRepository interface {
	GetByEventID(ctx context.Context, eventID string) (*EventSupport, error)
	Create(ctx context.Context, link *EventSupport) error
	Update(ctx context.Context, link *EventSupport) error
	Deactivate(ctx context.Context, eventID string) error
}

// EventInviteRepository defines storage for the per-event invite link row.
type EventInviteRepository interface {
	GetByEventID(ctx context.Context, eventID string) (*EventInvite, error)
	Create(ctx context.Context, link *EventInvite) error
	Update(ctx context.Context, link *EventInvite) error
	Deactivate(ctx context.Context, eventID string) error
}
