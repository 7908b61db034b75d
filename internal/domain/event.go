package domain

import (
	"context"
	"regexp"
	"time"
)

// EventStatus is the lifecycle status of an event. CREATE moves to PROCESS and
// CLOSED only through the status sweeper; CANCELLED is set only by an explicit
// cancel or delete and is terminal.
type EventStatus string

const (
	EventStatusCreate    EventStatus = "CREATE"
	EventStatusProcess   EventStatus = "PROCESS"
	EventStatusClosed    EventStatus = "CLOSED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// Terminal reports whether the status can never change again.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCancelled
}

// DefaultCoverImage is used when an event is created without a cover image.
const DefaultCoverImage = "https://via.placeholder.com/600x400"

// Title and description limits, matching the create/update validators.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 255
	DescriptionMinLen = 10
)

// idRegex matches a canonical UUID string (8-4-4-4-12 hex).
var idRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValidID reports whether s has a valid identifier shape.
func IsValidID(s string) bool {
	return idRegex.MatchString(s)
}

// Event represents a scheduled occurrence with a time window and lifecycle status.
// The seat and price counters are data-entry fields: they are stored and served
// but no invariant is enforced on them here. ID and CreatedBy are immutable
// after creation; CreatedBy is the basis for ownership checks.
// swagger:model Event
type Event struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Description          string      `json:"description"`
	StartDate            time.Time   `json:"start_date"`
	EndDate              time.Time   `json:"end_date"`
	Location             string      `json:"location"`
	CoverImage           string      `json:"cover_image"`
	Status               EventStatus `json:"status"`
	CategoryIDs          []string    `json:"category_ids"`
	IsLimitSeat          int         `json:"is_limit_seat"`
	TotalSeats           int         `json:"total_seats"`
	TotalCustomerInvites int         `json:"total_customer_invites"`
	TotalSupports        int         `json:"total_supports"`
	TotalDetails         int         `json:"total_details"`
	TotalCosts           int         `json:"total_costs"`
	TotalFeedbacks       int         `json:"total_feedbacks"`
	EstimatePrice        float64     `json:"estimate_price"`
	RealPrice            float64     `json:"real_price"`
	CreatedBy            string      `json:"created_by"`
	UpdatedBy            string      `json:"updated_by"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// DurationHours returns the event window length rounded to whole hours.
func (e *Event) DurationHours() int {
	return int(e.EndDate.Sub(e.StartDate).Round(time.Hour) / time.Hour)
}

// EventPatch carries the mutable fields of an update. Nil pointers (and a nil
// CategoryIDs slice) mean "unchanged". CreatedBy and Status are not patchable
// through it.
type EventPatch struct {
	Title         *string
	Description   *string
	Location      *string
	CoverImage    *string
	StartDate     *time.Time
	EndDate       *time.Time
	CategoryIDs   []string
	IsLimitSeat   *int
	TotalSeats    *int
	EstimatePrice *float64
	RealPrice     *float64
	UpdatedBy     string
}

// EventFilter is the read-side filter for event listing. Zero values disable
// the corresponding clause. The date pair selects events whose window overlaps
// [StartDate, EndDate].
type EventFilter struct {
	Query      string
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID string
}

// SortSpec is a caller-supplied sort key and direction, already validated
// against the sortable-field whitelist.
type SortSpec struct {
	Field     string
	Ascending bool
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, patch *EventPatch) (*Event, error)
	SetStatus(ctx context.Context, id string, status EventStatus) (*Event, error)
	List(ctx context.Context, filter EventFilter, sort SortSpec, params PaginationParams) ([]*Event, int, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Event, error)
	ListByCategories(ctx context.Context, categoryIDs []string, sort SortSpec, params PaginationParams) ([]*Event, int, error)
	// CloseEnded sets status CLOSED on every event whose end date has passed,
	// except those already CLOSED or CANCELLED. Returns the number updated.
	CloseEnded(ctx context.Context, now time.Time) (int64, error)
	// StartDue sets status PROCESS on every CREATE event whose start date has
	// been reached. Returns the number updated.
	StartDue(ctx context.Context, now time.Time) (int64, error)
}

// MemberRef is a resolved identity reference (id plus display name) used in
// enriched list rows.
type MemberRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EventListItem is one enriched row of the event listing: the event joined
// with its resolved supporters, its invitee ids, its categories, and its
// creator's display name.
// swagger:model EventListItem
type EventListItem struct {
	Event      *Event      `json:"event"`
	Supporters []MemberRef `json:"supporters"`
	Invitees   []string    `json:"invitees"`
	Categories []Category  `json:"categories"`
	Creator    *MemberRef  `json:"creator,omitempty"`
}

// CreateEventInput is the service-level input for event creation. Supporters
// and Invites, when non-empty, fan out to the support/invite link rows.
type CreateEventInput struct {
	Title         string
	Description   string
	StartDate     time.Time
	EndDate       time.Time
	Location      string
	CoverImage    string
	CategoryIDs   []string
	IsLimitSeat   int
	TotalSeats    int
	EstimatePrice float64
	RealPrice     float64
	Supporters    []string
	Invites       []string
	Responsible   string
	Note          string
}

// UpdateEventInput is the service-level input for event update: the field
// patch plus optional link membership. A nil Supporters/Invites slice means
// the request did not carry that list and the link row is left alone.
type UpdateEventInput struct {
	Patch      EventPatch
	Supporters []string
	Invites    []string
}

// EventService defines the business logic of the event lifecycle subsystem.
// Every method requires a resolved actor and returns ErrUnauthorized otherwise.
type EventService interface {
	Create(ctx context.Context, input *CreateEventInput, actor *Actor) (*Event, error)
	Update(ctx context.Context, eventID string, input *UpdateEventInput, actor *Actor) (*Event, error)
	Cancel(ctx context.Context, eventID string, actor *Actor) (*Event, error)
	Delete(ctx context.Context, eventID string, actor *Actor) error
	GetByID(ctx context.Context, eventID string, actor *Actor) (*Event, error)
	List(ctx context.Context, filter EventFilter, sortBy, sortOrder string, params PaginationParams, actor *Actor) ([]*EventListItem, int, error)
	MyEvents(ctx context.Context, actor *Actor) ([]*Event, error)
	ListByCategories(ctx context.Context, categoryIDs []string, sortBy, sortOrder string, params PaginationParams, actor *Actor) ([]*Event, int, error)
}
