package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	ownerID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	otherID  = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	adminID  = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	sup1ID   = "11111111-1111-1111-1111-111111111111"
	sup2ID   = "22222222-2222-2222-2222-222222222222"
	invite1  = "33333333-3333-3333-3333-333333333333"
	cat1ID   = "44444444-4444-4444-4444-444444444444"
	cat2ID   = "55555555-5555-5555-5555-555555555555"
	missing1 = "99999999-9999-9999-9999-999999999999"
)

var (
	ownerActor = &domain.Actor{ID: ownerID, Role: domain.RoleOrganizer, DisplayName: "Owner"}
	otherActor = &domain.Actor{ID: otherID, Role: domain.RoleOrganizer, DisplayName: "Other"}
	adminActor = &domain.Actor{ID: adminID, Role: domain.RoleAdmin, DisplayName: "Admin"}
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID           map[string]*domain.Event
	nextID         int
	createErr      error
	setStatusCalls int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) genID() string {
	id := fmt.Sprintf("00000000-0000-4000-8000-%012d", f.nextID)
	f.nextID++
	return id
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = f.genID()
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch *domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.CoverImage != nil {
		e.CoverImage = *patch.CoverImage
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	if patch.CategoryIDs != nil {
		e.CategoryIDs = patch.CategoryIDs
	}
	if patch.TotalSeats != nil {
		e.TotalSeats = *patch.TotalSeats
	}
	if patch.UpdatedBy != "" {
		e.UpdatedBy = patch.UpdatedBy
	}
	e.UpdatedAt = time.Now().UTC()
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) SetStatus(ctx context.Context, id string, status domain.EventStatus) (*domain.Event, error) {
	f.setStatusCalls++
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = status
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, sort domain.SortSpec, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.CreatedBy == creatorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByCategories(ctx context.Context, categoryIDs []string, sort domain.SortSpec, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		for _, want := range categoryIDs {
			for _, have := range e.CategoryIDs {
				if want == have {
					out = append(out, e)
				}
			}
		}
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) CloseEnded(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, e := range f.byID {
		if e.Status != domain.EventStatusClosed && e.Status != domain.EventStatusCancelled && e.EndDate.Before(now) {
			e.Status = domain.EventStatusClosed
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) StartDue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, e := range f.byID {
		if e.Status == domain.EventStatusCreate && !e.StartDate.After(now) {
			e.Status = domain.EventStatusProcess
			n++
		}
	}
	return n, nil
}

// fakeSupportRepo holds at most one support link per event, as the real table does.
type fakeSupportRepo struct {
	byEvent map[string]*domain.EventSupport
	nextID  int
}

func newFakeSupportRepo() *fakeSupportRepo {
	return &fakeSupportRepo{byEvent: make(map[string]*domain.EventSupport), nextID: 1}
}

func (f *fakeSupportRepo) GetByEventID(ctx context.Context, eventID string) (*domain.EventSupport, error) {
	if l, ok := f.byEvent[eventID]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSupportRepo) Create(ctx context.Context, link *domain.EventSupport) error {
	link.ID = fmt.Sprintf("sup-%d", f.nextID)
	f.nextID++
	f.byEvent[link.EventID] = link
	return nil
}

func (f *fakeSupportRepo) Update(ctx context.Context, link *domain.EventSupport) error {
	if _, ok := f.byEvent[link.EventID]; !ok {
		return domain.ErrNotFound
	}
	f.byEvent[link.EventID] = link
	return nil
}

func (f *fakeSupportRepo) Deactivate(ctx context.Context, eventID string) error {
	if l, ok := f.byEvent[eventID]; ok {
		l.Status = domain.LinkStatusInactive
	}
	return nil
}

type fakeInviteRepo struct {
	byEvent map[string]*domain.EventInvite
	nextID  int
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{byEvent: make(map[string]*domain.EventInvite), nextID: 1}
}

func (f *fakeInviteRepo) GetByEventID(ctx context.Context, eventID string) (*domain.EventInvite, error) {
	if l, ok := f.byEvent[eventID]; ok {
		return l, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInviteRepo) Create(ctx context.Context, link *domain.EventInvite) error {
	link.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	f.byEvent[link.EventID] = link
	return nil
}

func (f *fakeInviteRepo) Update(ctx context.Context, link *domain.EventInvite) error {
	if _, ok := f.byEvent[link.EventID]; !ok {
		return domain.ErrNotFound
	}
	f.byEvent[link.EventID] = link
	return nil
}

func (f *fakeInviteRepo) Deactivate(ctx context.Context, eventID string) error {
	if l, ok := f.byEvent[eventID]; ok {
		l.Status = domain.LinkStatusInactive
	}
	return nil
}

type fakeIdentities struct {
	byID map[string]*domain.Identity
}

func (f *fakeIdentities) Resolve(ctx context.Context, userID string) (*domain.Identity, error) {
	if ident, ok := f.byID[userID]; ok {
		return ident, nil
	}
	return nil, domain.ErrNotFound
}

type fakeCategories struct {
	names map[string]string
}

func (f *fakeCategories) Resolve(ctx context.Context, categoryID string) (*domain.Category, error) {
	if name, ok := f.names[categoryID]; ok {
		return &domain.Category{ID: categoryID, Name: name}, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCategories) Exists(ctx context.Context, categoryID string) (bool, error) {
	_, ok := f.names[categoryID]
	return ok, nil
}

type fakeInvites struct {
	known map[string]bool
}

func (f *fakeInvites) Exists(ctx context.Context, inviteID string) (bool, error) {
	return f.known[inviteID], nil
}

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, message string) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, userID)
	return nil
}

type serviceFixture struct {
	events     *fakeEventRepo
	supports   *fakeSupportRepo
	invitesRep *fakeInviteRepo
	notifier   *fakeNotifier
	svc        domain.EventService
}

func newFixture() *serviceFixture {
	events := newFakeEventRepo()
	supports := newFakeSupportRepo()
	invitesRep := newFakeInviteRepo()
	notifier := &fakeNotifier{}
	identities := &fakeIdentities{byID: map[string]*domain.Identity{
		ownerID: {ID: ownerID, Role: domain.RoleOrganizer, DisplayName: "Owner"},
		otherID: {ID: otherID, Role: domain.RoleOrganizer, DisplayName: "Other"},
		adminID: {ID: adminID, Role: domain.RoleAdmin, DisplayName: "Admin"},
		sup1ID:  {ID: sup1ID, Role: domain.RoleCustomer, DisplayName: "Supporter One"},
		sup2ID:  {ID: sup2ID, Role: domain.RoleCustomer, DisplayName: "Supporter Two"},
	}}
	categories := &fakeCategories{names: map[string]string{
		cat1ID: "Music",
		cat2ID: "Tech",
	}}
	invites := &fakeInvites{known: map[string]bool{invite1: true}}
	svc := NewEventService(events, supports, invitesRep, identities, categories, invites, notifier, testLogger, 2*time.Second)
	return &serviceFixture{
		events:     events,
		supports:   supports,
		invitesRep: invitesRep,
		notifier:   notifier,
		svc:        svc,
	}
}

func validCreateInput() *domain.CreateEventInput {
	return &domain.CreateEventInput{
		Title:       "Launch Party",
		Description: "An evening launch event",
		StartDate:   time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC),
		Location:    "Hanoi",
		CategoryIDs: []string{cat1ID},
	}
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success with supporters and invites", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.Supporters = []string{sup1ID, sup2ID}
		input.Invites = []string{invite1}
		input.Responsible = sup1ID

		event, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)
		require.NotEmpty(t, event.ID)
		assert.Equal(t, domain.EventStatusCreate, event.Status)
		assert.Equal(t, domain.DefaultCoverImage, event.CoverImage)
		assert.Equal(t, ownerID, event.CreatedBy)
		assert.Equal(t, ownerID, event.UpdatedBy)

		link, err := f.supports.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{sup1ID, sup2ID}, link.UserIDs)
		assert.Equal(t, domain.LinkStatusActive, link.Status)
		assert.Equal(t, domain.AcceptStatusAccepted, link.IsAccept)

		invLink, err := f.invitesRep.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{invite1}, invLink.InviteIDs)

		assert.ElementsMatch(t, []string{sup1ID, sup2ID}, f.notifier.notified)
	})

	t.Run("keeps explicit cover image", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CoverImage = "https://img.example/custom.png"

		event, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, "https://img.example/custom.png", event.CoverImage)
	})

	t.Run("nil actor", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validCreateInput(), nil)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("end date not after start date", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.EndDate = input.StartDate

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no categories", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CategoryIDs = nil

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("malformed category id", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CategoryIDs = []string{"not-a-uuid"}

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, f.events.byID)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CategoryIDs = []string{missing1}

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.events.byID)
	})

	t.Run("unknown supporter rejects whole create", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.Supporters = []string{sup1ID, missing1}

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.events.byID)
		assert.Empty(t, f.supports.byEvent)
		assert.Empty(t, f.notifier.notified)
	})

	t.Run("unknown invite rejects whole create", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.Invites = []string{missing1}

		_, err := f.svc.Create(ctx, input, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.events.byID)
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *serviceFixture, supporters []string) *domain.Event {
		t.Helper()
		input := validCreateInput()
		input.Supporters = supporters
		event, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)
		f.notifier.notified = nil
		return event
	}

	t.Run("owner patches fields", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, nil)

		title := "Renamed Party"
		updated, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{Title: &title},
		}, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Party", updated.Title)
		assert.Equal(t, ownerID, updated.UpdatedBy)
		assert.Equal(t, ownerID, updated.CreatedBy)
	})

	t.Run("membership replaced in place, not duplicated", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, []string{sup1ID, sup2ID})
		first, err := f.supports.GetByEventID(ctx, event.ID)
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Supporters: []string{sup1ID},
		}, ownerActor)
		require.NoError(t, err)

		link, err := f.supports.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, link.ID)
		assert.Equal(t, []string{sup1ID}, link.UserIDs)
		assert.Len(t, f.supports.byEvent, 1)
		// Nobody new was added, so nobody is notified.
		assert.Empty(t, f.notifier.notified)
	})

	t.Run("only newly added supporters are notified", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, []string{sup1ID})

		_, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Supporters: []string{sup1ID, sup2ID},
		}, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, []string{sup2ID}, f.notifier.notified)
	})

	t.Run("omitted membership is left alone", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, []string{sup1ID, sup2ID})

		title := "Renamed Party"
		_, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{Title: &title},
		}, ownerActor)
		require.NoError(t, err)

		link, err := f.supports.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{sup1ID, sup2ID}, link.UserIDs)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, nil)

		title := "Hijacked"
		_, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{Title: &title},
		}, otherActor)
		require.ErrorIs(t, err, domain.ErrForbidden)

		got, err := f.svc.GetByID(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, "Launch Party", got.Title)
	})

	t.Run("admin may update any event", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, nil)

		title := "Admin Renamed"
		updated, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{Title: &title},
		}, adminActor)
		require.NoError(t, err)
		assert.Equal(t, "Admin Renamed", updated.Title)
		assert.Equal(t, adminID, updated.UpdatedBy)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Update(ctx, "not-a-uuid", &domain.UpdateEventInput{}, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing event", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Update(ctx, missing1, &domain.UpdateEventInput{}, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("reordered dates rejected when both carried", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, nil)

		start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		end := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		_, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{StartDate: &start, EndDate: &end},
		}, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("invalid category leaves event unchanged", func(t *testing.T) {
		f := newFixture()
		event := create(t, f, nil)

		title := "Should Not Apply"
		_, err := f.svc.Update(ctx, event.ID, &domain.UpdateEventInput{
			Patch: domain.EventPatch{Title: &title, CategoryIDs: []string{missing1}},
		}, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)

		got, err := f.svc.GetByID(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, "Launch Party", got.Title)
		assert.Equal(t, []string{cat1ID}, got.CategoryIDs)
	})
}

func TestEventService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels", func(t *testing.T) {
		f := newFixture()
		event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, cancelled.Status)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		f := newFixture()
		event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		calls := f.events.setStatusCalls

		again, err := f.svc.Cancel(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, again.Status)
		assert.Equal(t, calls, f.events.setStatusCalls)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, event.ID, otherActor)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin may cancel", func(t *testing.T) {
		f := newFixture()
		event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		cancelled, err := f.svc.Cancel(ctx, event.ID, adminActor)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, cancelled.Status)
	})
}

func TestEventService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels event and deactivates links", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.Supporters = []string{sup1ID}
		input.Invites = []string{invite1}
		event, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)

		require.NoError(t, f.svc.Delete(ctx, event.ID, ownerActor))

		got, err := f.svc.GetByID(ctx, event.ID, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, domain.EventStatusCancelled, got.Status)

		link, err := f.supports.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LinkStatusInactive, link.Status)

		invLink, err := f.invitesRep.GetByEventID(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LinkStatusInactive, invLink.Status)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newFixture()
		event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		require.ErrorIs(t, f.svc.Delete(ctx, event.ID, otherActor), domain.ErrForbidden)
	})
}

func TestEventService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	event, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		got, err := f.svc.GetByID(ctx, event.ID, otherActor)
		require.NoError(t, err)
		assert.Equal(t, event.ID, got.ID)
	})

	t.Run("nil actor", func(t *testing.T) {
		_, err := f.svc.GetByID(ctx, event.ID, nil)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.svc.GetByID(ctx, "nope", ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := f.svc.GetByID(ctx, missing1, ownerActor)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
