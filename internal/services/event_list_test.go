package services

import (
	"context"
	"testing"

	"github.com/xuantoan98/event-ticketing-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      domain.SortSpec
	}{
		{"default", "", "", domain.SortSpec{Field: "created_at", Ascending: true}},
		{"unknown key falls back", "owner_id; DROP TABLE", "", domain.SortSpec{Field: "created_at", Ascending: true}},
		{"start date desc", "startDate", "desc", domain.SortSpec{Field: "start_date", Ascending: false}},
		{"title asc", "title", "asc", domain.SortSpec{Field: "title", Ascending: true}},
		{"unknown order is asc", "status", "sideways", domain.SortSpec{Field: "status", Ascending: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveSort(tt.sortBy, tt.sortOrder))
		})
	}
}

func TestEventService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("rows are enriched", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CategoryIDs = []string{cat1ID, cat2ID}
		input.Supporters = []string{sup1ID, sup2ID}
		input.Invites = []string{invite1}
		_, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)

		items, total, err := f.svc.List(ctx, domain.EventFilter{}, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, otherActor)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Len(t, items, 1)

		item := items[0]
		assert.ElementsMatch(t, []domain.MemberRef{
			{ID: sup1ID, Name: "Supporter One"},
			{ID: sup2ID, Name: "Supporter Two"},
		}, item.Supporters)
		assert.Equal(t, []string{invite1}, item.Invitees)
		assert.ElementsMatch(t, []domain.Category{
			{ID: cat1ID, Name: "Music"},
			{ID: cat2ID, Name: "Tech"},
		}, item.Categories)
		require.NotNil(t, item.Creator)
		assert.Equal(t, "Owner", item.Creator.Name)
	})

	t.Run("event without links gets empty slices", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		items, _, err := f.svc.List(ctx, domain.EventFilter{}, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, ownerActor)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.NotNil(t, items[0].Supporters)
		assert.Empty(t, items[0].Supporters)
		assert.NotNil(t, items[0].Invitees)
		assert.Empty(t, items[0].Invitees)
	})

	t.Run("nil actor", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.List(ctx, domain.EventFilter{}, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, nil)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestEventService_MyEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, validCreateInput(), ownerActor)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, validCreateInput(), otherActor)
	require.NoError(t, err)

	mine, err := f.svc.MyEvents(ctx, ownerActor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ownerID, mine[0].CreatedBy)

	_, err = f.svc.MyEvents(ctx, nil)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEventService_ListByCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newFixture()
		input := validCreateInput()
		input.CategoryIDs = []string{cat2ID}
		_, err := f.svc.Create(ctx, input, ownerActor)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, validCreateInput(), ownerActor)
		require.NoError(t, err)

		events, total, err := f.svc.ListByCategories(ctx, []string{cat2ID}, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, ownerActor)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
		assert.Equal(t, []string{cat2ID}, events[0].CategoryIDs)
	})

	t.Run("empty id list", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.ListByCategories(ctx, nil, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("any malformed id rejects the call", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.ListByCategories(ctx, []string{cat1ID, "junk"}, "", "", domain.PaginationParams{Page: 1, PageSize: 10}, ownerActor)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
