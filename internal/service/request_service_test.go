package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, f *fixture, users map[model.ExternalID]*string) {
	t.Helper()
	for id, name := range users {
		_, err := f.users.EnsureUser(context.Background(), id, name)
		require.NoError(t, err)
	}
}

func TestCreateRequestUnknownUser(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.requests.CreateRequest(context.Background(), 42, "справка", "need a transcript")
	require.ErrorIs(t, err, apperror.ErrUnknownUser)
	assert.Equal(t, "user not found", apperror.Message(err))
	assert.Equal(t, int64(0), f.countRows(t, &model.Request{}))
	assert.Equal(t, int64(0), f.countRows(t, &model.User{}))
}

func TestCreateRequest(t *testing.T) {
	events := &recordingPublisher{}
	index := &fakeIndex{}
	f := newFixture(t, fixtureOptions{events: events, index: index})
	seedUsers(t, f, map[model.ExternalID]*string{42: strp("Anna")})

	rec, err := f.requests.CreateRequest(context.Background(), 42, "справка", "need a transcript")
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, model.ExternalID(42), rec.UserID)
	assert.Equal(t, "справка", rec.Type)
	assert.Equal(t, "need a transcript", rec.Text)
	assert.Equal(t, model.RequestNew, rec.Status)
	assert.Nil(t, rec.Comment)
	assert.Nil(t, rec.ProcessedBy)
	assert.Nil(t, rec.ProcessedAt)
	assert.Equal(t, int64(1), f.countRows(t, &model.Request{}))

	assert.Equal(t, []string{EventRequestCreated}, events.types())
	assert.Equal(t, model.RequestNew, index.indexed[rec.ID])
}

func TestCreateRequestValidates(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil})

	_, err := f.requests.CreateRequest(context.Background(), 1, "  ", "text")
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, "type is required", apperror.Message(err))
}

func TestUpdateRequestStatus(t *testing.T) {
	events := &recordingPublisher{}
	f := newFixture(t, fixtureOptions{events: events})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil})
	seedUsers(t, f, map[model.ExternalID]*string{42: nil})
	ctx := context.Background()

	created, err := f.requests.CreateRequest(ctx, 42, "справка", "need a transcript")
	require.NoError(t, err)

	updated, err := f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{
		ID:      created.ID,
		Status:  "done",
		Comment: strp("approved"),
		AdminID: extp(1),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, model.RequestDone, updated.Status)
	require.NotNil(t, updated.Comment)
	assert.Equal(t, "approved", *updated.Comment)
	require.NotNil(t, updated.ProcessedBy)
	assert.Equal(t, model.ExternalID(1), *updated.ProcessedBy)
	require.NotNil(t, updated.ProcessedAt)

	createdAt, err := dto.ParseTime(created.CreatedAt)
	require.NoError(t, err)
	processedAt, err := dto.ParseTime(*updated.ProcessedAt)
	require.NoError(t, err)
	assert.False(t, processedAt.Before(createdAt))

	stored, err := f.requests.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	assert.Equal(t, []string{EventRequestCreated, EventRequestStatusChanged}, events.types())
	assert.Equal(t, model.ExternalID(42), events.events[1].UserID)
}

func TestUpdateRequestStatusOptionalFields(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{42: nil})
	ctx := context.Background()

	created, err := f.requests.CreateRequest(ctx, 42, "перевод", "please")
	require.NoError(t, err)

	_, err = f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{
		ID: created.ID, Status: "in_progress", Comment: strp("looking"), AdminID: extp(7),
	})
	require.NoError(t, err)

	// No comment or admin: previous values stay, processed_at is still stamped.
	updated, err := f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{
		ID: created.ID, Status: "rejected",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, updated.Status)
	assert.Equal(t, "looking", *updated.Comment)
	assert.Equal(t, model.ExternalID(7), *updated.ProcessedBy)
	assert.NotNil(t, updated.ProcessedAt)
}

func TestUpdateRequestStatusWithoutAdminStampsTime(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{42: nil})
	ctx := context.Background()

	created, err := f.requests.CreateRequest(ctx, 42, "справка", "text")
	require.NoError(t, err)

	updated, err := f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{ID: created.ID, Status: "in_progress"})
	require.NoError(t, err)
	assert.NotNil(t, updated.ProcessedAt)
	assert.Nil(t, updated.ProcessedBy)
	assert.Nil(t, updated.Comment)
}

func TestUpdateRequestStatusInvalidStatus(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{42: nil})
	ctx := context.Background()

	created, err := f.requests.CreateRequest(ctx, 42, "справка", "text")
	require.NoError(t, err)

	_, err = f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{
		ID: created.ID, Status: "closed", Comment: strp("x"), AdminID: extp(1),
	})
	require.ErrorIs(t, err, apperror.ErrInvalidStatus)

	stored, err := f.requests.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestUpdateRequestStatusNotFound(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.requests.UpdateRequestStatus(context.Background(), UpdateRequestStatusInput{ID: 404, Status: "done"})
	require.ErrorIs(t, err, apperror.ErrRequestNotFound)
	assert.Equal(t, "not_found", apperror.Message(err))
}

func TestListRequestsEnrichedWithOwner(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{1: strp("Anna"), 2: nil})
	ctx := context.Background()

	first, err := f.requests.CreateRequest(ctx, 1, "справка", "a")
	require.NoError(t, err)
	second, err := f.requests.CreateRequest(ctx, 2, "перевод", "b")
	require.NoError(t, err)

	list, err := f.requests.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, dto.UnnamedOwner, list[0].UserName)
	assert.Equal(t, model.ExternalID(2), list[0].OwnerID)

	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "Anna", list[1].UserName)
	assert.Equal(t, model.ExternalID(1), list[1].OwnerID)
}

func TestListRequestsFilteredIsSubset(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil})
	ctx := context.Background()

	var ids []model.InternalID
	for i := 0; i < 4; i++ {
		rec, err := f.requests.CreateRequest(ctx, 1, "справка", "text")
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}
	for _, id := range []model.InternalID{ids[0], ids[2], ids[3]} {
		_, err := f.requests.UpdateRequestStatus(ctx, UpdateRequestStatusInput{ID: id, Status: "done"})
		require.NoError(t, err)
	}

	all, err := f.requests.ListRequests(ctx)
	require.NoError(t, err)
	done, err := f.requests.ListRequestsFiltered(ctx, "done")
	require.NoError(t, err)
	everything, err := f.requests.ListRequestsFiltered(ctx, "all")
	require.NoError(t, err)

	assert.Equal(t, all, everything)
	require.Len(t, done, 3)
	assert.Equal(t, []model.InternalID{ids[3], ids[2], ids[0]}, []model.InternalID{done[0].ID, done[1].ID, done[2].ID})

	allIDs := map[model.InternalID]bool{}
	for _, r := range all {
		allIDs[r.ID] = true
	}
	for _, r := range done {
		assert.Equal(t, model.RequestDone, r.Status)
		assert.True(t, allIDs[r.ID])
	}

	empty, err := f.requests.ListRequestsFiltered(ctx, "rejected")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListRequestsFilteredInvalidStatus(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	_, err := f.requests.ListRequestsFiltered(context.Background(), "archived")
	require.ErrorIs(t, err, apperror.ErrInvalidStatus)
}

func TestListUserRequests(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil, 2: nil})
	ctx := context.Background()

	a, err := f.requests.CreateRequest(ctx, 1, "справка", "a")
	require.NoError(t, err)
	_, err = f.requests.CreateRequest(ctx, 2, "справка", "b")
	require.NoError(t, err)
	c, err := f.requests.CreateRequest(ctx, 1, "справка", "c")
	require.NoError(t, err)

	mine, err := f.requests.ListUserRequests(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, c.ID, mine[0].ID)
	assert.Equal(t, a.ID, mine[1].ID)

	none, err := f.requests.ListUserRequests(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetRequestMissing(t *testing.T) {
	f := newFixture(t, fixtureOptions{})

	rec, err := f.requests.GetRequest(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSearchRequestsDatabaseFallback(t *testing.T) {
	f := newFixture(t, fixtureOptions{})
	seedUsers(t, f, map[model.ExternalID]*string{1: strp("Anna")})
	ctx := context.Background()

	_, err := f.requests.CreateRequest(ctx, 1, "справка", "Need a Transcript for the visa")
	require.NoError(t, err)
	_, err = f.requests.CreateRequest(ctx, 1, "перевод", "move me to another group")
	require.NoError(t, err)

	hits, err := f.requests.SearchRequests(ctx, "transcript")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Need a Transcript for the visa", hits[0].Text)
	assert.Equal(t, "Anna", hits[0].UserName)

	byType, err := f.requests.SearchRequests(ctx, "перевод")
	require.NoError(t, err)
	require.Len(t, byType, 1)

	_, err = f.requests.SearchRequests(ctx, "   ")
	require.Error(t, err)
	assert.Equal(t, "query is required", apperror.Message(err))
}

func TestSearchRequestsUsesIndexOrder(t *testing.T) {
	index := &fakeIndex{}
	f := newFixture(t, fixtureOptions{index: index})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil})
	ctx := context.Background()

	a, err := f.requests.CreateRequest(ctx, 1, "справка", "a")
	require.NoError(t, err)
	b, err := f.requests.CreateRequest(ctx, 1, "справка", "b")
	require.NoError(t, err)

	index.hits = []model.InternalID{a.ID, 999, b.ID}
	hits, err := f.requests.SearchRequests(ctx, "anything")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, a.ID, hits[0].ID)
	assert.Equal(t, b.ID, hits[1].ID)

	// Index failures fall back to the database.
	index.err = errors.New("meilisearch down")
	hits, err = f.requests.SearchRequests(ctx, "b")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, b.ID, hits[0].ID)
}

func TestCreateRequestRateLimited(t *testing.T) {
	mr, rdb := newRedis(t)
	f := newFixture(t, fixtureOptions{redis: rdb, rateLimit: 30 * time.Second})
	seedUsers(t, f, map[model.ExternalID]*string{1: nil})
	ctx := context.Background()

	_, err := f.requests.CreateRequest(ctx, 1, "справка", "first")
	require.NoError(t, err)

	_, err = f.requests.CreateRequest(ctx, 1, "справка", "second")
	require.ErrorIs(t, err, apperror.ErrRateLimitExceeded)
	assert.Equal(t, int64(1), f.countRows(t, &model.Request{}))

	mr.FastForward(31 * time.Second)
	_, err = f.requests.CreateRequest(ctx, 1, "справка", "third")
	require.NoError(t, err)
}

func TestCreateRequestUnknownUserClearsRateLimit(t *testing.T) {
	mr, rdb := newRedis(t)
	f := newFixture(t, fixtureOptions{redis: rdb, rateLimit: time.Minute})

	_, err := f.requests.CreateRequest(context.Background(), 5, "справка", "text")
	require.ErrorIs(t, err, apperror.ErrUnknownUser)
	assert.False(t, mr.Exists(rateLimitKey(5, actionCreateRequest)))
}
