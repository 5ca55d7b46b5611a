package repository

import (
	"context"
	"testing"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateIfAbsent(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()

	name := "Anna"
	created, err := users.CreateIfAbsent(ctx, &model.User{UserID: 42, Name: &name, Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = users.CreateIfAbsent(ctx, &model.User{UserID: 42})
	require.NoError(t, err)
	assert.False(t, created)

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	u, err := users.FindByExternalID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, "Anna", *u.Name)

	require.NoError(t, users.LockForProvisioning(ctx))
}

func TestRequestsWithOwnerFallbacks(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	requests := NewRequestRepository(db)
	ctx := context.Background()

	name := "Anna"
	_, err := users.CreateIfAbsent(ctx, &model.User{UserID: 1, Name: &name})
	require.NoError(t, err)

	owned := &model.Request{UserID: 1, Type: "справка", Text: "a"}
	require.NoError(t, requests.Create(ctx, owned))
	// Rows written before users were enforced may reference nobody.
	orphan := &model.Request{UserID: 77, Type: "справка", Text: "b"}
	require.NoError(t, requests.Create(ctx, orphan))

	rows, err := requests.FindAllWithOwner(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, orphan.ID, rows[0].ID)
	assert.Nil(t, rows[0].OwnerName)
	assert.Equal(t, model.ExternalID(77), rows[0].OwnerID)
	assert.Equal(t, model.RequestNew, rows[0].Status)

	assert.Equal(t, owned.ID, rows[1].ID)
	require.NotNil(t, rows[1].OwnerName)
	assert.Equal(t, "Anna", *rows[1].OwnerName)
	assert.Equal(t, model.ExternalID(1), rows[1].OwnerID)
	assert.Equal(t, "a", rows[1].Text)
}

func TestFindWithOwnerByIDsKeepsOrder(t *testing.T) {
	db := testutil.NewDB(t)
	requests := NewRequestRepository(db)
	ctx := context.Background()

	var ids []model.InternalID
	for _, text := range []string{"a", "b", "c"} {
		r := &model.Request{UserID: 1, Type: "t", Text: text}
		require.NoError(t, requests.Create(ctx, r))
		ids = append(ids, r.ID)
	}

	rows, err := requests.FindWithOwnerByIDs(ctx, []model.InternalID{ids[2], ids[0], 999})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "c", rows[0].Text)
	assert.Equal(t, "a", rows[1].Text)

	rows, err = requests.FindWithOwnerByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestBroadcastAttachments(t *testing.T) {
	db := testutil.NewDB(t)
	broadcasts := NewBroadcastRepository(db)
	attachments := NewAttachmentRepository(db)
	ctx := context.Background()

	b := &model.DeanBroadcast{AdminID: 1, Text: "hello"}
	require.NoError(t, broadcasts.Create(ctx, b))
	require.NoError(t, attachments.Create(ctx, &model.DeanAttachment{BroadcastID: b.ID, Type: "image", URL: "x"}))

	found, err := attachments.FindByBroadcastID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)

	loaded, err := broadcasts.FindWithAttachments(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attachments, 1)
	assert.Equal(t, "x", loaded.Attachments[0].URL)
}

func TestCallbackUpdateStatus(t *testing.T) {
	db := testutil.NewDB(t)
	callbacks := NewCallbackRepository(db)
	ctx := context.Background()

	c := &model.CallbackRequest{UserID: 3, Phone: "123"}
	require.NoError(t, callbacks.Create(ctx, c))
	assert.Equal(t, model.CallbackWaiting, c.Status)

	require.NoError(t, callbacks.UpdateStatus(ctx, c.ID, model.CallbackProcessing))
	got, err := callbacks.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallbackProcessing, got.Status)

	rows, err := callbacks.FindAllWithOwner(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].OwnerName)
	assert.Equal(t, model.ExternalID(3), rows[0].OwnerID)
}

func TestSearchWithOwnerMatchesWildcardsLiterally(t *testing.T) {
	db := testutil.NewDB(t)
	requests := NewRequestRepository(db)
	ctx := context.Background()

	for _, text := range []string{"скидка 100% за общежитие", "скидка 1000 рублей", "file a_b.pdf", "file axb.pdf", `path c:\docs`} {
		require.NoError(t, requests.Create(ctx, &model.Request{UserID: 1, Type: "справка", Text: text, Status: model.RequestNew}))
	}

	texts := func(query string) []string {
		rows, err := requests.SearchWithOwner(ctx, query, 50)
		require.NoError(t, err)
		out := make([]string, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.Text)
		}
		return out
	}

	assert.Equal(t, []string{"скидка 100% за общежитие"}, texts("100%"))
	assert.Equal(t, []string{"file a_b.pdf"}, texts("a_b"))
	assert.Equal(t, []string{`path c:\docs`}, texts(`c:\docs`))
	assert.Len(t, texts("скидка 100"), 2)
}
