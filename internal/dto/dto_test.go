package dto

import (
	"encoding/json"
	"testing"
	"time"

	"anoa.com/unibot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestFormatTimeIsFixedUTC(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	ts := time.Date(2026, 9, 1, 12, 30, 15, 123456789, loc)

	assert.Equal(t, "2026-09-01T09:30:15.123456", FormatTime(ts))

	back, err := ParseTime(FormatTime(ts))
	require.NoError(t, err)
	assert.True(t, back.Equal(ts.Truncate(time.Microsecond)))
}

func TestRequestRecordRoundTrip(t *testing.T) {
	admin := model.ExternalID(1)
	processed := time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)
	rec := NewRequestRecord(&model.Request{
		ID:          7,
		UserID:      42,
		Type:        "справка",
		Text:        "need a transcript",
		Status:      model.RequestDone,
		Comment:     strPtr("approved"),
		ProcessedBy: &admin,
		ProcessedAt: &processed,
		CreatedAt:   processed.Add(-time.Hour),
	})

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded RequestRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *rec, decoded)
	assert.Equal(t, "2026-09-02T08:00:00.000000", *decoded.ProcessedAt)
}

func TestNilOptionalsSerializeAsNull(t *testing.T) {
	rec := NewRequestRecord(&model.Request{ID: 1, UserID: 5, Type: "вопрос", Text: "когда сессия?", Status: model.RequestNew})

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Nil(t, fields["comment"])
	assert.Nil(t, fields["processed_by"])
	assert.Nil(t, fields["processed_at"])
	assert.Contains(t, fields, "processed_at")
}

func TestNilRecordsAreNull(t *testing.T) {
	raw, err := json.Marshal(NewUserRecord(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestRequestsWithOwnerAreFlatAndUseFallbackName(t *testing.T) {
	rows := []*model.RequestWithOwner{
		{Request: model.Request{ID: 2, UserID: 42, Type: "справка", Status: model.RequestNew}, OwnerName: strPtr("Анна"), OwnerID: 42},
		{Request: model.Request{ID: 1, UserID: 43, Type: "вопрос", Status: model.RequestNew}, OwnerID: 43},
	}

	out := NewRequestsWithOwner(rows)
	require.Len(t, out, 2)
	assert.Equal(t, "Анна", out[0].UserName)
	assert.Equal(t, UnnamedOwner, out[1].UserName)

	raw, err := json.Marshal(out[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "справка", fields["type"])
	assert.Equal(t, "Анна", fields["user_name"])
	assert.EqualValues(t, 42, fields["owner_id"])
}

func TestEmptyListsSerializeAsArrays(t *testing.T) {
	raw, err := json.Marshal(NewCallbackRecords(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestBroadcastDetailIncludesAttachments(t *testing.T) {
	detail := NewBroadcastDetail(&model.DeanBroadcast{
		ID:      3,
		AdminID: 1,
		Text:    "Расписание обновлено",
		Attachments: []model.DeanAttachment{
			{ID: 9, BroadcastID: 3, Type: model.AttachmentFile, URL: "https://cdn.example.org/s.pdf", Filename: strPtr("s.pdf")},
		},
	})

	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, model.InternalID(3), detail.Attachments[0].BroadcastID)
	assert.Equal(t, "s.pdf", *detail.Attachments[0].Filename)
}
