package dto

import "anoa.com/unibot/internal/model"

type BroadcastRecord struct {
	ID        model.InternalID `json:"id"`
	AdminID   model.ExternalID `json:"admin_id"`
	Text      string           `json:"text"`
	CreatedAt string           `json:"created_at"`
}

func NewBroadcastRecord(b *model.DeanBroadcast) *BroadcastRecord {
	if b == nil {
		return nil
	}
	return &BroadcastRecord{
		ID:        b.ID,
		AdminID:   b.AdminID,
		Text:      b.Text,
		CreatedAt: FormatTime(b.CreatedAt),
	}
}

func NewBroadcastRecords(rows []*model.DeanBroadcast) []*BroadcastRecord {
	out := make([]*BroadcastRecord, 0, len(rows))
	for _, b := range rows {
		out = append(out, NewBroadcastRecord(b))
	}
	return out
}

// BroadcastDetail is a broadcast together with its attachments.
type BroadcastDetail struct {
	BroadcastRecord
	Attachments []*AttachmentRecord `json:"attachments"`
}

func NewBroadcastDetail(b *model.DeanBroadcast) *BroadcastDetail {
	if b == nil {
		return nil
	}
	attachments := make([]*AttachmentRecord, 0, len(b.Attachments))
	for i := range b.Attachments {
		attachments = append(attachments, NewAttachmentRecord(&b.Attachments[i]))
	}
	return &BroadcastDetail{
		BroadcastRecord: *NewBroadcastRecord(b),
		Attachments:     attachments,
	}
}

type AttachmentRecord struct {
	ID          model.InternalID `json:"id"`
	BroadcastID model.InternalID `json:"broadcast_id"`
	Type        string           `json:"type"`
	URL         string           `json:"url"`
	Filename    *string          `json:"filename"`
	CreatedAt   string           `json:"created_at"`
}

func NewAttachmentRecord(a *model.DeanAttachment) *AttachmentRecord {
	if a == nil {
		return nil
	}
	return &AttachmentRecord{
		ID:          a.ID,
		BroadcastID: a.BroadcastID,
		Type:        a.Type,
		URL:         a.URL,
		Filename:    a.Filename,
		CreatedAt:   FormatTime(a.CreatedAt),
	}
}
