package dto

import "anoa.com/unibot/internal/model"

type RequestRecord struct {
	ID          model.InternalID    `json:"id"`
	UserID      model.ExternalID    `json:"user_id"`
	Type        string              `json:"type"`
	Text        string              `json:"text"`
	Status      model.RequestStatus `json:"status"`
	Comment     *string             `json:"comment"`
	ProcessedBy *model.ExternalID   `json:"processed_by"`
	ProcessedAt *string             `json:"processed_at"`
	CreatedAt   string              `json:"created_at"`
}

func NewRequestRecord(r *model.Request) *RequestRecord {
	if r == nil {
		return nil
	}
	return &RequestRecord{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        r.Type,
		Text:        r.Text,
		Status:      r.Status,
		Comment:     r.Comment,
		ProcessedBy: r.ProcessedBy,
		ProcessedAt: formatOptionalTime(r.ProcessedAt),
		CreatedAt:   FormatTime(r.CreatedAt),
	}
}

func NewRequestRecords(rows []*model.Request) []*RequestRecord {
	out := make([]*RequestRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewRequestRecord(r))
	}
	return out
}

// RequestWithOwner is a request enriched with its owner's display name and external id.
type RequestWithOwner struct {
	RequestRecord
	UserName string           `json:"user_name"`
	OwnerID  model.ExternalID `json:"owner_id"`
}

func NewRequestsWithOwner(rows []*model.RequestWithOwner) []*RequestWithOwner {
	out := make([]*RequestWithOwner, 0, len(rows))
	for _, r := range rows {
		out = append(out, &RequestWithOwner{
			RequestRecord: *NewRequestRecord(&r.Request),
			UserName:      ownerName(r.OwnerName),
			OwnerID:       r.OwnerID,
		})
	}
	return out
}

type CallbackRecord struct {
	ID        model.InternalID     `json:"id"`
	UserID    model.ExternalID     `json:"user_id"`
	Phone     string               `json:"phone"`
	Comment   *string              `json:"comment"`
	Status    model.CallbackStatus `json:"status"`
	CreatedAt string               `json:"created_at"`
}

func NewCallbackRecord(c *model.CallbackRequest) *CallbackRecord {
	if c == nil {
		return nil
	}
	return &CallbackRecord{
		ID:        c.ID,
		UserID:    c.UserID,
		Phone:     c.Phone,
		Comment:   c.Comment,
		Status:    c.Status,
		CreatedAt: FormatTime(c.CreatedAt),
	}
}

func NewCallbackRecords(rows []*model.CallbackRequest) []*CallbackRecord {
	out := make([]*CallbackRecord, 0, len(rows))
	for _, c := range rows {
		out = append(out, NewCallbackRecord(c))
	}
	return out
}

type CallbackWithOwner struct {
	CallbackRecord
	UserName string           `json:"user_name"`
	OwnerID  model.ExternalID `json:"owner_id"`
}

func NewCallbacksWithOwner(rows []*model.CallbackWithOwner) []*CallbackWithOwner {
	out := make([]*CallbackWithOwner, 0, len(rows))
	for _, c := range rows {
		out = append(out, &CallbackWithOwner{
			CallbackRecord: *NewCallbackRecord(&c.CallbackRequest),
			UserName:       ownerName(c.OwnerName),
			OwnerID:        c.OwnerID,
		})
	}
	return out
}
