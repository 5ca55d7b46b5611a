package service

import (
	"encoding/json"
	"fmt"

	"anoa.com/unibot/internal/model"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const requestsIndex = "requests"

// RequestIndex keeps a full-text index of requests.
type RequestIndex interface {
	InitIndex() error
	IndexRequest(request *model.Request) error
	// Search returns matching request ids, best match first.
	Search(query string, limit int) ([]model.InternalID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
	log    *zap.Logger
}

func NewMeiliSearchService(client meilisearch.ServiceManager, log *zap.Logger) RequestIndex {
	if log == nil {
		log = zap.NewNop()
	}
	return &meiliSearchService{
		client: client,
		log:    log.Named("meilisearch"),
	}
}

func (s *meiliSearchService) InitIndex() error {
	filterableAttrs := []string{"status", "user_id"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(requestsIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		return fmt.Errorf("failed to update requests filterable attributes: %w", err)
	}

	sortableAttrs := []string{"created_at", "id"}
	if _, err := s.client.Index(requestsIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		return fmt.Errorf("failed to update requests sortable attributes: %w", err)
	}

	s.log.Info("meilisearch index initialized", zap.String("index", requestsIndex))
	return nil
}

type meiliRequestDoc struct {
	ID        model.InternalID    `json:"id"`
	UserID    model.ExternalID    `json:"user_id"`
	Type      string              `json:"type"`
	Text      string              `json:"text"`
	Status    model.RequestStatus `json:"status"`
	Comment   string              `json:"comment"`
	CreatedAt int64               `json:"created_at"`
}

func (s *meiliSearchService) IndexRequest(request *model.Request) error {
	doc := meiliRequestDoc{
		ID:        request.ID,
		UserID:    request.UserID,
		Type:      indexText(request.Type),
		Text:      indexText(request.Text),
		Status:    request.Status,
		CreatedAt: request.CreatedAt.Unix(),
	}
	if request.Comment != nil {
		doc.Comment = indexText(*request.Comment)
	}

	task, err := s.client.Index(requestsIndex).AddDocuments([]meiliRequestDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed request", zap.Stringer("id", request.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) Search(query string, limit int) ([]model.InternalID, error) {
	raw, err := s.client.Index(requestsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Hits []struct {
			ID model.InternalID `json:"id"`
		} `json:"hits"`
	}
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
	}

	ids := make([]model.InternalID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
