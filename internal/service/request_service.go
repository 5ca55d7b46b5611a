package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/database"
	"anoa.com/unibot/pkg/validator"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StatusFilterAll lists requests of every status.
const StatusFilterAll = "all"

const searchLimit = 50

type RequestService interface {
	CreateRequest(ctx context.Context, userID model.ExternalID, requestType, text string) (*dto.RequestRecord, error)
	ListRequests(ctx context.Context) ([]*dto.RequestWithOwner, error)
	ListRequestsFiltered(ctx context.Context, status string) ([]*dto.RequestWithOwner, error)
	ListUserRequests(ctx context.Context, userID model.ExternalID) ([]*dto.RequestRecord, error)
	// GetRequest returns nil when the request does not exist.
	GetRequest(ctx context.Context, id model.InternalID) (*dto.RequestRecord, error)
	UpdateRequestStatus(ctx context.Context, input UpdateRequestStatusInput) (*dto.RequestRecord, error)
	SearchRequests(ctx context.Context, query string) ([]*dto.RequestWithOwner, error)
}

type requestService struct {
	db          *gorm.DB
	requests    repository.RequestRepository
	users       repository.UserRepository
	redisClient *redis.Client
	index       RequestIndex
	events      EventPublisher
	rateLimit   time.Duration
	log         *zap.Logger
}

// NewRequestService wires the request operations. redisClient and index may be nil.
func NewRequestService(
	db *gorm.DB,
	requests repository.RequestRepository,
	users repository.UserRepository,
	redisClient *redis.Client,
	index RequestIndex,
	events EventPublisher,
	rateLimit time.Duration,
	log *zap.Logger,
) RequestService {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = NewEventPublisher(nil, log)
	}
	return &requestService{
		db:          db,
		requests:    requests,
		users:       users,
		redisClient: redisClient,
		index:       index,
		events:      events,
		rateLimit:   rateLimit,
		log:         log.Named("requests"),
	}
}

type createRequestInput struct {
	UserID model.ExternalID
	Type   string `validate:"required,max=100"`
	Text   string `validate:"required"`
}

func (s *requestService) CreateRequest(ctx context.Context, userID model.ExternalID, requestType, text string) (*dto.RequestRecord, error) {
	input := createRequestInput{UserID: userID, Type: strings.TrimSpace(requestType), Text: text}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, actionCreateRequest, s.rateLimit)
	if err != nil {
		// Redis trouble must not stop tickets from being filed.
		s.log.Warn("rate limit check failed", zap.Error(err))
		allowed = true
	}
	if !allowed {
		ttl, _ := GetRateLimitTTL(ctx, s.redisClient, userID, actionCreateRequest)
		s.log.Info("request rate limited", zap.Stringer("user_id", userID), zap.Duration("retry_in", ttl))
		return nil, apperror.ErrRateLimitExceeded
	}

	request := &model.Request{
		UserID: userID,
		Type:   input.Type,
		Text:   input.Text,
		Status: model.RequestNew,
	}

	err = database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.users.WithTx(tx).FindByExternalID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrUnknownUser
			}
			return err
		}
		return s.requests.WithTx(tx).Create(ctx, request)
	})
	if err != nil {
		// A rejected attempt must not count against the user.
		if clearErr := ClearRateLimit(ctx, s.redisClient, userID, actionCreateRequest); clearErr != nil {
			s.log.Warn("failed to clear rate limit", zap.Error(clearErr))
		}
		return nil, err
	}

	record := dto.NewRequestRecord(request)
	s.indexRequest(request)
	s.events.Publish(ctx, EventRequestCreated, userID, record)

	return record, nil
}

func (s *requestService) ListRequests(ctx context.Context) ([]*dto.RequestWithOwner, error) {
	rows, err := s.requests.FindAllWithOwner(ctx, "")
	if err != nil {
		return nil, err
	}
	return dto.NewRequestsWithOwner(rows), nil
}

func (s *requestService) ListRequestsFiltered(ctx context.Context, status string) ([]*dto.RequestWithOwner, error) {
	if strings.TrimSpace(status) == StatusFilterAll {
		return s.ListRequests(ctx)
	}

	parsed, ok := model.ParseRequestStatus(status)
	if !ok {
		return nil, apperror.ErrInvalidStatus
	}

	rows, err := s.requests.FindAllWithOwner(ctx, parsed)
	if err != nil {
		return nil, err
	}
	return dto.NewRequestsWithOwner(rows), nil
}

func (s *requestService) ListUserRequests(ctx context.Context, userID model.ExternalID) ([]*dto.RequestRecord, error) {
	requests, err := s.requests.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewRequestRecords(requests), nil
}

func (s *requestService) GetRequest(ctx context.Context, id model.InternalID) (*dto.RequestRecord, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.NewRequestRecord(request), nil
}

// UpdateRequestStatusInput moves a request to Status. Comment and AdminID are applied
// only when set.
type UpdateRequestStatusInput struct {
	ID      model.InternalID
	Status  string
	Comment *string
	AdminID *model.ExternalID
}

func (s *requestService) UpdateRequestStatus(ctx context.Context, input UpdateRequestStatusInput) (*dto.RequestRecord, error) {
	status, ok := model.ParseRequestStatus(input.Status)
	if !ok {
		return nil, apperror.ErrInvalidStatus
	}

	var request *model.Request
	var previous model.RequestStatus
	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		requests := s.requests.WithTx(tx)

		var err error
		request, err = requests.FindByIDForUpdate(ctx, input.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrRequestNotFound
			}
			return err
		}

		previous = request.Status
		now := time.Now().UTC()
		request.Status = status
		request.ProcessedAt = &now
		if input.Comment != nil {
			request.Comment = input.Comment
		}
		if input.AdminID != nil {
			request.ProcessedBy = input.AdminID
		}

		return requests.Save(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("request status changed",
		zap.Stringer("id", request.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))

	record := dto.NewRequestRecord(request)
	s.indexRequest(request)
	s.events.Publish(ctx, EventRequestStatusChanged, request.UserID, record)

	return record, nil
}

type searchInput struct {
	Query string `validate:"required,max=200"`
}

func (s *requestService) SearchRequests(ctx context.Context, query string) ([]*dto.RequestWithOwner, error) {
	input := searchInput{Query: strings.TrimSpace(query)}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	if s.index != nil {
		ids, err := s.index.Search(input.Query, searchLimit)
		if err == nil {
			rows, err := s.requests.FindWithOwnerByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return dto.NewRequestsWithOwner(rows), nil
		}
		s.log.Warn("search index unavailable, falling back to database", zap.Error(err))
	}

	rows, err := s.requests.SearchWithOwner(ctx, input.Query, searchLimit)
	if err != nil {
		return nil, err
	}
	return dto.NewRequestsWithOwner(rows), nil
}

func (s *requestService) indexRequest(request *model.Request) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexRequest(request); err != nil {
		s.log.Warn("failed to index request", zap.Stringer("id", request.ID), zap.Error(err))
	}
}
