package service

import (
	"context"
	"errors"
	"strings"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/database"
	"anoa.com/unibot/pkg/validator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CallbackService interface {
	CreateCallback(ctx context.Context, userID model.ExternalID, phone string, comment *string) (*dto.CallbackRecord, error)
	ListCallbacks(ctx context.Context) ([]*dto.CallbackWithOwner, error)
	ListUserCallbacks(ctx context.Context, userID model.ExternalID) ([]*dto.CallbackRecord, error)
	UpdateCallbackStatus(ctx context.Context, id model.InternalID, status string) (*dto.CallbackRecord, error)
}

type callbackService struct {
	db        *gorm.DB
	callbacks repository.CallbackRepository
	users     repository.UserRepository
	events    EventPublisher
	log       *zap.Logger
}

func NewCallbackService(
	db *gorm.DB,
	callbacks repository.CallbackRepository,
	users repository.UserRepository,
	events EventPublisher,
	log *zap.Logger,
) CallbackService {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = NewEventPublisher(nil, log)
	}
	return &callbackService{
		db:        db,
		callbacks: callbacks,
		users:     users,
		events:    events,
		log:       log.Named("callbacks"),
	}
}

type createCallbackInput struct {
	UserID model.ExternalID
	Phone  string `validate:"required,max=32"`
}

// CreateCallback files a call-back request. Unknown users are registered on the fly.
func (s *callbackService) CreateCallback(ctx context.Context, userID model.ExternalID, phone string, comment *string) (*dto.CallbackRecord, error) {
	input := createCallbackInput{UserID: userID, Phone: strings.TrimSpace(phone)}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	callback := &model.CallbackRequest{
		UserID:  userID,
		Phone:   input.Phone,
		Comment: comment,
		Status:  model.CallbackWaiting,
	}

	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		user, created, err := provisionUser(ctx, s.users.WithTx(tx), &model.User{UserID: userID}, model.RoleUser)
		if err != nil {
			return err
		}
		if created {
			s.log.Info("user registered by callback", zap.Stringer("user_id", userID), zap.String("role", string(user.Role)))
		}
		return s.callbacks.WithTx(tx).Create(ctx, callback)
	})
	if err != nil {
		return nil, err
	}

	record := dto.NewCallbackRecord(callback)
	s.events.Publish(ctx, EventCallbackCreated, userID, record)
	return record, nil
}

func (s *callbackService) ListCallbacks(ctx context.Context) ([]*dto.CallbackWithOwner, error) {
	rows, err := s.callbacks.FindAllWithOwner(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewCallbacksWithOwner(rows), nil
}

func (s *callbackService) ListUserCallbacks(ctx context.Context, userID model.ExternalID) ([]*dto.CallbackRecord, error) {
	callbacks, err := s.callbacks.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewCallbackRecords(callbacks), nil
}

func (s *callbackService) UpdateCallbackStatus(ctx context.Context, id model.InternalID, status string) (*dto.CallbackRecord, error) {
	parsed, ok := model.ParseCallbackStatus(status)
	if !ok {
		return nil, apperror.ErrInvalidStatus
	}

	var callback *model.CallbackRequest
	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		callbacks := s.callbacks.WithTx(tx)

		var err error
		callback, err = callbacks.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrCallbackNotFound
			}
			return err
		}

		if err := callbacks.UpdateStatus(ctx, id, parsed); err != nil {
			return err
		}
		callback.Status = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	record := dto.NewCallbackRecord(callback)
	s.events.Publish(ctx, EventCallbackStatusChange, callback.UserID, record)
	return record, nil
}
