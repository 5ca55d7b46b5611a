package service

import (
	"context"
	"errors"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/database"
	"anoa.com/unibot/pkg/validator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	EnsureUser(ctx context.Context, userID model.ExternalID, name *string) (*dto.UserRecord, error)
	// GetUser returns nil when the user does not exist.
	GetUser(ctx context.Context, userID model.ExternalID) (*dto.UserRecord, error)
	ListUsers(ctx context.Context) ([]*dto.UserRecord, error)
	SetUserRole(ctx context.Context, userID model.ExternalID, role string) (*dto.RoleChangeResponse, error)
	SetUserGroup(ctx context.Context, userID model.ExternalID, group string) (*dto.GroupChangeResponse, error)
}

type userService struct {
	db    *gorm.DB
	users repository.UserRepository
	log   *zap.Logger
}

func NewUserService(db *gorm.DB, users repository.UserRepository, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		db:    db,
		users: users,
		log:   log.Named("users"),
	}
}

type ensureUserInput struct {
	UserID model.ExternalID
	Name   *string `validate:"omitempty,max=255"`
}

func (s *userService) EnsureUser(ctx context.Context, userID model.ExternalID, name *string) (*dto.UserRecord, error) {
	if err := validator.Struct(ensureUserInput{UserID: userID, Name: name}); err != nil {
		return nil, err
	}

	var user *model.User
	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		var created bool
		var err error
		user, created, err = provisionUser(ctx, s.users.WithTx(tx), &model.User{UserID: userID, Name: name}, model.RoleUser)
		if err != nil {
			return err
		}
		if created {
			s.log.Info("user registered", zap.Stringer("user_id", userID), zap.String("role", string(user.Role)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return dto.NewUserRecord(user), nil
}

func (s *userService) GetUser(ctx context.Context, userID model.ExternalID) (*dto.UserRecord, error) {
	user, err := s.users.FindByExternalID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.NewUserRecord(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*dto.UserRecord, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*dto.UserRecord, 0, len(users))
	for _, u := range users {
		records = append(records, dto.NewUserRecord(u))
	}
	return records, nil
}

func (s *userService) SetUserRole(ctx context.Context, userID model.ExternalID, role string) (*dto.RoleChangeResponse, error) {
	parsed, ok := model.ParseRole(role)
	if !ok {
		return nil, apperror.ErrInvalidRole
	}

	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		if _, err := users.FindByExternalID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrUserNotFound
			}
			return err
		}
		return users.UpdateRole(ctx, userID, parsed)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user role changed", zap.Stringer("user_id", userID), zap.String("role", string(parsed)))
	return &dto.RoleChangeResponse{Status: dto.StatusOK, Role: parsed}, nil
}

type setGroupInput struct {
	UserID model.ExternalID
	Group  string `validate:"required,max=100"`
}

func (s *userService) SetUserGroup(ctx context.Context, userID model.ExternalID, group string) (*dto.GroupChangeResponse, error) {
	if err := validator.Struct(setGroupInput{UserID: userID, Group: group}); err != nil {
		return nil, err
	}

	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		users := s.users.WithTx(tx)
		_, created, err := provisionUser(ctx, users, &model.User{UserID: userID, Group: &group}, model.RoleUser)
		if err != nil || created {
			return err
		}
		return users.UpdateGroup(ctx, userID, group)
	})
	if err != nil {
		return nil, err
	}

	return &dto.GroupChangeResponse{Status: dto.StatusOK, Group: group}, nil
}
