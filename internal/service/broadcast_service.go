package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/database"
	"anoa.com/unibot/pkg/storage"
	"anoa.com/unibot/pkg/validator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BroadcastService interface {
	CreateBroadcast(ctx context.Context, adminID model.ExternalID, text string) (*dto.BroadcastRecord, error)
	AddBroadcastAttachment(ctx context.Context, input AddAttachmentInput) (*dto.AttachmentRecord, error)
	ListBroadcasts(ctx context.Context) ([]*dto.BroadcastRecord, error)
	// GetBroadcast returns nil when the broadcast does not exist.
	GetBroadcast(ctx context.Context, id model.InternalID) (*dto.BroadcastDetail, error)
}

type broadcastService struct {
	db           *gorm.DB
	broadcasts   repository.BroadcastRepository
	attachments  repository.AttachmentRepository
	users        repository.UserRepository
	mediaStorage storage.MediaStorage
	uploadFolder string
	uploadDir    string
	events       EventPublisher
	log          *zap.Logger
}

// NewBroadcastService wires the broadcast operations. mediaStorage may be nil, in which
// case attachment references are stored as given. Only files under uploadDir are ever
// uploaded; an empty uploadDir disables local files.
func NewBroadcastService(
	db *gorm.DB,
	broadcasts repository.BroadcastRepository,
	attachments repository.AttachmentRepository,
	users repository.UserRepository,
	mediaStorage storage.MediaStorage,
	uploadFolder string,
	uploadDir string,
	events EventPublisher,
	log *zap.Logger,
) BroadcastService {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = NewEventPublisher(nil, log)
	}
	return &broadcastService{
		db:           db,
		broadcasts:   broadcasts,
		attachments:  attachments,
		users:        users,
		mediaStorage: mediaStorage,
		uploadFolder: uploadFolder,
		uploadDir:    uploadDir,
		events:       events,
		log:          log.Named("broadcasts"),
	}
}

type createBroadcastInput struct {
	AdminID model.ExternalID
	Text    string `validate:"required"`
}

// CreateBroadcast stores an announcement. An unknown author is registered as admin.
func (s *broadcastService) CreateBroadcast(ctx context.Context, adminID model.ExternalID, text string) (*dto.BroadcastRecord, error) {
	input := createBroadcastInput{AdminID: adminID, Text: text}
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	broadcast := &model.DeanBroadcast{
		AdminID: adminID,
		Text:    input.Text,
	}

	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		user, created, err := provisionUser(ctx, s.users.WithTx(tx), &model.User{UserID: adminID}, model.RoleAdmin)
		if err != nil {
			return err
		}
		if created {
			s.log.Info("user registered by broadcast", zap.Stringer("user_id", adminID), zap.String("role", string(user.Role)))
		}
		return s.broadcasts.WithTx(tx).Create(ctx, broadcast)
	})
	if err != nil {
		return nil, err
	}

	record := dto.NewBroadcastRecord(broadcast)
	s.events.Publish(ctx, EventBroadcastCreated, adminID, record)
	return record, nil
}

type AddAttachmentInput struct {
	BroadcastID model.InternalID `validate:"required"`
	Kind        string           `validate:"required,max=50"`
	URL         string           `validate:"required"`
	Filename    *string          `validate:"omitempty,max=255"`
}

func (s *broadcastService) AddBroadcastAttachment(ctx context.Context, input AddAttachmentInput) (*dto.AttachmentRecord, error) {
	input.Kind = strings.TrimSpace(input.Kind)
	input.URL = strings.TrimSpace(input.URL)
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.broadcasts.FindByID(ctx, input.BroadcastID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrBroadcastNotFound
		}
		return nil, err
	}

	attachment := &model.DeanAttachment{
		BroadcastID: input.BroadcastID,
		Type:        input.Kind,
		URL:         s.rehost(ctx, input.URL, input.Filename),
		Filename:    input.Filename,
	}

	err := database.WithSession(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := s.broadcasts.WithTx(tx).FindByID(ctx, input.BroadcastID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrBroadcastNotFound
			}
			return err
		}
		return s.attachments.WithTx(tx).Create(ctx, attachment)
	})
	if err != nil {
		return nil, err
	}

	return dto.NewAttachmentRecord(attachment), nil
}

// rehost uploads ref when it names a file inside the upload directory and media storage is
// configured. Anything else, and any failure, keeps the original reference.
func (s *broadcastService) rehost(ctx context.Context, ref string, filename *string) string {
	if s.mediaStorage == nil {
		return ref
	}
	path, ok := storage.LocalPath(s.uploadDir, ref)
	if !ok {
		return ref
	}

	name := filepath.Base(path)
	if filename != nil && *filename != "" {
		name = *filename
	}

	file, err := os.Open(path)
	if err != nil {
		s.log.Warn("failed to open attachment", zap.String("path", path), zap.Error(err))
		return ref
	}
	defer file.Close()

	url, err := s.mediaStorage.UploadMedia(ctx, file, s.uploadFolder, name)
	if err != nil {
		s.log.Warn("failed to upload attachment", zap.String("path", path), zap.Error(err))
		return ref
	}
	return url
}

func (s *broadcastService) ListBroadcasts(ctx context.Context) ([]*dto.BroadcastRecord, error) {
	broadcasts, err := s.broadcasts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewBroadcastRecords(broadcasts), nil
}

func (s *broadcastService) GetBroadcast(ctx context.Context, id model.InternalID) (*dto.BroadcastDetail, error) {
	broadcast, err := s.broadcasts.FindWithAttachments(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dto.NewBroadcastDetail(broadcast), nil
}
