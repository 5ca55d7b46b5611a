package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anoa.com/unibot/internal/bootstrap"
	"anoa.com/unibot/internal/config"
	"anoa.com/unibot/internal/repository"
	"anoa.com/unibot/internal/router"
	"anoa.com/unibot/internal/service"
	"anoa.com/unibot/pkg/database"
	"anoa.com/unibot/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const redisPingTimeout = 2 * time.Second

// App holds the wired services shared by the CLI and the HTTP server.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	Index  service.RequestIndex
	Router *router.Router
}

// New connects to the store and wires every service. Redis, Meilisearch and Cloudinary are
// optional; when one is unconfigured or unreachable the features built on it are disabled.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		DB:     db,
		Redis:  newRedisClient(ctx, cfg.RedisURL, log),
	}

	if cfg.MeiliSearchHost != "" {
		a.Index = service.NewMeiliSearchService(newMeiliClient(cfg.MeiliSearchHost, cfg.MeiliMasterKey), log)
	}

	var mediaStorage storage.MediaStorage
	if cfg.CloudinaryURL != "" {
		mediaStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			log.Warn("cloudinary disabled", zap.Error(err))
			mediaStorage = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	callbackRepo := repository.NewCallbackRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	events := service.NewEventPublisher(a.Redis, log)

	a.Router = router.New(router.Services{
		Users:      service.NewUserService(db, userRepo, log),
		Requests:   service.NewRequestService(db, requestRepo, userRepo, a.Redis, a.Index, events, cfg.RateLimitRequest, log),
		Callbacks:  service.NewCallbackService(db, callbackRepo, userRepo, events, log),
		Broadcasts: service.NewBroadcastService(db, broadcastRepo, attachmentRepo, userRepo, mediaStorage, cfg.CloudinaryUploadFolder, cfg.UploadDir, events, log),
		InitSchema: a.InitializeSchema,
	}, log)

	return a, nil
}

// InitializeSchema creates missing tables and applies search index settings.
func (a *App) InitializeSchema(ctx context.Context) error {
	if err := bootstrap.InitializeSchema(a.DB.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if a.Index != nil {
		if err := a.Index.InitIndex(); err != nil {
			a.Log.Warn("search index settings not applied", zap.Error(err))
		}
	}
	return nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.Log.Warn("failed to close database", zap.Error(err))
	}
}

func newRedisClient(ctx context.Context, url string, log *zap.Logger) *redis.Client {
	if url == "" {
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("redis disabled: invalid REDIS_URL", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis disabled: ping failed", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

func newMeiliClient(host, apiKey string) meilisearch.ServiceManager {
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	return meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
}
