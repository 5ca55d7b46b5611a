package handler

import (
	"context"
	"net/http"
	"time"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

const (
	healthUp       = "up"
	healthDown     = "down"
	healthDisabled = "disabled"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *zap.Logger
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{db: db, redisClient: redisClient, log: log.Named("health")}
}

// Health reports 503 only when the database is unreachable. Redis is optional.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	res := dto.HealthResponse{Status: dto.StatusOK, Database: healthUp, Redis: healthDisabled}
	code := http.StatusOK

	if err := database.Ping(ctx, h.db); err != nil {
		h.log.Warn("database ping failed", zap.Error(err))
		res.Status = "degraded"
		res.Database = healthDown
		code = http.StatusServiceUnavailable
	}

	if h.redisClient != nil {
		res.Redis = healthUp
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			h.log.Warn("redis ping failed", zap.Error(err))
			res.Redis = healthDown
		}
	}

	c.JSON(code, res)
}
