package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"anoa.com/unibot/internal/app"
	"anoa.com/unibot/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	engine *gin.Engine
	app    *app.App
	log    *zap.Logger
}

func NewServer(a *app.App) *Server {
	if !a.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	dispatchHandler := handler.NewDispatchHandler(a.Router, a.Log)
	healthHandler := handler.NewHealthHandler(a.DB, a.Redis, a.Log)
	eventHandler := handler.NewEventHandler(a.Redis, a.Log)

	router := gin.New()

	setupCORS(router, a.Config.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(requestLogger(a.Log.Named("http")))

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.Health)
		api.POST("/dispatch/:command", dispatchHandler.Dispatch)
		api.GET("/events", eventHandler.HandleWebSocket)
	}

	return &Server{
		engine: router,
		app:    a,
		log:    a.Log,
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	var origins []string
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	// cors rejects "*" together with credentials.
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	router.Use(cors.New(cfg))
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
