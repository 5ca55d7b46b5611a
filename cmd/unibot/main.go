package main

import (
	"context"
	"fmt"
	"os"

	"anoa.com/unibot/internal/app"
	"anoa.com/unibot/internal/config"
	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/router"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/logger"
	"go.uber.org/zap"
)

// unibot <command> [args...] prints exactly one JSON line on stdout and always exits 0.
func main() {
	var name string
	var args []string
	if len(os.Args) > 1 {
		name = os.Args[1]
		args = os.Args[2:]
	}

	if err := router.WriteJSON(os.Stdout, run(context.Background(), name, args)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write result: %v\n", err)
	}
}

func run(ctx context.Context, name string, args []string) any {
	cfg, err := config.Load()
	if err != nil {
		return dto.ErrorResponse{Error: err.Error()}
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Dev: cfg.IsDevelopment()})
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return dto.ErrorResponse{Error: apperror.Message(err)}
	}
	defer a.Close()

	return a.Router.Dispatch(ctx, name, args)
}
