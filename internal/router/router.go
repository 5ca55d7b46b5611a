package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/service"
	"anoa.com/unibot/pkg/apperror"
	"go.uber.org/zap"
)

// Handler runs one command. The returned value is encoded as the command result.
type Handler func(ctx context.Context, args *Args) (any, error)

// Services are the operations reachable through the command table.
type Services struct {
	Users      service.UserService
	Requests   service.RequestService
	Callbacks  service.CallbackService
	Broadcasts service.BroadcastService
	// InitSchema prepares the store. It backs the init_db command.
	InitSchema func(ctx context.Context) error
}

type Router struct {
	commands map[string]Handler
	log      *zap.Logger
}

func New(svc Services, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		commands: commandTable(svc),
		log:      log.Named("router"),
	}
}

// Commands lists the command names in lexical order.
func (r *Router) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs command name with args and always returns exactly one JSON-encodable value.
// Failures of any kind, panics included, come back as dto.ErrorResponse.
func (r *Router) Dispatch(ctx context.Context, name string, args []string) any {
	out, err := r.Execute(ctx, name, args)
	if err != nil {
		return errorResult(err)
	}
	return out
}

// Execute runs command name with args. A panic inside the command is returned as an error.
func (r *Router) Execute(ctx context.Context, name string, args []string) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("command panicked", zap.String("command", name), zap.Any("panic", rec), zap.Stack("stack"))
			out, err = nil, fmt.Errorf("%v", rec)
		}
	}()

	handler, ok := r.commands[name]
	if !ok {
		return nil, apperror.UnknownCommand(name)
	}

	out, err = handler(ctx, NewArgs(args))
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInfrastructure {
			r.log.Error("command failed", zap.String("command", name), zap.Error(err))
		} else {
			r.log.Debug("command rejected", zap.String("command", name), zap.Error(err))
		}
		return nil, err
	}
	return out, nil
}

func errorResult(err error) dto.ErrorResponse {
	return dto.ErrorResponse{Error: apperror.Message(err)}
}

// WriteJSON writes v as a single line of UTF-8 JSON. HTML characters are not escaped.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
