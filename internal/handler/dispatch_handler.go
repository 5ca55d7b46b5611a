package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommandExecutor runs one command from the dispatch table.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args []string) (any, error)
}

type DispatchHandler struct {
	commands CommandExecutor
	log      *zap.Logger
}

func NewDispatchHandler(commands CommandExecutor, log *zap.Logger) *DispatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchHandler{commands: commands, log: log.Named("dispatch")}
}

// Dispatch runs :command with the positional args from the body. An empty body means no args.
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ResponseError(c, h.log, apperror.Validation("invalid request body"))
		return
	}

	out, err := h.commands.Execute(c.Request.Context(), c.Param("command"), req.Args)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	// PureJSON keeps '<' and '&' in user text as-is, matching the CLI output.
	c.PureJSON(http.StatusOK, out)
}
