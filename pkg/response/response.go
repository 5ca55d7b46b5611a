package response

import (
	"net/http"

	"anoa.com/unibot/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the only error shape callers ever receive.
type ErrorBody struct {
	Error string `json:"error"`
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, log *zap.Logger, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError && log != nil {
		log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(code, ErrorBody{Error: apperror.Message(err)})
}
