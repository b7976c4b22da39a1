package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/middleware"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to its HTTP status.  Server-side failures are masked.
func writeAppError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.Internal("internal server error")
	}
	status := appErr.HTTPStatus()

	resp := ErrorResponse{
		Code:      appErr.Code.String(),
		Message:   appErr.Message,
		Detail:    appErr.Detail,
		RequestID: middleware.GetRequestID(c),
	}
	if status >= http.StatusInternalServerError {
		resp.Message = errors.DefaultMessageForCode(appErr.Code)
		resp.Detail = ""
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
