package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

// Recovery turns a handler panic into a logged 500 with an AppError body.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	log := logger.Named("http")
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", GetRequestID(c)),
			logging.String("panic", fmt.Sprint(recovered)))

		appErr := errors.Internal("internal server error")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":       appErr.Code,
			"message":    appErr.Message,
			"request_id": GetRequestID(c),
		})
	})
}

//Personal.AI order the ending
