package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/keyip-citation-network/internal/application/citation"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

const defaultQueryDepth = 1

// CitationHandler serves citation networks.
type CitationHandler struct {
	service citation.Service
	logger  logging.Logger
}

func NewCitationHandler(service citation.Service, logger logging.Logger) *CitationHandler {
	return &CitationHandler{service: service, logger: logger.Named("citation_handler")}
}

// GetCitationNetwork handles
// GET /api/v1/patents/:patentId/citation-network?backward_depth=&forward_depth=.
// Absent depths default to 1.  Non-integer depths are rejected; integers out
// of range are clamped by the service.
func (h *CitationHandler) GetCitationNetwork(c *gin.Context) {
	patentID := strings.TrimSpace(c.Param("patentId"))
	if patentID == "" {
		writeAppError(c, errors.New(errors.ErrCodePatentNumberInvalid, "patent id is required"))
		return
	}

	backward, err := depthParam(c, "backward_depth")
	if err != nil {
		writeAppError(c, err)
		return
	}
	forward, err := depthParam(c, "forward_depth")
	if err != nil {
		writeAppError(c, err)
		return
	}

	network := h.service.FetchCitationNetwork(c.Request.Context(), patentID, backward, forward)
	c.JSON(http.StatusOK, network)
}

func depthParam(c *gin.Context, name string) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultQueryDepth, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New(errors.ErrCodeCitationDepthInvalid, name+" must be an integer").WithDetail(name + "=" + raw)
	}
	return n, nil
}

//Personal.AI order the ending
