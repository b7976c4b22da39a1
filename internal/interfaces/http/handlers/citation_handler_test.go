package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-citation-network/internal/application/citation"
	domainCitation "github.com/turtacn/keyip-citation-network/internal/domain/citation"
	"github.com/turtacn/keyip-citation-network/internal/interfaces/http/middleware"
	"github.com/turtacn/keyip-citation-network/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newCitationRouter(source *testutil.StaticCitationSource) *gin.Engine {
	svc := citation.NewService(source, testutil.NewMockLogger())
	h := NewCitationHandler(svc, testutil.NewMockLogger())
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/api/v1/patents/:patentId/citation-network", h.GetCitationNetwork)
	return r
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestGetCitationNetwork_DefaultDepths(t *testing.T) {
	source := testutil.NewStaticCitationSource().
		SetBackward("US10006624B2", testutil.BackwardRecords("US10006624B2", "B", 2)).
		SetForward("US10006624B2", testutil.ForwardRecords("US10006624B2", "F", 1))
	r := newCitationRouter(source)

	w := get(r, "/api/v1/patents/US10006624B2/citation-network")
	require.Equal(t, http.StatusOK, w.Code)

	var network domainCitation.CitationNetwork
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &network))
	assert.Equal(t, "US10006624B2", network.PatentID)
	assert.Equal(t, 1, network.BackwardDepth)
	assert.Equal(t, 1, network.ForwardDepth)
	assert.Len(t, network.Nodes, 4)
	assert.Len(t, network.Edges, 3)
	assert.False(t, network.HasNoForwardCitations)
}

func TestGetCitationNetwork_DepthZeroAndClamp(t *testing.T) {
	source := testutil.NewStaticCitationSource().
		SetBackward("US1", testutil.BackwardRecords("US1", "B", 2)).
		SetForward("US1", testutil.ForwardRecords("US1", "F", 3))
	r := newCitationRouter(source)

	w := get(r, "/api/v1/patents/US1/citation-network?backward_depth=0&forward_depth=7")
	require.Equal(t, http.StatusOK, w.Code)

	var network domainCitation.CitationNetwork
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &network))
	assert.Equal(t, 0, network.BackwardDepth)
	assert.Equal(t, 1, network.ForwardDepth)
	assert.Len(t, network.Nodes, 4)
	assert.Equal(t, int64(0), source.BackwardCalls)
}

func TestGetCitationNetwork_InvalidDepth(t *testing.T) {
	r := newCitationRouter(testutil.NewStaticCitationSource())

	for _, q := range []string{"backward_depth=one", "forward_depth=1.5"} {
		w := get(r, "/api/v1/patents/US1/citation-network?"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "CIT_001", body.Code)
		assert.NotEmpty(t, body.RequestID)
	}
}

func TestGetCitationNetwork_BlankID(t *testing.T) {
	r := newCitationRouter(testutil.NewStaticCitationSource())
	w := get(r, "/api/v1/patents/%20/citation-network")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWriteAppError_MasksServerErrors(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		writeAppError(c, assert.AnError)
	})
	w := get(r, "/x")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COMMON_001", body.Code)
	assert.Equal(t, "internal server error", body.Message)
}

//Personal.AI order the ending
