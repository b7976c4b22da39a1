package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/keyip-citation-network/pkg/errors"
)

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"patent not found", errors.CodePatentNotFound, "patent US10006624B2 not found"},
		{"invalid depth", errors.ErrCodeCitationDepthInvalid, "backward_depth must be an integer"},
		{"source down", errors.ErrCodeDataSourceUnavailable, "citation source unavailable"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ae := errors.New(tc.code, tc.message)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.ErrCodeCitationFetchFailed, "backward citations")
	assert.Equal(t, "[CIT_003] backward citations", ae.Error())

	withDetail := ae.WithDetail("patent=US1")
	assert.Equal(t, "[CIT_003] backward citations: patent=US1", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")

	wrapped := errors.Wrap(fmt.Errorf("dial tcp: refused"), errors.ErrCodeDataSourceUnavailable, "neo4j")
	assert.Equal(t, "[SRC_001] neo4j: dial tcp: refused", wrapped.Error())
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "nothing"))
}

func TestWrap_UnknownKeepsOriginalCode(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDataSourceRateLimited, "slow down")
	outer := errors.Wrap(inner, errors.CodeUnknown, "forward citations")
	assert.Equal(t, errors.ErrCodeDataSourceRateLimited, outer.Code)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestIsCode_WalksChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDataSourceUnavailable, "breaker open")
	mid := errors.Wrap(inner, errors.ErrCodeCitationFetchFailed, "backward")
	outer := fmt.Errorf("expand: %w", mid)

	assert.True(t, errors.IsCode(outer, errors.ErrCodeCitationFetchFailed))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeDataSourceUnavailable))
	assert.False(t, errors.IsCode(outer, errors.CodeInternal))
	assert.False(t, errors.IsCode(nil, errors.CodeInternal))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.New(errors.CodeNotFound, "x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.CodePatentNotFound, "x")))
	assert.True(t, errors.IsNotFound(fmt.Errorf("ctx: %w", errors.New(errors.CodeNotFound, "x"))))
	assert.False(t, errors.IsNotFound(errors.Internal("boom")))
	assert.False(t, errors.IsNotFound(stderrors.New("plain")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(errors.InvalidParam("bad")))
}

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatusForCode(errors.ErrCodeCitationDepthInvalid))
	assert.Equal(t, http.StatusServiceUnavailable, errors.HTTPStatusForCode(errors.ErrCodeDataSourceUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, errors.Unavailable("x").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatusForCode("NOPE_999"))
	assert.True(t, errors.IsClientError(errors.ErrCodeCitationDepthInvalid))
	assert.True(t, errors.IsServerError(errors.ErrCodeDataSourceUnavailable))
	assert.Equal(t, "CIT", errors.ModuleForCode(errors.ErrCodeCitationRecordBad))
	assert.Equal(t, "unknown error", errors.DefaultMessageForCode("NOPE_999"))
}

//Personal.AI order the ending
