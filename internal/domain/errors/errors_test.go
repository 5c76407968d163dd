package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Constructors(t *testing.T) {
	err := NewAppError(http.StatusBadRequest, CodeBadRequest, "bad", ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, CodeBadRequest, err.Code)
	assert.Equal(t, "bad", err.Message)
	assert.Equal(t, ErrBadRequest.Error(), err.Error())

	notFound := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, CodeNotFound, notFound.Code)

	conflict := Conflict("exists")
	assert.Equal(t, http.StatusConflict, conflict.Status)
	assert.Equal(t, CodeConflict, conflict.Code)

	internal := InternalError(stderrors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, CodeInternalError, internal.Code)

	custom := NewError("custom", ErrForbidden)
	assert.Equal(t, ErrForbidden.Error(), custom.Error())

	unauth := Unauthorized("unauthorized")
	assert.Equal(t, http.StatusUnauthorized, unauth.Status)

	forbidden := Forbidden("forbidden")
	assert.Equal(t, http.StatusForbidden, forbidden.Status)

	internalMsg := InternalServerError("boom")
	assert.Equal(t, "boom", internalMsg.Error())
}

func TestProtocolError_WrapKeepsIdentity(t *testing.T) {
	err := ErrSubmissionUsed.Wrapf("id %s", "0xabc")
	assert.ErrorIs(t, err, ErrSubmissionUsed)
	assert.NotErrorIs(t, err, ErrSubmissionBlocked)
	assert.Contains(t, err.Error(), "0xabc")

	wrapped := fmt.Errorf("claim: %w", err)
	category, ok := CategoryOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CategoryReplay, category)

	_, ok = CategoryOf(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestFromError_MapsCategories(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrWrongTargetChain, http.StatusBadRequest, "WRONG_TARGET_CHAIN"},
		{ErrNotConfirmed, http.StatusUnprocessableEntity, "NOT_CONFIRMED"},
		{ErrSubmissionUsed, http.StatusConflict, "SUBMISSION_USED"},
		{ErrAdminBadRole, http.StatusForbidden, "ADMIN_BAD_ROLE"},
		{ErrArithmeticOverflow, http.StatusUnprocessableEntity, "ARITHMETIC_OVERFLOW"},
		{ErrAssetNotFound, http.StatusNotFound, "ASSET_NOT_FOUND"},
		{fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{stderrors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tc := range cases {
		appErr := FromError(tc.err)
		assert.Equal(t, tc.status, appErr.Status, tc.err.Error())
		assert.Equal(t, tc.code, appErr.Code, tc.err.Error())
	}

	bad := BadRequest("x")
	assert.Same(t, bad, FromError(bad))
	assert.Nil(t, FromError(nil))
}
