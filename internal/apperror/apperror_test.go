package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := map[*Error]int{
		Validation("bad"):             http.StatusBadRequest,
		Authentication("who"):         http.StatusUnauthorized,
		NotVerified("verify first"):   http.StatusForbidden,
		Inactive("inactive"):          http.StatusForbidden,
		Forbidden("not yours"):        http.StatusForbidden,
		NotFound("missing"):           http.StatusNotFound,
		Conflict("already accepted"):  http.StatusConflict,
		Internal("boom", nil):         http.StatusInternalServerError,
		Dependency("sms down", nil):   http.StatusInternalServerError,
		{Kind: "unknown", Message: ""}: http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, err.Status(), err.Kind)
	}
}

func TestFromUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("accept: %w", Conflict("already accepted"))
	got := From(wrapped)
	assert.Equal(t, KindConflict, got.Kind)
	assert.True(t, Is(wrapped, KindConflict))
	assert.True(t, got.Operational())
}

func TestFromHidesUnexpectedErrors(t *testing.T) {
	cause := errors.New("connection reset by peer")
	got := From(cause)
	assert.Equal(t, KindInternal, got.Kind)
	assert.False(t, got.Operational())
	assert.NotContains(t, got.Message, "connection reset")
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, From(nil))
}
