package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrValidation, http.StatusBadRequest},
		{ErrInvalidState, http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrStorage, http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("loan already returned: %w", ErrInvalidState), http.StatusConflict},
		{fmt.Errorf("totally unknown"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MapErrorToStatus(tc.err), "error %v", tc.err)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := ErrForbidden
	appErr := New(http.StatusForbidden, "cannot touch this", inner)

	assert.Equal(t, inner.Error(), appErr.Error())
	assert.ErrorIs(t, appErr, ErrForbidden)
}
