package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{BadRequest("bad"), http.StatusBadRequest},
		{Unauthenticated("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("none"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Gone("used"), http.StatusGone},
		{Internal("boom", errors.New("disk")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusOf(tt.err), fmt.Sprint(tt.err))
	}
}

func TestWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("issue: %w", Internal("save ticket", cause))

	assert.True(t, Is(err, KindInternal))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "save ticket", Message(err))
	assert.Equal(t, "Internal error", Message(cause))
	assert.False(t, Is(nil, KindInternal))
}
