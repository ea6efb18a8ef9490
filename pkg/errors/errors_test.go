package errors

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("contact", nil), http.StatusNotFound},
		{BadRequest("bad", nil), http.StatusBadRequest},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("dup", nil), http.StatusConflict},
		{Internal(stderrors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrapping(t *testing.T) {
	err := fmt.Errorf("failed to get contact: %w", NotFound("contact", sql.ErrNoRows))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsCode(err, ErrConflict))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, "failed to get contact: contact not found: sql: no rows in result set", err.Error())
	assert.False(t, IsNotFound(stderrors.New("plain")))
}
