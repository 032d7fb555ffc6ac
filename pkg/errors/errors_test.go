package errors

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrNotFound, "contact not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNotFound.Code, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "contact not found", appErr.Message)
}

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrInvalidArgument.Code, ErrInvalidArgument.Status, "page size must be positive")
	assert.True(t, Is(err, ErrInvalidArgument))
	assert.False(t, Is(err, ErrValidation))
	assert.False(t, Is(nil, ErrValidation))
}
