package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("load chat: %w", NotFound("Chat not found"))

	appErr := From(wrapped)
	if assert.NotNil(t, appErr) {
		assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
		assert.Equal(t, CodeNotFound, appErr.Code)
	}
	assert.True(t, IsNotFound(wrapped))

	assert.Nil(t, From(errors.New("boom")))
	assert.False(t, IsNotFound(BadRequest("bad")))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Validation("x").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("x").StatusCode)
	assert.Equal(t, "Internal server error", Internal().Message)
	assert.Equal(t, "[BAD_REQUEST] nope", BadRequest("nope").Error())
}
