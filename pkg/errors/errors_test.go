package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	wrapped := fmt.Errorf("jobs: %w", ErrActionInProgress)

	assert.Equal(t, http.StatusConflict, StatusFor(wrapped))
	assert.Equal(t, http.StatusBadRequest, StatusFor(ErrUnidentifiedUser))
	assert.Equal(t, 0, StatusFor(fmt.Errorf("something else")))
}

func TestFieldErrors_First(t *testing.T) {
	fields := FieldErrors{
		"email":    {"This field is required.", "Enter a valid email address."},
		"password": {},
	}

	first := fields.First()

	assert.Equal(t, map[string]string{"email": "This field is required."}, first)
}

func TestHttpError_Unwrap(t *testing.T) {
	err := NewHttpError(http.StatusBadGateway, "Backend failed", ErrUpstream, nil)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "Backend failed")
}
