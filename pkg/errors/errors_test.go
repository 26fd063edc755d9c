package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	cloned := Clone(ErrNotFound, "lesson not found")

	assert.Equal(t, "lesson not found", cloned.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.True(t, errors.Is(cloned, ErrNotFound))
	assert.False(t, errors.Is(cloned, ErrForbidden))
}

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	wrapped := fmt.Errorf("bridge: %w", Wrap(errors.New("dial tcp"), ErrServiceUnavailable.Code, ErrServiceUnavailable.Status, "generate"))

	assert.True(t, errors.Is(wrapped, ErrServiceUnavailable))
	assert.Equal(t, http.StatusBadGateway, FromError(wrapped).Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestRecoverable(t *testing.T) {
	assert.False(t, Recoverable(Clone(ErrConfiguration, "")))
	assert.True(t, Recoverable(ErrServiceUnavailable))
	assert.True(t, Recoverable(ErrMalformedAIResponse))
}
