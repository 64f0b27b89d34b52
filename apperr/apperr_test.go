package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{ErrNotFound, http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrBackendUnavailable, http.StatusServiceUnavailable},
		{ErrEmbedding, http.StatusInternalServerError},
		{ErrDatabase, http.StatusInternalServerError},
		{errors.New("unrecognized"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, StatusFor(c.err))
	}
}

func TestStatusFor_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("lookup entity %s: %w", "abc", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusFor(wrapped))
}

func TestToBody(t *testing.T) {
	body, status := ToBody(ErrValidation)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, http.StatusBadRequest, body.Status)
	assert.Equal(t, ErrValidation.Error(), body.Error)
}
