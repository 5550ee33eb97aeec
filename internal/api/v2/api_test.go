package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmattila/artstore-go/internal/errors"
)

func TestStatusForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errors.NotFound("artifact", "x"), http.StatusNotFound},
		{"conflict", errors.Conflict("duplicate %s", "x"), http.StatusConflict},
		{"validation", errors.ValidationError("width must be positive"), http.StatusBadRequest},
		{"database", errors.New(errors.NewStd("disk full")).Category(errors.CategoryDatabase).Build(), http.StatusInternalServerError},
		{"plain error", errors.NewStd("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for range 100 {
		id := generateCorrelationID()
		assert.Len(t, id, 8)
		seen[id] = true
	}
	// Collisions across 100 draws from a 62^8 space would indicate a broken generator
	assert.Greater(t, len(seen), 95)
}

func TestNewErrorResponseWithoutError(t *testing.T) {
	t.Parallel()

	resp := NewErrorResponse(nil, "something went wrong", http.StatusBadRequest)
	assert.Equal(t, "something went wrong", resp.Error)
	assert.Equal(t, "something went wrong", resp.Message)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.NotEmpty(t, resp.CorrelationID)
}
