package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	t.Parallel()

	err := Newf("artifact not found: %s", "abc").
		Component("datastore").
		Category(CategoryNotFound).
		Context("operation", "get_artifact").
		Build()

	assert.Equal(t, "artifact not found: abc", err.Error())
	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.Equal(t, "get_artifact", err.GetContext()["operation"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	err := New(NewStd("boom")).Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Nil(t, err.GetContext())
}

func TestCategoryChecks(t *testing.T) {
	t.Parallel()

	nf := NotFound("collection", "c-1")
	conflict := Conflict("artifact with md5 %s already exists", "deadbeef")
	validation := ValidationError("width must be positive")

	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(conflict))
	assert.True(t, IsConflict(conflict))
	assert.True(t, IsValidation(validation))
	assert.False(t, IsConflict(NewStd("plain")))
}

func TestUnwrapThroughWrapping(t *testing.T) {
	t.Parallel()

	base := NewStd("record missing")
	err := New(base).Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("listing artifacts: %w", err)

	require.True(t, IsNotFound(wrapped), "category must survive fmt.Errorf wrapping")
	assert.True(t, Is(wrapped, base))
}

func TestContextCopyIsIsolated(t *testing.T) {
	t.Parallel()

	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.GetContext()["k"])
}
