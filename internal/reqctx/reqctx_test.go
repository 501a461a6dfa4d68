package reqctx

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRunContext(t *testing.T) {
	ctx := WithRunContext(context.Background())

	id := RunID(ctx)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	// Nested calls keep the outer ID.
	assert.Equal(t, id, RunID(WithRunContext(ctx)))
	assert.NotEqual(t, id, RunID(WithRunContext(context.Background())))
}

func TestGetRunContext_Missing(t *testing.T) {
	assert.Equal(t, "unknown", RunID(context.Background()))
}

func TestNewRunError(t *testing.T) {
	ctx := WithRunContext(context.Background())
	base := errors.New("boom")

	err := NewRunError(ctx, base)
	require.Error(t, err)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), RunID(ctx))

	var re *RunError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, RunID(ctx), re.RunID)

	assert.NoError(t, NewRunError(ctx, nil))
}
