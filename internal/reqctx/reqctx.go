package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// RunContext identifies one capture run.
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRunContext attaches a fresh run ID to ctx. An existing run context is
// kept so nested calls share one ID.
func WithRunContext(ctx context.Context) context.Context {
	if _, ok := ctx.Value(runKey).(*RunContext); ok {
		return ctx
	}
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	})
}

func GetRunContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// RunID is shorthand for GetRunContext(ctx).RunID.
func RunID(ctx context.Context) string {
	return GetRunContext(ctx).RunID
}

// RunError wraps an error with run context
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new RunError from context
func NewRunError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{
		RunID: RunID(ctx),
		Err:   err,
	}
}
