package telemetry

import (
	"context"

	"github.com/google/uuid"
)

// RunIDKey is the span attribute carrying the install run id.
const RunIDKey = "run_id"

type runIDKey struct{}

// WithRunID stores a fresh run id in ctx and returns it.
func WithRunID(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(ctx, runIDKey{}, id), id
}

// RunID returns the run id stored in ctx.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}
