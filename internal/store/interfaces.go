package store

import (
	"context"
	"errors"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

// ErrDisabled is returned by stores whose backing service is not configured.
var ErrDisabled = errors.New("store disabled")

// ErrSequenceExhausted means a reservation would run past the largest id.
var ErrSequenceExhausted = errors.New("id sequence exhausted")

// Sequencer hands out test-case ids per scope (one scope per issue).
type Sequencer interface {
	// Reserve raises the scope counter to at least floor, then takes n
	// consecutive values above it and returns the first. n may be 0 to only
	// raise the counter.
	Reserve(ctx context.Context, scope string, floor int64, n int) (int64, error)
}

// GenerationRunStore records relay generation calls.
type GenerationRunStore interface {
	Create(ctx context.Context, run *model.GenerationRun) error
	ListByIssue(ctx context.Context, issueKey string, limit int32) ([]model.GenerationRun, error)
}
