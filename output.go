package distill

import "context"

// ResultStore persists rendered results outside the run database.
//
// Saves are staged until Commit so a failed batch never leaves partial
// output behind.
type ResultStore interface {
	// Save stages the rendered output of run.
	Save(ctx context.Context, run *Run, rendered string) error

	// Commit publishes all staged output, replacing any previous output.
	Commit() error

	// Abort discards all staged output.
	Abort() error
}
