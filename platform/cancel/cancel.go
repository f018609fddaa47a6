// Package cancel tracks request ids whose jobs have been asked to stop.
package cancel

import "context"

// Registry is the process-wide cancellation set. MarkCanceled is idempotent,
// Clear is called once by the job owning the id when it terminates.
type Registry interface {
	MarkCanceled(ctx context.Context, requestID string) error
	IsCanceled(ctx context.Context, requestID string) bool
	Clear(ctx context.Context, requestID string) error
}
