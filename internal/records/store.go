package records

import (
	"context"
	"time"
)

// Store is the C2 record store capability. Implementations guarantee
// single-writer correctness: state transitions for a given id are
// serialized, and Update is linearizable for that id.
type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter Filter, page Page) ([]Record, error)
	// Update applies patch compare-and-swap on UpdatedAt: the caller supplies
	// the UpdatedAt it last observed, and the call fails with a Conflict
	// error if the stored value has since changed.
	Update(ctx context.Context, id string, expectedUpdatedAt time.Time, patch Patch) (Record, error)
	// Transition moves id from `from` to `to`, rejecting with Conflict if the
	// current status is not `from`.
	Transition(ctx context.Context, id string, from, to Status) (Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
