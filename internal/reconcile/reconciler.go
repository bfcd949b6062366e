package reconcile

import (
	"context"
	"sync"
)

// PublishFunc receives every value that differs from the last applied one.
type PublishFunc[T any] func(ctx context.Context, v T, revision uint64)

// Reconciler suppresses snapshots that are structurally equal to the last one it
// applied. It is safe for concurrent use.
type Reconciler[T any] struct {
	mu       sync.Mutex
	equal    func(a, b T) bool
	publish  PublishFunc[T]
	last     T
	applied  bool
	revision uint64
}

func NewReconciler[T any](equal func(a, b T) bool, publish PublishFunc[T]) *Reconciler[T] {
	return &Reconciler[T]{equal: equal, publish: publish}
}

// Apply publishes v and returns true unless it equals the last applied value.
// The first value is always published.
func (r *Reconciler[T]) Apply(ctx context.Context, v T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.applied && r.equal(r.last, v) {
		return false
	}
	r.last = v
	r.applied = true
	r.revision++
	if r.publish != nil {
		r.publish(ctx, v, r.revision)
	}
	return true
}

// Last returns the last applied value and its revision.
func (r *Reconciler[T]) Last() (T, uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.revision, r.applied
}
