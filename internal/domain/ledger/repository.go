package ledger

import "context"

// Repository persists one ledger document per player. Save replaces the whole
// document and fails with ErrConcurrentUpdate when Version no longer matches.
type Repository interface {
	Get(ctx context.Context, playerID string) (Ledger, bool, error)
	List(ctx context.Context) ([]Ledger, error)
	Save(ctx context.Context, l Ledger) (Ledger, error)
}
