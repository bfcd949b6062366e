package submission

import "context"

// Repository describes goals/assists submission persistence.
type Repository interface {
	Create(ctx context.Context, s Submission) error
	Get(ctx context.Context, id string) (Submission, bool, error)
	Update(ctx context.Context, s Submission) error
	ListByStatus(ctx context.Context, status Status) ([]Submission, error)
	ListByPlayerAndDate(ctx context.Context, playerID, gameDate string) ([]Submission, error)
}
