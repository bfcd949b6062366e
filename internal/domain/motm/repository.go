package motm

import "context"

// NominationRepository stores nominations keyed by NominationID. Create fails
// with ErrAlreadyNominated when the voter already has one for that date.
type NominationRepository interface {
	Create(ctx context.Context, n Nomination) (Nomination, error)
	ListByGameDate(ctx context.Context, gameDate string) ([]Nomination, error)
}

// AwardRepository stores at most one award per game date. Create reports
// created=false, with the stored award, when one already exists.
type AwardRepository interface {
	Get(ctx context.Context, gameDate string) (Award, bool, error)
	Create(ctx context.Context, a Award) (Award, bool, error)
	List(ctx context.Context) ([]Award, error)
}
