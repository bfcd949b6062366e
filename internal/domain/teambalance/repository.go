package teambalance

import "context"

// TeamSetRepository stores the single current generation result.
type TeamSetRepository interface {
	GetCurrent(ctx context.Context) (TeamSet, bool, error)
	ReplaceCurrent(ctx context.Context, set TeamSet) error
	DeleteCurrent(ctx context.Context) error
}

// OverrideRepository stores admin-authored player to color assignments.
type OverrideRepository interface {
	Get(ctx context.Context) (Overrides, error)
	Replace(ctx context.Context, overrides Overrides) error
}
