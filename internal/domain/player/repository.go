package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	ListAvailable(ctx context.Context) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	// FindByName looks a player up by NormalizeName(name).
	FindByName(ctx context.Context, name string) (Player, bool, error)
	Upsert(ctx context.Context, p Player) error
	SetAvailability(ctx context.Context, playerID string, available bool) error
	Delete(ctx context.Context, playerID string) error
}
