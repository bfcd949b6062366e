package cache

import (
	"context"

	"github.com/riskibarqy/club-roster/internal/domain/motm"
	basecache "github.com/riskibarqy/club-roster/internal/platform/cache"
)

const (
	awardKeyPrefix = "award:"
	awardListKey   = "awards:list"
)

// AwardRepository caches award reads. An award never changes once created, so
// only hits are cached per date; misses always reach the store.
type AwardRepository struct {
	next   motm.AwardRepository
	awards *basecache.Store[motm.Award]
	lists  *basecache.Store[[]motm.Award]
}

func NewAwardRepository(next motm.AwardRepository, awards *basecache.Store[motm.Award], lists *basecache.Store[[]motm.Award]) *AwardRepository {
	return &AwardRepository{next: next, awards: awards, lists: lists}
}

func (r *AwardRepository) Get(ctx context.Context, gameDate string) (motm.Award, bool, error) {
	if a, ok := r.awards.Get(ctx, awardKeyPrefix+gameDate); ok {
		return a, true, nil
	}

	a, exists, err := r.next.Get(ctx, gameDate)
	if err != nil || !exists {
		return a, exists, err
	}
	r.awards.Set(ctx, awardKeyPrefix+gameDate, a)
	return a, true, nil
}

func (r *AwardRepository) Create(ctx context.Context, a motm.Award) (motm.Award, bool, error) {
	stored, created, err := r.next.Create(ctx, a)
	if err != nil {
		return stored, created, err
	}

	r.awards.Set(ctx, awardKeyPrefix+stored.GameDate, stored)
	if created {
		r.lists.Delete(ctx, awardListKey)
	}
	return stored, created, nil
}

func (r *AwardRepository) List(ctx context.Context) ([]motm.Award, error) {
	items, err := r.lists.GetOrLoad(ctx, awardListKey, func(ctx context.Context) ([]motm.Award, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]motm.Award(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]motm.Award(nil), items...), nil
}
