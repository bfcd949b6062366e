package document

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/player"
)

type PlayerRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewPlayerRepository(store docstore.Store, ns docstore.Namespace) *PlayerRepository {
	return &PlayerRepository{store: store, ns: ns}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.query(ctx, nil)
}

func (r *PlayerRepository) ListAvailable(ctx context.Context) ([]player.Player, error) {
	return r.query(ctx, []docstore.Filter{docstore.Where("available", docstore.OpEq, true)})
}

func (r *PlayerRepository) query(ctx context.Context, filters []docstore.Filter) ([]player.Player, error) {
	docs, err := r.store.Query(ctx, r.ns.Collection(CollectionPlayers), filters, []docstore.Order{{Field: "nameKey"}})
	if err != nil {
		return nil, crerr.Wrap(err, "query players")
	}
	return DecodePlayers(docstore.Snapshot{Docs: docs})
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.ns.Doc(CollectionPlayers, playerID))
	if err != nil {
		return player.Player{}, false, crerr.Wrapf(err, "get player %s", playerID)
	}
	if !exists {
		return player.Player{}, false, nil
	}

	d, err := decodeOne[playerDocument](doc)
	if err != nil {
		return player.Player{}, false, err
	}
	return d.toDomain(), true, nil
}

func (r *PlayerRepository) FindByName(ctx context.Context, name string) (player.Player, bool, error) {
	items, err := r.query(ctx, []docstore.Filter{docstore.Where("nameKey", docstore.OpEq, player.NormalizeName(name))})
	if err != nil {
		return player.Player{}, false, err
	}
	if len(items) == 0 {
		return player.Player{}, false, nil
	}
	return items[0], true, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, p player.Player) error {
	body, err := encodeBody(playerToDocument(p))
	if err != nil {
		return err
	}
	if _, err := r.store.Set(ctx, r.ns.Doc(CollectionPlayers, p.ID), body, docstore.SetOptions{}); err != nil {
		return crerr.Wrapf(err, "upsert player %s", p.ID)
	}
	return nil
}

// SetAvailability merges the flag into an existing player document only.
func (r *PlayerRepository) SetAvailability(ctx context.Context, playerID string, available bool) error {
	docPath := r.ns.Doc(CollectionPlayers, playerID)
	doc, exists, err := r.store.Get(ctx, docPath)
	if err != nil {
		return crerr.Wrapf(err, "get player %s", playerID)
	}
	if !exists {
		return crerr.Newf("player %s does not exist", playerID)
	}

	body, err := encodeBody(map[string]any{"available": available, "updatedAt": r.store.Now()})
	if err != nil {
		return err
	}
	opts := docstore.SetOptions{Merge: true, Precondition: docstore.Precondition{MatchVersion: doc.Version}}
	if _, err := r.store.Set(ctx, docPath, body, opts); err != nil {
		return crerr.Wrapf(err, "set availability for player %s", playerID)
	}
	return nil
}

func (r *PlayerRepository) Delete(ctx context.Context, playerID string) error {
	if err := r.store.Delete(ctx, r.ns.Doc(CollectionPlayers, playerID)); err != nil {
		return crerr.Wrapf(err, "delete player %s", playerID)
	}
	return nil
}
