package document

import (
	"context"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

// TeamSetRepository keeps the single teams/current document.
type TeamSetRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewTeamSetRepository(store docstore.Store, ns docstore.Namespace) *TeamSetRepository {
	return &TeamSetRepository{store: store, ns: ns}
}

func (r *TeamSetRepository) path() string {
	return r.ns.Doc(CollectionTeams, currentDocID)
}

func (r *TeamSetRepository) GetCurrent(ctx context.Context) (teambalance.TeamSet, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.path())
	if err != nil {
		return teambalance.TeamSet{}, false, crerr.Wrap(err, "get current teams")
	}
	if !exists {
		return teambalance.TeamSet{}, false, nil
	}

	d, err := decodeOne[teamSetDocument](doc)
	if err != nil {
		return teambalance.TeamSet{}, false, err
	}
	return d.toDomain(), true, nil
}

func (r *TeamSetRepository) ReplaceCurrent(ctx context.Context, set teambalance.TeamSet) error {
	body, err := encodeBody(teamSetToDocument(set))
	if err != nil {
		return err
	}
	if _, err := r.store.Set(ctx, r.path(), body, docstore.SetOptions{}); err != nil {
		return crerr.Wrap(err, "replace current teams")
	}
	return nil
}

func (r *TeamSetRepository) DeleteCurrent(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.path()); err != nil {
		return crerr.Wrap(err, "delete current teams")
	}
	return nil
}

// OverrideRepository keeps the single teamAssignments/current document.
type OverrideRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewOverrideRepository(store docstore.Store, ns docstore.Namespace) *OverrideRepository {
	return &OverrideRepository{store: store, ns: ns}
}

func (r *OverrideRepository) path() string {
	return r.ns.Doc(CollectionTeamAssignments, currentDocID)
}

func (r *OverrideRepository) Get(ctx context.Context) (teambalance.Overrides, error) {
	doc, exists, err := r.store.Get(ctx, r.path())
	if err != nil {
		return nil, crerr.Wrap(err, "get team assignments")
	}
	out := teambalance.Overrides{}
	if !exists {
		return out, nil
	}

	d, err := decodeOne[overridesDocument](doc)
	if err != nil {
		return nil, err
	}
	for playerID, color := range d.Assignments {
		out[playerID] = teambalance.ColorKey(color)
	}
	return out, nil
}

func (r *OverrideRepository) Replace(ctx context.Context, overrides teambalance.Overrides) error {
	d := overridesDocument{Assignments: make(map[string]string, len(overrides))}
	for playerID, color := range overrides {
		d.Assignments[playerID] = string(color)
	}
	body, err := encodeBody(d)
	if err != nil {
		return err
	}
	if _, err := r.store.Set(ctx, r.path(), body, docstore.SetOptions{}); err != nil {
		return crerr.Wrap(err, "replace team assignments")
	}
	return nil
}
