package document

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
)

type NominationRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewNominationRepository(store docstore.Store, ns docstore.Namespace) *NominationRepository {
	return &NominationRepository{store: store, ns: ns}
}

// Create stores n under its voter/day id, so a second nomination fails.
func (r *NominationRepository) Create(ctx context.Context, n motm.Nomination) (motm.Nomination, error) {
	n.ID = motm.NominationID(n.GameDate, n.NominatedBy)
	body, err := encodeBody(nominationToDocument(n))
	if err != nil {
		return motm.Nomination{}, err
	}

	opts := docstore.SetOptions{Precondition: docstore.Precondition{MustNotExist: true}}
	if _, err := r.store.Set(ctx, r.ns.Doc(CollectionNominations, n.ID), body, opts); err != nil {
		if crerr.Is(err, docstore.ErrAlreadyExists) {
			return motm.Nomination{}, fmt.Errorf("%w: %s on %s", motm.ErrAlreadyNominated, n.NominatedBy, n.GameDate)
		}
		return motm.Nomination{}, crerr.Wrapf(err, "create nomination %s", n.ID)
	}
	return n, nil
}

func (r *NominationRepository) ListByGameDate(ctx context.Context, gameDate string) ([]motm.Nomination, error) {
	docs, err := r.store.Query(ctx, r.ns.Collection(CollectionNominations),
		[]docstore.Filter{docstore.Where("gameDate", docstore.OpEq, gameDate)},
		[]docstore.Order{{Field: "createdAt"}},
	)
	if err != nil {
		return nil, crerr.Wrapf(err, "query nominations for %s", gameDate)
	}

	out := make([]motm.Nomination, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeOne[nominationDocument](doc)
		if err != nil {
			return nil, err
		}
		n := d.toDomain()
		if n.ID == "" {
			n.ID = doc.ID()
		}
		out = append(out, n)
	}
	return out, nil
}

type AwardRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewAwardRepository(store docstore.Store, ns docstore.Namespace) *AwardRepository {
	return &AwardRepository{store: store, ns: ns}
}

func (r *AwardRepository) Get(ctx context.Context, gameDate string) (motm.Award, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.ns.Doc(CollectionAwards, gameDate))
	if err != nil {
		return motm.Award{}, false, crerr.Wrapf(err, "get award %s", gameDate)
	}
	if !exists {
		return motm.Award{}, false, nil
	}

	d, err := decodeOne[awardDocument](doc)
	if err != nil {
		return motm.Award{}, false, err
	}
	return d.toDomain(), true, nil
}

// Create writes the award for its game date unless one is already stored, in
// which case the stored award is returned with created=false.
func (r *AwardRepository) Create(ctx context.Context, a motm.Award) (motm.Award, bool, error) {
	body, err := encodeBody(awardToDocument(a))
	if err != nil {
		return motm.Award{}, false, err
	}

	opts := docstore.SetOptions{Precondition: docstore.Precondition{MustNotExist: true}}
	if _, err := r.store.Set(ctx, r.ns.Doc(CollectionAwards, a.GameDate), body, opts); err != nil {
		if !crerr.Is(err, docstore.ErrAlreadyExists) {
			return motm.Award{}, false, crerr.Wrapf(err, "create award %s", a.GameDate)
		}
		existing, exists, getErr := r.Get(ctx, a.GameDate)
		if getErr != nil {
			return motm.Award{}, false, getErr
		}
		if !exists {
			return motm.Award{}, false, crerr.Wrapf(err, "award %s vanished after conflict", a.GameDate)
		}
		return existing, false, nil
	}
	return a, true, nil
}

func (r *AwardRepository) List(ctx context.Context) ([]motm.Award, error) {
	docs, err := r.store.Query(ctx, r.ns.Collection(CollectionAwards), nil, []docstore.Order{{Field: "gameDate", Desc: true}})
	if err != nil {
		return nil, crerr.Wrap(err, "query awards")
	}

	out := make([]motm.Award, 0, len(docs))
	for _, doc := range docs {
		d, err := decodeOne[awardDocument](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, d.toDomain())
	}
	return out, nil
}
