package document

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/ledger"
)

type LedgerRepository struct {
	store docstore.Store
	ns    docstore.Namespace
}

func NewLedgerRepository(store docstore.Store, ns docstore.Namespace) *LedgerRepository {
	return &LedgerRepository{store: store, ns: ns}
}

func (r *LedgerRepository) Get(ctx context.Context, playerID string) (ledger.Ledger, bool, error) {
	doc, exists, err := r.store.Get(ctx, r.ns.Doc(CollectionLedger, playerID))
	if err != nil {
		return ledger.Ledger{}, false, crerr.Wrapf(err, "get ledger %s", playerID)
	}
	if !exists {
		return ledger.Ledger{}, false, nil
	}

	d, err := decodeOne[ledgerDocument](doc)
	if err != nil {
		return ledger.Ledger{}, false, err
	}
	l := d.toDomain(doc.Version)
	if l.PlayerID == "" {
		l.PlayerID = playerID
	}
	return l, true, nil
}

func (r *LedgerRepository) List(ctx context.Context) ([]ledger.Ledger, error) {
	docs, err := r.store.Query(ctx, r.ns.Collection(CollectionLedger), nil, []docstore.Order{{Field: "totalPoints", Desc: true}})
	if err != nil {
		return nil, crerr.Wrap(err, "query ledgers")
	}
	return DecodeLedgers(docstore.Snapshot{Docs: docs})
}

// Save writes the whole ledger. A zero Version creates it; otherwise the stored
// version must still match, or ledger.ErrConcurrentUpdate is returned.
func (r *LedgerRepository) Save(ctx context.Context, l ledger.Ledger) (ledger.Ledger, error) {
	body, err := encodeBody(ledgerToDocument(l))
	if err != nil {
		return ledger.Ledger{}, err
	}

	pre := docstore.Precondition{MatchVersion: l.Version}
	if l.Version == 0 {
		pre = docstore.Precondition{MustNotExist: true}
	}

	doc, err := r.store.Set(ctx, r.ns.Doc(CollectionLedger, l.PlayerID), body, docstore.SetOptions{Precondition: pre})
	if err != nil {
		if docstore.IsConflict(err) {
			return ledger.Ledger{}, fmt.Errorf("%w: player %s: %v", ledger.ErrConcurrentUpdate, l.PlayerID, err)
		}
		return ledger.Ledger{}, crerr.Wrapf(err, "save ledger %s", l.PlayerID)
	}

	l.Version = doc.Version
	return l, nil
}
