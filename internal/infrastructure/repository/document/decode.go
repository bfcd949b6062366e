package document

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

func decodeOne[T any](doc docstore.Document) (T, error) {
	var out T
	if err := docstore.Decode(doc.Body, &out); err != nil {
		return out, crerr.Wrapf(err, "decode %s", doc.Path)
	}
	return out, nil
}

func encodeBody(v any) ([]byte, error) {
	return docstore.Encode(v)
}

// DecodePlayers converts a players snapshot into domain players.
func DecodePlayers(snap docstore.Snapshot) ([]player.Player, error) {
	out := make([]player.Player, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		d, err := decodeOne[playerDocument](doc)
		if err != nil {
			return nil, err
		}
		p := d.toDomain()
		if p.ID == "" {
			p.ID = doc.ID()
		}
		out = append(out, p)
	}
	return out, nil
}

// DecodeTeamSet extracts the current team set from a teams snapshot.
func DecodeTeamSet(snap docstore.Snapshot) (teambalance.TeamSet, bool, error) {
	for _, doc := range snap.Docs {
		if doc.ID() != currentDocID {
			continue
		}
		d, err := decodeOne[teamSetDocument](doc)
		if err != nil {
			return teambalance.TeamSet{}, false, err
		}
		return d.toDomain(), true, nil
	}
	return teambalance.TeamSet{}, false, nil
}

// DecodeLedgers converts a playerPoints snapshot into ledgers.
func DecodeLedgers(snap docstore.Snapshot) ([]ledger.Ledger, error) {
	out := make([]ledger.Ledger, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		d, err := decodeOne[ledgerDocument](doc)
		if err != nil {
			return nil, err
		}
		l := d.toDomain(doc.Version)
		if l.PlayerID == "" {
			l.PlayerID = doc.ID()
		}
		out = append(out, l)
	}
	return out, nil
}
