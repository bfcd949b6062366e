package ledger

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTotalMismatch    = errors.New("ledger total does not match history")
	ErrConcurrentUpdate = errors.New("ledger was modified concurrently")
	ErrAlreadyApplied   = errors.New("ledger entry already applied")
)

// Ledger is a player's award history plus totals derived from it.
// Version is the store's optimistic-concurrency token; zero means not yet persisted.
type Ledger struct {
	PlayerID    string
	TotalPoints int
	MOTMAwards  int
	Goals       int
	Assists     int
	History     []Entry
	Version     int64
	UpdatedAt   time.Time
}

func New(playerID string) Ledger {
	return Ledger{PlayerID: playerID}
}

// Contains reports whether an entry with the given idempotency key was already applied.
func (l Ledger) Contains(key string) bool {
	for _, e := range l.History {
		if k, ok := e.IdempotencyKey(); ok && k == key {
			return true
		}
	}
	return false
}

// Apply appends e and recomputes the derived totals. Keyed entries already present
// return ErrAlreadyApplied and leave the ledger untouched.
func (l Ledger) Apply(e Entry, at time.Time) (Ledger, error) {
	if key, ok := e.IdempotencyKey(); ok && l.Contains(key) {
		return l, fmt.Errorf("%w: %s", ErrAlreadyApplied, key)
	}

	next := l
	next.History = make([]Entry, 0, len(l.History)+1)
	next.History = append(next.History, l.History...)
	next.History = append(next.History, e)
	next.recompute()
	next.UpdatedAt = at
	return next, nil
}

func (l *Ledger) recompute() {
	l.TotalPoints, l.MOTMAwards, l.Goals, l.Assists = 0, 0, 0, 0
	for _, e := range l.History {
		if e.CountsTowardTotal() {
			l.TotalPoints += e.Points
		}
		switch e.Kind {
		case KindMOTM:
			l.MOTMAwards++
		case KindStats:
			l.Goals += e.Goals
			l.Assists += e.Assists
		}
	}
}

// SumPoints is the total implied by history.
func SumPoints(history []Entry) int {
	total := 0
	for _, e := range history {
		if e.CountsTowardTotal() {
			total += e.Points
		}
	}
	return total
}

func (l Ledger) Validate() error {
	if l.PlayerID == "" {
		return fmt.Errorf("ledger player id is required")
	}
	if sum := SumPoints(l.History); sum != l.TotalPoints {
		return fmt.Errorf("%w: total=%d history=%d", ErrTotalMismatch, l.TotalPoints, sum)
	}
	return nil
}
