package motm

import (
	"sort"
)

// Result is the outcome of counting one game date's nominations.
type Result struct {
	Winner    string
	VoteCount int
	// Tied lists every nominee sharing the winning count, in encounter order.
	Tied   []string
	Counts map[string]int
}

// IsTie reports whether more than one nominee reached the winning count.
func (r Result) IsTie() bool {
	return len(r.Tied) > 1
}

// Tally counts votes per nominee. The winner is the first nominee, in the order
// given, whose count equals the maximum.
func Tally(nominations []Nomination) (Result, error) {
	if len(nominations) == 0 {
		return Result{}, ErrNoNominations
	}

	counts := make(map[string]int, len(nominations))
	order := make([]string, 0, len(nominations))
	for _, n := range nominations {
		if _, seen := counts[n.NominatedPlayerID]; !seen {
			order = append(order, n.NominatedPlayerID)
		}
		counts[n.NominatedPlayerID]++
	}

	maxVotes := 0
	for _, c := range counts {
		if c > maxVotes {
			maxVotes = c
		}
	}

	result := Result{VoteCount: maxVotes, Counts: counts}
	for _, playerID := range order {
		if counts[playerID] != maxVotes {
			continue
		}
		if result.Winner == "" {
			result.Winner = playerID
		}
		result.Tied = append(result.Tied, playerID)
	}

	return result, nil
}

// SortByCreation orders nominations by creation time, then id, so encounter order
// no longer depends on how the store returned them.
func SortByCreation(nominations []Nomination) []Nomination {
	out := append([]Nomination(nil), nominations...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
