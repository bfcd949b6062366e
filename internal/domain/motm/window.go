package motm

import (
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/schedule"
)

// State is the voting window phase of one game date.
type State string

const (
	StateNoVotingWindow State = "no_voting_window"
	StateOpen           State = "open"
	StateTallying       State = "tallying"
	StateAwarded        State = "awarded"
)

// Window describes the voting phase of a game date as seen at a given instant.
type Window struct {
	GameDate string
	State    State
	OpensAt  time.Time
	ClosesAt time.Time
}

// AcceptsNominations is true only while the window is open.
func (w Window) AcceptsNominations() bool {
	return w.State == StateOpen
}

// CanResolve is true once voting has closed and no award exists yet.
func (w Window) CanResolve() bool {
	return w.State == StateTallying
}

// WindowFor derives the window state of gameDate. Voting opens at kickoff and
// closes at the end of the game day; before kickoff there is no window yet.
// An existing award wins over every other state.
func WindowFor(sched schedule.Schedule, gameDate string, now time.Time, awarded bool) (Window, error) {
	day, err := sched.StartOfDay(gameDate)
	if err != nil {
		return Window{}, err
	}

	w := Window{GameDate: gameDate}
	kickoff, ok := sched.KickoffOn(day)
	if !ok {
		w.State = StateNoVotingWindow
		if awarded {
			w.State = StateAwarded
		}
		return w, nil
	}
	w.OpensAt = kickoff
	w.ClosesAt = sched.EndOfDay(day)

	switch {
	case awarded:
		w.State = StateAwarded
	case now.Before(w.OpensAt):
		w.State = StateNoVotingWindow
	case now.Before(w.ClosesAt):
		w.State = StateOpen
	default:
		w.State = StateTallying
	}
	return w, nil
}
