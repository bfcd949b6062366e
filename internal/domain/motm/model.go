package motm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrVotingClosed     = errors.New("voting window is not open")
	ErrNoVotingWindow   = errors.New("no voting window on this date")
	ErrAlreadyNominated = errors.New("voter already nominated for this game")
	ErrNoNominations    = errors.New("no nominations for this game")
)

const MaxReasonLength = 280

// Nomination is one voter's pick for a game date.
type Nomination struct {
	ID                string
	GameDate          string
	NominatedPlayerID string
	NominatedBy       string
	Reason            string
	CreatedAt         time.Time
}

// NominationID is deterministic so the store can enforce one nomination per voter per day.
func NominationID(gameDate, voter string) string {
	return gameDate + "_" + voter
}

func (n Nomination) Validate() error {
	if strings.TrimSpace(n.GameDate) == "" {
		return fmt.Errorf("nomination game date is required")
	}
	if strings.TrimSpace(n.NominatedPlayerID) == "" {
		return fmt.Errorf("nominated player is required")
	}
	if strings.TrimSpace(n.NominatedBy) == "" {
		return fmt.Errorf("nominating user is required")
	}
	if len(n.Reason) > MaxReasonLength {
		return fmt.Errorf("nomination reason must be at most %d characters", MaxReasonLength)
	}
	return nil
}

// Award is the resolved best performer of a game date. At most one exists per date.
type Award struct {
	GameDate  string
	PlayerID  string
	VoteCount int
	Tied      []string
	AwardedAt time.Time
}
