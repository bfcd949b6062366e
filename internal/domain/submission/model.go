package submission

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const MaxPerGame = 30

var (
	ErrPendingExists     = errors.New("a pending submission already exists for this player and date")
	ErrAlreadyApproved   = errors.New("stats for this player and date were already approved")
	ErrInvalidTransition = errors.New("submission status transition not allowed")
)

type Status string

// SlotID keys the single open claim a player may hold for a game date.
func SlotID(playerID, gameDate string) string {
	return playerID + "_" + gameDate
}

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission is a self-reported goals/assists line awaiting admin review.
type Submission struct {
	ID          string
	PlayerID    string
	GameDate    string
	Goals       int
	Assists     int
	SubmittedBy string
	Status      Status
	Note        string
	CreatedAt   time.Time
	ReviewedBy  string
	ReviewedAt  time.Time
}

func (s Submission) Validate() error {
	if strings.TrimSpace(s.PlayerID) == "" {
		return fmt.Errorf("submission player id is required")
	}
	if strings.TrimSpace(s.GameDate) == "" {
		return fmt.Errorf("submission game date is required")
	}
	if strings.TrimSpace(s.SubmittedBy) == "" {
		return fmt.Errorf("submitting user is required")
	}
	if s.Goals < 0 || s.Goals > MaxPerGame {
		return fmt.Errorf("goals must be between 0 and %d", MaxPerGame)
	}
	if s.Assists < 0 || s.Assists > MaxPerGame {
		return fmt.Errorf("assists must be between 0 and %d", MaxPerGame)
	}
	if s.Goals == 0 && s.Assists == 0 {
		return fmt.Errorf("submission must report at least one goal or assist")
	}
	return nil
}

func (s Submission) IsPending() bool {
	return s.Status == StatusPending
}

// Review moves a pending submission to approved or rejected. Reviewed
// submissions are final.
func (s Submission) Review(to Status, reviewer, note string, at time.Time) (Submission, error) {
	if s.Status != StatusPending {
		return s, fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, s.ID, s.Status)
	}
	if to != StatusApproved && to != StatusRejected {
		return s, fmt.Errorf("%w: cannot move to %q", ErrInvalidTransition, to)
	}

	next := s
	next.Status = to
	next.ReviewedBy = reviewer
	next.ReviewedAt = at
	if note = strings.TrimSpace(note); note != "" {
		next.Note = note
	}
	return next, nil
}
