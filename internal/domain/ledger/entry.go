package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	AttendancePoints   = 2
	MinAdjudicated     = 1
	MaxAdjudicated     = 5
	MaxManualMagnitude = 50
	MaxStatPerGame     = 30
)

var (
	ErrPointsOutOfRange = errors.New("points out of range")
	ErrReasonRequired   = errors.New("reason is required")
	ErrInvalidEntry     = errors.New("invalid ledger entry")
)

// Kind tags a history entry; each kind carries its own idempotency rule.
type Kind string

const (
	KindAttendance  Kind = "attendance"
	KindAdjudicated Kind = "adjudicated"
	KindManual      Kind = "manual"
	KindMOTM        Kind = "motm"
	KindStats       Kind = "stats"
)

// Entry is one append-only history line. Which fields are meaningful depends on Kind.
type Entry struct {
	Kind         Kind
	Points       int
	Reason       string
	AddedBy      string
	AddedAt      time.Time
	MatchDate    string
	Automatic    bool
	SubmissionID string
	Goals        int
	Assists      int
}

func NewAttendanceEntry(matchDate string, at time.Time) Entry {
	return Entry{
		Kind:      KindAttendance,
		Points:    AttendancePoints,
		Reason:    string(KindAttendance),
		AddedBy:   "system",
		AddedAt:   at,
		MatchDate: matchDate,
		Automatic: true,
	}
}

// NewManualAttendanceEntry is an admin correction for a missed automatic credit.
// It has its own idempotency key, separate from the automatic one.
func NewManualAttendanceEntry(matchDate, addedBy string, at time.Time) Entry {
	e := NewAttendanceEntry(matchDate, at)
	e.AddedBy = addedBy
	e.Automatic = false
	return e
}

func NewAdjudicatedEntry(points int, reason, addedBy string, at time.Time) (Entry, error) {
	if points < MinAdjudicated || points > MaxAdjudicated {
		return Entry{}, fmt.Errorf("%w: adjudicated points must be between %d and %d, got %d", ErrPointsOutOfRange, MinAdjudicated, MaxAdjudicated, points)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Entry{}, ErrReasonRequired
	}
	return Entry{Kind: KindAdjudicated, Points: points, Reason: reason, AddedBy: addedBy, AddedAt: at}, nil
}

func NewManualEntry(points int, reason, addedBy string, at time.Time) (Entry, error) {
	if points == 0 || points < -MaxManualMagnitude || points > MaxManualMagnitude {
		return Entry{}, fmt.Errorf("%w: manual adjustment must be non-zero and within ±%d, got %d", ErrPointsOutOfRange, MaxManualMagnitude, points)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Entry{}, ErrReasonRequired
	}
	return Entry{Kind: KindManual, Points: points, Reason: reason, AddedBy: addedBy, AddedAt: at}, nil
}

// NewMOTMEntry records the badge; it carries no points.
func NewMOTMEntry(matchDate string, votes int, at time.Time) Entry {
	return Entry{
		Kind:      KindMOTM,
		Reason:    fmt.Sprintf("man of the match (%d votes)", votes),
		AddedBy:   "system",
		AddedAt:   at,
		MatchDate: matchDate,
		Automatic: true,
	}
}

func NewStatsEntry(submissionID, matchDate string, goals, assists int, approvedBy string, at time.Time) (Entry, error) {
	if goals < 0 || assists < 0 || goals > MaxStatPerGame || assists > MaxStatPerGame {
		return Entry{}, fmt.Errorf("%w: goals/assists must be within [0,%d]", ErrInvalidEntry, MaxStatPerGame)
	}
	if submissionID == "" {
		return Entry{}, fmt.Errorf("%w: submission id is required", ErrInvalidEntry)
	}
	return Entry{
		Kind:         KindStats,
		Reason:       "goals and assists",
		AddedBy:      approvedBy,
		AddedAt:      at,
		MatchDate:    matchDate,
		SubmissionID: submissionID,
		Goals:        goals,
		Assists:      assists,
	}, nil
}

// IdempotencyKey identifies entries that must be applied at most once.
// Adjudicated and manual grants have no key and always append.
func (e Entry) IdempotencyKey() (string, bool) {
	switch e.Kind {
	case KindAttendance:
		return fmt.Sprintf("attendance|%s|auto=%t", e.MatchDate, e.Automatic), true
	case KindMOTM:
		return "motm|" + e.MatchDate, true
	case KindStats:
		return "stats|" + e.SubmissionID, true
	default:
		return "", false
	}
}

// CountsTowardTotal is false for badge and stat lines, which carry no points.
func (e Entry) CountsTowardTotal() bool {
	return e.Kind != KindMOTM && e.Kind != KindStats
}
