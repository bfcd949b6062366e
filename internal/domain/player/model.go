package player

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDuplicateName   = errors.New("player name already registered")
	ErrUnknownPosition = errors.New("unknown player position")
)

// Position is one of the ten pitch roles a player can register with.
type Position string

const (
	PositionGoalkeeper          Position = "GK"
	PositionRightBack           Position = "RB"
	PositionCentreBack          Position = "CB"
	PositionLeftBack            Position = "LB"
	PositionDefensiveMidfielder Position = "CDM"
	PositionCentralMidfielder   Position = "CM"
	PositionAttackingMidfielder Position = "CAM"
	PositionRightWinger         Position = "RW"
	PositionLeftWinger          Position = "LW"
	PositionStriker             Position = "ST"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper:          {},
	PositionRightBack:           {},
	PositionCentreBack:          {},
	PositionLeftBack:            {},
	PositionDefensiveMidfielder: {},
	PositionCentralMidfielder:   {},
	PositionAttackingMidfielder: {},
	PositionRightWinger:         {},
	PositionLeftWinger:          {},
	PositionStriker:             {},
}

const (
	MinSkill = 1
	MaxSkill = 10
)

// Player is a registered club member. Available is reset every scheduling cycle.
type Player struct {
	ID                 string
	Name               string
	Position           Position
	SkillLevel         int
	OwnerUserID        string
	RegisteredByUserID string
	Available          bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func ClampSkill(v int) int {
	if v < MinSkill {
		return MinSkill
	}
	if v > MaxSkill {
		return MaxSkill
	}
	return v
}

// Skill returns the skill level clamped into [MinSkill, MaxSkill].
func (p Player) Skill() int {
	return ClampSkill(p.SkillLevel)
}

// NormalizeName is the case-insensitive uniqueness key for player names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func ParsePosition(v string) (Position, error) {
	pos := Position(strings.ToUpper(strings.TrimSpace(v)))
	if _, ok := AllPositions[pos]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPosition, v)
	}
	return pos, nil
}

// CanManageAvailability reports whether userID may toggle this player's availability.
func (p Player) CanManageAvailability(userID string, isAdmin bool) bool {
	if isAdmin {
		return true
	}
	if userID == "" {
		return false
	}
	return userID == p.OwnerUserID || userID == p.RegisteredByUserID
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPosition, p.Position)
	}
	if p.SkillLevel < MinSkill || p.SkillLevel > MaxSkill {
		return fmt.Errorf("player skill level must be between %d and %d", MinSkill, MaxSkill)
	}

	return nil
}
