package teambalance

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/player"
)

const (
	MinTeams = 2
	MaxTeams = 6
)

var (
	ErrInsufficientPlayers = errors.New("not enough available players")
	ErrUnknownColor        = errors.New("unknown team color")
	ErrInvalidTeamSet      = errors.New("invalid team set")
)

// ColorKey identifies a team slot; overrides reference teams by color.
type ColorKey string

const (
	ColorRed    ColorKey = "red"
	ColorBlue   ColorKey = "blue"
	ColorGreen  ColorKey = "green"
	ColorYellow ColorKey = "yellow"
	ColorOrange ColorKey = "orange"
	ColorPurple ColorKey = "purple"
	ColorWhite  ColorKey = "white"
	ColorBlack  ColorKey = "black"
)

// Identity is the name and color of one team slot.
type Identity struct {
	Name  string
	Color ColorKey
}

var twoTeamPalette = []Identity{
	{Name: "Red", Color: ColorRed},
	{Name: "Blue", Color: ColorBlue},
}

var palette = []Identity{
	{Name: "Green Team", Color: ColorGreen},
	{Name: "Yellow Team", Color: ColorYellow},
	{Name: "Orange Team", Color: ColorOrange},
	{Name: "Purple Team", Color: ColorPurple},
	{Name: "White Team", Color: ColorWhite},
	{Name: "Black Team", Color: ColorBlack},
}

// KnownColor reports whether c appears in any palette.
func KnownColor(c ColorKey) bool {
	for _, id := range twoTeamPalette {
		if id.Color == c {
			return true
		}
	}
	for _, id := range palette {
		if id.Color == c {
			return true
		}
	}
	return false
}

func ClampTeamCount(k int) int {
	if k < MinTeams {
		return MinTeams
	}
	if k > MaxTeams {
		return MaxTeams
	}
	return k
}

// Identities resolves k team slots. Two teams always get the fixed Red/Blue pair.
func Identities(k int) []Identity {
	k = ClampTeamCount(k)
	if k == 2 {
		return append([]Identity(nil), twoTeamPalette...)
	}

	out := make([]Identity, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, palette[i%len(palette)])
	}
	return out
}

// Candidate is an available player as seen by the balancer.
type Candidate struct {
	PlayerID string
	Name     string
	Position player.Position
	Skill    int
}

func CandidateFromPlayer(p player.Player) Candidate {
	return Candidate{
		PlayerID: p.ID,
		Name:     p.Name,
		Position: p.Position,
		Skill:    p.Skill(),
	}
}

type Team struct {
	Name       string
	Color      ColorKey
	Players    []Candidate
	TotalSkill int
}

func (t *Team) add(c Candidate) {
	t.Players = append(t.Players, c)
	t.TotalSkill += c.Skill
}

// TeamSet is the single current generation result; it is replaced wholesale.
type TeamSet struct {
	Teams       []Team
	GeneratedAt time.Time
	GeneratedBy string
}

func (s TeamSet) Validate() error {
	if len(s.Teams) < MinTeams || len(s.Teams) > MaxTeams {
		return fmt.Errorf("%w: team count %d outside [%d,%d]", ErrInvalidTeamSet, len(s.Teams), MinTeams, MaxTeams)
	}

	seen := make(map[string]struct{})
	for _, team := range s.Teams {
		total := 0
		for _, c := range team.Players {
			if _, dup := seen[c.PlayerID]; dup {
				return fmt.Errorf("%w: player %s on more than one team", ErrInvalidTeamSet, c.PlayerID)
			}
			seen[c.PlayerID] = struct{}{}
			total += c.Skill
		}
		if total != team.TotalSkill {
			return fmt.Errorf("%w: team %s total %d, players sum to %d", ErrInvalidTeamSet, team.Name, team.TotalSkill, total)
		}
	}
	return nil
}

// TeamOf returns the color of the team containing playerID.
func (s TeamSet) TeamOf(playerID string) (ColorKey, bool) {
	for _, team := range s.Teams {
		for _, c := range team.Players {
			if c.PlayerID == playerID {
				return team.Color, true
			}
		}
	}
	return "", false
}

// RemovePlayer drops playerID from its team and recomputes that team's total.
func (s TeamSet) RemovePlayer(playerID string) (TeamSet, bool) {
	out := TeamSet{GeneratedAt: s.GeneratedAt, GeneratedBy: s.GeneratedBy, Teams: make([]Team, 0, len(s.Teams))}
	removed := false
	for _, team := range s.Teams {
		next := Team{Name: team.Name, Color: team.Color, Players: make([]Candidate, 0, len(team.Players))}
		for _, c := range team.Players {
			if c.PlayerID == playerID {
				removed = true
				continue
			}
			next.add(c)
		}
		out.Teams = append(out.Teams, next)
	}
	return out, removed
}

// Spread is max(total) - min(total).
func (s TeamSet) Spread() int {
	if len(s.Teams) == 0 {
		return 0
	}
	lo, hi := s.Teams[0].TotalSkill, s.Teams[0].TotalSkill
	for _, team := range s.Teams[1:] {
		lo = min(lo, team.TotalSkill)
		hi = max(hi, team.TotalSkill)
	}
	return hi - lo
}

// Overrides maps player id to a forced team color.
type Overrides map[string]ColorKey
