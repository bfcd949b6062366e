package httpapi

import (
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

type registerPlayerRequest struct {
	Name         string `json:"name" validate:"required,max=60"`
	Position     string `json:"position" validate:"required"`
	SkillLevel   int    `json:"skill_level" validate:"required,min=1,max=10"`
	SelfRegister bool   `json:"self_register"`
}

type updatePlayerRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=60"`
	Position   *string `json:"position"`
	SkillLevel *int    `json:"skill_level" validate:"omitempty,min=1,max=10"`
}

type setAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type generateTeamsRequest struct {
	TeamCount int `json:"team_count"`
}

type setTeamAssignmentRequest struct {
	Color string `json:"color"`
}

type pointsRequest struct {
	Points int    `json:"points" validate:"required"`
	Reason string `json:"reason" validate:"required,max=200"`
}

type markAttendanceRequest struct {
	MatchDate string `json:"match_date" validate:"required,datetime=2006-01-02"`
}

type nominateRequest struct {
	NominatedPlayerID string `json:"nominated_player_id" validate:"required"`
	Reason            string `json:"reason" validate:"omitempty,max=280"`
}

type submitStatsRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	GameDate string `json:"game_date" validate:"omitempty,datetime=2006-01-02"`
	Goals    int    `json:"goals" validate:"min=0,max=30"`
	Assists  int    `json:"assists" validate:"min=0,max=30"`
}

type reviewSubmissionRequest struct {
	Note string `json:"note" validate:"omitempty,max=280"`
}

type playerDTO struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Position           string    `json:"position"`
	SkillLevel         int       `json:"skill_level"`
	OwnerUserID        string    `json:"owner_user_id,omitempty"`
	RegisteredByUserID string    `json:"registered_by_user_id,omitempty"`
	Available          bool      `json:"available"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type teamMemberDTO struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Skill    int    `json:"skill"`
}

type teamDTO struct {
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	TotalSkill int             `json:"total_skill"`
	Players    []teamMemberDTO `json:"players"`
}

type teamSetDTO struct {
	Teams       []teamDTO `json:"teams"`
	SkillSpread int       `json:"skill_spread"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by"`
}

type ledgerEntryDTO struct {
	Kind         string    `json:"kind"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason"`
	AddedBy      string    `json:"added_by"`
	AddedAt      time.Time `json:"added_at"`
	MatchDate    string    `json:"match_date,omitempty"`
	Automatic    bool      `json:"automatic,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Goals        int       `json:"goals,omitempty"`
	Assists      int       `json:"assists,omitempty"`
}

type ledgerDTO struct {
	PlayerID      string           `json:"player_id"`
	TotalPoints   int              `json:"total_points"`
	MOTMAwards    int              `json:"motm_awards"`
	Goals         int              `json:"goals"`
	Assists       int              `json:"assists"`
	PointsHistory []ledgerEntryDTO `json:"points_history"`
}

type leaderboardRowDTO struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
	MOTMAwards  int    `json:"motm_awards"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
}

type attendanceResultDTO struct {
	MatchDate       string `json:"match_date"`
	Skipped         bool   `json:"skipped"`
	SkipReason      string `json:"skip_reason,omitempty"`
	Eligible        int    `json:"eligible"`
	Credited        int    `json:"credited"`
	AlreadyCredited int    `json:"already_credited"`
	Failed          int    `json:"failed"`
}

type nominationDTO struct {
	ID                string    `json:"id"`
	GameDate          string    `json:"game_date"`
	NominatedPlayerID string    `json:"nominated_player_id"`
	NominatedBy       string    `json:"nominated_by"`
	Reason            string    `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

type awardDTO struct {
	GameDate  string    `json:"game_date"`
	PlayerID  string    `json:"player_id"`
	VoteCount int       `json:"vote_count"`
	Tied      []string  `json:"tied,omitempty"`
	AwardedAt time.Time `json:"awarded_at"`
}

type resolveResultDTO struct {
	Award   awardDTO       `json:"award"`
	Created bool           `json:"created"`
	Counts  map[string]int `json:"counts,omitempty"`
}

type windowDTO struct {
	GameDate           string     `json:"game_date"`
	State              string     `json:"state"`
	OpensAt            *time.Time `json:"opens_at,omitempty"`
	ClosesAt           *time.Time `json:"closes_at,omitempty"`
	AcceptsNominations bool       `json:"accepts_nominations"`
}

type submissionDTO struct {
	ID          string     `json:"id"`
	PlayerID    string     `json:"player_id"`
	GameDate    string     `json:"game_date"`
	Goals       int        `json:"goals"`
	Assists     int        `json:"assists"`
	SubmittedBy string     `json:"submitted_by"`
	Status      string     `json:"status"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

type awardJobResultDTO struct {
	RanAt      time.Time           `json:"ran_at"`
	Attendance attendanceResultDTO `json:"attendance"`
	Resolved   []string            `json:"resolved"`
	Pending    []string            `json:"pending"`
	Shared     bool                `json:"shared"`
}

type feedEventDTO struct {
	Collection  string    `json:"collection"`
	Revision    uint64    `json:"revision"`
	PublishedAt time.Time `json:"published_at"`
	Value       any       `json:"value"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Position:           string(p.Position),
		SkillLevel:         p.Skill(),
		OwnerUserID:        p.OwnerUserID,
		RegisteredByUserID: p.RegisteredByUserID,
		Available:          p.Available,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, p := range items {
		out = append(out, playerToDTO(p))
	}
	return out
}

func teamSetToDTO(set teambalance.TeamSet) teamSetDTO {
	out := teamSetDTO{
		Teams:       make([]teamDTO, 0, len(set.Teams)),
		SkillSpread: set.Spread(),
		GeneratedAt: set.GeneratedAt,
		GeneratedBy: set.GeneratedBy,
	}
	for _, team := range set.Teams {
		item := teamDTO{
			Name:       team.Name,
			Color:      string(team.Color),
			TotalSkill: team.TotalSkill,
			Players:    make([]teamMemberDTO, 0, len(team.Players)),
		}
		for _, c := range team.Players {
			item.Players = append(item.Players, teamMemberDTO{
				PlayerID: c.PlayerID,
				Name:     c.Name,
				Position: string(c.Position),
				Skill:    c.Skill,
			})
		}
		out.Teams = append(out.Teams, item)
	}
	return out
}

func overridesToDTO(overrides teambalance.Overrides) map[string]string {
	out := make(map[string]string, len(overrides))
	for playerID, color := range overrides {
		out[playerID] = string(color)
	}
	return out
}

func ledgerToDTO(l ledger.Ledger) ledgerDTO {
	out := ledgerDTO{
		PlayerID:      l.PlayerID,
		TotalPoints:   l.TotalPoints,
		MOTMAwards:    l.MOTMAwards,
		Goals:         l.Goals,
		Assists:       l.Assists,
		PointsHistory: make([]ledgerEntryDTO, 0, len(l.History)),
	}
	for _, e := range l.History {
		out.PointsHistory = append(out.PointsHistory, ledgerEntryDTO{
			Kind:         string(e.Kind),
			Points:       e.Points,
			Reason:       e.Reason,
			AddedBy:      e.AddedBy,
			AddedAt:      e.AddedAt,
			MatchDate:    e.MatchDate,
			Automatic:    e.Automatic,
			SubmissionID: e.SubmissionID,
			Goals:        e.Goals,
			Assists:      e.Assists,
		})
	}
	return out
}

func ledgersToDTO(items []ledger.Ledger) []ledgerDTO {
	out := make([]ledgerDTO, 0, len(items))
	for _, l := range items {
		out = append(out, ledgerToDTO(l))
	}
	return out
}

func leaderboardToDTO(rows []usecase.LeaderboardRow) []leaderboardRowDTO {
	out := make([]leaderboardRowDTO, 0, len(rows))
	for i, row := range rows {
		out = append(out, leaderboardRowDTO{
			Rank:        i + 1,
			PlayerID:    row.PlayerID,
			Name:        row.Name,
			TotalPoints: row.TotalPoints,
			MOTMAwards:  row.MOTMAwards,
			Goals:       row.Goals,
			Assists:     row.Assists,
		})
	}
	return out
}

func attendanceToDTO(r usecase.AttendanceResult) attendanceResultDTO {
	return attendanceResultDTO{
		MatchDate:       r.MatchDate,
		Skipped:         r.Skipped,
		SkipReason:      r.SkipReason,
		Eligible:        r.Eligible,
		Credited:        r.Credited,
		AlreadyCredited: r.AlreadyCredited,
		Failed:          r.Failed,
	}
}

func nominationToDTO(n motm.Nomination) nominationDTO {
	return nominationDTO{
		ID:                n.ID,
		GameDate:          n.GameDate,
		NominatedPlayerID: n.NominatedPlayerID,
		NominatedBy:       n.NominatedBy,
		Reason:            n.Reason,
		CreatedAt:         n.CreatedAt,
	}
}

func awardToDTO(a motm.Award) awardDTO {
	return awardDTO{
		GameDate:  a.GameDate,
		PlayerID:  a.PlayerID,
		VoteCount: a.VoteCount,
		Tied:      a.Tied,
		AwardedAt: a.AwardedAt,
	}
}

func windowToDTO(w motm.Window) windowDTO {
	out := windowDTO{
		GameDate:           w.GameDate,
		State:              string(w.State),
		AcceptsNominations: w.AcceptsNominations(),
	}
	if !w.OpensAt.IsZero() {
		opens, closes := w.OpensAt, w.ClosesAt
		out.OpensAt, out.ClosesAt = &opens, &closes
	}
	return out
}

func submissionToDTO(s submission.Submission) submissionDTO {
	out := submissionDTO{
		ID:          s.ID,
		PlayerID:    s.PlayerID,
		GameDate:    s.GameDate,
		Goals:       s.Goals,
		Assists:     s.Assists,
		SubmittedBy: s.SubmittedBy,
		Status:      string(s.Status),
		Note:        s.Note,
		CreatedAt:   s.CreatedAt,
		ReviewedBy:  s.ReviewedBy,
	}
	if !s.ReviewedAt.IsZero() {
		reviewed := s.ReviewedAt
		out.ReviewedAt = &reviewed
	}
	return out
}
