package document

import (
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

const (
	CollectionPlayers         = "players"
	CollectionTeams           = "teams"
	CollectionTeamAssignments = "teamAssignments"
	CollectionLedger          = "playerPoints"
	CollectionNominations     = "manOfTheMatch"
	CollectionAwards          = "motmAwards"
	CollectionSubmissions     = "goalsAssistsSubmissions"
	CollectionSubmissionSlots = "submissionSlots"

	currentDocID = "current"
)

type playerDocument struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	NameKey            string    `json:"nameKey"`
	Position           string    `json:"position"`
	SkillLevel         int       `json:"skillLevel"`
	OwnerUserID        string    `json:"ownerUserId,omitempty"`
	RegisteredByUserID string    `json:"registeredByUserId,omitempty"`
	Available          bool      `json:"available"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func playerToDocument(p player.Player) playerDocument {
	return playerDocument{
		ID:                 p.ID,
		Name:               p.Name,
		NameKey:            player.NormalizeName(p.Name),
		Position:           string(p.Position),
		SkillLevel:         p.SkillLevel,
		OwnerUserID:        p.OwnerUserID,
		RegisteredByUserID: p.RegisteredByUserID,
		Available:          p.Available,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (d playerDocument) toDomain() player.Player {
	return player.Player{
		ID:                 d.ID,
		Name:               d.Name,
		Position:           player.Position(d.Position),
		SkillLevel:         d.SkillLevel,
		OwnerUserID:        d.OwnerUserID,
		RegisteredByUserID: d.RegisteredByUserID,
		Available:          d.Available,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type teamMemberDocument struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Position   string `json:"position"`
	SkillLevel int    `json:"skillLevel"`
}

type teamDocument struct {
	Name       string               `json:"name"`
	Color      string               `json:"color"`
	TotalSkill int                  `json:"totalSkill"`
	Players    []teamMemberDocument `json:"players"`
}

type teamSetDocument struct {
	Teams       []teamDocument `json:"teams"`
	TeamCount   int            `json:"teamCount"`
	GeneratedAt time.Time      `json:"generatedAt"`
	GeneratedBy string         `json:"generatedBy"`
}

func teamSetToDocument(set teambalance.TeamSet) teamSetDocument {
	out := teamSetDocument{
		Teams:       make([]teamDocument, 0, len(set.Teams)),
		TeamCount:   len(set.Teams),
		GeneratedAt: set.GeneratedAt,
		GeneratedBy: set.GeneratedBy,
	}
	for _, team := range set.Teams {
		doc := teamDocument{
			Name:       team.Name,
			Color:      string(team.Color),
			TotalSkill: team.TotalSkill,
			Players:    make([]teamMemberDocument, 0, len(team.Players)),
		}
		for _, c := range team.Players {
			doc.Players = append(doc.Players, teamMemberDocument{
				ID:         c.PlayerID,
				Name:       c.Name,
				Position:   string(c.Position),
				SkillLevel: c.Skill,
			})
		}
		out.Teams = append(out.Teams, doc)
	}
	return out
}

func (d teamSetDocument) toDomain() teambalance.TeamSet {
	out := teambalance.TeamSet{
		Teams:       make([]teambalance.Team, 0, len(d.Teams)),
		GeneratedAt: d.GeneratedAt,
		GeneratedBy: d.GeneratedBy,
	}
	for _, team := range d.Teams {
		t := teambalance.Team{
			Name:       team.Name,
			Color:      teambalance.ColorKey(team.Color),
			TotalSkill: team.TotalSkill,
			Players:    make([]teambalance.Candidate, 0, len(team.Players)),
		}
		for _, m := range team.Players {
			t.Players = append(t.Players, teambalance.Candidate{
				PlayerID: m.ID,
				Name:     m.Name,
				Position: player.Position(m.Position),
				Skill:    m.SkillLevel,
			})
		}
		out.Teams = append(out.Teams, t)
	}
	return out
}

type overridesDocument struct {
	Assignments map[string]string `json:"assignments"`
}

type entryDocument struct {
	Kind         string    `json:"kind"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason,omitempty"`
	AddedBy      string    `json:"addedBy,omitempty"`
	AddedAt      time.Time `json:"addedAt"`
	MatchDate    string    `json:"matchDate,omitempty"`
	Automatic    bool      `json:"automatic,omitempty"`
	SubmissionID string    `json:"submissionId,omitempty"`
	Goals        int       `json:"goals,omitempty"`
	Assists      int       `json:"assists,omitempty"`
}

type ledgerDocument struct {
	PlayerID      string          `json:"playerId"`
	TotalPoints   int             `json:"totalPoints"`
	MOTMAwards    int             `json:"motmAwards"`
	Goals         int             `json:"goals"`
	Assists       int             `json:"assists"`
	PointsHistory []entryDocument `json:"pointsHistory"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func ledgerToDocument(l ledger.Ledger) ledgerDocument {
	out := ledgerDocument{
		PlayerID:      l.PlayerID,
		TotalPoints:   l.TotalPoints,
		MOTMAwards:    l.MOTMAwards,
		Goals:         l.Goals,
		Assists:       l.Assists,
		PointsHistory: make([]entryDocument, 0, len(l.History)),
		UpdatedAt:     l.UpdatedAt,
	}
	for _, e := range l.History {
		out.PointsHistory = append(out.PointsHistory, entryDocument{
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

func (d ledgerDocument) toDomain(version int64) ledger.Ledger {
	out := ledger.Ledger{
		PlayerID:    d.PlayerID,
		TotalPoints: d.TotalPoints,
		MOTMAwards:  d.MOTMAwards,
		Goals:       d.Goals,
		Assists:     d.Assists,
		History:     make([]ledger.Entry, 0, len(d.PointsHistory)),
		Version:     version,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, e := range d.PointsHistory {
		out.History = append(out.History, ledger.Entry{
			Kind:         ledger.Kind(e.Kind),
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

type nominationDocument struct {
	ID                string    `json:"id"`
	GameDate          string    `json:"gameDate"`
	NominatedPlayerID string    `json:"nominatedPlayerId"`
	NominatedBy       string    `json:"nominatedBy"`
	Reason            string    `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func nominationToDocument(n motm.Nomination) nominationDocument {
	return nominationDocument{
		ID:                n.ID,
		GameDate:          n.GameDate,
		NominatedPlayerID: n.NominatedPlayerID,
		NominatedBy:       n.NominatedBy,
		Reason:            n.Reason,
		CreatedAt:         n.CreatedAt,
	}
}

func (d nominationDocument) toDomain() motm.Nomination {
	return motm.Nomination{
		ID:                d.ID,
		GameDate:          d.GameDate,
		NominatedPlayerID: d.NominatedPlayerID,
		NominatedBy:       d.NominatedBy,
		Reason:            d.Reason,
		CreatedAt:         d.CreatedAt,
	}
}

type awardDocument struct {
	GameDate  string    `json:"gameDate"`
	PlayerID  string    `json:"playerId"`
	VoteCount int       `json:"voteCount"`
	Tied      []string  `json:"tied,omitempty"`
	AwardedAt time.Time `json:"awardedAt"`
}

func awardToDocument(a motm.Award) awardDocument {
	return awardDocument{
		GameDate:  a.GameDate,
		PlayerID:  a.PlayerID,
		VoteCount: a.VoteCount,
		Tied:      append([]string(nil), a.Tied...),
		AwardedAt: a.AwardedAt,
	}
}

func (d awardDocument) toDomain() motm.Award {
	return motm.Award{
		GameDate:  d.GameDate,
		PlayerID:  d.PlayerID,
		VoteCount: d.VoteCount,
		Tied:      append([]string(nil), d.Tied...),
		AwardedAt: d.AwardedAt,
	}
}

type submissionDocument struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"playerId"`
	GameDate    string    `json:"gameDate"`
	Goals       int       `json:"goals"`
	Assists     int       `json:"assists"`
	SubmittedBy string    `json:"submittedBy"`
	Status      string    `json:"status"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ReviewedBy  string    `json:"reviewedBy,omitempty"`
	ReviewedAt  time.Time `json:"reviewedAt"`
}

// submissionSlotDocument holds a player's claim on a game date while its
// submission is pending or approved.
type submissionSlotDocument struct {
	SubmissionID string    `json:"submissionId"`
	PlayerID     string    `json:"playerId"`
	GameDate     string    `json:"gameDate"`
	Status       string    `json:"status"`
	ClaimedAt    time.Time `json:"claimedAt"`
}

func submissionToDocument(s submission.Submission) submissionDocument {
	return submissionDocument{
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
		ReviewedAt:  s.ReviewedAt,
	}
}

func (d submissionDocument) toDomain() submission.Submission {
	return submission.Submission{
		ID:          d.ID,
		PlayerID:    d.PlayerID,
		GameDate:    d.GameDate,
		Goals:       d.Goals,
		Assists:     d.Assists,
		SubmittedBy: d.SubmittedBy,
		Status:      submission.Status(d.Status),
		Note:        d.Note,
		CreatedAt:   d.CreatedAt,
		ReviewedBy:  d.ReviewedBy,
		ReviewedAt:  d.ReviewedAt,
	}
}
