package reconcile

import (
	"sort"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

// TeamsView is the teams collection: the current set, if one exists.
type TeamsView struct {
	Set    teambalance.TeamSet
	Exists bool
}

// PlayersEqual compares scalar fields keyed by id. Order and timestamps are ignored.
func PlayersEqual(a, b []player.Player) bool {
	if len(a) != len(b) {
		return false
	}
	left, right := sortedPlayers(a), sortedPlayers(b)
	for i := range left {
		x, y := left[i], right[i]
		if x.ID != y.ID ||
			x.Name != y.Name ||
			x.Position != y.Position ||
			x.SkillLevel != y.SkillLevel ||
			x.OwnerUserID != y.OwnerUserID ||
			x.RegisteredByUserID != y.RegisteredByUserID ||
			x.Available != y.Available {
			return false
		}
	}
	return true
}

func sortedPlayers(in []player.Player) []player.Player {
	out := append([]player.Player(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeamsEqual compares team scalars and membership as sorted id sets, team by team.
func TeamsEqual(a, b TeamsView) bool {
	if a.Exists != b.Exists {
		return false
	}
	if !a.Exists {
		return true
	}
	if len(a.Set.Teams) != len(b.Set.Teams) || a.Set.GeneratedBy != b.Set.GeneratedBy || !a.Set.GeneratedAt.Equal(b.Set.GeneratedAt) {
		return false
	}
	for i := range a.Set.Teams {
		x, y := a.Set.Teams[i], b.Set.Teams[i]
		if x.Name != y.Name || x.Color != y.Color || x.TotalSkill != y.TotalSkill {
			return false
		}
		if !sameIDs(memberIDs(x), memberIDs(y)) {
			return false
		}
	}
	return true
}

func memberIDs(team teambalance.Team) []string {
	ids := make([]string, 0, len(team.Players))
	for _, c := range team.Players {
		ids = append(ids, c.PlayerID)
	}
	sort.Strings(ids)
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LedgersEqual compares per-player totals and history length.
func LedgersEqual(a, b []ledger.Ledger) bool {
	if len(a) != len(b) {
		return false
	}
	left, right := sortedLedgers(a), sortedLedgers(b)
	for i := range left {
		x, y := left[i], right[i]
		if x.PlayerID != y.PlayerID ||
			x.TotalPoints != y.TotalPoints ||
			x.MOTMAwards != y.MOTMAwards ||
			x.Goals != y.Goals ||
			x.Assists != y.Assists ||
			len(x.History) != len(y.History) {
			return false
		}
	}
	return true
}

func sortedLedgers(in []ledger.Ledger) []ledger.Ledger {
	out := append([]ledger.Ledger(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}
