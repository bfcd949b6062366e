package teambalance

import (
	"fmt"
	"sort"
)

// Balance partitions candidates into k skill-balanced teams.
//
// Candidates are ordered by skill descending (stable). Players whose override names a
// color present in this k-team configuration are placed first; everyone else is then
// greedily placed on the team with the lowest total skill, then fewest players, then
// lowest palette index. Overrides naming a color outside the configuration are ignored.
func Balance(candidates []Candidate, k int, overrides Overrides) ([]Team, error) {
	k = ClampTeamCount(k)
	required := max(k, MinTeams)
	if len(candidates) < required {
		return nil, fmt.Errorf("%w: need at least %d for %d teams, have %d", ErrInsufficientPlayers, required, k, len(candidates))
	}

	identities := Identities(k)
	teams := make([]Team, len(identities))
	indexByColor := make(map[ColorKey]int, len(identities))
	for i, id := range identities {
		teams[i] = Team{Name: id.Name, Color: id.Color, Players: make([]Candidate, 0, len(candidates)/k+1)}
		indexByColor[id.Color] = i
	}

	ordered := append([]Candidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Skill > ordered[j].Skill
	})

	free := make([]Candidate, 0, len(ordered))
	for _, c := range ordered {
		if color, ok := overrides[c.PlayerID]; ok {
			if idx, exists := indexByColor[color]; exists {
				teams[idx].add(c)
				continue
			}
		}
		free = append(free, c)
	}

	for _, c := range free {
		teams[weakestTeam(teams)].add(c)
	}

	return teams, nil
}

func weakestTeam(teams []Team) int {
	best := 0
	for i := 1; i < len(teams); i++ {
		switch {
		case teams[i].TotalSkill < teams[best].TotalSkill:
			best = i
		case teams[i].TotalSkill == teams[best].TotalSkill && len(teams[i].Players) < len(teams[best].Players):
			best = i
		}
	}
	return best
}
