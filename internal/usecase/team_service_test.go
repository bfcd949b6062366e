package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

func TestTeamService_GenerateTeams(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	skills := map[string]int{"pA": 10, "pB": 9, "pC": 8, "pD": 7, "pE": 3, "pF": 2}
	for id, skill := range skills {
		env.seedPlayer(t, id, id, skill, true)
	}
	env.seedPlayer(t, "pOut", "Out", 10, false)

	set, err := env.teams.GenerateTeams(ctx, admin, 2)
	require.NoError(t, err)
	require.Len(t, set.Teams, 2)
	assert.Equal(t, "Red", set.Teams[0].Name)
	assert.Equal(t, "Blue", set.Teams[1].Name)
	assert.Equal(t, admin.UserID, set.GeneratedBy)

	total := 0
	members := 0
	for _, team := range set.Teams {
		total += team.TotalSkill
		members += len(team.Players)
	}
	assert.Equal(t, 39, total)
	assert.Equal(t, 6, members)
	_, benched := set.TeamOf("pOut")
	assert.False(t, benched)

	stored, exists, err := env.teamSets.GetCurrent(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, set.Spread(), stored.Spread())
}

func TestTeamService_GenerateTeamsClampsTeamCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		env.seedPlayer(t, id, "Player "+id, i+1, true)
	}

	set, err := env.teams.GenerateTeams(ctx, admin, 9)
	require.NoError(t, err)
	assert.Len(t, set.Teams, teambalance.MaxTeams)

	set, err = env.teams.GenerateTeams(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, set.Teams, teambalance.MinTeams)
}

func TestTeamService_GenerateTeamsFailureKeepsPreviousSet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.seedPlayer(t, "p1", "One", 5, true)
	env.seedPlayer(t, "p2", "Two", 6, true)
	env.seedPlayer(t, "p3", "Three", 7, true)
	previous, err := env.teams.GenerateTeams(ctx, admin, 2)
	require.NoError(t, err)

	_, err = env.teams.GenerateTeams(ctx, admin, 4)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, teambalance.ErrInsufficientPlayers) {
		t.Fatalf("expected insufficient players, got %v", err)
	}

	current, exists, err := env.teamSets.GetCurrent(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Len(t, current.Teams, len(previous.Teams))
}

func TestTeamService_OverridesAreHonored(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.seedPlayer(t, "star", "Star", 10, true)
	env.seedPlayer(t, "sub", "Sub", 9, true)
	env.seedPlayer(t, "p3", "Three", 2, true)
	env.seedPlayer(t, "p4", "Four", 1, true)

	_, err := env.teams.SetOverride(ctx, admin, "star", "Blue")
	require.NoError(t, err)
	_, err = env.teams.SetOverride(ctx, admin, "sub", "blue")
	require.NoError(t, err)

	set, err := env.teams.GenerateTeams(ctx, admin, 2)
	require.NoError(t, err)

	color, ok := set.TeamOf("star")
	require.True(t, ok)
	assert.Equal(t, teambalance.ColorBlue, color)
	color, _ = set.TeamOf("sub")
	assert.Equal(t, teambalance.ColorBlue, color)

	overrides, err := env.teams.SetOverride(ctx, admin, "sub", "")
	require.NoError(t, err)
	assert.NotContains(t, overrides, "sub")

	require.NoError(t, env.teams.ClearOverrides(ctx, admin))
	overrides, err = env.teams.GetOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}

func TestTeamService_SetOverrideValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "One", 5, true)

	_, err := env.teams.SetOverride(ctx, admin, "p1", "magenta")
	if !errors.Is(err, teambalance.ErrUnknownColor) {
		t.Fatalf("expected ErrUnknownColor, got %v", err)
	}
	_, err = env.teams.SetOverride(ctx, admin, "ghost", "red")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = env.teams.SetOverride(ctx, alice, "p1", "red")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTeamService_GetCurrentTeamsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.teams.GetCurrentTeams(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}
