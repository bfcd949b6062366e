package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardJobService_Run(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedPlayer(t, "p1", "One", 5, true)
	env.seedPlayer(t, "p2", "Two", 6, true)

	env.clock.Set(beforeKickoff)
	res, err := env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Attendance.Skipped)
	assert.Empty(t, res.Resolved)

	env.clock.Set(afterKickoff)
	res, err = env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attendance.Credited)
	assert.Empty(t, res.Resolved, "voting is still open")

	_, err = env.motm.Nominate(ctx, alice, NominateInput{NominatedPlayerID: "p2"})
	require.NoError(t, err)

	res, err = env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Attendance.Credited)
	assert.Equal(t, 2, res.Attendance.AlreadyCredited)

	env.clock.Set(nextMorning)
	res, err = env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.True(t, res.Attendance.Skipped)
	assert.Equal(t, []string{gameDate}, res.Resolved)

	res, err = env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Resolved)

	l, err := env.ledger.GetLedger(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, l.MOTMAwards)
	assert.Equal(t, 2, l.TotalPoints)
}

func TestAwardJobService_PendingWithoutNominations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.clock.Set(nextMorning)

	res, err := env.awardJob.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{gameDate}, res.Pending)
	assert.Empty(t, res.Resolved)
}

func TestAwardJobService_ClosedGameDates(t *testing.T) {
	env := newTestEnv(t)

	got := env.awardJob.closedGameDates(nextMorning.AddDate(0, 0, 7))
	assert.Equal(t, []string{"2026-10-23"}, got)

	env.awardJob.cfg.LookbackDays = 8
	got = env.awardJob.closedGameDates(nextMorning.AddDate(0, 0, 7))
	assert.Equal(t, []string{gameDate, "2026-10-23"}, got)
}
