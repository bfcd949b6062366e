package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

const testNS = docstore.Namespace("club")

var testNow = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func TestPlayerRepository(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewPlayerRepository(store, testNS)

	for _, p := range []player.Player{
		{ID: "p1", Name: "Ana Silva", Position: player.PositionStriker, SkillLevel: 8, Available: true, CreatedAt: testNow},
		{ID: "p2", Name: "Bruno", Position: player.PositionGoalkeeper, SkillLevel: 6, CreatedAt: testNow},
	} {
		require.NoError(t, repo.Upsert(ctx, p))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "p1", all[0].ID)

	available, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, player.PositionStriker, available[0].Position)

	found, ok, err := repo.FindByName(ctx, "  ana   SILVA ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", found.ID)

	require.NoError(t, repo.SetAvailability(ctx, "p2", true))
	got, ok, err := repo.GetByID(ctx, "p2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Available)
	assert.Equal(t, "Bruno", got.Name)

	assert.Error(t, repo.SetAvailability(ctx, "missing", true))

	require.NoError(t, repo.Delete(ctx, "p2"))
	_, ok, err = repo.GetByID(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTeamSetRepository_ReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTeamSetRepository(docstore.NewMemory(), testNS)

	_, ok, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	set := teambalance.TeamSet{
		GeneratedAt: testNow,
		GeneratedBy: "admin",
		Teams: []teambalance.Team{
			{Name: "Red", Color: teambalance.ColorRed, TotalSkill: 9, Players: []teambalance.Candidate{{PlayerID: "p1", Name: "Ana", Position: player.PositionStriker, Skill: 9}}},
			{Name: "Blue", Color: teambalance.ColorBlue, TotalSkill: 8, Players: []teambalance.Candidate{{PlayerID: "p2", Name: "Bo", Position: player.PositionGoalkeeper, Skill: 8}}},
		},
	}
	require.NoError(t, repo.ReplaceCurrent(ctx, set))

	got, ok, err := repo.GetCurrent(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, set.Teams, got.Teams)
	assert.True(t, set.GeneratedAt.Equal(got.GeneratedAt))

	require.NoError(t, repo.DeleteCurrent(ctx))
	_, ok, err = repo.GetCurrent(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverrideRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOverrideRepository(docstore.NewMemory(), testNS)

	empty, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.Replace(ctx, teambalance.Overrides{"p1": teambalance.ColorRed, "p2": teambalance.ColorGreen}))
	require.NoError(t, repo.Replace(ctx, teambalance.Overrides{"p3": teambalance.ColorBlue}))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, teambalance.Overrides{"p3": teambalance.ColorBlue}, got)
}

func TestLedgerRepository_VersionGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewLedgerRepository(docstore.NewMemory(), testNS)

	l, err := ledger.New("p1").Apply(ledger.NewAttendanceEntry("2026-10-16", testNow), testNow)
	require.NoError(t, err)
	saved, err := repo.Save(ctx, l)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	// A second writer that also started from "absent" loses.
	_, err = repo.Save(ctx, l)
	assert.True(t, errors.Is(err, ledger.ErrConcurrentUpdate), "got %v", err)

	stale := saved
	next, err := saved.Apply(ledger.NewAttendanceEntry("2026-10-23", testNow), testNow)
	require.NoError(t, err)
	_, err = repo.Save(ctx, next)
	require.NoError(t, err)

	_, err = repo.Save(ctx, stale)
	assert.True(t, errors.Is(err, ledger.ErrConcurrentUpdate), "got %v", err)

	got, ok, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.TotalPoints)
	assert.Len(t, got.History, 2)
	assert.Equal(t, ledger.KindAttendance, got.History[1].Kind)
	require.NoError(t, got.Validate())

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(2), all[0].Version)
}

func TestNominationRepository_OnePerVoterPerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewNominationRepository(docstore.NewMemory(), testNS)

	n, err := repo.Create(ctx, motm.Nomination{GameDate: "2026-10-16", NominatedPlayerID: "p1", NominatedBy: "u1", CreatedAt: testNow})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16_u1", n.ID)

	_, err = repo.Create(ctx, motm.Nomination{GameDate: "2026-10-16", NominatedPlayerID: "p2", NominatedBy: "u1", CreatedAt: testNow})
	assert.True(t, errors.Is(err, motm.ErrAlreadyNominated), "got %v", err)

	_, err = repo.Create(ctx, motm.Nomination{GameDate: "2026-10-23", NominatedPlayerID: "p2", NominatedBy: "u1", CreatedAt: testNow})
	require.NoError(t, err)

	items, err := repo.ListByGameDate(ctx, "2026-10-16")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].NominatedPlayerID)
}

func TestAwardRepository_CreateOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewAwardRepository(docstore.NewMemory(), testNS)

	first, created, err := repo.Create(ctx, motm.Award{GameDate: "2026-10-16", PlayerID: "A", VoteCount: 3, Tied: []string{"A", "B"}, AwardedAt: testNow})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.Create(ctx, motm.Award{GameDate: "2026-10-16", PlayerID: "B", VoteCount: 3, AwardedAt: testNow})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.PlayerID, second.PlayerID)
	assert.Equal(t, []string{"A", "B"}, second.Tied)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmissionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSubmissionRepository(docstore.NewMemory(), testNS)

	s := submission.Submission{ID: "s1", PlayerID: "p1", GameDate: "2026-10-16", Goals: 1, SubmittedBy: "u1", Status: submission.StatusPending, CreatedAt: testNow}
	require.NoError(t, repo.Create(ctx, s))
	assert.Error(t, repo.Create(ctx, s))

	pending, err := repo.ListByStatus(ctx, submission.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	reviewed, err := s.Review(submission.StatusApproved, "admin", "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, reviewed))

	pending, err = repo.ListByStatus(ctx, submission.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	byDay, err := repo.ListByPlayerAndDate(ctx, "p1", "2026-10-16")
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, submission.StatusApproved, byDay[0].Status)
	assert.Equal(t, "admin", byDay[0].ReviewedBy)
}

func TestSubmissionRepository_SlotPerPlayerAndDate(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewSubmissionRepository(store, testNS)

	first := submission.Submission{ID: "s1", PlayerID: "p1", GameDate: "2026-10-16", Goals: 1, SubmittedBy: "u1", Status: submission.StatusPending, CreatedAt: testNow}
	require.NoError(t, repo.Create(ctx, first))

	second := first
	second.ID = "s2"
	require.ErrorIs(t, repo.Create(ctx, second), submission.ErrPendingExists)

	otherDay := first
	otherDay.ID = "s3"
	otherDay.GameDate = "2026-10-23"
	require.NoError(t, repo.Create(ctx, otherDay))

	_, exists, err := repo.Get(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, exists, "losing claim must not leave a submission behind")

	rejected, err := first.Review(submission.StatusRejected, "admin", "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, rejected))

	slot, exists, err := store.Get(ctx, testNS.Doc(CollectionSubmissionSlots, submission.SlotID("p1", "2026-10-16")))
	require.NoError(t, err)
	assert.False(t, exists, "rejection frees the slot: %s", slot.Body)

	require.NoError(t, repo.Create(ctx, second))
	approved, err := second.Review(submission.StatusApproved, "admin", "", testNow)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, approved))

	third := first
	third.ID = "s4"
	require.ErrorIs(t, repo.Create(ctx, third), submission.ErrAlreadyApproved)

	// A stale rejection of the first claim must not free the approved slot.
	require.NoError(t, repo.Update(ctx, rejected))
	require.ErrorIs(t, repo.Create(ctx, third), submission.ErrAlreadyApproved)
}
