package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/infrastructure/repository/document"
)

var (
	admin = Actor{UserID: "admin-1", Admin: true}
	alice = Actor{UserID: "user-alice"}
	bob   = Actor{UserID: "user-bob"}
)

// 2026-10-16 is a Friday; the club plays Fridays at 19:30 UTC.
var (
	gameDay       = time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	beforeKickoff = gameDay.Add(18 * time.Hour)
	afterKickoff  = gameDay.Add(20 * time.Hour)
	nextMorning   = gameDay.Add(33 * time.Hour)
)

const gameDate = "2026-10-16"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%03d", g.n.Add(1)), nil
}

type testEnv struct {
	store *docstore.Memory
	clock *testClock
	sched schedule.Schedule

	players     *document.PlayerRepository
	teamSets    *document.TeamSetRepository
	overrides   *document.OverrideRepository
	ledgers     *document.LedgerRepository
	nominations *document.NominationRepository
	awards      *document.AwardRepository
	submissions *document.SubmissionRepository

	roster   *RosterService
	teams    *TeamService
	ledger   *LedgerService
	motm     *NominationService
	stats    *SubmissionService
	awardJob *AwardJobService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sched, err := schedule.Parse("5=19:30@Riverside Park", time.UTC)
	require.NoError(t, err)

	clock := &testClock{now: afterKickoff}
	store := docstore.NewMemory()
	store.SetClock(clock.Now)
	ns := docstore.Namespace("club")

	env := &testEnv{
		store:       store,
		clock:       clock,
		sched:       sched,
		players:     document.NewPlayerRepository(store, ns),
		teamSets:    document.NewTeamSetRepository(store, ns),
		overrides:   document.NewOverrideRepository(store, ns),
		ledgers:     document.NewLedgerRepository(store, ns),
		nominations: document.NewNominationRepository(store, ns),
		awards:      document.NewAwardRepository(store, ns),
		submissions: document.NewSubmissionRepository(store, ns),
	}

	ids := &seqIDs{}
	env.roster = NewRosterService(env.players, env.teamSets, env.overrides, ids, nil)
	env.roster.now = clock.Now
	env.teams = NewTeamService(env.players, env.teamSets, env.overrides, nil)
	env.teams.now = clock.Now
	env.ledger = NewLedgerService(env.players, env.ledgers, sched, LedgerConfig{MaxRetries: 200, AttendanceWorkers: 4}, nil)
	env.ledger.now = clock.Now
	env.ledger.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	env.motm = NewNominationService(env.players, env.nominations, env.awards, sched, env.ledger, nil)
	env.motm.now = clock.Now
	env.stats = NewSubmissionService(env.players, env.submissions, sched, env.ledger, ids, nil)
	env.stats.now = clock.Now
	env.awardJob = NewAwardJobService(env.ledger, env.motm, sched, AwardJobConfig{LookbackDays: 3}, nil)
	env.awardJob.now = clock.Now

	return env
}

// seedPlayer stores a player directly, bypassing registration rules.
func (e *testEnv) seedPlayer(t *testing.T, id, name string, skill int, available bool) player.Player {
	t.Helper()

	p := player.Player{
		ID:                 id,
		Name:               name,
		Position:           player.PositionCentralMidfielder,
		SkillLevel:         skill,
		RegisteredByUserID: admin.UserID,
		Available:          available,
		CreatedAt:          e.clock.Now(),
		UpdatedAt:          e.clock.Now(),
	}
	require.NoError(t, e.players.Upsert(context.Background(), p))
	return p
}
