package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

const (
	defaultLedgerMaxRetries  = 5
	defaultAttendanceWorkers = 8
	maxAttendanceWorkers     = 64
)

type LedgerConfig struct {
	// MaxRetries bounds attempts of one read-modify-write on version conflicts.
	MaxRetries        int
	AttendanceWorkers int
}

// PointsInput is an admin grant of points to a player.
type PointsInput struct {
	PlayerID string
	Points   int
	Reason   string
}

// AttendanceResult summarizes one attendance run.
type AttendanceResult struct {
	MatchDate       string
	Skipped         bool
	SkipReason      string
	Eligible        int
	Credited        int
	AlreadyCredited int
	Failed          int
	WorkerCount     int
}

type LeaderboardRow struct {
	PlayerID    string
	Name        string
	TotalPoints int
	MOTMAwards  int
	Goals       int
	Assists     int
}

type LedgerService struct {
	players    player.Repository
	ledgers    ledger.Repository
	schedule   schedule.Schedule
	cfg        LedgerConfig
	logger     *logging.Logger
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

func NewLedgerService(
	players player.Repository,
	ledgers ledger.Repository,
	sched schedule.Schedule,
	cfg LedgerConfig,
	logger *logging.Logger,
) *LedgerService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = defaultLedgerMaxRetries
	}
	if cfg.AttendanceWorkers < 1 {
		cfg.AttendanceWorkers = defaultAttendanceWorkers
	}
	if cfg.AttendanceWorkers > maxAttendanceWorkers {
		cfg.AttendanceWorkers = maxAttendanceWorkers
	}

	return &LedgerService{
		players:  players,
		ledgers:  ledgers,
		schedule: sched,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
	}
}

type applyOutcome struct {
	ledger  ledger.Ledger
	applied bool
}

// apply runs one read-modify-write of a player's ledger. A write that lost a
// version race is re-read and retried; an entry that is already present makes
// the call a no-op.
func (s *LedgerService) apply(ctx context.Context, playerID string, entry ledger.Entry) (ledger.Ledger, bool, error) {
	attempts := 0
	op := func() (applyOutcome, error) {
		attempts++
		current, exists, err := s.ledgers.Get(ctx, playerID)
		if err != nil {
			return applyOutcome{}, backoff.Permanent(fmt.Errorf("get ledger: %w", err))
		}
		if !exists {
			current = ledger.New(playerID)
		}

		next, err := current.Apply(entry, s.now().UTC())
		if errors.Is(err, ledger.ErrAlreadyApplied) {
			return applyOutcome{ledger: current}, nil
		}
		if err != nil {
			return applyOutcome{}, backoff.Permanent(err)
		}

		saved, err := s.ledgers.Save(ctx, next)
		if errors.Is(err, ledger.ErrConcurrentUpdate) {
			return applyOutcome{}, err
		}
		if err != nil {
			return applyOutcome{}, backoff.Permanent(fmt.Errorf("save ledger: %w", err))
		}
		return applyOutcome{ledger: saved, applied: true}, nil
	}

	out, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.cfg.MaxRetries)),
	)
	if err != nil {
		if errors.Is(err, ledger.ErrConcurrentUpdate) {
			s.logger.WarnContext(ctx, "ledger write kept conflicting", "player_id", playerID, "attempts", attempts)
			return ledger.Ledger{}, false, fmt.Errorf("%w: ledger for player %s changed during %d attempts: %w", ErrConflict, playerID, attempts, err)
		}
		return ledger.Ledger{}, false, err
	}
	if attempts > 1 {
		s.logger.DebugContext(ctx, "ledger write retried", "player_id", playerID, "attempts", attempts)
	}
	return out.ledger, out.applied, nil
}

// CreditAttendance gives every available player the attendance points for the
// game day containing now, once kickoff has passed. Re-running it for the same
// day credits nobody twice.
func (s *LedgerService) CreditAttendance(ctx context.Context, now time.Time) (AttendanceResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.CreditAttendance")
	defer span.End()

	result := AttendanceResult{MatchDate: s.schedule.MatchDate(now)}
	if _, ok := s.schedule.GameDayOn(now); !ok {
		result.Skipped, result.SkipReason = true, "not a game day"
		return result, nil
	}
	if !s.schedule.KickoffPassed(now) {
		result.Skipped, result.SkipReason = true, "kickoff has not passed"
		return result, nil
	}

	available, err := s.players.ListAvailable(ctx)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("list available players: %w", err)
	}
	result.Eligible = len(available)
	if len(available) == 0 {
		return result, nil
	}

	workerCount := min(s.cfg.AttendanceWorkers, len(available))
	result.WorkerCount = workerCount

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return AttendanceResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		credited, already atomic.Int32
		mu                sync.Mutex
		failures          []error
		workers           sync.WaitGroup
	)
	for _, p := range available {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			_, applied, err := s.apply(ctx, p.ID, ledger.NewAttendanceEntry(result.MatchDate, s.now().UTC()))
			switch {
			case err != nil:
				mu.Lock()
				failures = append(failures, fmt.Errorf("player %s: %w", p.ID, err))
				mu.Unlock()
			case applied:
				credited.Add(1)
			default:
				already.Add(1)
			}
		}); err != nil {
			workers.Done()
			return AttendanceResult{}, fmt.Errorf("submit attendance task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Credited = int(credited.Load())
	result.AlreadyCredited = int(already.Load())
	result.Failed = len(failures)

	s.logger.InfoContext(ctx, "attendance credited",
		"match_date", result.MatchDate,
		"eligible", result.Eligible,
		"credited", result.Credited,
		"already_credited", result.AlreadyCredited,
		"failed", result.Failed,
	)
	if len(failures) > 0 {
		return result, fmt.Errorf("credit attendance for %d of %d players: %w", len(failures), result.Eligible, errors.Join(failures...))
	}
	return result, nil
}

// MarkAttendance records a manual attendance credit for one player and match date.
func (s *LedgerService) MarkAttendance(ctx context.Context, actor Actor, playerID, matchDate string) (ledger.Ledger, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.MarkAttendance", playerAttr(playerID), gameDateAttr(matchDate))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return ledger.Ledger{}, false, err
	}
	day, err := s.schedule.StartOfDay(matchDate)
	if err != nil {
		return ledger.Ledger{}, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, ok := s.schedule.GameDayOn(day); !ok {
		return ledger.Ledger{}, false, fmt.Errorf("%w: %s is not a scheduled game day", ErrInvalidInput, matchDate)
	}
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return ledger.Ledger{}, false, err
	}

	l, applied, err := s.apply(ctx, playerID, ledger.NewManualAttendanceEntry(s.schedule.MatchDate(day), actor.UserID, s.now().UTC()))
	if err != nil {
		return ledger.Ledger{}, false, err
	}
	if applied {
		s.logger.InfoContext(ctx, "attendance marked", "player_id", playerID, "match_date", matchDate, "marked_by", actor.UserID)
	}
	return l, applied, nil
}

// AwardPoints appends adjudicated performance points. Every call appends.
func (s *LedgerService) AwardPoints(ctx context.Context, actor Actor, input PointsInput) (ledger.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.AwardPoints", playerAttr(input.PlayerID))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return ledger.Ledger{}, err
	}
	entry, err := ledger.NewAdjudicatedEntry(input.Points, input.Reason, actor.UserID, s.now().UTC())
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.grant(ctx, actor, input.PlayerID, entry)
}

// AdjustPoints appends a signed manual correction.
func (s *LedgerService) AdjustPoints(ctx context.Context, actor Actor, input PointsInput) (ledger.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.AdjustPoints", playerAttr(input.PlayerID))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return ledger.Ledger{}, err
	}
	entry, err := ledger.NewManualEntry(input.Points, input.Reason, actor.UserID, s.now().UTC())
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.grant(ctx, actor, input.PlayerID, entry)
}

func (s *LedgerService) grant(ctx context.Context, actor Actor, playerID string, entry ledger.Entry) (ledger.Ledger, error) {
	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return ledger.Ledger{}, err
	}

	l, _, err := s.apply(ctx, playerID, entry)
	if err != nil {
		return ledger.Ledger{}, err
	}

	s.logger.InfoContext(ctx, "points granted",
		"player_id", playerID,
		"kind", string(entry.Kind),
		"points", entry.Points,
		"total_points", l.TotalPoints,
		"granted_by", actor.UserID,
	)
	return l, nil
}

// CreditMOTM adds the badge for an award. Repeating it for the same game date is a no-op.
func (s *LedgerService) CreditMOTM(ctx context.Context, award motm.Award) (ledger.Ledger, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.CreditMOTM", playerAttr(award.PlayerID), gameDateAttr(award.GameDate))
	defer span.End()

	l, applied, err := s.apply(ctx, award.PlayerID, ledger.NewMOTMEntry(award.GameDate, award.VoteCount, s.now().UTC()))
	if err != nil {
		return ledger.Ledger{}, false, fmt.Errorf("credit motm badge: %w", err)
	}
	if applied {
		s.logger.InfoContext(ctx, "motm badge credited", "player_id", award.PlayerID, "game_date", award.GameDate, "motm_awards", l.MOTMAwards)
	}
	return l, applied, nil
}

// CreditStats adds an approved submission's goals and assists once.
func (s *LedgerService) CreditStats(ctx context.Context, sub submission.Submission, approvedBy string) (ledger.Ledger, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.CreditStats", playerAttr(sub.PlayerID), gameDateAttr(sub.GameDate))
	defer span.End()

	entry, err := ledger.NewStatsEntry(sub.ID, sub.GameDate, sub.Goals, sub.Assists, approvedBy, s.now().UTC())
	if err != nil {
		return ledger.Ledger{}, false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	l, applied, err := s.apply(ctx, sub.PlayerID, entry)
	if err != nil {
		return ledger.Ledger{}, false, fmt.Errorf("credit goals and assists: %w", err)
	}
	return l, applied, nil
}

// GetLedger returns a player's ledger; a player without one has an empty ledger.
func (s *LedgerService) GetLedger(ctx context.Context, playerID string) (ledger.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.GetLedger", playerAttr(playerID))
	defer span.End()

	if err := s.ensurePlayer(ctx, playerID); err != nil {
		return ledger.Ledger{}, err
	}
	l, exists, err := s.ledgers.Get(ctx, playerID)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}
	if !exists {
		return ledger.New(playerID), nil
	}
	return l, nil
}

// Leaderboard ranks registered players by points, then badges, then name.
func (s *LedgerService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LedgerService.Leaderboard")
	defer span.End()

	players, err := s.players.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	ledgers, err := s.ledgers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}

	byPlayer := make(map[string]ledger.Ledger, len(ledgers))
	for _, l := range ledgers {
		byPlayer[l.PlayerID] = l
	}

	rows := make([]LeaderboardRow, 0, len(players))
	for _, p := range players {
		l := byPlayer[p.ID]
		rows = append(rows, LeaderboardRow{
			PlayerID:    p.ID,
			Name:        p.Name,
			TotalPoints: l.TotalPoints,
			MOTMAwards:  l.MOTMAwards,
			Goals:       l.Goals,
			Assists:     l.Assists,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalPoints != rows[j].TotalPoints {
			return rows[i].TotalPoints > rows[j].TotalPoints
		}
		if rows[i].MOTMAwards != rows[j].MOTMAwards {
			return rows[i].MOTMAwards > rows[j].MOTMAwards
		}
		return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *LedgerService) ensurePlayer(ctx context.Context, playerID string) error {
	if strings.TrimSpace(playerID) == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	_, exists, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return nil
}
