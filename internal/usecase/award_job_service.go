package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
	"github.com/riskibarqy/club-roster/internal/platform/resilience"
)

const (
	defaultAwardJobInterval = 5 * time.Minute
	defaultLookbackDays     = 7
	awardJobFlightKey       = "award-job"
)

type attendanceCreditor interface {
	CreditAttendance(ctx context.Context, now time.Time) (AttendanceResult, error)
}

type motmResolver interface {
	resolve(ctx context.Context, gameDate string) (ResolveResult, error)
	Window(ctx context.Context, gameDate string) (motm.Window, error)
}

type AwardJobConfig struct {
	Interval     time.Duration
	LookbackDays int
}

type AwardJobResult struct {
	RanAt      time.Time
	Attendance AttendanceResult
	// Resolved holds game dates that got a new award during this run.
	Resolved []string
	// Pending holds closed game dates that could not be resolved yet, e.g. without nominations.
	Pending []string
	Shared  bool
}

// AwardJobService is the periodic trigger that credits attendance and resolves
// closed voting windows.
type AwardJobService struct {
	attendance attendanceCreditor
	motm       motmResolver
	schedule   schedule.Schedule
	cfg        AwardJobConfig
	flight     resilience.Flight[AwardJobResult]
	logger     *logging.Logger
	now        func() time.Time
}

func NewAwardJobService(
	attendance attendanceCreditor,
	resolver motmResolver,
	sched schedule.Schedule,
	cfg AwardJobConfig,
	logger *logging.Logger,
) *AwardJobService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultAwardJobInterval
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}

	return &AwardJobService{
		attendance: attendance,
		motm:       resolver,
		schedule:   sched,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run executes one pass. Concurrent callers share the in-flight pass.
func (s *AwardJobService) Run(ctx context.Context) (AwardJobResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AwardJobService.Run")
	defer span.End()

	result, err, shared := s.flight.Do(awardJobFlightKey, func() (AwardJobResult, error) {
		return s.run(ctx, s.now())
	})
	result.Shared = shared
	return result, err
}

func (s *AwardJobService) run(ctx context.Context, now time.Time) (AwardJobResult, error) {
	result := AwardJobResult{RanAt: now.UTC()}
	var errs []error

	attendance, err := s.attendance.CreditAttendance(ctx, now)
	result.Attendance = attendance
	if err != nil {
		errs = append(errs, fmt.Errorf("credit attendance: %w", err))
	}

	for _, gameDate := range s.closedGameDates(now) {
		window, err := s.motm.Window(ctx, gameDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("window %s: %w", gameDate, err))
			continue
		}
		if !window.CanResolve() {
			continue
		}

		resolved, err := s.motm.resolve(ctx, gameDate)
		switch {
		case errors.Is(err, motm.ErrNoNominations):
			result.Pending = append(result.Pending, gameDate)
		case err != nil:
			errs = append(errs, fmt.Errorf("resolve motm %s: %w", gameDate, err))
		case resolved.Created:
			result.Resolved = append(result.Resolved, gameDate)
		}
	}

	s.logger.InfoContext(ctx, "award job finished",
		"attendance_credited", result.Attendance.Credited,
		"attendance_skipped", result.Attendance.Skipped,
		"motm_resolved", len(result.Resolved),
		"motm_pending", len(result.Pending),
		"errors", len(errs),
	)
	return result, errors.Join(errs...)
}

// closedGameDates lists game dates in the lookback range, oldest first, today included.
func (s *AwardJobService) closedGameDates(now time.Time) []string {
	loc := s.schedule.Location()
	local := now.In(loc)
	out := make([]string, 0, s.cfg.LookbackDays+1)
	for offset := s.cfg.LookbackDays; offset >= 0; offset-- {
		day := time.Date(local.Year(), local.Month(), local.Day()-offset, 12, 0, 0, 0, loc)
		if _, ok := s.schedule.GameDayOn(day); ok {
			out = append(out, s.schedule.MatchDate(day))
		}
	}
	return out
}

// Start runs the job every Interval until ctx is done.
func (s *AwardJobService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "award job loop started", "interval", s.cfg.Interval.String(), "lookback_days", s.cfg.LookbackDays)
	for {
		if _, err := s.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.WarnContext(ctx, "award job run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Info("award job loop stopped")
			return
		case <-ticker.C:
		}
	}
}
