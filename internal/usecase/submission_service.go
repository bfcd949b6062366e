package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/domain/submission"
	idgen "github.com/riskibarqy/club-roster/internal/platform/id"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

type statsCreditor interface {
	CreditStats(ctx context.Context, sub submission.Submission, approvedBy string) (ledger.Ledger, bool, error)
}

type SubmitStatsInput struct {
	PlayerID string
	GameDate string
	Goals    int
	Assists  int
}

type SubmissionService struct {
	players     player.Repository
	submissions submission.Repository
	schedule    schedule.Schedule
	creditor    statsCreditor
	idGen       idgen.Generator
	logger      *logging.Logger
	now         func() time.Time
}

func NewSubmissionService(
	players player.Repository,
	submissions submission.Repository,
	sched schedule.Schedule,
	creditor statsCreditor,
	idGen idgen.Generator,
	logger *logging.Logger,
) *SubmissionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SubmissionService{
		players:     players,
		submissions: submissions,
		schedule:    sched,
		creditor:    creditor,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit records a goals/assists claim for review. A player has at most one
// pending submission per game date, and none once a day was approved.
func (s *SubmissionService) Submit(ctx context.Context, actor Actor, input SubmitStatsInput) (submission.Submission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.Submit")
	defer span.End()

	if err := actor.requireUser(); err != nil {
		return submission.Submission{}, err
	}

	now := s.now()
	gameDate := strings.TrimSpace(input.GameDate)
	if gameDate == "" {
		gameDate = s.schedule.MatchDate(now)
	}
	day, err := s.schedule.StartOfDay(gameDate)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, ok := s.schedule.GameDayOn(day); !ok {
		return submission.Submission{}, fmt.Errorf("%w: %s is not a scheduled game day", ErrInvalidInput, gameDate)
	}
	if day.After(now) {
		return submission.Submission{}, fmt.Errorf("%w: cannot submit for a future game date %s", ErrInvalidInput, gameDate)
	}

	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return submission.Submission{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	p, exists, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return submission.Submission{}, fmt.Errorf("%w: player=%s", ErrNotFound, input.PlayerID)
	}
	if !p.CanManageAvailability(actor.UserID, actor.Admin) {
		return submission.Submission{}, fmt.Errorf("%w: cannot submit stats for player %s", ErrForbidden, p.ID)
	}

	existing, err := s.submissions.ListByPlayerAndDate(ctx, p.ID, gameDate)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("list submissions: %w", err)
	}
	for _, item := range existing {
		switch item.Status {
		case submission.StatusPending:
			return submission.Submission{}, fmt.Errorf("%w: %w", ErrConflict, submission.ErrPendingExists)
		case submission.StatusApproved:
			return submission.Submission{}, fmt.Errorf("%w: %w: %s on %s", ErrConflict, submission.ErrAlreadyApproved, p.ID, gameDate)
		}
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return submission.Submission{}, fmt.Errorf("generate submission id: %w", err)
	}
	sub := submission.Submission{
		ID:          id,
		PlayerID:    p.ID,
		GameDate:    gameDate,
		Goals:       input.Goals,
		Assists:     input.Assists,
		SubmittedBy: actor.UserID,
		Status:      submission.StatusPending,
		CreatedAt:   now.UTC(),
	}
	if err := sub.Validate(); err != nil {
		return submission.Submission{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, submission.ErrPendingExists) || errors.Is(err, submission.ErrAlreadyApproved) {
			return submission.Submission{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return submission.Submission{}, fmt.Errorf("create submission: %w", err)
	}

	s.logger.InfoContext(ctx, "stats submitted",
		"submission_id", sub.ID,
		"player_id", sub.PlayerID,
		"game_date", gameDate,
		"goals", sub.Goals,
		"assists", sub.Assists,
	)
	return sub, nil
}

// Approve credits the submission to the player's ledger, then marks it
// approved. A retry after a failed status write does not double count.
func (s *SubmissionService) Approve(ctx context.Context, actor Actor, submissionID, note string) (submission.Submission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.Approve")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return submission.Submission{}, err
	}
	sub, err := s.getPending(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}

	reviewed, err := sub.Review(submission.StatusApproved, actor.UserID, note, s.now().UTC())
	if err != nil {
		return submission.Submission{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if _, _, err := s.creditor.CreditStats(ctx, sub, actor.UserID); err != nil {
		return submission.Submission{}, err
	}
	if err := s.submissions.Update(ctx, reviewed); err != nil {
		return submission.Submission{}, fmt.Errorf("update submission: %w", err)
	}

	s.logger.InfoContext(ctx, "submission approved", "submission_id", sub.ID, "player_id", sub.PlayerID, "approved_by", actor.UserID)
	return reviewed, nil
}

func (s *SubmissionService) Reject(ctx context.Context, actor Actor, submissionID, note string) (submission.Submission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.Reject")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return submission.Submission{}, err
	}
	sub, err := s.getPending(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, err
	}

	reviewed, err := sub.Review(submission.StatusRejected, actor.UserID, note, s.now().UTC())
	if err != nil {
		return submission.Submission{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err := s.submissions.Update(ctx, reviewed); err != nil {
		return submission.Submission{}, fmt.Errorf("update submission: %w", err)
	}

	s.logger.InfoContext(ctx, "submission rejected", "submission_id", sub.ID, "player_id", sub.PlayerID, "rejected_by", actor.UserID)
	return reviewed, nil
}

func (s *SubmissionService) ListPending(ctx context.Context, actor Actor) ([]submission.Submission, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.ListPending")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}
	items, err := s.submissions.ListByStatus(ctx, submission.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending submissions: %w", err)
	}
	return items, nil
}

func (s *SubmissionService) getPending(ctx context.Context, submissionID string) (submission.Submission, error) {
	submissionID = strings.TrimSpace(submissionID)
	if submissionID == "" {
		return submission.Submission{}, fmt.Errorf("%w: submission id is required", ErrInvalidInput)
	}
	sub, exists, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		return submission.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	if !exists {
		return submission.Submission{}, fmt.Errorf("%w: submission=%s", ErrNotFound, submissionID)
	}
	if !sub.IsPending() {
		return submission.Submission{}, fmt.Errorf("%w: %w: %s is already %s", ErrConflict, submission.ErrInvalidTransition, sub.ID, sub.Status)
	}
	return sub, nil
}
