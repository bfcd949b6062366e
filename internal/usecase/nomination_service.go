package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/motm"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/schedule"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

type motmCreditor interface {
	CreditMOTM(ctx context.Context, award motm.Award) (ledger.Ledger, bool, error)
}

type NominateInput struct {
	NominatedPlayerID string
	Reason            string
}

// ResolveResult is the outcome of resolving one game date. Created is false
// when the award already existed.
type ResolveResult struct {
	Award   motm.Award
	Created bool
	Tally   motm.Result
}

type NominationService struct {
	players     player.Repository
	nominations motm.NominationRepository
	awards      motm.AwardRepository
	schedule    schedule.Schedule
	creditor    motmCreditor
	logger      *logging.Logger
	now         func() time.Time
}

func NewNominationService(
	players player.Repository,
	nominations motm.NominationRepository,
	awards motm.AwardRepository,
	sched schedule.Schedule,
	creditor motmCreditor,
	logger *logging.Logger,
) *NominationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &NominationService{
		players:     players,
		nominations: nominations,
		awards:      awards,
		schedule:    sched,
		creditor:    creditor,
		logger:      logger,
		now:         time.Now,
	}
}

// Nominate records the actor's pick for today's game. Only one nomination per
// voter per game date is accepted.
func (s *NominationService) Nominate(ctx context.Context, actor Actor, input NominateInput) (motm.Nomination, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.Nominate")
	defer span.End()

	if err := actor.requireUser(); err != nil {
		return motm.Nomination{}, err
	}

	now := s.now()
	gameDate := s.schedule.MatchDate(now)
	window, err := s.window(ctx, gameDate, now)
	if err != nil {
		return motm.Nomination{}, err
	}
	switch window.State {
	case motm.StateOpen:
	case motm.StateNoVotingWindow:
		return motm.Nomination{}, fmt.Errorf("%w: %w: %s", ErrConflict, motm.ErrNoVotingWindow, gameDate)
	default:
		return motm.Nomination{}, fmt.Errorf("%w: %w: %s is %s", ErrConflict, motm.ErrVotingClosed, gameDate, window.State)
	}

	n := motm.Nomination{
		ID:                motm.NominationID(gameDate, actor.UserID),
		GameDate:          gameDate,
		NominatedPlayerID: strings.TrimSpace(input.NominatedPlayerID),
		NominatedBy:       actor.UserID,
		Reason:            strings.TrimSpace(input.Reason),
		CreatedAt:         now.UTC(),
	}
	if err := n.Validate(); err != nil {
		return motm.Nomination{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, exists, err := s.players.GetByID(ctx, n.NominatedPlayerID)
	if err != nil {
		return motm.Nomination{}, fmt.Errorf("get nominated player: %w", err)
	}
	if !exists {
		return motm.Nomination{}, fmt.Errorf("%w: player=%s", ErrNotFound, n.NominatedPlayerID)
	}

	created, err := s.nominations.Create(ctx, n)
	if errors.Is(err, motm.ErrAlreadyNominated) {
		return motm.Nomination{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err != nil {
		return motm.Nomination{}, fmt.Errorf("create nomination: %w", err)
	}

	s.logger.InfoContext(ctx, "motm nomination recorded",
		"game_date", gameDate,
		"nominated_player_id", n.NominatedPlayerID,
		"nominated_by", actor.UserID,
	)
	return created, nil
}

func (s *NominationService) ListNominations(ctx context.Context, gameDate string) ([]motm.Nomination, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.ListNominations", gameDateAttr(gameDate))
	defer span.End()

	if _, err := s.schedule.StartOfDay(gameDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	items, err := s.nominations.ListByGameDate(ctx, gameDate)
	if err != nil {
		return nil, fmt.Errorf("list nominations: %w", err)
	}
	return motm.SortByCreation(items), nil
}

// Window reports the voting phase of gameDate; empty means today.
func (s *NominationService) Window(ctx context.Context, gameDate string) (motm.Window, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.Window", gameDateAttr(gameDate))
	defer span.End()

	now := s.now()
	if strings.TrimSpace(gameDate) == "" {
		gameDate = s.schedule.MatchDate(now)
	}
	return s.window(ctx, gameDate, now)
}

func (s *NominationService) GetAward(ctx context.Context, gameDate string) (motm.Award, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.GetAward", gameDateAttr(gameDate))
	defer span.End()

	if _, err := s.schedule.StartOfDay(gameDate); err != nil {
		return motm.Award{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	award, exists, err := s.awards.Get(ctx, gameDate)
	if err != nil {
		return motm.Award{}, fmt.Errorf("get motm award: %w", err)
	}
	if !exists {
		return motm.Award{}, fmt.Errorf("%w: motm award for %s", ErrNotFound, gameDate)
	}
	return award, nil
}

func (s *NominationService) ListAwards(ctx context.Context) ([]motm.Award, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.ListAwards")
	defer span.End()

	items, err := s.awards.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list motm awards: %w", err)
	}
	return items, nil
}

// Resolve tallies a closed voting window and awards the badge.
func (s *NominationService) Resolve(ctx context.Context, actor Actor, gameDate string) (ResolveResult, error) {
	if err := actor.requireAdmin(); err != nil {
		return ResolveResult{}, err
	}
	return s.resolve(ctx, gameDate)
}

// resolve writes at most one award per game date. When the award already
// exists the badge credit is repeated, which is a no-op on a ledger that has it.
func (s *NominationService) resolve(ctx context.Context, gameDate string) (ResolveResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NominationService.resolve", gameDateAttr(gameDate))
	defer span.End()

	if _, err := s.schedule.StartOfDay(gameDate); err != nil {
		return ResolveResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	existing, exists, err := s.awards.Get(ctx, gameDate)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("get motm award: %w", err)
	}
	if exists {
		if _, _, err := s.creditor.CreditMOTM(ctx, existing); err != nil {
			return ResolveResult{}, err
		}
		return ResolveResult{Award: existing}, nil
	}

	window, err := motm.WindowFor(s.schedule, gameDate, s.now(), false)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	switch window.State {
	case motm.StateTallying:
	case motm.StateNoVotingWindow:
		return ResolveResult{}, fmt.Errorf("%w: %w: %s", ErrConflict, motm.ErrNoVotingWindow, gameDate)
	default:
		return ResolveResult{}, fmt.Errorf("%w: voting for %s is still %s", ErrConflict, gameDate, window.State)
	}

	nominations, err := s.nominations.ListByGameDate(ctx, gameDate)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("list nominations: %w", err)
	}
	tally, err := motm.Tally(motm.SortByCreation(nominations))
	if errors.Is(err, motm.ErrNoNominations) {
		return ResolveResult{}, fmt.Errorf("%w: %w: %s", ErrConflict, err, gameDate)
	}
	if err != nil {
		return ResolveResult{}, err
	}

	award, created, err := s.awards.Create(ctx, motm.Award{
		GameDate:  gameDate,
		PlayerID:  tally.Winner,
		VoteCount: tally.VoteCount,
		Tied:      tally.Tied,
		AwardedAt: s.now().UTC(),
	})
	if err != nil {
		return ResolveResult{}, fmt.Errorf("create motm award: %w", err)
	}
	if _, _, err := s.creditor.CreditMOTM(ctx, award); err != nil {
		return ResolveResult{}, err
	}

	if created {
		s.logger.InfoContext(ctx, "motm awarded",
			"game_date", gameDate,
			"player_id", award.PlayerID,
			"vote_count", award.VoteCount,
			"tied", len(award.Tied),
			"nominations", len(nominations),
		)
	}
	return ResolveResult{Award: award, Created: created, Tally: tally}, nil
}

func (s *NominationService) window(ctx context.Context, gameDate string, now time.Time) (motm.Window, error) {
	if _, err := s.schedule.StartOfDay(gameDate); err != nil {
		return motm.Window{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	_, awarded, err := s.awards.Get(ctx, gameDate)
	if err != nil {
		return motm.Window{}, fmt.Errorf("get motm award: %w", err)
	}
	w, err := motm.WindowFor(s.schedule, gameDate, now, awarded)
	if err != nil {
		return motm.Window{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return w, nil
}
