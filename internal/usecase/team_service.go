package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

type TeamService struct {
	players   player.Repository
	teams     teambalance.TeamSetRepository
	overrides teambalance.OverrideRepository
	logger    *logging.Logger
	now       func() time.Time
}

func NewTeamService(
	players player.Repository,
	teams teambalance.TeamSetRepository,
	overrides teambalance.OverrideRepository,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}

	return &TeamService{
		players:   players,
		teams:     teams,
		overrides: overrides,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateTeams balances the available players into teamCount teams (clamped to
// [2,6]) and replaces the current set. Nothing is written when balancing fails.
func (s *TeamService) GenerateTeams(ctx context.Context, actor Actor, teamCount int) (teambalance.TeamSet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GenerateTeams")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return teambalance.TeamSet{}, err
	}

	requested := teamCount
	teamCount = teambalance.ClampTeamCount(teamCount)

	available, err := s.players.ListAvailable(ctx)
	if err != nil {
		return teambalance.TeamSet{}, fmt.Errorf("list available players: %w", err)
	}
	overrides, err := s.overrides.Get(ctx)
	if err != nil {
		return teambalance.TeamSet{}, fmt.Errorf("get team assignments: %w", err)
	}

	candidates := make([]teambalance.Candidate, 0, len(available))
	for _, p := range available {
		candidates = append(candidates, teambalance.CandidateFromPlayer(p))
	}

	teams, err := teambalance.Balance(candidates, teamCount, overrides)
	if err != nil {
		if errors.Is(err, teambalance.ErrInsufficientPlayers) {
			return teambalance.TeamSet{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return teambalance.TeamSet{}, fmt.Errorf("balance teams: %w", err)
	}

	set := teambalance.TeamSet{
		Teams:       teams,
		GeneratedAt: s.now().UTC(),
		GeneratedBy: actor.UserID,
	}
	if err := set.Validate(); err != nil {
		return teambalance.TeamSet{}, fmt.Errorf("validate generated teams: %w", err)
	}
	if err := s.teams.ReplaceCurrent(ctx, set); err != nil {
		return teambalance.TeamSet{}, fmt.Errorf("store generated teams: %w", err)
	}

	s.logger.InfoContext(ctx, "teams generated",
		"requested_team_count", requested,
		"team_count", teamCount,
		"player_count", len(candidates),
		"override_count", len(overrides),
		"skill_spread", set.Spread(),
		"generated_by", actor.UserID,
	)
	return set, nil
}

func (s *TeamService) GetCurrentTeams(ctx context.Context) (teambalance.TeamSet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetCurrentTeams")
	defer span.End()

	set, exists, err := s.teams.GetCurrent(ctx)
	if err != nil {
		return teambalance.TeamSet{}, fmt.Errorf("get current teams: %w", err)
	}
	if !exists {
		return teambalance.TeamSet{}, fmt.Errorf("%w: no teams generated", ErrNotFound)
	}
	return set, nil
}

// SetOverride pins a player to a team color. An empty color removes the pin.
func (s *TeamService) SetOverride(ctx context.Context, actor Actor, playerID, color string) (teambalance.Overrides, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.SetOverride", playerAttr(playerID))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return nil, err
	}

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	key := teambalance.ColorKey(strings.ToLower(strings.TrimSpace(color)))
	if key != "" && !teambalance.KnownColor(key) {
		return nil, fmt.Errorf("%w: %w: %s", ErrInvalidInput, teambalance.ErrUnknownColor, color)
	}

	if _, exists, err := s.players.GetByID(ctx, playerID); err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	overrides, err := s.overrides.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get team assignments: %w", err)
	}
	if overrides == nil {
		overrides = teambalance.Overrides{}
	}
	if key == "" {
		delete(overrides, playerID)
	} else {
		overrides[playerID] = key
	}
	if err := s.overrides.Replace(ctx, overrides); err != nil {
		return nil, fmt.Errorf("store team assignments: %w", err)
	}

	s.logger.InfoContext(ctx, "team assignment changed", "player_id", playerID, "color", string(key), "changed_by", actor.UserID)
	return overrides, nil
}

func (s *TeamService) ClearOverrides(ctx context.Context, actor Actor) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ClearOverrides")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return err
	}
	if err := s.overrides.Replace(ctx, teambalance.Overrides{}); err != nil {
		return fmt.Errorf("clear team assignments: %w", err)
	}

	s.logger.InfoContext(ctx, "team assignments cleared", "cleared_by", actor.UserID)
	return nil
}

func (s *TeamService) GetOverrides(ctx context.Context) (teambalance.Overrides, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetOverrides")
	defer span.End()

	overrides, err := s.overrides.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get team assignments: %w", err)
	}
	return overrides, nil
}
