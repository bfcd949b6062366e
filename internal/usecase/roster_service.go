package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
	idgen "github.com/riskibarqy/club-roster/internal/platform/id"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

const maxPlayerNameLength = 60

// RegisterPlayerInput is the incoming payload for player registration.
type RegisterPlayerInput struct {
	Name       string
	Position   string
	SkillLevel int
	// SelfRegister links the new player to the calling user.
	SelfRegister bool
}

// UpdatePlayerInput carries the admin-editable fields; nil leaves a field unchanged.
type UpdatePlayerInput struct {
	PlayerID   string
	Name       *string
	Position   *string
	SkillLevel *int
}

type RosterService struct {
	players   player.Repository
	teams     teambalance.TeamSetRepository
	overrides teambalance.OverrideRepository
	idGen     idgen.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewRosterService(
	players player.Repository,
	teams teambalance.TeamSetRepository,
	overrides teambalance.OverrideRepository,
	idGen idgen.Generator,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RosterService{
		players:   players,
		teams:     teams,
		overrides: overrides,
		idGen:     idGen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *RosterService) RegisterPlayer(ctx context.Context, actor Actor, input RegisterPlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.RegisterPlayer")
	defer span.End()

	if err := actor.requireUser(); err != nil {
		return player.Player{}, err
	}

	name, err := cleanPlayerName(input.Name)
	if err != nil {
		return player.Player{}, err
	}
	position, err := player.ParsePosition(input.Position)
	if err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateSkill(input.SkillLevel); err != nil {
		return player.Player{}, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return player.Player{}, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	now := s.now().UTC()
	p := player.Player{
		ID:                 id,
		Name:               name,
		Position:           position,
		SkillLevel:         input.SkillLevel,
		RegisteredByUserID: actor.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if input.SelfRegister {
		p.OwnerUserID = actor.UserID
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.players.Upsert(ctx, p); err != nil {
		return player.Player{}, fmt.Errorf("register player: %w", err)
	}

	s.logger.InfoContext(ctx, "player registered",
		"player_id", p.ID,
		"position", string(p.Position),
		"skill_level", p.SkillLevel,
		"registered_by", actor.UserID,
		"self_registered", input.SelfRegister,
	)
	return p, nil
}

func (s *RosterService) UpdatePlayer(ctx context.Context, actor Actor, input UpdatePlayerInput) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.UpdatePlayer", playerAttr(input.PlayerID))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return player.Player{}, err
	}

	p, err := s.getPlayer(ctx, input.PlayerID)
	if err != nil {
		return player.Player{}, err
	}

	next := p
	if input.Name != nil {
		name, err := cleanPlayerName(*input.Name)
		if err != nil {
			return player.Player{}, err
		}
		if player.NormalizeName(name) != player.NormalizeName(p.Name) {
			if err := s.ensureNameFree(ctx, name, p.ID); err != nil {
				return player.Player{}, err
			}
		}
		next.Name = name
	}
	if input.Position != nil {
		position, err := player.ParsePosition(*input.Position)
		if err != nil {
			return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		next.Position = position
	}
	if input.SkillLevel != nil {
		if err := validateSkill(*input.SkillLevel); err != nil {
			return player.Player{}, err
		}
		next.SkillLevel = *input.SkillLevel
	}
	if next == p {
		return p, nil
	}

	next.UpdatedAt = s.now().UTC()
	if err := s.players.Upsert(ctx, next); err != nil {
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	if err := s.invalidateTeamsWith(ctx, p.ID, "player updated"); err != nil {
		return player.Player{}, err
	}

	s.logger.InfoContext(ctx, "player updated", "player_id", p.ID, "updated_by", actor.UserID)
	return next, nil
}

// SetAvailability toggles a player's availability for the current cycle.
// Any change invalidates the generated teams.
func (s *RosterService) SetAvailability(ctx context.Context, actor Actor, playerID string, available bool) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.SetAvailability", playerAttr(playerID))
	defer span.End()

	if err := actor.requireUser(); err != nil {
		return player.Player{}, err
	}

	p, err := s.getPlayer(ctx, playerID)
	if err != nil {
		return player.Player{}, err
	}
	if !p.CanManageAvailability(actor.UserID, actor.Admin) {
		return player.Player{}, fmt.Errorf("%w: user %s cannot change availability of player %s", ErrForbidden, actor.UserID, p.ID)
	}
	if p.Available == available {
		return p, nil
	}

	if err := s.players.SetAvailability(ctx, p.ID, available); err != nil {
		return player.Player{}, fmt.Errorf("set availability: %w", err)
	}
	if err := s.invalidateTeams(ctx, "availability changed"); err != nil {
		return player.Player{}, err
	}

	p.Available = available
	p.UpdatedAt = s.now().UTC()
	s.logger.InfoContext(ctx, "player availability changed", "player_id", p.ID, "available", available, "changed_by", actor.UserID)
	return p, nil
}

// ResetAvailability starts a new scheduling cycle with every player unavailable.
func (s *RosterService) ResetAvailability(ctx context.Context, actor Actor) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ResetAvailability")
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return 0, err
	}

	available, err := s.players.ListAvailable(ctx)
	if err != nil {
		return 0, fmt.Errorf("list available players: %w", err)
	}
	for _, p := range available {
		if err := s.players.SetAvailability(ctx, p.ID, false); err != nil {
			return 0, fmt.Errorf("reset availability of player %s: %w", p.ID, err)
		}
	}
	if err := s.invalidateTeams(ctx, "availability reset"); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "availability reset", "players_reset", len(available), "reset_by", actor.UserID)
	return len(available), nil
}

// DeletePlayer removes a player together with its team membership and override.
func (s *RosterService) DeletePlayer(ctx context.Context, actor Actor, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.DeletePlayer", playerAttr(playerID))
	defer span.End()

	if err := actor.requireAdmin(); err != nil {
		return err
	}

	p, err := s.getPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	set, exists, err := s.teams.GetCurrent(ctx)
	if err != nil {
		return fmt.Errorf("get current teams: %w", err)
	}
	if exists {
		if next, removed := set.RemovePlayer(p.ID); removed {
			if err := s.teams.ReplaceCurrent(ctx, next); err != nil {
				return fmt.Errorf("remove player from teams: %w", err)
			}
		}
	}

	overrides, err := s.overrides.Get(ctx)
	if err != nil {
		return fmt.Errorf("get team assignments: %w", err)
	}
	if _, ok := overrides[p.ID]; ok {
		delete(overrides, p.ID)
		if err := s.overrides.Replace(ctx, overrides); err != nil {
			return fmt.Errorf("clear team assignment: %w", err)
		}
	}

	if err := s.players.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}

	s.logger.InfoContext(ctx, "player deleted", "player_id", p.ID, "deleted_by", actor.UserID)
	return nil
}

func (s *RosterService) ListPlayers(ctx context.Context, availableOnly bool) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.ListPlayers")
	defer span.End()

	list := s.players.List
	if availableOnly {
		list = s.players.ListAvailable
	}
	items, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return items, nil
}

func (s *RosterService) GetPlayer(ctx context.Context, playerID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.GetPlayer", playerAttr(playerID))
	defer span.End()

	return s.getPlayer(ctx, playerID)
}

func (s *RosterService) getPlayer(ctx context.Context, playerID string) (player.Player, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	p, exists, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	return p, nil
}

func (s *RosterService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, exists, err := s.players.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("find player by name: %w", err)
	}
	if exists && existing.ID != selfID {
		return fmt.Errorf("%w: %w: %q", ErrConflict, player.ErrDuplicateName, name)
	}
	return nil
}

func (s *RosterService) invalidateTeams(ctx context.Context, reason string) error {
	if err := s.teams.DeleteCurrent(ctx); err != nil {
		return fmt.Errorf("invalidate teams: %w", err)
	}
	s.logger.InfoContext(ctx, "generated teams invalidated", "reason", reason)
	return nil
}

// invalidateTeamsWith drops the generated teams only if playerID is on them.
func (s *RosterService) invalidateTeamsWith(ctx context.Context, playerID, reason string) error {
	set, exists, err := s.teams.GetCurrent(ctx)
	if err != nil {
		return fmt.Errorf("get current teams: %w", err)
	}
	if !exists {
		return nil
	}
	if _, onTeam := set.TeamOf(playerID); !onTeam {
		return nil
	}
	return s.invalidateTeams(ctx, reason)
}

func cleanPlayerName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if len([]rune(name)) > maxPlayerNameLength {
		return "", fmt.Errorf("%w: player name must be at most %d characters", ErrInvalidInput, maxPlayerNameLength)
	}
	return name, nil
}

func validateSkill(v int) error {
	if v < player.MinSkill || v > player.MaxSkill {
		return fmt.Errorf("%w: skill level must be between %d and %d", ErrInvalidInput, player.MinSkill, player.MaxSkill)
	}
	return nil
}
