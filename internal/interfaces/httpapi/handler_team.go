package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-roster/internal/domain/teambalance"
)

func (h *Handler) GenerateTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateTeams")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	req := generateTeamsRequest{TeamCount: teambalance.MinTeams}
	if r.ContentLength != 0 {
		if err := h.decodeRequest(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	set, err := h.teamService.GenerateTeams(ctx, actor, req.TeamCount)
	if err != nil {
		h.logger.WarnContext(ctx, "generate teams failed", "team_count", req.TeamCount, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamSetToDTO(set))
}

func (h *Handler) GetCurrentTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentTeams")
	defer span.End()

	set, err := h.teamService.GetCurrentTeams(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamSetToDTO(set))
}

func (h *Handler) GetTeamAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamAssignments")
	defer span.End()

	overrides, err := h.teamService.GetOverrides(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get team assignments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overridesToDTO(overrides))
}

func (h *Handler) SetTeamAssignment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetTeamAssignment")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setTeamAssignmentRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	overrides, err := h.teamService.SetOverride(ctx, actor, playerID, req.Color)
	if err != nil {
		h.logger.WarnContext(ctx, "set team assignment failed", "player_id", playerID, "color", req.Color, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overridesToDTO(overrides))
}

func (h *Handler) ClearTeamAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearTeamAssignments")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.teamService.ClearOverrides(ctx, actor); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{})
}
