package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-roster/internal/usecase"
)

func (h *Handler) Nominate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Nominate")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req nominateRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	n, err := h.nominationService.Nominate(ctx, actor, usecase.NominateInput{
		NominatedPlayerID: req.NominatedPlayerID,
		Reason:            req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "nominate failed", "user_id", actor.UserID, "nominated_player_id", req.NominatedPlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, nominationToDTO(n))
}

func (h *Handler) ListNominations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNominations")
	defer span.End()

	gameDate := strings.TrimSpace(r.PathValue("gameDate"))
	items, err := h.nominationService.ListNominations(ctx, gameDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]nominationDTO, 0, len(items))
	for _, n := range items {
		out = append(out, nominationToDTO(n))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetVotingWindow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetVotingWindow")
	defer span.End()

	window, err := h.nominationService.Window(ctx, strings.TrimSpace(r.PathValue("gameDate")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, windowToDTO(window))
}

func (h *Handler) ResolveMOTM(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveMOTM")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	gameDate := strings.TrimSpace(r.PathValue("gameDate"))
	result, err := h.nominationService.Resolve(ctx, actor, gameDate)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve motm failed", "game_date", gameDate, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, resolveResultDTO{
		Award:   awardToDTO(result.Award),
		Created: result.Created,
		Counts:  result.Tally.Counts,
	})
}

func (h *Handler) GetAward(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAward")
	defer span.End()

	award, err := h.nominationService.GetAward(ctx, strings.TrimSpace(r.PathValue("gameDate")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, awardToDTO(award))
}

func (h *Handler) ListAwards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAwards")
	defer span.End()

	awards, err := h.nominationService.ListAwards(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list awards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]awardDTO, 0, len(awards))
	for _, a := range awards {
		out = append(out, awardToDTO(a))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}
