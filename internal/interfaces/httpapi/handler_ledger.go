package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

const defaultLeaderboardLimit = 50

func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLedger")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	l, err := h.ledgerService.GetLedger(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get ledger failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerToDTO(l))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	limit, err := parseIntQuery(r, "limit", defaultLeaderboardLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.ledgerService.Leaderboard(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(rows))
}

func (h *Handler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AwardPoints")
	defer span.End()

	h.grantPoints(w, r.WithContext(ctx), h.ledgerService.AwardPoints)
}

func (h *Handler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdjustPoints")
	defer span.End()

	h.grantPoints(w, r.WithContext(ctx), h.ledgerService.AdjustPoints)
}

type grantFunc func(ctx context.Context, actor usecase.Actor, input usecase.PointsInput) (ledger.Ledger, error)

func (h *Handler) grantPoints(w http.ResponseWriter, r *http.Request, grant grantFunc) {
	ctx := r.Context()
	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req pointsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	l, err := grant(ctx, actor, usecase.PointsInput{PlayerID: playerID, Points: req.Points, Reason: req.Reason})
	if err != nil {
		h.logger.WarnContext(ctx, "grant points failed", "player_id", playerID, "points", req.Points, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerToDTO(l))
}

func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkAttendance")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req markAttendanceRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	l, _, err := h.ledgerService.MarkAttendance(ctx, actor, playerID, req.MatchDate)
	if err != nil {
		h.logger.WarnContext(ctx, "mark attendance failed", "player_id", playerID, "match_date", req.MatchDate, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ledgerToDTO(l))
}
