package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/club-roster/internal/domain/submission"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

func (h *Handler) SubmitStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitStats")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitStatsRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	sub, err := h.submissionService.Submit(ctx, actor, usecase.SubmitStatsInput{
		PlayerID: req.PlayerID,
		GameDate: req.GameDate,
		Goals:    req.Goals,
		Assists:  req.Assists,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit stats failed", "player_id", req.PlayerID, "user_id", actor.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, submissionToDTO(sub))
}

func (h *Handler) ListPendingSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingSubmissions")
	defer span.End()

	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.submissionService.ListPending(ctx, actor)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]submissionDTO, 0, len(items))
	for _, s := range items {
		out = append(out, submissionToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ApproveSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveSubmission")
	defer span.End()

	h.reviewSubmission(w, r.WithContext(ctx), submission.StatusApproved)
}

func (h *Handler) RejectSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectSubmission")
	defer span.End()

	h.reviewSubmission(w, r.WithContext(ctx), submission.StatusRejected)
}

func (h *Handler) reviewSubmission(w http.ResponseWriter, r *http.Request, to submission.Status) {
	ctx := r.Context()
	actor, err := requestActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req reviewSubmissionRequest
	if r.ContentLength != 0 {
		if err := h.decodeRequest(ctx, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	submissionID := strings.TrimSpace(r.PathValue("submissionID"))
	review := h.submissionService.Reject
	if to == submission.StatusApproved {
		review = h.submissionService.Approve
	}
	sub, err := review(ctx, actor, submissionID, req.Note)
	if err != nil {
		h.logger.WarnContext(ctx, "review submission failed", "submission_id", submissionID, "status", string(to), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, submissionToDTO(sub))
}
