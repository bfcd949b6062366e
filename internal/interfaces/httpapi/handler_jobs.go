package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/club-roster/internal/usecase"
)

func (h *Handler) RunAwardJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunAwardJob")
	defer span.End()

	if h.awardJobService == nil {
		writeError(ctx, w, fmt.Errorf("%w: award job is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.awardJobService.Run(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run award job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, awardJobResultDTO{
		RanAt:      result.RanAt,
		Attendance: attendanceToDTO(result.Attendance),
		Resolved:   nonNil(result.Resolved),
		Pending:    nonNil(result.Pending),
		Shared:     result.Shared,
	})
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
