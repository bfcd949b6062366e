package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/club-roster/internal/platform/logging"
	"github.com/riskibarqy/club-roster/internal/reconcile"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

type Handler struct {
	rosterService     *usecase.RosterService
	teamService       *usecase.TeamService
	ledgerService     *usecase.LedgerService
	nominationService *usecase.NominationService
	submissionService *usecase.SubmissionService
	awardJobService   *usecase.AwardJobService
	feed              *reconcile.Feed
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	rosterService *usecase.RosterService,
	teamService *usecase.TeamService,
	ledgerService *usecase.LedgerService,
	nominationService *usecase.NominationService,
	submissionService *usecase.SubmissionService,
	awardJobService *usecase.AwardJobService,
	feed *reconcile.Feed,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		rosterService:     rosterService,
		teamService:       teamService,
		ledgerService:     ledgerService,
		nominationService: nominationService,
		submissionService: submissionService,
		awardJobService:   awardJobService,
		feed:              feed,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func requestActor(ctx context.Context) (usecase.Actor, error) {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return usecase.Actor{}, fmt.Errorf("%w: actor is missing from request context", usecase.ErrUnauthorized)
	}
	return actor, nil
}

func parseBoolQuery(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: query %s must be a boolean", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func parseIntQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: query %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}
