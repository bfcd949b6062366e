package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/club-roster/internal/domain/ledger"
	"github.com/riskibarqy/club-roster/internal/domain/player"
	"github.com/riskibarqy/club-roster/internal/reconcile"
	"github.com/riskibarqy/club-roster/internal/usecase"
)

const maxFeedWait = 25 * time.Second

// GetFeed returns the latest reconciled value of a collection. With
// ?after=<revision> it waits until a newer revision is published or the wait
// times out, in which case the current value is returned. Waiting on a
// collection the feed does not serve is rejected.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFeed")
	defer span.End()

	if h.feed == nil {
		writeError(ctx, w, fmt.Errorf("%w: feed is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	collection := strings.TrimSpace(r.PathValue("collection"))
	after, waitForNewer, err := parseRevision(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if waitForNewer && !h.feed.Known(collection) {
		writeError(ctx, w, fmt.Errorf("%w: unknown feed collection %q", usecase.ErrNotFound, collection))
		return
	}

	ev, ok := h.latestAfter(ctx, collection, after, waitForNewer)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: nothing published for collection %q", usecase.ErrNotFound, collection))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, feedEventDTO{
		Collection:  ev.Collection,
		Revision:    ev.Revision,
		PublishedAt: ev.PublishedAt,
		Value:       feedValueToDTO(ev.Value),
	})
}

func (h *Handler) latestAfter(ctx context.Context, collection string, after uint64, wait bool) (reconcile.Event, bool) {
	if !wait {
		return h.feed.Latest(collection)
	}

	timer := time.NewTimer(maxFeedWait)
	defer timer.Stop()
	for {
		next := h.feed.Next(collection)
		ev, ok := h.feed.Latest(collection)
		if ok && ev.Revision > after {
			h.feed.Cancel(collection, next)
			return ev, true
		}
		select {
		case <-next:
		case <-timer.C:
			h.feed.Cancel(collection, next)
			return h.feed.Latest(collection)
		case <-ctx.Done():
			h.feed.Cancel(collection, next)
			return h.feed.Latest(collection)
		}
	}
}

func parseRevision(r *http.Request) (uint64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("after"))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: query after must be a revision number", usecase.ErrInvalidInput)
	}
	return v, true, nil
}

func feedValueToDTO(v any) any {
	switch value := v.(type) {
	case []player.Player:
		return playersToDTO(value)
	case reconcile.TeamsView:
		if !value.Exists {
			return nil
		}
		return teamSetToDTO(value.Set)
	case []ledger.Ledger:
		return ledgersToDTO(value)
	default:
		return value
	}
}
