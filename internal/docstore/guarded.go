package docstore

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/club-roster/internal/platform/logging"
	"github.com/riskibarqy/club-roster/internal/platform/resilience"
)

var ErrUnavailable = crerr.New("document store is temporarily unavailable")

// Guarded fails fast with ErrUnavailable once the wrapped store keeps erroring.
// Precondition failures and cancelled contexts do not count as failures.
type Guarded struct {
	next    Store
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewGuarded(next Store, cfg resilience.CircuitBreakerConfig, logger *logging.Logger) Store {
	if !cfg.Enabled {
		return next
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg = resilience.NormalizeCircuitBreakerConfig(cfg)

	g := &Guarded{
		next:    next,
		breaker: resilience.NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq),
		logger:  logger.Named("docstore.breaker"),
	}
	g.breaker.OnStateChange(func(from, to resilience.CircuitState) {
		g.logger.Warn("document store circuit changed", "from", string(from), "to", string(to))
	})
	return g
}

func (g *Guarded) Now() time.Time {
	return g.next.Now()
}

func (g *Guarded) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	return g.next.Subscribe(ctx, collection)
}

func (g *Guarded) Get(ctx context.Context, docPath string) (Document, bool, error) {
	var (
		doc    Document
		exists bool
	)
	err := g.guard(func() error {
		var err error
		doc, exists, err = g.next.Get(ctx, docPath)
		return err
	})
	return doc, exists, err
}

func (g *Guarded) Set(ctx context.Context, docPath string, body []byte, opts SetOptions) (Document, error) {
	var doc Document
	err := g.guard(func() error {
		var err error
		doc, err = g.next.Set(ctx, docPath, body, opts)
		return err
	})
	return doc, err
}

func (g *Guarded) Delete(ctx context.Context, docPath string) error {
	return g.guard(func() error {
		return g.next.Delete(ctx, docPath)
	})
}

func (g *Guarded) Query(ctx context.Context, collection string, filters []Filter, orders []Order) ([]Document, error) {
	var docs []Document
	err := g.guard(func() error {
		var err error
		docs, err = g.next.Query(ctx, collection, filters, orders)
		return err
	})
	return docs, err
}

func (g *Guarded) guard(fn func() error) error {
	if err := g.breaker.Allow(); err != nil {
		return crerr.WithSecondaryError(crerr.Wrap(ErrUnavailable, "circuit open"), err)
	}

	err := fn()
	if isStoreFailure(err) {
		g.breaker.RecordFailure()
	} else {
		g.breaker.RecordSuccess()
	}
	return err
}

func isStoreFailure(err error) bool {
	if err == nil {
		return false
	}
	if IsConflict(err) || crerr.Is(err, ErrInvalidPath) {
		return false
	}
	if crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
