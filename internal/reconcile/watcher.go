package reconcile

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/club-roster/internal/docstore"
	"github.com/riskibarqy/club-roster/internal/platform/logging"
)

// Source binds one store collection to the feed key it publishes under.
type Source[T any] struct {
	Name       string
	Collection string
	Decode     func(docstore.Snapshot) (T, error)
	Equal      func(a, b T) bool
}

type stream struct {
	name string
	run  func(ctx context.Context) error
}

// Watcher subscribes to each registered collection in its own goroutine, so a
// noisy collection never delays another.
type Watcher struct {
	store   docstore.Store
	feed    *Feed
	logger  *logging.Logger
	streams []stream
}

func NewWatcher(store docstore.Store, feed *Feed, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Watcher{store: store, feed: feed, logger: logger.Named("reconcile")}
}

// Register adds a collection to w and returns its reconciler.
func Register[T any](w *Watcher, src Source[T]) *Reconciler[T] {
	w.feed.Declare(src.Name)
	r := NewReconciler(src.Equal, func(ctx context.Context, v T, revision uint64) {
		w.feed.Publish(src.Name, v, revision)
		w.logger.DebugContext(ctx, "snapshot published", "collection", src.Name, "revision", revision)
	})

	w.streams = append(w.streams, stream{
		name: src.Name,
		run: func(ctx context.Context) error {
			ch, err := w.store.Subscribe(ctx, src.Collection)
			if err != nil {
				return crerr.Wrapf(err, "subscribe %s", src.Collection)
			}
			for {
				select {
				case <-ctx.Done():
					return nil
				case snap, ok := <-ch:
					if !ok {
						return nil
					}
					v, err := src.Decode(snap)
					if err != nil {
						w.logger.ErrorContext(ctx, "decode snapshot", "collection", src.Name, "error", err)
						continue
					}
					if !r.Apply(ctx, v) {
						w.logger.DebugContext(ctx, "snapshot unchanged", "collection", src.Name)
					}
				}
			}
		},
	})
	return r
}

// Run blocks until ctx is done or a stream fails to subscribe.
func (w *Watcher) Run(ctx context.Context) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for _, s := range w.streams {
		p.Go(func(ctx context.Context) error {
			w.logger.InfoContext(ctx, "watching collection", "collection", s.name)
			return s.run(ctx)
		})
	}
	return p.Wait()
}
