package docstore

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/club-roster/internal/platform/logging"
	qb "github.com/riskibarqy/club-roster/internal/platform/querybuilder"
)

const (
	DefaultTable         = "documents"
	DefaultNotifyChannel = "documents_changed"
)

var documentColumns = []string{"path", "body", "version", "updated_at"}

type documentRow struct {
	Path      string    `db:"path"`
	Body      []byte    `db:"body"`
	Version   int64     `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r documentRow) toDocument() Document {
	return Document{Path: r.Path, Body: r.Body, Version: r.Version, UpdatedAt: r.UpdatedAt.UTC()}
}

type PostgresConfig struct {
	// DSN opens the dedicated LISTEN connection used by Subscribe.
	DSN                  string
	Table                string
	NotifyChannel        string
	MinReconnectInterval time.Duration
	MaxReconnectInterval time.Duration
}

// Postgres keeps documents in one JSONB table. A trigger sends the collection
// name over NOTIFY on every write, which drives subscriptions.
type Postgres struct {
	db     *sqlx.DB
	cfg    PostgresConfig
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	subs     map[string]map[*subscriber]struct{}
	listener *pq.Listener
	done     chan struct{}
	closed   bool
}

func NewPostgres(db *sqlx.DB, cfg PostgresConfig, logger *logging.Logger) *Postgres {
	if strings.TrimSpace(cfg.Table) == "" {
		cfg.Table = DefaultTable
	}
	if strings.TrimSpace(cfg.NotifyChannel) == "" {
		cfg.NotifyChannel = DefaultNotifyChannel
	}
	if cfg.MinReconnectInterval <= 0 {
		cfg.MinReconnectInterval = time.Second
	}
	if cfg.MaxReconnectInterval < cfg.MinReconnectInterval {
		cfg.MaxReconnectInterval = time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Postgres{
		db:     db,
		cfg:    cfg,
		logger: logger.Named("docstore.postgres"),
		now:    func() time.Time { return time.Now().UTC() },
		subs:   make(map[string]map[*subscriber]struct{}),
		done:   make(chan struct{}),
	}
}

func (p *Postgres) Now() time.Time {
	return p.now()
}

func (p *Postgres) Get(ctx context.Context, docPath string) (Document, bool, error) {
	if err := validatePath(docPath); err != nil {
		return Document{}, false, err
	}

	query, args, err := qb.Select(documentColumns...).From(p.cfg.Table).
		Where(qb.Eq("path", docPath)).
		ToSQL()
	if err != nil {
		return Document{}, false, crerr.Wrap(err, "build select document query")
	}

	var row documentRow
	if err := p.db.GetContext(ctx, &row, query, args...); err != nil {
		if crerr.Is(err, sql.ErrNoRows) {
			return Document{}, false, nil
		}
		return Document{}, false, crerr.Wrapf(err, "select document %s", docPath)
	}

	return row.toDocument(), true, nil
}

func (p *Postgres) Set(ctx context.Context, docPath string, body []byte, opts SetOptions) (Document, error) {
	if err := validatePath(docPath); err != nil {
		return Document{}, err
	}

	query, args, err := p.buildSet(docPath, string(body), opts)
	if err != nil {
		return Document{}, crerr.Wrap(err, "build set document query")
	}

	var row documentRow
	if err := p.db.GetContext(ctx, &row, query, args...); err != nil {
		if !crerr.Is(err, sql.ErrNoRows) {
			return Document{}, crerr.Wrapf(err, "write document %s", docPath)
		}
		if opts.Precondition.MustNotExist {
			return Document{}, crerr.Wrapf(ErrAlreadyExists, "%s", docPath)
		}
		return Document{}, crerr.Wrapf(ErrVersionConflict, "%s: want version %d", docPath, opts.Precondition.MatchVersion)
	}

	return row.toDocument(), nil
}

func (p *Postgres) buildSet(docPath, body string, opts SetOptions) (string, []any, error) {
	returning := "RETURNING " + strings.Join(documentColumns, ", ")
	now := p.now()

	if opts.Precondition.MustNotExist {
		return qb.InsertInto(p.cfg.Table).
			Columns("path", "collection", "body", "version", "updated_at").
			Values(docPath, CollectionOf(docPath), body, 1, now).
			Suffix("ON CONFLICT (path) DO NOTHING " + returning).
			ToSQL()
	}

	if opts.Precondition.MatchVersion != 0 {
		update := qb.Update(p.cfg.Table)
		if opts.Merge {
			update.SetExpr("body", "body || ?::jsonb", body)
		} else {
			update.SetExpr("body", "?::jsonb", body)
		}
		return update.
			SetExpr("version", "version + 1").
			Set("updated_at", now).
			Where(qb.Eq("path", docPath), qb.Eq("version", opts.Precondition.MatchVersion)).
			Suffix(returning).
			ToSQL()
	}

	bodyExpr := "EXCLUDED.body"
	if opts.Merge {
		bodyExpr = p.cfg.Table + ".body || EXCLUDED.body"
	}
	return qb.InsertInto(p.cfg.Table).
		Columns("path", "collection", "body", "version", "updated_at").
		Values(docPath, CollectionOf(docPath), body, 1, now).
		Suffix("ON CONFLICT (path) DO UPDATE SET body = " + bodyExpr +
			", version = " + p.cfg.Table + ".version + 1, updated_at = EXCLUDED.updated_at " + returning).
		ToSQL()
}

func (p *Postgres) Delete(ctx context.Context, docPath string) error {
	if err := validatePath(docPath); err != nil {
		return err
	}

	query, args, err := qb.DeleteFrom(p.cfg.Table).Where(qb.Eq("path", docPath)).ToSQL()
	if err != nil {
		return crerr.Wrap(err, "build delete document query")
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return crerr.Wrapf(err, "delete document %s", docPath)
	}
	return nil
}

func (p *Postgres) Query(ctx context.Context, collection string, filters []Filter, orders []Order) ([]Document, error) {
	query, args, err := p.buildQuery(collection, filters, orders)
	if err != nil {
		return nil, crerr.Wrap(err, "build query documents")
	}

	var rows []documentRow
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrapf(err, "query collection %s", collection)
	}

	out := make([]Document, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDocument())
	}
	return out, nil
}

func (p *Postgres) buildQuery(collection string, filters []Filter, orders []Order) (string, []any, error) {
	conditions := []qb.Condition{qb.Eq("collection", collection)}
	for _, f := range filters {
		op, err := sqlOperator(f.Op)
		if err != nil {
			return "", nil, err
		}
		encoded, err := Encode(f.Value)
		if err != nil {
			return "", nil, err
		}
		conditions = append(conditions, qb.JSONField("body", f.Field, op, string(encoded)))
	}

	orderBy := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		direction := " ASC"
		if o.Desc {
			direction = " DESC"
		}
		orderBy = append(orderBy, qb.JSONPath("body", o.Field)+direction)
	}
	orderBy = append(orderBy, "path")

	return qb.Select(documentColumns...).From(p.cfg.Table).
		Where(conditions...).
		OrderBy(orderBy...).
		ToSQL()
}

func sqlOperator(op Op) (string, error) {
	switch op {
	case OpEq:
		return "=", nil
	case OpLt, OpLte, OpGt, OpGte:
		return string(op), nil
	}
	return "", crerr.Newf("unsupported filter operator %q", op)
}

func (p *Postgres) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	if err := p.ensureListener(); err != nil {
		return nil, err
	}

	sub := &subscriber{ch: make(chan Snapshot, 1)}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.subs[collection] == nil {
		p.subs[collection] = make(map[*subscriber]struct{})
	}
	p.subs[collection][sub] = struct{}{}
	p.mu.Unlock()

	p.refresh(ctx, collection)

	go func() {
		select {
		case <-ctx.Done():
		case <-p.done:
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, ok := p.subs[collection][sub]; ok {
			delete(p.subs[collection], sub)
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

func (p *Postgres) ensureListener() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.listener != nil {
		return nil
	}
	if strings.TrimSpace(p.cfg.DSN) == "" {
		return crerr.New("postgres document store subscriptions require a DSN")
	}

	listener := pq.NewListener(p.cfg.DSN, p.cfg.MinReconnectInterval, p.cfg.MaxReconnectInterval, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			p.logger.Warn("document listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(p.cfg.NotifyChannel); err != nil {
		_ = listener.Close()
		return crerr.Wrapf(err, "listen on %s", p.cfg.NotifyChannel)
	}
	p.listener = listener

	go p.dispatch(listener)
	return nil
}

func (p *Postgres) dispatch(listener *pq.Listener) {
	ctx := context.Background()
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-p.done:
			return
		case n, ok := <-listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// Reconnected; notifications may have been missed.
				for _, collection := range p.collections() {
					p.refresh(ctx, collection)
				}
				continue
			}
			p.refresh(ctx, n.Extra)
		case <-ping.C:
			if err := listener.Ping(); err != nil {
				p.logger.Warn("document listener ping failed", "error", err)
			}
		}
	}
}

func (p *Postgres) collections() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.subs))
	for collection, subs := range p.subs {
		if len(subs) > 0 {
			out = append(out, collection)
		}
	}
	return out
}

// refresh re-reads a collection and offers it to its subscribers.
func (p *Postgres) refresh(ctx context.Context, collection string) {
	p.mu.Lock()
	n := len(p.subs[collection])
	p.mu.Unlock()
	if n == 0 {
		return
	}

	docs, err := p.Query(ctx, collection, nil, nil)
	if err != nil {
		p.logger.Error("refresh subscribed collection", "collection", collection, "error", err)
		return
	}
	snap := Snapshot{Collection: collection, Docs: docs, ReadAt: p.now()}

	p.mu.Lock()
	defer p.mu.Unlock()
	for sub := range p.subs[collection] {
		sub.offer(snap)
	}
}

// Close stops the listener and every subscription. The *sqlx.DB stays open.
func (p *Postgres) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	listener := p.listener
	for collection, subs := range p.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(p.subs, collection)
	}
	p.mu.Unlock()

	if listener != nil {
		return listener.Close()
	}
	return nil
}
