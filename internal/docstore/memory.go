package docstore

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// Memory is an in-process Store. Every write, including one that leaves the
// body unchanged, produces a new snapshot for the collection's subscribers.
type Memory struct {
	mu     sync.Mutex
	docs   map[string]Document
	subs   map[string]map[*subscriber]struct{}
	now    func() time.Time
	closed bool
}

type subscriber struct {
	ch chan Snapshot
}

// offer replaces any undelivered snapshot with s.
func (s *subscriber) offer(snap Snapshot) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- snap:
	default:
	}
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]Document),
		subs: make(map[string]map[*subscriber]struct{}),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the server timestamp source.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now()
}

func (m *Memory) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	sub := &subscriber{ch: make(chan Snapshot, 1)}
	if m.subs[collection] == nil {
		m.subs[collection] = make(map[*subscriber]struct{})
	}
	m.subs[collection][sub] = struct{}{}
	sub.offer(m.snapshotLocked(collection))

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[collection][sub]; ok {
			delete(m.subs[collection], sub)
			close(sub.ch)
		}
	}()

	return sub.ch, nil
}

func (m *Memory) Get(ctx context.Context, docPath string) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}
	if err := validatePath(docPath); err != nil {
		return Document{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[docPath]
	if !ok {
		return Document{}, false, nil
	}
	return cloneDocument(doc), true, nil
}

func (m *Memory) Set(ctx context.Context, docPath string, body []byte, opts SetOptions) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if err := validatePath(docPath); err != nil {
		return Document{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Document{}, ErrClosed
	}

	current, exists := m.docs[docPath]
	if err := checkPrecondition(docPath, current, exists, opts.Precondition); err != nil {
		return Document{}, err
	}

	next := append([]byte(nil), body...)
	if opts.Merge && exists {
		merged, err := Merge(current.Body, body)
		if err != nil {
			return Document{}, err
		}
		next = merged
	}

	doc := Document{
		Path:      docPath,
		Body:      next,
		Version:   current.Version + 1,
		UpdatedAt: m.now(),
	}
	m.docs[docPath] = doc
	m.publishLocked(CollectionOf(docPath))

	return cloneDocument(doc), nil
}

func (m *Memory) Delete(ctx context.Context, docPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validatePath(docPath); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.docs[docPath]; !ok {
		return nil
	}
	delete(m.docs, docPath)
	m.publishLocked(CollectionOf(docPath))
	return nil
}

func (m *Memory) Query(ctx context.Context, collection string, filters []Filter, orders []Order) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matchers, err := compileFilters(filters)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	docs := m.collectionLocked(collection)
	m.mu.Unlock()

	out := make([]Document, 0, len(docs))
	fields := make(map[string]map[string]any, len(docs))
	for _, doc := range docs {
		body, err := decodeFields(doc.Body)
		if err != nil {
			return nil, crerr.Wrapf(err, "query %s", doc.Path)
		}
		if !matchesAll(body, matchers) {
			continue
		}
		fields[doc.Path] = body
		out = append(out, doc)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := fields[out[i].Path], fields[out[j].Path]
		for _, o := range orders {
			c, ok := compareValues(a[o.Field], b[o.Field])
			if !ok || c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].Path < out[j].Path
	})

	return out, nil
}

// Close stops every subscription. Later writes fail with ErrClosed.
func (m *Memory) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for collection, subs := range m.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(m.subs, collection)
	}
}

func (m *Memory) collectionLocked(collection string) []Document {
	prefix := collection + "/"
	out := make([]Document, 0)
	for p, doc := range m.docs {
		if !strings.HasPrefix(p, prefix) || strings.Contains(p[len(prefix):], "/") {
			continue
		}
		out = append(out, cloneDocument(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (m *Memory) snapshotLocked(collection string) Snapshot {
	return Snapshot{Collection: collection, Docs: m.collectionLocked(collection), ReadAt: m.now()}
}

func (m *Memory) publishLocked(collection string) {
	subs := m.subs[collection]
	if len(subs) == 0 {
		return
	}
	for sub := range subs {
		sub.offer(m.snapshotLocked(collection))
	}
}

func checkPrecondition(docPath string, current Document, exists bool, pre Precondition) error {
	if pre.MustNotExist && exists {
		return crerr.Wrapf(ErrAlreadyExists, "%s", docPath)
	}
	if pre.MatchVersion != 0 && (!exists || current.Version != pre.MatchVersion) {
		return crerr.Wrapf(ErrVersionConflict, "%s: want version %d, have %d", docPath, pre.MatchVersion, current.Version)
	}
	return nil
}

func cloneDocument(doc Document) Document {
	doc.Body = append([]byte(nil), doc.Body...)
	return doc
}

type matcher struct {
	field string
	op    Op
	value any
}

func compileFilters(filters []Filter) ([]matcher, error) {
	out := make([]matcher, 0, len(filters))
	for _, f := range filters {
		switch f.Op {
		case OpEq, OpLt, OpLte, OpGt, OpGte:
		default:
			return nil, crerr.Newf("unsupported filter operator %q", f.Op)
		}
		v, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, matcher{field: f.Field, op: f.Op, value: v})
	}
	return out, nil
}

func matchesAll(body map[string]any, matchers []matcher) bool {
	for _, m := range matchers {
		got, ok := body[m.field]
		if !ok {
			return false
		}
		if m.op == OpEq {
			if !reflect.DeepEqual(got, m.value) {
				return false
			}
			continue
		}
		c, comparable := compareValues(got, m.value)
		if !comparable {
			return false
		}
		switch m.op {
		case OpLt:
			if c >= 0 {
				return false
			}
		case OpLte:
			if c > 0 {
				return false
			}
		case OpGt:
			if c <= 0 {
				return false
			}
		case OpGte:
			if c < 0 {
				return false
			}
		}
	}
	return true
}

// compareValues orders two decoded JSON scalars of the same type.
func compareValues(a, b any) (int, bool) {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}
