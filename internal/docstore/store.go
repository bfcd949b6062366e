package docstore

import (
	"context"
	"path"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrVersionConflict = crerr.New("document version conflict")
	ErrAlreadyExists   = crerr.New("document already exists")
	ErrInvalidPath     = crerr.New("invalid document path")
	ErrClosed          = crerr.New("document store closed")
)

// Document is one stored JSON body addressed by a slash separated path.
// Version starts at 1 and increases on every write.
type Document struct {
	Path      string
	Body      []byte
	Version   int64
	UpdatedAt time.Time
}

// ID is the last path segment.
func (d Document) ID() string {
	return path.Base(d.Path)
}

// Snapshot is the full content of a collection at one instant.
type Snapshot struct {
	Collection string
	Docs       []Document
	ReadAt     time.Time
}

type Op string

const (
	OpEq  Op = "=="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
)

// Filter compares a top-level body field against Value.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Order sorts by a top-level body field. Ties fall back to the document path.
type Order struct {
	Field string
	Desc  bool
}

// Precondition guards a write. The zero value always passes.
type Precondition struct {
	MustNotExist bool
	// MatchVersion, when non-zero, requires the stored version to equal it.
	MatchVersion int64
}

type SetOptions struct {
	// Merge overlays the top-level fields of body onto the stored document.
	Merge        bool
	Precondition Precondition
}

// Store is the replicated document store the roster lives in.
type Store interface {
	// Subscribe emits the full collection immediately and after every write to it.
	// Slow consumers only ever see the latest snapshot. The channel closes with ctx.
	Subscribe(ctx context.Context, collection string) (<-chan Snapshot, error)
	Get(ctx context.Context, docPath string) (Document, bool, error)
	Set(ctx context.Context, docPath string, body []byte, opts SetOptions) (Document, error)
	// Delete removes a document; deleting an absent document is not an error.
	Delete(ctx context.Context, docPath string) error
	// Query lists the direct children of collection matching every filter.
	Query(ctx context.Context, collection string, filters []Filter, orders []Order) ([]Document, error)
	Now() time.Time
}

// Namespace prefixes collection paths with the tenant they belong to.
type Namespace string

func (n Namespace) Collection(name string) string {
	if n == "" {
		return name
	}
	return "tenants/" + string(n) + "/" + name
}

func (n Namespace) Doc(collection, id string) string {
	return n.Collection(collection) + "/" + id
}

// CollectionOf returns the parent collection of a document path.
func CollectionOf(docPath string) string {
	return path.Dir(docPath)
}

func validatePath(docPath string) error {
	if docPath == "" || strings.HasPrefix(docPath, "/") || strings.HasSuffix(docPath, "/") {
		return crerr.Wrapf(ErrInvalidPath, "%q", docPath)
	}
	if strings.Count(docPath, "/")%2 == 0 {
		return crerr.Wrapf(ErrInvalidPath, "%q does not name a document", docPath)
	}
	for _, segment := range strings.Split(docPath, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return crerr.Wrapf(ErrInvalidPath, "%q", docPath)
		}
	}
	return nil
}

// IsConflict reports whether err came from a failed write precondition.
func IsConflict(err error) bool {
	return crerr.Is(err, ErrVersionConflict) || crerr.Is(err, ErrAlreadyExists)
}
