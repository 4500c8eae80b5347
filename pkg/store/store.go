// Package store persists quizzes behind a single [Store] interface.
//
// Callers receive a Store by injection and never know which backend sits
// behind it:
//   - memory: process-local list (default, lost on restart)
//   - file: one JSON document per quiz under a directory
//   - sqlite: single-file database via modernc.org/sqlite
//   - redis: shared store for multi-instance deployments
//   - mongo: one document per quiz in a MongoDB collection
//
// Every mutation replaces a quiz's component list as a whole. There is no
// optimistic concurrency: concurrent writers to the same quiz race and the
// last write wins.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/quizgrid/pkg/observability"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendRedis, BackendMongo}

// SampleTitles are the quizzes Seed creates in an empty store.
var SampleTitles = []string{"Sample Quiz 1", "Sample Quiz 2"}

// Store is the quiz storage capability.
type Store interface {
	// Get returns the quiz with id, or nil, nil when it does not exist.
	Get(ctx context.Context, id string) (*quiz.Quiz, error)

	// List returns all quizzes in creation order.
	List(ctx context.Context) ([]*quiz.Quiz, error)

	// Create stores a new quiz with a fresh id and no components.
	Create(ctx context.Context, title string) (*quiz.Quiz, error)

	// ReplaceComponents replaces the component list of quiz id and bumps
	// its UpdatedAt. When no quiz with id exists, one titled
	// quiz.DefaultTitle is created under that id.
	ReplaceComponents(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error)

	// Delete removes quiz id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// Close releases backend resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	// Backend is one of Backends. Empty means memory.
	Backend string

	// DSN is backend specific: a directory (file), a database path
	// (sqlite), an address (redis) or a connection URI (mongo).
	DSN string

	// Database names the mongo database.
	Database string

	// Prefix namespaces redis keys.
	Prefix string
}

// Open creates the configured backend. The returned Store reports every
// call to the registered observability store hooks.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := opts.Backend
	if backend == "" {
		backend = BackendMemory
	}

	switch backend {
	case BackendMemory:
		s = NewMemory()
	case BackendFile:
		s, err = NewFile(opts.DSN)
	case BackendSQLite:
		s, err = NewSQLite(opts.DSN)
	case BackendRedis:
		s, err = NewRedis(ctx, opts.DSN, opts.Prefix)
	case BackendMongo:
		s, err = NewMongo(ctx, opts.DSN, opts.Database)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	return Instrument(s, backend), nil
}

// Seed creates the given quizzes when the store holds none.
// It returns the number of quizzes created.
func Seed(ctx context.Context, s Store, titles ...string) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, title := range titles {
		if _, err := s.Create(ctx, title); err != nil {
			return i, err
		}
	}
	return len(titles), nil
}

// Instrument wraps s so every call is reported to observability.Store().
func Instrument(s Store, backend string) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{inner: s, backend: backend}
}

type instrumented struct {
	inner   Store
	backend string
}

func (s *instrumented) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, s.backend, op, time.Since(start), err)
}

func (s *instrumented) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	start := time.Now()
	q, err := s.inner.Get(ctx, id)
	s.report(ctx, "get", start, err)
	return q, err
}

func (s *instrumented) List(ctx context.Context) ([]*quiz.Quiz, error) {
	start := time.Now()
	qs, err := s.inner.List(ctx)
	s.report(ctx, "list", start, err)
	return qs, err
}

func (s *instrumented) Create(ctx context.Context, title string) (*quiz.Quiz, error) {
	start := time.Now()
	q, err := s.inner.Create(ctx, title)
	s.report(ctx, "create", start, err)
	return q, err
}

func (s *instrumented) ReplaceComponents(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	start := time.Now()
	q, err := s.inner.ReplaceComponents(ctx, id, comps)
	s.report(ctx, "replace", start, err)
	return q, err
}

func (s *instrumented) Delete(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := s.inner.Delete(ctx, id)
	s.report(ctx, "delete", start, err)
	return ok, err
}

func (s *instrumented) Close() error { return s.inner.Close() }
