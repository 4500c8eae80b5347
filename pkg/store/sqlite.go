package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/quizgrid/pkg/quiz"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS quizzes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	components TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite stores quizzes in a single table; the component list is kept as
// a JSON column since it is only ever replaced whole.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the database at path and ensures the schema.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "quizgrid.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas below are per connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*quiz.Quiz, error) {
	var (
		q                quiz.Quiz
		comps            string
		created, updated int64
	)
	if err := row.Scan(&q.ID, &q.Title, &comps, &created, &updated); err != nil {
		return nil, err
	}
	parsed, err := quiz.ParseComponents([]byte(comps))
	if err != nil {
		return nil, fmt.Errorf("quiz %s: %w", q.ID, err)
	}
	q.Components = parsed
	q.CreatedAt = time.Unix(0, created)
	q.UpdatedAt = time.Unix(0, updated)
	return &q, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, components, created_at, updated_at FROM quizzes WHERE id = ?`, id)
	q, err := scanQuiz(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (s *SQLite) List(ctx context.Context) ([]*quiz.Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, components, created_at, updated_at FROM quizzes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []*quiz.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("list quizzes: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLite) Create(ctx context.Context, title string) (*quiz.Quiz, error) {
	q := quiz.New(quiz.NewID(), title, s.now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, title, components, created_at, updated_at) VALUES (?, ?, '[]', ?, ?)`,
		q.ID, q.Title, q.CreatedAt.UnixNano(), q.UpdatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

func (s *SQLite) ReplaceComponents(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	if comps == nil {
		comps = []quiz.Component{}
	}
	data, err := json.Marshal(comps)
	if err != nil {
		return nil, fmt.Errorf("marshal components: %w", err)
	}
	now := s.now().UnixNano()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quizzes (id, title, components, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET components = excluded.components, updated_at = excluded.updated_at`,
		id, quiz.DefaultTitle, string(data), now, now)
	if err != nil {
		return nil, fmt.Errorf("replace components: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *SQLite) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete quiz: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete quiz: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

var _ Store = (*SQLite)(nil)
