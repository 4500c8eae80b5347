package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	qerrors "github.com/matzehuels/quizgrid/pkg/errors"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// File stores each quiz as a JSON document <dir>/<id>.json.
type File struct {
	mu  sync.RWMutex
	dir string
	now func() time.Time
}

// NewFile creates a file store rooted at dir, creating it if needed.
// If dir is empty, defaults to ~/.local/share/quizgrid/quizzes/.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".local", "share", "quizgrid", "quizzes")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create quiz dir: %w", err)
	}
	return &File{dir: dir, now: time.Now}, nil
}

// Path returns the directory holding quiz files.
func (s *File) Path() string { return s.dir }

func (s *File) quizPath(id string) (string, error) {
	if err := qerrors.ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *File) read(path string) (*quiz.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read quiz file: %w", err)
	}
	var q quiz.Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parse quiz %s: %w", filepath.Base(path), err)
	}
	if q.Components == nil {
		q.Components = []quiz.Component{}
	}
	return &q, nil
}

func (s *File) write(q *quiz.Quiz) error {
	path, err := s.quizPath(q.ID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write quiz file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write quiz file: %w", err)
	}
	return nil
}

// Get returns nil for ids that cannot name a quiz file, as for any other
// missing quiz.
func (s *File) Get(_ context.Context, id string) (*quiz.Quiz, error) {
	path, err := s.quizPath(id)
	if err != nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(path)
}

func (s *File) List(_ context.Context) ([]*quiz.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read quiz dir: %w", err)
	}
	out := make([]*quiz.Quiz, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		q, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if q != nil {
			out = append(out, q)
		}
	}
	slices.SortFunc(out, func(a, b *quiz.Quiz) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *File) Create(_ context.Context, title string) (*quiz.Quiz, error) {
	q := quiz.New(quiz.NewID(), title, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *File) ReplaceComponents(_ context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	path, err := s.quizPath(id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.read(path)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = quiz.New(id, quiz.DefaultTitle, now)
	}
	q.Components = quiz.CloneComponents(comps)
	q.UpdatedAt = now
	if err := s.write(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *File) Delete(_ context.Context, id string) (bool, error) {
	path, err := s.quizPath(id)
	if err != nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove quiz file: %w", err)
	}
	return true, nil
}

func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
