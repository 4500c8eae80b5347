package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// Memory keeps quizzes in a process-local list.
// Returned quizzes are copies; mutating them does not affect the store.
type Memory struct {
	mu      sync.RWMutex
	quizzes []*quiz.Quiz
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) index(id string) int {
	return slices.IndexFunc(m.quizzes, func(q *quiz.Quiz) bool { return q.ID == id })
}

func (m *Memory) Get(_ context.Context, id string) (*quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.quizzes[i].Clone(), nil
	}
	return nil, nil
}

func (m *Memory) List(_ context.Context) ([]*quiz.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*quiz.Quiz, len(m.quizzes))
	for i, q := range m.quizzes {
		out[i] = q.Clone()
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, title string) (*quiz.Quiz, error) {
	q := quiz.New(quiz.NewID(), title, m.now())
	m.mu.Lock()
	m.quizzes = append(m.quizzes, q)
	m.mu.Unlock()
	return q.Clone(), nil
}

func (m *Memory) ReplaceComponents(_ context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		q := quiz.New(id, quiz.DefaultTitle, now)
		q.Components = quiz.CloneComponents(comps)
		m.quizzes = append(m.quizzes, q)
		return q.Clone(), nil
	}

	q := m.quizzes[i].Clone()
	q.Components = quiz.CloneComponents(comps)
	q.UpdatedAt = now
	m.quizzes[i] = q
	return q.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return false, nil
	}
	m.quizzes = slices.Delete(m.quizzes, i, i+1)
	return true, nil
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
