package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/quizgrid/pkg/cache"
	"github.com/matzehuels/quizgrid/pkg/quiz"
)

// Redis stores each quiz as a JSON string under <prefix>quiz:<id> and keeps
// creation order in the sorted set <prefix>quizzes.
type Redis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisFromClient(client, prefix), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "quizgrid:"
	}
	return &Redis{client: client, prefix: prefix, now: time.Now}
}

// indexScore orders the index by creation time in milliseconds, which a
// float64 score holds exactly. Redis breaks equal scores by member, so
// quizzes created in the same millisecond list by id.
func indexScore(t time.Time) float64 { return float64(t.UnixMilli()) }

func (s *Redis) quizKey(id string) string { return s.prefix + "quiz:" + id }
func (s *Redis) indexKey() string         { return s.prefix + "quizzes" }

// readRetry runs a read, retrying transient failures. redis.Nil is not a
// failure.
func readRetry(ctx context.Context, fn func() error) error {
	return cache.RetryWithBackoff(ctx, func() error {
		err := fn()
		if err == nil || errors.Is(err, redis.Nil) {
			return err
		}
		return cache.Retryable(err)
	})
}

func decodeQuiz(data []byte) (*quiz.Quiz, error) {
	var q quiz.Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	if q.Components == nil {
		q.Components = []quiz.Component{}
	}
	return &q, nil
}

func (s *Redis) Get(ctx context.Context, id string) (*quiz.Quiz, error) {
	var data []byte
	err := readRetry(ctx, func() error {
		var err error
		data, err = s.client.Get(ctx, s.quizKey(id)).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	q, err := decodeQuiz(data)
	if err != nil {
		return nil, fmt.Errorf("decode quiz %s: %w", id, err)
	}
	return q, nil
}

func (s *Redis) List(ctx context.Context) ([]*quiz.Quiz, error) {
	var ids []string
	err := readRetry(ctx, func() error {
		var err error
		ids, err = s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.quizKey(id)
	}
	var vals []any
	err = readRetry(ctx, func() error {
		var err error
		vals, err = s.client.MGet(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]*quiz.Quiz, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// Index entry without a document; deleted concurrently.
			continue
		}
		q, err := decodeQuiz([]byte(str))
		if err != nil {
			return nil, fmt.Errorf("decode quiz %s: %w", ids[i], err)
		}
		out = append(out, q)
	}
	return out, nil
}

func (s *Redis) put(ctx context.Context, q *quiz.Quiz) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.quizKey(q.ID), data, 0)
		pipe.ZAddNX(ctx, s.indexKey(), redis.Z{Score: indexScore(q.CreatedAt), Member: q.ID})
		return nil
	})
	return err
}

func (s *Redis) Create(ctx context.Context, title string) (*quiz.Quiz, error) {
	q := quiz.New(quiz.NewID(), title, s.now())
	if err := s.put(ctx, q); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return q, nil
}

func (s *Redis) ReplaceComponents(ctx context.Context, id string, comps []quiz.Component) (*quiz.Quiz, error) {
	now := s.now()
	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = quiz.New(id, quiz.DefaultTitle, now)
	}
	q.Components = quiz.CloneComponents(comps)
	q.UpdatedAt = now
	if err := s.put(ctx, q); err != nil {
		return nil, fmt.Errorf("replace components: %w", err)
	}
	return q, nil
}

func (s *Redis) Delete(ctx context.Context, id string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.quizKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete quiz: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *Redis) Close() error { return s.client.Close() }

var _ Store = (*Redis)(nil)
