package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs an operation's completion with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Seeded 2 quizzes (3ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// placementLogger reports placement decisions at debug level.
type placementLogger struct {
	logger *log.Logger
}

func (p placementLogger) OnPlacement(_ context.Context, quizID, kind string, accepted bool, reason string) {
	if accepted {
		p.logger.Debug("placement accepted", "quiz", quizID, "kind", kind)
		return
	}
	p.logger.Debug("placement refused", "quiz", quizID, "kind", kind, "reason", reason)
}

// storeLogger reports store calls at debug level and failures as warnings.
type storeLogger struct {
	logger *log.Logger
}

func (s storeLogger) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	if err != nil {
		s.logger.Warn("store call failed", "backend", backend, "op", op, "err", err)
		return
	}
	s.logger.Debug("store call", "backend", backend, "op", op, "duration", d.Round(time.Microsecond))
}
