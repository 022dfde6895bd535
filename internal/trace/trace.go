// Package trace wraps zap for the simulator's optional debug/trace output.
// Per the error-handling design, this instrumentation has zero effect on
// control flow: the scheduler consults it only after a decision has already
// been made.
package trace

import (
	"go.uber.org/zap"
)

// Logger is the narrow interface the scheduler and branch-stepping code
// depend on, rather than *zap.SugaredLogger directly: a collaborator
// passed in by the driver, never a package-level global.
type Logger interface {
	Transition(state int, sym byte, next int, forks int)
	Preempted(state int, steps uint64)
	Verdict(v string, steps uint64)
}

// noop discards everything; used when --trace is not set so callers never
// need to nil-check the logger.
type noop struct{}

func (noop) Transition(int, byte, int, int) {}
func (noop) Preempted(int, uint64)          {}
func (noop) Verdict(string, uint64)         {}

// NewNoop returns a Logger that discards all events.
func NewNoop() Logger { return noop{} }

// zapLogger adapts a *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewDevelopment returns a Logger backed by a zap development logger
// writing to stderr, for use when --trace is set.
func NewDevelopment() (Logger, error) {
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{s: l.Sugar()}, nil
}

func (z *zapLogger) Transition(state int, sym byte, next int, forks int) {
	if forks > 0 {
		z.s.Debugw("transition", "state", state, "symbol", string(sym), "next", next, "forks", forks)
		return
	}
	z.s.Debugw("transition", "state", state, "symbol", string(sym), "next", next)
}

func (z *zapLogger) Preempted(state int, steps uint64) {
	z.s.Debugw("preempted", "state", state, "steps", steps)
}

func (z *zapLogger) Verdict(v string, steps uint64) {
	z.s.Debugw("verdict", "result", v, "steps", steps)
}
