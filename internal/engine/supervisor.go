package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Supervisor runs the steps of a turn and keeps a failing step from
// aborting the rest. Errors and panics are logged and counted.
type Supervisor struct {
	log      *zap.Logger
	failures int
}

// NewSupervisor returns a supervisor logging to log. A nil logger discards.
func NewSupervisor(log *zap.Logger) *Supervisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{log: log}
}

// Run executes fn and reports whether it completed without error.
func (s *Supervisor) Run(step string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.failures++
			s.log.Error("turn step panicked", zap.String("step", step), zap.String("panic", fmt.Sprint(r)))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		s.failures++
		s.log.Warn("turn step failed", zap.String("step", step), zap.Error(err))
		return false
	}
	return true
}

// Failures is the number of steps that failed so far.
func (s *Supervisor) Failures() int { return s.failures }
