// internal/workers/application/submit-application/saga.go
package submitapplication

import (
	"context"
	"fmt"

	"application-intake/internal/common/logger"
	"application-intake/internal/common/metrics"
)

// UndoFunc reverts one committed step.
type UndoFunc func(ctx context.Context) error

type sagaStep struct {
	name string
	undo UndoFunc
}

// Saga records undo actions as steps commit and runs them in reverse when a
// later step fails. A Saga belongs to one submission and is not safe for
// concurrent use.
type Saga struct {
	steps  []sagaStep
	logger logger.Logger
}

func NewSaga(log logger.Logger) *Saga {
	return &Saga{logger: log}
}

// Push registers the undo action for a step that has just succeeded.
func (s *Saga) Push(name string, undo UndoFunc) {
	s.steps = append(s.steps, sagaStep{name: name, undo: undo})
}

// Len returns the number of pending undo actions.
func (s *Saga) Len() int {
	return len(s.steps)
}

// Compensate runs every pending undo action, newest first. A failing action
// does not stop the ones after it. The saga is empty afterwards.
func (s *Saga) Compensate(ctx context.Context) []error {
	var errs []error
	for i := len(s.steps) - 1; i >= 0; i-- {
		step := s.steps[i]
		err := step.undo(ctx)
		metrics.CompensationsTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("compensation failed", map[string]interface{}{"step": step.name, "error": err})
			errs = append(errs, fmt.Errorf("undo %s: %w", step.name, err))
			continue
		}
		s.logger.Info("compensated", map[string]interface{}{"step": step.name})
	}
	s.steps = nil
	return errs
}

// Commit drops all undo actions; the steps are final.
func (s *Saga) Commit() {
	s.steps = nil
}
