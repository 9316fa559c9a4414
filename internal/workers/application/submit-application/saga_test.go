// internal/workers/application/submit-application/saga_test.go
package submitapplication

import (
	"context"
	"errors"
	"testing"

	"application-intake/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_CompensateRunsInReverse(t *testing.T) {
	saga := NewSaga(logger.NewTestLogger(t))

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		saga.Push(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	require.Equal(t, 3, saga.Len())

	errs := saga.Compensate(context.Background())
	assert.Empty(t, errs)
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, saga.Len())
}

func TestSaga_CompensateContinuesPastFailures(t *testing.T) {
	saga := NewSaga(logger.NewTestLogger(t))

	var ran []string
	saga.Push("remove resume", func(ctx context.Context) error {
		ran = append(ran, "resume")
		return nil
	})
	saga.Push("remove cover letter", func(ctx context.Context) error {
		ran = append(ran, "cover letter")
		return errors.New("access denied")
	})

	errs := saga.Compensate(context.Background())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "undo remove cover letter")
	assert.Equal(t, []string{"cover letter", "resume"}, ran)
}

func TestSaga_CommitDropsUndo(t *testing.T) {
	saga := NewSaga(logger.NewTestLogger(t))

	called := false
	saga.Push("step", func(ctx context.Context) error {
		called = true
		return nil
	})
	saga.Commit()

	assert.Empty(t, saga.Compensate(context.Background()))
	assert.False(t, called)
}
