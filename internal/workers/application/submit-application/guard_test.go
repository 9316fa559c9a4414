// internal/workers/application/submit-application/guard_test.go
package submitapplication

import (
	"context"
	"errors"
	"testing"
	"time"

	"application-intake/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisGuard(t *testing.T) (*SubmissionGuard, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSubmissionGuard(client, time.Minute, logger.NewTestLogger(t)), mr
}

func TestSubmissionGuard_AcquireAndRelease(t *testing.T) {
	guard, mr := newMiniredisGuard(t)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, " Sara@Example.com ")
	require.NoError(t, err)
	assert.True(t, mr.Exists("intake:submission:sara@example.com"))
	assert.Equal(t, time.Minute, mr.TTL("intake:submission:sara@example.com"))

	_, err = guard.Acquire(ctx, "sara@example.com")
	assert.True(t, errors.Is(err, ErrSubmissionInProgress))

	release()
	assert.False(t, mr.Exists("intake:submission:sara@example.com"))

	again, err := guard.Acquire(ctx, "sara@example.com")
	require.NoError(t, err)
	again()
}

func TestSubmissionGuard_ReleaseKeepsForeignToken(t *testing.T) {
	guard, mr := newMiniredisGuard(t)

	release, err := guard.Acquire(context.Background(), "a@x.com")
	require.NoError(t, err)

	// the key expired and another submission claimed it
	require.NoError(t, mr.Set("intake:submission:a@x.com", "someone-else"))
	release()

	value, err := mr.Get("intake:submission:a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", value)
}

func TestSubmissionGuard_RedisErrorSkipsGuard(t *testing.T) {
	client, mock := redismock.NewClientMock()
	guard := NewSubmissionGuard(client, time.Minute, logger.NewTestLogger(t))
	guard.newToken = func() string { return "token-1" }

	mock.ExpectSetNX("intake:submission:a@x.com", "token-1", time.Minute).SetErr(errors.New("connection refused"))

	release, err := guard.Acquire(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotPanics(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGuard_Held(t *testing.T) {
	client, mock := redismock.NewClientMock()
	guard := NewSubmissionGuard(client, 30*time.Second, logger.NewTestLogger(t))
	guard.newToken = func() string { return "token-2" }

	mock.ExpectSetNX("intake:submission:a@x.com", "token-2", 30*time.Second).SetVal(false)

	_, err := guard.Acquire(context.Background(), "a@x.com")
	assert.True(t, errors.Is(err, ErrSubmissionInProgress))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionGuard_NilClient(t *testing.T) {
	guard := NewSubmissionGuard(nil, time.Minute, logger.NewNoOpLogger())
	release, err := guard.Acquire(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotPanics(t, release)

	var nilGuard *SubmissionGuard
	release, err = nilGuard.Acquire(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotPanics(t, release)
}
