// internal/workers/application/submit-application/guard.go
package submitapplication

import (
	"context"
	"errors"
	"time"

	"application-intake/internal/common/logger"
	"application-intake/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const guardKeyPrefix = "intake:submission:"

var (
	ErrSubmissionInProgress = errors.New("SUBMISSION_IN_PROGRESS")
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// SubmissionGuard holds a short-lived Redis key per email while a submission
// is in flight, so two concurrent submissions for one email cannot both pass
// the duplicate check. The unique index stays authoritative; a Redis outage
// only disables the guard.
type SubmissionGuard struct {
	client   *redis.Client
	ttl      time.Duration
	logger   logger.Logger
	newToken func() string
}

func NewSubmissionGuard(client *redis.Client, ttl time.Duration, log logger.Logger) *SubmissionGuard {
	return &SubmissionGuard{
		client:   client,
		ttl:      ttl,
		logger:   log.WithFields(map[string]interface{}{"component": "submission-guard"}),
		newToken: uuid.NewString,
	}
}

// Acquire claims email. It returns ErrSubmissionInProgress when another
// submission holds it. release is always safe to call.
func (g *SubmissionGuard) Acquire(ctx context.Context, email string) (func(), error) {
	noop := func() {}
	if g == nil || g.client == nil {
		return noop, nil
	}

	key := guardKeyPrefix + models.NormalizeEmail(email)
	token := g.newToken()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		g.logger.Warn("submission guard unavailable", map[string]interface{}{"error": err})
		return noop, nil
	}
	if !ok {
		return noop, ErrSubmissionInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err(); err != nil {
			g.logger.Warn("submission guard release failed", map[string]interface{}{"error": err})
		}
	}, nil
}
