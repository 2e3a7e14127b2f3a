// Package worklock serializes worker invocations through a Redis lease. The
// store has no claim-and-lock primitive, so overlapping workers can race on
// queued tasks; holding this lease while a batch drains closes that window
// when more than one invocation source exists.
package worklock

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"agentq/internal/config"
)

type Lock struct {
	cfg   config.Redis
	rdb   *redis.Client
	token string
}

func New(cfg config.Redis) *Lock {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Lock{cfg: cfg, rdb: rdb, token: uuid.NewString()}
}

// Acquire takes the lease. false with nil error means another worker holds
// it; the invocation should exit cleanly without touching the queue.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.cfg.LockKey, l.token, l.cfg.LockTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// releaseScript deletes the lease only if we still own it; an expired lease
// taken over by another worker must not be clobbered.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *Lock) Release(ctx context.Context) {
	if err := releaseScript.Run(ctx, l.rdb, []string{l.cfg.LockKey}, l.token).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to release worker lock")
	}
}

func (l *Lock) Close() error { return l.rdb.Close() }
