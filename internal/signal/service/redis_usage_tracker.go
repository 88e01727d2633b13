package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/pkg/common"
	"stock-signal-relay/pkg/logger"
	"stock-signal-relay/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// dayCounterTTL keeps yesterday's counter around long enough to be inspected.
const dayCounterTTL = 48 * time.Hour

// reserveUserScript increments the per-user counter only when it is below the
// ceiling and starts the window on the first request.
var reserveUserScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current >= tonumber(ARGV[1]) then
	return 0
end
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 1
`)

type redisUsageTracker struct {
	client *redis.Client
	quota  config.Quota
	loc    *time.Location
	now    func() time.Time
	prefix string
	log    *logger.Logger
}

// NewRedisUsageTracker keeps the counters in Redis so every instance shares
// the same ceilings. Day counters are keyed by the calendar date in loc.
//
// When Redis is unreachable model calls are refused and user requests are let through.
func NewRedisUsageTracker(client *redis.Client, quota config.Quota, loc *time.Location, prefix string, log *logger.Logger) UsageTracker {
	if loc == nil {
		loc = time.UTC
	}
	return &redisUsageTracker{
		client: client,
		quota:  quota,
		loc:    loc,
		now:    time.Now,
		prefix: prefix,
		log:    log,
	}
}

func (t *redisUsageTracker) key(parts ...string) string {
	if t.prefix != "" {
		parts = append([]string{t.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

func (t *redisUsageTracker) today() string {
	return utils.DayKey(t.now(), t.loc)
}

func (t *redisUsageTracker) counter(ctx context.Context, name string) (int, error) {
	n, err := t.client.Get(ctx, t.key(name, t.today())).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (t *redisUsageTracker) incr(ctx context.Context, name string) {
	key := t.key(name, t.today())
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, dayCounterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		t.log.WarnContext(ctx, "Failed to increment usage counter",
			logger.StringField("counter", name),
			logger.ErrorField(err),
		)
	}
}

func (t *redisUsageTracker) AllowModelCall(ctx context.Context) bool {
	n, err := t.counter(ctx, common.RedisKeyModelCalls)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to read model call counter, refusing call", logger.ErrorField(err))
		return false
	}
	return n < t.quota.MaxDailyModelCalls
}

func (t *redisUsageTracker) RecordModelCallSuccess(ctx context.Context) {
	t.incr(ctx, common.RedisKeyModelCalls)
}

func (t *redisUsageTracker) ReserveUserRequest(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	key := t.key(common.RedisKeyUserRequests, userID)
	ok, err := reserveUserScript.Run(ctx, t.client, []string{key},
		t.quota.MaxUserRequestsPerHour, userWindow.Milliseconds()).Int()
	if err != nil {
		t.log.WarnContext(ctx, "Failed to reserve user request, allowing",
			logger.StringField("user_id", userID),
			logger.ErrorField(err),
		)
		return true
	}
	return ok == 1
}

func (t *redisUsageTracker) AllowMessage(ctx context.Context) bool {
	n, err := t.counter(ctx, common.RedisKeyMessagesSent)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to read message counter", logger.ErrorField(err))
		return true
	}
	return n < t.quota.MaxDailyMessages
}

func (t *redisUsageTracker) RecordMessageSent(ctx context.Context) {
	t.incr(ctx, common.RedisKeyMessagesSent)
}

func (t *redisUsageTracker) Snapshot(ctx context.Context) UsageSnapshot {
	calls, err := t.counter(ctx, common.RedisKeyModelCalls)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to read model call counter", logger.ErrorField(err))
	}
	sent, err := t.counter(ctx, common.RedisKeyMessagesSent)
	if err != nil {
		t.log.WarnContext(ctx, "Failed to read message counter", logger.ErrorField(err))
	}
	return UsageSnapshot{
		ModelCallsToday:   calls,
		MessagesSentToday: sent,
		DayKey:            t.today(),
	}
}
