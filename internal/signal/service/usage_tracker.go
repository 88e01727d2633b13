package service

import (
	"context"
	"sync"
	"time"

	"stock-signal-relay/internal/signal/config"
	"stock-signal-relay/pkg/utils"
)

// UsageTracker enforces the daily model-call and message ceilings and the
// per-user hourly request ceiling.
//
// Model calls are checked before the call and recorded only after it succeeds,
// so a failed call never consumes quota. User requests are reserved eagerly.
type UsageTracker interface {
	// AllowModelCall reports whether today's model-call ceiling has room. It does not reserve.
	AllowModelCall(ctx context.Context) bool
	// RecordModelCallSuccess counts one successful model call against today.
	RecordModelCallSuccess(ctx context.Context)
	// ReserveUserRequest counts one request for userID and reports whether it was within the hourly ceiling.
	ReserveUserRequest(ctx context.Context, userID string) bool
	// AllowMessage reports whether today's message ceiling has room.
	AllowMessage(ctx context.Context) bool
	// RecordMessageSent counts one delivered message against today.
	RecordMessageSent(ctx context.Context)
	// Snapshot returns today's counters.
	Snapshot(ctx context.Context) UsageSnapshot
}

// UsageSnapshot is a point-in-time copy of the daily counters.
type UsageSnapshot struct {
	ModelCallsToday   int
	MessagesSentToday int
	DayKey            string
}

const userWindow = time.Hour

type userLimit struct {
	requestCount int
	windowStart  time.Time
}

type memoryUsageTracker struct {
	mu    sync.Mutex
	quota config.Quota
	loc   *time.Location
	now   func() time.Time

	modelCallsToday   int
	messagesSentToday int
	dayKey            string
	users             map[string]*userLimit
}

// NewMemoryUsageTracker keeps the counters in process memory. Counters are not
// shared between instances, so running several replicas multiplies the effective ceilings.
func NewMemoryUsageTracker(quota config.Quota, loc *time.Location, now func() time.Time) UsageTracker {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &memoryUsageTracker{
		quota:  quota,
		loc:    loc,
		now:    now,
		dayKey: utils.DayKey(now(), loc),
		users:  make(map[string]*userLimit),
	}
}

// resetIfNewDay must be called with mu held.
func (t *memoryUsageTracker) resetIfNewDay() {
	today := utils.DayKey(t.now(), t.loc)
	if today == t.dayKey {
		return
	}
	t.modelCallsToday = 0
	t.messagesSentToday = 0
	t.dayKey = today

	now := t.now()
	for id, u := range t.users {
		if now.Sub(u.windowStart) > userWindow {
			delete(t.users, id)
		}
	}
}

// resetIfWindowExpired must be called with mu held.
func (t *memoryUsageTracker) resetIfWindowExpired(userID string) *userLimit {
	now := t.now()
	u, ok := t.users[userID]
	if !ok {
		u = &userLimit{windowStart: now}
		t.users[userID] = u
	}
	if now.Sub(u.windowStart) > userWindow {
		u.requestCount = 0
		u.windowStart = now
	}
	return u
}

func (t *memoryUsageTracker) AllowModelCall(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	return t.modelCallsToday < t.quota.MaxDailyModelCalls
}

func (t *memoryUsageTracker) RecordModelCallSuccess(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	t.modelCallsToday++
}

func (t *memoryUsageTracker) ReserveUserRequest(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()

	u := t.resetIfWindowExpired(userID)
	if u.requestCount >= t.quota.MaxUserRequestsPerHour {
		return false
	}
	u.requestCount++
	return true
}

func (t *memoryUsageTracker) AllowMessage(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	return t.messagesSentToday < t.quota.MaxDailyMessages
}

func (t *memoryUsageTracker) RecordMessageSent(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	t.messagesSentToday++
}

func (t *memoryUsageTracker) Snapshot(ctx context.Context) UsageSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetIfNewDay()
	return UsageSnapshot{
		ModelCallsToday:   t.modelCallsToday,
		MessagesSentToday: t.messagesSentToday,
		DayKey:            t.dayKey,
	}
}
