package invites

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 60 * time.Second

// FetchFunc returns total invite uses per inviter for a guild.
type FetchFunc func(ctx context.Context, guildID string) (map[string]int, error)

type entry struct {
	uses      map[string]int
	fetchedAt time.Time
}

// Tracker caches per-guild invite usage. Concurrent misses for one guild share
// a single fetch. Invalidate drops the entry and discards any fetch already in
// flight so a stale result is never stored.
type Tracker struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	fetch   FetchFunc
	entries map[string]entry
	gens    map[string]uint64
	group   singleflight.Group
	logger  *zap.Logger
}

func NewTracker(fetch FetchFunc, ttl time.Duration, logger *zap.Logger) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{
		ttl:     ttl,
		now:     time.Now,
		fetch:   fetch,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
		logger:  logger,
	}
}

func (t *Tracker) WithNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// Uses returns how many times invites created by userID have been used.
func (t *Tracker) Uses(ctx context.Context, guildID, userID string) (int, error) {
	uses, err := t.guildUses(ctx, guildID)
	if err != nil {
		return 0, err
	}
	return uses[userID], nil
}

func (t *Tracker) Invalidate(guildID string) {
	t.mu.Lock()
	delete(t.entries, guildID)
	t.gens[guildID]++
	t.mu.Unlock()
	t.group.Forget(guildID)
}

func (t *Tracker) guildUses(ctx context.Context, guildID string) (map[string]int, error) {
	t.mu.Lock()
	if cached, ok := t.entries[guildID]; ok && t.now().Sub(cached.fetchedAt) < t.ttl {
		t.mu.Unlock()
		return cached.uses, nil
	}
	gen := t.gens[guildID]
	t.mu.Unlock()

	value, err, _ := t.group.Do(guildID, func() (interface{}, error) {
		uses, err := t.fetch(ctx, guildID)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		if t.gens[guildID] == gen {
			t.entries[guildID] = entry{uses: uses, fetchedAt: t.now()}
		}
		t.mu.Unlock()
		return uses, nil
	})
	if err != nil {
		t.logger.Warn("invite usage fetch failed", zap.String("guild_id", guildID), zap.Error(err))
		return nil, err
	}
	return value.(map[string]int), nil
}

// Sum folds a list of (inviter, uses) pairs into per-inviter totals.
func Sum(pairs []Usage) map[string]int {
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		if p.InviterID == "" {
			continue
		}
		out[p.InviterID] += p.Uses
	}
	return out
}

type Usage struct {
	InviterID string
	Uses      int
}
