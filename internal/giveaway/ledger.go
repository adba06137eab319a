package giveaway

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

const DefaultLedgerCapacity = 100_000

// Ledger counts qualifying activity per user. Retention is bounded: once
// capacity is reached the least recently touched user is forgotten and reads
// as zero again. Anyone active enough to clear a message gate is touched on
// every message, so in practice only long-idle users fall out.
type Ledger struct {
	mu    sync.Mutex
	cache *lru.Cache
}

func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultLedgerCapacity
	}
	cache, _ := lru.New(capacity)
	return &Ledger{cache: cache}
}

func (l *Ledger) Increment(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 1
	if value, ok := l.cache.Get(userID); ok {
		count = value.(int) + 1
	}
	l.cache.Add(userID, count)
	return count
}

func (l *Ledger) Get(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if value, ok := l.cache.Get(userID); ok {
		return value.(int)
	}
	return 0
}

func (l *Ledger) Len() int {
	return l.cache.Len()
}
