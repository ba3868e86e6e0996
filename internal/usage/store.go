package usage

import (
	"context"
	"sync"

	"github.com/jonathan/jobfit/internal/types"
)

// Store holds monthly counters. IncrementIfBelow must be atomic per account and
// period: it increments only while the count is below limit (a negative limit
// means no cap) and returns the new count with true, or false with no change.
// Callers never pass a limit of zero.
type Store interface {
	IncrementIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error)
	Count(ctx context.Context, accountID, period string) (int, error)
	RecordEvent(ctx context.Context, event types.UsageEvent) error
}

// UsageDB is the subset of the SQL backends used by DBStore. Both db.DB and
// db.SQLite implement it.
type UsageDB interface {
	IncrementUsageIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error)
	UsageCount(ctx context.Context, accountID, period string) (int, error)
	InsertUsageEvent(ctx context.Context, event types.UsageEvent) error
}

// DBStore adapts a SQL backend to Store
type DBStore struct {
	db UsageDB
}

// NewDBStore wraps a SQL usage backend.
func NewDBStore(db UsageDB) *DBStore {
	return &DBStore{db: db}
}

// IncrementIfBelow implements Store
func (s *DBStore) IncrementIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error) {
	return s.db.IncrementUsageIfBelow(ctx, accountID, period, limit)
}

// Count implements Store
func (s *DBStore) Count(ctx context.Context, accountID, period string) (int, error) {
	return s.db.UsageCount(ctx, accountID, period)
}

// RecordEvent implements Store
func (s *DBStore) RecordEvent(ctx context.Context, event types.UsageEvent) error {
	return s.db.InsertUsageEvent(ctx, event)
}

// MemoryStore keeps counters in process. Increments are serialized per account,
// so different accounts never contend.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*accountUsage

	eventsMu sync.Mutex
	events   []types.UsageEvent
}

type accountUsage struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*accountUsage)}
}

func (s *MemoryStore) account(accountID string) *accountUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		a = &accountUsage{counts: make(map[string]int)}
		s.accounts[accountID] = a
	}
	return a
}

// IncrementIfBelow implements Store
func (s *MemoryStore) IncrementIfBelow(ctx context.Context, accountID, period string, limit int) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	a := s.account(accountID)
	a.mu.Lock()
	defer a.mu.Unlock()

	count := a.counts[period]
	if limit >= 0 && count >= limit {
		return count, false, nil
	}
	count++
	a.counts[period] = count
	return count, true, nil
}

// Count implements Store
func (s *MemoryStore) Count(ctx context.Context, accountID, period string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	a := s.account(accountID)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counts[period], nil
}

// RecordEvent implements Store
func (s *MemoryStore) RecordEvent(ctx context.Context, event types.UsageEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns the recorded events of an account in insertion order.
func (s *MemoryStore) Events(accountID string) []types.UsageEvent {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	var out []types.UsageEvent
	for _, e := range s.events {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}
