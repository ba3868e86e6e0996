package usage

import (
	"context"
	"sync"

	"github.com/jonathan/jobfit/internal/types"
)

// TierResolver returns the billing tier of an account. Billing itself lives
// outside this service.
type TierResolver interface {
	TierFor(ctx context.Context, accountID string) (string, error)
}

// TierResolverFunc adapts a function to TierResolver
type TierResolverFunc func(ctx context.Context, accountID string) (string, error)

// TierFor implements TierResolver
func (f TierResolverFunc) TierFor(ctx context.Context, accountID string) (string, error) {
	return f(ctx, accountID)
}

// StaticTierResolver assigns tiers from an in-memory table
type StaticTierResolver struct {
	mu          sync.RWMutex
	defaultTier string
	accounts    map[string]string
}

// NewStaticTierResolver returns a resolver that reports defaultTier (free when
// empty) for every account not explicitly assigned.
func NewStaticTierResolver(defaultTier string) *StaticTierResolver {
	if defaultTier == "" {
		defaultTier = types.TierFree
	}
	return &StaticTierResolver{defaultTier: defaultTier, accounts: make(map[string]string)}
}

// Set assigns a tier to an account.
func (r *StaticTierResolver) Set(accountID, tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[accountID] = tier
}

// TierFor implements TierResolver
func (r *StaticTierResolver) TierFor(_ context.Context, accountID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tier, ok := r.accounts[accountID]; ok {
		return tier, nil
	}
	return r.defaultTier, nil
}
