package usage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/types"
	"github.com/sirupsen/logrus"
)

// Limiter is the usage gate. A quota unit is consumed when CheckAndIncrement
// approves an attempt and is never returned, even if the generation later
// fails or is cancelled.
type Limiter struct {
	store   Store
	tiers   TierResolver
	catalog *Catalog
	logger  logrus.FieldLogger
	now     func() time.Time
}

// NewLimiter creates a limiter. A nil catalog uses DefaultCatalog.
func NewLimiter(store Store, tiers TierResolver, catalog *Catalog, logger logrus.FieldLogger) *Limiter {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Limiter{
		store:   store,
		tiers:   tiers,
		catalog: catalog,
		logger:  observability.OrDiscard(logger),
		now:     time.Now,
	}
}

// SetClock replaces the time source used to pick the current period.
func (l *Limiter) SetClock(now func() time.Time) {
	l.now = now
}

// CheckAndIncrement atomically consumes one unit of the account's monthly
// budget if any remains. CanProceed is true only when the increment was
// applied. Initial generations and regenerations share the budget.
func (l *Limiter) CheckAndIncrement(ctx context.Context, accountID string, kind types.GenerationKind, documentKind types.DocumentKind) (types.UsageDecision, error) {
	plan, err := l.planFor(ctx, accountID)
	if err != nil {
		return types.UsageDecision{}, err
	}

	now := l.now()
	period := PeriodKey(now)
	log := l.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"tier":       plan.Tier,
		"period":     period,
		"kind":       kind,
	})

	var (
		count    int
		approved bool
	)
	if plan.Limit() == 0 {
		// a zero allowance would otherwise create the counter row at 1
		count, err = l.store.Count(ctx, accountID, period)
	} else {
		count, approved, err = l.store.IncrementIfBelow(ctx, accountID, period, plan.Limit())
		if err == nil && !approved {
			count, err = l.store.Count(ctx, accountID, period)
		}
	}
	if err != nil {
		return types.UsageDecision{}, &StoreError{Op: "increment", AccountID: accountID, Cause: err}
	}

	if !approved {
		log.WithField("monthly_count", count).Info("usage limit reached")
		return l.decision(plan, count, false, now), nil
	}

	event := types.UsageEvent{
		ID:           uuid.NewString(),
		AccountID:    accountID,
		Period:       period,
		Kind:         kind,
		DocumentKind: documentKind,
		Count:        count,
		CreatedAt:    now.UTC(),
	}
	if err := l.store.RecordEvent(ctx, event); err != nil {
		// the unit is already consumed; losing the audit row must not fail the request
		log.WithError(err).Warn("failed to record usage event")
	}

	log.WithField("monthly_count", count).Debug("usage approved")
	return l.decision(plan, count, true, now), nil
}

// GetStatus reports the account's usage for the current month without
// changing it. CanProceed says whether a further attempt would be approved.
func (l *Limiter) GetStatus(ctx context.Context, accountID string) (types.UsageDecision, error) {
	plan, err := l.planFor(ctx, accountID)
	if err != nil {
		return types.UsageDecision{}, err
	}
	now := l.now()
	count, err := l.store.Count(ctx, accountID, PeriodKey(now))
	if err != nil {
		return types.UsageDecision{}, &StoreError{Op: "status", AccountID: accountID, Cause: err}
	}
	canProceed := plan.Unlimited || count < plan.MonthlyLimit
	return l.decision(plan, count, canProceed, now), nil
}

func (l *Limiter) planFor(ctx context.Context, accountID string) (Plan, error) {
	if strings.TrimSpace(accountID) == "" {
		return Plan{}, ErrInvalidAccount
	}
	tier, err := l.tiers.TierFor(ctx, accountID)
	if err != nil {
		return Plan{}, &StoreError{Op: "tier lookup", AccountID: accountID, Cause: err}
	}
	plan, ok := l.catalog.Plan(tier)
	if !ok {
		plan = l.catalog.Lowest()
		l.logger.WithFields(logrus.Fields{
			"account_id": accountID,
			"tier":       tier,
			"fallback":   plan.Tier,
		}).Warn("unknown tier, using lowest plan")
	}
	return plan, nil
}

func (l *Limiter) decision(plan Plan, count int, canProceed bool, now time.Time) types.UsageDecision {
	d := types.UsageDecision{
		CanProceed:   canProceed,
		MonthlyCount: count,
		MonthlyLimit: plan.Limit(),
		Tier:         plan.Tier,
		Period:       PeriodKey(now),
		ResetsAt:     ResetsAt(now),
	}
	if !canProceed {
		if next, ok := l.catalog.Next(plan.Tier); ok {
			d.NeedsUpgrade = true
			d.SuggestedTier = next.Tier
			d.SuggestedPrice = next.Price
		}
	}
	return d
}
