package usage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/jobfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	free, ok := c.Plan(types.TierFree)
	require.True(t, ok)
	assert.Equal(t, 3, free.Limit())

	next, ok := c.Next(types.TierStarter)
	require.True(t, ok)
	assert.Equal(t, types.TierUnlimited, next.Tier)
	assert.Equal(t, types.UnlimitedQuota, next.Limit())

	_, ok = c.Next(types.TierUnlimited)
	assert.False(t, ok)
	_, ok = c.Next("missing")
	assert.False(t, ok)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`plans:
  - tier: free
    monthly_limit: 5
  - tier: team
    monthly_limit: 100
    price: 49
  - tier: enterprise
    unlimited: true
    price: 199.5
`), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Plans, 3)
	assert.Equal(t, 5, c.Lowest().MonthlyLimit)

	team, ok := c.Plan("team")
	require.True(t, ok)
	assert.InDelta(t, 49.0, team.Price, 0.001)

	ent, ok := c.Next("team")
	require.True(t, ok)
	assert.True(t, ent.Unlimited)
}

func TestLoadCatalog_EmptyPathUsesDefaults(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "plans: [tier: "},
		{name: "no plans", yaml: "plans: []"},
		{name: "missing tier", yaml: "plans:\n  - monthly_limit: 3"},
		{name: "duplicate tier", yaml: "plans:\n  - tier: free\n  - tier: free"},
		{name: "negative limit", yaml: "plans:\n  - tier: free\n    monthly_limit: -2"},
		{name: "negative price", yaml: "plans:\n  - tier: free\n    price: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml), "test.yaml")
			var catErr *CatalogError
			require.ErrorAs(t, err, &catErr)
			assert.Equal(t, "test.yaml", catErr.Source)
		})
	}
}

func TestPeriodKey(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)

	// 23:30 on Jan 31 in EST is already February in UTC
	local := time.Date(2026, 1, 31, 23, 30, 0, 0, est)
	assert.Equal(t, "2026-02", PeriodKey(local))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ResetsAt(local))

	dec := time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2026-12", PeriodKey(dec))
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), ResetsAt(dec))
}
