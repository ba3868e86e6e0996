// Package usage enforces per-account monthly generation quotas.
package usage

import (
	"fmt"
	"os"

	"github.com/jonathan/jobfit/internal/types"
	"gopkg.in/yaml.v3"
)

// Plan is one billing tier and its monthly allowance
type Plan struct {
	Tier         string  `yaml:"tier"`
	MonthlyLimit int     `yaml:"monthly_limit"`
	Price        float64 `yaml:"price"`
	Unlimited    bool    `yaml:"unlimited"`
}

// Limit returns the limit passed to stores: the monthly limit, or
// types.UnlimitedQuota for uncapped plans.
func (p Plan) Limit() int {
	if p.Unlimited {
		return types.UnlimitedQuota
	}
	return p.MonthlyLimit
}

// Catalog lists plans in upgrade order, cheapest first
type Catalog struct {
	Plans []Plan `yaml:"plans"`
}

// DefaultCatalog returns the built-in plans.
func DefaultCatalog() *Catalog {
	return &Catalog{Plans: []Plan{
		{Tier: types.TierFree, MonthlyLimit: 3},
		{Tier: types.TierStarter, MonthlyLimit: 30, Price: 9.99},
		{Tier: types.TierUnlimited, Unlimited: true, Price: 19.99},
	}}
}

// LoadCatalog reads a YAML plan catalogue of the form
//
//	plans:
//	  - tier: free
//	    monthly_limit: 3
//	  - tier: pro
//	    unlimited: true
//	    price: 19.99
//
// An empty path returns DefaultCatalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &CatalogError{Source: path, Message: "cannot read file", Cause: err}
	}
	return ParseCatalog(data, path)
}

// ParseCatalog decodes and validates a YAML catalogue. source names it in errors.
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, &CatalogError{Source: source, Message: "malformed YAML", Cause: err}
	}
	if err := c.Validate(); err != nil {
		return nil, &CatalogError{Source: source, Message: err.Error()}
	}
	return &c, nil
}

// Validate checks that the catalogue has at least one plan, unique tier names
// and non-negative limits.
func (c *Catalog) Validate() error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("no plans defined")
	}
	seen := make(map[string]bool, len(c.Plans))
	for i, p := range c.Plans {
		if p.Tier == "" {
			return fmt.Errorf("plan %d has no tier", i)
		}
		if seen[p.Tier] {
			return fmt.Errorf("duplicate tier %q", p.Tier)
		}
		seen[p.Tier] = true
		if !p.Unlimited && p.MonthlyLimit < 0 {
			return fmt.Errorf("tier %q has negative monthly_limit", p.Tier)
		}
		if p.Price < 0 {
			return fmt.Errorf("tier %q has negative price", p.Tier)
		}
	}
	return nil
}

// Plan looks up a tier.
func (c *Catalog) Plan(tier string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.Tier == tier {
			return p, true
		}
	}
	return Plan{}, false
}

// Lowest returns the first (cheapest) plan.
func (c *Catalog) Lowest() Plan {
	return c.Plans[0]
}

// Next returns the plan after tier in upgrade order; false at the top tier or
// for unknown tiers.
func (c *Catalog) Next(tier string) (Plan, bool) {
	for i, p := range c.Plans {
		if p.Tier == tier && i+1 < len(c.Plans) {
			return c.Plans[i+1], true
		}
	}
	return Plan{}, false
}
