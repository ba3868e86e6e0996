package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frozen pins the limiter clock so refill never happens mid-test
func frozen(l *Limiter) *time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	frozen(limiter)

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/usage", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/usage", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter)

	for i := 0; i < 60; i++ {
		allowed, _ := limiter.Allow("c", "/usage", "GET")
		require.True(t, allowed)
	}
	allowed, info := limiter.Allow("c", "/usage", "GET")
	require.False(t, allowed)
	assert.Equal(t, time.Second, info.RetryAfter)

	*now = now.Add(time.Second)
	allowed, _ = limiter.Allow("c", "/usage", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndDisabled(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{
			name: "whitelisted client",
			config: &Config{
				Enabled:       true,
				DefaultLimit:  1,
				DefaultWindow: time.Minute,
				Whitelist:     map[string]bool{"127.0.0.1": true},
			},
		},
		{name: "disabled", config: &Config{Enabled: false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewLimiter(tt.config)
			defer limiter.Stop()

			for i := 0; i < 50; i++ {
				allowed, info := limiter.Allow("127.0.0.1", "/usage", "GET")
				require.True(t, allowed)
				assert.Equal(t, 0, info.Limit)
			}
		})
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	allowed, info := limiter.Allow("192.168.1.1", "/usage", "GET")
	assert.False(t, allowed)
	assert.Positive(t, info.RetryAfter)
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Name: "generate", Method: "POST", Paths: []string{"/generate"}, Limit: 5, Window: time.Hour, Burst: 5},
		},
	})
	defer limiter.Stop()
	frozen(limiter)

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("c", "/generate", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := limiter.Allow("c", "/generate", "POST")
	assert.False(t, allowed)

	// other endpoints and other clients have their own buckets
	allowed, info := limiter.Allow("c", "/usage", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	allowed, _ = limiter.Allow("d", "/generate", "POST")
	assert.True(t, allowed)
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Name: "skills", Method: "POST", Paths: []string{"/skills"}, Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()
	frozen(limiter)

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("c", "/skills", "POST")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("c", "/skills", "POST")
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()
	frozen(limiter)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("c", "/usage", "GET"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowed)
}

func TestLimiter_CleanupBuckets(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter)

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/usage", "GET")
	}
	*now = now.Add(2 * time.Hour)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/usage", "GET")
	}

	limiter.cleanupBuckets(now.Add(-time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 5)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/usage", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	allowed, info = limiter.Allow("127.0.0.1", "/generate", "POST")
	assert.True(t, allowed)
	assert.Equal(t, 20, info.Limit)

	limiter.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Name: "generate", Method: "POST", Paths: []string{"/generate", "/generate/stream"}, Limit: 1},
		{Name: "skills", Method: "POST", Paths: []string{"/skills"}, Limit: 2},
	}

	tests := []struct {
		name   string
		path   string
		method string
		want   string
	}{
		{name: "exact", path: "/generate", method: "POST", want: "generate"},
		{name: "grouped path", path: "/generate/stream", method: "POST", want: "generate"},
		{name: "trailing slash", path: "/skills/", method: "POST", want: "skills"},
		{name: "method mismatch", path: "/generate", method: "GET"},
		{name: "no prefix matching", path: "/skills/rust", method: "POST"},
		{name: "health", path: "/health", method: "GET", want: "health"},
		{name: "no match", path: "/usage", method: "GET"},
		{name: "root", path: "/", method: "GET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestDefaultEndpointConfigs_CoverServiceRoutes(t *testing.T) {
	configs := DefaultEndpointConfigs()

	for _, route := range []struct{ method, path string }{
		{"POST", "/generate"},
		{"POST", "/generate/stream"},
		{"POST", "/regenerate"},
		{"POST", "/skills"},
	} {
		got := MatchEndpoint(route.path, route.method, configs)
		require.NotNil(t, got, route.path)
		assert.Positive(t, got.Limit, route.path)
	}
}

func TestLimiter_GroupedPathsShareBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Name: "generate", Method: "POST", Paths: []string{"/generate", "/generate/stream"}, Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	defer limiter.Stop()
	frozen(limiter)

	allowed, _ := limiter.Allow("c", "/generate", "POST")
	require.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/generate/stream", "POST")
	require.True(t, allowed)

	// the streaming route cannot be used to get around the generate budget
	allowed, _ = limiter.Allow("c", "/generate/stream", "POST")
	assert.False(t, allowed)
	allowed, _ = limiter.Allow("c", "/generate", "POST")
	assert.False(t, allowed)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
