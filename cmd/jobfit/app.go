package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/jobfit/internal/config"
	"github.com/jonathan/jobfit/internal/db"
	"github.com/jonathan/jobfit/internal/llm"
	"github.com/jonathan/jobfit/internal/observability"
	"github.com/jonathan/jobfit/internal/parsing"
	"github.com/jonathan/jobfit/internal/pipeline"
	"github.com/jonathan/jobfit/internal/profile"
	"github.com/jonathan/jobfit/internal/rendering"
	"github.com/jonathan/jobfit/internal/skills"
	"github.com/jonathan/jobfit/internal/tailoring"
	"github.com/jonathan/jobfit/internal/usage"
	"github.com/sirupsen/logrus"
)

// app holds the wired collaborators shared by serve and generate
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	client   llm.Client
	limiter  *usage.Limiter
	tiers    *usage.StaticTierResolver
	profiles profile.Store
	service  *profile.Service
	closers  []func()
}

// Close releases everything opened by newApp, last opened first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// loadConfig resolves the effective configuration and the process logger.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp wires storage, the usage limiter, the model client and the profile
// service. profiles, when non-nil, replaces the configured profile store.
func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger, profiles profile.Store) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	var database *db.DB
	if cfg.UsageStore == config.StorePostgres || (profiles == nil && cfg.DatabaseURL != "" && cfg.ProfilesDir == "") {
		var err error
		database, err = openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)
	}

	store, err := a.openUsageStore(ctx, database)
	if err != nil {
		return nil, err
	}

	catalog, err := usage.LoadCatalog(cfg.PlansFile)
	if err != nil {
		return nil, err
	}
	defaultTier := cfg.DefaultTier
	if defaultTier == "" {
		defaultTier = catalog.Lowest().Tier
	}
	if _, known := catalog.Plan(defaultTier); !known {
		return nil, fmt.Errorf("default tier %q is not in the plan catalogue", defaultTier)
	}
	a.tiers = usage.NewStaticTierResolver(defaultTier)
	a.limiter = usage.NewLimiter(store, a.tiers, catalog, logger)

	switch {
	case profiles != nil:
		a.profiles = profiles
	case cfg.ProfilesDir != "":
		mem, err := profile.LoadDir(cfg.ProfilesDir)
		if err != nil {
			return nil, err
		}
		logger.WithField("profiles", len(mem.Accounts())).Info("loaded profiles")
		a.profiles = mem
	case database != nil:
		a.profiles = profile.NewPostgresStore(database)
	default:
		a.profiles = profile.NewMemoryStore()
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.closers = append(a.closers, func() { _ = client.Close() })

	classifier := skills.NewClassifier(client, time.Duration(cfg.ClassifyTimeout), logger)
	a.service = profile.NewService(a.profiles, classifier, logger)

	ok = true
	return a, nil
}

// generator builds a Generator over the app's collaborators.
func (a *app) generator(onProgress pipeline.ProgressCallback) *pipeline.Generator {
	stageTimeout := time.Duration(a.cfg.StageTimeout)
	engine := rendering.NewChromeEngine(a.cfg.ChromePath, time.Duration(a.cfg.RenderTimeout))

	return pipeline.NewGenerator(pipeline.Deps{
		Usage:       a.limiter,
		Profiles:    a.service,
		Extractor:   parsing.NewExtractor(a.client, stageTimeout, a.logger),
		Tailor:      tailoring.NewOrchestrator(a.client, stageTimeout, a.logger),
		CoverLetter: tailoring.NewCoverLetterWriter(a.client, stageTimeout, a.logger),
		Renderer:    rendering.NewRenderer(engine, a.logger),
		OnProgress:  onProgress,
		Logger:      a.logger,
	})
}

// openUsageStore returns the configured counter store.
func (a *app) openUsageStore(ctx context.Context, database *db.DB) (usage.Store, error) {
	switch a.cfg.UsageStore {
	case "", config.StoreMemory:
		a.logger.Warn("usage counters are in memory and reset on restart")
		return usage.NewMemoryStore(), nil
	case config.StoreSQLite:
		sqlite, err := db.OpenSQLite(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = sqlite.Close() })
		return usage.NewDBStore(sqlite), nil
	case config.StorePostgres:
		if database == nil {
			return nil, fmt.Errorf("usage_store 'postgres' requires database_url")
		}
		return usage.NewDBStore(database), nil
	default:
		return nil, fmt.Errorf("unknown usage store %q", a.cfg.UsageStore)
	}
}

// openPostgres connects and applies pending migrations.
func openPostgres(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// newLLMClient builds the provider client behind the timeout and rate guard.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set GEMINI_API_KEY, or ANTHROPIC_API_KEY with LLM_PROVIDER=anthropic)")
	}
	llmCfg, err := llm.ConfigForProvider(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}
	return llm.NewGuardedClient(client, llmCfg.CallTimeout, llmCfg.RequestsPerSecond, llmCfg.Burst), nil
}
