package main

import (
	"fmt"
	"sort"

	"github.com/jonathan/jobfit/internal/config"
	"github.com/jonathan/jobfit/internal/db"
	"github.com/jonathan/jobfit/internal/profile"
	"github.com/spf13/cobra"
)

var migrateSeedDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: "Apply pending migrations to the PostgreSQL database (DATABASE_URL) and, when the usage store is sqlite, " +
		"to the SQLite usage database. With --seed-profiles, upsert every <account>.json profile in a directory.",
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSeedDir, "seed-profiles", "", "Directory of <account>.json profiles to upsert after migrating")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if cfg.UsageStore == config.StoreSQLite {
		sqlite, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return err
		}
		_ = sqlite.Close()
		logger.WithField("path", cfg.SQLitePath).Info("sqlite usage database migrated")
	}

	if cfg.DatabaseURL == "" {
		if cfg.UsageStore == config.StoreSQLite && migrateSeedDir == "" {
			return nil
		}
		return fmt.Errorf("DATABASE_URL is required")
	}

	database, err := openPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()
	logger.Info("postgres database migrated")

	if migrateSeedDir == "" {
		return nil
	}

	seed, err := profile.LoadDir(migrateSeedDir)
	if err != nil {
		return err
	}
	accounts := seed.Accounts()
	sort.Strings(accounts)

	store := profile.NewPostgresStore(database)
	for _, accountID := range accounts {
		p, err := seed.Load(ctx, accountID)
		if err != nil {
			return err
		}
		if err := store.Save(ctx, accountID, p); err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", accountID, err)
		}
	}
	logger.WithField("profiles", len(accounts)).Info("profiles seeded")
	return nil
}
