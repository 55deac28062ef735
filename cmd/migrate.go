package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ROAMMATE_BACK-END/internal/config"
	"ROAMMATE_BACK-END/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the Postgres tables (users, profiles, listings)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		pool, err := openPool(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()

		if err := repository.Migrate(cmd.Context(), pool); err != nil {
			return err
		}
		log.Info("schema applied", zap.String("database", cfg.Database.Name))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled trip catalog into the configured catalog backend",
	Long: `Inserts the bundled trips and groups into Postgres or MongoDB,
depending on CATALOG_BACKEND. Listings that already exist are skipped.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.Backends.Catalog == config.BackendFixture {
			return fmt.Errorf("CATALOG_BACKEND is %q; set it to postgres or mongo to seed", cfg.Backends.Catalog)
		}

		b, err := openBackends(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		seed, err := repository.SeedListings()
		if err != nil {
			return err
		}

		var inserted, skipped int
		for _, l := range seed {
			_, err := b.listings.CreateListing(cmd.Context(), l)
			if errors.Is(err, repository.ErrInvalidListing) {
				log.Debug("skip listing", zap.String("id", l.ID), zap.Error(err))
				skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("seed %s: %w", l.ID, err)
			}
			inserted++
		}
		log.Info("catalog seeded",
			zap.String("backend", cfg.Backends.Catalog),
			zap.Int("inserted", inserted),
			zap.Int("skipped", skipped),
		)
		return nil
	},
}
