package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/store"
)

func migrateCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}

func seedCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default admin user and sample categories into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Seed(db)
		},
	}
}

// recountCmd reconciles every category's product count with the products
// table, then clears cached catalog responses.
func recountCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "recount",
		Short: "Recompute the product count of every category",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := context.Background()
			manager := catalog.NewManager(store.NewCategoryStore(db), catalog.WithLogger(slog.Default()))
			updated, err := manager.RecountAll(ctx)
			if err != nil {
				return err
			}
			store.NewCacheLogStore(db).Log(ctx, "category", uuid.Nil, "recount")

			// Stale cached listings expire on their own if Valkey is down.
			client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
			if err != nil {
				slog.Warn("catalog cache not cleared", "error", err)
			} else {
				cache.NewCatalogCache(client, cfg.CatalogCacheTTL).InvalidateAll(ctx)
				client.Close()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recounted %d categories\n", len(updated))
			return nil
		},
	}
}
