package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/admin_console/internal/config"
	"github.com/Skotchmaster/admin_console/internal/models"
	"github.com/Skotchmaster/admin_console/pkg/db"
	"github.com/Skotchmaster/admin_console/pkg/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		gdb, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB(gdb, logger)

		if err := migrate(gdb); err != nil {
			return err
		}
		logger.Info("migrate_done", "tables", len(models.All()))
		return nil
	},
}

func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
}

func migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func closeDB(gdb *gorm.DB, logger *slog.Logger) {
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("db_close_failed", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("db_close_failed", "error", err)
	}
}
