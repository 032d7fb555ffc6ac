package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/phonebook-api/pkg/config"
	"github.com/noah-isme/phonebook-api/pkg/database"
	"github.com/noah-isme/phonebook-api/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(database.Up), string(database.Down)},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction, err := database.ParseDirection(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db, direction); err != nil {
		return err
	}
	logr.Info("migrations applied", zap.String("direction", string(direction)))
	return nil
}
