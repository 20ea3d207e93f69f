// Package cli holds the miwanzoctl operator commands.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/hugh/miwanzo/internal/database"
	"github.com/hugh/miwanzo/pkg/config"
	"github.com/hugh/miwanzo/pkg/util"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

// NewRootCommand builds the miwanzoctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "miwanzoctl",
		Short:         "Operator tooling for the Miwanzo backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSeedCommand())
	root.AddCommand(newGenKeyCommand())
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

// env is what every database-backed command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func loadEnv() (*env, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &env{cfg: cfg, logger: logger, db: db}, nil
}

// withEnv wraps a command body with config loading and a database handle.
func withEnv(fn func(cmd *cobra.Command, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, e)
	}
}
