package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/example/burger-helsinki/internal/config"
	"github.com/example/burger-helsinki/internal/db"
	"github.com/example/burger-helsinki/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var configPath string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "burgerhelsinki",
		Short:         "Burger Helsinki website: menu, table reservations and announcements",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml, toml or json); environment variables win")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newServerCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newAnnouncementCmd())
	root.AddCommand(newReservationCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads .env, the configuration and installs the process logger.
func setup() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(os.Stderr, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func openDB(ctx context.Context, cfg config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required for this command")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return d, nil
}
