// Package commands holds the CLI. Each command loads configuration and opens
// its own database handle; nothing is shared through package globals.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ishikisiko/match-telemetry/config"
	"github.com/ishikisiko/match-telemetry/db"
	"github.com/ishikisiko/match-telemetry/repositories"
	"github.com/ishikisiko/match-telemetry/services"
	"github.com/ishikisiko/match-telemetry/telemetry"
	"github.com/spf13/cobra"
)

const connectTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:           "telemetry",
	Short:         "Synthetic esports match telemetry and performance analytics",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides LOG_LEVEL env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(userCmd)
}

// app is the per-process wiring owned by the entry point.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	store  *repositories.Store
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// bootstrap loads configuration, installs the JSON logger and connects to
// the database. Callers must call close.
func bootstrap(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if raw, _ := cmd.Flags().GetString("log-level"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	conn, err := db.Connect(cfg.DatabaseURL, connectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Debug("database connection established")

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     conn,
		store:  repositories.NewPostgresStore(conn),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database connection", slog.Any("error", err))
	}
}

func (a *app) generatorParams() (services.GeneratorParams, error) {
	params := services.DefaultGeneratorParams()
	mode, err := telemetry.ParseIntervalMode(a.cfg.ComboInterval)
	if err != nil {
		return params, err
	}
	params.Combos.Mode = mode
	return params, nil
}

func (a *app) analytics() services.AnalyticsService {
	return services.NewAnalyticsService(a.store, a.cfg.AnalyticsWindow)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
