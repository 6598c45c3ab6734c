package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ishikisiko/match-telemetry/db"
	"github.com/ishikisiko/match-telemetry/handlers"
	"github.com/ishikisiko/match-telemetry/live"
	"github.com/ishikisiko/match-telemetry/routes"
	"github.com/ishikisiko/match-telemetry/services"
	"github.com/ishikisiko/match-telemetry/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the live analytics hub and the optional generation scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cfg.RequireJWT(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := db.Migrate(ctx, a.db); err != nil {
				return err
			}
			a.logger.Info("schema applied")
		}

		return serve(ctx, a)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "Apply the schema before serving")
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger

	var objects storage.ObjectStore = storage.Disabled{}
	if a.cfg.StorageEnabled() {
		r2, err := openObjectStore(ctx, a)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		objects = r2
		logger.Info("object storage initialized", slog.String("bucket", a.cfg.R2BucketName))
	} else {
		logger.Info("object storage not configured, exports disabled")
	}

	params, err := a.generatorParams()
	if err != nil {
		return err
	}

	hub := live.NewHub(logger)

	analyticsService := a.analytics()
	exportService := services.NewExportService(analyticsService, objects)
	var genExporter services.ExportService
	if a.cfg.StorageEnabled() {
		genExporter = exportService
	}
	generatorService := services.NewGeneratorService(a.store, a.store, params, analyticsService, genExporter, hub, logger)
	regenerationService := services.NewTTDRegenerationService(a.store, a.store, params.Curve, hub, logger)
	authService := services.NewAuthService(a.store.Users)

	router := routes.SetupRoutes(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, a.cfg.JWTSecretKey),
		Matches:   handlers.NewMatchHandler(analyticsService, exportService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
		Admin:     handlers.NewAdminHandler(generatorService, regenerationService, a.cfg.OwnerKey),
		WebSocket: handlers.NewWebSocketHandler(hub, a.cfg.AllowedOrigins),
	}, routes.Options{
		JWTSecret:      a.cfg.JWTSecretKey,
		AllowedOrigins: a.cfg.AllowedOrigins,
		DB:             a.db,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	if a.cfg.GenerateInterval > 0 {
		sched, err := services.StartGenerationScheduler(gctx, generatorService, services.GenerateInput{
			Matches:  a.cfg.GenerateMatches,
			OwnerKey: a.cfg.OwnerKey,
			Seed:     a.cfg.GenerateSeed,
		}, a.cfg.GenerateInterval, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			if err := sched.Shutdown(); err != nil {
				logger.Error("scheduler shutdown failed", slog.Any("error", err))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}
