package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gym-scheduling-service/internal/app"
	"gym-scheduling-service/internal/config"
	availDeclare "gym-scheduling-service/internal/http-server/handlers/availability/declare"
	availGet "gym-scheduling-service/internal/http-server/handlers/availability/get"
	availSync "gym-scheduling-service/internal/http-server/handlers/availability/sync"
	availWithdraw "gym-scheduling-service/internal/http-server/handlers/availability/withdraw"
	regCancel "gym-scheduling-service/internal/http-server/handlers/registrations/cancel"
	regCreate "gym-scheduling-service/internal/http-server/handlers/registrations/create"
	regGet "gym-scheduling-service/internal/http-server/handlers/registrations/get"
	regProgress "gym-scheduling-service/internal/http-server/handlers/registrations/progress"
	regStatus "gym-scheduling-service/internal/http-server/handlers/registrations/status"
	slotCreate "gym-scheduling-service/internal/http-server/handlers/scheduleslots/create"
	slotDelete "gym-scheduling-service/internal/http-server/handlers/scheduleslots/delete"
	slotGet "gym-scheduling-service/internal/http-server/handlers/scheduleslots/get"
	slotUpdate "gym-scheduling-service/internal/http-server/handlers/scheduleslots/update"
	"gym-scheduling-service/internal/lock"
	svc "gym-scheduling-service/internal/service"
	"gym-scheduling-service/internal/storage/postgres"
	slogpretty "gym-scheduling-service/pkg/handlers/slogPretty"
	"gym-scheduling-service/pkg/middleware/mwLogger"
	"gym-scheduling-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Actor-ID, X-Actor-Role")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrator, err := app.NewMigrator(storage.DB(), cfg.MigrationsPath)
	if err != nil {
		log.Error("Failed to init migrator", sl.Err(err))
		os.Exit(1)
	}

	if err := migrator.Run(context.Background()); err != nil {
		log.Error("Failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	if version, err := migrator.Version(context.Background()); err != nil {
		log.Warn("Failed to read migration version", sl.Err(err))
	} else {
		log.Info("Database schema up to date", slog.Int64("version", version))
	}

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	service := svc.NewService(storage, locker, log)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Trainer availability (authoritative weekly list)
	router.Get("/trainers/{trainerID}/availability", availGet.New(log, service))
	router.Post("/trainers/{trainerID}/availability", availDeclare.New(log, service))
	router.Delete("/trainers/{trainerID}/availability/{slotID}", availWithdraw.New(log, service))
	router.Post("/trainers/{trainerID}/availability/sync", availSync.New(log, service))

	// Schedule slots (normalized view)
	router.Get("/trainers/{trainerID}/slots", slotGet.New(log, service))
	router.Post("/trainers/{trainerID}/slots", slotCreate.New(log, service))
	router.Put("/slots/{id}", slotUpdate.New(log, service))
	router.Delete("/slots/{id}", slotDelete.New(log, service))

	// Registrations
	router.Post("/registrations", regCreate.New(log, service))
	router.Get("/registrations", regGet.NewList(log, service))
	router.Get("/registrations/{id}", regGet.New(log, service))
	router.Put("/registrations/{id}/status", regStatus.New(log, service))
	router.Put("/registrations/{id}/progress", regProgress.New(log, service))
	router.Put("/registrations/{id}/cancel", regCancel.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
