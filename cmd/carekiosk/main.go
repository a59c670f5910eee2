package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carekiosk/internal/bus"
	"carekiosk/internal/clock"
	"carekiosk/internal/config"
	"carekiosk/internal/database"
	httpapi "carekiosk/internal/http"
	"carekiosk/internal/kiosk"
	"carekiosk/internal/logger"
	"carekiosk/internal/recorder"
	"carekiosk/internal/repository"
	"carekiosk/internal/scheduler"
	"carekiosk/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "carekiosk")
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	clk := clock.System{}

	// Repositories: Postgres + Redis when available, in-memory fallback so the
	// kiosk still runs with plain `go run`.
	var (
		db          *sql.DB
		reminders   repository.ReminderRepo
		completions repository.CompletionRepo
		settings    repository.SettingsRepo
		states      repository.KioskStateRepo
		redisClient *redis.Client
	)

	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			if err := database.EnsureSchema(d); err != nil {
				log.Fatal("Failed to apply schema", zap.Error(err))
			}
			db = d
			log.Info("DB enabled for carekiosk")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}

	if db != nil {
		reminders = repository.NewPostgresReminderRepo(db)
		completions = repository.NewPostgresCompletionRepo(db)
		settings = repository.NewPostgresSettingsRepo(db)

		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unavailable, keeping kiosk state in memory", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
			states = repository.NewMemoryKioskStateRepo()
		} else {
			states = repository.NewRedisKioskStateRepo(redisClient)
		}
	} else {
		reminders = repository.NewMemoryReminderRepo()
		completions = repository.NewMemoryCompletionRepo()
		settings = repository.NewMemorySettingsRepo()
		states = repository.NewMemoryKioskStateRepo()
	}

	b := bus.New(log)
	store := kiosk.NewStateStore(states, reminders, b, clk, log)
	rec := recorder.New(reminders, completions, store, b, clk, log)
	machine := kiosk.NewMachine(reminders, completions, settings, store, rec, b, clk, log)
	machine.SetBannerDuration(time.Duration(cfg.Kiosk.CompletedBannerSeconds) * time.Second)

	router := httpapi.NewRouter(log)
	router.RegisterReminderRoutes(httpapi.NewRemindersHandler(reminders, b, log))
	router.RegisterKioskRoutes(httpapi.NewKioskHandler(machine, store, reminders, completions, settings, clk, log))
	router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(settings, b, machine, log))
	router.RegisterStatsRoutes(httpapi.NewStatsHandler(reminders, completions, clk, log))
	router.RegisterEventRoutes(httpapi.NewEventsHandler(b, store, log))
	router.RegisterHealthRoute()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := scheduler.New(machine, time.Duration(cfg.Kiosk.TickIntervalSeconds)*time.Second, log)
	go ticks.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		log.Error("HTTP server error", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
