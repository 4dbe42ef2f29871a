package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jeeyuni/clone-junglebook/internal/api"
	"github.com/jeeyuni/clone-junglebook/internal/auth"
	"github.com/jeeyuni/clone-junglebook/internal/booking"
	"github.com/jeeyuni/clone-junglebook/internal/clock"
	"github.com/jeeyuni/clone-junglebook/internal/config"
	"github.com/jeeyuni/clone-junglebook/internal/events"
	"github.com/jeeyuni/clone-junglebook/internal/metrics"
	"github.com/jeeyuni/clone-junglebook/internal/store"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("JUNGLEBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Auth.GitHubClientID == "" || cfg.Auth.GitHubClientSecret == "" {
		logger.Fatal().Msg("set auth.github_client_id and auth.github_client_secret in config")
	}

	reservations, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open reservation store")
	}
	defer reservations.Close()

	params, err := cfg.ScheduleParams()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid schedule config")
	}

	bus := events.NewBus()
	bus.Subscribe(events.EventReservationCommitted, func(e events.Event) {
		logger.Info().RawJSON("reservation", e.Payload).Msg("audit: reservation committed")
	})

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	svc := booking.NewService(reservations, params, clock.System(), bus, &logger)
	github := auth.NewGitHub(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, cfg.Auth.RedirectURL)

	server := api.NewServer(svc, reservations, github, api.Options{
		JWTSecret:         cfg.Auth.JWTSecret,
		SessionTTL:        cfg.SessionTTL(),
		ClientOrigin:      cfg.Server.ClientOrigin,
		PrometheusEnabled: cfg.Monitoring.PrometheusEnabled,
		ReservePerMinute:  cfg.RateLimit.ReservePerMinute,
		ReserveBurst:      cfg.RateLimit.Burst,
	}, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Database.Backend).Msg("junglebook server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func openStore(cfg *config.Config) (store.ReservationStore, error) {
	switch cfg.Database.Backend {
	case "sqlite":
		return store.NewSQLite(cfg.Database.Path)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return store.NewRedis(client, cfg.RedisTTL()), nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown database backend: %s", cfg.Database.Backend)
	}
}
