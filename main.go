package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/internal/common/clock"
	"github.com/robalobadob/numguess/internal/common/uuid"
	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/dice"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/httpserver"
	"github.com/robalobadob/numguess/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)
	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn().Msg("SESSION_SECRET is the development default; set it in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open session store")
	}
	defer closeStore()

	clk := clock.New()
	controller, err := game.NewController(&game.ControllerConfig{
		Roller: dice.New(&dice.Config{Seed: cfg.RandomSeed}),
		Clock:  clk,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build round controller")
	}

	srv, err := httpserver.New(&httpserver.Config{
		Store:          st,
		Controller:     controller,
		IDs:            uuid.New(),
		Clock:          clk,
		SessionSecret:  cfg.SessionSecret,
		CookieName:     cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build http server")
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("starting numguess server")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown LOG_LEVEL, keeping default")
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openStore builds the configured session store and its cleanup func.
func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		st, err := store.NewRedis(ctx, &store.RedisConfig{RedisClient: client, TTL: cfg.SessionTTL})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return st, func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis client")
			}
		}, nil
	default:
		return store.NewMemoryStore(&store.MemoryConfig{TTL: cfg.SessionTTL}), func() {}, nil
	}
}
