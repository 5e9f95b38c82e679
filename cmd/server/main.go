package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quantum_chess/internal/arena"
	"quantum_chess/internal/config"
	"quantum_chess/internal/game"
	"quantum_chess/internal/httpx"
	"quantum_chess/internal/store"
	"quantum_chess/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; nothing better than stderr.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobal(log)
	log.Info().Msg("starting quantum chess server")

	db, err := store.Open(cfg.DatabasePath, logger.Component(log, "store"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	games := arena.New(
		store.NewGames(db),
		arena.Config{MinStake: cfg.MinStake, MaxStake: cfg.MaxStake},
		logger.Component(log, "arena"),
		policyOptions(cfg)...,
	)

	srv := httpx.New(httpx.Config{
		Port:  cfg.Port,
		Arena: games,
		Log:   logger.Component(log, "http"),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// policyOptions translates config overrides into engine options.
func policyOptions(cfg *config.Config) []game.Option {
	if cfg.MaxSuperpositions == 0 && cfg.MaxEntanglements == 0 {
		return nil
	}
	policy := game.DefaultPolicy()
	if cfg.MaxSuperpositions > 0 {
		policy.Superposition.MaxPerPlayer = cfg.MaxSuperpositions
	}
	if cfg.MaxEntanglements > 0 {
		policy.Entanglement.MaxPairsPerPlayer = cfg.MaxEntanglements
	}
	return []game.Option{game.WithPolicy(policy)}
}
