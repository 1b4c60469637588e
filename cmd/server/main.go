// Package main is the entry point for the learninfive API server.
//
// main stays minimal. It:
//  1. reads configuration from the environment (and .env)
//  2. builds the long-lived dependencies (logger, store, token signer, generator)
//  3. runs the server until SIGINT/SIGTERM
//  4. closes the store once the server has drained
//
// All actual logic lives in internal/.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/learninfive/internal/auth"
	"github.com/sakif/learninfive/internal/config"
	"github.com/sakif/learninfive/internal/database"
	"github.com/sakif/learninfive/internal/explain"
	"github.com/sakif/learninfive/internal/logger"
	"github.com/sakif/learninfive/internal/server"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	store, err := database.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing database", slog.String("error", err.Error()))
		}
	}()
	log.Info("database ready", slog.String("driver", store.Driver))

	tokens, err := auth.NewTokenService(cfg.SecretKey, auth.WithTTL(cfg.AccessTokenTTL))
	if err != nil {
		return err
	}

	// The generator is optional: without a key the server still runs and
	// /api/explain answers 503.
	var gen explain.Generator
	if cfg.GeneratorEnabled() {
		client, err := explain.NewClient(explain.ClientConfig{
			BaseURL: cfg.Gemini.BaseURL,
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		})
		if err != nil {
			return err
		}
		gen = explain.NewLimited(client, cfg.Gemini.MaxConcurrent, log)
		log.Info("explanation generator enabled",
			slog.String("model", cfg.Gemini.Model),
			slog.Int("max_concurrent", cfg.Gemini.MaxConcurrent),
		)
	} else {
		log.Warn("GEMINI_API_KEY not set; /api/explain will return 503")
	}

	srv, err := server.New(
		server.Config{Port: cfg.Port, CORSOrigins: cfg.CORSOrigins},
		log,
		server.Deps{
			Store:     store,
			Tokens:    tokens,
			Passwords: auth.NewPasswordService(cfg.BcryptCost),
			Generator: gen,
			Registry:  prometheus.NewRegistry(),
		},
	)
	if err != nil {
		return err
	}

	return srv.Start()
}
