package main

import (
	"context"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/barfet/wellbeing-check-in-agent/internal/adapters/gemini"
	"github.com/barfet/wellbeing-check-in-agent/internal/adapters/memory"
	redisadapter "github.com/barfet/wellbeing-check-in-agent/internal/adapters/redis"
	"github.com/barfet/wellbeing-check-in-agent/internal/config"
	"github.com/barfet/wellbeing-check-in-agent/internal/logging"
	"github.com/barfet/wellbeing-check-in-agent/internal/orchestration"
	"github.com/barfet/wellbeing-check-in-agent/pkg/session"
)

// app bundles the wired components shared by the serve, chat, and mcp
// commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	orc      *orchestration.Orchestrator
	sessions *session.Manager

	// onGeneratorFailure lets the HTTP adapter attach its metrics after the
	// orchestrator is built.
	onGeneratorFailure func(node string)

	closers []func() error
}

// buildApp loads configuration, builds the generator, store, and
// orchestrator, and returns them ready to serve. Server mode logs JSON for
// scraping; interactive commands log text.
func buildApp(ctx context.Context, cmd *cobra.Command, jsonLogs bool) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(level)
	if jsonLogs {
		logger = logging.NewJSON(level)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
	}

	gen, err := gemini.New(ctx, gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing gemini client: %w", err)
	}
	if cfg.Gemini.APIKey == "" {
		a.logger.Warn("no Gemini API key configured, turns will degrade to fallback responses")
	}

	a.orc = orchestration.New(gen,
		orchestration.WithLogger(a.logger),
		orchestration.WithCritiqueModel(cfg.Gemini.CritiqueModel),
		orchestration.WithDepthModel(cfg.Gemini.DepthModel),
		orchestration.WithGeneratorFailureObserver(func(node string) {
			if a.onGeneratorFailure != nil {
				a.onGeneratorFailure(node)
			}
		}),
	)

	sessionOpts := []session.Option{session.WithLogger(a.logger)}
	switch cfg.Store.Backend {
	case config.StoreRedis:
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisadapter.NewFromClient(client, redisadapter.WithTTL(cfg.Store.TTL))
		sessionOpts = append(sessionOpts, session.WithLocker(redisadapter.NewLocker(client, "checkin:lock:")))
		a.sessions = session.NewManager(store, sessionOpts...)
		a.closers = append(a.closers, client.Close)
		a.logger.Info("using redis store", "addr", cfg.Redis.Addr, "ttl", cfg.Store.TTL)
	case config.StoreMemory:
		a.sessions = session.NewManager(memory.NewStore(), sessionOpts...)
		a.logger.Info("using in-memory store")
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return a, nil
}

// Close releases any held resources.
func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("failed to close resource", "err", err)
		}
	}
}
