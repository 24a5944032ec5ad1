// Package main provides the Farm Navigators game server binary.
// It serves the Telnet frontend, authenticates accounts against PostgreSQL,
// and runs the card game engine for each connected player.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/assistant"
	"github.com/farmnav/farm-navigators/internal/config"
	"github.com/farmnav/farm-navigators/internal/frontend/handlers"
	"github.com/farmnav/farm-navigators/internal/frontend/telnet"
	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/rng"
	"github.com/farmnav/farm-navigators/internal/observability"
	"github.com/farmnav/farm-navigators/internal/server"
	"github.com/farmnav/farm-navigators/internal/storage/postgres"
	"github.com/farmnav/farm-navigators/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	cardsDir := flag.String("cards", "", "override for the card content directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *cardsDir != "" {
		cfg.Game.CardsDir = *cardsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting Farm Navigators server",
		zap.String("server", cfg.Server.Name),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	// Load card content
	contentStart := time.Now()
	catalog, err := card.LoadCatalog(cfg.Game.CardsDir)
	if err != nil {
		logger.Fatal("loading cards", zap.Error(err))
	}
	logger.Info("cards loaded",
		zap.Int("count", catalog.Len()),
		zap.String("dir", cfg.Game.CardsDir),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Connect to PostgreSQL
	ctx := context.Background()
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	// Build services
	accounts := postgres.NewAccountRepository(pool.DB())
	scores := postgres.NewScoreRepository(pool.DB())
	scoreSink := postgres.NewSink(scores, 5*time.Second, logger)

	saves, err := savefile.NewStore(cfg.Server.SaveDir, logger)
	if err != nil {
		logger.Fatal("opening save directory", zap.Error(err))
	}

	var advisor *assistant.Advisor
	if cfg.Assistant.Enabled {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			logger.Warn("assistant enabled but ANTHROPIC_API_KEY is not set, advisor disabled")
		} else {
			completer := assistant.NewAnthropicCompleter(apiKey, cfg.Assistant.Model, int64(cfg.Assistant.MaxTokens))
			advisor = assistant.New(completer, cfg.Assistant.Timeout, logger)
			logger.Info("advisor enabled", zap.String("model", cfg.Assistant.Model))
		}
	}

	gameHandler := handlers.NewGameHandler(
		catalog,
		func() rng.Source { return rng.NewCryptoSource() },
		saves,
		scoreSink,
		scores,
		advisor,
		cfg.Game.DrawDelay,
		logger,
	)
	authHandler := handlers.NewAuthHandler(accounts, gameHandler, logger)
	telnetAcceptor := telnet.NewAcceptor(cfg.Telnet, authHandler, logger)

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			for {
				time.Sleep(30 * time.Second)
				if err := pool.Health(ctx, 5*time.Second); err != nil {
					logger.Warn("database health check failed", zap.Error(err))
				}
			}
		},
		StopFn: func() {
			pool.Close()
		},
	})

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return telnetAcceptor.ListenAndServe()
		},
		StopFn: func() {
			telnetAcceptor.Stop()
		},
	})

	logger.Info("server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
