package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/compass-mentor/server/internal/core"
	"github.com/compass-mentor/server/internal/mentor/fallback"
	"github.com/compass-mentor/server/internal/mentor/model"
	"github.com/compass-mentor/server/internal/mentor/orchestrator"
	"github.com/compass-mentor/server/internal/mentor/provider"
	"github.com/compass-mentor/server/internal/mentor/repo"
	"github.com/compass-mentor/server/internal/mentor/tools"
	"github.com/compass-mentor/server/internal/server"
	logx "github.com/compass-mentor/server/pkg/logger"
	pkgredis "github.com/compass-mentor/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the mentor service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server model.ServerConfig

	// Providers
	Groq   model.GroqConfig
	Claude model.ClaudeConfig
	Gemini model.GeminiConfig

	// Mentor behavior
	Mentor       model.MentorConfig
	Conversation model.ConversationConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	// Grounding data and tool catalogue.
	registry := tools.NewRegistry(tools.NewDataset())
	catalogue := registry.Catalogue()

	// Provider adapters in priority order. Gemini needs a client up
	// front; the other two are plain HTTP and construct unconditionally.
	providers := []provider.Provider{
		provider.NewGroq(cfg.Groq, catalogue),
		provider.NewClaude(cfg.Claude, catalogue),
	}
	gemini, err := provider.NewGemini(ctx, cfg.Gemini, catalogue)
	if err != nil {
		logx.Warn().Err(err).Msg("gemini adapter unavailable")
	} else {
		providers = append(providers, gemini)
	}
	for _, p := range providers {
		logx.Info().Str("provider", p.Name()).Bool("available", p.Available()).Msg("provider registered")
	}

	orch := orchestrator.New(registry, providers, fallback.New(), !env.IsProduction())

	// Session store is optional; without Redis the legacy single-message
	// mode runs stateless.
	var sessions model.SessionRepository
	if cfg.Redis.URL != "" {
		rdb, err := cfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()

		ttl, err := time.ParseDuration(cfg.Conversation.TTL)
		if err != nil {
			log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", cfg.Conversation.TTL, err)
		}
		sessions = repo.NewRedisSessionRepository(rdb, ttl, cfg.Conversation.MaxTurns)
		logx.Info().Msg("Connected to Redis, session mode enabled")
	} else {
		logx.Info().Msg("REDIS_URL not set, running without session persistence")
	}

	srv := server.New(orch, sessions, cfg.Mentor.PreferredModel)
	router := srv.Router(cfg.Server.AllowOrigins)

	addr := ":" + cfg.Server.Port
	logx.Info().Str("addr", addr).Msg("mentor server listening")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
