package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/suimate-ai/server/internal/adapters/chain"
	"github.com/suimate-ai/server/internal/adapters/dex"
	"github.com/suimate-ai/server/internal/adapters/market"
	"github.com/suimate-ai/server/internal/adapters/social"
	"github.com/suimate-ai/server/internal/adapters/vault"
	"github.com/suimate-ai/server/internal/agent/graph"
	"github.com/suimate-ai/server/internal/agent/graph/tools"
	"github.com/suimate-ai/server/internal/agent/model"
	"github.com/suimate-ai/server/internal/agent/repo"
	"github.com/suimate-ai/server/internal/core"
	"github.com/suimate-ai/server/internal/server"
	"github.com/suimate-ai/server/pkg/cache"
	logx "github.com/suimate-ai/server/pkg/logger"
	pkgredis "github.com/suimate-ai/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the service, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis  pkgredis.Config
	Server server.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat         model.ChatModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig

	// Data sources
	Social social.Config
	Market market.Config
	Chain  chain.Config
	Dex    dex.Config
	Vault  vault.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to process environment config")
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis")

	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		logx.Fatal().Str("ttl", cfg.Conversation.TTL).Err(err).Msg("Invalid CONVERSATION_TTL")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	apiCache := cache.NewRedis(rdb, "cache")

	marketClient := market.New(cfg.Market, httpClient, apiCache)
	vaultClient := vault.New(cfg.Vault, httpClient)

	assistant, err := graph.BuildAssistant(ctx, graph.Config{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		ChatModel:        cfg.Chat,
		Prompt:           cfg.Prompt,
		Conversation:     cfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Tools: tools.Deps{
			Social: social.New(cfg.Social, httpClient, apiCache),
			Market: marketClient,
			Chain:  chain.New(cfg.Chain, httpClient, marketClient),
			Dex:    dex.New(cfg.Dex, httpClient),
			Vaults: vaultClient,
		},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build assistant")
	}
	if !assistant.IsConfigured() {
		logx.Warn().Msg("Assistant running unconfigured; chat turns will return a fixed apology")
	}

	srv := server.New(cfg.Server, assistant)
	if err := srv.Run(ctx); err != nil {
		logx.Fatal().Err(err).Msg("HTTP server failed")
	}
	logx.Info().Msg("Server stopped")
}
