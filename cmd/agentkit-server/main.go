// Command agentkit-server runs the agent HTTP server: chat, canvas and
// generative UI agents behind REST, SSE and the surface action endpoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kataras/golog"
	"github.com/tmc/langchaingo/tools"

	"github.com/agentkit-go/agentkit/a2ui"
	"github.com/agentkit-go/agentkit/agent"
	"github.com/agentkit-go/agentkit/config"
	"github.com/agentkit-go/agentkit/llms/openai"
	"github.com/agentkit-go/agentkit/log"
	"github.com/agentkit-go/agentkit/server"
	"github.com/agentkit-go/agentkit/store"
	"github.com/agentkit-go/agentkit/store/postgres"
	"github.com/agentkit-go/agentkit/store/redis"
	"github.com/agentkit-go/agentkit/store/sqlite"
	"github.com/agentkit-go/agentkit/tool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		golog.Fatalf("load config: %v", err)
	}

	logger := log.NewGologLogger(golog.New())
	logger.SetLevel(log.ParseLevel(cfg.LogLevel))
	log.SetDefaultLogger(logger)

	threads, err := openStore(cfg)
	if err != nil {
		logger.Error("open store: %v", err)
		os.Exit(1)
	}
	defer threads.Close()

	model, err := openai.New(
		openai.WithAPIKey(cfg.OpenAIAPIKey),
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithModel(openai.ModelName(cfg.Model)),
	)
	if err != nil {
		logger.Error("create model: %v", err)
		os.Exit(1)
	}

	surfaces := a2ui.NewSurfaceManager(a2ui.WithLogger(logger))

	registry := agent.NewRegistry()
	if a, err := agent.NewChatAgent(model,
		agent.WithTools([]tools.Tool{tool.NewWebFetch()}),
		agent.WithLogger(logger),
	); err == nil {
		registry.Register(a)
	} else {
		logger.Error("create chat agent: %v", err)
		os.Exit(1)
	}
	if a, err := agent.NewCanvasAgent(model, agent.WithLogger(logger)); err == nil {
		registry.Register(a)
	} else {
		logger.Error("create canvas agent: %v", err)
		os.Exit(1)
	}
	if a, err := agent.NewUIAgent(model, surfaces, agent.WithLogger(logger)); err == nil {
		registry.Register(a)
	} else {
		logger.Error("create ui agent: %v", err)
		os.Exit(1)
	}

	srv := server.New(registry, threads, surfaces, server.WithLogger(logger))

	go func() {
		if err := srv.Start(cfg.Addr()); err != nil {
			logger.Info("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown: %v", err)
	}
}

func openStore(cfg *config.Config) (store.ThreadStore, error) {
	switch cfg.StoreBackend {
	case "sqlite":
		return sqlite.NewSqliteThreadStore(sqlite.SqliteOptions{Path: cfg.SqlitePath})
	case "redis":
		return redis.NewRedisThreadStore(redis.RedisOptions{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}), nil
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := postgres.NewPostgresThreadStore(ctx, postgres.PostgresOptions{ConnString: cfg.PostgresURL})
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewMemoryThreadStore(), nil
	}
}
