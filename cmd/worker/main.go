package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/adapter/repo"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/bootstrap"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/chat"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/dispatch"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/generation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
)

// The worker consumes generation tasks published by the API when
// DISPATCH_MODE=amqp.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AMQPURL == "" {
		logger.Fatal().Msg("worker: AMQP_URL is required")
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	deps := bootstrap.Deps{Config: cfg, Tokens: credentials.NewStore(runner), Logger: logger}

	history, closeHistory, err := bootstrap.ConversationStore(ctx, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: conversation store unavailable")
	}
	defer closeHistory()
	notifier, err := bootstrap.Notifier(ctx, deps, history)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: notifier unavailable")
	}

	service := generation.NewService(bootstrap.VideoChain(ctx, deps), repo.NewVideoRepository(runner), logger)
	taskRunner := chat.NewRunner(repo.NewJobRepository(runner), service, notifier, logger)

	conn, err := infra.NewAMQPConnection(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: broker connection failed")
	}
	defer conn.Close()

	consumer, err := dispatch.NewAMQPConsumer(conn, cfg.AMQPExchange, cfg.AMQPQueue, cfg.DispatchWorkers, taskRunner.Run, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: consumer setup failed")
	}
	defer consumer.Close()

	logger.Info().Str("queue", cfg.AMQPQueue).Int("prefetch", cfg.DispatchWorkers).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("worker: consumer stopped")
	}
	logger.Info().Msg("worker stopped")
}
