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
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/http/handlers"
	httpapi "github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/http/httpapi"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/prompt"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	// Cancelled on SIGINT/SIGTERM; background generation observes it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	jobs := repo.NewJobRepository(runner)
	videos := repo.NewVideoRepository(runner)
	deps := bootstrap.Deps{Config: cfg, Tokens: credentials.NewStore(runner), Logger: logger}

	completer, err := bootstrap.Completer(ctx, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("text completion unavailable")
	}
	history, closeHistory, err := bootstrap.ConversationStore(ctx, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("conversation store unavailable")
	}
	defer closeHistory()
	notifier, err := bootstrap.Notifier(ctx, deps, history)
	if err != nil {
		logger.Fatal().Err(err).Msg("notifier unavailable")
	}
	service := generation.NewService(bootstrap.VideoChain(ctx, deps), videos, logger)

	var dispatcher dispatch.Dispatcher
	switch cfg.DispatchMode {
	case infra.DispatchModeAMQP:
		conn, err := infra.NewAMQPConnection(cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect broker")
		}
		defer conn.Close()
		publisher, err := dispatch.NewAMQPPublisher(conn, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open publish channel")
		}
		defer publisher.Close()
		dispatcher = publisher
		logger.Info().Str("queue", cfg.AMQPQueue).Msg("generation tasks go to the broker")
	default:
		taskRunner := chat.NewRunner(jobs, service, notifier, logger)
		pool := dispatch.NewPool(ctx, cfg.DispatchWorkers, cfg.DispatchQueueSize, taskRunner.Run, logger)
		defer func() {
			if err := pool.Close(); err != nil {
				logger.Error().Err(err).Msg("worker pool close failed")
			}
		}()
		dispatcher = pool
		logger.Info().Int("workers", cfg.DispatchWorkers).Msg("generation tasks run in-process")
	}

	bot := chat.NewBot(chat.Options{
		Jobs:           jobs,
		Classifier:     prompt.NewClassifier(completer, logger),
		Notifier:       notifier,
		History:        history,
		Dispatcher:     dispatcher,
		Logger:         logger,
		HistoryLimit:   cfg.HistoryLimit,
		Window:         cfg.ConversationWindow,
		SupportContact: cfg.SupportContact,
		Location:       bootstrap.Location(cfg),
	})

	app := handlers.NewApp(bot, service, logger)
	app.Ping = dbpool.Ping
	app.GenerateTimeout = cfg.GenerateTimeout

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:            logger,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		RateLimitPerMin:   cfg.RateLimitPerMin,
		ValidateSignature: cfg.TwilioValidateSignature,
		TwilioAuthToken:   cfg.TwilioAuthToken,
		PublicBaseURL:     cfg.PublicBaseURL,
	})

	server := infra.NewHTTPServer(cfg, router, context.Background())

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
