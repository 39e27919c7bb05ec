// Command jobctl inspects chat jobs and generated videos and manages
// provider tokens stored in the database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/adapter/repo"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(openPostgres).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openPostgres(ctx context.Context) (*env, func(), error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := infra.NewLogger(cfg.AppEnv, "jobctl")
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	runner := infra.NewSQLRunner(pool, logger)
	e := &env{
		jobs:   repo.NewJobRepository(runner),
		videos: repo.NewVideoRepository(runner),
		creds:  credentials.NewStore(runner),
		migrate: func(ctx context.Context) error {
			_, err := runner.Exec(ctx, sqlinline.QCreateSchema)
			return err
		},
	}
	return e, pool.Close, nil
}
