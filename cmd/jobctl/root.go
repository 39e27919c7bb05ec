package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
)

type credentialStore interface {
	Set(ctx context.Context, provider, token string, props map[string]any) error
	List(ctx context.Context) ([]credentials.Entry, error)
}

// env holds the stores a command runs against.
type env struct {
	jobs    domain.JobRepository
	videos  domain.VideoRepository
	creds   credentialStore
	migrate func(ctx context.Context) error
}

type opener func(ctx context.Context) (*env, func(), error)

func newRootCmd(open opener) *cobra.Command {
	var (
		e       *env
		release func()
		timeout time.Duration
		asJSON  bool
	)
	root := &cobra.Command{
		Use:           "jobctl",
		Short:         "Inspect MakeVideo AI jobs and videos and manage provider tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if e != nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			opened, closeFn, err := open(ctx)
			if err != nil {
				return err
			}
			e, release = opened, closeFn
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if release != nil {
				release()
			}
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Timeout for each command")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "JSON output")

	ctx := func(cmd *cobra.Command) (context.Context, context.CancelFunc) {
		return context.WithTimeout(cmd.Context(), timeout)
	}
	state := func() *env { return e }
	printer := func(cmd *cobra.Command) output { return output{w: cmd.OutOrStdout(), json: asJSON} }

	root.AddCommand(
		newJobsCmd(state, ctx, printer),
		newShowCmd(state, ctx, printer),
		newVideosCmd(state, ctx, printer),
		newCredsCmd(state, ctx, printer),
		newMigrateCmd(state, ctx),
	)
	return root
}

type (
	stateFunc   func() *env
	ctxFunc     func(cmd *cobra.Command) (context.Context, context.CancelFunc)
	printerFunc func(cmd *cobra.Command) output
)

type output struct {
	w    io.Writer
	json bool
}

func (o output) encode(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (o output) printf(format string, args ...any) {
	fmt.Fprintf(o.w, format, args...)
}
