package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

func newJobsCmd(state stateFunc, ctxFor ctxFunc, printer printerFunc) *cobra.Command {
	var (
		handle string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List a user's jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if handle == "" {
				return errors.New("--handle is required")
			}
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			jobs, err := state().jobs.ListByUser(ctx, handle, limit)
			if err != nil {
				return err
			}
			out := printer(cmd)
			if out.json {
				return out.encode(jobs)
			}
			for _, j := range jobs {
				out.printf("%s  %-10s  %s  %q\n", j.ID, j.Status, j.CreatedAt.Format(time.RFC3339), j.UserPrompt)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&handle, "handle", "", "Chat handle, e.g. whatsapp:+15551234567")
	cmd.Flags().IntVar(&limit, "limit", 10, "Max rows")
	return cmd
}

func newShowCmd(state stateFunc, ctxFor ctxFunc, printer printerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Print one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			job, err := state().jobs.GetByID(ctx, args[0])
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("job %s not found", args[0])
			}
			if err != nil {
				return err
			}
			out := printer(cmd)
			if out.json {
				return out.encode(job)
			}
			out.printf("id:        %s\n", job.ID)
			out.printf("handle:    %s\n", job.UserHandle)
			out.printf("status:    %s\n", job.Status)
			out.printf("prompt:    %s\n", job.UserPrompt)
			out.printf("enhanced:  %s\n", job.EnhancedPrompt)
			out.printf("video:     %s\n", job.VideoURL)
			out.printf("provider:  %s\n", job.Provider)
			out.printf("created:   %s\n", job.CreatedAt.Format(time.RFC3339))
			out.printf("updated:   %s\n", job.UpdatedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newVideosCmd(state stateFunc, ctxFor ctxFunc, printer printerFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "videos",
		Short: "List generated videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			videos, err := state().videos.List(ctx)
			if err != nil {
				return err
			}
			out := printer(cmd)
			if out.json {
				return out.encode(videos)
			}
			for _, v := range videos {
				out.printf("%d  %-10s  %s  %q\n", v.ID, v.Provider, v.VideoURL, v.Prompt)
			}
			return nil
		},
	}
}

func newMigrateCmd(state stateFunc, ctxFor ctxFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the jobs, videos and integration_tokens tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			if err := state().migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}
