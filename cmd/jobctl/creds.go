package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
)

func newCredsCmd(state stateFunc, ctxFor ctxFunc, printer printerFunc) *cobra.Command {
	creds := &cobra.Command{Use: "creds", Short: "Manage stored provider tokens"}

	var provider, key string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a provider token; environment variables still take precedence",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider = strings.ToLower(strings.TrimSpace(provider))
			if provider == "" || key == "" {
				return errors.New("--provider and --key are required")
			}
			if !credentials.IsKnownProvider(provider) {
				return fmt.Errorf("unknown provider %q (known: %s)", provider, strings.Join(credentials.KnownProviders, ", "))
			}
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			if err := state().creds.Set(ctx, provider, key, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored token for %s\n", provider)
			return nil
		},
	}
	set.Flags().StringVar(&provider, "provider", "", "Provider: "+strings.Join(credentials.KnownProviders, "|"))
	set.Flags().StringVar(&key, "key", "", "API key or token")

	list := &cobra.Command{
		Use:   "list",
		Short: "List providers with a stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := ctxFor(cmd)
			defer cancel()
			entries, err := state().creds.List(ctx)
			if err != nil {
				return err
			}
			out := printer(cmd)
			if out.json {
				return out.encode(entries)
			}
			for _, e := range entries {
				out.printf("%-10s  updated %s\n", e.Provider, e.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}

	creds.AddCommand(set, list)
	return creds
}
