package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/querymind/session"
)

func newSessionsCommand(root *rootOptions) *cobra.Command {
	var showCount bool

	cmd := &cobra.Command{
		Use:   "sessions [key]",
		Short: "List session keys in the configured store, or print one session's history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			mgr, err := session.New(&cfg.Session)
			if err != nil {
				return err
			}
			defer mgr.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				history, err := mgr.History(ctx, args[0])
				if err != nil {
					return err
				}
				for _, m := range history {
					fmt.Fprintf(out, "%s: %s\n", m.Role, m.Content)
				}
				return nil
			}

			keys, err := mgr.Keys(ctx)
			if err != nil {
				return err
			}
			for _, key := range keys {
				if !showCount {
					fmt.Fprintln(out, key)
					continue
				}
				history, err := mgr.History(ctx, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d messages\n", key, len(history))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showCount, "count", false, "Show the message count for each session")

	return cmd
}
