package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/querymind/server"
	"github.com/tailored-agentic-units/querymind/session"
)

func newAskCommand(root *rootOptions) *cobra.Command {
	var (
		sessionKey string
		serverURL  string
	)

	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Run one turn and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if sessionKey == "" {
				sessionKey = session.NewKey()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			reply, err := root.ask(ctx, serverURL, sessionKey, text)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), reply)
			fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", sessionKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session", "", "Session key (a new one is generated when empty)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Send the turn to a running querymind server instead of running locally")

	return cmd
}

func (o *rootOptions) ask(ctx context.Context, serverURL, key, text string) (string, error) {
	if serverURL != "" {
		return server.NewRPCClient(http.DefaultClient, serverURL).SendTurn(ctx, key, text)
	}

	exec, err := o.newExecutor()
	if err != nil {
		return "", err
	}
	defer exec.Close()

	return exec.Execute(ctx, key, text)
}
