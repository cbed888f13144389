package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/querymind/session"
)

func newChatCommand(root *rootOptions) *cobra.Command {
	var sessionKey string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat on stdin; /reset clears the session, /quit exits",
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := root.newExecutor()
			if err != nil {
				return err
			}
			defer exec.Close()

			if sessionKey == "" {
				sessionKey = session.NewKey()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "QueryMind session %s\n", sessionKey)
			fmt.Fprintln(out, "Welcome! I can chat in Urdu and English.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "you> ")
				if !scanner.Scan() {
					break
				}

				text := strings.TrimSpace(scanner.Text())
				switch text {
				case "":
					continue
				case "/quit", "/exit":
					return nil
				case "/reset":
					if err := exec.Reset(ctx, sessionKey); err != nil {
						fmt.Fprintf(out, "error: %v\n", err)
					}
					continue
				}

				reply, err := exec.Execute(ctx, sessionKey, text)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					if ctx.Err() != nil {
						return ctx.Err()
					}
					continue
				}
				fmt.Fprintf(out, "assistant> %s\n", reply)
			}

			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&sessionKey, "session", "", "Session key to resume (a new one is generated when empty)")

	return cmd
}
