package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/querymind/observability"
	"github.com/tailored-agentic-units/querymind/server"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		addr            string
		shutdownTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat page, JSON API, websocket and RPC endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			counter := observability.NewCounter()

			exec, err := root.newExecutor(counter)
			if err != nil {
				return err
			}
			defer exec.Close()

			obs, err := root.observer(os.Stderr)
			if err != nil {
				return err
			}

			srv := server.New(exec,
				server.WithObserver(obs),
				server.WithCounter(counter),
				server.WithSessions(exec.Sessions()),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				fmt.Fprintf(cmd.ErrOrStderr(), "querymind listening on %s\n", addr)
				if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests")

	return cmd
}
