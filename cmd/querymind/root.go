package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/querymind/chat"
	"github.com/tailored-agentic-units/querymind/credential"
	"github.com/tailored-agentic-units/querymind/observability"
	"github.com/tailored-agentic-units/querymind/provider"
	"github.com/tailored-agentic-units/querymind/session"
)

type rootOptions struct {
	configFile     string
	envFile        string
	providerName   string
	model          string
	baseURL        string
	systemPrompt   string
	sessionBackend string
	sessionPath    string
	sessionDSN     string
	redisAddr      string
	logFormat      string
	verbose        bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "querymind",
		Short:         "Session-scoped chat assistant backed by a hosted language model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to JSON or YAML config file")
	flags.StringVar(&opts.envFile, "env-file", "", "Path to a .env file with the API key (overrides config)")
	flags.StringVar(&opts.providerName, "provider", "", "Completion provider: gemini or mock (overrides config)")
	flags.StringVar(&opts.model, "model", "", "Model name (overrides config)")
	flags.StringVar(&opts.baseURL, "base-url", "", "Provider base URL (overrides config)")
	flags.StringVar(&opts.systemPrompt, "system-prompt", "", "System instruction (overrides config)")
	flags.StringVar(&opts.sessionBackend, "session-backend", "", "History store: memory, file, sqlite, redis (overrides config)")
	flags.StringVar(&opts.sessionPath, "session-path", "", "Directory for the file history store")
	flags.StringVar(&opts.sessionDSN, "session-dsn", "", "SQLite DSN for the sqlite history store")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the redis history store")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text, json, zerolog, or a registered observer name")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging to stderr")

	root.AddCommand(
		newServeCommand(opts),
		newAskCommand(opts),
		newChatCommand(opts),
		newSessionsCommand(opts),
	)

	return root
}

// loadConfig builds the pipeline config: defaults, then the config file,
// then flags.
func (o *rootOptions) loadConfig() (*chat.Config, error) {
	cfg := chat.DefaultConfig()
	if o.configFile != "" {
		loaded, err := chat.LoadConfig(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	cfg.Merge(&chat.Config{
		Provider: provider.Config{
			Name:    o.providerName,
			Model:   o.model,
			BaseURL: o.baseURL,
		},
		Session: session.Config{
			Backend:   o.sessionBackend,
			Path:      o.sessionPath,
			DSN:       o.sessionDSN,
			RedisAddr: o.redisAddr,
		},
		Credential:   credential.Config{EnvFile: o.envFile},
		SystemPrompt: o.systemPrompt,
	})

	return &cfg, nil
}

func (o *rootOptions) observer(w io.Writer) (observability.Observer, error) {
	level := slog.LevelInfo
	zlevel := zerolog.InfoLevel
	if o.verbose {
		level = slog.LevelDebug
		zlevel = zerolog.DebugLevel
	}

	switch o.logFormat {
	case "", "text":
		return observability.NewSlogObserver(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))), nil
	case "json":
		return observability.NewSlogObserver(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))), nil
	case "zerolog":
		return observability.NewZerologObserver(zerolog.New(w).Level(zlevel).With().Timestamp().Logger()), nil
	default:
		obs, err := observability.GetObserver(o.logFormat)
		if err != nil {
			return nil, fmt.Errorf("unknown log format %q (text, json, %s)", o.logFormat, strings.Join(observability.Names(), ", "))
		}
		return obs, nil
	}
}

// newExecutor performs the cold start. A missing credential stops here,
// before any turn is attempted.
func (o *rootOptions) newExecutor(extra ...observability.Observer) (*chat.Executor, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	obs, err := o.observer(os.Stderr)
	if err != nil {
		return nil, err
	}

	return chat.New(cfg, chat.WithObserver(observability.NewMultiObserver(append([]observability.Observer{obs}, extra...)...)))
}
