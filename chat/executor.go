// Package chat implements the turn executor: one user text in, one model
// reply out, with the exchange recorded in the session's history.
//
// The executor initializes from configuration via New. Functional options
// override any subsystem, which is how tests inject providers and stores.
//
//	exec, err := chat.New(&cfg)
//	reply, err := exec.Execute(ctx, sessionKey, "Hello")
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/querymind/core/prompt"
	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/credential"
	"github.com/tailored-agentic-units/querymind/observability"
	"github.com/tailored-agentic-units/querymind/provider"
	"github.com/tailored-agentic-units/querymind/provider/gemini"
	"github.com/tailored-agentic-units/querymind/provider/mock"
	"github.com/tailored-agentic-units/querymind/session"
)

// Option configures an Executor after config-driven initialization.
type Option func(*Executor)

// WithProvider overrides the config-created provider.
func WithProvider(p provider.Provider) Option {
	return func(e *Executor) { e.provider = p }
}

// WithStore overrides the config-created history store, closing it.
func WithStore(s session.Store) Option {
	return func(e *Executor) {
		if e.sessions != nil {
			_ = e.sessions.Close()
		}
		e.sessions = session.NewManager(s)
	}
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// WithPrompt overrides the prompt template derived from Config.SystemPrompt.
func WithPrompt(tmpl prompt.Template) Option {
	return func(e *Executor) { e.prompt = tmpl }
}

// Builder holds what New consults before any option is applied: where the
// credential comes from and which provider factories exist.
type Builder struct {
	Credentials credential.Source
	Providers   *provider.Registry
}

// Executor runs conversation turns against a completion provider.
type Executor struct {
	provider provider.Provider
	sessions *session.Manager
	observer observability.Observer
	prompt   prompt.Template
}

// DefaultRegistry returns a provider registry holding the built-in factories.
func DefaultRegistry() *provider.Registry {
	r := provider.NewRegistry()
	_ = r.Register(provider.NameGemini, gemini.Factory)
	_ = r.Register(provider.NameMock, mock.Factory)
	return r
}

// New creates an Executor from configuration. The credential is resolved
// first: when the configured provider needs one and none is available, New
// returns a *credential.ConfigurationError and creates nothing else.
func New(cfg *Config, opts ...Option) (*Executor, error) {
	return NewWithBuilder(cfg, Builder{}, opts...)
}

// NewWithBuilder is New with an explicit credential source and provider
// registry. Zero Builder fields fall back to credential.NewSource(&cfg.Credential)
// and DefaultRegistry.
func NewWithBuilder(cfg *Config, b Builder, opts ...Option) (*Executor, error) {
	if b.Credentials == nil {
		b.Credentials = credential.NewSource(&cfg.Credential)
	}
	if b.Providers == nil {
		b.Providers = DefaultRegistry()
	}

	var apiKey string
	if cfg.Provider.RequiresCredential() {
		key, err := credential.Resolve(context.Background(), b.Credentials)
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	p, err := b.Providers.New(&cfg.Provider, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	sessions, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	tmpl := prompt.Default()
	if cfg.SystemPrompt != "" {
		tmpl = prompt.New(cfg.SystemPrompt)
	}

	e := &Executor{
		provider: p,
		sessions: sessions,
		observer: observability.NewSlogObserver(slog.Default()),
		prompt:   tmpl,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Provider returns the completion provider in use.
func (e *Executor) Provider() provider.Provider {
	return e.provider
}

// Sessions returns the session manager owning all histories.
func (e *Executor) Sessions() *session.Manager {
	return e.sessions
}

// Prompt returns the prompt template.
func (e *Executor) Prompt() prompt.Template {
	return e.prompt
}

// Execute runs one turn for key: assemble [system, history..., user:text],
// call the provider once, and on success append user:text then
// assistant:reply to the history. Turns on one key are serialized.
//
// A provider failure is returned exactly as the provider produced it and
// leaves the history untouched, so the caller may resubmit.
func (e *Executor) Execute(ctx context.Context, key, text string) (string, error) {
	if key == "" {
		return "", ErrEmptySessionKey
	}

	unlock := e.sessions.Lock(key)
	defer unlock()

	history, err := e.sessions.History(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	messages := e.prompt.Assemble(history, text)

	start := time.Now()
	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelVerbose,
		Timestamp: start,
		Source:    "chat.Execute",
		Data: map[string]any{
			"session":        key,
			"provider":       e.provider.Name(),
			"history_length": len(history),
			"text_length":    len(text),
		},
	})

	reply, err := e.provider.Complete(ctx, messages)
	if err != nil {
		e.observer.OnEvent(ctx, observability.Event{
			Type:      EventTurnError,
			Level:     observability.LevelError,
			Timestamp: time.Now(),
			Source:    "chat.Execute",
			Data: map[string]any{
				"session":  key,
				"provider": e.provider.Name(),
				"error":    err.Error(),
			},
		})
		return "", err
	}

	if err := e.sessions.AppendTurn(ctx, key, protocol.Turn{User: text, Assistant: reply}); err != nil {
		return "", fmt.Errorf("failed to record turn: %w", err)
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "chat.Execute",
		Data: map[string]any{
			"session":         key,
			"provider":        e.provider.Name(),
			"history_length":  len(history) + 2,
			"response_length": len(reply),
			"duration_ms":     time.Since(start).Milliseconds(),
		},
	})

	return reply, nil
}

// History returns key's conversation so far.
func (e *Executor) History(ctx context.Context, key string) ([]protocol.Message, error) {
	if key == "" {
		return nil, ErrEmptySessionKey
	}
	return e.sessions.History(ctx, key)
}

// Reset deletes key's conversation.
func (e *Executor) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptySessionKey
	}
	if err := e.sessions.Reset(ctx, key); err != nil {
		return err
	}

	e.observer.OnEvent(ctx, observability.Event{
		Type:      EventSessionReset,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "chat.Reset",
		Data:      map[string]any{"session": key},
	})
	return nil
}

// Close releases the history store.
func (e *Executor) Close() error {
	return e.sessions.Close()
}
