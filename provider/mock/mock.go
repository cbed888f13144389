// Package mock provides a scriptable Provider for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/provider"
)

// Responder computes a reply for one call.
type Responder func(ctx context.Context, messages []protocol.Message) (string, error)

// Provider replies with scripted responses, then falls back to Responder.
// Every call is recorded.
type Provider struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	respond   Responder
	calls     [][]protocol.Message
}

// Option configures a Provider.
type Option func(*Provider)

// WithResponses queues replies returned in order.
func WithResponses(responses ...string) Option {
	return func(p *Provider) { p.responses = append(p.responses, responses...) }
}

// WithErrors queues errors returned in order before any scripted response.
func WithErrors(errs ...error) Option {
	return func(p *Provider) { p.errs = append(p.errs, errs...) }
}

// WithResponder sets the fallback used when the scripts are exhausted.
func WithResponder(r Responder) Option {
	return func(p *Provider) { p.respond = r }
}

// Echo replies with the last user message, prefixed.
func Echo(_ context.Context, messages []protocol.Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == protocol.RoleUser {
			return "echo: " + messages[i].Content, nil
		}
	}
	return "echo:", nil
}

// New creates a Provider. Without options it echoes the user text.
func New(opts ...Option) *Provider {
	p := &Provider{respond: Echo}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Factory adapts New to provider.Factory.
func Factory(*provider.Config, string) (provider.Provider, error) {
	return New(), nil
}

func (p *Provider) Name() string {
	return provider.NameMock
}

func (p *Provider) Complete(ctx context.Context, messages []protocol.Message) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]protocol.Message(nil), messages...))

	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		p.mu.Unlock()
		return "", err
	}
	if len(p.responses) > 0 {
		resp := p.responses[0]
		p.responses = p.responses[1:]
		p.mu.Unlock()
		return resp, nil
	}
	respond := p.respond
	p.mu.Unlock()

	if respond == nil {
		return "", fmt.Errorf("mock: %w", provider.ErrEmptyResponse)
	}
	return respond(ctx, messages)
}

// Calls returns copies of the message sequences received so far.
func (p *Provider) Calls() [][]protocol.Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]protocol.Message, len(p.calls))
	for i, c := range p.calls {
		out[i] = append([]protocol.Message(nil), c...)
	}
	return out
}

// CallCount returns the number of Complete calls.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
