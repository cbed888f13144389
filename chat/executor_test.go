package chat_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/querymind/chat"
	"github.com/tailored-agentic-units/querymind/core/prompt"
	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/credential"
	"github.com/tailored-agentic-units/querymind/observability"
	"github.com/tailored-agentic-units/querymind/provider"
	"github.com/tailored-agentic-units/querymind/provider/mock"
	"github.com/tailored-agentic-units/querymind/session"
)

// --- Test helpers ---

// mockConfig returns a Config whose cold start needs no credential.
func mockConfig() *chat.Config {
	cfg := chat.DefaultConfig()
	cfg.Provider.Name = provider.NameMock
	return &cfg
}

func newExecutor(t *testing.T, p provider.Provider, opts ...chat.Option) *chat.Executor {
	t.Helper()

	opts = append([]chat.Option{
		chat.WithProvider(p),
		chat.WithObserver(observability.NoOpObserver{}),
		chat.WithPrompt(prompt.New("system")),
	}, opts...)

	e, err := chat.New(mockConfig(), opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

type captureObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (c *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureObserver) types() []observability.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]observability.EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

// --- Tests ---

func TestExecute_FirstTurn(t *testing.T) {
	p := mock.New(mock.WithResponses("Hi there"))
	e := newExecutor(t, p)
	ctx := context.Background()

	reply, err := e.Execute(ctx, "s1", "Hello")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if reply != "Hi there" {
		t.Errorf("got reply %q, want %q", reply, "Hi there")
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d provider calls, want 1", len(calls))
	}
	wantPrompt := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "system"),
		protocol.NewMessage(protocol.RoleUser, "Hello"),
	}
	if fmt.Sprint(calls[0]) != fmt.Sprint(wantPrompt) {
		t.Errorf("got prompt %+v, want %+v", calls[0], wantPrompt)
	}

	history, err := e.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	wantHistory := []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "Hello"),
		protocol.NewMessage(protocol.RoleAssistant, "Hi there"),
	}
	if fmt.Sprint(history) != fmt.Sprint(wantHistory) {
		t.Errorf("got history %+v, want %+v", history, wantHistory)
	}
}

func TestExecute_ThreadsHistory(t *testing.T) {
	p := mock.New(mock.WithResponses("Hello", "Goodbye"))
	e := newExecutor(t, p)
	ctx := context.Background()

	if _, err := e.Execute(ctx, "s1", "Hi"); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if _, err := e.Execute(ctx, "s1", "Bye"); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}

	got := p.Calls()[1]
	want := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "system"),
		protocol.NewMessage(protocol.RoleUser, "Hi"),
		protocol.NewMessage(protocol.RoleAssistant, "Hello"),
		protocol.NewMessage(protocol.RoleUser, "Bye"),
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got prompt %+v, want %+v", got, want)
	}
}

func TestExecute_NTurnsAlternate(t *testing.T) {
	e := newExecutor(t, mock.New())
	ctx := context.Background()
	const n = 5

	for i := range n {
		if _, err := e.Execute(ctx, "s1", fmt.Sprintf("q%d", i)); err != nil {
			t.Fatalf("Execute %d failed: %v", i, err)
		}
	}

	history, _ := e.History(ctx, "s1")
	if len(history) != 2*n {
		t.Fatalf("got %d entries, want %d", len(history), 2*n)
	}
	for i, msg := range history {
		wantRole := protocol.RoleUser
		if i%2 == 1 {
			wantRole = protocol.RoleAssistant
		}
		if msg.Role != wantRole {
			t.Errorf("entry %d: got role %q, want %q", i, msg.Role, wantRole)
		}
	}
	if history[0].Content != "q0" || history[2*n-2].Content != fmt.Sprintf("q%d", n-1) {
		t.Errorf("turns out of order: %+v", history)
	}
}

func TestExecute_ProviderErrorPropagatesUnchanged(t *testing.T) {
	perr := &provider.Error{Provider: "gemini", StatusCode: 429, Message: "quota"}
	p := mock.New(mock.WithResponses(), mock.WithErrors(perr))
	e := newExecutor(t, p)
	ctx := context.Background()

	_, err := e.Execute(ctx, "s1", "Hello")
	if err != perr {
		t.Fatalf("got %v (%T), want the provider's error value", err, err)
	}

	history, _ := e.History(ctx, "s1")
	if len(history) != 0 {
		t.Errorf("got %d history entries after failure, want 0", len(history))
	}
}

func TestExecute_FailedTurnLeavesHistoryIntact(t *testing.T) {
	boom := errors.New("network down")
	p := mock.New(mock.WithResponses("first"))
	e := newExecutor(t, p)
	ctx := context.Background()

	if _, err := e.Execute(ctx, "s1", "one"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	before, _ := e.History(ctx, "s1")

	failing := mock.New(mock.WithErrors(boom))
	e2 := newExecutor(t, failing, chat.WithStore(e.Sessions().Store()))

	if _, err := e2.Execute(ctx, "s1", "two"); !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}

	after, _ := e.History(ctx, "s1")
	if len(after) != len(before) {
		t.Errorf("history length changed from %d to %d", len(before), len(after))
	}
	if failing.CallCount() != 1 {
		t.Errorf("got %d provider calls, want exactly 1 (no retry)", failing.CallCount())
	}
}

func TestExecute_ResubmitAfterFailure(t *testing.T) {
	p := mock.New(mock.WithErrors(errors.New("transient")))
	e := newExecutor(t, p)
	ctx := context.Background()

	if _, err := e.Execute(ctx, "s1", "Hello"); err == nil {
		t.Fatal("expected first Execute to fail")
	}
	reply, err := e.Execute(ctx, "s1", "Hello")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if reply != "echo: Hello" {
		t.Errorf("got %q", reply)
	}

	history, _ := e.History(ctx, "s1")
	if len(history) != 2 {
		t.Errorf("got %d entries, want 2", len(history))
	}
}

func TestExecute_EmptySessionKey(t *testing.T) {
	p := mock.New()
	e := newExecutor(t, p)

	if _, err := e.Execute(context.Background(), "", "Hello"); !errors.Is(err, chat.ErrEmptySessionKey) {
		t.Errorf("got %v, want ErrEmptySessionKey", err)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider called %d times, want 0", p.CallCount())
	}
}

func TestExecute_SessionsIsolated(t *testing.T) {
	e := newExecutor(t, mock.New())
	ctx := context.Background()

	_, _ = e.Execute(ctx, "a", "for a")
	_, _ = e.Execute(ctx, "b", "for b")
	_, _ = e.Execute(ctx, "a", "again a")

	a, _ := e.History(ctx, "a")
	b, _ := e.History(ctx, "b")
	if len(a) != 4 {
		t.Errorf("session a: got %d entries, want 4", len(a))
	}
	if len(b) != 2 || b[0].Content != "for b" {
		t.Errorf("session b: got %+v", b)
	}
}

func TestExecute_ConcurrentSameSessionSerialized(t *testing.T) {
	e := newExecutor(t, mock.New())
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			if _, err := e.Execute(ctx, "shared", fmt.Sprintf("q%d", i)); err != nil {
				t.Errorf("Execute failed: %v", err)
			}
		}()
	}
	wg.Wait()

	history, _ := e.History(ctx, "shared")
	if len(history) != 2*n {
		t.Fatalf("got %d entries, want %d", len(history), 2*n)
	}
	for i := 0; i < len(history); i += 2 {
		user, assistant := history[i], history[i+1]
		if user.Role != protocol.RoleUser || assistant.Role != protocol.RoleAssistant {
			t.Fatalf("entries %d/%d interleaved: %+v %+v", i, i+1, user, assistant)
		}
		if assistant.Content != "echo: "+user.Content {
			t.Errorf("reply %q does not pair with %q", assistant.Content, user.Content)
		}
	}
}

func TestExecute_ConcurrentPromptSeesFullHistory(t *testing.T) {
	p := mock.New()
	e := newExecutor(t, p)
	ctx := context.Background()
	const n = 10

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			_, _ = e.Execute(ctx, "shared", "x")
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, call := range p.Calls() {
		seen[len(call)] = true
	}
	for i := range n {
		if !seen[2*i+2] {
			t.Errorf("no prompt of length %d; turns overlapped", 2*i+2)
		}
	}
}

func TestExecute_Events(t *testing.T) {
	obs := &captureObserver{}
	p := mock.New(mock.WithResponses("ok"), mock.WithErrors(errors.New("x")))
	e := newExecutor(t, p, chat.WithObserver(obs))
	ctx := context.Background()

	_, _ = e.Execute(ctx, "s1", "fails")
	_, _ = e.Execute(ctx, "s1", "works")
	_ = e.Reset(ctx, "s1")

	want := []observability.EventType{
		chat.EventTurnStart, chat.EventTurnError,
		chat.EventTurnStart, chat.EventTurnComplete,
		chat.EventSessionReset,
	}
	got := obs.types()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("got events %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	e := newExecutor(t, mock.New())
	ctx := context.Background()

	_, _ = e.Execute(ctx, "s1", "Hello")
	if err := e.Reset(ctx, "s1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	history, _ := e.History(ctx, "s1")
	if len(history) != 0 {
		t.Errorf("got %d entries after Reset, want 0", len(history))
	}
	if err := e.Reset(ctx, ""); !errors.Is(err, chat.ErrEmptySessionKey) {
		t.Errorf("got %v, want ErrEmptySessionKey", err)
	}
}

func TestNew_MissingCredential(t *testing.T) {
	var factoryCalls int
	reg := provider.NewRegistry()
	_ = reg.Register(provider.NameGemini, func(cfg *provider.Config, key string) (provider.Provider, error) {
		factoryCalls++
		return mock.New(), nil
	})

	cfg := chat.DefaultConfig()
	e, err := chat.NewWithBuilder(&cfg, chat.Builder{
		Credentials: credential.StaticSource(""),
		Providers:   reg,
	})

	var cfgErr *credential.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *credential.ConfigurationError", err)
	}
	if !errors.Is(err, credential.ErrMissingCredential) {
		t.Errorf("got %v, want ErrMissingCredential", err)
	}
	if e != nil {
		t.Error("New returned an executor despite the configuration error")
	}
	if factoryCalls != 0 {
		t.Errorf("provider factory called %d times, want 0", factoryCalls)
	}
}

func TestNew_MissingCredentialFromEnv(t *testing.T) {
	t.Setenv("QUERYMIND_TEST_KEY", "")

	cfg := chat.DefaultConfig()
	cfg.Credential = credential.Config{EnvVar: "QUERYMIND_TEST_KEY"}

	_, err := chat.New(&cfg)

	var cfgErr *credential.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want *credential.ConfigurationError", err)
	}
}

func TestNew_PassesCredentialToFactory(t *testing.T) {
	var gotKey string
	reg := provider.NewRegistry()
	_ = reg.Register(provider.NameGemini, func(cfg *provider.Config, key string) (provider.Provider, error) {
		gotKey = key
		return mock.New(), nil
	})

	cfg := chat.DefaultConfig()
	e, err := chat.NewWithBuilder(&cfg, chat.Builder{
		Credentials: credential.StaticSource(" api-key "),
		Providers:   reg,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	if gotKey != "api-key" {
		t.Errorf("got key %q, want %q", gotKey, "api-key")
	}
}

func TestNew_MockNeedsNoCredential(t *testing.T) {
	cfg := mockConfig()

	e, err := chat.NewWithBuilder(cfg, chat.Builder{Credentials: credential.StaticSource("")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer e.Close()

	if e.Provider().Name() != provider.NameMock {
		t.Errorf("got provider %q, want mock", e.Provider().Name())
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := mockConfig()
	cfg.Provider.Name = "nonexistent"

	_, err := chat.NewWithBuilder(cfg, chat.Builder{Credentials: credential.StaticSource("k")})
	if !errors.Is(err, provider.ErrUnknownProvider) {
		t.Errorf("got %v, want ErrUnknownProvider", err)
	}
}

func TestNew_SystemPrompt(t *testing.T) {
	cfg := mockConfig()
	e, err := chat.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if e.Prompt().System() != prompt.DefaultSystemInstruction {
		t.Errorf("got %q, want default instruction", e.Prompt().System())
	}

	cfg.SystemPrompt = "custom"
	e, err = chat.New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if e.Prompt().System() != "custom" {
		t.Errorf("got %q, want custom", e.Prompt().System())
	}
}

func TestNew_SessionBackend(t *testing.T) {
	cfg := mockConfig()
	cfg.Session = session.Config{Backend: session.BackendFile, Path: t.TempDir()}

	e, err := chat.New(cfg, chat.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if _, err := e.Execute(ctx, "persisted", "Hello"); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	again, err := chat.New(cfg, chat.WithObserver(observability.NoOpObserver{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	history, _ := again.History(ctx, "persisted")
	if len(history) != 2 {
		t.Errorf("got %d entries from file store, want 2", len(history))
	}
}
