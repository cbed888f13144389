// Package server is the user-facing surface of the chat pipeline: an HTML
// chat page, a JSON API, a websocket turn channel, and a Connect RPC
// procedure, all backed by one chat executor.
package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tailored-agentic-units/querymind/chat"
	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

// EventRequest is emitted once per handled HTTP request.
const EventRequest observability.EventType = "server.request"

// Turns is the subset of the chat executor the server drives.
type Turns interface {
	Execute(ctx context.Context, key, text string) (string, error)
	History(ctx context.Context, key string) ([]protocol.Message, error)
	Reset(ctx context.Context, key string) error
}

// SessionLister reports stored sessions for the health endpoint.
type SessionLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Option configures a Server.
type Option func(*Server)

// WithObserver sets the observer receiving request events.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithCounter exposes turn statistics from c on /health.
func WithCounter(c *observability.Counter) Option {
	return func(s *Server) { s.counter = c }
}

// WithSessions exposes the stored session count on /health.
func WithSessions(l SessionLister) Option {
	return func(s *Server) { s.sessions = l }
}

// WithMaxMessageSize bounds websocket frames.
func WithMaxMessageSize(n int64) Option {
	return func(s *Server) { s.maxMessageSize = n }
}

// Server hosts the chat surfaces.
type Server struct {
	echo           *echo.Echo
	turns          Turns
	observer       observability.Observer
	counter        *observability.Counter
	sessions       SessionLister
	upgrader       websocket.Upgrader
	maxMessageSize int64
}

type pageRenderer struct {
	templates *template.Template
}

func (r *pageRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// New creates a Server and registers its routes.
func New(turns Turns, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = &pageRenderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	s := &Server{
		echo:           e,
		turns:          turns,
		observer:       observability.NoOpObserver{},
		maxMessageSize: 64 << 10,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.observer.OnEvent(c.Request().Context(), observability.Event{
				Type:      EventRequest,
				Level:     observability.LevelVerbose,
				Timestamp: v.StartTime,
				Source:    "server",
				Data: map[string]any{
					"method":     v.Method,
					"uri":        v.URI,
					"status":     v.Status,
					"latency_ms": v.Latency.Milliseconds(),
				},
			})
			return nil
		},
	}))

	e.GET("/", s.handlePage)
	e.POST("/", s.handleSubmit)
	e.POST("/reset", s.handlePageReset)
	e.GET("/health", s.handleHealth)

	api := e.Group("/api")
	api.POST("/sessions", s.handleCreateSession)
	api.GET("/sessions/:key/messages", s.handleMessages)
	api.POST("/sessions/:key/turns", s.handleTurn)
	api.DELETE("/sessions/:key", s.handleReset)

	e.GET("/ws/:key", s.handleWebSocket)

	procedure, handler := newRPCHandler(s.turns)
	e.POST(procedure, echo.WrapHandler(handler))

	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	body := map[string]any{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.counter != nil {
		body["turns"] = s.counter.Count(chat.EventTurnComplete)
		body["turn_errors"] = s.counter.Count(chat.EventTurnError)
	}
	if s.sessions != nil {
		if keys, err := s.sessions.Keys(c.Request().Context()); err == nil {
			body["sessions"] = len(keys)
		}
	}
	return c.JSON(http.StatusOK, body)
}
