package server

import (
	"errors"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/tailored-agentic-units/querymind/observability"
)

// EventWebSocket is emitted when a websocket connection ends abnormally.
const EventWebSocket observability.EventType = "server.ws.error"

// WSRequest is one client frame: the text of a single turn.
type WSRequest struct {
	Text string `json:"text"`
}

// WSResponse is sent once per WSRequest. Exactly one of Reply and Error is set.
type WSResponse struct {
	Reply    string `json:"reply,omitempty"`
	Error    string `json:"error,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// handleWebSocket runs turns for :key, one request frame at a time. Frames
// are processed sequentially so replies arrive in request order.
func (s *Server) handleWebSocket(c echo.Context) error {
	key := c.Param("key")

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	ws.SetReadLimit(s.maxMessageSize)
	ctx := c.Request().Context()

	for {
		var req WSRequest
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				s.observer.OnEvent(ctx, observability.Event{
					Type:   EventWebSocket,
					Level:  observability.LevelWarning,
					Source: "server.ws",
					Data:   map[string]any{"session": key, "error": err.Error()},
				})
			}
			return nil
		}

		var resp WSResponse
		if strings.TrimSpace(req.Text) == "" {
			resp.Error = ErrEmptyText.Error()
		} else if reply, err := s.turns.Execute(ctx, key, req.Text); err != nil {
			er := newErrorResponse(err)
			resp.Error, resp.Provider = er.Error, er.Provider
		} else {
			resp.Reply = reply
		}

		if err := ws.WriteJSON(resp); err != nil {
			return nil
		}
	}
}
