package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/session"
)

// TurnRequest is the body of POST /api/sessions/:key/turns.
type TurnRequest struct {
	Text string `json:"text"`
}

// TurnResponse is the reply to a successful turn.
type TurnResponse struct {
	SessionKey string `json:"session_key"`
	Reply      string `json:"reply"`
}

// SessionResponse carries a newly issued key.
type SessionResponse struct {
	SessionKey string `json:"session_key"`
}

// MessagesResponse lists a session's history.
type MessagesResponse struct {
	SessionKey string             `json:"session_key"`
	Messages   []protocol.Message `json:"messages"`
}

func (s *Server) handleCreateSession(c echo.Context) error {
	return c.JSON(http.StatusCreated, SessionResponse{SessionKey: session.NewKey()})
}

func (s *Server) handleMessages(c echo.Context) error {
	key := c.Param("key")

	msgs, err := s.turns.History(c.Request().Context(), key)
	if err != nil {
		return c.JSON(httpStatus(err), newErrorResponse(err))
	}
	if msgs == nil {
		msgs = []protocol.Message{}
	}
	return c.JSON(http.StatusOK, MessagesResponse{SessionKey: key, Messages: msgs})
}

func (s *Server) handleTurn(c echo.Context) error {
	key := c.Param("key")

	var req TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, newErrorResponse(ErrEmptyText))
	}

	reply, err := s.turns.Execute(c.Request().Context(), key, req.Text)
	if err != nil {
		return c.JSON(httpStatus(err), newErrorResponse(err))
	}
	return c.JSON(http.StatusOK, TurnResponse{SessionKey: key, Reply: reply})
}

func (s *Server) handleReset(c echo.Context) error {
	if err := s.turns.Reset(c.Request().Context(), c.Param("key")); err != nil {
		return c.JSON(httpStatus(err), newErrorResponse(err))
	}
	return c.NoContent(http.StatusNoContent)
}
