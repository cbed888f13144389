package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tailored-agentic-units/querymind/core/protocol"
	"github.com/tailored-agentic-units/querymind/session"
)

// SessionCookie carries the browser's SessionKey.
const SessionCookie = "querymind_session"

type pageData struct {
	History []protocol.Message
	Error   string
}

// sessionKey returns the browser's key, issuing a new cookie when absent.
func sessionKey(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	key := session.NewKey()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
	return key
}

func (s *Server) renderPage(c echo.Context, status int, key string, pageErr error) error {
	data := pageData{}
	history, err := s.turns.History(c.Request().Context(), key)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	data.History = history
	if pageErr != nil {
		data.Error = pageErr.Error()
	}
	return c.Render(status, "chat.html", data)
}

func (s *Server) handlePage(c echo.Context) error {
	return s.renderPage(c, http.StatusOK, sessionKey(c), nil)
}

func (s *Server) handleSubmit(c echo.Context) error {
	key := sessionKey(c)

	text := c.FormValue("message")
	if strings.TrimSpace(text) == "" {
		return s.renderPage(c, http.StatusOK, key, nil)
	}

	if _, err := s.turns.Execute(c.Request().Context(), key, text); err != nil {
		return s.renderPage(c, httpStatus(err), key, err)
	}
	return s.renderPage(c, http.StatusOK, key, nil)
}

func (s *Server) handlePageReset(c echo.Context) error {
	key := sessionKey(c)
	if err := s.turns.Reset(c.Request().Context(), key); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
