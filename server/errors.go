package server

import (
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/querymind/chat"
	"github.com/tailored-agentic-units/querymind/provider"
	"github.com/tailored-agentic-units/querymind/session"
)

// ErrEmptyText is returned when a turn request carries no text.
var ErrEmptyText = errors.New("text is required")

// errorResponse is the JSON error body of the API.
type errorResponse struct {
	Error    string `json:"error"`
	Provider string `json:"provider,omitempty"`
}

func isBadRequest(err error) bool {
	return errors.Is(err, chat.ErrEmptySessionKey) ||
		errors.Is(err, session.ErrEmptyKey) ||
		errors.Is(err, ErrEmptyText)
}

// httpStatus maps a turn error onto the response status. Provider failures
// are upstream failures.
func httpStatus(err error) int {
	var perr *provider.Error
	switch {
	case isBadRequest(err):
		return http.StatusBadRequest
	case errors.As(err, &perr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func rpcCode(err error) connect.Code {
	var perr *provider.Error
	switch {
	case isBadRequest(err):
		return connect.CodeInvalidArgument
	case errors.As(err, &perr):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

func newErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	var perr *provider.Error
	if errors.As(err, &perr) {
		resp.Provider = perr.Provider
	}
	return resp
}
