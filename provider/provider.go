// Package provider defines the completion provider contract consumed by the
// turn executor, the error shape concrete clients return, and a registry of
// named provider factories.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/querymind/core/protocol"
)

var (
	ErrEmptyResponse   = errors.New("provider returned no completion text")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrProviderExists  = errors.New("provider already registered")
	ErrEmptyProvider   = errors.New("provider name is empty")
)

// Provider turns an ordered message sequence into a single completion.
// Implementations send no sampling parameters; provider defaults apply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, messages []protocol.Message) (string, error)
}

// Error is the failure returned by a remote provider call. StatusCode is
// zero when the request never produced an HTTP response.
type Error struct {
	Provider   string
	StatusCode int
	Status     string // provider status code, e.g. "PERMISSION_DENIED"
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Status != "":
		return fmt.Sprintf("%s: http %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: http %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
