// Package session owns conversation history per SessionKey: the Store
// backends that persist it and the Manager that serializes turns on a key.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/querymind/core/protocol"
)

// Sentinel errors for store operations.
var (
	ErrEmptyKey    = errors.New("empty session key")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
	ErrUnknownKind = errors.New("unknown session backend")
)

// Store persists ConversationHistory keyed by SessionKey. Implementations
// must be safe for concurrent use.
type Store interface {
	// Load returns a copy of the history for key. A key that has never been
	// appended to yields an empty history, not an error.
	Load(ctx context.Context, key string) ([]protocol.Message, error)
	// Append adds msgs to the end of key's history. Either all messages are
	// appended or none are.
	Append(ctx context.Context, key string, msgs ...protocol.Message) error
	// Delete removes key's history. Missing keys are ignored.
	Delete(ctx context.Context, key string) error
	// Keys lists every key with a stored history, sorted.
	Keys(ctx context.Context) ([]string, error)
	// Close releases backend resources.
	Close() error
}

// NewKey returns a fresh SessionKey (UUIDv7).
func NewKey() string {
	return uuid.Must(uuid.NewV7()).String()
}
