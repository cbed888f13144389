package chat

import "errors"

// ErrEmptySessionKey is returned by Execute when no SessionKey is supplied.
var ErrEmptySessionKey = errors.New("session key is required")
