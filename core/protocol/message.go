// Package protocol defines the conversation primitives shared by the prompt
// assembler, the history stores, and the completion providers.
package protocol

import "fmt"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored role string back into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Message represents a single (role, text) entry in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello, world!")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Turn is one user request paired with the assistant's reply. It exists only
// long enough to be appended to a session history.
type Turn struct {
	User      string
	Assistant string
}

// Messages returns the turn as history entries, user first.
func (t Turn) Messages() []Message {
	return []Message{
		NewMessage(RoleUser, t.User),
		NewMessage(RoleAssistant, t.Assistant),
	}
}
