// Package prompt assembles the message sequence sent to a completion
// provider from a fixed system instruction, the session history, and the
// current user text.
package prompt

import "github.com/tailored-agentic-units/querymind/core/protocol"

// DefaultSystemInstruction is the instruction used when no system prompt is
// configured.
const DefaultSystemInstruction = "You are a helpful, friendly AI assistant. " +
	"If the user asks to explain or respond in Urdu, do so. Otherwise, use English."

// Template is an immutable prompt template: one system instruction followed by
// the history and a single slot for the user text. The zero value has an
// empty system instruction.
type Template struct {
	system string
}

// New creates a Template with the given system instruction.
func New(system string) Template {
	return Template{system: system}
}

// Default returns the Template built from DefaultSystemInstruction.
func Default() Template {
	return New(DefaultSystemInstruction)
}

// System returns the system instruction.
func (t Template) System() string {
	return t.system
}

// Assemble returns [system, history..., user:text]. The history slice is
// never modified or aliased by the result.
func (t Template) Assemble(history []protocol.Message, text string) []protocol.Message {
	messages := make([]protocol.Message, 0, len(history)+2)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, t.system))
	messages = append(messages, history...)
	messages = append(messages, protocol.NewMessage(protocol.RoleUser, text))
	return messages
}
