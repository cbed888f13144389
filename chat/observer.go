package chat

import "github.com/tailored-agentic-units/querymind/observability"

// Event types emitted by the executor.
const (
	EventTurnStart    observability.EventType = "chat.turn.start"
	EventTurnComplete observability.EventType = "chat.turn.complete"
	EventTurnError    observability.EventType = "chat.turn.error"
	EventSessionReset observability.EventType = "chat.session.reset"
)
