package prompt_test

import (
	"fmt"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/querymind/core/prompt"
	"github.com/tailored-agentic-units/querymind/core/protocol"
)

func TestDefault(t *testing.T) {
	tmpl := prompt.Default()

	if tmpl.System() != prompt.DefaultSystemInstruction {
		t.Errorf("got system %q, want default instruction", tmpl.System())
	}
}

func TestAssemble_EmptyHistory(t *testing.T) {
	tmpl := prompt.New("be brief")

	got := tmpl.Assemble(nil, "Hello")
	want := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "be brief"),
		protocol.NewMessage(protocol.RoleUser, "Hello"),
	}

	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAssemble_WithHistory(t *testing.T) {
	tmpl := prompt.New("be brief")
	history := []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "Hi"),
		protocol.NewMessage(protocol.RoleAssistant, "Hello"),
	}

	got := tmpl.Assemble(history, "Bye")
	want := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "be brief"),
		protocol.NewMessage(protocol.RoleUser, "Hi"),
		protocol.NewMessage(protocol.RoleAssistant, "Hello"),
		protocol.NewMessage(protocol.RoleUser, "Bye"),
	}

	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAssemble_Length(t *testing.T) {
	tmpl := prompt.Default()

	for n := range 6 {
		t.Run(fmt.Sprintf("history_%d", n), func(t *testing.T) {
			history := make([]protocol.Message, n)
			for i := range history {
				role := protocol.RoleUser
				if i%2 == 1 {
					role = protocol.RoleAssistant
				}
				history[i] = protocol.NewMessage(role, fmt.Sprintf("m%d", i))
			}

			got := tmpl.Assemble(history, "next")

			if len(got) != n+2 {
				t.Fatalf("got %d messages, want %d", len(got), n+2)
			}
			if got[0].Role != protocol.RoleSystem {
				t.Errorf("first role = %q, want system", got[0].Role)
			}
			last := got[len(got)-1]
			if last.Role != protocol.RoleUser || last.Content != "next" {
				t.Errorf("last message = %+v, want user:next", last)
			}
		})
	}
}

func TestAssemble_Pure(t *testing.T) {
	tmpl := prompt.Default()
	history := make([]protocol.Message, 1, 8)
	history[0] = protocol.NewMessage(protocol.RoleUser, "Hi")

	first := tmpl.Assemble(history, "again")
	second := tmpl.Assemble(history, "again")

	if !slices.Equal(first, second) {
		t.Errorf("repeated assembly differs: %+v vs %+v", first, second)
	}

	first[1].Content = "tampered"
	if history[0].Content != "Hi" {
		t.Errorf("history was aliased by result: got %q", history[0].Content)
	}
	if len(history) != 1 {
		t.Errorf("history length changed to %d", len(history))
	}
}

func TestAssemble_AcceptsAnyText(t *testing.T) {
	tmpl := prompt.New("")

	for _, text := range []string{"", "   ", "یہ اردو ہے", "line1\nline2"} {
		got := tmpl.Assemble(nil, text)
		if got[1].Content != text {
			t.Errorf("got user content %q, want %q", got[1].Content, text)
		}
	}
}
