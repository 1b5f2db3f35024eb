package adapter

import (
	"context"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// RegisterBuiltins wires the action kinds that need no external
// collaborator: clarification, unknown, error, and send_message (which
// the host cannot deliver yet).
func RegisterBuiltins(s *Set) {
	s.RegisterFunc(types.ActionAskClarify, askClarification)
	s.RegisterFunc(types.ActionUnknown, unknown)
	s.RegisterFunc(types.ActionError, echoError)
	s.RegisterFunc(types.ActionSendMessage, sendMessage)
}

func askClarification(_ context.Context, action types.Action) *types.ExecutionResult {
	questions, _ := action.StringListParam("questions")
	message := "I need a bit more information."
	if m, ok := action.StringParam("message"); ok && m != "" {
		message = m
	}
	if len(questions) > 0 {
		message += " " + strings.Join(questions, " ")
	}
	return types.OkData(message, map[string]any{"questions": questions})
}

func unknown(_ context.Context, _ types.Action) *types.ExecutionResult {
	return types.Fail(types.ErrPermanent,
		"I did not understand that. Try something like 'Open notepad' or 'Call +1234567890'.")
}

func echoError(_ context.Context, action types.Action) *types.ExecutionResult {
	message, _ := action.StringParam("message")
	if message == "" {
		message, _ = action.StringParam("error")
	}
	if message == "" {
		message = "the previous step failed"
	}
	return types.Fail(types.ErrPermanent, message)
}

// sendMessage is a stub: SMS delivery through the phone bridge is not
// implemented, so the action reports that honestly instead of pretending.
func sendMessage(_ context.Context, _ types.Action) *types.ExecutionResult {
	return types.Fail(types.ErrUnsupportedHost,
		"SMS messaging is not available on this host yet. Use dial_phone for calls.")
}
