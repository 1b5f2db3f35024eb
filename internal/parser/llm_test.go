package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

type stubLLM struct {
	response string
	err      error
	calls    int
}

func (s *stubLLM) Enabled() bool { return true }

func (s *stubLLM) GenerateJSON(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestLLMParseValidCommand(t *testing.T) {
	stub := &stubLLM{response: `{"action":"open_app","parameters":{"app_name":"notepad"},"description":"open notepad","confidence":0.9}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad")
	assert.Equal(t, types.ActionOpenApp, cmd.Action)
	assert.Equal(t, "notepad", cmd.Parameters["app_name"])
	assert.InDelta(t, 0.9, cmd.Confidence, 1e-9)
	assert.Equal(t, 1, stub.calls)
}

func TestLLMParseStripsCodeFences(t *testing.T) {
	stub := &stubLLM{response: "```json\n{\"action\":\"screenshot\",\"parameters\":{},\"confidence\":0.8}\n```"}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "take a screenshot")
	assert.Equal(t, types.ActionScreenshot, cmd.Action)
}

func TestLLMParseMalformedJSON(t *testing.T) {
	stub := &stubLLM{response: `{"action": open_app`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad")
	assert.Equal(t, types.ActionError, cmd.Action)
	assert.Contains(t, cmd.Description, "invalid JSON")
	assert.Zero(t, cmd.Confidence)
}

func TestLLMParseSingleAttempt(t *testing.T) {
	stub := &stubLLM{err: errors.New("rate limited")}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad")
	assert.Equal(t, types.ActionError, cmd.Action)
	assert.Equal(t, 1, stub.calls)
}

func TestLLMParseUnknownKindRejected(t *testing.T) {
	stub := &stubLLM{response: `{"action":"launch_rocket","parameters":{},"confidence":0.9}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "launch the rocket")
	assert.Equal(t, types.ActionError, cmd.Action)
	assert.Contains(t, cmd.Description, "launch_rocket")
}

func TestLLMParseMissingRequiredParam(t *testing.T) {
	stub := &stubLLM{response: `{"action":"open_app","parameters":{},"confidence":0.9}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open")
	assert.Equal(t, types.ActionError, cmd.Action)
	assert.Contains(t, cmd.Description, "missing_param(app_name)")
}

func TestLLMParseDropsUnknownParams(t *testing.T) {
	stub := &stubLLM{response: `{"action":"open_app","parameters":{"app_name":"notepad","color":"blue"},"confidence":0.9}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad")
	require.Equal(t, types.ActionOpenApp, cmd.Action)
	assert.NotContains(t, cmd.Parameters, "color")
	require.NotNil(t, cmd.Meta)
	assert.Contains(t, cmd.Meta.Warnings, "unknown_param(color)")
}

func TestLLMParseWorkflowSteps(t *testing.T) {
	stub := &stubLLM{response: `{
		"action": "open_app",
		"parameters": {"app_name": "notepad"},
		"steps": [
			{"action": "open_app", "parameters": {"app_name": "notepad"}},
			{"action": "type_text", "parameters": {"text": "Hello World"}}
		],
		"confidence": 0.85
	}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad and type Hello World")
	require.True(t, cmd.IsWorkflow())
	require.Len(t, cmd.Steps, 2)
	assert.Equal(t, types.ActionTypeText, cmd.Steps[1].Kind)
}

func TestLLMParseKeepsNoDelayOnSteps(t *testing.T) {
	stub := &stubLLM{response: `{
		"action": "open_app",
		"parameters": {"app_name": "notepad"},
		"steps": [
			{"action": "open_app", "parameters": {"app_name": "notepad"}},
			{"action": "type_text", "parameters": {"text": "fast", "no_delay": true}}
		],
		"confidence": 0.85
	}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "open notepad and immediately type fast")
	require.Len(t, cmd.Steps, 2)
	assert.Equal(t, true, cmd.Steps[1].Parameters["no_delay"])
	if cmd.Meta != nil {
		assert.Empty(t, cmd.Meta.Warnings)
	}
}

func TestLLMParseSchemaRejectsMissingAction(t *testing.T) {
	stub := &stubLLM{response: `{"parameters":{}}`}
	p := NewLLMParser(stub, registry.New())

	cmd := p.Parse(context.Background(), "do something")
	assert.Equal(t, types.ActionError, cmd.Action)
	assert.Contains(t, cmd.Description, "schema")
}

func TestEmotionTagKeywordFallback(t *testing.T) {
	tagger := NewEmotionTagger(nil)

	tests := []struct {
		utterance string
		want      string
	}{
		{"I am so excited about this", types.EmotionHappy},
		{"this is frustrating", types.EmotionAngry},
		{"I'm frustrated with this laptop", types.EmotionAngry},
		{"I feel exhausted today", types.EmotionTired},
		{"thank you so much", types.EmotionGrateful},
		{"open notepad", types.EmotionNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			label := tagger.Tag(context.Background(), tt.utterance)
			assert.Equal(t, tt.want, label.Name)
		})
	}
}

func TestEmotionTagLLM(t *testing.T) {
	stub := &stubLLM{response: `{"primary_emotion":"anxious","intensity":0.8}`}
	tagger := NewEmotionTagger(stub)

	label := tagger.Tag(context.Background(), "the deadline is tomorrow")
	assert.Equal(t, types.EmotionAnxious, label.Name)
	assert.InDelta(t, 0.8, label.Intensity, 1e-9)
}

func TestEmotionTagLLMFailureFallsBack(t *testing.T) {
	stub := &stubLLM{err: errors.New("unavailable")}
	tagger := NewEmotionTagger(stub)

	label := tagger.Tag(context.Background(), "I am happy anyway")
	assert.Equal(t, types.EmotionHappy, label.Name)
	assert.InDelta(t, 0.6, label.Intensity, 1e-9)
}
