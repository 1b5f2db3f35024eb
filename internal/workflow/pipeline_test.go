package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/adapter"
	appctx "github.com/VATSALVARSHNEY108/boi-mark2/internal/context"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/executor"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/parser"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/security"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

type recordingAdapter struct {
	actions []types.Action
}

func (r *recordingAdapter) Invoke(_ context.Context, action types.Action) *types.ExecutionResult {
	r.actions = append(r.actions, action)
	return types.Ok("ok: " + string(action.Kind))
}

func newAssistant(t *testing.T, llm parser.Generator) (*Assistant, *recordingAdapter) {
	t.Helper()

	reg := registry.New()
	arbiter, err := security.NewArbiter(reg, "", true)
	require.NoError(t, err)

	rec := &recordingAdapter{}
	adapters := adapter.NewSet()
	for _, kind := range reg.Kinds() {
		adapters.Register(kind, rec)
	}

	exec := executor.New(reg, arbiter, adapters, 0)

	store, err := appctx.NewStore(nil, 50, 20, 50)
	require.NoError(t, err)

	var llmParser *parser.LLMParser
	if llm != nil {
		llmParser = parser.NewLLMParser(llm, reg)
	}
	a := NewAssistant(reg, llmParser, parser.NewRuleParser(),
		parser.NewEmotionTagger(nil), exec, store, 0.5)
	return a, rec
}

func TestUnderstandFallsBackToRules(t *testing.T) {
	a, _ := newAssistant(t, nil)

	cmd := a.Understand(context.Background(), "Call Matthew")
	assert.Equal(t, types.ActionCallContact, cmd.Action)
	assert.Equal(t, "Matthew", cmd.Parameters["contact_name"])
}

type fixedLLM struct{ response string }

func (f fixedLLM) Enabled() bool { return true }
func (f fixedLLM) GenerateJSON(context.Context, string, string) (string, error) {
	return f.response, nil
}

func TestUnderstandPrefersConfidentLLM(t *testing.T) {
	a, _ := newAssistant(t, fixedLLM{
		response: `{"action":"spotify_pause","parameters":{},"confidence":0.9}`,
	})

	cmd := a.Understand(context.Background(), "pause the music please")
	assert.Equal(t, types.ActionSpotifyPause, cmd.Action)
}

func TestUnderstandRejectsLowConfidenceLLM(t *testing.T) {
	a, _ := newAssistant(t, fixedLLM{
		response: `{"action":"spotify_pause","parameters":{},"confidence":0.2}`,
	})

	// Low-confidence LLM output loses to the deterministic parser.
	cmd := a.Understand(context.Background(), "Call Matthew")
	assert.Equal(t, types.ActionCallContact, cmd.Action)
}

func TestUnderstandRejectsLLMError(t *testing.T) {
	a, _ := newAssistant(t, fixedLLM{response: `not json at all`})

	cmd := a.Understand(context.Background(), "Open notepad")
	assert.Equal(t, types.ActionOpenApp, cmd.Action)
}

func TestMissingInfoBecomesClarification(t *testing.T) {
	a, _ := newAssistant(t, nil)

	// The rule parser finds no city in this utterance.
	cmd := a.Understand(context.Background(), "what is the weather like")
	require.Equal(t, types.ActionAskClarify, cmd.Action)
	questions, ok := cmd.Parameters["questions"].([]string)
	require.True(t, ok)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0], "city")
}

func TestCommonSenseAnnotatesDestructive(t *testing.T) {
	a, _ := newAssistant(t, nil)

	cmd := a.Understand(context.Background(), "delete the file notes.txt")
	require.Equal(t, types.ActionDeleteFile, cmd.Action)
	require.NotNil(t, cmd.Meta)
	assert.Equal(t, "caution", cmd.Meta.SafetyLevel)
	assert.NotEmpty(t, cmd.Meta.Warnings)
}

func TestCommonSenseContradictionWarning(t *testing.T) {
	a, _ := newAssistant(t, nil)
	a.store.AppendAction(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "spotify"}},
		types.Ok("opened"),
	)

	cmd := a.Understand(context.Background(), "close spotify")
	require.Equal(t, types.ActionCloseApp, cmd.Action)
	require.NotNil(t, cmd.Meta)
	assert.Contains(t, cmd.Meta.Warnings, "spotify was opened moments ago")
}

func TestProcessEmptyUtteranceIsNoOp(t *testing.T) {
	a, _ := newAssistant(t, nil)

	assert.Nil(t, a.Process(context.Background(), ""))
	assert.Nil(t, a.Process(context.Background(), "   "))
	assert.Empty(t, a.store.Turns())
}

func TestProcessWorkflowEndToEnd(t *testing.T) {
	a, rec := newAssistant(t, nil)

	resp := a.Process(context.Background(), "Open notepad and type Hello World")
	require.NotNil(t, resp)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.OverallSuccess)
	require.Len(t, resp.Result.PerStep, 3)

	// open_app, wait, type_text hit the adapters in order.
	require.Len(t, rec.actions, 3)
	assert.Equal(t, types.ActionOpenApp, rec.actions[0].Kind)
	assert.Equal(t, types.ActionWait, rec.actions[1].Kind)
	assert.Equal(t, types.ActionTypeText, rec.actions[2].Kind)

	// Both the user turn and the assistant turn are recorded.
	turns := a.store.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, types.RoleUser, turns[0].Role)
	assert.NotNil(t, turns[0].Emotion)
	assert.Equal(t, types.RoleAssistant, turns[1].Role)

	assert.Len(t, a.store.RecentActions(), 3)
}

func TestProcessDeniedDestructiveWithoutConsent(t *testing.T) {
	a, rec := newAssistant(t, nil)

	resp := a.Process(context.Background(), "delete the file secrets.txt")
	require.NotNil(t, resp)
	require.False(t, resp.Result.OverallSuccess)
	require.NotNil(t, resp.Result.AbortedAtIndex)
	assert.Equal(t, 0, *resp.Result.AbortedAtIndex)
	assert.Equal(t, types.ErrDeniedBySafety, resp.Result.PerStep[0].ErrorKind)
	assert.Empty(t, rec.actions)
}

func TestProcessTagsEmotion(t *testing.T) {
	a, _ := newAssistant(t, nil)

	resp := a.Process(context.Background(), "I am so excited, open notepad")
	require.NotNil(t, resp)

	turns := a.store.Turns()
	require.NotEmpty(t, turns)
	require.NotNil(t, turns[0].Emotion)
	assert.Equal(t, types.EmotionHappy, turns[0].Emotion.Name)
}

func TestProcessLearnsProfileFromInteractions(t *testing.T) {
	a, _ := newAssistant(t, nil)

	for i := 0; i < 3; i++ {
		resp := a.Process(context.Background(), "please check the weather in Paris")
		require.NotNil(t, resp)
	}

	profile := a.store.Profile()
	assert.Equal(t, 3, profile.TopicCounts["weather"])
	assert.Contains(t, profile.Interests, "weather")
	assert.Greater(t, profile.Formality, 0.5)
}

func TestAnnotateLateNightMessaging(t *testing.T) {
	a, _ := newAssistant(t, nil)
	a.now = func() time.Time { return time.Date(2025, 6, 1, 23, 30, 0, 0, time.Local) }

	cmd := a.Understand(context.Background(), "send a message saying good night")
	require.Equal(t, types.ActionSendMessage, cmd.Action)
	require.NotNil(t, cmd.Meta)
	assert.Contains(t, cmd.Meta.Warnings, "it is late; the recipient may be asleep")
}
