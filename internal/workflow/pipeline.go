// Package workflow orchestrates a command's full journey: emotion
// tagging, parsing, common-sense annotation, missing-info prompting,
// execution, and context write-back.
package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	appctx "github.com/VATSALVARSHNEY108/boi-mark2/internal/context"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/executor"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/parser"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Response is what a surface (CLI, HTTP, voice) shows the user for one
// processed utterance.
type Response struct {
	Text     string                `json:"text"`
	Command  types.Command         `json:"command"`
	Result   *types.WorkflowResult `json:"result"`
	MoodHint string                `json:"mood_hint,omitempty"`
}

// Assistant is the intent pipeline: single entry point for every
// utterance regardless of which surface it arrived on.
type Assistant struct {
	reg             *registry.Registry
	llm             *parser.LLMParser
	rules           *parser.RuleParser
	emotions        *parser.EmotionTagger
	exec            *executor.Executor
	store           *appctx.Store
	confidenceFloor float64
	now             func() time.Time
}

func NewAssistant(
	reg *registry.Registry,
	llm *parser.LLMParser,
	rules *parser.RuleParser,
	emotions *parser.EmotionTagger,
	exec *executor.Executor,
	store *appctx.Store,
	confidenceFloor float64,
) *Assistant {
	return &Assistant{
		reg:             reg,
		llm:             llm,
		rules:           rules,
		emotions:        emotions,
		exec:            exec,
		store:           store,
		confidenceFloor: confidenceFloor,
		now:             time.Now,
	}
}

// Understand maps an utterance to an annotated command without executing
// it. The LLM parse is preferred when it is available, confident, and
// not an error; the rule parser is the unconditional fallback.
func (a *Assistant) Understand(ctx context.Context, utterance string) types.Command {
	var cmd types.Command
	used := "rules"

	if a.llm != nil && a.llm.Enabled() {
		cmd = a.llm.Parse(ctx, utterance)
		if cmd.Action == types.ActionError || cmd.Confidence < a.confidenceFloor {
			log.Printf("LLM parse rejected (action=%s confidence=%.2f), falling back to rules",
				cmd.Action, cmd.Confidence)
			cmd = a.rules.Parse(utterance)
		} else {
			used = "llm"
		}
	} else {
		cmd = a.rules.Parse(utterance)
	}
	log.Printf("Understood %q as %s via %s (confidence %.2f)", utterance, cmd.Action, used, cmd.Confidence)

	cmd = annotate(cmd, a.reg, a.store, a.now())
	return a.rewriteIfMissingInfo(cmd)
}

// rewriteIfMissingInfo converts a command whose required parameters are
// still unfilled into an ask_clarification carrying one question per
// missing parameter. Workflows are left alone; the executor will fail
// the bad step with diagnostics instead.
func (a *Assistant) rewriteIfMissingInfo(cmd types.Command) types.Command {
	if cmd.IsWorkflow() || cmd.Action == types.ActionError || cmd.Action == types.ActionUnknown {
		return cmd
	}
	spec, ok := a.reg.Spec(cmd.Action)
	if !ok {
		return cmd
	}

	var questions []string
	for _, name := range spec.Required {
		if _, present := cmd.Parameters[name]; !present {
			questions = append(questions, fmt.Sprintf("What %s should I use for %s?", name, cmd.Action))
		}
	}
	if len(questions) == 0 {
		return cmd
	}

	meta := cmd.Meta
	if meta == nil {
		meta = &types.CommandMeta{}
	}
	meta.Questions = questions

	return types.Command{
		Action: types.ActionAskClarify,
		Parameters: map[string]any{
			"questions": questions,
			"message":   fmt.Sprintf("I need more detail before I can %s.", cmd.Action),
		},
		Steps:       []types.Action{},
		Description: cmd.Description,
		Confidence:  cmd.Confidence,
		Meta:        meta,
	}
}

// Process runs the full pipeline for one utterance and writes the turn
// and its results back to the context store. Empty input is a no-op.
func (a *Assistant) Process(ctx context.Context, utterance string) *Response {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil
	}

	emotion := a.emotions.Tag(ctx, utterance)

	cmd := a.Understand(ctx, utterance)
	a.store.AppendTurn(types.ConversationTurn{
		Role:    types.RoleUser,
		Content: utterance,
		Emotion: &emotion,
		Intent:  cmd.Action,
	})
	a.store.UpdateProfile(func(p *types.UserProfile) {
		observeInteraction(p, utterance, cmd.Action)
	})

	result := a.exec.Execute(ctx, cmd)
	for i, action := range commandActions(cmd) {
		if i < len(result.PerStep) {
			stepResult := result.PerStep[i]
			a.store.AppendAction(action, &stepResult)
		}
	}

	text := a.respond(cmd, result)
	a.store.AppendTurn(types.ConversationTurn{Role: types.RoleAssistant, Content: text})

	return &Response{
		Text:     text,
		Command:  cmd,
		Result:   result,
		MoodHint: a.store.MoodTrend(),
	}
}

// Notify records an assistant-initiated message, such as a reminder
// firing, as a turn in the conversation. The pipeline stays the only
// writer of the context store.
func (a *Assistant) Notify(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	a.store.AppendTurn(types.ConversationTurn{Role: types.RoleAssistant, Content: message})
}

// respond renders the outcome as one user-facing message.
func (a *Assistant) respond(cmd types.Command, result *types.WorkflowResult) string {
	var parts []string
	for _, step := range result.PerStep {
		if step.Message != "" {
			parts = append(parts, step.Message)
		}
	}
	text := strings.Join(parts, " ")
	if text == "" {
		if result.OverallSuccess {
			text = "Done."
		} else {
			text = "That did not work."
		}
	}

	if cmd.Meta != nil && len(cmd.Meta.Warnings) > 0 && result.OverallSuccess {
		text += " (Note: " + strings.Join(cmd.Meta.Warnings, "; ") + ")"
	}
	return text
}
