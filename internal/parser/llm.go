package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Generator is the language-model surface the parser needs. The gemini
// client satisfies it; tests use a stub.
type Generator interface {
	Enabled() bool
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
}

// commandSchema is the structural contract the model's JSON must meet
// before any registry-level validation runs.
const commandSchema = `{
	"type": "object",
	"required": ["action", "parameters"],
	"properties": {
		"action": {"type": "string", "minLength": 1},
		"parameters": {"type": "object"},
		"steps": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["action", "parameters"],
				"properties": {
					"action": {"type": "string", "minLength": 1},
					"parameters": {"type": "object"}
				}
			}
		},
		"description": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

// LLMParser asks the language model to translate an utterance into a
// command, then validates the answer at the boundary. Unvalidated model
// output never leaves this type.
type LLMParser struct {
	llm    Generator
	reg    *registry.Registry
	schema *jsonschema.Schema
	system string
}

func NewLLMParser(llm Generator, reg *registry.Registry) *LLMParser {
	return &LLMParser{
		llm:    llm,
		reg:    reg,
		schema: jsonschema.MustCompileString("command.schema.json", commandSchema),
		system: buildSystemPrompt(reg),
	}
}

// Enabled reports whether a model is configured.
func (p *LLMParser) Enabled() bool {
	return p.llm != nil && p.llm.Enabled()
}

// Parse calls the model exactly once and validates its output. Every
// failure mode returns a kind=error command; this function never retries
// and never repairs malformed output.
func (p *LLMParser) Parse(ctx context.Context, utterance string) types.Command {
	if !p.Enabled() {
		return types.ErrorCommand("language model is not configured")
	}

	raw, err := p.llm.GenerateJSON(ctx, p.system, utterance)
	if err != nil {
		return types.ErrorCommand(fmt.Sprintf("language model request failed: %v", err))
	}
	raw = stripCodeFences(raw)

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return types.ErrorCommand("invalid JSON from LLM")
	}
	if err := p.schema.Validate(decoded); err != nil {
		return types.ErrorCommand(fmt.Sprintf("command failed schema validation: %v", err))
	}

	var cmd types.Command
	if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
		return types.ErrorCommand("invalid JSON from LLM")
	}
	if cmd.Parameters == nil {
		cmd.Parameters = map[string]any{}
	}
	if cmd.Steps == nil {
		cmd.Steps = []types.Action{}
	}

	return p.normalize(cmd)
}

// normalize runs registry validation over the primary action and every
// step. Dropped unknown parameters become warnings; hard validation
// failures turn the whole command into kind=error with diagnostics.
func (p *LLMParser) normalize(cmd types.Command) types.Command {
	var warnings []string

	if cmd.IsWorkflow() {
		steps := make([]types.Action, 0, len(cmd.Steps))
		for i, step := range cmd.Steps {
			normalized, dropped, verr := p.reg.Validate(step)
			if verr != nil {
				return types.ErrorCommand(fmt.Sprintf(
					"step %d (%s): %s", i, step.Kind, strings.Join(verr.Issues, "; ")))
			}
			for _, warning := range dropped {
				warnings = append(warnings, fmt.Sprintf("step %d: %s", i, warning))
			}
			steps = append(steps, normalized)
		}
		cmd.Steps = steps
	} else {
		normalized, dropped, verr := p.reg.Validate(cmd.Primary())
		if verr != nil {
			return types.ErrorCommand(fmt.Sprintf(
				"%s: %s", cmd.Action, strings.Join(verr.Issues, "; ")))
		}
		cmd.Action = normalized.Kind
		cmd.Parameters = normalized.Parameters
		warnings = append(warnings, dropped...)
	}

	if len(warnings) > 0 {
		if cmd.Meta == nil {
			cmd.Meta = &types.CommandMeta{}
		}
		cmd.Meta.Warnings = append(cmd.Meta.Warnings, warnings...)
	}
	return cmd
}

// stripCodeFences removes the ```json ... ``` decoration models like to
// add even in JSON mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// buildSystemPrompt renders the action catalog into the instruction the
// model sees. Kinds are listed in sorted order so the prompt is stable
// across runs.
func buildSystemPrompt(reg *registry.Registry) string {
	var b strings.Builder
	b.WriteString("You are a command parser for a desktop assistant. ")
	b.WriteString("Translate the user's request into a single JSON object:\n")
	b.WriteString(`{"action": "<kind>", "parameters": {...}, "steps": [...], "description": "...", "confidence": 0.0-1.0}` + "\n\n")
	b.WriteString("For multi-step requests fill \"steps\" with one {action, parameters} object per step, in order.\n")
	b.WriteString("Use only these actions:\n")

	for _, kind := range reg.Kinds() {
		spec, ok := reg.Spec(kind)
		if !ok {
			continue
		}
		b.WriteString("- ")
		b.WriteString(string(kind))
		if len(spec.Required) > 0 {
			b.WriteString(" (required: ")
			b.WriteString(strings.Join(spec.Required, ", "))
			b.WriteString(")")
		}
		if len(spec.Optional) > 0 {
			b.WriteString(" (optional: ")
			b.WriteString(strings.Join(spec.Optional, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nIf the request matches no action, use \"unknown\" with confidence 0. ")
	b.WriteString("Respond with JSON only.")
	return b.String()
}
