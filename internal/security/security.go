// Package security implements the safety arbiter that sits between
// parsing and execution. Every action passes through Arbitrate before an
// adapter may run it.
package security

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

type Verdict string

const (
	VerdictAllow   Verdict = "allow"
	VerdictConfirm Verdict = "confirm"
	VerdictDeny    Verdict = "deny"
)

// ReasonNoConsent is the deny reason used when a confirmation would be
// needed but no interactive channel exists to ask.
const ReasonNoConsent = "no_consent_channel"

// Decision is the arbiter's verdict on one action.
type Decision struct {
	Verdict Verdict
	Prompt  string // set for VerdictConfirm
	Reason  string // set for VerdictDeny
}

// policyFile is the YAML shape of an on-disk safety policy.
type policyFile struct {
	Actions map[string]string `yaml:"actions"` // action kind -> auto|confirm|deny
}

// Arbiter decides whether actions run, require confirmation, or are
// denied. Defaults come from the registry's side-effect classes; an
// optional YAML policy overrides per kind.
type Arbiter struct {
	reg       *registry.Registry
	overrides map[types.ActionKind]string
	keywords  []string
	safeMode  bool
	now       func() time.Time
}

// NewArbiter builds an arbiter. policyPath may be empty; a missing file
// is not an error.
func NewArbiter(reg *registry.Registry, policyPath string, safeMode bool) (*Arbiter, error) {
	a := &Arbiter{
		reg:       reg,
		overrides: map[types.ActionKind]string{},
		keywords: []string{
			"rm -rf", "format c:", "shutdown", "reboot",
			"mkfs", "dd if=", "> /dev/",
			"passwd", "userdel",
		},
		safeMode: safeMode,
		now:      time.Now,
	}

	if policyPath == "" {
		return a, nil
	}
	data, err := os.ReadFile(policyPath)
	if os.IsNotExist(err) {
		return a, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read safety policy: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse safety policy: %w", err)
	}
	for kind, mode := range pf.Actions {
		switch mode {
		case "auto", "confirm", "deny":
			a.overrides[types.ActionKind(kind)] = mode
		default:
			return nil, fmt.Errorf("safety policy: invalid mode %q for %s", mode, kind)
		}
	}
	log.Printf("Loaded safety policy with %d overrides from %s", len(a.overrides), policyPath)
	return a, nil
}

// Arbitrate decides one action. meta carries the advisory annotations
// from common-sense validation; interactive reports whether a
// confirmation channel exists. Without one, confirm degrades to deny.
func (a *Arbiter) Arbitrate(action types.Action, meta *types.CommandMeta, interactive bool) Decision {
	if meta != nil && meta.SafetyLevel == "dangerous" {
		return Decision{Verdict: VerdictDeny, Reason: "flagged dangerous"}
	}

	// In safe mode a blocked pattern in any parameter is a hard deny;
	// otherwise it only forces a confirmation.
	verdict := a.baseVerdict(action)
	if reason := a.scanParameters(action); reason != "" {
		if a.safeMode {
			return Decision{Verdict: VerdictDeny, Reason: reason}
		}
		verdict = VerdictConfirm
	}
	if mode, ok := a.overrides[action.Kind]; ok {
		switch mode {
		case "auto":
			verdict = VerdictAllow
		case "confirm":
			verdict = VerdictConfirm
		case "deny":
			return Decision{Verdict: VerdictDeny, Reason: "denied by policy"}
		}
	}

	// Messaging late at night is worth a second look even when the
	// action itself is routine.
	if action.Kind == types.ActionSendMessage && verdict == VerdictAllow {
		if hour := a.now().Hour(); hour >= 21 || hour < 6 {
			verdict = VerdictConfirm
		}
	}

	switch verdict {
	case VerdictDeny:
		return Decision{Verdict: VerdictDeny, Reason: "action not registered"}
	case VerdictConfirm:
		if !interactive {
			return Decision{Verdict: VerdictDeny, Reason: ReasonNoConsent}
		}
		return Decision{
			Verdict: VerdictConfirm,
			Prompt:  fmt.Sprintf("Allow %s? This action has side effects that cannot be undone.", action.Kind),
		}
	default:
		return Decision{Verdict: VerdictAllow}
	}
}

func (a *Arbiter) baseVerdict(action types.Action) Verdict {
	spec, ok := a.reg.Spec(action.Kind)
	if !ok {
		return VerdictDeny
	}
	if spec.SideEffect == registry.EffectDestructive {
		return VerdictConfirm
	}
	return VerdictAllow
}

// scanParameters looks for shell-injection style content in string
// parameters. The rule parser never produces these, but parameters also
// arrive from the LLM.
func (a *Arbiter) scanParameters(action types.Action) string {
	for name, value := range action.Parameters {
		s, ok := value.(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range a.keywords {
			if strings.Contains(lower, kw) {
				log.Printf("Blocked %s: parameter %s contains %q", action.Kind, name, kw)
				return fmt.Sprintf("parameter %s contains blocked pattern", name)
			}
		}
	}
	return ""
}
