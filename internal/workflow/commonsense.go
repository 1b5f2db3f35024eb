package workflow

import (
	"fmt"
	"time"

	appctx "github.com/VATSALVARSHNEY108/boi-mark2/internal/context"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// contradictionWindow is how far back the open/close contradiction rule
// looks in the action history.
const contradictionWindow = 2 * time.Minute

// annotate runs the common-sense rules over a command and merges the
// findings into its metadata. Rules are advisory only; nothing here
// blocks execution.
func annotate(cmd types.Command, reg *registry.Registry, store *appctx.Store, now time.Time) types.Command {
	meta := cmd.Meta
	if meta == nil {
		meta = &types.CommandMeta{}
	}
	if meta.SafetyLevel == "" {
		meta.SafetyLevel = "safe"
	}

	for _, action := range commandActions(cmd) {
		spec, ok := reg.Spec(action.Kind)
		if !ok {
			continue
		}

		if spec.SideEffect == registry.EffectDestructive {
			if meta.SafetyLevel == "safe" {
				meta.SafetyLevel = "caution"
			}
			meta.Warnings = appendOnce(meta.Warnings,
				fmt.Sprintf("%s cannot be undone", action.Kind))
		}

		if action.Kind == types.ActionSendMessage {
			if hour := now.Hour(); hour >= 21 || hour < 6 {
				meta.Warnings = appendOnce(meta.Warnings,
					"it is late; the recipient may be asleep")
				meta.Suggestions = appendOnce(meta.Suggestions,
					"consider scheduling the message for the morning")
			}
		}

		if action.Kind == types.ActionCloseApp && store != nil {
			if app, ok := action.StringParam("app_name"); ok && recentlyOpened(store, app, now) {
				meta.Warnings = appendOnce(meta.Warnings,
					fmt.Sprintf("%s was opened moments ago", app))
			}
		}
	}

	cmd.Meta = meta
	return cmd
}

// commandActions returns the actions a command will run: its steps, or
// the primary when it is a single action.
func commandActions(cmd types.Command) []types.Action {
	if cmd.IsWorkflow() {
		return cmd.Steps
	}
	return []types.Action{cmd.Primary()}
}

// recentlyOpened reports whether app was opened successfully inside the
// contradiction window.
func recentlyOpened(store *appctx.Store, app string, now time.Time) bool {
	for _, entry := range store.RecentActions() {
		if entry.Action.Kind != types.ActionOpenApp {
			continue
		}
		opened, _ := entry.Action.StringParam("app_name")
		if opened == app && entry.Result != nil && entry.Result.Success &&
			now.Sub(entry.At) <= contradictionWindow {
			return true
		}
	}
	return false
}

func appendOnce(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
