// Package executor runs validated commands. It is the only caller of the
// adapter layer: every action is registry-validated and safety-arbitrated
// before an adapter sees it.
package executor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/adapter"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/security"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// transient failures retry up to twice with this backoff schedule.
var transientBackoff = []time.Duration{250 * time.Millisecond, time.Second}

// cancelGrace is how long invoke waits for an in-flight adapter to hand
// back its result after the call context ends. A step that completed its
// side effect keeps its real result instead of being reported cancelled.
var cancelGrace = 100 * time.Millisecond

// Confirmer asks the user to approve a confirm-verdict action. A nil
// Confirmer means no interactive channel exists.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Executor validates, arbitrates, and dispatches actions. Workflows run
// strictly sequentially with a settle delay between steps.
type Executor struct {
	reg            *registry.Registry
	arbiter        *security.Arbiter
	adapters       *adapter.Set
	confirmer      Confirmer
	interStepDelay time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

func New(reg *registry.Registry, arbiter *security.Arbiter, adapters *adapter.Set, interStepDelay time.Duration) *Executor {
	return &Executor{
		reg:            reg,
		arbiter:        arbiter,
		adapters:       adapters,
		interStepDelay: interStepDelay,
		sleep:          sleepCtx,
	}
}

// SetConfirmer installs the interactive confirmation channel. Call with
// nil to remove it; confirm verdicts then degrade to denials.
func (e *Executor) SetConfirmer(c Confirmer) {
	e.confirmer = c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute runs a command: a single action directly, a workflow step by
// step. The workflow result records one entry per attempted step.
func (e *Executor) Execute(ctx context.Context, cmd types.Command) *types.WorkflowResult {
	if !cmd.IsWorkflow() {
		result := e.runStep(ctx, cmd.Primary(), cmd.Meta)
		wr := &types.WorkflowResult{OverallSuccess: result.Success, PerStep: []types.ExecutionResult{*result}}
		if !result.Success && isAbortKind(result.ErrorKind) {
			zero := 0
			wr.AbortedAtIndex = &zero
		}
		return wr
	}

	log.Printf("Executing workflow with %d steps", len(cmd.Steps))
	wr := &types.WorkflowResult{OverallSuccess: true}

	for i, step := range cmd.Steps {
		if err := ctx.Err(); err != nil {
			idx := i
			wr.AbortedAtIndex = &idx
			wr.OverallSuccess = false
			wr.PerStep = append(wr.PerStep, *stamped(types.Fail(types.ErrCancelled, "workflow cancelled")))
			return wr
		}

		if i > 0 && !noDelay(cmd.Steps[i-1]) && !noDelay(step) {
			if err := e.sleep(ctx, e.interStepDelay); err != nil {
				idx := i
				wr.AbortedAtIndex = &idx
				wr.OverallSuccess = false
				wr.PerStep = append(wr.PerStep, *stamped(types.Fail(types.ErrCancelled, "workflow cancelled")))
				return wr
			}
		}

		log.Printf("Step %d/%d: %s", i+1, len(cmd.Steps), step.Kind)
		result := e.runStep(ctx, step, cmd.Meta)
		wr.PerStep = append(wr.PerStep, *result)

		if !result.Success {
			wr.OverallSuccess = false
			if isAbortKind(result.ErrorKind) {
				idx := i
				wr.AbortedAtIndex = &idx
				return wr
			}
			// Best effort: record the failure and keep going.
		}
	}
	return wr
}

// isAbortKind reports whether a step failure aborts the whole workflow.
func isAbortKind(kind types.ErrorKind) bool {
	switch kind {
	case types.ErrDeniedBySafety, types.ErrInvalidParams, types.ErrInvalidKind, types.ErrCancelled:
		return true
	}
	return false
}

// noDelay reports whether a step opts out of the inter-step settle wait.
func noDelay(step types.Action) bool {
	v, ok := step.BoolParam("no_delay")
	return ok && v
}

// runStep takes one action through validation, arbitration, and dispatch
// with the registry's retry policy applied.
func (e *Executor) runStep(ctx context.Context, action types.Action, meta *types.CommandMeta) *types.ExecutionResult {
	normalized, dropped, verr := e.reg.Validate(action)
	if verr != nil {
		return stamped(types.Fail(verr.Kind, strings.Join(verr.Issues, "; ")))
	}
	for _, warning := range dropped {
		log.Printf("Dropped parameter on %s: %s", action.Kind, warning)
	}

	decision := e.arbiter.Arbitrate(normalized, meta, e.confirmer != nil)
	switch decision.Verdict {
	case security.VerdictDeny:
		log.Printf("Denied %s: %s", normalized.Kind, decision.Reason)
		return stamped(types.Fail(types.ErrDeniedBySafety, decision.Reason))
	case security.VerdictConfirm:
		if !e.confirmer.Confirm(ctx, decision.Prompt) {
			return stamped(types.Fail(types.ErrDeniedBySafety, "declined by user"))
		}
	}

	spec, _ := e.reg.Spec(normalized.Kind)
	a, ok := e.adapters.Lookup(normalized.Kind)
	if !ok {
		return stamped(types.Fail(types.ErrInternal,
			fmt.Sprintf("no adapter registered for %s", normalized.Kind)))
	}

	result := e.invoke(ctx, a, normalized, spec.DefaultTimeout)

	// Timeout retry: idempotent actions get exactly one more attempt
	// with the same deadline.
	if !result.Success && result.ErrorKind == types.ErrTimeout && spec.Idempotent {
		log.Printf("Retrying %s after timeout", normalized.Kind)
		result = e.invoke(ctx, a, normalized, spec.DefaultTimeout)
	}

	// Transient retry: idempotent actions get up to two more attempts
	// with backoff. Non-idempotent actions are never re-executed.
	for attempt := 0; !result.Success && result.ErrorKind == types.ErrTransient && spec.Idempotent && attempt < len(transientBackoff); attempt++ {
		if err := e.sleep(ctx, transientBackoff[attempt]); err != nil {
			break
		}
		log.Printf("Retrying %s after transient failure (attempt %d)", normalized.Kind, attempt+2)
		result = e.invoke(ctx, a, normalized, spec.DefaultTimeout)
	}

	return result
}

// invoke runs one adapter call under the action's deadline, mapping a
// deadline expiry to ErrTimeout.
func (e *Executor) invoke(ctx context.Context, a adapter.Adapter, action types.Action, timeout time.Duration) *types.ExecutionResult {
	callCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	done := make(chan *types.ExecutionResult, 1)
	go func() {
		done <- a.Invoke(callCtx, action)
	}()

	var result *types.ExecutionResult
	select {
	case result = <-done:
	case <-callCtx.Done():
		// The adapter may have finished just as the context ended, or
		// may be returning its own cancellation result. Prefer whatever
		// it hands back within the grace window.
		grace := time.NewTimer(cancelGrace)
		select {
		case result = <-done:
		case <-grace.C:
		}
		grace.Stop()
		if result == nil {
			if ctx.Err() != nil {
				result = types.Fail(types.ErrCancelled, "action cancelled")
			} else {
				result = types.Fail(types.ErrTimeout, fmt.Sprintf("%s timed out after %s", action.Kind, timeout))
			}
		}
	}
	if result == nil {
		result = types.Fail(types.ErrInternal, "adapter returned no result")
	}

	result.StartedAt = started
	result.FinishedAt = time.Now()
	return result
}

// stamped fills the timing fields on results built outside invoke.
func stamped(r *types.ExecutionResult) *types.ExecutionResult {
	now := time.Now()
	if r.StartedAt.IsZero() {
		r.StartedAt = now
	}
	r.FinishedAt = now
	return r
}
