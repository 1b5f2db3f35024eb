package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/adapter"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/security"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

type scriptedAdapter struct {
	calls   int
	results []*types.ExecutionResult
}

func (s *scriptedAdapter) Invoke(context.Context, types.Action) *types.ExecutionResult {
	s.calls++
	if s.calls <= len(s.results) {
		r := *s.results[s.calls-1]
		return &r
	}
	return types.Ok("ok")
}

type yesConfirmer struct{ asked int }

func (y *yesConfirmer) Confirm(context.Context, string) bool {
	y.asked++
	return true
}

type noConfirmer struct{}

func (noConfirmer) Confirm(context.Context, string) bool { return false }

func newExecutor(t *testing.T, adapters *adapter.Set) *Executor {
	t.Helper()
	reg := registry.New()
	arbiter, err := security.NewArbiter(reg, "", true)
	require.NoError(t, err)
	e := New(reg, arbiter, adapters, time.Millisecond)
	e.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return e
}

func cmd(kind types.ActionKind, params map[string]any) types.Command {
	return types.Command{Action: kind, Parameters: params}
}

func TestExecuteSingleAction(t *testing.T) {
	adapters := adapter.NewSet()
	sa := &scriptedAdapter{results: []*types.ExecutionResult{types.Ok("opened")}}
	adapters.Register(types.ActionOpenApp, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionOpenApp, map[string]any{"app_name": "notepad"}))

	require.True(t, wr.OverallSuccess)
	require.Len(t, wr.PerStep, 1)
	assert.Equal(t, "opened", wr.PerStep[0].Message)
	assert.False(t, wr.PerStep[0].StartedAt.IsZero())
	assert.Nil(t, wr.AbortedAtIndex)
}

func TestExecuteInvalidKind(t *testing.T) {
	e := newExecutor(t, adapter.NewSet())
	wr := e.Execute(context.Background(), cmd("warp_drive", map[string]any{}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, types.ErrInvalidKind, wr.PerStep[0].ErrorKind)
	require.NotNil(t, wr.AbortedAtIndex)
	assert.Equal(t, 0, *wr.AbortedAtIndex)
}

func TestExecuteMissingParam(t *testing.T) {
	e := newExecutor(t, adapter.NewSet())
	wr := e.Execute(context.Background(), cmd(types.ActionOpenApp, map[string]any{}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, types.ErrInvalidParams, wr.PerStep[0].ErrorKind)
	assert.Contains(t, wr.PerStep[0].Message, "missing_param(app_name)")
}

func TestDestructiveDeniedWithoutConfirmer(t *testing.T) {
	e := newExecutor(t, adapter.NewSet())
	wr := e.Execute(context.Background(), cmd(types.ActionDeleteFile, map[string]any{"path": "x"}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, types.ErrDeniedBySafety, wr.PerStep[0].ErrorKind)
	assert.Equal(t, security.ReasonNoConsent, wr.PerStep[0].Message)
	require.NotNil(t, wr.AbortedAtIndex)
	assert.Equal(t, 0, *wr.AbortedAtIndex)
}

func TestDestructiveConfirmedRuns(t *testing.T) {
	adapters := adapter.NewSet()
	sa := &scriptedAdapter{}
	adapters.Register(types.ActionDeleteFile, sa)

	e := newExecutor(t, adapters)
	confirmer := &yesConfirmer{}
	e.SetConfirmer(confirmer)

	wr := e.Execute(context.Background(), cmd(types.ActionDeleteFile, map[string]any{"path": "x"}))
	require.True(t, wr.OverallSuccess)
	assert.Equal(t, 1, confirmer.asked)
	assert.Equal(t, 1, sa.calls)
}

func TestDestructiveDeclinedByUser(t *testing.T) {
	adapters := adapter.NewSet()
	sa := &scriptedAdapter{}
	adapters.Register(types.ActionDeleteFile, sa)

	e := newExecutor(t, adapters)
	e.SetConfirmer(noConfirmer{})

	wr := e.Execute(context.Background(), cmd(types.ActionDeleteFile, map[string]any{"path": "x"}))
	require.False(t, wr.OverallSuccess)
	assert.Equal(t, types.ErrDeniedBySafety, wr.PerStep[0].ErrorKind)
	assert.Zero(t, sa.calls)
}

func TestTimeoutRetriesIdempotentOnce(t *testing.T) {
	adapters := adapter.NewSet()
	// screenshot is idempotent; first attempt times out, second works.
	sa := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrTimeout, "slow"),
		types.Ok("captured"),
	}}
	adapters.Register(types.ActionScreenshot, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionScreenshot, map[string]any{}))

	require.True(t, wr.OverallSuccess)
	assert.Equal(t, 2, sa.calls)
}

func TestTimeoutRetryFailsAfterSecondAttempt(t *testing.T) {
	adapters := adapter.NewSet()
	sa := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrTimeout, "slow"),
		types.Fail(types.ErrTimeout, "still slow"),
	}}
	adapters.Register(types.ActionScreenshot, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionScreenshot, map[string]any{}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, 2, sa.calls)
	assert.Equal(t, types.ErrTimeout, wr.PerStep[0].ErrorKind)
}

func TestTimeoutNotRetriedForNonIdempotent(t *testing.T) {
	adapters := adapter.NewSet()
	// open_app is not idempotent; a timeout must not re-launch.
	sa := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrTimeout, "slow"),
	}}
	adapters.Register(types.ActionOpenApp, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionOpenApp, map[string]any{"app_name": "notepad"}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, 1, sa.calls)
}

func TestTransientRetriesTwice(t *testing.T) {
	adapters := adapter.NewSet()
	sa := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrTransient, "down"),
		types.Fail(types.ErrTransient, "down"),
		types.Ok("sunny"),
	}}
	adapters.Register(types.ActionWeatherNow, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionWeatherNow, map[string]any{"city": "London"}))

	require.True(t, wr.OverallSuccess)
	assert.Equal(t, 3, sa.calls)
}

func workflow(steps ...types.Action) types.Command {
	return types.Command{Action: steps[0].Kind, Parameters: steps[0].Parameters, Steps: steps}
}

func TestWorkflowRunsStepsInOrder(t *testing.T) {
	adapters := adapter.NewSet()
	open := &scriptedAdapter{}
	wait := &scriptedAdapter{}
	typeText := &scriptedAdapter{}
	adapters.Register(types.ActionOpenApp, open)
	adapters.Register(types.ActionWait, wait)
	adapters.Register(types.ActionTypeText, typeText)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
		types.Action{Kind: types.ActionWait, Parameters: map[string]any{"seconds": 1}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "Hello World"}},
	))

	require.True(t, wr.OverallSuccess)
	require.Len(t, wr.PerStep, 3)
	assert.Equal(t, 1, open.calls)
	assert.Equal(t, 1, wait.calls)
	assert.Equal(t, 1, typeText.calls)
	assert.Nil(t, wr.AbortedAtIndex)
}

func TestWorkflowAbortsOnSafetyDenial(t *testing.T) {
	adapters := adapter.NewSet()
	open := &scriptedAdapter{}
	after := &scriptedAdapter{}
	adapters.Register(types.ActionOpenApp, open)
	adapters.Register(types.ActionTypeText, after)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
		types.Action{Kind: types.ActionDeleteFile, Parameters: map[string]any{"path": "x"}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "never"}},
	))

	require.False(t, wr.OverallSuccess)
	require.Len(t, wr.PerStep, 2)
	require.NotNil(t, wr.AbortedAtIndex)
	assert.Equal(t, 1, *wr.AbortedAtIndex)
	assert.Equal(t, types.ErrDeniedBySafety, wr.PerStep[1].ErrorKind)
	assert.Zero(t, after.calls)
}

func TestWorkflowContinuesPastOrdinaryFailure(t *testing.T) {
	adapters := adapter.NewSet()
	first := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrPermanent, "app not installed"),
	}}
	second := &scriptedAdapter{}
	adapters.Register(types.ActionOpenApp, first)
	adapters.Register(types.ActionTypeText, second)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "ghost"}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "still runs"}},
	))

	require.False(t, wr.OverallSuccess)
	require.Len(t, wr.PerStep, 2)
	assert.Nil(t, wr.AbortedAtIndex)
	assert.Equal(t, 1, second.calls)
	assert.True(t, wr.PerStep[1].Success)
}

func TestWorkflowNoDelaySkipsSettleWait(t *testing.T) {
	adapters := adapter.NewSet()
	adapters.Register(types.ActionOpenApp, &scriptedAdapter{})
	adapters.Register(types.ActionTypeText, &scriptedAdapter{})

	e := newExecutor(t, adapters)
	var sleeps int
	e.sleep = func(ctx context.Context, _ time.Duration) error { sleeps++; return ctx.Err() }

	wr := e.Execute(context.Background(), workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "hi", "no_delay": true}},
	))
	require.True(t, wr.OverallSuccess)
	assert.Zero(t, sleeps)

	wr = e.Execute(context.Background(), workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "hi"}},
	))
	require.True(t, wr.OverallSuccess)
	assert.Equal(t, 1, sleeps)
}

func TestWorkflowCancellation(t *testing.T) {
	adapters := adapter.NewSet()
	first := &scriptedAdapter{}
	adapters.Register(types.ActionOpenApp, first)

	ctx, cancel := context.WithCancel(context.Background())
	e := newExecutor(t, adapters)
	e.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	// Cancel after the first step by wrapping the first adapter.
	adapters.RegisterFunc(types.ActionOpenApp, func(c context.Context, a types.Action) *types.ExecutionResult {
		cancel()
		return types.Ok("opened")
	})

	wr := e.Execute(ctx, workflow(
		types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
		types.Action{Kind: types.ActionTypeText, Parameters: map[string]any{"text": "never"}},
	))

	require.False(t, wr.OverallSuccess)
	require.NotNil(t, wr.AbortedAtIndex)
	assert.Equal(t, 1, *wr.AbortedAtIndex)
	require.Len(t, wr.PerStep, 2)
	// The step that completed before the cancellation keeps its result.
	assert.True(t, wr.PerStep[0].Success)
	assert.Equal(t, "opened", wr.PerStep[0].Message)
	assert.Equal(t, types.ErrCancelled, wr.PerStep[1].ErrorKind)
}

func TestTransientNotRetriedForNonIdempotent(t *testing.T) {
	adapters := adapter.NewSet()
	// dial_phone is not idempotent; a flaky bridge must not redial.
	sa := &scriptedAdapter{results: []*types.ExecutionResult{
		types.Fail(types.ErrTransient, "bridge not ready"),
	}}
	adapters.Register(types.ActionDialPhone, sa)

	e := newExecutor(t, adapters)
	wr := e.Execute(context.Background(), cmd(types.ActionDialPhone, map[string]any{"number": "+15551234567"}))

	require.False(t, wr.OverallSuccess)
	assert.Equal(t, 1, sa.calls)
	assert.Equal(t, types.ErrTransient, wr.PerStep[0].ErrorKind)
}

func TestAdapterDeadlineMapsToTimeout(t *testing.T) {
	reg := registry.New()
	arbiter, err := security.NewArbiter(reg, "", true)
	require.NoError(t, err)

	adapters := adapter.NewSet()
	adapters.RegisterFunc(types.ActionScreenshot, func(ctx context.Context, _ types.Action) *types.ExecutionResult {
		<-ctx.Done()
		return types.Fail(types.ErrCancelled, "interrupted")
	})

	e := New(reg, arbiter, adapters, time.Millisecond)
	e.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	// Shrink the registered timeout by running under a parent deadline instead:
	// the adapter blocks until the context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	wr := e.Execute(ctx, cmd(types.ActionScreenshot, map[string]any{}))
	require.False(t, wr.OverallSuccess)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, types.ErrCancelled, wr.PerStep[0].ErrorKind)
}
