package security

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

func newArbiter(t *testing.T) *Arbiter {
	t.Helper()
	a, err := NewArbiter(registry.New(), "", true)
	require.NoError(t, err)
	return a
}

func noon() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
}

func TestArbitrateDefaults(t *testing.T) {
	a := newArbiter(t)
	a.now = noon

	tests := []struct {
		name        string
		action      types.Action
		interactive bool
		want        Verdict
		wantReason  string
	}{
		{
			name:        "routine action allowed",
			action:      types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "notepad"}},
			interactive: false,
			want:        VerdictAllow,
		},
		{
			name:        "destructive requires confirmation",
			action:      types.Action{Kind: types.ActionDeleteFile, Parameters: map[string]any{"path": "notes.txt"}},
			interactive: true,
			want:        VerdictConfirm,
		},
		{
			name:        "destructive without channel degrades to deny",
			action:      types.Action{Kind: types.ActionDeleteFile, Parameters: map[string]any{"path": "notes.txt"}},
			interactive: false,
			want:        VerdictDeny,
			wantReason:  ReasonNoConsent,
		},
		{
			name:        "unknown kind denied",
			action:      types.Action{Kind: "launch_rocket", Parameters: map[string]any{}},
			interactive: true,
			want:        VerdictDeny,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := a.Arbitrate(tt.action, nil, tt.interactive)
			assert.Equal(t, tt.want, d.Verdict)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, d.Reason)
			}
			if tt.want == VerdictConfirm {
				assert.NotEmpty(t, d.Prompt)
			}
		})
	}
}

func TestArbitrateDangerousMetaDenied(t *testing.T) {
	a := newArbiter(t)

	meta := &types.CommandMeta{SafetyLevel: "dangerous"}
	d := a.Arbitrate(types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "x"}}, meta, true)
	assert.Equal(t, VerdictDeny, d.Verdict)
}

func TestArbitrateLateNightMessage(t *testing.T) {
	a := newArbiter(t)

	a.now = func() time.Time { return time.Date(2025, 6, 1, 23, 0, 0, 0, time.Local) }
	action := types.Action{Kind: types.ActionSendMessage, Parameters: map[string]any{"message": "hi"}}

	d := a.Arbitrate(action, nil, true)
	assert.Equal(t, VerdictConfirm, d.Verdict)

	d = a.Arbitrate(action, nil, false)
	assert.Equal(t, VerdictDeny, d.Verdict)
	assert.Equal(t, ReasonNoConsent, d.Reason)
}

func TestArbitrateKeywordScan(t *testing.T) {
	a := newArbiter(t)
	a.now = noon

	action := types.Action{
		Kind:       types.ActionTypeText,
		Parameters: map[string]any{"text": "rm -rf /"},
	}
	d := a.Arbitrate(action, nil, true)
	assert.Equal(t, VerdictDeny, d.Verdict)

	relaxed, err := NewArbiter(registry.New(), "", false)
	require.NoError(t, err)
	relaxed.now = noon
	d = relaxed.Arbitrate(action, nil, true)
	assert.Equal(t, VerdictConfirm, d.Verdict)
}

func TestArbitratePolicyOverrides(t *testing.T) {
	policy := `actions:
  delete_file: auto
  open_app: deny
  screenshot: confirm
`
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(policy), 0o644))

	a, err := NewArbiter(registry.New(), path, true)
	require.NoError(t, err)
	a.now = noon

	d := a.Arbitrate(types.Action{Kind: types.ActionDeleteFile, Parameters: map[string]any{"path": "x"}}, nil, false)
	assert.Equal(t, VerdictAllow, d.Verdict)

	d = a.Arbitrate(types.Action{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": "x"}}, nil, true)
	assert.Equal(t, VerdictDeny, d.Verdict)

	d = a.Arbitrate(types.Action{Kind: types.ActionScreenshot, Parameters: map[string]any{}}, nil, true)
	assert.Equal(t, VerdictConfirm, d.Verdict)
}

func TestArbiterPolicyErrors(t *testing.T) {
	_, err := NewArbiter(registry.New(), filepath.Join(t.TempDir(), "missing.yaml"), true)
	assert.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("actions:\n  open_app: maybe\n"), 0o644))
	_, err = NewArbiter(registry.New(), bad, true)
	assert.Error(t, err)
}
