// Package adapter contains the typed action handlers the executor
// dispatches to. Adapters are only callable through the executor; nothing
// else in the process invokes them directly.
package adapter

import (
	"context"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Adapter executes one action kind against its external collaborator.
type Adapter interface {
	Invoke(ctx context.Context, action types.Action) *types.ExecutionResult
}

// Func adapts a plain function to the Adapter interface.
type Func func(ctx context.Context, action types.Action) *types.ExecutionResult

func (f Func) Invoke(ctx context.Context, action types.Action) *types.ExecutionResult {
	return f(ctx, action)
}

// Set is the adapter lookup table keyed by action kind.
type Set struct {
	adapters map[types.ActionKind]Adapter
}

func NewSet() *Set {
	return &Set{adapters: make(map[types.ActionKind]Adapter)}
}

// Register binds an adapter to a kind, replacing any previous binding.
func (s *Set) Register(kind types.ActionKind, a Adapter) {
	s.adapters[kind] = a
}

// RegisterFunc binds a function to a kind.
func (s *Set) RegisterFunc(kind types.ActionKind, f Func) {
	s.Register(kind, f)
}

// Lookup returns the adapter for a kind.
func (s *Set) Lookup(kind types.ActionKind) (Adapter, bool) {
	a, ok := s.adapters[kind]
	return a, ok
}
