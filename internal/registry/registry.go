// Package registry holds the authoritative catalog of action specs.
// The registry is built once at startup and immutable afterwards.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// TypeTag names the expected type of one parameter.
type TypeTag string

const (
	TypeString TypeTag = "string"
	TypeInt    TypeTag = "int"
	TypeFloat  TypeTag = "float"
	TypeBool   TypeTag = "bool"
	TypeList   TypeTag = "list"
	TypeMap    TypeTag = "map"
)

// SideEffect classifies what an action touches. It governs retry, safety
// and idempotency decisions downstream.
type SideEffect string

const (
	EffectPure        SideEffect = "pure"
	EffectLocal       SideEffect = "local"
	EffectExternal    SideEffect = "external"
	EffectDestructive SideEffect = "destructive"
)

// ActionSpec describes one action kind: which parameters it takes, what it
// touches, and how long the executor lets it run.
type ActionSpec struct {
	Kind           types.ActionKind
	Required       []string
	Optional       []string
	ParamTypes     map[string]TypeTag
	SideEffect     SideEffect
	Idempotent     bool
	DefaultTimeout time.Duration
}

// ValidationError reports why an action failed registry validation.
// Dropped parameters are a warning, not a failure, and are listed on the
// normalized action's diagnostics instead.
type ValidationError struct {
	Kind   types.ErrorKind
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Issues)
}

// Registry is the immutable catalog of action specs.
type Registry struct {
	specs map[types.ActionKind]ActionSpec
}

// New builds the full catalog.
func New() *Registry {
	r := &Registry{specs: make(map[types.ActionKind]ActionSpec)}
	for _, spec := range catalog() {
		r.specs[spec.Kind] = spec
	}
	return r
}

// Kinds returns every registered action kind, sorted for stable output.
func (r *Registry) Kinds() []types.ActionKind {
	kinds := make([]types.ActionKind, 0, len(r.specs))
	for kind := range r.specs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Spec returns the spec for a kind.
func (r *Registry) Spec(kind types.ActionKind) (ActionSpec, bool) {
	spec, ok := r.specs[kind]
	return spec, ok
}

// Validate checks an action against its spec. On success it returns a
// normalized copy: parameter values coerced per the spec's type tags and
// unrecognized parameters dropped (with their names returned as warnings).
func (r *Registry) Validate(action types.Action) (types.Action, []string, *ValidationError) {
	spec, ok := r.specs[action.Kind]
	if !ok {
		return action, nil, &ValidationError{
			Kind:   types.ErrInvalidKind,
			Issues: []string{fmt.Sprintf("unknown action kind %q", action.Kind)},
		}
	}

	var issues []string
	for _, name := range spec.Required {
		if _, present := action.Parameters[name]; !present {
			issues = append(issues, fmt.Sprintf("missing_param(%s)", name))
		}
	}

	known := make(map[string]bool, len(spec.Required)+len(spec.Optional)+1)
	for _, name := range spec.Required {
		known[name] = true
	}
	for _, name := range spec.Optional {
		known[name] = true
	}
	// no_delay opts a workflow step out of the settle wait; every kind
	// accepts it so normalization does not strip it.
	known["no_delay"] = true

	normalized := types.Action{Kind: action.Kind, Parameters: make(map[string]any, len(action.Parameters))}
	var dropped []string
	for name, value := range action.Parameters {
		if !known[name] {
			dropped = append(dropped, fmt.Sprintf("unknown_param(%s)", name))
			continue
		}
		tag, tagged := spec.ParamTypes[name]
		if name == "no_delay" {
			tag, tagged = TypeBool, true
		}
		if !tagged {
			normalized.Parameters[name] = value
			continue
		}
		coerced, ok := coerce(value, tag)
		if !ok {
			issues = append(issues, fmt.Sprintf("bad_type(%s, %s, %T)", name, tag, value))
			continue
		}
		normalized.Parameters[name] = coerced
	}

	if len(issues) > 0 {
		return action, dropped, &ValidationError{Kind: types.ErrInvalidParams, Issues: issues}
	}
	sort.Strings(dropped)
	return normalized, dropped, nil
}

// coerce converts a decoded JSON value to the tagged type where the
// conversion is lossless enough to be safe.
func coerce(value any, tag TypeTag) (any, bool) {
	switch tag {
	case TypeString:
		switch v := value.(type) {
		case string:
			return v, true
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10), true
			}
			return strconv.FormatFloat(v, 'f', -1, 64), true
		case int:
			return strconv.Itoa(v), true
		case bool:
			return strconv.FormatBool(v), true
		}
	case TypeInt:
		switch v := value.(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	case TypeBool:
		switch v := value.(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		}
	case TypeList:
		switch v := value.(type) {
		case []any:
			return v, true
		case []string:
			out := make([]any, len(v))
			for i, s := range v {
				out[i] = s
			}
			return out, true
		}
	case TypeMap:
		if v, ok := value.(map[string]any); ok {
			return v, true
		}
	}
	return nil, false
}

func catalog() []ActionSpec {
	const (
		fast   = 5 * time.Second
		medium = 15 * time.Second
		slow   = 30 * time.Second
	)
	return []ActionSpec{
		{
			Kind:           types.ActionOpenApp,
			Required:       []string{"app_name"},
			ParamTypes:     map[string]TypeTag{"app_name": TypeString},
			SideEffect:     EffectExternal,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionCloseApp,
			Required:       []string{"app_name"},
			ParamTypes:     map[string]TypeTag{"app_name": TypeString},
			SideEffect:     EffectExternal,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionTypeText,
			Required:       []string{"text"},
			ParamTypes:     map[string]TypeTag{"text": TypeString},
			SideEffect:     EffectLocal,
			DefaultTimeout: medium,
		},
		{
			Kind:     types.ActionClick,
			Optional: []string{"x", "y", "button", "clicks"},
			ParamTypes: map[string]TypeTag{
				"x": TypeInt, "y": TypeInt, "button": TypeString, "clicks": TypeInt,
			},
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionMoveMouse,
			Required:       []string{"x", "y"},
			ParamTypes:     map[string]TypeTag{"x": TypeInt, "y": TypeInt},
			SideEffect:     EffectLocal,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionPressKey,
			Required:       []string{"key"},
			ParamTypes:     map[string]TypeTag{"key": TypeString},
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionHotkey,
			Required:       []string{"keys"},
			ParamTypes:     map[string]TypeTag{"keys": TypeList},
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionScreenshot,
			Optional:       []string{"filename"},
			ParamTypes:     map[string]TypeTag{"filename": TypeString},
			SideEffect:     EffectLocal,
			Idempotent:     true,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionCopy,
			Required:       []string{"text"},
			ParamTypes:     map[string]TypeTag{"text": TypeString},
			SideEffect:     EffectLocal,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionPaste,
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSearchWeb,
			Required:       []string{"query"},
			ParamTypes:     map[string]TypeTag{"query": TypeString},
			SideEffect:     EffectExternal,
			Idempotent:     true,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionCreateFile,
			Required:       []string{"filename"},
			Optional:       []string{"content"},
			ParamTypes:     map[string]TypeTag{"filename": TypeString, "content": TypeString},
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionDeleteFile,
			Required:       []string{"path"},
			ParamTypes:     map[string]TypeTag{"path": TypeString},
			SideEffect:     EffectDestructive,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionWait,
			Required:       []string{"seconds"},
			ParamTypes:     map[string]TypeTag{"seconds": TypeFloat},
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: 2 * time.Minute,
		},
		{
			Kind:           types.ActionDialPhone,
			Required:       []string{"number"},
			ParamTypes:     map[string]TypeTag{"number": TypeString},
			SideEffect:     EffectExternal,
			DefaultTimeout: slow,
		},
		{
			Kind:           types.ActionCallContact,
			Required:       []string{"contact_name"},
			ParamTypes:     map[string]TypeTag{"contact_name": TypeString},
			SideEffect:     EffectExternal,
			DefaultTimeout: slow,
		},
		{
			Kind:     types.ActionSendMessage,
			Required: []string{"message"},
			Optional: []string{"contact_name", "phone"},
			ParamTypes: map[string]TypeTag{
				"message": TypeString, "contact_name": TypeString, "phone": TypeString,
			},
			SideEffect:     EffectDestructive,
			DefaultTimeout: slow,
		},
		{
			Kind:     types.ActionContactAdd,
			Required: []string{"name"},
			Optional: []string{"phone", "email"},
			ParamTypes: map[string]TypeTag{
				"name": TypeString, "phone": TypeString, "email": TypeString,
			},
			SideEffect:     EffectLocal,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionContactList,
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionContactGet,
			Required:       []string{"name"},
			ParamTypes:     map[string]TypeTag{"name": TypeString},
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSpotifyPlay,
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSpotifyPause,
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSpotifyNext,
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSpotifyPrevious,
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionSpotifySearch,
			Required:       []string{"query"},
			ParamTypes:     map[string]TypeTag{"query": TypeString},
			SideEffect:     EffectLocal,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionGenerateLetter,
			Required:       []string{"description"},
			Optional:       []string{"overrides"},
			ParamTypes:     map[string]TypeTag{"description": TypeString, "overrides": TypeMap},
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionWeatherNow,
			Required:       []string{"city"},
			ParamTypes:     map[string]TypeTag{"city": TypeString},
			SideEffect:     EffectExternal,
			Idempotent:     true,
			DefaultTimeout: medium,
		},
		{
			Kind:           types.ActionWeatherForecast,
			Required:       []string{"city"},
			Optional:       []string{"days"},
			ParamTypes:     map[string]TypeTag{"city": TypeString, "days": TypeInt},
			SideEffect:     EffectExternal,
			Idempotent:     true,
			DefaultTimeout: medium,
		},
		{
			Kind:     types.ActionReminderAdd,
			Required: []string{"message"},
			Optional: []string{"delay_minutes", "time"},
			ParamTypes: map[string]TypeTag{
				"message": TypeString, "delay_minutes": TypeInt, "time": TypeString,
			},
			SideEffect:     EffectLocal,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionReminderList,
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionAskClarify,
			Optional:       []string{"questions", "message"},
			ParamTypes:     map[string]TypeTag{"questions": TypeList, "message": TypeString},
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionUnknown,
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
		{
			Kind:           types.ActionError,
			Optional:       []string{"message", "error"},
			ParamTypes:     map[string]TypeTag{"message": TypeString, "error": TypeString},
			SideEffect:     EffectPure,
			Idempotent:     true,
			DefaultTimeout: fast,
		},
	}
}
