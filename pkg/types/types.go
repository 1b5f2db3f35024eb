package types

import "time"

// ActionKind identifies a single executable action in the registry.
type ActionKind string

// The closed set of action kinds. Parsers must not emit anything else;
// the registry rejects unknown kinds with ErrInvalidKind.
const (
	ActionOpenApp         ActionKind = "open_app"
	ActionCloseApp        ActionKind = "close_app"
	ActionTypeText        ActionKind = "type_text"
	ActionClick           ActionKind = "click"
	ActionMoveMouse       ActionKind = "move_mouse"
	ActionPressKey        ActionKind = "press_key"
	ActionHotkey          ActionKind = "hotkey"
	ActionScreenshot      ActionKind = "screenshot"
	ActionCopy            ActionKind = "copy"
	ActionPaste           ActionKind = "paste"
	ActionSearchWeb       ActionKind = "search_web"
	ActionCreateFile      ActionKind = "create_file"
	ActionDeleteFile      ActionKind = "delete_file"
	ActionWait            ActionKind = "wait"
	ActionDialPhone       ActionKind = "dial_phone"
	ActionCallContact     ActionKind = "call_contact"
	ActionSendMessage     ActionKind = "send_message"
	ActionContactAdd      ActionKind = "contact_add"
	ActionContactList     ActionKind = "contact_list"
	ActionContactGet      ActionKind = "contact_get"
	ActionSpotifyPlay     ActionKind = "spotify_play"
	ActionSpotifyPause    ActionKind = "spotify_pause"
	ActionSpotifyNext     ActionKind = "spotify_next"
	ActionSpotifyPrevious ActionKind = "spotify_previous"
	ActionSpotifySearch   ActionKind = "spotify_search"
	ActionGenerateLetter  ActionKind = "generate_letter"
	ActionWeatherNow      ActionKind = "weather_now"
	ActionWeatherForecast ActionKind = "weather_forecast"
	ActionReminderAdd     ActionKind = "reminder_add"
	ActionReminderList    ActionKind = "reminder_list"
	ActionAskClarify      ActionKind = "ask_clarification"
	ActionUnknown         ActionKind = "unknown"
	ActionError           ActionKind = "error"
)

// Action is a single executable unit: a kind plus its parameters.
// Actions are immutable once emitted by a parser.
type Action struct {
	Kind       ActionKind     `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

// StringParam returns the named parameter as a string.
func (a Action) StringParam(name string) (string, bool) {
	v, ok := a.Parameters[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntParam returns the named parameter as an int, accepting JSON numbers.
func (a Action) IntParam(name string) (int, bool) {
	switch v := a.Parameters[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// FloatParam returns the named parameter as a float64, accepting JSON numbers.
func (a Action) FloatParam(name string) (float64, bool) {
	switch v := a.Parameters[name].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// BoolParam returns the named parameter as a bool.
func (a Action) BoolParam(name string) (bool, bool) {
	v, ok := a.Parameters[name].(bool)
	return v, ok
}

// StringListParam returns the named parameter as a list of strings.
func (a Action) StringListParam(name string) ([]string, bool) {
	switch v := a.Parameters[name].(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// CommandMeta carries advisory annotations from common-sense validation.
// It never blocks execution.
type CommandMeta struct {
	Warnings    []string `json:"warnings,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	SafetyLevel string   `json:"safety_level,omitempty"` // safe | caution | dangerous
	Questions   []string `json:"questions,omitempty"`
}

// Command is the top-level parser output: either a single action or an
// ordered workflow. When Steps is non-empty the command is a workflow and
// the top-level action is advisory.
type Command struct {
	Action      ActionKind     `json:"action"`
	Parameters  map[string]any `json:"parameters"`
	Steps       []Action       `json:"steps"`
	Description string         `json:"description"`
	Confidence  float64        `json:"confidence,omitempty"`
	Meta        *CommandMeta   `json:"meta,omitempty"`
}

// Primary returns the command's single action.
func (c Command) Primary() Action {
	return Action{Kind: c.Action, Parameters: c.Parameters}
}

// IsWorkflow reports whether the command carries an ordered step sequence.
func (c Command) IsWorkflow() bool {
	return len(c.Steps) > 0
}

// ErrorCommand builds the canonical error command parsers return instead
// of raising.
func ErrorCommand(description string) Command {
	return Command{
		Action:      ActionError,
		Parameters:  map[string]any{},
		Steps:       []Action{},
		Description: description,
		Confidence:  0,
	}
}

// ErrorKind is the closed taxonomy of canonical failures.
type ErrorKind string

const (
	ErrInvalidKind     ErrorKind = "invalid_kind"
	ErrInvalidParams   ErrorKind = "invalid_params"
	ErrMissingInfo     ErrorKind = "missing_info"
	ErrTimeout         ErrorKind = "timeout"
	ErrTransient       ErrorKind = "transient"
	ErrPermanent       ErrorKind = "permanent"
	ErrDeniedBySafety  ErrorKind = "denied_by_safety"
	ErrCancelled       ErrorKind = "cancelled"
	ErrUnsupportedHost ErrorKind = "unsupported_host"
	ErrInternal        ErrorKind = "internal"
)

// ExecutionResult is the outcome of one adapter invocation.
type ExecutionResult struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
	ErrorKind  ErrorKind      `json:"error_kind,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Ok builds a successful result.
func Ok(message string) *ExecutionResult {
	return &ExecutionResult{Success: true, Message: message}
}

// OkData builds a successful result carrying structured data.
func OkData(message string, data map[string]any) *ExecutionResult {
	return &ExecutionResult{Success: true, Message: message, Data: data}
}

// Fail builds a failed result with a canonical error kind.
func Fail(kind ErrorKind, message string) *ExecutionResult {
	return &ExecutionResult{Success: false, Message: message, ErrorKind: kind}
}

// WorkflowResult aggregates per-step results for a workflow execution.
// PerStep holds exactly one entry per attempted step; when AbortedAtIndex
// is set the remaining steps were skipped.
type WorkflowResult struct {
	OverallSuccess bool              `json:"overall_success"`
	PerStep        []ExecutionResult `json:"per_step"`
	AbortedAtIndex *int              `json:"aborted_at_index,omitempty"`
}

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationTurn is one append-only entry of the conversation history.
type ConversationTurn struct {
	Role    string        `json:"role"`
	Content string        `json:"content"`
	At      time.Time     `json:"at"`
	Emotion *EmotionLabel `json:"tagged_emotion,omitempty"`
	Intent  ActionKind    `json:"tagged_intent,omitempty"`
}

// Emotion names recognized by the tagger.
const (
	EmotionHappy     = "happy"
	EmotionSad       = "sad"
	EmotionAngry     = "angry"
	EmotionAnxious   = "anxious"
	EmotionConfused  = "confused"
	EmotionTired     = "tired"
	EmotionMotivated = "motivated"
	EmotionGrateful  = "grateful"
	EmotionNeutral   = "neutral"
)

// EmotionLabel is a tagged emotion with an intensity in [0,1].
type EmotionLabel struct {
	Name      string  `json:"name"`
	Intensity float64 `json:"intensity"`
}

// UserProfile holds learned preferences for the single local user.
type UserProfile struct {
	DisplayName string         `json:"display_name"`
	Preferences map[string]any `json:"preferences"`
	Interests   []string       `json:"interests"`
	TopicCounts map[string]int `json:"topic_counts"`
	Formality   float64        `json:"formality"`
	Humor       float64        `json:"humor"`
	DetailLevel float64        `json:"detail_level"`
}

// NewUserProfile returns a profile with the original defaults.
func NewUserProfile() *UserProfile {
	return &UserProfile{
		Preferences: map[string]any{},
		TopicCounts: map[string]int{},
		Formality:   0.5,
		Humor:       0.7,
		DetailLevel: 0.6,
	}
}

// ContactRecord is one contact; records are keyed by case-folded name.
type ContactRecord struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
