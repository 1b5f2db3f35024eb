// Package parser turns free-form utterances into structured commands.
// Two parsers live here: the deterministic rule-based parser and the
// LLM-backed parser. The intent pipeline prefers the LLM and falls back
// to rules.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// ruleConfidence is the flat confidence every rule recognizer reports.
// Rule matches are coarse; the value only matters relative to the LLM
// acceptance floor.
const ruleConfidence = 0.7

var (
	phoneRe = regexp.MustCompile(`[+\d][\d\-() ]{7,}`)

	// "open notepad and type hello" style compound commands.
	openAndTypeRe = regexp.MustCompile(`(?i)^(?:open|launch|start)\s+(.+?)\s+and\s+type\s+(.+)$`)

	openAppRe    = regexp.MustCompile(`(?i)^(?:open|launch|start)\s+(.+)$`)
	closeAppRe   = regexp.MustCompile(`(?i)^(?:close|quit|kill)\s+(.+)$`)
	typeTextRe   = regexp.MustCompile(`(?i)^type\s+(.+)$`)
	searchWebRe  = regexp.MustCompile(`(?i)^(?:search(?:\s+the\s+web)?(?:\s+for)?|google|look up)\s+(.+)$`)
	createFileRe = regexp.MustCompile(`(?i)^(?:create|make|new)\s+(?:a\s+)?file\s+(?:called\s+|named\s+)?(.+)$`)
	// The word file(s) may sit anywhere in the tail: "delete the file
	// report.txt" and "delete all my files" both count.
	deleteFileRe = regexp.MustCompile(`(?i)^(?:delete|remove)\s+(?:the\s+)?(?:files?\s+)?(.+)$`)
	fileWordRe   = regexp.MustCompile(`(?i)\bfiles?\b`)
	weatherInRe  = regexp.MustCompile(`(?i)\bweather\b.*?\b(?:in|for|at)\s+([a-zA-Z][a-zA-Z .'-]*)$`)
	remindRe     = regexp.MustCompile(`(?i)^remind me\s+(?:to\s+)?(.+)$`)
	spotifyRe    = regexp.MustCompile(`(?i)\b(?:play|search(?:\s+for)?)\s+(.+?)\s+on spotify\b`)
	letterRe     = regexp.MustCompile(`(?i)\b(?:write|generate|draft)\b.*\bletter\b`)
	messageRe    = regexp.MustCompile(`(?i)^(?:send|text|message)\b`)

	// Telephony trigger verbs; must appear as a whole word.
	callVerbRe = regexp.MustCompile(`(?i)\b(call|dial|ring|phone)\b`)

	// Filler words around contact names. Deleted on word boundaries only
	// so "Matthew" never loses its "at".
	nameStopWordRe = regexp.MustCompile(`(?i)\b(at|on|using|with|phone|link)\b`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// RuleParser is the deterministic fallback parser. Recognizers run in a
// fixed order from most specific to most general; the first match wins.
type RuleParser struct{}

func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

// Parse maps an utterance to a command. Matching happens on a lowercased
// copy; parameters are extracted from the original so names and text keep
// their casing. Identical input always yields an identical command.
func (p *RuleParser) Parse(utterance string) types.Command {
	original := strings.TrimSpace(utterance)
	lower := strings.ToLower(original)

	if original == "" {
		return unknownCommand("empty utterance")
	}

	if cmd, ok := p.parseOpenAndType(original); ok {
		return cmd
	}
	if cmd, ok := p.parseTelephony(original, lower); ok {
		return cmd
	}
	if cmd, ok := p.parseSpotify(original, lower); ok {
		return cmd
	}
	if cmd, ok := p.parseWeather(original, lower); ok {
		return cmd
	}
	if cmd, ok := p.parseReminder(original, lower); ok {
		return cmd
	}
	if letterRe.MatchString(lower) {
		return singleAction(types.ActionGenerateLetter,
			map[string]any{"description": original}, "generate a letter")
	}
	if strings.Contains(lower, "screenshot") {
		return singleAction(types.ActionScreenshot, map[string]any{}, "take a screenshot")
	}
	if m := createFileRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionCreateFile,
			map[string]any{"filename": strings.TrimSpace(m[1])}, "create a file")
	}
	if m := deleteFileRe.FindStringSubmatch(original); m != nil && fileWordRe.MatchString(lower) {
		return singleAction(types.ActionDeleteFile,
			map[string]any{"path": strings.TrimSpace(m[1])}, "delete a file")
	}
	if messageRe.MatchString(lower) {
		return singleAction(types.ActionSendMessage,
			map[string]any{"message": original}, "send a message")
	}
	if strings.Contains(lower, "contact") && strings.Contains(lower, "list") {
		return singleAction(types.ActionContactList, map[string]any{}, "list contacts")
	}
	if m := typeTextRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionTypeText,
			map[string]any{"text": strings.TrimSpace(m[1])}, "type text")
	}
	if m := closeAppRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionCloseApp,
			map[string]any{"app_name": strings.TrimSpace(m[1])}, "close an application")
	}
	if m := openAppRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionOpenApp,
			map[string]any{"app_name": strings.TrimSpace(m[1])}, "open an application")
	}
	if m := searchWebRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionSearchWeb,
			map[string]any{"query": strings.TrimSpace(m[1])}, "search the web")
	}

	return unknownCommand(original)
}

// parseOpenAndType splits "open X and type Y" into a three-step workflow
// with a short settle wait after the app launch.
func (p *RuleParser) parseOpenAndType(original string) (types.Command, bool) {
	m := openAndTypeRe.FindStringSubmatch(original)
	if m == nil {
		return types.Command{}, false
	}
	app := strings.TrimSpace(m[1])
	text := strings.TrimSpace(m[2])
	return types.Command{
		Action:     types.ActionOpenApp,
		Parameters: map[string]any{"app_name": app},
		Steps: []types.Action{
			{Kind: types.ActionOpenApp, Parameters: map[string]any{"app_name": app}},
			{Kind: types.ActionWait, Parameters: map[string]any{"seconds": 1}},
			{Kind: types.ActionTypeText, Parameters: map[string]any{"text": text}},
		},
		Description: fmt.Sprintf("open %s and type text", app),
		Confidence:  ruleConfidence,
	}, true
}

// parseTelephony handles dial_phone and call_contact. A phone-looking
// substring wins over a name; when several match, the leftmost is used.
func (p *RuleParser) parseTelephony(original, lower string) (types.Command, bool) {
	verb := callVerbRe.FindStringIndex(lower)
	if verb == nil {
		return types.Command{}, false
	}

	if number := phoneRe.FindString(original); number != "" {
		return singleAction(types.ActionDialPhone,
			map[string]any{"number": strings.TrimSpace(number)}, "dial a phone number"), true
	}

	name := extractContactName(original[verb[1]:])
	if name == "" {
		return types.Command{}, false
	}
	return singleAction(types.ActionCallContact,
		map[string]any{"contact_name": name}, "call a contact"), true
}

func (p *RuleParser) parseSpotify(original, lower string) (types.Command, bool) {
	switch {
	case strings.Contains(lower, "spotify"):
	case strings.HasPrefix(lower, "play music"), strings.HasPrefix(lower, "pause music"):
	default:
		return types.Command{}, false
	}

	if m := spotifyRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionSpotifySearch,
			map[string]any{"query": strings.TrimSpace(m[1])}, "search on spotify"), true
	}
	switch {
	case strings.Contains(lower, "next"), strings.Contains(lower, "skip"):
		return singleAction(types.ActionSpotifyNext, map[string]any{}, "next track"), true
	case strings.Contains(lower, "previous"), strings.Contains(lower, "back"):
		return singleAction(types.ActionSpotifyPrevious, map[string]any{}, "previous track"), true
	case strings.Contains(lower, "pause"), strings.Contains(lower, "stop"):
		return singleAction(types.ActionSpotifyPause, map[string]any{}, "pause playback"), true
	case strings.Contains(lower, "play"), strings.Contains(lower, "resume"):
		return singleAction(types.ActionSpotifyPlay, map[string]any{}, "resume playback"), true
	}
	return types.Command{}, false
}

func (p *RuleParser) parseWeather(original, lower string) (types.Command, bool) {
	if !strings.Contains(lower, "weather") {
		return types.Command{}, false
	}
	kind := types.ActionWeatherNow
	desc := "current weather"
	if strings.Contains(lower, "forecast") || strings.Contains(lower, "tomorrow") {
		kind = types.ActionWeatherForecast
		desc = "weather forecast"
	}
	params := map[string]any{}
	if m := weatherInRe.FindStringSubmatch(original); m != nil {
		params["city"] = strings.TrimSpace(m[1])
	}
	return singleAction(kind, params, desc), true
}

func (p *RuleParser) parseReminder(original, lower string) (types.Command, bool) {
	if strings.Contains(lower, "reminder") &&
		(strings.Contains(lower, "list") || strings.Contains(lower, "show") || strings.Contains(lower, "my")) {
		return singleAction(types.ActionReminderList, map[string]any{}, "list reminders"), true
	}
	if m := remindRe.FindStringSubmatch(original); m != nil {
		return singleAction(types.ActionReminderAdd,
			map[string]any{"message": strings.TrimSpace(m[1])}, "add a reminder"), true
	}
	return types.Command{}, false
}

// extractContactName cleans the text after a call verb down to a contact
// name. Stop words are removed on word boundaries; characters inside
// names are never touched.
func extractContactName(tail string) string {
	name := nameStopWordRe.ReplaceAllString(tail, " ")
	name = spaceRe.ReplaceAllString(name, " ")
	name = strings.Trim(name, " .,!?")
	return name
}

func singleAction(kind types.ActionKind, params map[string]any, description string) types.Command {
	return types.Command{
		Action:      kind,
		Parameters:  params,
		Steps:       []types.Action{},
		Description: description,
		Confidence:  ruleConfidence,
	}
}

func unknownCommand(description string) types.Command {
	return types.Command{
		Action:      types.ActionUnknown,
		Parameters:  map[string]any{},
		Steps:       []types.Action{},
		Description: description,
		Confidence:  0,
	}
}
