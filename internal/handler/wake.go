package handler

import "strings"

// Wake words accepted over the voice channel. Matching is exact-prefix:
// the utterance must begin with one of these, optionally followed by
// punctuation and the actual command. Substring matches are rejected so
// ordinary conversation does not trigger the assistant.
var wakeWords = []string{
	"hey vatsal",
	"ok vatsal",
	"vatsal",
	"computer",
}

// StripWakeWord returns the command after a leading wake word and true,
// or the input unchanged and false when no wake word leads it. A bare
// wake word yields an empty command and true.
func StripWakeWord(utterance string) (string, bool) {
	trimmed := strings.TrimSpace(utterance)
	lower := strings.ToLower(trimmed)

	for _, wake := range wakeWords {
		if !strings.HasPrefix(lower, wake) {
			continue
		}
		rest := trimmed[len(wake):]
		if rest == "" {
			return "", true
		}
		// Require a separator so "vatsalina" does not wake.
		switch rest[0] {
		case ' ', ',', ':', '.', '!', '?':
			return strings.TrimLeft(rest, " ,:.!?"), true
		}
	}
	return trimmed, false
}
