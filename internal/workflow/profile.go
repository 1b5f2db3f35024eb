package workflow

import (
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// interestThreshold is how many commands on a topic it takes before the
// topic is promoted to an interest.
const interestThreshold = 3

// topicOf maps an action kind to the coarse topic it speaks about.
// Kinds without a personal topic (mouse moves, waits) return empty.
func topicOf(kind types.ActionKind) string {
	switch kind {
	case types.ActionSpotifyPlay, types.ActionSpotifyPause, types.ActionSpotifyNext,
		types.ActionSpotifyPrevious, types.ActionSpotifySearch:
		return "music"
	case types.ActionWeatherNow, types.ActionWeatherForecast:
		return "weather"
	case types.ActionGenerateLetter:
		return "writing"
	case types.ActionDialPhone, types.ActionCallContact, types.ActionSendMessage,
		types.ActionContactAdd, types.ActionContactList, types.ActionContactGet:
		return "people"
	case types.ActionReminderAdd, types.ActionReminderList:
		return "planning"
	case types.ActionSearchWeb:
		return "research"
	}
	return ""
}

// observeInteraction folds one understood utterance into the profile:
// topic counts, promoted interests, and the formality/humor sliders.
func observeInteraction(p *types.UserProfile, utterance string, kind types.ActionKind) {
	if p.TopicCounts == nil {
		p.TopicCounts = make(map[string]int)
	}
	if topic := topicOf(kind); topic != "" {
		p.TopicCounts[topic]++
		if p.TopicCounts[topic] >= interestThreshold && !hasInterest(p, topic) {
			p.Interests = append(p.Interests, topic)
		}
	}

	lower := strings.ToLower(utterance)
	if strings.Contains(lower, "please") || strings.Contains(lower, "kindly") {
		p.Formality = clamp01(p.Formality + 0.05)
	}
	if strings.Contains(lower, "haha") || strings.Contains(lower, "lol") ||
		strings.Contains(lower, "joke") || strings.Contains(lower, "funny") {
		p.Humor = clamp01(p.Humor + 0.05)
	}
}

func hasInterest(p *types.UserProfile, topic string) bool {
	for _, interest := range p.Interests {
		if interest == topic {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
