package parser

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// keywordIntensity is the flat intensity assigned by the keyword
// fallback; only the LLM produces graded intensities.
const keywordIntensity = 0.6

// emotionKeywords is checked in order so detection is deterministic.
// Entries are substring stems, so "frustrat" covers frustrated and
// frustrating alike.
var emotionKeywords = []struct {
	name     string
	keywords []string
}{
	{types.EmotionHappy, []string{"happy", "joy", "excited", "enthusiastic", "pleased", "satisfied", "cheerful"}},
	{types.EmotionSad, []string{"sad", "unhappy", "disappointed", "down", "depressed", "upset", "hurt"}},
	{types.EmotionAngry, []string{"angry", "frustrat", "annoy", "irritat", "mad", "furious", "rage"}},
	{types.EmotionAnxious, []string{"anxious", "worried", "nervous", "stressed", "concerned", "tense", "uneasy"}},
	{types.EmotionConfused, []string{"confused", "puzzled", "uncertain", "lost", "bewildered", "perplexed"}},
	{types.EmotionTired, []string{"tired", "exhausted", "weary", "fatigued", "drained", "sleepy", "burned out"}},
	{types.EmotionMotivated, []string{"motivated", "determined", "inspired", "driven", "ambitious", "energized"}},
	{types.EmotionGrateful, []string{"grateful", "thankful", "appreciative", "blessed", "thanks", "thank you"}},
}

const emotionSystemPrompt = `You classify the emotional tone of one user message.
Respond with JSON only: {"primary_emotion": "<name>", "intensity": 0.0-1.0}.
Valid names: happy, sad, angry, anxious, confused, tired, motivated, grateful, neutral.`

// EmotionTagger labels utterances with an emotion. The LLM is an
// enrichment only; when it is absent or fails the keyword tables decide.
type EmotionTagger struct {
	llm Generator
}

func NewEmotionTagger(llm Generator) *EmotionTagger {
	return &EmotionTagger{llm: llm}
}

// Tag returns the emotion label for an utterance. It never fails; the
// worst case is a neutral label.
func (t *EmotionTagger) Tag(ctx context.Context, utterance string) types.EmotionLabel {
	if t.llm != nil && t.llm.Enabled() {
		if label, ok := t.tagWithLLM(ctx, utterance); ok {
			return label
		}
	}
	return tagWithKeywords(utterance)
}

func (t *EmotionTagger) tagWithLLM(ctx context.Context, utterance string) (types.EmotionLabel, bool) {
	raw, err := t.llm.GenerateJSON(ctx, emotionSystemPrompt, utterance)
	if err != nil {
		return types.EmotionLabel{}, false
	}

	var parsed struct {
		Primary   string  `json:"primary_emotion"`
		Intensity float64 `json:"intensity"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); err != nil {
		return types.EmotionLabel{}, false
	}
	if !validEmotion(parsed.Primary) {
		return types.EmotionLabel{}, false
	}
	if parsed.Intensity < 0 || parsed.Intensity > 1 {
		parsed.Intensity = keywordIntensity
	}
	return types.EmotionLabel{Name: parsed.Primary, Intensity: parsed.Intensity}, true
}

func tagWithKeywords(utterance string) types.EmotionLabel {
	lower := strings.ToLower(utterance)
	for _, entry := range emotionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return types.EmotionLabel{Name: entry.name, Intensity: keywordIntensity}
			}
		}
	}
	return types.EmotionLabel{Name: types.EmotionNeutral, Intensity: 0.5}
}

func validEmotion(name string) bool {
	switch name {
	case types.EmotionHappy, types.EmotionSad, types.EmotionAngry, types.EmotionAnxious,
		types.EmotionConfused, types.EmotionTired, types.EmotionMotivated,
		types.EmotionGrateful, types.EmotionNeutral:
		return true
	}
	return false
}
