// Package context holds process-wide conversational state: recent turns,
// executed actions, emotion history, and the user profile. The store is
// the single writer; everything else reads snapshots.
package context

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

const snapshotKey = "context:snapshot"

// ExecutedAction pairs an action with its result for the action history.
type ExecutedAction struct {
	Action types.Action           `json:"action"`
	Result *types.ExecutionResult `json:"result"`
	At     time.Time              `json:"at"`
}

// snapshot is the persisted form of the conversation state. The user
// profile is persisted separately through the profile store.
type snapshot struct {
	Turns    []types.ConversationTurn `json:"turns"`
	Actions  []ExecutedAction         `json:"actions"`
	Emotions []types.EmotionLabel     `json:"emotions"`
	SavedAt  time.Time                `json:"saved_at"`
}

// Store is the bounded conversational context. Mutation happens only
// through AppendTurn and AppendAction; readers get copies.
type Store struct {
	mu          sync.RWMutex
	turns       []types.ConversationTurn
	actions     []ExecutedAction
	emotions    []types.EmotionLabel
	profile     *types.UserProfile
	maxTurns    int
	maxActions  int
	maxEmotions int
	kv          *store.KV
	profiles    *store.ProfileStore
}

// NewStore builds a context store bounded at maxTurns conversation turns,
// maxActions executed actions, and maxEmotions emotion labels. When kv is
// non-nil the most recent snapshot is loaded; otherwise the store starts
// empty.
func NewStore(kv *store.KV, maxTurns, maxActions, maxEmotions int) (*Store, error) {
	s := &Store{
		maxTurns:    maxTurns,
		maxActions:  maxActions,
		maxEmotions: maxEmotions,
		profile:     types.NewUserProfile(),
		kv:          kv,
	}
	if kv == nil {
		return s, nil
	}

	s.profiles = store.NewProfileStore(kv)
	profile, err := s.profiles.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	s.profile = profile

	var snap snapshot
	found, err := kv.GetJSON(snapshotKey, &snap)
	if err != nil {
		return nil, fmt.Errorf("failed to load context snapshot: %w", err)
	}
	if found {
		s.turns = snap.Turns
		s.actions = snap.Actions
		s.emotions = snap.Emotions
		s.trimLocked()
	}
	return s, nil
}

// AppendTurn records one conversation turn. A tagged emotion on the turn
// also extends the emotion history.
func (s *Store) AppendTurn(turn types.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.At.IsZero() {
		turn.At = time.Now()
	}
	s.turns = append(s.turns, turn)
	if turn.Emotion != nil {
		s.emotions = append(s.emotions, *turn.Emotion)
	}
	s.trimLocked()
}

// AppendAction records an executed action with its result.
func (s *Store) AppendAction(action types.Action, result *types.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions = append(s.actions, ExecutedAction{Action: action, Result: result, At: time.Now()})
	s.trimLocked()
}

func (s *Store) trimLocked() {
	if n := len(s.turns) - s.maxTurns; n > 0 {
		s.turns = append([]types.ConversationTurn(nil), s.turns[n:]...)
	}
	if n := len(s.actions) - s.maxActions; n > 0 {
		s.actions = append([]ExecutedAction(nil), s.actions[n:]...)
	}
	if n := len(s.emotions) - s.maxEmotions; n > 0 {
		s.emotions = append([]types.EmotionLabel(nil), s.emotions[n:]...)
	}
}

// Turns returns a copy of the conversation history, oldest first.
func (s *Store) Turns() []types.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.ConversationTurn(nil), s.turns...)
}

// RecentActions returns a copy of the executed-action history.
func (s *Store) RecentActions() []ExecutedAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ExecutedAction(nil), s.actions...)
}

// Emotions returns a copy of the emotion history.
func (s *Store) Emotions() []types.EmotionLabel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.EmotionLabel(nil), s.emotions...)
}

// Profile returns a copy of the user profile.
func (s *Store) Profile() types.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.profile
}

// SetProfile replaces the stored profile and persists it.
func (s *Store) SetProfile(p types.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &p
	s.saveProfileLocked()
}

// UpdateProfile applies fn to the profile under the write lock and
// persists the result.
func (s *Store) UpdateProfile(fn func(*types.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.profile)
	s.saveProfileLocked()
}

func (s *Store) saveProfileLocked() {
	if s.profiles == nil {
		return
	}
	if err := s.profiles.Save(s.profile); err != nil {
		log.Printf("Failed to persist profile: %v", err)
	}
}

// MoodTrend derives the mood direction from the last five emotion
// entries. Fewer than three entries reads as stable.
func (s *Store) MoodTrend() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.emotions) < 3 {
		return "stable"
	}
	recent := s.emotions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	var positive, negative int
	var total float64
	for _, e := range recent {
		total += e.Intensity
		switch e.Name {
		case types.EmotionHappy, types.EmotionMotivated, types.EmotionGrateful:
			positive++
		case types.EmotionSad, types.EmotionAngry, types.EmotionAnxious, types.EmotionTired:
			negative++
		}
	}
	avg := total / float64(len(recent))

	switch {
	case positive > negative && avg > 0.6:
		return "improving"
	case positive > negative:
		return "positive"
	case negative > positive && avg > 0.6:
		return "declining"
	case negative > positive:
		return "challenging"
	default:
		return "stable"
	}
}

// Snapshot persists the current state to the key-value store. It is a
// no-op without a backing store.
func (s *Store) Snapshot() error {
	if s.kv == nil {
		return nil
	}
	s.mu.RLock()
	snap := snapshot{
		Turns:    append([]types.ConversationTurn(nil), s.turns...),
		Actions:  append([]ExecutedAction(nil), s.actions...),
		Emotions: append([]types.EmotionLabel(nil), s.emotions...),
		SavedAt:  time.Now(),
	}
	s.mu.RUnlock()

	if err := s.kv.PutJSON(snapshotKey, &snap); err != nil {
		return fmt.Errorf("failed to save context snapshot: %w", err)
	}
	return nil
}
