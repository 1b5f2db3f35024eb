package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const reminderPrefix = "reminder:"

// Reminder is a scheduled note that fires once.
type Reminder struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
	Triggered bool      `json:"triggered"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderStore persists reminders so pending ones survive a restart.
type ReminderStore struct {
	mu sync.Mutex
	kv *KV
}

func NewReminderStore(kv *KV) *ReminderStore {
	return &ReminderStore{kv: kv}
}

// Add schedules a reminder for at.
func (s *ReminderStore) Add(message string, at time.Time) (*Reminder, error) {
	if message == "" {
		return nil, fmt.Errorf("reminder message is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Reminder{
		ID:        uuid.New().String(),
		Message:   message,
		At:        at,
		CreatedAt: time.Now(),
	}
	if err := s.kv.PutJSON(reminderPrefix+r.ID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MarkTriggered records that a reminder has fired.
func (s *ReminderStore) MarkTriggered(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r Reminder
	found, err := s.kv.GetJSON(reminderPrefix+id, &r)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("reminder %s not found", id)
	}
	r.Triggered = true
	return s.kv.PutJSON(reminderPrefix+id, &r)
}

// List returns all reminders ordered by due time.
func (s *ReminderStore) List() ([]Reminder, error) {
	var out []Reminder
	err := s.kv.Scan(reminderPrefix, func(_ string, value []byte) error {
		var r Reminder
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

// Prune removes triggered reminders that fired before the cutoff so the
// list does not accumulate forever. It returns how many were removed.
func (s *ReminderStore) Prune(olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var stale []string
	err := s.kv.Scan(reminderPrefix, func(key string, value []byte) error {
		var r Reminder
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		if r.Triggered && r.At.Before(cutoff) {
			stale = append(stale, key)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, key := range stale {
		if err := s.kv.Delete(key); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// Pending returns reminders that have not fired yet.
func (s *ReminderStore) Pending() ([]Reminder, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Reminder
	for _, r := range all {
		if !r.Triggered {
			out = append(out, r)
		}
	}
	return out, nil
}
