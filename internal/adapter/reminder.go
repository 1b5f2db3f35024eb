package adapter

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
	"github.com/VATSALVARSHNEY108/boi-mark2/pkg/types"
)

// Triggered reminders this old are dropped from the store on startup.
const reminderRetention = 7 * 24 * time.Hour

// Notifier receives a reminder message when its timer fires. The
// pipeline registers itself here so reminders flow back through it as
// ordinary input instead of mutating shared state from a goroutine.
type Notifier func(message string)

// Reminder schedules one-shot reminders. Pending reminders are persisted
// and re-armed on startup.
type Reminder struct {
	mu     sync.Mutex
	store  *store.ReminderStore
	notify Notifier
	timers map[string]*time.Timer
	now    func() time.Time
}

func NewReminder(s *store.ReminderStore, notify Notifier) *Reminder {
	if notify == nil {
		notify = func(message string) { log.Printf("Reminder: %s", message) }
	}
	return &Reminder{
		store:  s,
		notify: notify,
		timers: make(map[string]*time.Timer),
		now:    time.Now,
	}
}

// Register wires the reminder action kinds into the set.
func (r *Reminder) Register(s *Set) {
	s.RegisterFunc(types.ActionReminderAdd, r.Add)
	s.RegisterFunc(types.ActionReminderList, r.List)
}

// Rearm schedules timers for reminders that were pending at shutdown.
// Overdue reminders fire immediately.
func (r *Reminder) Rearm() error {
	if pruned, err := r.store.Prune(reminderRetention); err != nil {
		log.Printf("Failed to prune old reminders: %v", err)
	} else if pruned > 0 {
		log.Printf("Pruned %d old reminders", pruned)
	}

	pending, err := r.store.Pending()
	if err != nil {
		return fmt.Errorf("failed to load pending reminders: %w", err)
	}
	for _, rem := range pending {
		r.arm(rem)
	}
	if len(pending) > 0 {
		log.Printf("Re-armed %d pending reminders", len(pending))
	}
	return nil
}

// Stop cancels all armed timers.
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, timer := range r.timers {
		timer.Stop()
		delete(r.timers, id)
	}
}

// Add schedules a reminder. "delay_minutes" sets a relative due time;
// "time" accepts HH:MM for the next occurrence of that wall-clock time.
// With neither, the reminder is due in one hour.
func (r *Reminder) Add(_ context.Context, action types.Action) *types.ExecutionResult {
	message, _ := action.StringParam("message")

	due := r.now().Add(time.Hour)
	if minutes, ok := action.IntParam("delay_minutes"); ok && minutes > 0 {
		due = r.now().Add(time.Duration(minutes) * time.Minute)
	} else if clock, ok := action.StringParam("time"); ok && clock != "" {
		parsed, err := r.nextClock(clock)
		if err != nil {
			return types.Fail(types.ErrInvalidParams, err.Error())
		}
		due = parsed
	}

	rem, err := r.store.Add(message, due)
	if err != nil {
		return types.Fail(types.ErrInternal, fmt.Sprintf("failed to save reminder: %v", err))
	}
	r.arm(*rem)

	return types.OkData(fmt.Sprintf("Reminder set for %s", due.Format("15:04")), map[string]any{
		"id": rem.ID,
		"at": due.Format(time.RFC3339),
	})
}

// nextClock resolves HH:MM to the next time that wall-clock occurs.
func (r *Reminder) nextClock(clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be HH:MM, got %q", clock)
	}
	now := r.now()
	due := time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if !due.After(now) {
		due = due.Add(24 * time.Hour)
	}
	return due, nil
}

func (r *Reminder) arm(rem store.Reminder) {
	delay := time.Until(rem.At)
	if delay < 0 {
		delay = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := rem.ID
	message := rem.Message
	r.timers[id] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, id)
		r.mu.Unlock()

		if err := r.store.MarkTriggered(id); err != nil {
			log.Printf("Failed to mark reminder %s triggered: %v", id, err)
		}
		r.notify(message)
	})
}

// List reports all reminders, flagging the ones still pending.
func (r *Reminder) List(_ context.Context, _ types.Action) *types.ExecutionResult {
	all, err := r.store.List()
	if err != nil {
		return types.Fail(types.ErrInternal, fmt.Sprintf("failed to list reminders: %v", err))
	}
	if len(all) == 0 {
		return types.OkData("No reminders set", map[string]any{"reminders": []map[string]any{}})
	}

	var b strings.Builder
	items := make([]map[string]any, 0, len(all))
	for _, rem := range all {
		status := "pending"
		if rem.Triggered {
			status = "done"
		}
		fmt.Fprintf(&b, "%s - %s (%s)\n", rem.At.Format("Jan 2 15:04"), rem.Message, status)
		items = append(items, map[string]any{
			"id": rem.ID, "message": rem.Message,
			"at": rem.At.Format(time.RFC3339), "status": status,
		})
	}
	return types.OkData(strings.TrimSpace(b.String()), map[string]any{"reminders": items})
}
