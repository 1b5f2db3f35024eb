// Package app assembles the assistant from its parts. Both entrypoints
// (HTTP server and terminal) share this wiring.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/adapter"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/config"
	appctx "github.com/VATSALVARSHNEY108/boi-mark2/internal/context"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/executor"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/gemini"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/parser"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/registry"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/security"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/store"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/workflow"
)

// App holds the assembled assistant and the resources it owns.
type App struct {
	KV        *store.KV
	Store     *appctx.Store
	Registry  *registry.Registry
	Executor  *executor.Executor
	Assistant *workflow.Assistant
	Reminders *adapter.Reminder
	Contacts  *store.ContactStore
}

// New builds the full pipeline from AppConfig. config.Load must have
// been called first.
func New(ctx context.Context) (*App, error) {
	cfg := config.AppConfig

	kv, err := store.Open(cfg.DataPath)
	if err != nil {
		return nil, err
	}

	ctxStore, err := appctx.NewStore(kv, cfg.MaxTurns, cfg.MaxActions, cfg.MaxEmotions)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to restore context: %w", err)
	}

	reg := registry.New()

	llm, err := gemini.NewClient(ctx)
	if err != nil {
		kv.Close()
		return nil, err
	}

	arbiter, err := security.NewArbiter(reg, cfg.SafetyPolicyPath, cfg.EnableSafeMode)
	if err != nil {
		kv.Close()
		return nil, err
	}

	contacts := store.NewContactStore(kv)
	calibration := store.NewCalibrationStore(kv)
	if cfg.PhoneDialButton != "" {
		if err := calibration.SeedDialButton(cfg.PhoneDialButton); err != nil {
			log.Printf("Ignoring PHONE_DIAL_BUTTON: %v", err)
		}
	}
	reminderStore := store.NewReminderStore(kv)

	adapters := adapter.NewSet()
	adapter.NewDesktop().Register(adapters)
	adapter.NewPhone(adapter.NewDesktopDialSurface(calibration), contacts).Register(adapters)
	adapter.NewSpotify().Register(adapters)
	adapter.NewLetter(ctxStore.Profile().DisplayName, llm).Register(adapters)
	adapter.NewWeather().Register(adapters)
	adapter.NewContacts(contacts).Register(adapters)

	// Fired reminders are fed back through the assistant so the turn
	// history records them. The assistant does not exist yet when the
	// reminder adapter is built, hence the indirection.
	var assistant *workflow.Assistant
	reminders := adapter.NewReminder(reminderStore, func(message string) {
		log.Printf("Reminder: %s", message)
		if assistant != nil {
			assistant.Notify("Reminder: " + message)
		}
	})
	reminders.Register(adapters)

	adapter.RegisterBuiltins(adapters)

	exec := executor.New(reg, arbiter, adapters, cfg.InterStepDelay)

	assistant = workflow.NewAssistant(
		reg,
		parser.NewLLMParser(llm, reg),
		parser.NewRuleParser(),
		parser.NewEmotionTagger(llm),
		exec,
		ctxStore,
		cfg.LLMConfidenceFloor,
	)

	if err := reminders.Rearm(); err != nil {
		log.Printf("Failed to re-arm reminders: %v", err)
	}

	return &App{
		KV:        kv,
		Store:     ctxStore,
		Registry:  reg,
		Executor:  exec,
		Assistant: assistant,
		Reminders: reminders,
		Contacts:  contacts,
	}, nil
}

// Close persists the context and releases resources.
func (a *App) Close() {
	a.Reminders.Stop()
	if err := a.Store.Snapshot(); err != nil {
		log.Printf("Failed to snapshot context: %v", err)
	}
	if err := a.KV.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}
