package main

import (
	"context"
	"log"
	"os"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/app"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/config"
	"github.com/VATSALVARSHNEY108/boi-mark2/internal/repl"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	a, err := app.New(context.Background())
	if err != nil {
		log.Fatalf("Failed to assemble assistant: %v", err)
	}
	defer a.Close()

	// The terminal doubles as the consent channel for guarded actions.
	r := repl.New(a.Assistant, os.Stdin, os.Stdout)
	a.Executor.SetConfirmer(r)

	if err := r.Run(context.Background()); err != nil {
		log.Fatalf("REPL failed: %v", err)
	}
}
