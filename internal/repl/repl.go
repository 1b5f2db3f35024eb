package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/VATSALVARSHNEY108/boi-mark2/internal/workflow"
)

var exitWords = map[string]bool{
	"quit": true,
	"exit": true,
	"bye":  true,
	"stop": true,
}

// REPL is the interactive terminal surface. It also serves as the
// consent channel: confirmation prompts are answered on the same
// terminal the commands come from.
type REPL struct {
	assistant *workflow.Assistant
	in        *bufio.Reader
	out       io.Writer
}

func New(assistant *workflow.Assistant, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		assistant: assistant,
		in:        bufio.NewReader(in),
		out:       out,
	}
}

// Confirm asks the user to approve a guarded action. Anything other
// than an explicit yes declines.
func (r *REPL) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(r.out, "%s [y/N]: ", prompt)
	line, err := r.in.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Run reads commands until EOF or an exit word.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "Assistant ready. Type a command, or 'exit' to leave.")

	for {
		fmt.Fprint(r.out, "> ")
		line, err := r.in.ReadString('\n')
		if err == io.EOF {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if exitWords[strings.ToLower(input)] {
			fmt.Fprintln(r.out, "Goodbye!")
			return nil
		}

		resp := r.assistant.Process(ctx, input)
		if resp == nil {
			continue
		}
		fmt.Fprintln(r.out, resp.Text)
		if resp.MoodHint != "" && resp.MoodHint != "stable" {
			fmt.Fprintf(r.out, "(mood: %s)\n", resp.MoodHint)
		}
	}
}
