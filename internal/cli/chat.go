package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/civicflow/pkg/agent"
)

// Asker answers one question.
type Asker interface {
	Ask(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// ChatOptions tunes the interactive loop.
type ChatOptions struct {
	Table  string
	NoMap  bool
	Render func(string) (string, error)
}

// Chat reads one question per line from in and answers each on out until EOF,
// "exit", "quit" or ctx is done. A failed question is reported and the loop goes on.
func Chat(ctx context.Context, in io.Reader, out io.Writer, asker Asker, opts ChatOptions) error {
	scanner := bufio.NewScanner(in)
	printSystemMessage(out, "Ask about incidents and service requests. Type 'exit' to quit.")

	for {
		if ctx.Err() != nil {
			printSystemMessage(out, "Interrupted.")
			return nil
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			printSystemMessage(out, "Bye!")
			return nil
		}

		res, err := asker.Ask(ctx, agent.Request{Question: line, Table: opts.Table, NoMap: opts.NoMap})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				printSystemMessage(out, "Interrupted.")
				return nil
			}
			printSystemMessage(out, "Error: %v", err)
			continue
		}
		if err := PrintResult(out, res, opts.Render, false); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}
