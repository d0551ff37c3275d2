package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/civicflow/pkg/agent"
)

// printSystemMessage prints a standardized system message.
func printSystemMessage(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, ">>> %s\n", fmt.Sprintf(format, args...))
}

// PrintResult writes a flow result. Raw writes the result as indented JSON;
// otherwise the answer (or formatted rows) is rendered followed by the SQL,
// the map artifact and the run summary.
func PrintResult(out io.Writer, res *agent.Result, render func(string) (string, error), raw bool) error {
	if res == nil {
		return nil
	}
	if raw {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	body := res.Answer
	if body == "" {
		body = res.Formatted
	}
	if render != nil {
		if rendered, err := render(body); err == nil {
			body = rendered
		}
	}
	fmt.Fprintln(out, body)

	if res.SQL != "" {
		fmt.Fprintf(out, "\nSQL (%s):\n%s\n", res.Mode, res.SQL)
	}
	if res.MapFile != "" {
		printSystemMessage(out, "Map written to %s", res.MapFile)
	}
	if res.Summary.Time > 0 || res.Summary.Tokens > 0 {
		printSystemMessage(out, "Time: %.2fs | Tokens: %d | Cost: $%.4f",
			res.Summary.Time.Seconds(), res.Summary.Tokens, res.Summary.Cost)
	}
	return nil
}
