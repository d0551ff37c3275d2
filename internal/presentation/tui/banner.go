package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the chat banner, colored when out supports it.
func PrintBanner(out io.Writer, version string) {
	o := termenv.NewOutput(out)
	lines := []struct {
		text  string
		color string
	}{
		{`       _       _         __ _`, "#38bdf8"},
		{`   ___(_)_   _(_) ___   / _| | _____      __`, "#22d3ee"},
		{`  / __| \ \ / / |/ __| | |_| |/ _ \ \ /\ / /`, "#2dd4bf"},
		{` | (__| |\ V /| | (__  |  _| | (_) \ V  V /`, "#34d399"},
		{`  \___|_| \_/ |_|\___| |_| |_|\___/ \_/\_/`, "#4ade80"},
	}

	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, o.String(l.text).Foreground(o.Color(l.color)))
	}
	fmt.Fprintln(out, o.String(fmt.Sprintf("  civic incident Q&A  v%s", version)).Faint())
	fmt.Fprintln(out)
}
