package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/civicflow/pkg/domain"
)

// Overlay carries the state of one execution to highlight on the graph.
type Overlay struct {
	// Path is the execution path, in order. Repeated steps are styled once.
	Path []string
	// Failed is the step that returned an error, if any.
	Failed string
}

// GenerateMermaid produces a Mermaid flowchart from a flow description.
// Shapes:
// - Start step (first registered): ((Circle))
// - Terminal step (no outgoing edges): ([Stadium])
// - Transition target that is not registered: {{Hexagon}}, styled as missing
// - Default: [Rectangle]
// Edges carry their outcome label unless it is the default one.
func GenerateMermaid(flow domain.FlowDescription, overlay *Overlay) string {
	var sb strings.Builder
	if flow.Name != "" {
		fmt.Fprintf(&sb, "---\ntitle: %s\n---\n", flow.Name)
	}
	sb.WriteString("graph TD\n")

	outgoing := make(map[string]int)
	for _, t := range flow.Transitions {
		outgoing[t.From]++
	}

	for i, step := range flow.Steps {
		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case outgoing[step] == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeID(step), opener, step, closer)
	}

	var missing []string
	for _, t := range flow.Transitions {
		if !slices.Contains(flow.Steps, t.To) && !slices.Contains(missing, t.To) {
			missing = append(missing, t.To)
			fmt.Fprintf(&sb, "    %s{{\"%s\"}}\n", sanitizeID(t.To), t.To)
		}
	}

	for _, t := range flow.Transitions {
		arrow := "-->"
		if label := t.Label.Normalize(); label != domain.OutcomeDefault {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(string(label), "\"", "'"))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeID(t.From), arrow, sanitizeID(t.To))
	}

	if len(missing) > 0 {
		sb.WriteString("\n    classDef missing fill:#ffebee,stroke:#c62828,stroke-dasharray:5 5,color:#000;\n")
		for _, id := range missing {
			fmt.Fprintf(&sb, "    class %s missing;\n", sanitizeID(id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Execution overlay\n")
		// Black text keeps labels readable on both themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, step := range overlay.Path {
			id := sanitizeID(step)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		if overlay.Failed != "" {
			fmt.Fprintf(&sb, "    class %s failed;\n", sanitizeID(overlay.Failed))
		}
	}

	return sb.String()
}

func sanitizeID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
