package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/authflow/pkg/domain"
)

// GraphOverlay contains dynamic run data to visualize on the graph.
type GraphOverlay struct {
	// Visited lists every state that appeared in the run's trajectory.
	Visited []domain.StateID
	// Active is the current configuration. For an NFA it may hold several states.
	Active []domain.StateID
}

// OverlayFromRun builds an overlay from a run snapshot.
func OverlayFromRun(run *domain.Run) *GraphOverlay {
	if run == nil {
		return nil
	}
	overlay := &GraphOverlay{Active: run.Configuration.States()}
	for _, c := range run.Trajectory {
		overlay.Visited = append(overlay.Visited, c.States()...)
	}
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart for an automaton definition.
// It applies semantic styling:
// - Initial: ((Circle))
// - Accepting: (((Double circle)))
// - Default: [Rectangle]
// Rules sharing a source and target are merged into one edge labelled with
// every symbol. Multi-target NFA rules fan out to one edge per target.
// It also applies overlay styles (Visited/Active) if provided.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, s := range def.States {
		opener, closer := "[", "]"
		switch {
		case def.IsAccepting(s):
			opener, closer = "(((", ")))"
		case s == def.Initial:
			opener, closer = "((", "))"
		}

		label := string(s)
		if l := def.Label(s); l != label {
			label = fmt.Sprintf("%s <br/> %s", s, l)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(string(s)), opener, escape(label), closer)
	}

	type edge struct{ from, to domain.StateID }
	var order []edge
	symbols := make(map[edge][]string)
	for _, t := range def.Transitions {
		for _, to := range t.To {
			e := edge{t.From, to}
			if _, ok := symbols[e]; !ok {
				order = append(order, e)
			}
			symbols[e] = append(symbols[e], string(t.On))
		}
	}
	for _, e := range order {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(string(e.from)),
			escape(strings.Join(symbols[e], ", ")),
			sanitizeMermaidID(string(e.to)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		active := make(map[string]bool)
		for _, s := range overlay.Active {
			active[sanitizeMermaidID(string(s))] = true
		}

		seen := make(map[string]bool)
		for _, s := range overlay.Visited {
			id := sanitizeMermaidID(string(s))
			if id == "" || seen[id] || active[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", id)
		}
		for _, s := range overlay.Active {
			fmt.Fprintf(&sb, "    class %s active;\n", sanitizeMermaidID(string(s)))
		}
	}

	return sb.String()
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
