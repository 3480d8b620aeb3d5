package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// When styled is false (e.g. output is piped), the markdown is returned untouched.
func NewRenderer(styled bool) func(string) (string, error) {
	if !styled {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// DescribeMarkdown renders a definition as a markdown document: a summary,
// the state list and the transition table (one row per state, one column per
// symbol; empty cells are undefined transitions).
func DescribeMarkdown(def *domain.Definition) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", def.Name)
	if def.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", def.Description)
	}
	fmt.Fprintf(&sb, "- **Mode:** %s\n", def.Mode)
	fmt.Fprintf(&sb, "- **Initial:** %s\n", def.Initial)
	fmt.Fprintf(&sb, "- **Accepting:** %s\n\n", joinStates(def.Accepting))

	symbols := def.Symbols()
	sb.WriteString("## Transitions\n\n")
	sb.WriteString("| State |")
	for _, sym := range symbols {
		fmt.Fprintf(&sb, " %s |", sym)
	}
	sb.WriteString("\n|---|")
	for range symbols {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	targets := make(map[domain.StateID]map[domain.Symbol][]domain.StateID)
	for _, t := range def.Transitions {
		if targets[t.From] == nil {
			targets[t.From] = make(map[domain.Symbol][]domain.StateID)
		}
		targets[t.From][t.On] = append(targets[t.From][t.On], t.To...)
	}

	for _, s := range def.States {
		name := string(s)
		if l := def.Label(s); l != name {
			name = fmt.Sprintf("%s (%s)", s, l)
		}
		if s == def.Initial {
			name = "→ " + name
		}
		if def.IsAccepting(s) {
			name = "**" + name + "**"
		}
		fmt.Fprintf(&sb, "| %s |", name)
		for _, sym := range symbols {
			to := targets[s][sym]
			cell := ""
			switch {
			case len(to) == 0:
			case def.Mode == domain.Deterministic:
				cell = string(to[0])
			default:
				cell = domain.NewConfiguration(to...).String()
			}
			fmt.Fprintf(&sb, " %s |", cell)
		}
		sb.WriteString("\n")
	}

	if len(def.Scenarios) > 0 {
		sb.WriteString("\n## Scenarios\n\n")
		names := make([]string, 0, len(def.Scenarios))
		for name := range def.Scenarios {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "- `%s`: %s\n", name, strings.Join(def.Scenarios[name].Strings(), ", "))
		}
	}

	return sb.String()
}

func joinStates(states []domain.StateID) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
