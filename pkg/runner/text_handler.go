package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/muesli/termenv"
)

// TextHandler implements the standard text-based interface.
// Colours follow the terminal profile of Writer, so output written to a file
// or a buffer stays plain.
type TextHandler struct {
	Writer io.Writer

	out    *termenv.Output
	labels func(domain.StateID) string
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithLabels prints state labels next to state IDs, e.g. "Q1 (showingForm)".
func WithLabels(def *domain.Definition) TextHandlerOption {
	return func(h *TextHandler) {
		h.labels = def.Label
	}
}

// WithProfile forces a colour profile, e.g. termenv.Ascii to disable colours.
func WithProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.out = termenv.NewOutput(h.Writer, termenv.WithProfile(p))
	}
}

// NewTextHandler creates a handler for standard text output.
func NewTextHandler(w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Writer: w,
		out:    termenv.NewOutput(w),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) Start(ctx context.Context, run *domain.Run) error {
	_, err := fmt.Fprintf(h.Writer, "%s %s (%s) run %s\n  input: %s\n  start: %s\n",
		h.out.String("▶").Bold(),
		run.Automaton, run.Mode, run.ID,
		strings.Join(run.Sequence.Strings(), ", "),
		h.config(run.Configuration),
	)
	return err
}

func (h *TextHandler) Frame(ctx context.Context, f Frame) error {
	symbol := h.out.String(string(f.Symbol)).Foreground(h.out.Color("#60a5fa"))
	to := h.config(f.To)
	switch {
	case f.Dead():
		to = h.out.String(to).Foreground(h.out.Color("#f87171")).String() + " (no valid continuation)"
	case f.Accepted:
		to = h.out.String(to).Foreground(h.out.Color("#4ade80")).Bold().String()
	}
	_, err := fmt.Fprintf(h.Writer, "  [%d/%d] %s: %s -> %s\n", f.Step, f.Total, symbol, h.config(f.From), to)
	return err
}

func (h *TextHandler) Finish(ctx context.Context, run *domain.Run) error {
	outcome := Outcome(run)
	style := h.out.String(strings.ToUpper(outcome)).Bold()
	switch outcome {
	case "accepted":
		style = style.Foreground(h.out.Color("#4ade80"))
	case "cancelled":
		style = style.Foreground(h.out.Color("#facc15"))
	default:
		style = style.Foreground(h.out.Color("#f87171"))
	}
	_, err := fmt.Fprintf(h.Writer, "%s after %d/%d symbols, final configuration %s\n",
		style, run.Cursor, len(run.Sequence), h.config(run.Configuration))
	return err
}

func (h *TextHandler) config(c domain.Configuration) string {
	if h.labels == nil {
		return c.String()
	}
	parts := make([]string, 0, c.Len())
	for _, s := range c.States() {
		if l := h.labels(s); l != string(s) {
			parts = append(parts, fmt.Sprintf("%s (%s)", s, l))
		} else {
			parts = append(parts, string(s))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
