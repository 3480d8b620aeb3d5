package runner

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/aretw0/authflow/pkg/domain"
)

// Event is one line of JSONHandler output.
type Event struct {
	Type    string      `json:"type"` // start, tick or finish
	Run     *domain.Run `json:"run,omitempty"`
	Frame   *Frame      `json:"frame,omitempty"`
	Outcome string      `json:"outcome,omitempty"`
}

// JSONHandler implements the Handler interface as JSON-Lines (NDJSON).
type JSONHandler struct {
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON output.
func NewJSONHandler(w io.Writer) *JSONHandler {
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Start(ctx context.Context, run *domain.Run) error {
	return h.Encoder.Encode(Event{Type: "start", Run: run})
}

func (h *JSONHandler) Frame(ctx context.Context, f Frame) error {
	return h.Encoder.Encode(Event{Type: "tick", Frame: &f})
}

func (h *JSONHandler) Finish(ctx context.Context, run *domain.Run) error {
	return h.Encoder.Encode(Event{Type: "finish", Run: run, Outcome: Outcome(run)})
}
