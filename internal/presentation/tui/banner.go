package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintBanner writes the authflow ASCII banner to w.
// Nothing is printed when w is not a terminal, so piped output stays clean.
func PrintBanner(w io.Writer) {
	if !IsTerminal(w) {
		return
	}
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"              _   _      __ _               ", "#818cf8"},
		{"   __ _ _   _| |_| |__  / _| | _____      __", "#a78bfa"},
		{"  / _` | | | | __| '_ \\| |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{" | (_| | |_| | |_| | | |  _| | (_) \\ V  V / ", "#e879f9"},
		{"  \\__,_|\\__,_|\\__|_| |_|_| |_|\\___/ \\_/\\_/  ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
