package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/authflow/pkg/domain"
)

var (
	// DefaultMaxSymbols bounds how many symbols one input sequence may hold.
	DefaultMaxSymbols = 512
	// EnvMaxSymbols overrides DefaultMaxSymbols.
	EnvMaxSymbols = "AUTHFLOW_MAX_SYMBOLS"
	// MaxSymbolLength bounds a single symbol, in runes.
	MaxSymbolLength = 64
)

var (
	ErrTooManySymbols = errors.New("input holds too many symbols")
	ErrSymbolTooLong  = errors.New("symbol exceeds maximum length")
	ErrInvalidUTF8    = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput validates UTF-8 and strips control characters other than the
// whitespace separators (\n, \t, \r), so symbols cannot smuggle ANSI escapes
// into logs or the terminal.
func SanitizeInput(input string) (string, error) {
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if isUnsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

// ParseInput sanitizes raw, splits it into symbols and enforces the sequence limits.
func ParseInput(raw string) (domain.InputSequence, error) {
	clean, err := SanitizeInput(raw)
	if err != nil {
		return nil, err
	}
	seq := domain.ParseSequence(strings.ReplaceAll(clean, "\r", " "))
	if err := CheckSequence(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// CheckSequence enforces the symbol count and symbol length limits.
// Oversized sequences are rejected rather than truncated so a run never sees
// half of its input.
func CheckSequence(seq domain.InputSequence) error {
	if limit := maxSymbols(); len(seq) > limit {
		return fmt.Errorf("%w: %d symbols, limit %d", ErrTooManySymbols, len(seq), limit)
	}
	for i, sym := range seq {
		if n := utf8.RuneCountInString(string(sym)); n > MaxSymbolLength {
			return fmt.Errorf("%w: input[%d] has %d runes, limit %d", ErrSymbolTooLong, i, n, MaxSymbolLength)
		}
	}
	return nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxSymbols() int {
	if val := os.Getenv(EnvMaxSymbols); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMaxSymbols
}
