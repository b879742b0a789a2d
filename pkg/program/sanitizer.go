package program

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTextSize bounds the text of a write step, in bytes.
	DefaultMaxTextSize = 4096
	// EnvMaxTextSize is the environment variable to override the default
	EnvMaxTextSize = "TURTLE_MAX_TEXT_SIZE"
)

var (
	// DefaultMaxSteps bounds the step count of a spiral call.
	DefaultMaxSteps = 10000
	// EnvMaxSteps is the environment variable to override DefaultMaxSteps
	EnvMaxSteps = "TURTLE_MAX_STEPS"
)

var (
	ErrTooManySteps = errors.New("step count exceeds maximum allowed")
	ErrTextTooLarge = errors.New("text exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("text contains invalid UTF-8 sequences")
)

// SanitizeText enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return from write text.
// Programs and transports feed untrusted text into the log, where renderers
// and terminals display it.
func SanitizeText(text string) (string, error) {
	limit := maxTextSize()
	if len(text) > limit {
		return "", fmt.Errorf("%w: %w: size=%d limit=%d", ErrInvalidArguments, ErrTextTooLarge, len(text), limit)
	}

	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: %w", ErrInvalidArguments, ErrInvalidUTF8)
	}

	clean := true
	for _, r := range text {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// CheckSteps rejects spiral step counts above the configured limit. Spirals
// are simulated step by step, both by the engine and by renderers.
func CheckSteps(steps int) error {
	if limit := maxSteps(); steps > limit {
		return fmt.Errorf("%w: %w: steps=%d limit=%d", ErrInvalidArguments, ErrTooManySteps, steps, limit)
	}
	return nil
}

func maxTextSize() int {
	return envLimit(EnvMaxTextSize, DefaultMaxTextSize)
}

func maxSteps() int {
	return envLimit(EnvMaxSteps, DefaultMaxSteps)
}

func envLimit(name string, def int) int {
	if val := os.Getenv(name); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return def
}
