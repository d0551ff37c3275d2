package agent

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds questions and SQL accepted by Ask and Query.
const DefaultMaxInputSize = 4096

var (
	// ErrInvalidInput classifies rejected questions and queries.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInputTooLarge is returned when input exceeds the configured size.
	ErrInputTooLarge = fmt.Errorf("%w: input exceeds maximum allowed size", ErrInvalidInput)
	// ErrInvalidUTF8 is returned for input that is not valid UTF-8.
	ErrInvalidUTF8 = fmt.Errorf("%w: input contains invalid UTF-8 sequences", ErrInvalidInput)
	// ErrEmptyInput is returned for blank input.
	ErrEmptyInput = fmt.Errorf("%w: input is empty", ErrInvalidInput)
)

// SanitizeInput trims input, rejects it when larger than limit bytes or not
// valid UTF-8, and strips control characters other than newline, tab and
// carriage return. Input ends up in prompts, SQL and logs, so escape
// sequences never get through.
func SanitizeInput(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := strings.IndexFunc(input, isUnsafeControl) < 0
	if !clean {
		var b strings.Builder
		b.Grow(len(input))
		for _, r := range input {
			if !isUnsafeControl(r) {
				b.WriteRune(r)
			}
		}
		input = b.String()
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}
	return input, nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
