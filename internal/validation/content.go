// Package validation checks comment content before it reaches storage or the
// network. The same checker runs on both sides: the reconciler rejects bad
// content before issuing a request, and the service rejects it before
// touching the database.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinContentLength and MaxContentLength bound comment content in runes.
	MinContentLength = 2
	MaxContentLength = 1000
)

// ContentChecker validates comment content against length bounds and a
// configurable sensitive-word list.
type ContentChecker struct {
	sensitiveWords []string
}

// NewContentChecker creates a checker. Words are matched case-insensitively
// as substrings of the content.
func NewContentChecker(sensitiveWords []string) *ContentChecker {
	words := make([]string, 0, len(sensitiveWords))
	for _, w := range sensitiveWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}
	return &ContentChecker{sensitiveWords: words}
}

// Check returns nil when content is acceptable, or a human-readable error
// describing the first failed rule.
func (c *ContentChecker) Check(content string) error {
	trimmed := strings.TrimSpace(content)
	length := utf8.RuneCountInString(trimmed)
	if length < MinContentLength {
		return fmt.Errorf("content must be at least %d characters", MinContentLength)
	}
	if length > MaxContentLength {
		return fmt.Errorf("content must be at most %d characters", MaxContentLength)
	}
	lowered := strings.ToLower(trimmed)
	for _, w := range c.sensitiveWords {
		if strings.Contains(lowered, w) {
			return fmt.Errorf("content contains a blocked word")
		}
	}
	return nil
}
