package sampler

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Mode selects how a sampled command's stdout becomes a snapshot document.
type Mode string

const (
	ModeNumber Mode = "number"
	ModeJSON   Mode = "json"
	ModeLines  Mode = "lines"
	ModeRaw    Mode = "raw"
	ModeAuto   Mode = "auto"
)

// ValidMode reports whether m is a known parse mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeNumber, ModeJSON, ModeLines, ModeRaw, ModeAuto:
		return true
	}
	return false
}

// Parse converts command output to a snapshot document according to mode.
// Parse never fails: every mode has a defined fallback document, so a
// sampler tick always has something to publish.
func Parse(mode Mode, text string) any {
	switch mode {
	case ModeNumber:
		if doc, ok := tryNumber(text); ok {
			return doc
		}
		return map[string]any{"value": float64(0)}
	case ModeJSON:
		if doc, ok := tryJSON(text); ok {
			return doc
		}
		return map[string]any{"error": "Invalid JSON", "raw": text}
	case ModeLines:
		if doc, ok := tryLines(text, false); ok {
			return doc
		}
		return []any{}
	case ModeAuto:
		// Ordered attempts; first success wins, raw never fails.
		if doc, ok := tryNumber(text); ok {
			return doc
		}
		if doc, ok := tryJSON(text); ok {
			return doc
		}
		if doc, ok := tryLines(text, true); ok {
			return doc
		}
		return parseRaw(text)
	default:
		return parseRaw(text)
	}
}

// tryNumber parses the trimmed text as a single numeric literal.
func tryNumber(text string) (any, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return map[string]any{"value": n}, true
}

// tryJSON parses the trimmed text as a JSON object or array. Bare literals
// ("7", "true") are rejected so that auto mode's number attempt stays the
// only path for scalars.
func tryJSON(text string) (any, bool) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, false
	}
	return doc, true
}

// tryLines splits on newlines, drops blank lines, and wraps each surviving
// line as {label, value: 1-based index}. When multiOnly is set (auto mode),
// a single line is not considered a list and the attempt fails.
func tryLines(text string, multiOnly bool) (any, bool) {
	items := []any{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, map[string]any{
			"label": line,
			"value": float64(len(items) + 1),
		})
	}
	if multiOnly && len(items) < 2 {
		return nil, false
	}
	return items, true
}

// parseRaw wraps the trimmed text. The final fallback; cannot fail.
func parseRaw(text string) any {
	return map[string]any{"value": strings.TrimSpace(text)}
}
