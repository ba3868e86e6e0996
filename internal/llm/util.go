// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") && !strings.Contains(firstLine, "[") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	return text
}

// ExtractJSONSpan returns the first balanced span opened by open ('{' or '[') in
// text that is valid JSON, tolerating prose before and after it. Brackets inside
// JSON strings are ignored. ok is false when no such span exists.
func ExtractJSONSpan(text string, open byte) (span string, ok bool) {
	var closer byte
	switch open {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return "", false
	}

	offset := 0
	for offset < len(text) {
		rel := strings.IndexByte(text[offset:], open)
		if rel < 0 {
			return "", false
		}
		start := offset + rel
		if end, closed := balancedEnd(text, start, open, closer); closed {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		offset = start + 1
	}
	return "", false
}

// balancedEnd returns the index of the closer matching the opener at start.
func balancedEnd(text string, start int, open, closer byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ExtractJSONObject cleans code fences and returns the first balanced JSON object,
// or the cleaned text unchanged when none is found.
func ExtractJSONObject(text string) string {
	cleaned := CleanJSONBlock(text)
	if span, ok := ExtractJSONSpan(cleaned, '{'); ok {
		return span
	}
	return cleaned
}

// ExtractJSONArray cleans code fences and returns the first balanced JSON array.
func ExtractJSONArray(text string) (string, bool) {
	return ExtractJSONSpan(CleanJSONBlock(text), '[')
}
