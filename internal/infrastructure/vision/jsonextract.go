package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")

// parseModelJSON extracts and parses a JSON object from model output that may
// be pure JSON, JSON wrapped in a markdown code block, or JSON embedded in
// surrounding prose.
func parseModelJSON(input string, target any) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("empty model output")
	}

	// Most common case: the model obeyed and returned bare JSON
	if err := json.Unmarshal([]byte(input), target); err == nil {
		return nil
	}

	// Markdown code fence
	if m := fencedJSONRegex.FindStringSubmatch(input); len(m) > 1 {
		candidate := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	// JSON object embedded in prose
	if extracted := extractBalancedObject(input); extracted != "" {
		if err := json.Unmarshal([]byte(extracted), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("no parseable JSON in model output")
}

// extractBalancedObject returns the first balanced {...} span, respecting
// string literals and escapes.
func extractBalancedObject(input string) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
			// skip structural chars inside strings
		case ch == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case ch == '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return input[start : i+1]
				}
			}
		}
	}
	return ""
}
