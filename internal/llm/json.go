package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals the JSON payload found in a model reply.
func decodeJSON(content string, result any) error {
	if err := json.Unmarshal([]byte(extractJSON(content)), result); err != nil {
		return fmt.Errorf("parsing JSON response: %w (content: %s)", err, content)
	}
	return nil
}

// extractJSON pulls a JSON document out of a reply that may wrap it in a
// markdown fence or surrounding prose.
func extractJSON(s string) string {
	for _, fence := range []string{"```json", "```"} {
		idx := strings.Index(s, fence)
		if idx == -1 {
			continue
		}
		body := strings.TrimLeft(s[idx+len(fence):], "\r\n")
		if end := strings.Index(body, "```"); end != -1 {
			return strings.TrimRight(body[:end], "\r\n")
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return s
}
