package prompt

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} block in an assistant
// reply after Markdown fence lines are dropped. Braces inside JSON strings
// do not count towards the balance.
func ExtractJSONObject(reply string) (string, bool) {
	text := stripCodeFences(reply)

	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := matchObject(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// decodeReply extracts and decodes the reply into T. Any failure yields the
// zero value; callers detect it through their required fields.
func decodeReply[T any](reply string) T {
	var out T
	block, ok := ExtractJSONObject(reply)
	if !ok {
		return out
	}
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		var zero T
		return zero
	}
	return out
}

func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// matchObject returns the index of the brace closing the object opened at start.
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
