package sanitize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// PIILevel controls how much user content reaches the logs.
type PIILevel string

const (
	// PIILevelNone redacts all user content
	PIILevelNone PIILevel = "none"
	// PIILevelHashed hashes detected PII with a salt
	PIILevelHashed PIILevel = "hashed"
	// PIILevelFull performs no sanitization
	PIILevelFull PIILevel = "full"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Text sanitizes prompts and completions before logging.
type Text struct {
	level PIILevel
	salt  string
}

func NewText(level PIILevel, salt string) *Text {
	return &Text{level: level, salt: salt}
}

// Apply returns input sanitized according to the configured level. Unknown
// levels behave like hashed.
func (t *Text) Apply(input string) string {
	switch t.level {
	case PIILevelNone:
		return "[REDACTED]"
	case PIILevelFull:
		return input
	default:
		return t.hashPII(input)
	}
}

func (t *Text) hashPII(input string) string {
	result := emailPattern.ReplaceAllStringFunc(input, func(match string) string {
		return fmt.Sprintf("[EMAIL:%s]", t.hash(match))
	})
	result = phonePattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[PHONE:%s]", t.hash(match))
	})
	return ipv4Pattern.ReplaceAllStringFunc(result, func(match string) string {
		return fmt.Sprintf("[IP:%s]", t.hash(match))
	})
}

func (t *Text) hash(data string) string {
	sum := sha256.Sum256([]byte(data + t.salt))
	return hex.EncodeToString(sum[:])[:8]
}
