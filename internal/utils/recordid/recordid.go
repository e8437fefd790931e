package recordid

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the record kinds persisted by the service.
const (
	PrefixPrompt       = "prm"
	PrefixImage        = "img"
	PrefixChat         = "cht"
	PrefixUserImage    = "uim"
	PrefixConversation = "cnv"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a "<prefix>_<ulid>" id with the ULID lower-cased so it can be
// used verbatim as a blob name.
func New(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + "_" + strings.ToLower(id.String())
}

// Parse strips the expected prefix and returns the ULID.
func Parse(prefix, value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	trimmed := strings.TrimPrefix(strings.ToLower(value), prefix+"_")
	if trimmed == strings.ToLower(value) {
		return ulid.ULID{}, fmt.Errorf("id %q does not carry prefix %q", value, prefix)
	}
	return ulid.ParseStrict(strings.ToUpper(trimmed))
}

// IsValid reports whether value is a well-formed id for prefix.
func IsValid(prefix, value string) bool {
	_, err := Parse(prefix, value)
	return err == nil
}
