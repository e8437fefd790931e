package recordid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{name: "prompt id", prefix: PrefixPrompt},
		{name: "image id", prefix: PrefixImage},
		{name: "chat id", prefix: PrefixChat},
		{name: "conversation id", prefix: PrefixConversation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.prefix)
			if !strings.HasPrefix(got, tt.prefix+"_") {
				t.Errorf("New() = %v, want prefix %v_", got, tt.prefix)
			}
			if got != strings.ToLower(got) {
				t.Errorf("New() = %v, want lower-case id", got)
			}
			if !IsValid(tt.prefix, got) {
				t.Errorf("IsValid(%v) = false, want true", got)
			}
		})
	}
}

func TestNew_Uniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := New(PrefixImage)
		if seen[id] {
			t.Fatalf("New() generated duplicate ID: %v", id)
		}
		seen[id] = true
	}
}

func TestIsValid_RejectsForeignPrefix(t *testing.T) {
	id := New(PrefixPrompt)
	if IsValid(PrefixImage, id) {
		t.Errorf("IsValid(%q, %q) = true, want false", PrefixImage, id)
	}
	if IsValid(PrefixPrompt, "prm_not-a-ulid") {
		t.Errorf("IsValid accepted a malformed ulid")
	}
}
