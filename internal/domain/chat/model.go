package chat

import (
	"context"
	"time"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/jsonvalue"
)

// Record is the envelope stored for every chat backend call.
type Record struct {
	ID           string          `json:"id"`
	Username     string          `json:"username"`
	TimestampUTC time.Time       `json:"timestampUtc"`
	Request      jsonvalue.Value `json:"request"`
	Response     jsonvalue.Value `json:"response"`
	Error        string          `json:"error,omitempty"`
}

// Repository persists chat envelopes.
type Repository interface {
	CreateChat(ctx context.Context, record *Record) error
}

// Request is one chat turn sent by a client.
type Request struct {
	Model    string
	Messages []Message
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the assistant answer for a turn.
type Reply struct {
	ID      string  `json:"id"`
	Model   string  `json:"model"`
	Message Message `json:"message"`
}
