package recordrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/chat"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/image"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
	"github.com/manucodear/manu-ai-assistant-sub000/internal/utils/platformerrors"
)

// MemoryStore keeps records in process memory. It backs local development
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	prompts map[string]*prompt.Record
	images  []image.Record
	chats   []chat.Record
}

var (
	_ prompt.Repository = (*MemoryStore)(nil)
	_ image.Repository  = (*MemoryStore)(nil)
	_ chat.Repository   = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prompts: make(map[string]*prompt.Record)}
}

func (s *MemoryStore) CreatePrompt(ctx context.Context, record *prompt.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.prompts[record.ID]; exists {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError,
			"prompt record already exists", nil, "2e8c0b7d-6f41-4a93-b1d5-9a3c7e0f4d62")
	}
	s.prompts[record.ID] = record.Clone()
	return nil
}

func (s *MemoryStore) GetPrompt(ctx context.Context, id string) (*prompt.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.prompts[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
			"prompt record not found", nil, "5a1f9d3c-8b20-4e76-a4c9-0d7e2b6f3a81")
	}
	return record.Clone(), nil
}

func (s *MemoryStore) CreateImage(_ context.Context, record *image.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, *record)
	return nil
}

func (s *MemoryStore) ListImages(_ context.Context, filter image.Filter) ([]*image.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*image.Record, 0, len(s.images))
	for i := range s.images {
		record := s.images[i]
		if filter.Username != "" && record.Username != filter.Username {
			continue
		}
		if filter.HasError != nil && record.HasError != *filter.HasError {
			continue
		}
		out = append(out, &record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) CreateChat(_ context.Context, record *chat.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, *record)
	return nil
}

// Chats returns a copy of the stored chat envelopes.
func (s *MemoryStore) Chats() []chat.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.Record(nil), s.chats...)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
