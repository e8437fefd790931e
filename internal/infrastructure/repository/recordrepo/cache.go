package recordrepo

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"github.com/manucodear/manu-ai-assistant-sub000/internal/domain/prompt"
)

// PromptCache keeps recently used prompt records in front of a repository.
// Prompt records are never updated after creation, so entries need no
// invalidation.
type PromptCache struct {
	repo  prompt.Repository
	cache *lru.Cache
}

var _ prompt.Repository = (*PromptCache)(nil)

func NewPromptCache(repo prompt.Repository, size int) (*PromptCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &PromptCache{repo: repo, cache: cache}, nil
}

func (c *PromptCache) CreatePrompt(ctx context.Context, record *prompt.Record) error {
	if err := c.repo.CreatePrompt(ctx, record); err != nil {
		return err
	}
	c.cache.Add(record.ID, record.Clone())
	return nil
}

func (c *PromptCache) GetPrompt(ctx context.Context, id string) (*prompt.Record, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cached.(*prompt.Record).Clone(), nil
	}
	record, err := c.repo.GetPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.Add(id, record.Clone())
	return record, nil
}

// Len reports the number of cached records.
func (c *PromptCache) Len() int {
	return c.cache.Len()
}
