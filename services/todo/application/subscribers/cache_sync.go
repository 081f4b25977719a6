// Package subscribers holds the todo event handlers run by the worker.
package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/logger"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
	domainevents "github.com/ghuser/todoapp/services/todo/domain/events"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
)

// Topics lists every topic CacheSync consumes.
var Topics = []string{
	domainevents.TopicItemAdded,
	domainevents.TopicItemCompleted,
	domainevents.TopicItemDeleted,
}

// ItemCache is the subset of cache.TodoCache used by CacheSync.
type ItemCache interface {
	Set(ctx context.Context, item *cache.CachedItem) error
	Invalidate(ctx context.Context, id uuid.UUID, stage cache.Stage) error
}

// itemEvent holds the field shared by every todo event.
type itemEvent struct {
	ItemID uuid.UUID `json:"item_id"`
}

// CacheSync refreshes the Redis entry of the item named by each event from
// the store: present items are written, missing ones evicted. Events on
// different topics may arrive out of order, so the store is the only source
// read, and the cache drops a refresh that lost a race with a later stage.
// Handling is idempotent.
type CacheSync struct {
	repo  repositories.ItemRepository
	cache ItemCache
	log   logger.Logger
}

// NewCacheSync returns a CacheSync reading from repo and writing to c.
func NewCacheSync(repo repositories.ItemRepository, c ItemCache, log logger.Logger) *CacheSync {
	return &CacheSync{repo: repo, cache: c, log: log}
}

// Handle processes one todo event. Malformed payloads are logged and
// acknowledged since a retry cannot fix them.
func (s *CacheSync) Handle(ctx context.Context, msg *message.Message) error {
	var evt itemEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.log.ErrorContext(ctx, "dropping malformed todo event", "message_id", msg.UUID, "error", err)
		return nil
	}
	id, err := models.ItemIDFromUUID(evt.ItemID)
	if err != nil {
		s.log.ErrorContext(ctx, "dropping todo event without item id", "message_id", msg.UUID)
		return nil
	}

	item, err := s.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, tododomain.ErrItemNotFound):
		if err := s.cache.Invalidate(ctx, id.UUID(), cache.StageDeleted); err != nil {
			return fmt.Errorf("evict %s: %w", id, err)
		}
		s.log.InfoContext(ctx, "cache evicted", "item_id", id.String())
		return nil
	case err != nil:
		return fmt.Errorf("load %s: %w", id, err)
	}

	if err := s.cache.Set(ctx, &cache.CachedItem{
		ID:          item.ID.UUID(),
		Text:        item.Text.String(),
		CreatedAt:   item.CreatedAt,
		CompletedAt: item.CompletedAt,
	}); err != nil {
		return fmt.Errorf("cache %s: %w", id, err)
	}
	s.log.InfoContext(ctx, "cache refreshed", "item_id", id.String(), "completed", item.IsCompleted())
	return nil
}
