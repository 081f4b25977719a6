package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics for todo item lifecycle events.
const (
	TopicItemAdded     = "todo.item.added"
	TopicItemCompleted = "todo.item.completed"
	TopicItemDeleted   = "todo.item.deleted"
)

// EventVersion is the schema version stamped on every todo event; increment
// on breaking changes.
const EventVersion = 1

// ItemAddedEvent is published after a new item is persisted.
type ItemAddedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	Text       string    `json:"text"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ItemCompletedEvent is published after an item is marked complete.
type ItemCompletedEvent struct {
	EventID     uuid.UUID `json:"event_id"`
	Version     int       `json:"version"`
	ItemID      uuid.UUID `json:"item_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ItemDeletedEvent is published after an item is removed.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     uuid.UUID `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
