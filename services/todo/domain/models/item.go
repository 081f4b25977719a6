package models

import (
	"time"

	"github.com/ghuser/todoapp/services/todo/domain"
)

// TodoItem is the core aggregate of the todo bounded context.
// CompletedAt, when set, is never before CreatedAt.
type TodoItem struct {
	ID          ItemID
	Text        ItemText
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewTodoItem constructs an open item with a generated ID.
func NewTodoItem(text ItemText, now time.Time) *TodoItem {
	return &TodoItem{
		ID:        NewItemID(),
		Text:      text,
		CreatedAt: now.UTC(),
	}
}

// IsCompleted reports whether the item has been completed.
func (i *TodoItem) IsCompleted() bool {
	return i.CompletedAt != nil
}

// Complete marks the item as completed at the given time. An item can only
// be completed once.
func (i *TodoItem) Complete(at time.Time) error {
	if i.IsCompleted() {
		return domain.ErrItemAlreadyCompleted
	}
	at = at.UTC()
	if at.Before(i.CreatedAt) {
		at = i.CreatedAt
	}
	i.CompletedAt = &at
	return nil
}

// LastUpdated returns the completion time when present, else the creation time.
func (i *TodoItem) LastUpdated() time.Time {
	if i.CompletedAt != nil {
		return *i.CompletedAt
	}
	return i.CreatedAt
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (i *TodoItem) Clone() *TodoItem {
	c := *i
	if i.CompletedAt != nil {
		at := *i.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
