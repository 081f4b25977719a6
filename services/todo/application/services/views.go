package services

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// TodoItemView is the client-facing representation of an item.
type TodoItemView struct {
	ID          string `json:"id"          example:"123e4567-e89b-12d3-a456-426614174000"`
	IsCompleted bool   `json:"isCompleted" example:"false"`
	LastUpdated string `json:"lastUpdated" example:"5 minutes ago"`
	Text        string `json:"text"        example:"Buy milk"`
} // @name TodoItemView

// TodoListView is the client-facing representation of the whole list.
// Items is never nil so it always encodes as a JSON array.
type TodoListView struct {
	Items []TodoItemView `json:"items"`
} // @name TodoListView

// CompleteResult is the outcome of CompleteItem.
type CompleteResult int

const (
	CompleteSucceeded CompleteResult = iota
	CompleteNotFound
	CompleteRejected
)

func (r CompleteResult) String() string {
	switch r {
	case CompleteSucceeded:
		return "succeeded"
	case CompleteNotFound:
		return "not_found"
	case CompleteRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// LastUpdated renders the most recent change of item relative to now,
// e.g. "3 minutes ago".
func LastUpdated(item *models.TodoItem, now time.Time) string {
	return humanize.RelTime(item.LastUpdated(), now, "ago", "from now")
}

func newItemView(item *models.TodoItem, now time.Time) TodoItemView {
	return TodoItemView{
		ID:          item.ID.String(),
		IsCompleted: item.IsCompleted(),
		LastUpdated: LastUpdated(item, now),
		Text:        item.Text.String(),
	}
}
