package repositories

import (
	"context"
	"time"

	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// ItemRepository is the persistence interface for the TodoItem aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations own their items: every returned *TodoItem is a copy.
// Mutating operations are atomic per id.
type ItemRepository interface {
	// Add stores a new open item. The store generates the id and creation time.
	Add(ctx context.Context, text models.ItemText) (*models.TodoItem, error)

	// GetByID returns domain.ErrItemNotFound when the item does not exist.
	GetByID(ctx context.Context, id models.ItemID) (*models.TodoItem, error)

	// GetAll returns every item in insertion order.
	GetAll(ctx context.Context) ([]*models.TodoItem, error)

	// Complete marks the item completed at the given time and returns the
	// updated item. Returns domain.ErrItemNotFound or
	// domain.ErrItemAlreadyCompleted.
	Complete(ctx context.Context, id models.ItemID, at time.Time) (*models.TodoItem, error)

	// Delete removes the item. Returns domain.ErrItemNotFound.
	Delete(ctx context.Context, id models.ItemID) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
