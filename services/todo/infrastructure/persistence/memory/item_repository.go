// Package memory provides the default in-process ItemRepository.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

// ItemRepository implements repositories.ItemRepository with a map guarded by
// a single RWMutex. Contents live as long as the process.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[models.ItemID]*models.TodoItem
	order []models.ItemID
	now   func() time.Time
}

// NewItemRepository returns an empty repository. now defaults to time.Now.
func NewItemRepository(now func() time.Time) *ItemRepository {
	if now == nil {
		now = time.Now
	}
	return &ItemRepository{
		items: make(map[models.ItemID]*models.TodoItem),
		now:   now,
	}
}

func (r *ItemRepository) Add(_ context.Context, text models.ItemText) (*models.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item := models.NewTodoItem(text, r.now())
	for r.items[item.ID] != nil {
		item.ID = models.NewItemID()
	}
	r.items[item.ID] = item
	r.order = append(r.order, item.ID)
	return item.Clone(), nil
}

func (r *ItemRepository) GetByID(_ context.Context, id models.ItemID) (*models.TodoItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return item.Clone(), nil
}

func (r *ItemRepository) GetAll(_ context.Context) ([]*models.TodoItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.TodoItem, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

func (r *ItemRepository) Complete(_ context.Context, id models.ItemID, at time.Time) (*models.TodoItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if err := item.Complete(at); err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

func (r *ItemRepository) Delete(_ context.Context, id models.ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds; the store lives in process memory.
func (r *ItemRepository) Ping(context.Context) error {
	return nil
}
