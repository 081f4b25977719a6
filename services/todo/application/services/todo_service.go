package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	pkgcache "github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/logger"
	tododomain "github.com/ghuser/todoapp/services/todo/domain"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
)

const meterName = "github.com/ghuser/todoapp/services/todo"

// Outcome labels of the todo.operations counter.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// ItemCache is the single-item read cache. Set must drop writes older than a
// stage passed to Invalidate; pkgcache.TodoCache does.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*pkgcache.CachedItem, error)
	Set(ctx context.Context, item *pkgcache.CachedItem) error
	Invalidate(ctx context.Context, id uuid.UUID, stage pkgcache.Stage) error
}

// TodoService maps the item store onto the views served to clients.
// Event publishing is handled by the repository layer (outbox pattern).
// Single-item reads go through the cache when one is configured; mutations
// invalidate synchronously so a later read never sees stale state.
type TodoService struct {
	repo  repositories.ItemRepository
	cache ItemCache
	log   logger.Logger
	now   func() time.Time
	ops   metric.Int64Counter
}

// NewTodoService returns a TodoService. cache may be nil; now defaults to time.Now.
func NewTodoService(repo repositories.ItemRepository, cache ItemCache, log logger.Logger, now func() time.Time) *TodoService {
	if now == nil {
		now = time.Now
	}
	ops, err := otel.Meter(meterName).Int64Counter("todo.operations",
		metric.WithDescription("Todo service operations by outcome"),
	)
	if err != nil {
		log.Warn("todo.operations counter unavailable", "error", err)
		ops = noop.Int64Counter{}
	}
	return &TodoService{repo: repo, cache: cache, log: log, now: now, ops: ops}
}

// AddItem validates text and stores a new open item, returning its id.
// Blank text fails with ErrInvalidItemText.
func (s *TodoService) AddItem(ctx context.Context, text string) (string, error) {
	itemText, err := models.NewItemText(text)
	if err != nil {
		s.record(ctx, "add", outcomeInvalid)
		return "", err
	}
	item, err := s.repo.Add(ctx, itemText)
	if err != nil {
		s.record(ctx, "add", outcomeError)
		return "", fmt.Errorf("add item: %w", err)
	}
	s.record(ctx, "add", outcomeOK)
	return item.ID.String(), nil
}

// GetList returns every item in insertion order.
func (s *TodoService) GetList(ctx context.Context) (*TodoListView, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		s.record(ctx, "list", outcomeError)
		return nil, fmt.Errorf("list items: %w", err)
	}
	now := s.now()
	view := &TodoListView{Items: make([]TodoItemView, 0, len(items))}
	for _, item := range items {
		view.Items = append(view.Items, newItemView(item, now))
	}
	s.record(ctx, "list", outcomeOK)
	return view, nil
}

// GetItem returns one item. Fails with ErrInvalidItemID for a malformed id
// and ErrItemNotFound for an unknown one.
func (s *TodoService) GetItem(ctx context.Context, id string) (*TodoItemView, error) {
	itemID, err := models.ParseItemID(id)
	if err != nil {
		s.record(ctx, "get", outcomeNotFound)
		return nil, err
	}

	if item := s.cached(ctx, itemID); item != nil {
		view := newItemView(item, s.now())
		s.record(ctx, "get", outcomeOK)
		return &view, nil
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, tododomain.ErrItemNotFound) {
			s.record(ctx, "get", outcomeNotFound)
			return nil, err
		}
		s.record(ctx, "get", outcomeError)
		return nil, fmt.Errorf("get item: %w", err)
	}
	s.fill(ctx, item)

	view := newItemView(item, s.now())
	s.record(ctx, "get", outcomeOK)
	return &view, nil
}

// CompleteItem marks an item completed. Malformed and unknown ids are
// CompleteNotFound; an already completed item is CompleteRejected.
func (s *TodoService) CompleteItem(ctx context.Context, id string) (CompleteResult, error) {
	itemID, err := models.ParseItemID(id)
	if err != nil {
		s.record(ctx, "complete", outcomeNotFound)
		return CompleteNotFound, nil
	}

	_, err = s.repo.Complete(ctx, itemID, s.now())
	switch {
	case errors.Is(err, tododomain.ErrItemNotFound):
		s.record(ctx, "complete", outcomeNotFound)
		return CompleteNotFound, nil
	case errors.Is(err, tododomain.ErrItemAlreadyCompleted):
		s.record(ctx, "complete", outcomeRejected)
		return CompleteRejected, nil
	case err != nil:
		s.record(ctx, "complete", outcomeError)
		return 0, fmt.Errorf("complete item: %w", err)
	}

	s.evict(ctx, itemID, pkgcache.StageCompleted)
	s.record(ctx, "complete", outcomeOK)
	return CompleteSucceeded, nil
}

// DeleteItem removes an item, reporting false for malformed or unknown ids.
func (s *TodoService) DeleteItem(ctx context.Context, id string) (bool, error) {
	itemID, err := models.ParseItemID(id)
	if err != nil {
		s.record(ctx, "delete", outcomeNotFound)
		return false, nil
	}

	if err := s.repo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, tododomain.ErrItemNotFound) {
			s.record(ctx, "delete", outcomeNotFound)
			return false, nil
		}
		s.record(ctx, "delete", outcomeError)
		return false, fmt.Errorf("delete item: %w", err)
	}

	s.evict(ctx, itemID, pkgcache.StageDeleted)
	s.record(ctx, "delete", outcomeOK)
	return true, nil
}

func (s *TodoService) cached(ctx context.Context, id models.ItemID) *models.TodoItem {
	if s.cache == nil {
		return nil
	}
	c, err := s.cache.Get(ctx, id.UUID())
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "todo cache read failed", "item_id", id.String(), "error", err)
		}
		return nil
	}
	return &models.TodoItem{
		ID:          id,
		Text:        models.ItemText(c.Text),
		CreatedAt:   c.CreatedAt,
		CompletedAt: c.CompletedAt,
	}
}

func (s *TodoService) fill(ctx context.Context, item *models.TodoItem) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, &pkgcache.CachedItem{
		ID:          item.ID.UUID(),
		Text:        item.Text.String(),
		CreatedAt:   item.CreatedAt,
		CompletedAt: item.CompletedAt,
	}); err != nil {
		s.log.WarnContext(ctx, "todo cache write failed", "item_id", item.ID.String(), "error", err)
	}
}

func (s *TodoService) evict(ctx context.Context, id models.ItemID, stage pkgcache.Stage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id.UUID(), stage); err != nil {
		s.log.ErrorContext(ctx, "todo cache evict failed", "item_id", id.String(), "error", err)
	}
}

func (s *TodoService) record(ctx context.Context, op, outcome string) {
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
