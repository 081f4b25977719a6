package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/services/todo/domain"
	domainevents "github.com/ghuser/todoapp/services/todo/domain/events"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

const uniqueViolation = "23505"

// maxInsertAttempts bounds id regeneration on primary key collisions.
const maxInsertAttempts = 3

const (
	insertItemSQL = `INSERT INTO todo_items (id, text, created_at) VALUES ($1, $2, $3)`

	getItemSQL = `SELECT id, text, created_at, completed_at FROM todo_items WHERE id = $1`

	getItemForUpdateSQL = getItemSQL + ` FOR UPDATE`

	listItemsSQL = `SELECT id, text, created_at, completed_at FROM todo_items ORDER BY seq`

	completeItemSQL = `UPDATE todo_items SET completed_at = $2 WHERE id = $1`

	deleteItemSQL = `DELETE FROM todo_items WHERE id = $1 RETURNING id`
)

// EventPublisher writes domain events into the caller's transaction.
// *events.EventBus satisfies it.
type EventPublisher interface {
	PublishInTx(ctx context.Context, tx *sql.Tx, topic string, payload any) error
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  *database.Database
	bus EventPublisher
	now func() time.Time
}

// NewItemRepository returns an ItemRepository backed by the given connection pool.
// When bus is non-nil every state change publishes its domain event in the
// same transaction.
func NewItemRepository(db *database.Database, bus EventPublisher, now func() time.Time) *ItemRepository {
	if now == nil {
		now = time.Now
	}
	return &ItemRepository{db: db, bus: bus, now: now}
}

// Add persists a new item and publishes an ItemAddedEvent within the same transaction.
func (r *ItemRepository) Add(ctx context.Context, text models.ItemText) (*models.TodoItem, error) {
	item := models.NewTodoItem(text, r.now())

	for attempt := 1; ; attempt++ {
		err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, insertItemSQL, item.ID.UUID(), item.Text.String(), item.CreatedAt); err != nil {
				return err
			}
			return r.publish(ctx, tx, domainevents.TopicItemAdded, domainevents.ItemAddedEvent{
				EventID:    uuid.New(),
				Version:    domainevents.EventVersion,
				ItemID:     item.ID.UUID(),
				Text:       item.Text.String(),
				OccurredAt: item.CreatedAt,
			})
		})
		if err == nil {
			return item, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && attempt < maxInsertAttempts {
			item.ID = models.NewItemID()
			continue
		}
		return nil, fmt.Errorf("insert item: %w", err)
	}
}

// GetByID returns ErrItemNotFound if no row matches.
func (r *ItemRepository) GetByID(ctx context.Context, id models.ItemID) (*models.TodoItem, error) {
	item, err := scanItem(r.db.DB().QueryRowContext(ctx, getItemSQL, id.UUID()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

// GetAll returns every item in insertion order.
func (r *ItemRepository) GetAll(ctx context.Context) ([]*models.TodoItem, error) {
	rows, err := r.db.DB().QueryContext(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.TodoItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// Complete locks the row, applies the domain transition and publishes an
// ItemCompletedEvent in the same transaction.
func (r *ItemRepository) Complete(ctx context.Context, id models.ItemID, at time.Time) (*models.TodoItem, error) {
	var item *models.TodoItem
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		item, err = scanItem(tx.QueryRowContext(ctx, getItemForUpdateSQL, id.UUID()))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrItemNotFound
			}
			return fmt.Errorf("lock item: %w", err)
		}
		if err := item.Complete(at); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, completeItemSQL, id.UUID(), *item.CompletedAt); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return r.publish(ctx, tx, domainevents.TopicItemCompleted, domainevents.ItemCompletedEvent{
			EventID:     uuid.New(),
			Version:     domainevents.EventVersion,
			ItemID:      item.ID.UUID(),
			Text:        item.Text.String(),
			CreatedAt:   item.CreatedAt,
			CompletedAt: *item.CompletedAt,
			OccurredAt:  r.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the row and publishes an ItemDeletedEvent in the same transaction.
func (r *ItemRepository) Delete(ctx context.Context, id models.ItemID) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var deleted uuid.UUID
		if err := tx.QueryRowContext(ctx, deleteItemSQL, id.UUID()).Scan(&deleted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrItemNotFound
			}
			return fmt.Errorf("delete item: %w", err)
		}
		return r.publish(ctx, tx, domainevents.TopicItemDeleted, domainevents.ItemDeletedEvent{
			EventID:    uuid.New(),
			Version:    domainevents.EventVersion,
			ItemID:     deleted,
			OccurredAt: r.now().UTC(),
		})
	})
}

// Ping checks the database connection health.
func (r *ItemRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *ItemRepository) publish(ctx context.Context, tx *sql.Tx, topic string, event any) error {
	if r.bus == nil {
		return nil
	}
	if err := r.bus.PublishInTx(ctx, tx, topic, event); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem maps one todo_items row to a domain TodoItem.
func scanItem(row rowScanner) (*models.TodoItem, error) {
	var (
		id          uuid.UUID
		text        string
		createdAt   time.Time
		completedAt sql.NullTime
	)
	if err := row.Scan(&id, &text, &createdAt, &completedAt); err != nil {
		return nil, err
	}
	itemID, err := models.ItemIDFromUUID(id)
	if err != nil {
		return nil, err
	}
	item := &models.TodoItem{
		ID:        itemID,
		Text:      models.ItemText(text),
		CreatedAt: createdAt.UTC(),
	}
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		item.CompletedAt = &at
	}
	return item, nil
}
