package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/migrator"
	"github.com/ghuser/todoapp/services/todo/domain"
	domainevents "github.com/ghuser/todoapp/services/todo/domain/events"
	"github.com/ghuser/todoapp/services/todo/domain/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) PublishInTx(_ context.Context, _ *sql.Tx, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

type failingPublisher struct{}

func (failingPublisher) PublishInTx(context.Context, *sql.Tx, string, any) error {
	return errors.New("bus down")
}

func setupRepository(t *testing.T, bus EventPublisher) (*ItemRepository, *database.Database) {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	log := logger.New(&config.Config{LogLevel: "error"})
	if err := migrator.Up(context.Background(), url, os.DirFS("../../../../../migrations/todo"), log); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	db, err := database.NewPool(context.Background(), url, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.DB().Exec(`TRUNCATE todo_items`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewItemRepository(db, bus, func() time.Time { return now }), db
}

func mustText(t *testing.T, s string) models.ItemText {
	t.Helper()
	text, err := models.NewItemText(s)
	if err != nil {
		t.Fatalf("NewItemText(%q): %v", s, err)
	}
	return text
}

func TestItemRepositoryIntegration(t *testing.T) {
	bus := &recordingPublisher{}
	repo, _ := setupRepository(t, bus)
	ctx := context.Background()

	first, err := repo.Add(ctx, mustText(t, "Buy milk"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := repo.Add(ctx, mustText(t, "Walk the dog"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Text != "Buy milk" || got.IsCompleted() {
			t.Errorf("unexpected item: %+v", got)
		}
	})

	t.Run("GetAll_InsertionOrder", func(t *testing.T) {
		items, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(items) != 2 || items[0].ID != first.ID || items[1].ID != second.ID {
			t.Fatalf("unexpected order: %+v", items)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		at := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
		got, err := repo.Complete(ctx, first.ID, at)
		if err != nil {
			t.Fatalf("Complete: %v", err)
		}
		if !got.IsCompleted() || !got.CompletedAt.Equal(at) {
			t.Errorf("unexpected completion: %+v", got.CompletedAt)
		}
		if _, err := repo.Complete(ctx, first.ID, at); !errors.Is(err, domain.ErrItemAlreadyCompleted) {
			t.Errorf("expected ErrItemAlreadyCompleted, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, second.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if err := repo.Delete(ctx, second.ID); !errors.Is(err, domain.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
		if _, err := repo.GetByID(ctx, second.ID); !errors.Is(err, domain.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		if _, err := repo.Complete(ctx, models.NewItemID(), time.Now()); !errors.Is(err, domain.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("EventsPublished", func(t *testing.T) {
		want := []string{
			domainevents.TopicItemAdded,
			domainevents.TopicItemAdded,
			domainevents.TopicItemCompleted,
			domainevents.TopicItemDeleted,
		}
		got := bus.Topics()
		if len(got) != len(want) {
			t.Fatalf("topics = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("topic[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestItemRepositoryIntegration_ConcurrentComplete(t *testing.T) {
	repo, _ := setupRepository(t, nil)
	ctx := context.Background()

	item, err := repo.Add(ctx, mustText(t, "Race"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Complete(ctx, item.ID, time.Now()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful complete, got %d", successes)
	}
}

func TestItemRepositoryIntegration_PublishFailureRollsBack(t *testing.T) {
	repo, db := setupRepository(t, failingPublisher{})

	if _, err := repo.Add(context.Background(), mustText(t, "Never stored")); err == nil {
		t.Fatal("expected publish error")
	}

	var count int
	if err := db.DB().QueryRow(`SELECT count(*) FROM todo_items`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected rollback, found %d rows", count)
	}
}
