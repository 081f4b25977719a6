package services

import (
	"github.com/ghuser/todoapp/pkg/app"
	"github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/memory"
	"github.com/ghuser/todoapp/services/todo/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Todo *TodoService
	// Store is exposed for health checks.
	Store repositories.ItemRepository
}

// New wires all todo application services with infrastructure from the
// Application container. Without a database the in-memory store is used.
func New(a *app.Application) *Services {
	var repo repositories.ItemRepository
	if a.Db != nil {
		var bus postgres.EventPublisher
		if a.EventBus != nil {
			bus = a.EventBus
		}
		repo = postgres.NewItemRepository(a.Db, bus, a.Now)
	} else {
		repo = memory.NewItemRepository(a.Now)
	}

	// The cache outlives the process, so it is only safe in front of a
	// durable store.
	var itemCache ItemCache
	if a.Redis != nil && a.Db != nil {
		itemCache = cache.NewTodoCache(a.Redis)
	}

	return &Services{
		Todo:  NewTodoService(repo, itemCache, a.Logger, a.Now),
		Store: repo,
	}
}
