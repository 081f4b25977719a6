// Command todo applies the todo item schema migrations to DATABASE_URL.
package main

import (
	"context"
	"embed"
	"os"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)
	if err := migrator.Up(context.Background(), cfg.DatabaseURL, MigrationsFS, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
}
