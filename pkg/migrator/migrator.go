// Package migrator applies the goose SQL migrations embedded by each
// bounded context under migrations/.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/ghuser/todoapp/pkg/database"
	"github.com/ghuser/todoapp/pkg/logger"
)

// Up applies every pending migration in files against dbURL and logs the
// resulting schema version. files must hold the .sql files at its root.
func Up(ctx context.Context, dbURL string, files fs.FS, log logger.Logger) error {
	db, err := sql.Open(database.DriverName, dbURL)
	if err != nil {
		return fmt.Errorf("migrator: open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(files)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrator: set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrator: up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrator: read version: %w", err)
	}
	log.InfoContext(ctx, "migrations applied", "version", version)
	return nil
}

// gooseLogger routes goose progress output through the structured logger.
type gooseLogger struct{ log logger.Logger }

func (g gooseLogger) Printf(format string, v ...any) {
	g.log.Debug(fmt.Sprintf(format, v...))
}

// Fatalf logs instead of exiting; goose returns the error to Up as well.
func (g gooseLogger) Fatalf(format string, v ...any) {
	g.log.Error(fmt.Sprintf(format, v...))
}
