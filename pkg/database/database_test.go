package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/ghuser/todoapp/pkg/config"
	"github.com/ghuser/todoapp/pkg/logger"
)

func nopLogger() logger.Logger {
	return logger.New(&config.Config{LogLevel: "error"})
}

func TestNewPool_Unreachable(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://todo:pw@localhost:1/none?sslmode=disable&connect_timeout=1", nopLogger())
	if err == nil {
		t.Fatal("expected error for unreachable database")
	}
}

// Integration tests: skipped unless DATABASE_URL is set.
func TestDatabaseIntegration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}

	db, err := NewPool(context.Background(), url, nopLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer db.Close() //nolint:errcheck

	t.Run("Ping", func(t *testing.T) {
		if err := db.Ping(context.Background()); err != nil {
			t.Fatalf("Ping failed: %v", err)
		}
	})

	t.Run("WithTx_ReturnsCallbackError", func(t *testing.T) {
		sentinel := errors.New("rollback me")
		err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
			if _, err := tx.Exec("SELECT 1"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel, got %v", err)
		}
	})
}
