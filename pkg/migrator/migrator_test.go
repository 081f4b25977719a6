package migrator

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/ghuser/todoapp/pkg/logger"
)

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	g := gooseLogger{log: logger.NewWithWriter(&buf, "debug")}

	g.Printf("OK   %s", "00001_create_todo_items.sql")
	g.Fatalf("failed %d", 2)

	out := buf.String()
	if !strings.Contains(out, "OK   00001_create_todo_items.sql") {
		t.Errorf("Printf output missing: %s", out)
	}
	if !strings.Contains(out, `"level":"ERROR"`) || !strings.Contains(out, "failed 2") {
		t.Errorf("Fatalf should log at error level: %s", out)
	}
}

func TestUp_BadSQL(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set; skipping integration tests")
	}
	files := fstest.MapFS{
		"99999_broken.sql": {Data: []byte("-- +goose Up\nTHIS IS NOT SQL;\n")},
	}
	var buf bytes.Buffer
	if err := Up(context.Background(), url, files, logger.NewWithWriter(&buf, "error")); err == nil {
		t.Fatal("expected error for invalid migration")
	}
}
