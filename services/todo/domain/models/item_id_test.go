package models

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/todoapp/services/todo/domain"
)

func TestNewItemID(t *testing.T) {
	a, b := NewItemID(), NewItemID()
	if a.IsZero() || b.IsZero() {
		t.Fatal("expected non-zero ids")
	}
	if a == b {
		t.Fatal("expected unique ids, got identical")
	}
}

func TestParseItemID(t *testing.T) {
	valid := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("round trips canonical form", func(t *testing.T) {
		id, err := ParseItemID(valid)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.String() != valid {
			t.Fatalf("expected %q, got %q", valid, id.String())
		}
	})

	t.Run("upper case normalizes", func(t *testing.T) {
		id, err := ParseItemID("550E8400-E29B-41D4-A716-446655440000")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id.String() != valid {
			t.Fatalf("expected %q, got %q", valid, id.String())
		}
	})

	for _, in := range []string{"", "   ", "my-id", "550e8400", "00000000-0000-0000-0000-000000000000"} {
		t.Run("rejects "+in, func(t *testing.T) {
			_, err := ParseItemID(in)
			if !errors.Is(err, domain.ErrInvalidItemID) {
				t.Fatalf("expected ErrInvalidItemID, got %v", err)
			}
		})
	}
}

func TestItemIDFromUUID(t *testing.T) {
	if _, err := ItemIDFromUUID(uuid.Nil); !errors.Is(err, domain.ErrInvalidItemID) {
		t.Fatalf("expected ErrInvalidItemID for nil uuid, got %v", err)
	}
	u := uuid.New()
	id, err := ItemIDFromUUID(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UUID() != u {
		t.Fatalf("expected %v, got %v", u, id.UUID())
	}
}
