package models

import (
	"errors"
	"testing"

	"github.com/ghuser/todoapp/services/todo/domain"
)

func TestNewItemText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"normal text", "Buy milk", false},
		{"single character", "a", false},
		{"surrounding whitespace is kept", "  Buy eggs ", false},
		{"unicode", "Kaffee kaufen ☕", false},
		{"empty", "", true},
		{"spaces only", "   ", true},
		{"tabs and newlines only", "\t\n\r ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewItemText(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidItemText) {
					t.Fatalf("expected ErrInvalidItemText, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text.String() != tt.input {
				t.Fatalf("expected %q, got %q", tt.input, text.String())
			}
		})
	}
}
