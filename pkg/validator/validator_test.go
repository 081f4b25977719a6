package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgvalidator "github.com/ghuser/todoapp/pkg/validator"
)

type itemForm struct {
	ID   string `json:"id" validate:"omitempty,uuid"`
	Text string `json:"text" validate:"notblank,max=10"`
}

func TestValidate_valid(t *testing.T) {
	f := itemForm{ID: "550e8400-e29b-41d4-a716-446655440000", Text: "hello"}
	if err := pkgvalidator.Validate(&f); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestValidate_notblank(t *testing.T) {
	tests := []struct {
		text    string
		wantErr bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"x", false},
		{"  padded  ", false},
	}
	for _, tt := range tests {
		err := pkgvalidator.Validate(&itemForm{Text: tt.text})
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
		}
	}
}

func TestValidateVar(t *testing.T) {
	if err := pkgvalidator.ValidateVar(" ", "notblank"); err == nil {
		t.Error("expected blank value to fail")
	}
	if err := pkgvalidator.ValidateVar("Buy milk", "notblank"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		form  itemForm
		field string
		want  string
	}{
		{"blank", itemForm{Text: " "}, "text", "Must not be blank"},
		{"uuid", itemForm{ID: "not-a-uuid", Text: "ok"}, "id", "Must be a valid UUID"},
		{"max", itemForm{Text: "12345678901"}, "text", "Maximum length is 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&tt.form))
			if m[tt.field] != tt.want {
				t.Errorf("%s message = %q, want %q", tt.field, m[tt.field], tt.want)
			}
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	m := pkgvalidator.FormatValidationErrors(http.ErrNoCookie)
	if len(m) != 0 {
		t.Errorf("expected empty map for non-validation error, got %v", m)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("string body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`"Buy milk"`))
		got, ok := pkgvalidator.DecodeJSON[string](w, r)
		if !ok || *got != "Buy milk" {
			t.Fatalf("DecodeJSON = %v, %v", got, ok)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{bad`))
		if _, ok := pkgvalidator.DecodeJSON[string](w, r); ok {
			t.Fatal("expected failure")
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"x"}`))
		if _, ok := pkgvalidator.DecodeJSON[string](w, r); ok {
			t.Fatal("expected failure for object body")
		}
	})
}

func TestWriteValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	pkgvalidator.WriteValidationError(w, pkgvalidator.Validate(&itemForm{Text: ""}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Fields["text"] != "Must not be blank" {
		t.Errorf("unexpected fields: %v", body.Fields)
	}
}
