package models

import (
	"strings"

	"github.com/ghuser/todoapp/services/todo/domain"
)

// ItemText is a value object holding the text of a to-do item.
// It is never empty and never only whitespace; otherwise it is kept as given.
type ItemText string

// NewItemText constructs a valid ItemText or returns domain.ErrInvalidItemText.
func NewItemText(s string) (ItemText, error) {
	if strings.TrimSpace(s) == "" {
		return "", domain.ErrInvalidItemText
	}
	return ItemText(s), nil
}

// String returns the underlying string value.
func (t ItemText) String() string {
	return string(t)
}
