package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the todo domain. Use errors.Is() to check these.
var (
	// ErrInvalidInput indicates a request value failed validation before
	// any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidItemText indicates the item text is empty or only whitespace.
	ErrInvalidItemText = fmt.Errorf("%w: item text must not be blank", ErrInvalidInput)

	// ErrInvalidItemID indicates an id that is not in the identifier format.
	// It is reported to clients the same way as ErrItemNotFound.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrItemNotFound indicates the requested item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemAlreadyCompleted indicates an attempt to complete an item twice.
	ErrItemAlreadyCompleted = errors.New("item already completed")
)
