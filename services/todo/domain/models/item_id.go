package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/todoapp/services/todo/domain"
)

// ItemID is the opaque identifier of a TodoItem. A value obtained from
// NewItemID or ParseItemID is always a valid, non-nil UUID.
type ItemID struct {
	uuid uuid.UUID
}

// NewItemID returns a fresh random identifier.
func NewItemID() ItemID {
	return ItemID{uuid: uuid.New()}
}

// ItemIDFromUUID wraps an existing UUID, rejecting the nil UUID.
func ItemIDFromUUID(u uuid.UUID) (ItemID, error) {
	if u == uuid.Nil {
		return ItemID{}, fmt.Errorf("%w: nil uuid", domain.ErrInvalidItemID)
	}
	return ItemID{uuid: u}, nil
}

// ParseItemID parses the string form of an identifier.
func ParseItemID(s string) (ItemID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return ItemID{}, fmt.Errorf("%w: %q", domain.ErrInvalidItemID, s)
	}
	return ItemIDFromUUID(u)
}

// UUID returns the underlying UUID.
func (id ItemID) UUID() uuid.UUID {
	return id.uuid
}

// IsZero reports whether id is the zero value.
func (id ItemID) IsZero() bool {
	return id.uuid == uuid.Nil
}

// String returns the canonical lower-case hyphenated form.
func (id ItemID) String() string {
	return id.uuid.String()
}
