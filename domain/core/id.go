package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if the v7 clock read fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RecordID identifies one persisted validation record.
type RecordID ID

func (id RecordID) String() string { return ID(id).String() }

// NewRecordID returns a time-ordered record identifier.
func NewRecordID() RecordID { return RecordID(NewID()) }

// ParseRecordID parses a string into RecordID
func ParseRecordID(s string) (RecordID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("record ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("record ID %q is not a UUID: %w", s, err)
	}
	return RecordID(s), nil
}
