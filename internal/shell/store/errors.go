// Package store provides persistence for CMS entities.
package store

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when an entity is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicateID is returned when creating an entity with an existing ID.
	ErrDuplicateID = errors.New("entity with this ID already exists")

	// ErrDuplicateSlug is returned when a slug is already taken within its collection.
	ErrDuplicateSlug = errors.New("slug already exists")

	// ErrDuplicateEmail is returned when an admin email is already registered.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrForeignKey is returned when a foreign key constraint is violated.
	ErrForeignKey = errors.New("foreign key constraint violated")

	// ErrAdminExists is returned by CreateFirstAdmin once an admin exists.
	ErrAdminExists = errors.New("an admin account already exists")

	// ErrConnectionFailed is returned when database connection fails.
	ErrConnectionFailed = errors.New("database connection failed")

	// ErrMigrationFailed is returned when database migration fails.
	ErrMigrationFailed = errors.New("database migration failed")

	// ErrInvalidData is returned when JSON serialization/deserialization fails.
	ErrInvalidData = errors.New("invalid data format")

	// ErrTxFailed is returned when a transaction operation fails.
	ErrTxFailed = errors.New("transaction failed")
)

// StoreError wraps errors with additional context.
type StoreError struct {
	Op      string // Operation that failed (e.g., "CreateProject")
	Entity  string // Entity type (e.g., "project", "article")
	ID      string // Entity ID or slug if applicable
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %s", e.Op, e.Entity, e.ID, e.Message)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, entity, id, message string, err error) *StoreError {
	return &StoreError{
		Op:      op,
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is a not-found store error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateSlug reports whether err is a slug uniqueness violation.
func IsDuplicateSlug(err error) bool {
	return errors.Is(err, ErrDuplicateSlug)
}

// =============================================================================
// Constraint Classification
// =============================================================================

// classifyWriteError maps SQLite constraint failures on table to sentinel
// store errors.
func classifyWriteError(op, entity, table, id string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: "+table+".slug"):
		return NewStoreError(op, entity, id, entity+" with this slug already exists", ErrDuplicateSlug)
	case strings.Contains(msg, "UNIQUE constraint failed: "+table+".email"):
		return NewStoreError(op, entity, id, entity+" with this email already exists", ErrDuplicateEmail)
	case strings.Contains(msg, "UNIQUE constraint failed: "+table+".id"):
		return NewStoreError(op, entity, id, entity+" with this ID already exists", ErrDuplicateID)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return NewStoreError(op, entity, id, "referenced record does not exist or is still in use", ErrForeignKey)
	}
	return NewStoreError(op, entity, id, msg, err)
}
