package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrShopNotFound           = errors.New("laundry shop not found")
	ErrServiceNotFound        = errors.New("service not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrConcurrentModification = errors.New("transaction was modified by another request")
	ErrPriceLocked            = errors.New("price can only be changed while a transaction is ongoing")
	ErrInvalidCredentials     = errors.New("invalid username or password")
	ErrNotAdmin               = errors.New("account is not an administrator")
	ErrUsernameExists         = errors.New("username already taken")
	ErrServiceExists          = errors.New("service with this name already exists")
	ErrStorageUnavailable     = errors.New("image storage is not configured")
)

// ValidationError carries per-field messages for a rejected form
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError starts a ValidationError with one field message
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for a field, keeping the first one
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Empty reports whether no field failed
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns e as an error, or nil when no field failed
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
