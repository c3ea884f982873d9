package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage marks a submit with blank input. Callers drop it
// silently; no store write or model request happens.
var ErrEmptyMessage = errors.New("message is empty")

type ErrorType string

const (
	ErrTypeConfig      ErrorType = "CONFIG"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypePersistence ErrorType = "PERSISTENCE"
	ErrTypeStream      ErrorType = "STREAM"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
)

type ChatError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID string
	Cause          error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

// NewPersistenceError wraps a store operation failure.
func NewPersistenceError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypePersistence, Operation: operation, Message: msg, Cause: cause}
}

// NewStreamError wraps an inference call failure.
func NewStreamError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStream, Operation: operation, Message: msg, Cause: cause}
}

// IsPersistenceError reports whether err is a store failure.
func IsPersistenceError(err error) bool {
	var ce *ChatError
	return errors.As(err, &ce) && ce.Type == ErrTypePersistence
}

// IsStreamError reports whether err is an inference failure.
func IsStreamError(err error) bool {
	var ce *ChatError
	return errors.As(err, &ce) && ce.Type == ErrTypeStream
}
