package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgUserNotFound     = "user not found"
	ErrMsgUserIDRequired   = "user id is required"
	ErrMsgUnknownEventType = "unknown event type"
	ErrMsgInvalidStage     = "invalid lifecycle stage"
	ErrMsgInvalidDateRange = "invalid date range"
	ErrMsgInvalidInput     = "invalid input"
	ErrMsgStoreUnavailable = "event store unavailable"
)

// Common domain errors. Wrap with fmt.Errorf("%w: ...", domain.ErrXxx)
// for additional context.
var (
	ErrUserNotFound     = errors.New(ErrMsgUserNotFound)
	ErrUserIDRequired   = errors.New(ErrMsgUserIDRequired)
	ErrUnknownEventType = errors.New(ErrMsgUnknownEventType)
	ErrInvalidStage     = errors.New(ErrMsgInvalidStage)
	ErrInvalidDateRange = errors.New(ErrMsgInvalidDateRange)
	ErrInvalidInput     = errors.New(ErrMsgInvalidInput)
	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)
)
