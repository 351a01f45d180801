package core

import (
	"errors"
	"fmt"
)

// Error kinds. Concrete errors below wrap one of these so callers can
// match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidArgs  = errors.New("invalid args")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

// Tasks errors
var (
	ErrTaskNotFound         = fmt.Errorf("task %w", ErrNotFound)
	ErrTaskInvalidArgs      = fmt.Errorf("task %w", ErrInvalidArgs)
	ErrDateRequired         = fmt.Errorf("task without project needs a date: %w", ErrInvalidArgs)
	ErrDailyLimit           = fmt.Errorf("daily task limit reached: %w", ErrInvalidArgs)
	ErrProjectMismatch      = fmt.Errorf("child task must share its parent's project: %w", ErrInvalidArgs)
	ErrParentWithoutProject = fmt.Errorf("parent task has no project: %w", ErrInvalidArgs)
)

// Hierarchy errors
var (
	ErrDepthExceeded = fmt.Errorf("nesting depth exceeded: %w", ErrInvalidArgs)
	ErrSelfParent    = fmt.Errorf("entity cannot be its own parent: %w", ErrInvalidArgs)
	ErrCycleDetected = fmt.Errorf("parent assignment would create a cycle: %w", ErrInvalidArgs)
)

// Documents errors
var (
	ErrDocumentNotFound    = fmt.Errorf("document %w", ErrNotFound)
	ErrDocumentInvalidArgs = fmt.Errorf("document %w", ErrInvalidArgs)
	ErrDocumentHasChildren = fmt.Errorf("document has children: %w", ErrConflict)
)

// Projects errors
var (
	ErrProjectNotFound    = fmt.Errorf("project %w", ErrNotFound)
	ErrProjectInvalidArgs = fmt.Errorf("project %w", ErrInvalidArgs)
)

// Users errors
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrUserInvalidArgs    = fmt.Errorf("user %w", ErrInvalidArgs)
	ErrUserAlreadyExists  = fmt.Errorf("user already exists: %w", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
)
