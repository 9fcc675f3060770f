package main

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor is not a member of the target board.
	ErrForbidden = errors.New("not a board member")
	// ErrInternal marks an internal-consistency fault, e.g. a card missing
	// from its own list's loaded ordering. Fatal for the transaction, never
	// retried.
	ErrInternal = errors.New("internal inconsistency")
)

// ValidationError covers malformed handler input and activity payloads
// that are missing required fields when consumed by undo.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError is a state-precondition failure: already undone, list not
// empty, id already exists, and so on. Code is a stable tag the boundary
// layer forwards so clients can render a specific message.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func conflict(code, message string) error {
	return &ConflictError{Code: code, Message: message}
}

// Conflict codes used by the undo engine and mutation handlers.
const (
	codeAlreadyUndone = "ALREADY_UNDONE"
	codeNotUndoable   = "NOT_UNDOABLE"
	codeListNotEmpty  = "LIST_NOT_EMPTY"
	codeListExists    = "LIST_EXISTS"
	codeListGone      = "LIST_GONE"
	codeCardGone      = "CARD_GONE"
	codeReorderStale  = "REORDER_STALE"
	codeCrossBoard    = "CROSS_BOARD"
)
