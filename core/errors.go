package core

import "errors"

var (
	// ErrNotFound is returned by record stores for missing or foreign records.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownStatus marks a status outside the closed enum.
	ErrUnknownStatus = errors.New("unknown status")
	// ErrInvalidLink marks a link that is not a well-formed http(s) URL.
	ErrInvalidLink = errors.New("invalid link")
	// ErrInvalidMessage marks a message that cannot be scoped to a session.
	ErrInvalidMessage = errors.New("invalid message")
)

// FailureKind is the turn-level failure taxonomy. Every kind is recoverable.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureClassification FailureKind = "classification"
	FailureValidation     FailureKind = "validation"
	FailureNotFound       FailureKind = "not_found"
	FailureAmbiguity      FailureKind = "ambiguity"
	FailureWrite          FailureKind = "write"
	FailureUnsafe         FailureKind = "unsafe"
)
