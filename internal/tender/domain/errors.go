package tender

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for transport mapping.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidTransition  Kind = "invalid_transition"
	KindPreconditionFailed Kind = "precondition_failed"
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
)

// Error is a request-scoped domain error carrying the wire envelope fields.
type Error struct {
	Kind        Kind
	Location    string
	Name        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// NewNotFound reports a missing entity referenced by the given url/body field.
func NewNotFound(name string) *Error {
	return &Error{Kind: KindNotFound, Location: "url", Name: name, Description: "Not Found"}
}

// NewInvalidTransition reports an unreachable status change.
func NewInvalidTransition(name, description string) *Error {
	return &Error{Kind: KindInvalidTransition, Location: "body", Name: name, Description: description}
}

// NewPreconditionFailed reports a business gate blocking the mutation.
func NewPreconditionFailed(name, description string) *Error {
	return &Error{Kind: KindPreconditionFailed, Location: "body", Name: name, Description: description}
}

// NewValidation reports structurally invalid input.
func NewValidation(name, description string) *Error {
	return &Error{Kind: KindValidation, Location: "body", Name: name, Description: description}
}

// NewConflict reports a concurrent modification detected by storage.
func NewConflict(description string) *Error {
	return &Error{Kind: KindConflict, Location: "body", Name: "data", Description: description}
}

// KindOf extracts the kind from an error chain, or empty when not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

var (
	// ErrNilTender is returned when operating on a nil aggregate.
	ErrNilTender = errors.New("tender: nil aggregate")
	// ErrCorruptAggregate indicates a broken structural invariant in stored state.
	ErrCorruptAggregate = errors.New("tender: corrupt aggregate")
)
