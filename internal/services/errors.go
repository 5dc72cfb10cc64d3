package services

import "errors"

// ErrorKind classifies service failures for the transport layer.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindAuthorization
	KindConflict
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	}
	return "unknown"
}

// Error carries a kind, a message safe to show callers and an optional
// internal cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrAuthorization  = &Error{Kind: KindAuthorization}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrStore          = &Error{Kind: KindStore}
)

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func authenticationError(msg string, cause error) error {
	return &Error{Kind: KindAuthentication, Message: msg, Err: cause}
}

func authorizationError() error {
	return &Error{Kind: KindAuthorization, Message: "Not authorized"}
}

func conflictError(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func storeError(cause error) error {
	return &Error{Kind: KindStore, Message: "Server error", Err: cause}
}

// KindOf returns the kind of a service error, or KindStore for anything
// the service did not classify.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// NewAuthenticationError lets the transport layer report a failed
// credential check in the service taxonomy.
func NewAuthenticationError(cause error) error {
	return authenticationError("Authentication failed", cause)
}

// NewValidationError reports malformed input detected outside the service.
func NewValidationError(msg string) error {
	return validationError(msg)
}
