package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies ledger failures. Every kind is recoverable.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindInvalidUsername     Kind = "invalid_username"
	KindWeakPassword        Kind = "weak_password"
	KindDuplicateUsername   Kind = "duplicate_username"
	KindInvalidCredentials  Kind = "invalid_credentials"
	KindPendingApproval     Kind = "pending_approval"
	KindBlocked             Kind = "blocked"
	KindInsufficientBalance Kind = "insufficient_balance"
	KindInvalidTransition   Kind = "invalid_transition"
	KindAlreadyResolved     Kind = "already_resolved"
	KindNotFound            Kind = "not_found"
	KindUnauthorized        Kind = "unauthorized"
	KindStoreFailure        Kind = "store_failure"
)

// parent maps refined kinds to the broader kind they also match with errors.Is.
var parent = map[Kind]Kind{
	KindInvalidUsername: KindInvalidInput,
	KindWeakPassword:    KindInvalidInput,
	KindAlreadyResolved: KindInvalidTransition,
}

// Error is the failure result of a ledger operation.
type Error struct {
	Kind    Kind
	Message string
	// Details carries structured context, e.g. the shortfall of a charge.
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, so errors.Is(err, ErrBlocked) works for any blocked failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind || parent[e.Kind] == t.Kind
}

// Sentinels for errors.Is
var (
	ErrInvalidInput        = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidUsername     = &Error{Kind: KindInvalidUsername, Message: "invalid username"}
	ErrWeakPassword        = &Error{Kind: KindWeakPassword, Message: "weak password"}
	ErrDuplicateUsername   = &Error{Kind: KindDuplicateUsername, Message: "duplicate username"}
	ErrInvalidCredentials  = &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
	ErrPendingApproval     = &Error{Kind: KindPendingApproval, Message: "pending approval"}
	ErrBlocked             = &Error{Kind: KindBlocked, Message: "blocked"}
	ErrInsufficientBalance = &Error{Kind: KindInsufficientBalance, Message: "insufficient balance"}
	ErrInvalidTransition   = &Error{Kind: KindInvalidTransition, Message: "invalid transition"}
	ErrAlreadyResolved     = &Error{Kind: KindAlreadyResolved, Message: "already resolved"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrStoreFailure        = &Error{Kind: KindStoreFailure, Message: "store failure"}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storeFailure(op string, err error) *Error {
	return &Error{Kind: KindStoreFailure, Message: op + " failed", Err: err}
}

// asError converts any error into *Error, treating unknown errors as store failures.
func asError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return le
	}
	return storeFailure(op, err)
}

// KindOf returns the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindStoreFailure
}
