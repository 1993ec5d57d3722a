package errs

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable classification of a caller-visible failure.
// Codes are part of the public API: transports map them to status codes and clients
// branch on them, so existing values must never be renamed.
type Code string

const (
	CodeIllegalTransition  Code = "ILLEGAL_TRANSITION"
	CodeOrderTerminal      Code = "ORDER_TERMINAL"
	CodeOtpNotVerified     Code = "OTP_NOT_VERIFIED"
	CodeOtpMismatch        Code = "OTP_MISMATCH"
	CodeNoPartnerAvailable Code = "NO_PARTNER_AVAILABLE"
	CodeOfferExpired       Code = "OFFER_EXPIRED"
	CodeAlreadyClaimed     Code = "ALREADY_CLAIMED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeTooManyAttempts    Code = "TOO_MANY_ATTEMPTS"
	CodePartnerUnavailable Code = "PARTNER_UNAVAILABLE"
	CodeConflict           Code = "CONFLICT"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeInternal           Code = "INTERNAL"
)

// Sentinels for the order engine taxonomy. Wrap them with NewDomainError to attach
// a specific message; errors.Is matches on the code.
var (
	ErrIllegalTransition      = &DomainError{Code: CodeIllegalTransition, Message: "illegal status transition"}
	ErrOrderTerminal          = &DomainError{Code: CodeOrderTerminal, Message: "order is in a terminal status"}
	ErrOtpNotVerified         = &DomainError{Code: CodeOtpNotVerified, Message: "delivery code has not been verified"}
	ErrOtpMismatch            = &DomainError{Code: CodeOtpMismatch, Message: "delivery code does not match"}
	ErrNoPartnerAvailable     = &DomainError{Code: CodeNoPartnerAvailable, Message: "no delivery partner available"}
	ErrOfferExpired           = &DomainError{Code: CodeOfferExpired, Message: "dispatch offer expired"}
	ErrAlreadyClaimed         = &DomainError{Code: CodeAlreadyClaimed, Message: "order already claimed by another partner"}
	ErrForbidden              = &DomainError{Code: CodeForbidden, Message: "actor is not allowed to perform this operation"}
	ErrTooManyAttempts        = &DomainError{Code: CodeTooManyAttempts, Message: "too many attempts"}
	ErrPartnerUnavailable     = &DomainError{Code: CodePartnerUnavailable, Message: "delivery partner is unavailable"}
	ErrConcurrentModification = &DomainError{Code: CodeConflict, Message: "aggregate was modified concurrently"}
)

// DomainError is a caller-visible, recoverable business failure.
type DomainError struct {
	Code    Code
	Message string
	Cause   error
}

// NewDomainError returns an error of the given sentinel's code with a specific message.
func NewDomainError(kind *DomainError, format string, args ...any) *DomainError {
	return &DomainError{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

// NewDomainErrorWithCause is NewDomainError that keeps the underlying cause for errors.Is/As.
func NewDomainErrorWithCause(kind *DomainError, cause error, format string, args ...any) *DomainError {
	return &DomainError{Code: kind.Code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", e.Code, sanitize(e.Message), sanitize(e.Cause.Error()))
	}
	return fmt.Sprintf("%s: %s", e.Code, sanitize(e.Message))
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// CodeOf classifies any error returned by the engine. Unknown errors are CodeInternal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	switch {
	case errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsRequired),
		errors.Is(err, ErrValueIsOutOfRange):
		return CodeInvalidArgument
	case errors.Is(err, ErrVersionIsInvalid):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// MessageOf returns the human-readable part of err suitable for API responses.
// Internal errors are collapsed to a generic message.
func MessageOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	if CodeOf(err) == CodeInternal {
		return "internal error"
	}
	return err.Error()
}
