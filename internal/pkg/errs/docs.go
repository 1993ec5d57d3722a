// Package errs provides standardized error types for the order engine.
//
// Two families live here:
//   - validation errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError,
//     ObjectNotFoundError, VersionIsInvalidError), each with a sentinel, constructors with
//     and without cause, and Unwrap support;
//   - DomainError, the caller-visible business outcomes of the order lifecycle
//     (illegal transition, terminal order, OTP failures, dispatch races). Every
//     DomainError carries a stable Code.
//
// CodeOf maps any error to a Code so transports can render a machine-readable
// code and message without inspecting concrete types.
package errs
