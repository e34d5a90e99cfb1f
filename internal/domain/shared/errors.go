package shared

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable machine-readable identifier of a domain failure.
// The HTTP layer maps codes to status codes; clients switch on them.
type ErrorCode string

const (
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeNotOwned            ErrorCode = "NOT_OWNED"
	CodeInvalidLocation     ErrorCode = "INVALID_LOCATION"
	CodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	CodeAlreadyInProgress   ErrorCode = "ALREADY_IN_PROGRESS"
	CodePrerequisitesNotMet ErrorCode = "PREREQUISITES_NOT_MET"
	CodeInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInvalidState        ErrorCode = "INVALID_STATE"
	CodeNotCancellableYet   ErrorCode = "NOT_CANCELLABLE_YET"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// ErrorCode returns the stable code of the error
func (e *DomainError) ErrorCode() ErrorCode {
	return e.Code
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// CodedError is implemented by every domain error carrying a stable code
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

// ReasonedError is implemented by domain errors that carry a list of
// human-readable reasons (e.g. unmet prerequisites)
type ReasonedError interface {
	error
	Reasons() []string
}

// CodeOf extracts the domain error code from err, or "" for system errors
func CodeOf(err error) ErrorCode {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}

// ReasonsOf extracts the reasons list from err, if any
func ReasonsOf(err error) []string {
	var reasoned ReasonedError
	if errors.As(err, &reasoned) {
		return reasoned.Reasons()
	}
	return nil
}

// Lookup errors

type NotFoundError struct {
	*DomainError
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		DomainError: NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id)),
		Resource:    resource,
		ID:          id,
	}
}

// Location errors

type InvalidLocationError struct {
	*DomainError
	Raw string
}

func NewInvalidLocationError(raw string) *InvalidLocationError {
	return &InvalidLocationError{
		DomainError: NewDomainError(CodeInvalidLocation, fmt.Sprintf("invalid location coordinate %q", raw)),
		Raw:         raw,
	}
}

type NotOwnedError struct {
	*DomainError
	Location string
}

func NewNotOwnedError(location string) *NotOwnedError {
	return &NotOwnedError{
		DomainError: NewDomainError(CodeNotOwned, fmt.Sprintf("location %s is not owned by this empire", location)),
		Location:    location,
	}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) ErrorCode() ErrorCode {
	return CodeValidationFailed
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
