package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeStateConflict   Code = "STATE_CONFLICT"
	CodeAlreadyComplete Code = "ALREADY_COMPLETED"
	CodeCreditLimit     Code = "CREDIT_LIMIT_EXCEEDED"
	CodeOutstandingDebt Code = "OUTSTANDING_DEBT"
	CodeIdempotency     Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit       Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeDependency      Code = "DEPENDENCY_ERROR"
)

// Metadata drives how a code renders over HTTP. DetailsAllowed gates whether
// the structured details attached to an error may leave the process.
type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:      {http.StatusBadRequest, "validation failed", true},
	CodeUnauthorized:    {http.StatusUnauthorized, "authentication required", false},
	CodeForbidden:       {http.StatusForbidden, "access denied", false},
	CodeNotFound:        {http.StatusNotFound, "resource not found", false},
	CodeConflict:        {http.StatusConflict, "conflict detected", false},
	CodeStateConflict:   {http.StatusUnprocessableEntity, "state transition disallowed", true},
	CodeAlreadyComplete: {http.StatusUnprocessableEntity, "order already completed", true},
	CodeCreditLimit:     {http.StatusUnprocessableEntity, "credit limit exceeded", true},
	CodeOutstandingDebt: {http.StatusConflict, "customer has outstanding debt", true},
	CodeIdempotency:     {http.StatusConflict, "idempotency key reused", true},
	CodeRateLimit:       {http.StatusTooManyRequests, "too many requests", false},
	CodeInternal:        {http.StatusInternalServerError, "internal server error", false},
	CodeDependency:      {http.StatusServiceUnavailable, "dependency unavailable", true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
