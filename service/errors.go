package service

import (
	"errors"
	"fmt"
)

// ErrorCode is a machine readable failure category
type ErrorCode string

const (
	CodeNotFound             ErrorCode = "NOT_FOUND"
	CodeInsufficientFunds    ErrorCode = "INSUFFICIENT_FUNDS"
	CodeInsufficientDiamonds ErrorCode = "INSUFFICIENT_DIAMONDS"
	CodeNoLivesRemaining     ErrorCode = "NO_LIVES_REMAINING"
	CodeEmptyPool            ErrorCode = "EMPTY_POOL"
	CodeValidation           ErrorCode = "VALIDATION_ERROR"
	CodeTransactionFailure   ErrorCode = "TRANSACTION_FAILURE"
)

// Error is returned by every ledger operation that does not succeed.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Sentinels for errors.Is checks
var (
	ErrNotFound             = &Error{Code: CodeNotFound}
	ErrInsufficientFunds    = &Error{Code: CodeInsufficientFunds}
	ErrInsufficientDiamonds = &Error{Code: CodeInsufficientDiamonds}
	ErrNoLivesRemaining     = &Error{Code: CodeNoLivesRemaining}
	ErrEmptyPool            = &Error{Code: CodeEmptyPool}
	ErrValidation           = &Error{Code: CodeValidation}
	ErrTransactionFailure   = &Error{Code: CodeTransactionFailure}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code carried by err, or an empty code when err is not a service error
func CodeOf(err error) ErrorCode {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}
	return ""
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) *Error {
	return newError(CodeNotFound, format, args...)
}

func validation(format string, args ...any) *Error {
	return newError(CodeValidation, format, args...)
}

func txFailure(message string, err error) *Error {
	return &Error{Code: CodeTransactionFailure, Message: message, Err: err}
}
