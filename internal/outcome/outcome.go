// Package outcome carries the uniform success/failure envelope returned by
// every use-case, plus the typed error kinds callers discriminate on.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind strings exposed in envelopes and over the API.
const (
	KindValidation   = "validation"
	KindBusinessRule = "business_rule"
	KindNotFound     = "not_found"
	KindUnauthorized = "unauthorized"
	KindUnknown      = "unknown"
)

// ValidationError reports structurally invalid or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// BusinessRuleError reports an entity in a state that forbids the requested
// action. Code is stable and machine-readable.
type BusinessRuleError struct {
	Code    string
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// UnauthorizedError reports a caller lacking permission for an action.
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	if e.Action == "" {
		return "unauthorized"
	}
	return fmt.Sprintf("unauthorized: %s", e.Action)
}

// KindOf classifies err into one of the envelope kind strings.
func KindOf(err error) string {
	var (
		ve *ValidationError
		be *BusinessRuleError
		ne *NotFoundError
		ue *UnauthorizedError
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &be):
		return KindBusinessRule
	case errors.As(err, &ne):
		return KindNotFound
	case errors.As(err, &ue):
		return KindUnauthorized
	default:
		return KindUnknown
	}
}

// Result holds either a success value or an error, never both. The zero value
// is a failure with a nil error; construct through OK or Fail.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

func OK[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return Result[T]{err: err}
}

// Success reports whether the result carries a value.
func (r Result[T]) Success() bool { return r.ok }

// Value returns the success payload; the zero value of T on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure; nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return r.err
}

type envelopeError struct {
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    *T             `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
}

// EnvelopeError flattens err into the wire shape used by the API.
func EnvelopeError(err error) (kind, code, field, message string) {
	kind = KindOf(err)
	message = err.Error()
	var ve *ValidationError
	if errors.As(err, &ve) {
		field = ve.Field
		message = ve.Message
	}
	var be *BusinessRuleError
	if errors.As(err, &be) {
		code = be.Code
	}
	return kind, code, field, message
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.ok {
		v := r.value
		return json.Marshal(envelope[T]{Success: true, Data: &v})
	}
	err := r.Err()
	if err == nil {
		// Zero-value Result: a failure that was never given an error.
		err = errors.New("unspecified failure")
	}
	kind, code, field, message := EnvelopeError(err)
	return json.Marshal(envelope[T]{Success: false, Error: &envelopeError{
		Kind:    kind,
		Code:    code,
		Field:   field,
		Message: message,
	}})
}
