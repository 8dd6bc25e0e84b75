// Package apperr defines the error kinds shared by every service and the HTTP
// status each one maps to. Messages are user facing (Bulgarian); the wrapped
// cause is for logs only.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindInvalidArgument Kind = "invalid_argument"
	KindAuthentication  Kind = "authentication"
	KindAuthorization   Kind = "authorization"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidState    Kind = "invalid_state"
	KindUpstream        Kind = "upstream"
	KindInternal        Kind = "internal"
)

// Generic user-facing messages.
const (
	MsgUnauthorized = "Неоторизиран достъп"
	MsgForbidden    = "Достъп отказан"
	MsgInternal     = "Възникна грешка. Моля, опитайте отново."
	MsgUpstream     = "Услугата е временно недостъпна. Моля, опитайте отново."
	MsgValidation   = "Невалидни данни"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error

	base *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.base != nil && e.base == t
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a copy of base, keeping errors.Is(result, base) true.
func Wrap(base *Error, cause error) error {
	return &Error{Kind: base.Kind, Message: base.Message, Fields: base.Fields, Err: cause, base: base}
}

func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidation, Fields: fields}
}

func Upstream(cause error) error {
	return &Error{Kind: KindUpstream, Message: MsgUpstream, Err: cause}
}

func Internal(cause error) error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: cause}
}

func Unauthorized() *Error { return New(KindAuthentication, MsgUnauthorized) }

func Forbidden() *Error { return New(KindAuthorization, MsgForbidden) }

// As extracts the first *Error in the chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidArgument:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
