// Package apperr holds the error kinds shared by the HTTP API and its Go client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindAccountInactive      Kind = "account_inactive"
	KindSubscriptionInactive Kind = "subscription_inactive"
	KindConflict             Kind = "conflict"
	KindUnavailable          Kind = "unavailable"
	KindInternal             Kind = "internal"
)

// Error is an application error carrying a kind and, for validation
// failures, a per-field message map.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Validation builds a validation error from field messages.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "The given data was invalid.", Fields: fields}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden, KindAccountInactive, KindSubscriptionInactive:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of HTTPStatus used by clients. The 403 flags
// distinguish a deactivated account from a lapsed subscription.
func FromStatus(status int, accountInactive, subscriptionInactive bool) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		if accountInactive {
			return KindAccountInactive
		}
		if subscriptionInactive {
			return KindSubscriptionInactive
		}
		return KindForbidden
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}
