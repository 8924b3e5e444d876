// Package apperr defines the error codes shared by the store, the services
// and the HTTP layer. Errors are built with samber/oops so every failure
// carries a code plus structured context for logging.
package apperr

import (
	"github.com/samber/oops"
)

// Error codes. Handlers map each one to an HTTP status.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeDeliveryFailed     = "DELIVERY_FAILED"
	CodeStorage            = "STORAGE_ERROR"
)

// Reasons attached to UNAUTHORIZED errors. They never leave the process.
const (
	ReasonMissing     = "missing"
	ReasonInvalid     = "invalid"
	ReasonExpired     = "expired"
	ReasonUserMissing = "user_missing"
	ReasonRevoked     = "revoked"
)

// New builds a coded error.
func New(code, format string, args ...any) error {
	return oops.Code(code).Errorf(format, args...)
}

// Storage wraps a persistence-layer fault.
func Storage(operation string, err error) error {
	return oops.Code(CodeStorage).With("operation", operation).Wrap(err)
}

// Unauthorized builds the uniform authentication failure with an internal reason.
func Unauthorized(reason string) error {
	return oops.Code(CodeUnauthorized).With("reason", reason).Errorf("unauthorized")
}

// CodeOf returns the oops code carried by err, or "" for plain errors.
func CodeOf(err error) string {
	o, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code, ok := o.Code().(string); ok {
		return code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// ReasonOf returns the "reason" context value of an UNAUTHORIZED error.
func ReasonOf(err error) string {
	o, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	reason, _ := o.Context()["reason"].(string)
	return reason
}
