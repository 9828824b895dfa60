package provider

import "fmt"

// ErrorClass partitions provider failures for the failover executor.
// The class is assigned here, by the client layer, from the structured
// response — callers never infer it from error text.
type ErrorClass string

const (
	// ClassQuota: rate/quota exhaustion signaled by the provider.
	ClassQuota ErrorClass = "quota"
	// ClassInvalidCredential: expired, malformed, or rejected key.
	ClassInvalidCredential ErrorClass = "invalid_credential"
	// ClassUnavailable: server error, overload, transport failure, or
	// timeout. The provider may work with another key or on retry.
	ClassUnavailable ErrorClass = "unavailable"
	// ClassFatal: content-policy rejection or a structurally unusable
	// response. Retrying with a different credential cannot help.
	ClassFatal ErrorClass = "fatal"
)

// Error is the structured failure returned by every provider call.
type Error struct {
	Class      ErrorClass
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s (http %d): %s", e.Class, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Class, e.Message)
}

// Retryable reports whether the failover executor should move on to the
// next credential after this failure.
func (e *Error) Retryable() bool {
	return e.Class == ClassQuota || e.Class == ClassInvalidCredential || e.Class == ClassUnavailable
}

func newError(class ErrorClass, status int, format string, args ...interface{}) *Error {
	return &Error{Class: class, StatusCode: status, Message: fmt.Sprintf(format, args...)}
}
