// Package apperrors provides the error type used across syncflow services.
// Errors form a hierarchy: a sentinel created with New can derive children
// via New, and Is matches an error against any ancestor, so callers test for
// broad categories while log lines carry the specific message. Msg, MsgErr
// and Err derive as well rather than mutating the receiver, so package-level
// sentinels stay stable when call sites attach per-call detail. Each error
// optionally carries an HTTP status code that the API layer maps directly
// onto responses.
package apperrors

type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	MsgErr(msg string, err ...error) Error
	Msg(msg string) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
