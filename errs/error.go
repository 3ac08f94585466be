package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Error codes used throughout the app. They get translated to proper
// http status codes before a response is returned.
const (
	ECONFLICT     = "conflict"
	EINTERNAL     = "internal"
	EINVALID      = "invalid"
	ENOTFOUND     = "not_found"
	EUNAUTHORIZED = "unauthorized"
)

// codes maps the app's error codes to http status codes.
var codes = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINTERNAL:     http.StatusInternalServerError,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
}

// Error is the app's custom error type. The Code expresses the kind of error,
// the Message holds a human-readable description that is safe to display.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("blognest error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs a new Error with the given code and a formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode returns the code of the given error, if it's an *Error.
// Any other non-nil error yields EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the message of the given error, if it's an *Error.
// Any other non-nil error yields a generic message, so that internal details
// never leak into a response.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorStatusCode translates an app error code to an http status code.
func ErrorStatusCode(code string) int {
	if status, ok := codes[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes the given error to the response, as json, with the
// appropriate http status code. Internal errors are logged, everything
// else is considered the caller's fault and returned quietly.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	fmt.Fprintf(w, `{"error":%q}`+"\n", message)
}

// LogError logs an error together with the request's method and path.
func LogError(r *http.Request, err error) {
	slog.Error("http error", "method", r.Method, "path", r.URL.Path, "err", err)
}
