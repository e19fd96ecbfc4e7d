package resilience

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
)

// ErrorClass tells the executor what to do with a failed attempt.
type ErrorClass int

const (
	// ClassFatal errors are returned to the caller without retrying.
	ClassFatal ErrorClass = iota
	// ClassTransient errors (connectivity, pooler, timeouts) are retried.
	ClassTransient
	// ClassStaleSession errors come from prepared statement state left on a
	// reused connection. They are retried after the recover hook runs.
	ClassStaleSession
)

// String returns the string representation of the class.
func (c ErrorClass) String() string {
	switch c {
	case ClassFatal:
		return "fatal"
	case ClassTransient:
		return "transient"
	case ClassStaleSession:
		return "stale_session"
	default:
		return "unknown"
	}
}

// Retryable reports whether errors of this class are worth another attempt.
func (c ErrorClass) Retryable() bool {
	return c == ClassTransient || c == ClassStaleSession
}

// Classifier maps an error to its class. It must be a pure function.
type Classifier func(err error) ErrorClass

// Checked before transientPatterns so a stale statement that mentions the
// connection still triggers recovery.
var staleSessionPatterns = []string{
	"prepared statement",
	"already exists",
}

var transientPatterns = []string{
	"can't reach database server",
	"cannot reach server",
	"pooler",
	"connection",
	"timeout",
	"timed out",
}

// Classify is the default Classifier.
//
// Timeouts, bad driver connections and timing-out network errors are
// transient. Otherwise the error message decides: stale prepared statement
// wording maps to ClassStaleSession, connectivity wording to ClassTransient,
// and everything else (constraint violations, validation, not found) is fatal.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassFatal
	}
	if errors.Is(err, context.Canceled) {
		return ClassFatal
	}
	if errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) {
		return ClassTransient
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, staleSessionPatterns) {
		return ClassStaleSession
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}
	if containsAny(msg, transientPatterns) {
		return ClassTransient
	}
	return ClassFatal
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
