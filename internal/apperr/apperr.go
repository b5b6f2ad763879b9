// Package apperr classifies failures from the CineVibe backend into the
// small taxonomy the view-models surface to users.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind is a machine-readable failure class.
type Kind string

const (
	KindNetwork    Kind = "NETWORK"
	KindServer     Kind = "SERVER"
	KindValidation Kind = "VALIDATION"
	KindUnknown    Kind = "UNKNOWN"
)

// Error carries a Kind plus whatever detail the failing layer had.
// Code is the HTTP status for KindServer and zero otherwise.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindServer && e.Code > 0 && e.Message != "":
		return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
	case e.Kind == KindServer && e.Code > 0:
		return fmt.Sprintf("server error (%d)", e.Code)
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return strings.ToLower(string(e.Kind)) + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Kind (and Code when the target sets one), so
// callers can write errors.Is(err, apperr.ErrNetwork).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrNetwork    = &Error{Kind: KindNetwork}
	ErrServer     = &Error{Kind: KindServer}
	ErrValidation = &Error{Kind: KindValidation}
	ErrUnknown    = &Error{Kind: KindUnknown}
)

func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network unavailable", Err: err}
}

func Server(code int, message string) *Error {
	return &Error{Kind: KindServer, Code: code, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unknown(err error) *Error {
	return &Error{Kind: KindUnknown, Err: err}
}

// Classify maps an arbitrary error onto the taxonomy. Errors that are already
// classified pass through unchanged; context cancellation is left alone so
// callers can tell a closed screen from a failed request.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if isNetwork(err) {
		return Network(err)
	}
	return Unknown(err)
}

// KindOf reports the Kind of err, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if isNetwork(err) {
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage renders err the way the UI shows it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if !errors.As(err, &ae) {
		if isNetwork(err) {
			return "Network error: check your connection"
		}
		return err.Error()
	}
	switch ae.Kind {
	case KindNetwork:
		return "Network error: check your connection"
	case KindServer:
		if ae.Code == 401 || ae.Code == 403 {
			return "Session expired: sign in again"
		}
		return ae.Error()
	case KindValidation:
		return ae.Message
	default:
		return ae.Error()
	}
}

func isNetwork(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "timeout")
}
