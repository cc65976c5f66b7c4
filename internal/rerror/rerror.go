// Package rerror defines the error taxonomy shared by routerd and rezesh.
//
// Each kind below is a distinct Go type rather than a flat string-keyed enum,
// so callers can use errors.As to recover kind-specific fields and errors.Is
// to match sentinels through the wrapper.
package rerror

import "fmt"

// Kind identifies which taxonomy bucket an error belongs to.
type Kind int

const (
	KindInit Kind = iota
	KindParse
	KindAction
	KindRemoteIO
	KindRequest
	KindKernel
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindParse:
		return "parse"
	case KindAction:
		return "action"
	case KindRemoteIO:
		return "remote_io"
	case KindRequest:
		return "request"
	case KindKernel:
		return "kernel"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Error is the common shape: a taxonomy kind, a message, and an optional
// wrapped cause for errors.Is/errors.As chaining.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// Init wraps a fatal startup error: missing/invalid mode JSON, unreadable CLI
// definitions directory. Always fatal, never recovered by the shell loop.
func Init(msg string, cause error) *Error { return newErr(KindInit, msg, cause) }

// ParseKind distinguishes the Unrecognized/Ambiguous/Incomplete parse outcomes
// that ride inside a Parse error for caret-position reporting.
type ParseKind int

const (
	ParseUnrecognized ParseKind = iota
	ParseAmbiguous
	ParseIncomplete
)

// ParseError surfaces a non-fatal command-line parse failure with the cursor
// position to place the caret under.
type ParseError struct {
	*Error
	ParseKind ParseKind
	Pos       int
}

func Parse(pk ParseKind, pos int, msg string) *ParseError {
	return &ParseError{Error: newErr(KindParse, msg, nil), ParseKind: pk, Pos: pos}
}

// Action wraps a dispatch-time failure: missing action, unknown built-in,
// undefined remote, or a failed remote call. Never fatal; the shell loop
// continues after reporting it.
func Action(msg string, cause error) *Error { return newErr(KindAction, msg, cause) }

// RemoteIO wraps a UDS connect/send/recv failure on the client side. The
// shell reports it and keeps running; the failed stream is dropped and the
// next call dials again. No reconnect is scheduled after the failure.
func RemoteIO(msg string, cause error) *Error { return newErr(KindRemoteIO, msg, cause) }

// RequestStatus mirrors the JSON error object's "status" field on the wire.
type RequestStatus string

const (
	StatusBadRequest RequestStatus = "400"
	StatusNotFound   RequestStatus = "404"
)

// RequestError wraps a malformed or unroutable UDS request. The server
// responds with the JSON error object and closes the connection.
type RequestError struct {
	*Error
	Status RequestStatus
}

func Request(status RequestStatus, msg string) *RequestError {
	return &RequestError{Error: newErr(KindRequest, msg, nil), Status: status}
}

// Kernel wraps a netlink send/recv or ACK failure. Logged and propagated;
// never tears down the owning worker.
func Kernel(msg string, cause error) *Error { return newErr(KindKernel, msg, cause) }

// ErrShutdown is the sentinel event-loop handlers return to end the loop
// cleanly. It is not a bug and carries no cause.
var ErrShutdown = newErr(KindShutdown, "system shutdown", nil)
