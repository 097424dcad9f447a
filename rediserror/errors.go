// Package rediserror is the Error Mapper of spec §4.3: it converts every
// transport/codec failure condition into one stable taxonomy, used by
// every layer above the wire. It is built on github.com/joomcode/errorx,
// the same property-bag error library the teacher (joomcode/redispipe)
// uses in redisconn/error.go, generalized from that file's ad-hoc
// EKConnection/EKDb properties into a full namespace of traits.
package rediserror

import (
	"fmt"

	"github.com/joomcode/errorx"
)

// Kind is one taxonomy entry from spec §4.3.
type Kind int

const (
	// KindConnectionLost covers I/O errors, EOF during read, write after close.
	KindConnectionLost Kind = iota + 1
	// KindProtocol covers malformed length/prefix, unexpected EOF, framing violations.
	KindProtocol
	// KindServerError covers a reply of kind Error surfaced by the operation surface.
	KindServerError
	// KindPipelinePartial covers one or more commands in a flushed pipeline returning errors.
	KindPipelinePartial
	// KindSubscribedMode covers a normal command attempted while the connection is Subscribed.
	KindSubscribedMode
	// KindInvalidState covers WATCH after MULTI, blocking ops in MULTI, EXEC or DISCARD
	// without MULTI, SCRIPT KILL inside MULTI. MULTI inside MULTI is a no-op, not an error.
	KindInvalidState
	// KindUnsupported covers operations that cannot run in the current mode or driver variant.
	KindUnsupported
	// KindRequest covers a command that could not be encoded (bad argument type, malformed batch).
	KindRequest
	// KindPoolExhausted covers a Pool lease that could not be satisfied within its wait budget.
	KindPoolExhausted
)

var kindNames = map[Kind]string{
	KindConnectionLost:  "ConnectionLost",
	KindProtocol:        "Protocol",
	KindServerError:     "ServerError",
	KindPipelinePartial: "PipelinePartial",
	KindSubscribedMode:  "SubscribedMode",
	KindInvalidState:    "InvalidState",
	KindUnsupported:     "Unsupported",
	KindRequest:         "Request",
	KindPoolExhausted:   "PoolExhausted",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Namespace roots every trait this package registers with errorx, the
// way rediscluster/error.go roots ErrCluster as a single namespace.
var namespace = errorx.NewNamespace("redis")

var traits = map[Kind]*errorx.Type{
	KindConnectionLost:  errorx.NewType(namespace, "connection_lost", errorx.Temporary()),
	KindProtocol:        errorx.NewType(namespace, "protocol"),
	KindServerError:     errorx.NewType(namespace, "server_error"),
	KindPipelinePartial: errorx.NewType(namespace, "pipeline_partial"),
	KindSubscribedMode:  errorx.NewType(namespace, "subscribed_mode"),
	KindInvalidState:    errorx.NewType(namespace, "invalid_state"),
	KindUnsupported:     errorx.NewType(namespace, "unsupported"),
	KindRequest:         errorx.NewType(namespace, "request"),
	KindPoolExhausted:   errorx.NewType(namespace, "pool_exhausted", errorx.Temporary()),
}

// Properties attached to mapped errors, registered once per process
// the way redisconn/error.go registers EKConnection/EKDb.
var (
	// PValue carries the offending value for a Request-kind error.
	PValue = errorx.RegisterProperty("value")
	// POutcomes carries the full ordered []Outcome for a PipelinePartial error.
	POutcomes = errorx.RegisterProperty("outcomes")
	// PCommand carries the resp.Command that failed, when known.
	PCommand = errorx.RegisterProperty("command")
)

// Error wraps an *errorx.Error and exposes the taxonomy Kind it was
// raised with, so callers can switch on Kind without importing errorx
// directly.
type Error struct {
	Err  *errorx.Error
	kind Kind
}

// Kind reports which taxonomy entry this error belongs to.
func (e *Error) Kind() Kind { return e.kind }

// Error implements the error interface by delegating to the wrapped
// *errorx.Error (named Err to avoid colliding with this method name).
func (e *Error) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped *errorx.Error for errors.As/errors.Is and
// for callers that need errorx-specific behavior (traits, properties).
func (e *Error) Unwrap() error { return e.Err }

// New builds a fresh taxonomy error with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Err: traits[kind].New(msg), kind: kind}
}

// Wrap attaches cause as the chained underlying error (errorx's native
// cause chaining, per spec §4.3 "preserve the original cause as an
// attached chain").
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Err: traits[kind].Wrap(cause, msg), kind: kind}
}

// WithProperty attaches a named property and returns the same error,
// mirroring errorx.Error.WithProperty's fluent style.
func (e *Error) WithProperty(p errorx.Property, v interface{}) *Error {
	e.Err = e.Err.WithProperty(p, v)
	return e
}

// Is reports whether err is a rediserror.Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.kind == kind
}

// AsError unwraps err into a *rediserror.Error, if it is one.
func AsError(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
