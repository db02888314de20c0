package segstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors for each failure kind. Use errors.Is to classify errors
// returned by this package.
var (
	// ErrInvalidArgument: malformed name, policy, cut or payload. Fix the input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound: the scope, stream or event does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable: the transport could not be established.
	ErrUnavailable = errors.New("unavailable")
	// ErrAborted: the transport broke or the call was cancelled. Events
	// written on the affected handle are not guaranteed to be stored.
	ErrAborted = errors.New("aborted")
	// ErrStaleCut: a stream cut belongs to a segment generation that no
	// longer matches the stream. Resolve a fresh cut.
	ErrStaleCut = errors.New("stale stream cut")
	// ErrInvalidState: a handle was used after Complete or Close, or by two
	// callers at once.
	ErrInvalidState = errors.New("invalid handle state")
	// ErrInternal: the store failed in a way the client cannot classify.
	ErrInternal = errors.New("internal error")
)

// ErrEndOfStream is returned by EventReader.Next once a bounded read has
// delivered every event up to its bound. It is not a failure.
var ErrEndOfStream = errors.New("end of stream")

// Kind classifies an error.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidArgument
	KindNotFound
	KindUnavailable
	KindAborted
	KindStaleCut
	KindInvalidState
	KindInternal
)

var kindSentinels = map[Kind]error{
	KindInvalidArgument: ErrInvalidArgument,
	KindNotFound:        ErrNotFound,
	KindUnavailable:     ErrUnavailable,
	KindAborted:         ErrAborted,
	KindStaleCut:        ErrStaleCut,
	KindInvalidState:    ErrInvalidState,
	KindInternal:        ErrInternal,
}

func (k Kind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return "unknown"
}

// Error carries the kind of a failure and where it happened.
type Error struct {
	Kind   Kind
	Op     string
	Scope  string
	Stream string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("segstream: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		if e.Scope != "" {
			sb.WriteString(" " + e.Scope)
			if e.Stream != "" {
				sb.WriteString("/" + e.Stream)
			}
		}
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Msg != "" {
		sb.WriteString(": " + e.Msg)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e's kind.
func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// KindOf classifies err. Engine errors report their own kind; gRPC status
// errors and context errors are mapped; anything else is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindAborted
	}
	if st, ok := status.FromError(err); ok {
		return kindOfCode(st.Code())
	}
	return KindUnknown
}

func kindOfCode(c codes.Code) Kind {
	switch c {
	case codes.InvalidArgument, codes.OutOfRange:
		return KindInvalidArgument
	case codes.NotFound:
		return KindNotFound
	case codes.Unavailable:
		return KindUnavailable
	case codes.Aborted, codes.Canceled, codes.DeadlineExceeded:
		return KindAborted
	case codes.FailedPrecondition:
		return KindStaleCut
	case codes.OK:
		return KindUnknown
	default:
		return KindInternal
	}
}

// wrapErr converts a transport error into an *Error for op. Errors that
// already carry a kind keep it.
func wrapErr(op, scope, stream string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	kind := KindOf(err)
	if kind == KindUnknown {
		kind = KindInternal
	}
	msg := err.Error()
	if st, ok := status.FromError(err); ok {
		msg = st.Message()
	}
	return &Error{Kind: kind, Op: op, Scope: scope, Stream: stream, Msg: msg, Err: err}
}

func newErr(kind Kind, op, scope, stream, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Scope: scope, Stream: stream, Msg: fmt.Sprintf(format, args...)}
}

// isAlreadyExists reports a gRPC AlreadyExists status, which idempotent
// creates treat as created=false.
func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
