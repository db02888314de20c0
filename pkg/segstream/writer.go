package segstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/pkg/id"
	"github.com/rzbill/segstream/pkg/log"
)

// WriterState is the lifecycle state of an EventWriter.
type WriterState int32

const (
	WriterOpen WriterState = iota
	WriterWriting
	WriterCompleting
	WriterClosed
	WriterFailed
	WriterAborted
)

func (s WriterState) String() string {
	switch s {
	case WriterOpen:
		return "open"
	case WriterWriting:
		return "writing"
	case WriterCompleting:
		return "completing"
	case WriterClosed:
		return "closed"
	case WriterFailed:
		return "failed"
	case WriterAborted:
		return "aborted"
	default:
		return fmt.Sprintf("WriterState(%d)", int32(s))
	}
}

func (s WriterState) terminal() bool { return s >= WriterClosed }

// WriterOption configures NewWriter.
type WriterOption func(*EventWriter)

// WithRoutingKey pins the routing key of every event on the writer. The
// default is a fresh unique key per writer, which keeps all of its events
// in one segment.
func WithRoutingKey(key string) WriterOption {
	return func(w *EventWriter) {
		if key != "" {
			w.routingKey = key
		}
	}
}

// EventWriter appends events to one stream over a single write call.
// Events written on the same writer are stored in submission order.
//
// An EventWriter has a single owner. Concurrent Write or Complete calls
// fail with ErrInvalidState. Close may be called from any goroutine.
type EventWriter struct {
	c          *Client
	key        id.ID
	scope      string
	stream     string
	routingKey string
	logger     log.Logger

	sink   EventSink
	cancel context.CancelFunc

	busy    atomic.Bool
	written atomic.Int64

	mu    sync.Mutex
	state WriterState
	err   error
}

// NewWriter opens a write call on scope/stream. Cancelling ctx aborts the
// writer.
func (c *Client) NewWriter(ctx context.Context, scope, stream string, opts ...WriterOption) (*EventWriter, error) {
	const op = "NewWriter"
	if err := c.checkStream(op, scope, stream); err != nil {
		return nil, err
	}
	w := &EventWriter{c: c, scope: scope, stream: stream}
	for _, o := range opts {
		o(w)
	}
	if w.routingKey == "" {
		w.routingKey = id.New().String()
	}
	callCtx, cancel := context.WithCancel(ctx)
	sink, err := c.t.WriteEvents(callCtx)
	if err != nil {
		cancel()
		return nil, wrapErr(op, scope, stream, err)
	}
	w.sink, w.cancel = sink, cancel
	w.key = id.New()
	w.logger = c.logger.With(log.Str("writer", w.key.String()), log.Str("scope", scope), log.Str("stream", stream))
	c.track(w.key, w)
	w.logger.Debug("writer opened", log.Str("routing_key", w.routingKey))
	return w, nil
}

// State returns the current lifecycle state.
func (w *EventWriter) State() WriterState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Written returns how many events were handed to the transport.
func (w *EventWriter) Written() int64 { return w.written.Load() }

// RoutingKey returns the key every event of the writer carries.
func (w *EventWriter) RoutingKey() string { return w.routingKey }

// Write sends one event. It blocks while the transport applies flow
// control. A payload over the client's size limit fails the writer; so does
// any rejection by the store. Cancelling ctx aborts the writer.
func (w *EventWriter) Write(ctx context.Context, payload []byte) error {
	const op = "Write"
	if !w.busy.CompareAndSwap(false, true) {
		return w.newErr(KindInvalidState, op, "writer is in use by another caller")
	}
	defer w.busy.Store(false)

	if err := w.enter(op, WriterWriting, WriterOpen, WriterWriting); err != nil {
		return err
	}
	if len(payload) > w.c.maxEventSize {
		err := w.newErr(KindInvalidArgument, op, "event of %d bytes exceeds limit of %d", len(payload), w.c.maxEventSize)
		w.finish(WriterFailed, err)
		return err
	}

	stop := context.AfterFunc(ctx, w.cancel)
	defer stop()
	err := w.sink.Send(&segstreamv1.WriteEventsRequest{Scope: w.scope, Stream: w.stream, Event: payload, RoutingKey: w.routingKey})
	if err != nil {
		if errors.Is(err, io.EOF) {
			// The store ended the call; its status comes back on receive.
			_, err = w.sink.CloseAndRecv()
			if err == nil {
				err = errors.New("write call closed by the store")
			}
		}
		return w.fail(ctx, op, err)
	}
	w.written.Add(1)
	return nil
}

// Complete ends the write call and waits for the store to acknowledge
// every event. After Complete returns the writer is inert.
func (w *EventWriter) Complete(ctx context.Context) error {
	const op = "Complete"
	if !w.busy.CompareAndSwap(false, true) {
		return w.newErr(KindInvalidState, op, "writer is in use by another caller")
	}
	defer w.busy.Store(false)

	if err := w.enter(op, WriterCompleting, WriterOpen, WriterWriting); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, w.cancel)
	defer stop()
	resp, err := w.sink.CloseAndRecv()
	if err != nil {
		return w.fail(ctx, op, err)
	}
	if sent := w.written.Load(); resp.Count != sent {
		err := w.newErr(KindAborted, op, "store acknowledged %d of %d events", resp.Count, sent)
		w.finish(WriterFailed, err)
		return err
	}
	w.finish(WriterClosed, nil)
	w.logger.Debug("writer completed", log.Int64("events", resp.Count))
	return nil
}

// Close releases the write call. Closing before Complete aborts the writer
// and events already sent are not guaranteed stored. Close is idempotent.
func (w *EventWriter) Close() error {
	w.mu.Lock()
	aborted := !w.state.terminal()
	if aborted {
		w.state = WriterAborted
		w.err = w.newErr(KindAborted, "Close", "writer closed before Complete")
	}
	w.mu.Unlock()
	w.cancel()
	w.c.untrack(w.key)
	if aborted {
		w.logger.Debug("writer aborted", log.Int64("events", w.written.Load()))
	}
	return nil
}

func (w *EventWriter) kind() string     { return "writer" }
func (w *EventWriter) target() StreamID { return StreamID{Scope: w.scope, Stream: w.stream} }
func (w *EventWriter) release()         { _ = w.Close() }

// enter moves the writer to next if it is in one of from.
func (w *EventWriter) enter(op string, next WriterState, from ...WriterState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range from {
		if w.state == s {
			w.state = next
			return nil
		}
	}
	e := w.newErr(KindInvalidState, op, "writer is %s", w.state)
	e.Err = w.err
	return e
}

// fail classifies a transport error. Rejections by the store fail the
// writer; a broken call or cancellation aborts it and is reported as
// KindAborted with the transport status kept in Err.
func (w *EventWriter) fail(ctx context.Context, op string, err error) error {
	werr := wrapErr(op, w.scope, w.stream, err)
	next := WriterFailed
	switch KindOf(err) {
	case KindAborted, KindUnavailable, KindUnknown:
		next = WriterAborted
		if e, ok := werr.(*Error); ok && e.Kind != KindAborted {
			werr = &Error{Kind: KindAborted, Op: op, Scope: w.scope, Stream: w.stream, Msg: e.Msg, Err: err}
		}
	}
	if ctx.Err() != nil {
		next = WriterAborted
		werr = &Error{Kind: KindAborted, Op: op, Scope: w.scope, Stream: w.stream, Msg: ctx.Err().Error(), Err: ctx.Err()}
	}
	w.finish(next, werr)
	w.logger.Warn("writer "+next.String(), log.Err(werr), log.Int64("events", w.written.Load()))
	return werr
}

func (w *EventWriter) finish(state WriterState, err error) {
	w.mu.Lock()
	if !w.state.terminal() {
		w.state, w.err = state, err
	}
	w.mu.Unlock()
	w.cancel()
	w.c.untrack(w.key)
}

func (w *EventWriter) newErr(kind Kind, op, format string, args ...any) *Error {
	return newErr(kind, op, w.scope, w.stream, format, args...)
}
