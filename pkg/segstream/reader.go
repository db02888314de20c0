package segstream

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/pkg/id"
	"github.com/rzbill/segstream/pkg/log"
)

// ReaderOption configures NewReader.
type ReaderOption func(*readerConfig)

type readerConfig struct {
	bound  *StreamCut
	start  *StreamCut
	filter string
}

// WithBound makes the read bounded: it ends with ErrEndOfStream once every
// segment has been read up to its offset in cut. The cut must belong to the
// stream's current segment generation.
func WithBound(cut StreamCut) ReaderOption {
	return func(c *readerConfig) { c.bound = &cut }
}

// WithStart starts the read at cut instead of the head of the stream. An
// event's Cut resumes right after that event.
func WithStart(cut StreamCut) ReaderOption {
	return func(c *readerConfig) { c.start = &cut }
}

// WithFilter skips events for which the CEL expression is false.
func WithFilter(expr string) ReaderOption {
	return func(c *readerConfig) { c.filter = expr }
}

// EventReader delivers the events of one stream. Order is preserved within
// a segment; events of different segments interleave in no fixed order.
//
// An EventReader has a single owner. Close may be called from any
// goroutine, including while Next is blocked.
type EventReader struct {
	c       *Client
	key     id.ID
	scope   string
	stream  string
	bounded bool
	filter  eventFilter
	logger  log.Logger

	src    EventSource
	cancel context.CancelFunc

	busy   atomic.Bool
	closed atomic.Bool

	mu   sync.Mutex
	err  error
	last StreamCut
}

// NewReader opens a read call on scope/stream. Without WithBound the read
// never ends on its own and Next waits for new events once it catches up.
func (c *Client) NewReader(ctx context.Context, scope, stream string, opts ...ReaderOption) (*EventReader, error) {
	const op = "NewReader"
	if err := c.checkStream(op, scope, stream); err != nil {
		return nil, err
	}
	var cfg readerConfig
	for _, o := range opts {
		o(&cfg)
	}
	req := &segstreamv1.ReadEventsRequest{Scope: scope, Stream: stream}
	for _, cut := range []*StreamCut{cfg.start, cfg.bound} {
		if cut != nil && (cut.scope != scope || cut.stream != stream) {
			return nil, newErr(KindInvalidArgument, op, scope, stream, "cut %s belongs to another stream", cut)
		}
	}
	if cfg.start != nil && cfg.bound != nil {
		if err := checkRange(*cfg.start, *cfg.bound); err != nil {
			err.Op, err.Scope, err.Stream = op, scope, stream
			return nil, err
		}
	}
	if cfg.start != nil {
		req.FromStreamCut = cfg.start.toWire()
	}
	if cfg.bound != nil {
		req.ToStreamCut = cfg.bound.toWire()
	}
	f, err := compileFilter(cfg.filter)
	if err != nil {
		return nil, &Error{Kind: KindInvalidArgument, Op: op, Scope: scope, Stream: stream, Msg: "filter: " + err.Error(), Err: err}
	}

	callCtx, cancel := context.WithCancel(ctx)
	src, err := c.t.ReadEvents(callCtx, req)
	if err != nil {
		cancel()
		return nil, wrapErr(op, scope, stream, err)
	}
	r := &EventReader{c: c, scope: scope, stream: stream, bounded: cfg.bound != nil, filter: f, src: src, cancel: cancel}
	if cfg.start != nil {
		r.last = *cfg.start
	}
	r.key = id.New()
	r.logger = c.logger.With(log.Str("reader", r.key.String()), log.Str("scope", scope), log.Str("stream", stream))
	c.track(r.key, r)
	r.logger.Debug("reader opened", log.Bool("bounded", r.bounded))
	return r, nil
}

// checkRange rejects a start cut that cannot precede bound. A start from an
// older generation is fine; the store reads forward through later epochs.
func checkRange(start, bound StreamCut) *Error {
	switch {
	case start.generation > bound.generation:
		return &Error{Kind: KindStaleCut, Msg: "start cut is from a newer generation than the bound"}
	case start.generation < bound.generation:
		return nil
	}
	after, err := bound.AtOrAfter(start)
	if err != nil {
		var e *Error
		errors.As(err, &e)
		return e
	}
	if !after {
		return &Error{Kind: KindInvalidArgument, Msg: "start cut is after the bound"}
	}
	return nil
}

// Next returns the next event. A bounded read returns ErrEndOfStream once
// drained, and again on every later call. An unbounded read blocks until an
// event arrives, ctx is done or the reader is closed. Any other error ends
// the read; later calls fail with ErrInvalidState wrapping it.
func (r *EventReader) Next(ctx context.Context) (Event, error) {
	const op = "Next"
	if !r.busy.CompareAndSwap(false, true) {
		return Event{}, newErr(KindInvalidState, op, r.scope, r.stream, "reader is in use by another caller")
	}
	defer r.busy.Store(false)
	if r.closed.Load() {
		return Event{}, newErr(KindInvalidState, op, r.scope, r.stream, "reader is closed")
	}
	if err := r.terminal(); err != nil {
		if err == ErrEndOfStream {
			return Event{}, err
		}
		e := newErr(KindInvalidState, op, r.scope, r.stream, "read already ended")
		e.Err = err
		return Event{}, e
	}

	stop := context.AfterFunc(ctx, r.cancel)
	defer stop()
	for {
		m, err := r.src.Recv()
		if err != nil {
			return Event{}, r.end(ctx, op, err)
		}
		ev := eventFromWire(r.scope, r.stream, m)
		r.mu.Lock()
		r.last = ev.Cut
		r.mu.Unlock()
		if r.filter.match(ev) {
			return ev, nil
		}
	}
}

// end records why the read stopped and returns it.
func (r *EventReader) end(ctx context.Context, op string, err error) error {
	var out error
	switch {
	case errors.Is(err, io.EOF) && r.bounded:
		out = ErrEndOfStream
	case errors.Is(err, io.EOF):
		out = newErr(KindAborted, op, r.scope, r.stream, "read closed by the store")
	case r.closed.Load():
		out = newErr(KindAborted, op, r.scope, r.stream, "reader closed")
	case ctx.Err() != nil:
		out = &Error{Kind: KindAborted, Op: op, Scope: r.scope, Stream: r.stream, Msg: ctx.Err().Error(), Err: ctx.Err()}
	default:
		out = wrapErr(op, r.scope, r.stream, err)
	}
	r.mu.Lock()
	if r.err == nil {
		r.err = out
	}
	r.mu.Unlock()
	r.cancel()
	r.c.untrack(r.key)
	if out == ErrEndOfStream {
		r.logger.Debug("reader drained")
	} else {
		r.logger.Warn("read ended", log.Err(out))
	}
	return out
}

func (r *EventReader) terminal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Cut returns the stream cut just after the last event received, filtered
// or not. It is the zero cut until the first event of a read without a
// start.
func (r *EventReader) Cut() StreamCut {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Events ranges over the read until it ends. ErrEndOfStream ends the loop
// silently; any other error is yielded once as the last element.
func (r *EventReader) Events(ctx context.Context) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := r.Next(ctx)
			if errors.Is(err, ErrEndOfStream) {
				return
			}
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Close releases the read call. It is idempotent.
func (r *EventReader) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.cancel()
	r.c.untrack(r.key)
	r.logger.Debug("reader closed")
	return nil
}

func (r *EventReader) kind() string     { return "reader" }
func (r *EventReader) target() StreamID { return StreamID{Scope: r.scope, Stream: r.stream} }
func (r *EventReader) release()         { _ = r.Close() }
