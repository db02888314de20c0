package segstream

import (
	"context"
	"errors"
	"io"
	"iter"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// CreateScope creates a scope. created is false when it already existed;
// that is not an error.
func (c *Client) CreateScope(ctx context.Context, scope string) (created bool, err error) {
	const op = "CreateScope"
	if err := c.checkOpen(op); err != nil {
		return false, err
	}
	if err := c.checkName(op, scope, "", "scope", scope); err != nil {
		return false, err
	}
	resp, err := c.t.CreateScope(ctx, &segstreamv1.CreateScopeRequest{Scope: scope})
	if isAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, wrapErr(op, scope, "", err)
	}
	return resp.Created, nil
}

// CreateStream creates a stream in an existing scope. When the stream
// already exists created is false and its policy is left as it was, even if
// it differs from policy; use GetStreamInfo to inspect it.
func (c *Client) CreateStream(ctx context.Context, scope, stream string, policy ScalingPolicy) (created bool, err error) {
	const op = "CreateStream"
	if err := c.checkStream(op, scope, stream); err != nil {
		return false, err
	}
	if !policy.valid() {
		return false, newErr(KindInvalidArgument, op, scope, stream, "invalid scaling policy %s", policy)
	}
	resp, err := c.t.CreateStream(ctx, &segstreamv1.CreateStreamRequest{Scope: scope, Stream: stream, ScalingPolicy: policy.toWire()})
	if isAlreadyExists(err) {
		return false, nil
	}
	if err != nil {
		return false, wrapErr(op, scope, stream, err)
	}
	c.logger.Debug("stream created", logStream(scope, stream)...)
	return resp.Created, nil
}

// UpdateStream replaces the scaling policy of a stream. The store seals the
// current segments and opens a new generation, so cuts taken before the
// update no longer compare with cuts taken after it.
func (c *Client) UpdateStream(ctx context.Context, scope, stream string, policy ScalingPolicy) error {
	const op = "UpdateStream"
	if err := c.checkStream(op, scope, stream); err != nil {
		return err
	}
	if !policy.valid() {
		return newErr(KindInvalidArgument, op, scope, stream, "invalid scaling policy %s", policy)
	}
	_, err := c.t.UpdateStream(ctx, &segstreamv1.UpdateStreamRequest{Scope: scope, Stream: stream, ScalingPolicy: policy.toWire()})
	return wrapErr(op, scope, stream, err)
}

// ListStreams lists the streams of scope. Each range over the result opens
// a fresh listing and pulls one entry at a time; breaking out of the loop
// releases it. A failure is yielded once as the last element.
func (c *Client) ListStreams(ctx context.Context, scope string) iter.Seq2[StreamID, error] {
	const op = "ListStreams"
	return func(yield func(StreamID, error) bool) {
		if err := c.checkOpen(op); err != nil {
			yield(StreamID{}, err)
			return
		}
		if err := c.checkName(op, scope, "", "scope", scope); err != nil {
			yield(StreamID{}, err)
			return
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		list, err := c.t.ListStreams(ctx, &segstreamv1.ListStreamsRequest{Scope: scope})
		if err != nil {
			yield(StreamID{}, wrapErr(op, scope, "", err))
			return
		}
		for {
			m, err := list.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(StreamID{}, wrapErr(op, scope, "", err))
				return
			}
			if !yield(StreamID{Scope: m.Scope, Stream: m.Stream}, nil) {
				return
			}
		}
	}
}
