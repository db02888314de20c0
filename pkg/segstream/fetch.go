package segstream

import (
	"context"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// FetchEvent reads the single event p addresses. A pointer that does not
// match a stored event returns ErrNotFound.
func (c *Client) FetchEvent(ctx context.Context, p EventPointer) ([]byte, error) {
	const op = "FetchEvent"
	if err := c.checkStream(op, p.Scope, p.Stream); err != nil {
		return nil, err
	}
	if p.Offset < 0 || p.Length < FrameOverhead {
		return nil, newErr(KindInvalidArgument, op, p.Scope, p.Stream, "malformed pointer %s", p)
	}
	resp, err := c.t.FetchEvent(ctx, &segstreamv1.FetchEventRequest{Scope: p.Scope, Stream: p.Stream, EventPointer: p.toWire()})
	if err != nil {
		return nil, wrapErr(op, p.Scope, p.Stream, err)
	}
	return resp.Event, nil
}
