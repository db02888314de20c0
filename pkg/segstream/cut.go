package segstream

import (
	"context"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// GetStreamInfo returns the head cut, tail cut and policy of a stream as of
// one point in time.
func (c *Client) GetStreamInfo(ctx context.Context, scope, stream string) (StreamInfo, error) {
	const op = "GetStreamInfo"
	if err := c.checkStream(op, scope, stream); err != nil {
		return StreamInfo{}, err
	}
	resp, err := c.t.GetStreamInfo(ctx, &segstreamv1.GetStreamInfoRequest{Scope: scope, Stream: stream})
	if err != nil {
		return StreamInfo{}, wrapErr(op, scope, stream, err)
	}
	return StreamInfo{
		StreamID: StreamID{Scope: scope, Stream: stream},
		Head:     cutFromWire(resp.HeadStreamCut),
		Tail:     cutFromWire(resp.TailStreamCut),
		Policy:   policyFromWire(resp.ScalingPolicy),
	}, nil
}

// GetTailCut returns the end offset of every active segment. A read bounded
// by it delivers exactly the events stored before the call.
func (c *Client) GetTailCut(ctx context.Context, scope, stream string) (StreamCut, error) {
	info, err := c.GetStreamInfo(ctx, scope, stream)
	if err != nil {
		return StreamCut{}, err
	}
	return info.Tail, nil
}

// GetHeadCut returns the earliest readable offsets of the stream.
func (c *Client) GetHeadCut(ctx context.Context, scope, stream string) (StreamCut, error) {
	info, err := c.GetStreamInfo(ctx, scope, stream)
	if err != nil {
		return StreamCut{}, err
	}
	return info.Head, nil
}
