package segstream

import (
	"context"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// Transport carries engine calls to a store. Streaming calls are bound to
// the context they are opened with; cancelling it tears the call down.
type Transport interface {
	CreateScope(ctx context.Context, req *segstreamv1.CreateScopeRequest) (*segstreamv1.CreateScopeResponse, error)
	CreateStream(ctx context.Context, req *segstreamv1.CreateStreamRequest) (*segstreamv1.CreateStreamResponse, error)
	UpdateStream(ctx context.Context, req *segstreamv1.UpdateStreamRequest) (*segstreamv1.UpdateStreamResponse, error)
	GetStreamInfo(ctx context.Context, req *segstreamv1.GetStreamInfoRequest) (*segstreamv1.GetStreamInfoResponse, error)
	FetchEvent(ctx context.Context, req *segstreamv1.FetchEventRequest) (*segstreamv1.FetchEventResponse, error)

	ListStreams(ctx context.Context, req *segstreamv1.ListStreamsRequest) (StreamList, error)
	ReadEvents(ctx context.Context, req *segstreamv1.ReadEventsRequest) (EventSource, error)
	WriteEvents(ctx context.Context) (EventSink, error)

	Close() error
}

// StreamList yields stream names until io.EOF.
type StreamList interface {
	Recv() (*segstreamv1.ListStreamsResponse, error)
}

// EventSource yields read events. A bounded read ends with io.EOF.
type EventSource interface {
	Recv() (*segstreamv1.ReadEventsResponse, error)
}

// EventSink accepts events for one write call. Send blocks under flow
// control. CloseAndRecv half-closes and waits for the store's ack.
type EventSink interface {
	Send(*segstreamv1.WriteEventsRequest) error
	CloseAndRecv() (*segstreamv1.WriteEventsResponse, error)
}
