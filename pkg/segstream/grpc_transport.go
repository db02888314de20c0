package segstream

import (
	"context"
	"io"

	"google.golang.org/grpc"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// GRPCTransport implements Transport over the StreamGateway gRPC service.
type GRPCTransport struct {
	cli    segstreamv1.StreamGatewayClient
	closer io.Closer
}

// NewGRPCTransport adapts conn. The caller keeps ownership of conn;
// Close on the transport leaves it open.
func NewGRPCTransport(conn grpc.ClientConnInterface) *GRPCTransport {
	return &GRPCTransport{cli: segstreamv1.NewStreamGatewayClient(conn)}
}

func (t *GRPCTransport) CreateScope(ctx context.Context, req *segstreamv1.CreateScopeRequest) (*segstreamv1.CreateScopeResponse, error) {
	return t.cli.CreateScope(ctx, req)
}

func (t *GRPCTransport) CreateStream(ctx context.Context, req *segstreamv1.CreateStreamRequest) (*segstreamv1.CreateStreamResponse, error) {
	return t.cli.CreateStream(ctx, req)
}

func (t *GRPCTransport) UpdateStream(ctx context.Context, req *segstreamv1.UpdateStreamRequest) (*segstreamv1.UpdateStreamResponse, error) {
	return t.cli.UpdateStream(ctx, req)
}

func (t *GRPCTransport) GetStreamInfo(ctx context.Context, req *segstreamv1.GetStreamInfoRequest) (*segstreamv1.GetStreamInfoResponse, error) {
	return t.cli.GetStreamInfo(ctx, req)
}

func (t *GRPCTransport) FetchEvent(ctx context.Context, req *segstreamv1.FetchEventRequest) (*segstreamv1.FetchEventResponse, error) {
	return t.cli.FetchEvent(ctx, req)
}

func (t *GRPCTransport) ListStreams(ctx context.Context, req *segstreamv1.ListStreamsRequest) (StreamList, error) {
	return t.cli.ListStreams(ctx, req)
}

func (t *GRPCTransport) ReadEvents(ctx context.Context, req *segstreamv1.ReadEventsRequest) (EventSource, error) {
	return t.cli.ReadEvents(ctx, req)
}

func (t *GRPCTransport) WriteEvents(ctx context.Context) (EventSink, error) {
	return t.cli.WriteEvents(ctx)
}

// Close releases the connection if the transport dialled it.
func (t *GRPCTransport) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer.Close()
}
