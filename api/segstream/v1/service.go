package segstreamv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	StreamGateway_CreateScope_FullMethodName   = "/segstream.v1.StreamGateway/CreateScope"
	StreamGateway_CreateStream_FullMethodName  = "/segstream.v1.StreamGateway/CreateStream"
	StreamGateway_UpdateStream_FullMethodName  = "/segstream.v1.StreamGateway/UpdateStream"
	StreamGateway_ListStreams_FullMethodName   = "/segstream.v1.StreamGateway/ListStreams"
	StreamGateway_GetStreamInfo_FullMethodName = "/segstream.v1.StreamGateway/GetStreamInfo"
	StreamGateway_WriteEvents_FullMethodName   = "/segstream.v1.StreamGateway/WriteEvents"
	StreamGateway_ReadEvents_FullMethodName    = "/segstream.v1.StreamGateway/ReadEvents"
	StreamGateway_FetchEvent_FullMethodName    = "/segstream.v1.StreamGateway/FetchEvent"
)

// StreamGatewayClient is the client API for the StreamGateway service.
type StreamGatewayClient interface {
	CreateScope(ctx context.Context, in *CreateScopeRequest, opts ...grpc.CallOption) (*CreateScopeResponse, error)
	CreateStream(ctx context.Context, in *CreateStreamRequest, opts ...grpc.CallOption) (*CreateStreamResponse, error)
	UpdateStream(ctx context.Context, in *UpdateStreamRequest, opts ...grpc.CallOption) (*UpdateStreamResponse, error)
	ListStreams(ctx context.Context, in *ListStreamsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ListStreamsResponse], error)
	GetStreamInfo(ctx context.Context, in *GetStreamInfoRequest, opts ...grpc.CallOption) (*GetStreamInfoResponse, error)
	WriteEvents(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[WriteEventsRequest, WriteEventsResponse], error)
	ReadEvents(ctx context.Context, in *ReadEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ReadEventsResponse], error)
	FetchEvent(ctx context.Context, in *FetchEventRequest, opts ...grpc.CallOption) (*FetchEventResponse, error)
}

type streamGatewayClient struct {
	cc grpc.ClientConnInterface
}

func NewStreamGatewayClient(cc grpc.ClientConnInterface) StreamGatewayClient {
	return &streamGatewayClient{cc}
}

func callOpts(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *streamGatewayClient) CreateScope(ctx context.Context, in *CreateScopeRequest, opts ...grpc.CallOption) (*CreateScopeResponse, error) {
	out := new(CreateScopeResponse)
	if err := c.cc.Invoke(ctx, StreamGateway_CreateScope_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamGatewayClient) CreateStream(ctx context.Context, in *CreateStreamRequest, opts ...grpc.CallOption) (*CreateStreamResponse, error) {
	out := new(CreateStreamResponse)
	if err := c.cc.Invoke(ctx, StreamGateway_CreateStream_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamGatewayClient) UpdateStream(ctx context.Context, in *UpdateStreamRequest, opts ...grpc.CallOption) (*UpdateStreamResponse, error) {
	out := new(UpdateStreamResponse)
	if err := c.cc.Invoke(ctx, StreamGateway_UpdateStream_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamGatewayClient) ListStreams(ctx context.Context, in *ListStreamsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ListStreamsResponse], error) {
	stream, err := c.cc.NewStream(ctx, &StreamGateway_ServiceDesc.Streams[0], StreamGateway_ListStreams_FullMethodName, callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[ListStreamsRequest, ListStreamsResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *streamGatewayClient) GetStreamInfo(ctx context.Context, in *GetStreamInfoRequest, opts ...grpc.CallOption) (*GetStreamInfoResponse, error) {
	out := new(GetStreamInfoResponse)
	if err := c.cc.Invoke(ctx, StreamGateway_GetStreamInfo_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamGatewayClient) WriteEvents(ctx context.Context, opts ...grpc.CallOption) (grpc.ClientStreamingClient[WriteEventsRequest, WriteEventsResponse], error) {
	stream, err := c.cc.NewStream(ctx, &StreamGateway_ServiceDesc.Streams[1], StreamGateway_WriteEvents_FullMethodName, callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[WriteEventsRequest, WriteEventsResponse]{ClientStream: stream}, nil
}

func (c *streamGatewayClient) ReadEvents(ctx context.Context, in *ReadEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[ReadEventsResponse], error) {
	stream, err := c.cc.NewStream(ctx, &StreamGateway_ServiceDesc.Streams[2], StreamGateway_ReadEvents_FullMethodName, callOpts(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[ReadEventsRequest, ReadEventsResponse]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *streamGatewayClient) FetchEvent(ctx context.Context, in *FetchEventRequest, opts ...grpc.CallOption) (*FetchEventResponse, error) {
	out := new(FetchEventResponse)
	if err := c.cc.Invoke(ctx, StreamGateway_FetchEvent_FullMethodName, in, out, callOpts(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

// StreamGatewayServer is the server API for the StreamGateway service.
type StreamGatewayServer interface {
	CreateScope(context.Context, *CreateScopeRequest) (*CreateScopeResponse, error)
	CreateStream(context.Context, *CreateStreamRequest) (*CreateStreamResponse, error)
	UpdateStream(context.Context, *UpdateStreamRequest) (*UpdateStreamResponse, error)
	ListStreams(*ListStreamsRequest, grpc.ServerStreamingServer[ListStreamsResponse]) error
	GetStreamInfo(context.Context, *GetStreamInfoRequest) (*GetStreamInfoResponse, error)
	WriteEvents(grpc.ClientStreamingServer[WriteEventsRequest, WriteEventsResponse]) error
	ReadEvents(*ReadEventsRequest, grpc.ServerStreamingServer[ReadEventsResponse]) error
	FetchEvent(context.Context, *FetchEventRequest) (*FetchEventResponse, error)
}

// UnimplementedStreamGatewayServer can be embedded to have forward
// compatible implementations.
type UnimplementedStreamGatewayServer struct{}

func (UnimplementedStreamGatewayServer) CreateScope(context.Context, *CreateScopeRequest) (*CreateScopeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateScope not implemented")
}
func (UnimplementedStreamGatewayServer) CreateStream(context.Context, *CreateStreamRequest) (*CreateStreamResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateStream not implemented")
}
func (UnimplementedStreamGatewayServer) UpdateStream(context.Context, *UpdateStreamRequest) (*UpdateStreamResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateStream not implemented")
}
func (UnimplementedStreamGatewayServer) ListStreams(*ListStreamsRequest, grpc.ServerStreamingServer[ListStreamsResponse]) error {
	return status.Error(codes.Unimplemented, "method ListStreams not implemented")
}
func (UnimplementedStreamGatewayServer) GetStreamInfo(context.Context, *GetStreamInfoRequest) (*GetStreamInfoResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStreamInfo not implemented")
}
func (UnimplementedStreamGatewayServer) WriteEvents(grpc.ClientStreamingServer[WriteEventsRequest, WriteEventsResponse]) error {
	return status.Error(codes.Unimplemented, "method WriteEvents not implemented")
}
func (UnimplementedStreamGatewayServer) ReadEvents(*ReadEventsRequest, grpc.ServerStreamingServer[ReadEventsResponse]) error {
	return status.Error(codes.Unimplemented, "method ReadEvents not implemented")
}
func (UnimplementedStreamGatewayServer) FetchEvent(context.Context, *FetchEventRequest) (*FetchEventResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method FetchEvent not implemented")
}

func RegisterStreamGatewayServer(s grpc.ServiceRegistrar, srv StreamGatewayServer) {
	s.RegisterService(&StreamGateway_ServiceDesc, srv)
}

func unaryHandler[Req any, Res any](method string, call func(StreamGatewayServer, context.Context, *Req) (*Res, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StreamGatewayServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StreamGatewayServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _StreamGateway_ListStreams_Handler(srv any, stream grpc.ServerStream) error {
	m := new(ListStreamsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StreamGatewayServer).ListStreams(m, &grpc.GenericServerStream[ListStreamsRequest, ListStreamsResponse]{ServerStream: stream})
}

func _StreamGateway_WriteEvents_Handler(srv any, stream grpc.ServerStream) error {
	return srv.(StreamGatewayServer).WriteEvents(&grpc.GenericServerStream[WriteEventsRequest, WriteEventsResponse]{ServerStream: stream})
}

func _StreamGateway_ReadEvents_Handler(srv any, stream grpc.ServerStream) error {
	m := new(ReadEventsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StreamGatewayServer).ReadEvents(m, &grpc.GenericServerStream[ReadEventsRequest, ReadEventsResponse]{ServerStream: stream})
}

// StreamGateway_ServiceDesc is the grpc.ServiceDesc for StreamGateway.
// Stream indexes are referenced by the client stub and must not be reordered.
var StreamGateway_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "segstream.v1.StreamGateway",
	HandlerType: (*StreamGatewayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateScope", Handler: unaryHandler(StreamGateway_CreateScope_FullMethodName, StreamGatewayServer.CreateScope)},
		{MethodName: "CreateStream", Handler: unaryHandler(StreamGateway_CreateStream_FullMethodName, StreamGatewayServer.CreateStream)},
		{MethodName: "UpdateStream", Handler: unaryHandler(StreamGateway_UpdateStream_FullMethodName, StreamGatewayServer.UpdateStream)},
		{MethodName: "GetStreamInfo", Handler: unaryHandler(StreamGateway_GetStreamInfo_FullMethodName, StreamGatewayServer.GetStreamInfo)},
		{MethodName: "FetchEvent", Handler: unaryHandler(StreamGateway_FetchEvent_FullMethodName, StreamGatewayServer.FetchEvent)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "ListStreams", Handler: _StreamGateway_ListStreams_Handler, ServerStreams: true},
		{StreamName: "WriteEvents", Handler: _StreamGateway_WriteEvents_Handler, ClientStreams: true},
		{StreamName: "ReadEvents", Handler: _StreamGateway_ReadEvents_Handler, ServerStreams: true},
	},
	Metadata: "segstream/v1/gateway.proto",
}
