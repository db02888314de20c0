package gateway

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/internal/runtime"
	"github.com/rzbill/segstream/pkg/log"
)

// Server owns the gRPC server instance serving the gateway.
type Server struct {
	rt     *runtime.Runtime
	logger log.Logger
	grpc   *grpc.Server
}

// New constructs a gRPC server and registers the gateway service.
func New(rt *runtime.Runtime, logger log.Logger, opts ...grpc.ServerOption) (*Server, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	svc, err := NewService(rt, logger)
	if err != nil {
		return nil, err
	}
	s := &Server{rt: rt, logger: logger.WithComponent("grpc")}
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(s.logUnary),
		grpc.ChainStreamInterceptor(s.logStream),
		grpc.WaitForHandlers(true),
	}, opts...)
	s.grpc = grpc.NewServer(opts...)
	segstreamv1.RegisterStreamGatewayServer(s.grpc, svc)
	return s, nil
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug("rpc", log.Str("method", info.FullMethod), log.Str("code", status.Code(err).String()), log.Duration("elapsed_ms", time.Since(start)))
	return resp, err
}

func (s *Server) logStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	s.logger.Debug("stream rpc", log.Str("method", info.FullMethod), log.Str("code", status.Code(err).String()), log.Duration("elapsed_ms", time.Since(start)))
	return err
}

// Serve serves on an existing listener until the server stops.
func (s *Server) Serve(lis net.Listener) error { return s.grpc.Serve(lis) }

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeContext(ctx, l)
}

// ServeContext serves on lis until ctx is done, then drains open calls.
func (s *Server) ServeContext(ctx context.Context, lis net.Listener) error {
	s.logger.Info("gateway listening", log.Str("addr", lis.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(lis) }()
	select {
	case <-ctx.Done():
		// Unbounded reads never finish on their own.
		stopped := make(chan struct{})
		go func() { s.grpc.GracefulStop(); close(stopped) }()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			s.grpc.Stop()
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// Close stops the server, closing its listeners and cancelling open
// streams, and waits for their handlers to return.
func (s *Server) Close() {
	if s.grpc != nil {
		s.grpc.Stop()
	}
}
