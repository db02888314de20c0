// Package segstreamtest runs an in-process gateway for tests of code built
// on the segstream client.
//
//	func TestThing(t *testing.T) {
//	    c := segstreamtest.New(t)
//	    _, _ = c.CreateScope(ctx, "myscope")
//	}
package segstreamtest

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/internal/gateway"
	"github.com/rzbill/segstream/internal/runtime"
	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
	"github.com/rzbill/segstream/pkg/segstream"
)

const bufSize = 1 << 20

// Server is a gateway backed by a store in a test temp dir.
type Server struct {
	Runtime *runtime.Runtime
	conn    *grpc.ClientConn
}

// NewServer starts a gateway. Everything it holds is released in t.Cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{
		DataDir: t.TempDir(),
		Fsync:   pebblestore.FsyncModeNever,
		Config:  config.Default(),
	})
	if err != nil {
		t.Fatalf("segstreamtest: open runtime: %v", err)
	}
	srv, err := gateway.New(rt, nil)
	if err != nil {
		_ = rt.Close()
		t.Fatalf("segstreamtest: gateway: %v", err)
	}
	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("segstreamtest: dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Close()
		_ = rt.Close()
	})
	return &Server{Runtime: rt, conn: conn}
}

// Conn returns the client connection to the gateway.
func (s *Server) Conn() grpc.ClientConnInterface { return s.conn }

// Client returns a new client over the shared connection, closed in
// t.Cleanup.
func (s *Server) Client(t testing.TB, opts ...segstream.Option) *segstream.Client {
	t.Helper()
	c := segstream.New(segstream.NewGRPCTransport(s.conn), opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// New starts a gateway and returns a client connected to it.
func New(t testing.TB, opts ...segstream.Option) *segstream.Client {
	t.Helper()
	return NewServer(t).Client(t, opts...)
}
