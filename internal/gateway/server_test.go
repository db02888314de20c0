package gateway

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/internal/runtime"
	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

const bufSize = 1 << 20

func newTestClient(t *testing.T) segstreamv1.StreamGatewayClient {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	srv, err := New(rt, nil)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	lis := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Close()
		_ = rt.Close()
	})
	return segstreamv1.NewStreamGatewayClient(conn)
}

func fixed(n int32) *segstreamv1.ScalingPolicy {
	return &segstreamv1.ScalingPolicy{ScaleType: segstreamv1.ScaleType_FIXED_NUM_SEGMENTS, MinNumSegments: n}
}

func setupStream(t *testing.T, c segstreamv1.StreamGatewayClient, segments int32) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.CreateScope(ctx, &segstreamv1.CreateScopeRequest{Scope: "myscope"}); err != nil {
		t.Fatalf("create scope: %v", err)
	}
	if _, err := c.CreateStream(ctx, &segstreamv1.CreateStreamRequest{Scope: "myscope", Stream: "mystream", ScalingPolicy: fixed(segments)}); err != nil {
		t.Fatalf("create stream: %v", err)
	}
}

func writeAll(t *testing.T, c segstreamv1.StreamGatewayClient, key string, events ...string) {
	t.Helper()
	w, err := c.WriteEvents(context.Background())
	if err != nil {
		t.Fatalf("write open: %v", err)
	}
	for _, e := range events {
		if err := w.Send(&segstreamv1.WriteEventsRequest{Scope: "myscope", Stream: "mystream", Event: []byte(e), RoutingKey: key}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	ack, err := w.CloseAndRecv()
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if ack.Count != int64(len(events)) {
		t.Fatalf("ack count = %d want %d", ack.Count, len(events))
	}
}

func tailCut(t *testing.T, c segstreamv1.StreamGatewayClient) *segstreamv1.StreamCut {
	t.Helper()
	info, err := c.GetStreamInfo(context.Background(), &segstreamv1.GetStreamInfoRequest{Scope: "myscope", Stream: "mystream"})
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	return info.TailStreamCut
}

func drain(t *testing.T, rs grpc.ServerStreamingClient[segstreamv1.ReadEventsResponse]) ([]*segstreamv1.ReadEventsResponse, error) {
	t.Helper()
	var out []*segstreamv1.ReadEventsResponse
	for {
		r, err := rs.Recv()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
}

func TestNameValidation(t *testing.T) {
	c := newTestClient(t)
	for _, name := range []string{"", "_system", "has space", "slash/name"} {
		_, err := c.CreateScope(context.Background(), &segstreamv1.CreateScopeRequest{Scope: name})
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("scope %q: got %v", name, err)
		}
	}
}

func TestCreateStreamMissingScope(t *testing.T) {
	c := newTestClient(t)
	_, err := c.CreateStream(context.Background(), &segstreamv1.CreateStreamRequest{Scope: "nope", Stream: "s", ScalingPolicy: fixed(1)})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("got %v", err)
	}
	_, err = c.CreateStream(context.Background(), &segstreamv1.CreateStreamRequest{Scope: "nope", Stream: "s", ScalingPolicy: fixed(0)})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("zero segments: got %v", err)
	}
}

func TestBoundedReadToTailCut(t *testing.T) {
	c := newTestClient(t)
	setupStream(t, c, 1)
	writeAll(t, c, "k", "a", "bb", "ccc")
	cut := tailCut(t, c)
	writeAll(t, c, "k", "after")

	rs, err := c.ReadEvents(context.Background(), &segstreamv1.ReadEventsRequest{Scope: "myscope", Stream: "mystream", ToStreamCut: cut})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := drain(t, rs)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(got) != 3 || string(got[2].Event) != "ccc" {
		t.Fatalf("events = %d", len(got))
	}
	if got[1].Position.Offset != 9 || got[1].EventPointer.Length != 10 {
		t.Fatalf("metadata = %+v %+v", got[1].Position, got[1].EventPointer)
	}
	if last := got[2].StreamCut; last.Cut[0].Offset != cut.Cut[0].Offset {
		t.Fatalf("final cut %s != bound %s", last.Text, cut.Text)
	}

	f, err := c.FetchEvent(context.Background(), &segstreamv1.FetchEventRequest{Scope: "myscope", Stream: "mystream", EventPointer: got[1].EventPointer})
	if err != nil || string(f.Event) != "bb" {
		t.Fatalf("fetch = %v, %v", f, err)
	}
}

func TestStaleBoundAfterRescale(t *testing.T) {
	c := newTestClient(t)
	setupStream(t, c, 1)
	writeAll(t, c, "k", "one")
	cut := tailCut(t, c)
	if _, err := c.UpdateStream(context.Background(), &segstreamv1.UpdateStreamRequest{Scope: "myscope", Stream: "mystream", ScalingPolicy: fixed(2)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rs, err := c.ReadEvents(context.Background(), &segstreamv1.ReadEventsRequest{Scope: "myscope", Stream: "mystream", ToStreamCut: cut})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := drain(t, rs); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("want FailedPrecondition, got %v", err)
	}
}

func TestReadAcrossEpochs(t *testing.T) {
	c := newTestClient(t)
	setupStream(t, c, 1)
	writeAll(t, c, "k", "e1", "e2")
	if _, err := c.UpdateStream(context.Background(), &segstreamv1.UpdateStreamRequest{Scope: "myscope", Stream: "mystream", ScalingPolicy: fixed(3)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	writeAll(t, c, "k", "e3", "e4")
	cut := tailCut(t, c)
	if cut.Generation != 2 || len(cut.Cut) != 3 {
		t.Fatalf("tail cut = %s", cut.Text)
	}
	rs, err := c.ReadEvents(context.Background(), &segstreamv1.ReadEventsRequest{Scope: "myscope", Stream: "mystream", ToStreamCut: cut})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := drain(t, rs)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	want := []string{"e1", "e2", "e3", "e4"}
	if len(got) != len(want) {
		t.Fatalf("got %d events", len(got))
	}
	for i := range want {
		if string(got[i].Event) != want[i] {
			t.Fatalf("event %d = %q want %q", i, got[i].Event, want[i])
		}
	}
}

func TestUnboundedReadWaitsForAppend(t *testing.T) {
	c := newTestClient(t)
	setupStream(t, c, 1)
	writeAll(t, c, "k", "first")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rs, err := c.ReadEvents(ctx, &segstreamv1.ReadEventsRequest{Scope: "myscope", Stream: "mystream"})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r, err := rs.Recv(); err != nil || string(r.Event) != "first" {
		t.Fatalf("first recv = %v, %v", r, err)
	}
	writeAll(t, c, "k", "second")
	if r, err := rs.Recv(); err != nil || string(r.Event) != "second" {
		t.Fatalf("second recv = %v, %v", r, err)
	}
}
