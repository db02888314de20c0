// Package segstream is a client for segmented event streams served by a
// StreamGateway over gRPC.
//
// A stream lives in a scope and is split into segments. Order is kept
// within a segment only. A StreamCut records one offset per segment and is
// how readers are bounded, resumed and checkpointed. Cuts are tied to the
// segment generation they were taken in; after UpdateStream changes the
// segment set, older cuts fail with ErrStaleCut instead of bounding a read
// wrongly.
//
//	c, err := segstream.Dial("localhost:9090")
//	if err != nil { ... }
//	defer c.Close()
//
//	policy, _ := segstream.FixedSegments(1)
//	_, _ = c.CreateScope(ctx, "myscope")
//	_, _ = c.CreateStream(ctx, "myscope", "mystream", policy)
//
//	w, _ := c.NewWriter(ctx, "myscope", "mystream")
//	defer w.Close()
//	_ = w.Write(ctx, []byte("hello"))
//	_ = w.Complete(ctx)
//
//	tail, _ := c.GetTailCut(ctx, "myscope", "mystream")
//	r, _ := c.NewReader(ctx, "myscope", "mystream", segstream.WithBound(tail))
//	defer r.Close()
//	for ev, err := range r.Events(ctx) {
//	    if err != nil { ... }
//	    fmt.Println(ev.Position, len(ev.Payload))
//	}
//
// Writers and readers have a single owner and hold one transport call each;
// always Close them. The client never retries: a broken write call leaves
// the writer Aborted and its events not guaranteed stored.
package segstream
