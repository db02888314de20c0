// Package runtime wires storage, the catalog and segment logs into a
// single-node store behind the reference gateway.
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
//	defer rt.Close()
//	_, _ = rt.CreateScope("myscope")
//	_, _ = rt.CreateStream("myscope", "mystream", catalog.Policy{MinSegments: 1})
//	seg, off, _ := rt.Append(ctx, "myscope", "mystream", key, payload)
//	view, _ := rt.Snapshot("myscope", "mystream") // tail offsets per segment
//
// Segment logs and per-stream notifiers are cached in lock-free maps for
// the lifetime of the Runtime.
package runtime
