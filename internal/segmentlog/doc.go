// Package segmentlog stores the events of one stream segment in Pebble.
//
// Offsets are logical byte positions: the first event is at 0 and each
// event advances the tail by len(payload)+FrameOverhead. Every record
// carries the writer's routing key and a CRC32C over key and payload.
// A segment can be sealed, after which appends fail with ErrSealed.
//
//	n := segmentlog.NewNotifier()
//	l, _ := segmentlog.Open(db, "myscope", "mystream", seg, n)
//	offs, _ := l.Append(ctx, []segmentlog.Record{{RoutingKey: k, Payload: p}})
//	items, _ := l.Read(segmentlog.ReadOptions{From: offs[0]})
//
// Readers capture Notifier.Wait before checking the tail and block on it
// until the next append or seal.
package segmentlog
