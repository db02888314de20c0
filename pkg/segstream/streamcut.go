package segstream

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// SegmentID identifies a segment. The high 32 bits are the epoch that
// created it and the low 32 bits its number within that epoch.
type SegmentID int64

func (s SegmentID) Epoch() int64  { return int64(s) >> 32 }
func (s SegmentID) Number() int64 { return int64(s) & 0xffffffff }

func (s SegmentID) String() string {
	return fmt.Sprintf("%d.#epoch.%d", s.Number(), s.Epoch())
}

// StreamCut is a consistent set of per-segment offsets of one stream. A cut
// is only meaningful for the segment generation it was taken in.
//
// The zero value is an empty cut that belongs to no stream.
type StreamCut struct {
	scope      string
	stream     string
	generation int64
	offsets    map[SegmentID]int64
}

// NewStreamCut builds a cut from explicit offsets. The map is copied.
func NewStreamCut(scope, stream string, generation int64, offsets map[SegmentID]int64) StreamCut {
	return StreamCut{scope: scope, stream: stream, generation: generation, offsets: maps.Clone(offsets)}
}

func (c StreamCut) Scope() string     { return c.scope }
func (c StreamCut) Stream() string    { return c.stream }
func (c StreamCut) Generation() int64 { return c.generation }
func (c StreamCut) IsZero() bool      { return c.scope == "" && c.stream == "" && len(c.offsets) == 0 }

// Offset returns the offset recorded for seg.
func (c StreamCut) Offset(seg SegmentID) (int64, bool) {
	off, ok := c.offsets[seg]
	return off, ok
}

// Segments returns the segment IDs of the cut in ascending order.
func (c StreamCut) Segments() []SegmentID {
	return slices.Sorted(maps.Keys(c.offsets))
}

// Offsets returns a copy of the offset map.
func (c StreamCut) Offsets() map[SegmentID]int64 { return maps.Clone(c.offsets) }

// comparable reports ErrStaleCut unless both cuts cover the same segments of
// the same stream generation.
func (c StreamCut) comparable(o StreamCut) error {
	if c.scope != o.scope || c.stream != o.stream {
		return newErr(KindStaleCut, "StreamCut.AtOrAfter", c.scope, c.stream, "cut of %s/%s is not comparable", o.scope, o.stream)
	}
	if c.generation != o.generation {
		return newErr(KindStaleCut, "StreamCut.AtOrAfter", c.scope, c.stream, "generation %d differs from %d", c.generation, o.generation)
	}
	if len(c.offsets) != len(o.offsets) {
		return newErr(KindStaleCut, "StreamCut.AtOrAfter", c.scope, c.stream, "segment sets differ")
	}
	for seg := range c.offsets {
		if _, ok := o.offsets[seg]; !ok {
			return newErr(KindStaleCut, "StreamCut.AtOrAfter", c.scope, c.stream, "segment %s missing from other cut", seg)
		}
	}
	return nil
}

// AtOrAfter reports whether every offset of c is at or after the matching
// offset of o. Cuts of different generations or segment sets return
// ErrStaleCut.
func (c StreamCut) AtOrAfter(o StreamCut) (bool, error) {
	if err := c.comparable(o); err != nil {
		return false, err
	}
	for seg, off := range c.offsets {
		if off < o.offsets[seg] {
			return false, nil
		}
	}
	return true, nil
}

// Equal is value equality.
func (c StreamCut) Equal(o StreamCut) bool {
	return c.scope == o.scope && c.stream == o.stream && c.generation == o.generation && maps.Equal(c.offsets, o.offsets)
}

// String renders the cut as scope/stream@g<gen>:<seg>=<off>,... with
// segments in ascending order.
func (c StreamCut) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s@g%d:", c.scope, c.stream, c.generation)
	for i, seg := range c.Segments() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d=%d", int64(seg), c.offsets[seg])
	}
	return sb.String()
}

func (c StreamCut) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *StreamCut) UnmarshalText(b []byte) error {
	parsed, err := ParseStreamCut(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseStreamCut parses the String form of a cut.
func ParseStreamCut(text string) (StreamCut, error) {
	bad := func(format string, args ...any) (StreamCut, error) {
		return StreamCut{}, newErr(KindInvalidArgument, "ParseStreamCut", "", "", "%q: %s", text, fmt.Sprintf(format, args...))
	}
	head, body, ok := strings.Cut(text, ":")
	if !ok {
		return bad("missing ':'")
	}
	name, gen, ok := strings.Cut(head, "@g")
	if !ok {
		return bad("missing generation")
	}
	scope, stream, ok := strings.Cut(name, "/")
	if !ok || scope == "" || stream == "" {
		return bad("expected scope/stream")
	}
	g, err := strconv.ParseInt(gen, 10, 64)
	if err != nil || g < 1 {
		return bad("bad generation %q", gen)
	}
	c := StreamCut{scope: scope, stream: stream, generation: g, offsets: map[SegmentID]int64{}}
	if body == "" {
		return c, nil
	}
	for _, part := range strings.Split(body, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return bad("bad entry %q", part)
		}
		seg, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return bad("bad segment %q", k)
		}
		off, err := strconv.ParseInt(v, 10, 64)
		if err != nil || off < 0 {
			return bad("bad offset %q", v)
		}
		if _, dup := c.offsets[SegmentID(seg)]; dup {
			return bad("duplicate segment %d", seg)
		}
		c.offsets[SegmentID(seg)] = off
	}
	return c, nil
}

func (c StreamCut) toWire() *segstreamv1.StreamCut {
	w := &segstreamv1.StreamCut{Scope: c.scope, Stream: c.stream, Generation: c.generation, Text: c.String()}
	for _, seg := range c.Segments() {
		w.Cut = append(w.Cut, &segstreamv1.SegmentOffset{Segment: int64(seg), Offset: c.offsets[seg]})
	}
	return w
}

func cutFromWire(w *segstreamv1.StreamCut) StreamCut {
	if w == nil {
		return StreamCut{}
	}
	c := StreamCut{scope: w.Scope, stream: w.Stream, generation: w.Generation, offsets: make(map[SegmentID]int64, len(w.Cut))}
	for _, so := range w.Cut {
		c.offsets[SegmentID(so.Segment)] = so.Offset
	}
	return c
}
