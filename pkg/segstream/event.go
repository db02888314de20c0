package segstream

import (
	"fmt"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// FrameOverhead is the per-event framing the store adds to every payload.
// An event occupies len(payload)+FrameOverhead bytes of its segment.
const FrameOverhead = 8

// Position locates an event within its segment.
type Position struct {
	Segment SegmentID
	Offset  int64
}

func (p Position) String() string {
	return fmt.Sprintf("segment %s offset %d", p.Segment, p.Offset)
}

// EventPointer addresses exactly one stored event and can be handed to
// FetchEvent to read it again.
type EventPointer struct {
	Scope   string
	Stream  string
	Segment SegmentID
	Offset  int64
	Length  int64
}

func (p EventPointer) String() string {
	return fmt.Sprintf("%s/%s/%s:%d:%d", p.Scope, p.Stream, p.Segment, p.Offset, p.Length)
}

func (p EventPointer) toWire() *segstreamv1.EventPointer {
	return &segstreamv1.EventPointer{Segment: int64(p.Segment), Offset: p.Offset, Length: p.Length, Description: p.String()}
}

// Event is one event delivered by an EventReader. Cut is the stream cut
// positioned just after the event; a reader started from it resumes with
// the next event.
type Event struct {
	Payload []byte
	Position
	Pointer EventPointer
	Cut     StreamCut
}

// StreamID names a stream.
type StreamID struct {
	Scope  string
	Stream string
}

func (s StreamID) String() string { return s.Scope + "/" + s.Stream }

// StreamInfo describes a stream at one point in time.
type StreamInfo struct {
	StreamID
	Head   StreamCut
	Tail   StreamCut
	Policy ScalingPolicy
}

func eventFromWire(scope, stream string, m *segstreamv1.ReadEventsResponse) Event {
	ev := Event{Payload: m.Event, Cut: cutFromWire(m.StreamCut)}
	if p := m.Position; p != nil {
		ev.Position = Position{Segment: SegmentID(p.Segment), Offset: p.Offset}
	}
	if p := m.EventPointer; p != nil {
		ev.Pointer = EventPointer{Scope: scope, Stream: stream, Segment: SegmentID(p.Segment), Offset: p.Offset, Length: p.Length}
	} else {
		ev.Pointer = EventPointer{Scope: scope, Stream: stream, Segment: ev.Segment, Offset: ev.Offset, Length: int64(len(m.Event)) + FrameOverhead}
	}
	return ev
}
