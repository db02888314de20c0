package segstreamv1

// ScaleType selects how a stream's segment count is governed.
type ScaleType int32

const (
	ScaleType_FIXED_NUM_SEGMENTS ScaleType = 0
	ScaleType_BY_RATE_IN_KBYTES  ScaleType = 1
	ScaleType_BY_RATE_IN_EVENTS  ScaleType = 2
)

func (t ScaleType) String() string {
	switch t {
	case ScaleType_FIXED_NUM_SEGMENTS:
		return "FIXED_NUM_SEGMENTS"
	case ScaleType_BY_RATE_IN_KBYTES:
		return "BY_RATE_IN_KBYTES_PER_SEC"
	case ScaleType_BY_RATE_IN_EVENTS:
		return "BY_RATE_IN_EVENTS_PER_SEC"
	default:
		return "UNKNOWN"
	}
}

type ScalingPolicy struct {
	ScaleType      ScaleType
	TargetRate     int32
	ScaleFactor    int32
	MinNumSegments int32
}

func (m *ScalingPolicy) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.ScaleType))
	b = appendVarint(b, 2, uint64(m.TargetRate))
	b = appendVarint(b, 3, uint64(m.ScaleFactor))
	return appendVarint(b, 4, uint64(m.MinNumSegments))
}

func (m *ScalingPolicy) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isVarint(1):
			m.ScaleType = ScaleType(f.u)
		case f.isVarint(2):
			m.TargetRate = int32(f.u)
		case f.isVarint(3):
			m.ScaleFactor = int32(f.u)
		case f.isVarint(4):
			m.MinNumSegments = int32(f.u)
		}
		return nil
	})
}

// SegmentOffset is one entry of a stream cut.
type SegmentOffset struct {
	Segment int64
	Offset  int64
}

func (m *SegmentOffset) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Segment))
	return appendVarint(b, 2, uint64(m.Offset))
}

func (m *SegmentOffset) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isVarint(1):
			m.Segment = int64(f.u)
		case f.isVarint(2):
			m.Offset = int64(f.u)
		}
		return nil
	})
}

// StreamCut carries one offset per active segment plus the segment
// generation the offsets belong to. Text is a human-readable rendering.
type StreamCut struct {
	Scope      string
	Stream     string
	Generation int64
	Cut        []*SegmentOffset
	Text       string
}

func (m *StreamCut) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	b = appendString(b, 2, m.Stream)
	b = appendVarint(b, 3, uint64(m.Generation))
	for _, so := range m.Cut {
		b = appendMessage(b, 4, so)
	}
	return appendString(b, 5, m.Text)
}

func (m *StreamCut) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.Scope = f.str()
		case f.isBytes(2):
			m.Stream = f.str()
		case f.isVarint(3):
			m.Generation = int64(f.u)
		case f.isBytes(4):
			so := new(SegmentOffset)
			if err := so.unmarshalWire(f.b); err != nil {
				return err
			}
			m.Cut = append(m.Cut, so)
		case f.isBytes(5):
			m.Text = f.str()
		}
		return nil
	})
}

type Position struct {
	Segment     int64
	Offset      int64
	Description string
}

func (m *Position) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Segment))
	b = appendVarint(b, 2, uint64(m.Offset))
	return appendString(b, 3, m.Description)
}

func (m *Position) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isVarint(1):
			m.Segment = int64(f.u)
		case f.isVarint(2):
			m.Offset = int64(f.u)
		case f.isBytes(3):
			m.Description = f.str()
		}
		return nil
	})
}

type EventPointer struct {
	Segment     int64
	Offset      int64
	Length      int64
	Description string
}

func (m *EventPointer) appendWire(b []byte) []byte {
	b = appendVarint(b, 1, uint64(m.Segment))
	b = appendVarint(b, 2, uint64(m.Offset))
	b = appendVarint(b, 3, uint64(m.Length))
	return appendString(b, 4, m.Description)
}

func (m *EventPointer) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isVarint(1):
			m.Segment = int64(f.u)
		case f.isVarint(2):
			m.Offset = int64(f.u)
		case f.isVarint(3):
			m.Length = int64(f.u)
		case f.isBytes(4):
			m.Description = f.str()
		}
		return nil
	})
}

type CreateScopeRequest struct {
	Scope string
}

func (m *CreateScopeRequest) appendWire(b []byte) []byte { return appendString(b, 1, m.Scope) }

func (m *CreateScopeRequest) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isBytes(1) {
			m.Scope = f.str()
		}
		return nil
	})
}

type CreateScopeResponse struct {
	Created bool
}

func (m *CreateScopeResponse) appendWire(b []byte) []byte { return appendBool(b, 1, m.Created) }

func (m *CreateScopeResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isVarint(1) {
			m.Created = f.u != 0
		}
		return nil
	})
}

type CreateStreamRequest struct {
	Scope         string
	Stream        string
	ScalingPolicy *ScalingPolicy
}

func (m *CreateStreamRequest) appendWire(b []byte) []byte {
	return appendStreamPolicy(b, m.Scope, m.Stream, m.ScalingPolicy)
}

func (m *CreateStreamRequest) unmarshalWire(b []byte) error {
	return decodeStreamPolicy(b, &m.Scope, &m.Stream, &m.ScalingPolicy)
}

type CreateStreamResponse struct {
	Created bool
}

func (m *CreateStreamResponse) appendWire(b []byte) []byte { return appendBool(b, 1, m.Created) }

func (m *CreateStreamResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isVarint(1) {
			m.Created = f.u != 0
		}
		return nil
	})
}

type UpdateStreamRequest struct {
	Scope         string
	Stream        string
	ScalingPolicy *ScalingPolicy
}

func (m *UpdateStreamRequest) appendWire(b []byte) []byte {
	return appendStreamPolicy(b, m.Scope, m.Stream, m.ScalingPolicy)
}

func (m *UpdateStreamRequest) unmarshalWire(b []byte) error {
	return decodeStreamPolicy(b, &m.Scope, &m.Stream, &m.ScalingPolicy)
}

type UpdateStreamResponse struct{}

func (m *UpdateStreamResponse) appendWire(b []byte) []byte { return b }

func (m *UpdateStreamResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(field) error { return nil })
}

func appendStreamPolicy(b []byte, scope, stream string, p *ScalingPolicy) []byte {
	b = appendString(b, 1, scope)
	b = appendString(b, 2, stream)
	if p != nil {
		b = appendMessage(b, 3, p)
	}
	return b
}

func decodeStreamPolicy(b []byte, scope, stream *string, p **ScalingPolicy) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			*scope = f.str()
		case f.isBytes(2):
			*stream = f.str()
		case f.isBytes(3):
			*p = new(ScalingPolicy)
			return (*p).unmarshalWire(f.b)
		}
		return nil
	})
}

type ListStreamsRequest struct {
	Scope string
}

func (m *ListStreamsRequest) appendWire(b []byte) []byte { return appendString(b, 1, m.Scope) }

func (m *ListStreamsRequest) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isBytes(1) {
			m.Scope = f.str()
		}
		return nil
	})
}

type ListStreamsResponse struct {
	Scope  string
	Stream string
}

func (m *ListStreamsResponse) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	return appendString(b, 2, m.Stream)
}

func (m *ListStreamsResponse) unmarshalWire(b []byte) error {
	return decodeScopeStream(b, &m.Scope, &m.Stream)
}

type GetStreamInfoRequest struct {
	Scope  string
	Stream string
}

func (m *GetStreamInfoRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	return appendString(b, 2, m.Stream)
}

func (m *GetStreamInfoRequest) unmarshalWire(b []byte) error {
	return decodeScopeStream(b, &m.Scope, &m.Stream)
}

func decodeScopeStream(b []byte, scope, stream *string) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			*scope = f.str()
		case f.isBytes(2):
			*stream = f.str()
		}
		return nil
	})
}

type GetStreamInfoResponse struct {
	HeadStreamCut *StreamCut
	TailStreamCut *StreamCut
	ScalingPolicy *ScalingPolicy
}

func (m *GetStreamInfoResponse) appendWire(b []byte) []byte {
	if m.HeadStreamCut != nil {
		b = appendMessage(b, 1, m.HeadStreamCut)
	}
	if m.TailStreamCut != nil {
		b = appendMessage(b, 2, m.TailStreamCut)
	}
	if m.ScalingPolicy != nil {
		b = appendMessage(b, 3, m.ScalingPolicy)
	}
	return b
}

func (m *GetStreamInfoResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.HeadStreamCut = new(StreamCut)
			return m.HeadStreamCut.unmarshalWire(f.b)
		case f.isBytes(2):
			m.TailStreamCut = new(StreamCut)
			return m.TailStreamCut.unmarshalWire(f.b)
		case f.isBytes(3):
			m.ScalingPolicy = new(ScalingPolicy)
			return m.ScalingPolicy.unmarshalWire(f.b)
		}
		return nil
	})
}

type WriteEventsRequest struct {
	Scope      string
	Stream     string
	Event      []byte
	RoutingKey string
}

func (m *WriteEventsRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	b = appendString(b, 2, m.Stream)
	b = appendBytes(b, 3, m.Event)
	return appendString(b, 4, m.RoutingKey)
}

func (m *WriteEventsRequest) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.Scope = f.str()
		case f.isBytes(2):
			m.Stream = f.str()
		case f.isBytes(3):
			m.Event = f.owned()
		case f.isBytes(4):
			m.RoutingKey = f.str()
		}
		return nil
	})
}

// WriteEventsResponse acknowledges a whole client stream. Count is the
// number of events the store durably accepted.
type WriteEventsResponse struct {
	Count int64
}

func (m *WriteEventsResponse) appendWire(b []byte) []byte { return appendVarint(b, 1, uint64(m.Count)) }

func (m *WriteEventsResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isVarint(1) {
			m.Count = int64(f.u)
		}
		return nil
	})
}

type ReadEventsRequest struct {
	Scope         string
	Stream        string
	FromStreamCut *StreamCut
	ToStreamCut   *StreamCut
}

func (m *ReadEventsRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	b = appendString(b, 2, m.Stream)
	if m.FromStreamCut != nil {
		b = appendMessage(b, 3, m.FromStreamCut)
	}
	if m.ToStreamCut != nil {
		b = appendMessage(b, 4, m.ToStreamCut)
	}
	return b
}

func (m *ReadEventsRequest) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.Scope = f.str()
		case f.isBytes(2):
			m.Stream = f.str()
		case f.isBytes(3):
			m.FromStreamCut = new(StreamCut)
			return m.FromStreamCut.unmarshalWire(f.b)
		case f.isBytes(4):
			m.ToStreamCut = new(StreamCut)
			return m.ToStreamCut.unmarshalWire(f.b)
		}
		return nil
	})
}

type ReadEventsResponse struct {
	Event        []byte
	Position     *Position
	EventPointer *EventPointer
	StreamCut    *StreamCut
}

func (m *ReadEventsResponse) appendWire(b []byte) []byte {
	b = appendBytes(b, 1, m.Event)
	if m.Position != nil {
		b = appendMessage(b, 2, m.Position)
	}
	if m.EventPointer != nil {
		b = appendMessage(b, 3, m.EventPointer)
	}
	if m.StreamCut != nil {
		b = appendMessage(b, 4, m.StreamCut)
	}
	return b
}

func (m *ReadEventsResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.Event = f.owned()
		case f.isBytes(2):
			m.Position = new(Position)
			return m.Position.unmarshalWire(f.b)
		case f.isBytes(3):
			m.EventPointer = new(EventPointer)
			return m.EventPointer.unmarshalWire(f.b)
		case f.isBytes(4):
			m.StreamCut = new(StreamCut)
			return m.StreamCut.unmarshalWire(f.b)
		}
		return nil
	})
}

type FetchEventRequest struct {
	Scope        string
	Stream       string
	EventPointer *EventPointer
}

func (m *FetchEventRequest) appendWire(b []byte) []byte {
	b = appendString(b, 1, m.Scope)
	b = appendString(b, 2, m.Stream)
	if m.EventPointer != nil {
		b = appendMessage(b, 3, m.EventPointer)
	}
	return b
}

func (m *FetchEventRequest) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		switch {
		case f.isBytes(1):
			m.Scope = f.str()
		case f.isBytes(2):
			m.Stream = f.str()
		case f.isBytes(3):
			m.EventPointer = new(EventPointer)
			return m.EventPointer.unmarshalWire(f.b)
		}
		return nil
	})
}

type FetchEventResponse struct {
	Event []byte
}

func (m *FetchEventResponse) appendWire(b []byte) []byte { return appendBytes(b, 1, m.Event) }

func (m *FetchEventResponse) unmarshalWire(b []byte) error {
	return decodeFields(b, func(f field) error {
		if f.isBytes(1) {
			m.Event = f.owned()
		}
		return nil
	})
}
