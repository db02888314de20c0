package segstreamv1

import (
	"bytes"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"testing"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestReadEventsResponseNested(t *testing.T) {
	in := &ReadEventsResponse{
		Event:        []byte("hello"),
		Position:     &Position{Segment: 1 << 32, Offset: 13, Description: "seg 1/0 @ 13"},
		EventPointer: &EventPointer{Segment: 1 << 32, Offset: 13, Length: 13},
		StreamCut: &StreamCut{
			Scope: "myscope", Stream: "mystream", Generation: 1,
			Cut: []*SegmentOffset{{Segment: 1 << 32, Offset: 26}, {Segment: 1<<32 | 1, Offset: 0}},
		},
	}
	var out ReadEventsResponse
	if err := Unmarshal(Marshal(in), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bytes.Equal(out.Event, in.Event) || out.Position.Offset != 13 || out.EventPointer.Length != 13 {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if len(out.StreamCut.Cut) != 2 || out.StreamCut.Cut[1].Segment != 1<<32|1 || out.StreamCut.Cut[1].Offset != 0 {
		t.Fatalf("cut entries lost: %+v", out.StreamCut.Cut)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	b := Marshal(&CreateScopeRequest{Scope: "s"})
	b = protowire.AppendTag(b, 9, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 42)
	b = protowire.AppendTag(b, 10, protowire.BytesType)
	b = protowire.AppendString(b, "x")
	var out CreateScopeRequest
	if err := Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Scope != "s" {
		t.Fatalf("scope = %q", out.Scope)
	}
}

func TestTruncatedInputFails(t *testing.T) {
	b := Marshal(&WriteEventsRequest{Scope: "s", Stream: "t", Event: []byte("payload")})
	var out WriteEventsRequest
	if err := Unmarshal(b[:len(b)-2], &out); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	if c == nil {
		t.Fatalf("codec %q not registered", CodecName)
	}
	if _, err := c.Marshal("not a message"); err == nil {
		t.Fatalf("expected error for foreign type")
	}
	data, err := c.Marshal(&WriteEventsResponse{Count: 20})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var ack WriteEventsResponse
	if err := c.Unmarshal(data, &ack); err != nil || ack.Count != 20 {
		t.Fatalf("ack = %+v err=%v", ack, err)
	}
}

var (
	protoMessageRe = regexp.MustCompile(`(?s)message (\w+) \{(.*?)\n?\}`)
	protoFieldRe   = regexp.MustCompile(`(?m)^\s*(repeated )?(\w+) \w+ = (\d+);`)
)

// schemaFields parses segstream.proto into message -> field number -> wire type.
func schemaFields(t *testing.T) map[string]map[protowire.Number]protowire.Type {
	t.Helper()
	src, err := os.ReadFile("segstream.proto")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	out := map[string]map[protowire.Number]protowire.Type{}
	for _, m := range protoMessageRe.FindAllStringSubmatch(string(src), -1) {
		fields := map[protowire.Number]protowire.Type{}
		for _, f := range protoFieldRe.FindAllStringSubmatch(m[2], -1) {
			num, _ := strconv.Atoi(f[3])
			typ := protowire.BytesType
			switch f[2] {
			case "int32", "int64", "bool", "ScaleType":
				typ = protowire.VarintType
			}
			fields[protowire.Number(num)] = typ
		}
		out[m[1]] = fields
	}
	return out
}

func TestEncodingMatchesSchema(t *testing.T) {
	schema := schemaFields(t)
	cut := &StreamCut{Scope: "s", Stream: "t", Generation: 2, Cut: []*SegmentOffset{{Segment: 1 << 33, Offset: 8}}, Text: "s/t@g2:8589934592=8"}
	policy := &ScalingPolicy{ScaleType: ScaleType_BY_RATE_IN_EVENTS, TargetRate: 100, ScaleFactor: 2, MinNumSegments: 1}
	ptr := &EventPointer{Segment: 1 << 32, Offset: 8, Length: 13, Description: "d"}
	msgs := []Message{
		policy,
		&SegmentOffset{Segment: 1 << 32, Offset: 8},
		cut,
		&Position{Segment: 1 << 32, Offset: 8, Description: "d"},
		ptr,
		&CreateScopeRequest{Scope: "s"},
		&CreateScopeResponse{Created: true},
		&CreateStreamRequest{Scope: "s", Stream: "t", ScalingPolicy: policy},
		&CreateStreamResponse{Created: true},
		&UpdateStreamRequest{Scope: "s", Stream: "t", ScalingPolicy: policy},
		&UpdateStreamResponse{},
		&ListStreamsRequest{Scope: "s"},
		&ListStreamsResponse{Scope: "s", Stream: "t"},
		&GetStreamInfoRequest{Scope: "s", Stream: "t"},
		&GetStreamInfoResponse{HeadStreamCut: cut, TailStreamCut: cut, ScalingPolicy: policy},
		&WriteEventsRequest{Scope: "s", Stream: "t", Event: []byte("e"), RoutingKey: "k"},
		&WriteEventsResponse{Count: 3},
		&ReadEventsRequest{Scope: "s", Stream: "t", FromStreamCut: cut, ToStreamCut: cut},
		&ReadEventsResponse{Event: []byte("e"), Position: &Position{Offset: 1}, EventPointer: ptr, StreamCut: cut},
		&FetchEventRequest{Scope: "s", Stream: "t", EventPointer: ptr},
		&FetchEventResponse{Event: []byte("e")},
	}
	for _, m := range msgs {
		name := reflect.TypeOf(m).Elem().Name()
		t.Run(name, func(t *testing.T) {
			want, ok := schema[name]
			if !ok {
				t.Fatalf("message %s missing from schema", name)
			}
			seen := map[protowire.Number]bool{}
			b := Marshal(m)
			for len(b) > 0 {
				num, typ, n := protowire.ConsumeTag(b)
				if n < 0 {
					t.Fatalf("tag: %v", protowire.ParseError(n))
				}
				b = b[n:]
				if wt, ok := want[num]; !ok || wt != typ {
					t.Fatalf("field %d wire type %d not in schema (%v)", num, typ, want)
				}
				seen[num] = true
				n = protowire.ConsumeFieldValue(num, typ, b)
				if n < 0 {
					t.Fatalf("value: %v", protowire.ParseError(n))
				}
				b = b[n:]
			}
			if len(seen) != len(want) {
				t.Fatalf("encoded fields %v, schema has %v", seen, want)
			}
		})
	}
	if len(schema) != len(msgs) {
		t.Fatalf("schema declares %d messages, checked %d", len(schema), len(msgs))
	}
}
