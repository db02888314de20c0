package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"google.golang.org/grpc"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/internal/runtime"
	"github.com/rzbill/segstream/internal/segmentlog"
	"github.com/rzbill/segstream/pkg/log"
)

// Service implements segstreamv1.StreamGatewayServer on a Runtime.
type Service struct {
	segstreamv1.UnimplementedStreamGatewayServer

	rt           *runtime.Runtime
	logger       log.Logger
	names        nameRule
	maxEventSize int
}

// NewService builds the gateway service. The name pattern and event size
// limit come from the runtime config.
func NewService(rt *runtime.Runtime, logger log.Logger) (*Service, error) {
	cfg := rt.Config()
	re, err := regexp.Compile(cfg.NameRegex)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Service{
		rt:           rt,
		logger:       logger.WithComponent("gateway"),
		names:        nameRule{re: re},
		maxEventSize: cfg.MaxEventSize,
	}, nil
}

func (s *Service) checkStream(scope, stream string) error {
	if err := s.names.check("scope", scope); err != nil {
		return err
	}
	return s.names.check("stream", stream)
}

func (s *Service) CreateScope(ctx context.Context, req *segstreamv1.CreateScopeRequest) (*segstreamv1.CreateScopeResponse, error) {
	if err := s.names.check("scope", req.Scope); err != nil {
		return nil, err
	}
	created, err := s.rt.CreateScope(req.Scope)
	if err != nil {
		return nil, toStatus(err)
	}
	return &segstreamv1.CreateScopeResponse{Created: created}, nil
}

func (s *Service) CreateStream(ctx context.Context, req *segstreamv1.CreateStreamRequest) (*segstreamv1.CreateStreamResponse, error) {
	if err := s.checkStream(req.Scope, req.Stream); err != nil {
		return nil, err
	}
	p, err := policyFromWire(req.ScalingPolicy)
	if err != nil {
		return nil, invalid("stream %s/%s: %v", req.Scope, req.Stream, err)
	}
	created, err := s.rt.CreateStream(req.Scope, req.Stream, p)
	if err != nil {
		return nil, toStatus(err)
	}
	return &segstreamv1.CreateStreamResponse{Created: created}, nil
}

func (s *Service) UpdateStream(ctx context.Context, req *segstreamv1.UpdateStreamRequest) (*segstreamv1.UpdateStreamResponse, error) {
	if err := s.checkStream(req.Scope, req.Stream); err != nil {
		return nil, err
	}
	p, err := policyFromWire(req.ScalingPolicy)
	if err != nil {
		return nil, invalid("stream %s/%s: %v", req.Scope, req.Stream, err)
	}
	if err := s.rt.UpdateStream(req.Scope, req.Stream, p); err != nil {
		return nil, toStatus(err)
	}
	return &segstreamv1.UpdateStreamResponse{}, nil
}

func (s *Service) ListStreams(req *segstreamv1.ListStreamsRequest, stream grpc.ServerStreamingServer[segstreamv1.ListStreamsResponse]) error {
	if err := s.names.check("scope", req.Scope); err != nil {
		return err
	}
	var sendErr error
	err := s.rt.ListStreams(req.Scope, func(name string) bool {
		sendErr = stream.Send(&segstreamv1.ListStreamsResponse{Scope: req.Scope, Stream: name})
		return sendErr == nil
	})
	if err != nil {
		return toStatus(err)
	}
	return sendErr
}

func (s *Service) GetStreamInfo(ctx context.Context, req *segstreamv1.GetStreamInfoRequest) (*segstreamv1.GetStreamInfoResponse, error) {
	if err := s.checkStream(req.Scope, req.Stream); err != nil {
		return nil, err
	}
	v, err := s.rt.Snapshot(req.Scope, req.Stream)
	if err != nil {
		return nil, toStatus(err)
	}
	cur := v.Meta.Current()
	first := v.Meta.Epochs[0]
	return &segstreamv1.GetStreamInfoResponse{
		HeadStreamCut: cutToWire(req.Scope, req.Stream, first.Number, first.Segments, nil),
		TailStreamCut: cutToWire(req.Scope, req.Stream, cur.Number, cur.Segments, v.Tails),
		ScalingPolicy: policyToWire(v.Meta.Policy),
	}, nil
}

// WriteEvents appends every received event in arrival order and acknowledges
// the count once the client half-closes. All messages of one call must name
// the same stream.
func (s *Service) WriteEvents(stream grpc.ClientStreamingServer[segstreamv1.WriteEventsRequest, segstreamv1.WriteEventsResponse]) error {
	ctx := stream.Context()
	var scope, name string
	var count int64
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			s.logger.Debug("write stream completed", log.Str("scope", scope), log.Str("stream", name), log.Int64("events", count))
			return stream.SendAndClose(&segstreamv1.WriteEventsResponse{Count: count})
		}
		if err != nil {
			s.logger.Debug("write stream broken", log.Str("scope", scope), log.Str("stream", name), log.Int64("events", count), log.Err(err))
			return err
		}
		if count == 0 && scope == "" {
			if err := s.checkStream(req.Scope, req.Stream); err != nil {
				return err
			}
			scope, name = req.Scope, req.Stream
		} else if req.Scope != scope || req.Stream != name {
			return invalid("write stream switched from %s/%s to %s/%s", scope, name, req.Scope, req.Stream)
		}
		if len(req.Event) > s.maxEventSize {
			return invalid("event of %d bytes exceeds limit of %d", len(req.Event), s.maxEventSize)
		}
		if _, _, err := s.rt.Append(ctx, scope, name, req.RoutingKey, req.Event); err != nil {
			return toStatus(err)
		}
		count++
	}
}

func (s *Service) FetchEvent(ctx context.Context, req *segstreamv1.FetchEventRequest) (*segstreamv1.FetchEventResponse, error) {
	if err := s.checkStream(req.Scope, req.Stream); err != nil {
		return nil, err
	}
	ptr := req.EventPointer
	if ptr == nil {
		return nil, invalid("event pointer is required")
	}
	meta, err := s.rt.Stream(req.Scope, req.Stream)
	if err != nil {
		return nil, toStatus(err)
	}
	if !meta.HasSegment(ptr.Segment) {
		return nil, toStatus(fmt.Errorf("segment %d of %s/%s: %w", ptr.Segment, req.Scope, req.Stream, segmentlog.ErrNotFound))
	}
	l, err := s.rt.Segment(req.Scope, req.Stream, ptr.Segment)
	if err != nil {
		return nil, toStatus(err)
	}
	it, err := l.ReadAt(ptr.Offset)
	if err != nil {
		return nil, toStatus(err)
	}
	if ptr.Length != 0 && it.Length() != ptr.Length {
		return nil, toStatus(fmt.Errorf("event at %d is %d bytes, pointer says %d: %w", ptr.Offset, it.Length(), ptr.Length, segmentlog.ErrNotFound))
	}
	return &segstreamv1.FetchEventResponse{Event: it.Payload}, nil
}
