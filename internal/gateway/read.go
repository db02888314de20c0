package gateway

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/internal/catalog"
	"github.com/rzbill/segstream/internal/segmentlog"
	"github.com/rzbill/segstream/pkg/log"
)

// readBatch caps how many events one segment contributes per round, so
// segments of an epoch are interleaved.
const readBatch = 16

// readPlan tracks a reader's progress. epoch indexes StreamMeta.Epochs; pos
// holds the next offset of each segment of that epoch.
type readPlan struct {
	epoch    int
	pos      map[int64]int64
	bound    map[int64]int64
	boundGen int64
}

func (p *readPlan) enter(meta catalog.StreamMeta, idx int, from map[int64]int64) {
	p.epoch = idx
	p.pos = make(map[int64]int64, len(meta.Epochs[idx].Segments))
	for _, seg := range meta.Epochs[idx].Segments {
		p.pos[seg] = from[seg]
	}
}

// plan validates the cuts against the stream's current topology. A bound
// must belong to the current epoch; a start may name any epoch.
func (s *Service) plan(req *segstreamv1.ReadEventsRequest) (*readPlan, error) {
	v, err := s.rt.Snapshot(req.Scope, req.Stream)
	if err != nil {
		return nil, toStatus(err)
	}
	meta, cur := v.Meta, v.Meta.Current()
	p := &readPlan{}

	if to := req.ToStreamCut; to != nil {
		if err := checkCutOwner(req, to); err != nil {
			return nil, err
		}
		if to.Generation != cur.Number || !sameSegments(to, cur) {
			return nil, stale("stream cut generation %d does not match current generation %d of %s/%s", to.Generation, cur.Number, req.Scope, req.Stream)
		}
		p.bound = cutOffsets(to)
		p.boundGen = to.Generation
		for seg, off := range p.bound {
			if off < 0 || off > v.Tails[seg] {
				return nil, invalid("stream cut offset %d of segment %d is beyond tail %d", off, seg, v.Tails[seg])
			}
		}
	}

	from := req.FromStreamCut
	if from == nil {
		p.enter(meta, 0, nil)
		return p, nil
	}
	if err := checkCutOwner(req, from); err != nil {
		return nil, err
	}
	idx := meta.EpochIndex(from.Generation)
	if idx < 0 || !sameSegments(from, meta.Epochs[idx]) {
		return nil, stale("start cut generation %d is unknown to %s/%s", from.Generation, req.Scope, req.Stream)
	}
	start := cutOffsets(from)
	if p.bound != nil && from.Generation == p.boundGen {
		for seg, off := range start {
			if off > p.bound[seg] {
				return nil, invalid("start cut is after bound cut on segment %d", seg)
			}
		}
	}
	p.enter(meta, idx, start)
	return p, nil
}

func checkCutOwner(req *segstreamv1.ReadEventsRequest, c *segstreamv1.StreamCut) error {
	if (c.Scope != "" && c.Scope != req.Scope) || (c.Stream != "" && c.Stream != req.Stream) {
		return invalid("stream cut of %s/%s used to read %s/%s", c.Scope, c.Stream, req.Scope, req.Stream)
	}
	return nil
}

// ReadEvents streams events epoch by epoch. Sealed epochs are drained fully
// before the next one starts; within an epoch segments are read round
// robin. A bounded read ends once every segment reaches its bound offset;
// an unbounded read waits on the stream's append notifier.
func (s *Service) ReadEvents(req *segstreamv1.ReadEventsRequest, stream grpc.ServerStreamingServer[segstreamv1.ReadEventsResponse]) error {
	if err := s.checkStream(req.Scope, req.Stream); err != nil {
		return err
	}
	p, err := s.plan(req)
	if err != nil {
		return err
	}
	ctx := stream.Context()
	notify := s.rt.Notifier(req.Scope, req.Stream)
	logger := s.logger.With(log.Str("scope", req.Scope), log.Str("stream", req.Stream), log.Bool("bounded", p.bound != nil))
	logger.Debug("read started")

	var sent int64
	for {
		wait := notify.Wait()
		meta, err := s.rt.Stream(req.Scope, req.Stream)
		if err != nil {
			return toStatus(err)
		}
		ep := meta.Epochs[p.epoch]
		inBound := p.bound != nil && ep.Number == p.boundGen
		progressed, reached := false, true

		for _, seg := range ep.Segments {
			var limit int64
			if inBound {
				limit = p.bound[seg]
				if p.pos[seg] >= limit {
					continue
				}
			}
			l, err := s.rt.Segment(req.Scope, req.Stream, seg)
			if err != nil {
				return toStatus(err)
			}
			items, err := l.Read(segmentlog.ReadOptions{From: p.pos[seg], To: limit, Limit: readBatch})
			if err != nil {
				return toStatus(err)
			}
			for _, it := range items {
				p.pos[seg] = it.Offset + it.Length()
				resp := &segstreamv1.ReadEventsResponse{
					Event:        it.Payload,
					Position:     positionToWire(seg, it.Offset),
					EventPointer: pointerToWire(req.Scope, req.Stream, seg, it.Offset, it.Length()),
					StreamCut:    cutToWire(req.Scope, req.Stream, ep.Number, ep.Segments, p.pos),
				}
				if err := stream.Send(resp); err != nil {
					return err
				}
				sent++
				progressed = true
			}
			if inBound && p.pos[seg] < limit {
				reached = false
			}
		}

		if inBound && reached {
			logger.Debug("bounded read drained", log.Int64("events", sent))
			return nil
		}
		if progressed {
			continue
		}
		if p.epoch < len(meta.Epochs)-1 {
			// Every epoch but the last is sealed, so no progress means drained.
			p.enter(meta, p.epoch+1, nil)
			continue
		}
		select {
		case <-wait:
		case <-ctx.Done():
			logger.Debug("read cancelled", log.Int64("events", sent))
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}
