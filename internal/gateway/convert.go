package gateway

import (
	"fmt"
	"sort"
	"strings"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
	"github.com/rzbill/segstream/internal/catalog"
)

func policyFromWire(p *segstreamv1.ScalingPolicy) (catalog.Policy, error) {
	if p == nil {
		return catalog.Policy{}, fmt.Errorf("scaling policy is required")
	}
	out := catalog.Policy{
		TargetRate:  p.TargetRate,
		ScaleFactor: p.ScaleFactor,
		MinSegments: p.MinNumSegments,
	}
	switch p.ScaleType {
	case segstreamv1.ScaleType_FIXED_NUM_SEGMENTS:
		out.Type = catalog.ScaleFixed
	case segstreamv1.ScaleType_BY_RATE_IN_KBYTES:
		out.Type = catalog.ScaleByDataRate
	case segstreamv1.ScaleType_BY_RATE_IN_EVENTS:
		out.Type = catalog.ScaleByEventRate
	default:
		return catalog.Policy{}, fmt.Errorf("unknown scale type %d", p.ScaleType)
	}
	return out, out.Validate()
}

func policyToWire(p catalog.Policy) *segstreamv1.ScalingPolicy {
	out := &segstreamv1.ScalingPolicy{
		TargetRate:     p.TargetRate,
		ScaleFactor:    p.ScaleFactor,
		MinNumSegments: p.MinSegments,
	}
	switch p.Type {
	case catalog.ScaleByDataRate:
		out.ScaleType = segstreamv1.ScaleType_BY_RATE_IN_KBYTES
	case catalog.ScaleByEventRate:
		out.ScaleType = segstreamv1.ScaleType_BY_RATE_IN_EVENTS
	}
	return out
}

// cutToWire renders offsets for the given segments. Segments missing from
// offs are reported at 0.
func cutToWire(scope, stream string, generation int64, segments []int64, offs map[int64]int64) *segstreamv1.StreamCut {
	sorted := append([]int64(nil), segments...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	c := &segstreamv1.StreamCut{Scope: scope, Stream: stream, Generation: generation}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s@g%d:", scope, stream, generation)
	for i, seg := range sorted {
		c.Cut = append(c.Cut, &segstreamv1.SegmentOffset{Segment: seg, Offset: offs[seg]})
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d=%d", seg, offs[seg])
	}
	c.Text = sb.String()
	return c
}

func cutOffsets(c *segstreamv1.StreamCut) map[int64]int64 {
	out := make(map[int64]int64, len(c.Cut))
	for _, so := range c.Cut {
		out[so.Segment] = so.Offset
	}
	return out
}

// sameSegments reports whether the cut names exactly the segments of e.
func sameSegments(c *segstreamv1.StreamCut, e catalog.Epoch) bool {
	if len(c.Cut) != len(e.Segments) {
		return false
	}
	offs := cutOffsets(c)
	for _, seg := range e.Segments {
		if _, ok := offs[seg]; !ok {
			return false
		}
	}
	return len(offs) == len(e.Segments)
}

func describeSegment(seg int64) string {
	epoch, n := catalog.SplitSegmentID(seg)
	return fmt.Sprintf("%d.#epoch.%d", n, epoch)
}

func positionToWire(seg, off int64) *segstreamv1.Position {
	return &segstreamv1.Position{
		Segment:     seg,
		Offset:      off,
		Description: fmt.Sprintf("segment %s offset %d", describeSegment(seg), off),
	}
}

func pointerToWire(scope, stream string, seg, off, length int64) *segstreamv1.EventPointer {
	return &segstreamv1.EventPointer{
		Segment:     seg,
		Offset:      off,
		Length:      length,
		Description: fmt.Sprintf("%s/%s/%s:%d:%d", scope, stream, describeSegment(seg), off, length),
	}
}
