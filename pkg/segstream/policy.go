package segstream

import (
	"fmt"

	segstreamv1 "github.com/rzbill/segstream/api/segstream/v1"
)

// ScaleType is the segment scaling mode of a stream.
type ScaleType int

const (
	ScaleFixed ScaleType = iota
	ScaleByDataRate
	ScaleByEventRate
)

func (t ScaleType) String() string {
	switch t {
	case ScaleFixed:
		return "fixed"
	case ScaleByDataRate:
		return "by-rate-kbps"
	case ScaleByEventRate:
		return "by-rate-events"
	default:
		return fmt.Sprintf("ScaleType(%d)", int(t))
	}
}

// ScalingPolicy governs how many segments a stream has. It is immutable;
// build one with FixedSegments, ByDataRate or ByEventRate. The zero value is
// not a valid policy.
type ScalingPolicy struct {
	typ         ScaleType
	targetRate  int32
	scaleFactor int32
	minSegments int32
}

// FixedSegments returns a policy with exactly n segments. n must be >= 1.
func FixedSegments(n int) (ScalingPolicy, error) {
	if n < 1 {
		return ScalingPolicy{}, newErr(KindInvalidArgument, "FixedSegments", "", "", "segment count must be >= 1, got %d", n)
	}
	return ScalingPolicy{typ: ScaleFixed, minSegments: int32(n)}, nil
}

// ByDataRate lets the store scale on ingest volume, targeting kbps
// kilobytes per second per segment.
func ByDataRate(kbps, scaleFactor, minSegments int) (ScalingPolicy, error) {
	return ratePolicy("ByDataRate", ScaleByDataRate, kbps, scaleFactor, minSegments)
}

// ByEventRate lets the store scale on events per second per segment.
func ByEventRate(eventsPerSec, scaleFactor, minSegments int) (ScalingPolicy, error) {
	return ratePolicy("ByEventRate", ScaleByEventRate, eventsPerSec, scaleFactor, minSegments)
}

func ratePolicy(op string, typ ScaleType, rate, factor, min int) (ScalingPolicy, error) {
	switch {
	case rate < 1:
		return ScalingPolicy{}, newErr(KindInvalidArgument, op, "", "", "target rate must be >= 1, got %d", rate)
	case factor < 1:
		return ScalingPolicy{}, newErr(KindInvalidArgument, op, "", "", "scale factor must be >= 1, got %d", factor)
	case min < 1:
		return ScalingPolicy{}, newErr(KindInvalidArgument, op, "", "", "minimum segments must be >= 1, got %d", min)
	}
	return ScalingPolicy{typ: typ, targetRate: int32(rate), scaleFactor: int32(factor), minSegments: int32(min)}, nil
}

func (p ScalingPolicy) Type() ScaleType  { return p.typ }
func (p ScalingPolicy) TargetRate() int  { return int(p.targetRate) }
func (p ScalingPolicy) ScaleFactor() int { return int(p.scaleFactor) }
func (p ScalingPolicy) MinSegments() int { return int(p.minSegments) }
func (p ScalingPolicy) valid() bool      { return p.minSegments >= 1 }

func (p ScalingPolicy) String() string {
	if p.typ == ScaleFixed {
		return fmt.Sprintf("fixed(%d)", p.minSegments)
	}
	return fmt.Sprintf("%s(rate=%d, factor=%d, min=%d)", p.typ, p.targetRate, p.scaleFactor, p.minSegments)
}

func (p ScalingPolicy) toWire() *segstreamv1.ScalingPolicy {
	w := &segstreamv1.ScalingPolicy{
		TargetRate:     p.targetRate,
		ScaleFactor:    p.scaleFactor,
		MinNumSegments: p.minSegments,
	}
	switch p.typ {
	case ScaleByDataRate:
		w.ScaleType = segstreamv1.ScaleType_BY_RATE_IN_KBYTES
	case ScaleByEventRate:
		w.ScaleType = segstreamv1.ScaleType_BY_RATE_IN_EVENTS
	}
	return w
}

func policyFromWire(w *segstreamv1.ScalingPolicy) ScalingPolicy {
	if w == nil {
		return ScalingPolicy{}
	}
	p := ScalingPolicy{targetRate: w.TargetRate, scaleFactor: w.ScaleFactor, minSegments: w.MinNumSegments}
	switch w.ScaleType {
	case segstreamv1.ScaleType_BY_RATE_IN_KBYTES:
		p.typ = ScaleByDataRate
	case segstreamv1.ScaleType_BY_RATE_IN_EVENTS:
		p.typ = ScaleByEventRate
	}
	return p
}
