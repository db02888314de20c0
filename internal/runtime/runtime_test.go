package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rzbill/segstream/internal/catalog"
	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/internal/segmentlog"
	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

func openTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever, Config: cfgpkg.Default()})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpenCloseHealth(t *testing.T) {
	rt := openTestRuntime(t)
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestAppendRoutesByKey(t *testing.T) {
	rt := openTestRuntime(t)
	_, _ = rt.CreateScope("sc")
	if _, err := rt.CreateStream("sc", "st", catalog.Policy{MinSegments: 4}); err != nil {
		t.Fatalf("create: %v", err)
	}
	ctx := context.Background()
	first, _, err := rt.Append(ctx, "sc", "st", "writer-a", []byte("1"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	for i := 0; i < 5; i++ {
		seg, off, err := rt.Append(ctx, "sc", "st", "writer-a", []byte("1"))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if seg != first {
			t.Fatalf("routing key moved from %d to %d", first, seg)
		}
		if off != int64(i+1)*9 {
			t.Fatalf("offset = %d", off)
		}
	}
	if _, _, err := rt.Append(ctx, "sc", "missing", "k", nil); !errors.Is(err, catalog.ErrStreamNotFound) {
		t.Fatalf("want ErrStreamNotFound, got %v", err)
	}
}

func TestSnapshotReportsTails(t *testing.T) {
	rt := openTestRuntime(t)
	_, _ = rt.CreateScope("sc")
	_, _ = rt.CreateStream("sc", "st", catalog.Policy{MinSegments: 2})
	ctx := context.Background()
	total := int64(0)
	for i := 0; i < 10; i++ {
		p := []byte(fmt.Sprintf("event-%d", i))
		if _, _, err := rt.Append(ctx, "sc", "st", fmt.Sprintf("k%d", i), p); err != nil {
			t.Fatalf("append: %v", err)
		}
		total += int64(len(p)) + segmentlog.FrameOverhead
	}
	v, err := rt.Snapshot("sc", "st")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var sum int64
	for _, tail := range v.Tails {
		sum += tail
	}
	if len(v.Tails) != 2 || sum != total {
		t.Fatalf("tails = %v (sum %d want %d)", v.Tails, sum, total)
	}
}

func TestUpdateStreamSealsEpoch(t *testing.T) {
	rt := openTestRuntime(t)
	_, _ = rt.CreateScope("sc")
	_, _ = rt.CreateStream("sc", "st", catalog.Policy{MinSegments: 1})
	ctx := context.Background()
	oldSeg, _, _ := rt.Append(ctx, "sc", "st", "k", []byte("before"))

	wait := rt.Notifier("sc", "st").Wait()
	if err := rt.UpdateStream("sc", "st", catalog.Policy{MinSegments: 2}); err != nil {
		t.Fatalf("update: %v", err)
	}
	select {
	case <-wait:
	default:
		t.Fatalf("rescale did not wake readers")
	}

	l, _ := rt.Segment("sc", "st", oldSeg)
	if !l.Meta().Sealed {
		t.Fatalf("old segment not sealed")
	}
	newSeg, _, err := rt.Append(ctx, "sc", "st", "k", []byte("after"))
	if err != nil {
		t.Fatalf("append after rescale: %v", err)
	}
	if epoch, _ := catalog.SplitSegmentID(newSeg); epoch != 2 {
		t.Fatalf("append went to epoch %d", epoch)
	}
	if err := rt.UpdateStream("sc", "st", catalog.Policy{}); err == nil {
		t.Fatalf("expected invalid policy error")
	}
}
