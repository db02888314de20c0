package catalog

import (
	"errors"
	"testing"

	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

func newTestCatalog(t *testing.T) (*pebblestore.DB, *Catalog) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, New(db)
}

func TestCreateScopeIdempotent(t *testing.T) {
	_, c := newTestCatalog(t)
	created, err := c.CreateScope("myscope")
	if err != nil || !created {
		t.Fatalf("first create = %v, %v", created, err)
	}
	created, err = c.CreateScope("myscope")
	if err != nil || created {
		t.Fatalf("second create = %v, %v", created, err)
	}
}

func TestCreateStreamKeepsPolicy(t *testing.T) {
	_, c := newTestCatalog(t)
	if _, err := c.CreateStream("nope", "s", Policy{MinSegments: 1}); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("want ErrScopeNotFound, got %v", err)
	}
	_, _ = c.CreateScope("myscope")
	created, err := c.CreateStream("myscope", "mystream", Policy{MinSegments: 1})
	if err != nil || !created {
		t.Fatalf("create = %v, %v", created, err)
	}
	created, err = c.CreateStream("myscope", "mystream", Policy{MinSegments: 4})
	if err != nil || created {
		t.Fatalf("redundant create = %v, %v", created, err)
	}
	m, err := c.Stream("myscope", "mystream")
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if m.Policy.MinSegments != 1 || len(m.Current().Segments) != 1 || m.Current().Number != 1 {
		t.Fatalf("meta changed: %+v", m)
	}
}

func TestStageRescaleAddsEpoch(t *testing.T) {
	db, c := newTestCatalog(t)
	_, _ = c.CreateScope("sc")
	_, _ = c.CreateStream("sc", "st", Policy{MinSegments: 1})
	m, _ := c.Stream("sc", "st")

	b := db.NewBatch()
	next, err := c.StageRescale(b, m, Policy{MinSegments: 3})
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := c.Commit(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()

	got, _ := c.Stream("sc", "st")
	if len(got.Epochs) != 2 || got.Current().Number != 2 || len(got.Current().Segments) != 3 {
		t.Fatalf("epochs = %+v", got.Epochs)
	}
	if got.Current().Segments[2] != SegmentID(2, 2) || next.Policy.MinSegments != 3 {
		t.Fatalf("unexpected segment ids %+v", got.Current())
	}
	if !got.HasSegment(SegmentID(1, 0)) || got.HasSegment(SegmentID(1, 1)) {
		t.Fatalf("HasSegment mismatch")
	}
}

func TestPolicyValidate(t *testing.T) {
	bad := []Policy{
		{MinSegments: 0},
		{Type: ScaleByDataRate, MinSegments: 1},
		{Type: ScaleType(9), MinSegments: 1},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("expected error for %+v", p)
		}
	}
	if err := (Policy{Type: ScaleByEventRate, TargetRate: 100, ScaleFactor: 2, MinSegments: 2}).Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
}

func TestListStreams(t *testing.T) {
	_, c := newTestCatalog(t)
	_, _ = c.CreateScope("a")
	_, _ = c.CreateScope("ab")
	for _, s := range []string{"s2", "s1", "s3"} {
		_, _ = c.CreateStream("a", s, Policy{MinSegments: 1})
	}
	_, _ = c.CreateStream("ab", "other", Policy{MinSegments: 1})

	var names []string
	if err := c.ListStreams("a", func(n string) bool { names = append(names, n); return true }); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 3 || names[0] != "s1" || names[2] != "s3" {
		t.Fatalf("names = %v", names)
	}
	if err := c.ListStreams("missing", func(string) bool { return true }); !errors.Is(err, ErrScopeNotFound) {
		t.Fatalf("want ErrScopeNotFound, got %v", err)
	}
}
