package segmentlog

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

func openTestLog(t *testing.T, n *Notifier) (*pebblestore.DB, *Log) {
	t.Helper()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	l, err := Open(db, "myscope", "mystream", 1<<32, n)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return db, l
}

func TestAppendAssignsByteOffsets(t *testing.T) {
	_, l := openTestLog(t, nil)
	offs, err := l.Append(context.Background(), []Record{
		{RoutingKey: "k", Payload: []byte("abc")},
		{RoutingKey: "k", Payload: nil},
		{RoutingKey: "k", Payload: []byte("hello")},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	want := []int64{0, 11, 19}
	for i := range want {
		if offs[i] != want[i] {
			t.Fatalf("offs = %v want %v", offs, want)
		}
	}
	if m := l.Meta(); m.Tail != 32 || m.Count != 3 {
		t.Fatalf("meta = %+v", m)
	}

	items, err := l.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 3 || !bytes.Equal(items[2].Payload, []byte("hello")) || items[2].Offset != 19 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].Length() != 11 {
		t.Fatalf("length = %d", items[0].Length())
	}
}

func TestReadBoundsAndReadAt(t *testing.T) {
	_, l := openTestLog(t, nil)
	for i := 0; i < 5; i++ {
		if _, err := l.Append(context.Background(), []Record{{Payload: []byte{byte(i)}}}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// each event is 9 bytes
	items, err := l.Read(ReadOptions{From: 9, To: 36})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 3 || items[0].Payload[0] != 1 || items[2].Payload[0] != 3 {
		t.Fatalf("items = %+v", items)
	}
	it, err := l.ReadAt(27)
	if err != nil || it.Payload[0] != 3 {
		t.Fatalf("ReadAt(27) = %+v, %v", it, err)
	}
	if _, err := l.ReadAt(28); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ReadAt mid-event: %v", err)
	}
}

func TestReopenRestoresTail(t *testing.T) {
	db, l := openTestLog(t, nil)
	if _, err := l.Append(context.Background(), []Record{{Payload: []byte("xy")}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	again, err := Open(db, "myscope", "mystream", 1<<32, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if m := again.Meta(); m.Tail != 10 || m.Count != 1 {
		t.Fatalf("meta = %+v", m)
	}
}

func TestSealRejectsAppends(t *testing.T) {
	db, l := openTestLog(t, nil)
	b := db.NewBatch()
	if err := l.Seal(b); err != nil {
		t.Fatalf("seal: %v", err)
	}
	if err := db.CommitBatch(b); err != nil {
		t.Fatalf("commit: %v", err)
	}
	b.Close()
	l.MarkSealed()
	if _, err := l.Append(context.Background(), []Record{{Payload: []byte("x")}}); !errors.Is(err, ErrSealed) {
		t.Fatalf("want ErrSealed, got %v", err)
	}
	m, err := ReadMeta(db.Reader(), "myscope", "mystream", 1<<32)
	if err != nil || !m.Sealed {
		t.Fatalf("persisted meta = %+v, %v", m, err)
	}
}

func TestAppendWakesWaiters(t *testing.T) {
	n := NewNotifier()
	_, l := openTestLog(t, n)
	wait := n.Wait()
	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = l.Append(context.Background(), []Record{{Payload: []byte("x")}})
	}()
	select {
	case <-wait:
	case <-time.After(time.Second):
		t.Fatalf("waiter not woken")
	}
}

func TestCorruptRecordDetected(t *testing.T) {
	rec := encodeRecord("key", []byte("payload"))
	rec[len(rec)-5] ^= 0xff
	if _, _, err := decodeRecord(rec); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got %v", err)
	}
	k, p, err := decodeRecord(encodeRecord("key", []byte("payload")))
	if err != nil || k != "key" || string(p) != "payload" {
		t.Fatalf("decode = %q %q %v", k, p, err)
	}
}
