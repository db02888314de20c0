package segmentlog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

var (
	// ErrSealed is returned when appending to a sealed segment.
	ErrSealed = errors.New("segmentlog: segment sealed")
	// ErrNotFound is returned by ReadAt when no event starts at the offset.
	ErrNotFound = errors.New("segmentlog: event not found")
)

// Log is the append-only event log of one segment.
type Log struct {
	db     *pebblestore.DB
	scope  string
	stream string
	seg    int64
	notify *Notifier

	mu   sync.Mutex
	meta Meta
}

// Open loads the segment's metadata, if any. notify may be nil.
func Open(db *pebblestore.DB, scope, stream string, seg int64, notify *Notifier) (*Log, error) {
	l := &Log{db: db, scope: scope, stream: stream, seg: seg, notify: notify}
	m, err := ReadMeta(db.Reader(), scope, stream, seg)
	if err != nil {
		return nil, err
	}
	l.meta = m
	return l, nil
}

// ReadMeta reads a segment's metadata through r. A segment that has never
// been written reads as the zero Meta.
func ReadMeta(r pebblestore.Reader, scope, stream string, seg int64) (Meta, error) {
	b, err := pebblestore.Get(r, KeyMeta(scope, stream, seg))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Meta{}, nil
	}
	if err != nil {
		return Meta{}, err
	}
	return decodeMeta(b)
}

func (l *Log) Segment() int64 { return l.seg }

// Record is one event to append.
type Record struct {
	RoutingKey string
	Payload    []byte
}

// Append writes recs atomically and returns the byte offset of each.
func (l *Log) Append(ctx context.Context, recs []Record) ([]int64, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.meta.Sealed {
		return nil, ErrSealed
	}

	b := l.db.NewBatch()
	defer b.Close()

	next := l.meta
	offs := make([]int64, len(recs))
	for i, r := range recs {
		offs[i] = next.Tail
		if err := b.Set(KeyEntry(l.scope, l.stream, l.seg, next.Tail), encodeRecord(r.RoutingKey, r.Payload), nil); err != nil {
			return nil, err
		}
		next.Tail += int64(len(r.Payload)) + FrameOverhead
		next.Count++
	}
	if err := b.Set(KeyMeta(l.scope, l.stream, l.seg), next.encode(), nil); err != nil {
		return nil, err
	}
	if err := l.db.CommitBatch(b); err != nil {
		return nil, fmt.Errorf("segment %d append: %w", l.seg, err)
	}
	l.meta = next
	if l.notify != nil {
		l.notify.Broadcast()
	}
	return offs, nil
}

// Seal stages the sealed flag into b. Call MarkSealed after b commits.
func (l *Log) Seal(b *pebble.Batch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.meta
	m.Sealed = true
	return b.Set(KeyMeta(l.scope, l.stream, l.seg), m.encode(), nil)
}

// MarkSealed records a committed seal in memory and wakes waiting readers.
func (l *Log) MarkSealed() {
	l.mu.Lock()
	l.meta.Sealed = true
	l.mu.Unlock()
	if l.notify != nil {
		l.notify.Broadcast()
	}
}

// Meta returns the in-memory view of the segment.
func (l *Log) Meta() Meta {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.meta
}
