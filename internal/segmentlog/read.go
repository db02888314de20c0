package segmentlog

import (
	"github.com/cockroachdb/pebble"
)

// Item is one stored event.
type Item struct {
	Offset     int64
	RoutingKey string
	Payload    []byte
}

// Length is the number of offset bytes the event occupies.
func (it Item) Length() int64 { return int64(len(it.Payload)) + FrameOverhead }

// ReadOptions bounds a scan. To <= 0 means no upper bound.
type ReadOptions struct {
	From  int64
	To    int64
	Limit int
}

// Read returns events starting at or after From and strictly before To.
func (l *Log) Read(opts ReadOptions) ([]Item, error) {
	low := KeyEntry(l.scope, l.stream, l.seg, opts.From)
	var high []byte
	if opts.To > 0 {
		high = KeyEntry(l.scope, l.stream, l.seg, opts.To)
	} else {
		high = KeyEntry(l.scope, l.stream, l.seg, int64(^uint64(0)>>1))
	}
	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var items []Item
	for ok := iter.First(); ok && (opts.Limit <= 0 || len(items) < opts.Limit); ok = iter.Next() {
		key, payload, err := decodeRecord(iter.Value())
		if err != nil {
			return items, err
		}
		items = append(items, Item{Offset: offsetFromKey(iter.Key()), RoutingKey: key, Payload: payload})
	}
	return items, iter.Error()
}

// ReadAt returns the event that starts exactly at off.
func (l *Log) ReadAt(off int64) (Item, error) {
	items, err := l.Read(ReadOptions{From: off, To: off + 1, Limit: 1})
	if err != nil {
		return Item{}, err
	}
	if len(items) == 0 {
		return Item{}, ErrNotFound
	}
	return items[0], nil
}
