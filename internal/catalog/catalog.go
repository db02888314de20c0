package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
)

var (
	ErrScopeNotFound  = errors.New("catalog: scope not found")
	ErrStreamNotFound = errors.New("catalog: stream not found")
)

// ScaleType mirrors the wire scaling modes.
type ScaleType int

const (
	ScaleFixed ScaleType = iota
	ScaleByDataRate
	ScaleByEventRate
)

// Policy is the persisted scaling policy of a stream.
type Policy struct {
	Type        ScaleType `json:"type"`
	TargetRate  int32     `json:"targetRate,omitempty"`
	ScaleFactor int32     `json:"scaleFactor,omitempty"`
	MinSegments int32     `json:"minSegments"`
}

// Validate enforces minSegments >= 1 and, for rate policies, positive
// rate and factor.
func (p Policy) Validate() error {
	if p.MinSegments < 1 {
		return fmt.Errorf("minSegments must be >= 1, got %d", p.MinSegments)
	}
	switch p.Type {
	case ScaleFixed:
	case ScaleByDataRate, ScaleByEventRate:
		if p.TargetRate < 1 || p.ScaleFactor < 1 {
			return fmt.Errorf("rate policy needs targetRate and scaleFactor >= 1")
		}
	default:
		return fmt.Errorf("unknown scale type %d", p.Type)
	}
	return nil
}

// Epoch is one generation of a stream's segment set.
type Epoch struct {
	Number   int64   `json:"number"`
	Segments []int64 `json:"segments"`
}

// SegmentID packs an epoch and a segment number within that epoch.
func SegmentID(epoch int64, n int) int64 { return epoch<<32 | int64(n) }

// SplitSegmentID is the inverse of SegmentID.
func SplitSegmentID(id int64) (epoch int64, n int) { return id >> 32, int(id & 0xffffffff) }

func newEpoch(number int64, segments int32) Epoch {
	e := Epoch{Number: number, Segments: make([]int64, segments)}
	for i := range e.Segments {
		e.Segments[i] = SegmentID(number, i)
	}
	return e
}

type ScopeMeta struct {
	Name        string `json:"name"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// StreamMeta is the persisted state of a stream. Epochs are ordered oldest
// first; every epoch but the last is sealed.
type StreamMeta struct {
	Scope       string  `json:"scope"`
	Name        string  `json:"name"`
	CreatedAtMs int64   `json:"createdAtMs"`
	Policy      Policy  `json:"policy"`
	Epochs      []Epoch `json:"epochs"`
}

// Current returns the active epoch.
func (m StreamMeta) Current() Epoch { return m.Epochs[len(m.Epochs)-1] }

// EpochIndex returns the position of epoch number n, or -1.
func (m StreamMeta) EpochIndex(n int64) int {
	for i, e := range m.Epochs {
		if e.Number == n {
			return i
		}
	}
	return -1
}

// HasSegment reports whether seg belongs to any epoch of the stream.
func (m StreamMeta) HasSegment(seg int64) bool {
	epoch, n := SplitSegmentID(seg)
	i := m.EpochIndex(epoch)
	return i >= 0 && n >= 0 && n < len(m.Epochs[i].Segments)
}

var (
	scopePrefix  = []byte("cat/scope/")
	streamPrefix = []byte("cat/stream/")
)

func scopeKey(scope string) []byte {
	return append(append([]byte{}, scopePrefix...), scope...)
}

func streamKey(scope, stream string) []byte {
	k := append(append([]byte{}, streamPrefix...), scope...)
	k = append(k, '/')
	return append(k, stream...)
}

// Catalog serializes metadata mutations. Reads go straight to Pebble.
type Catalog struct {
	db *pebblestore.DB
	mu sync.Mutex
}

func New(db *pebblestore.DB) *Catalog { return &Catalog{db: db} }

// CreateScope records scope if absent. created is false when it existed.
func (c *Catalog) CreateScope(scope string) (created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.Get(scopeKey(scope)); err == nil {
		return false, nil
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return false, err
	}
	b, err := json.Marshal(ScopeMeta{Name: scope, CreatedAtMs: time.Now().UnixMilli()})
	if err != nil {
		return false, err
	}
	return true, c.db.Set(scopeKey(scope), b)
}

func (c *Catalog) ScopeExists(scope string) (bool, error) {
	_, err := c.db.Get(scopeKey(scope))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreateStream records a stream with its first epoch. An existing stream is
// left untouched, including its policy, and reported with created=false.
func (c *Catalog) CreateStream(scope, stream string, p Policy) (created bool, err error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ok, err := c.ScopeExists(scope)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrScopeNotFound
	}
	if _, err := c.db.Get(streamKey(scope, stream)); err == nil {
		return false, nil
	} else if !errors.Is(err, pebblestore.ErrNotFound) {
		return false, err
	}
	m := StreamMeta{
		Scope:       scope,
		Name:        stream,
		CreatedAtMs: time.Now().UnixMilli(),
		Policy:      p,
		Epochs:      []Epoch{newEpoch(1, p.MinSegments)},
	}
	b, err := json.Marshal(m)
	if err != nil {
		return false, err
	}
	return true, c.db.Set(streamKey(scope, stream), b)
}

// Stream reads a stream's metadata through r, which may be a snapshot.
func Stream(r pebblestore.Reader, scope, stream string) (StreamMeta, error) {
	b, err := pebblestore.Get(r, streamKey(scope, stream))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return StreamMeta{}, ErrStreamNotFound
	}
	if err != nil {
		return StreamMeta{}, err
	}
	var m StreamMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return StreamMeta{}, fmt.Errorf("catalog %s/%s: %w", scope, stream, err)
	}
	return m, nil
}

func (c *Catalog) Stream(scope, stream string) (StreamMeta, error) {
	return Stream(c.db.Reader(), scope, stream)
}

// StageRescale writes into b a new epoch of p.MinSegments segments and the
// new policy, returning the updated metadata. The caller seals the old
// epoch's segments in the same batch and commits it.
func (c *Catalog) StageRescale(b *pebble.Batch, m StreamMeta, p Policy) (StreamMeta, error) {
	if err := p.Validate(); err != nil {
		return StreamMeta{}, err
	}
	next := m
	next.Policy = p
	next.Epochs = append(append([]Epoch(nil), m.Epochs...), newEpoch(m.Current().Number+1, p.MinSegments))
	raw, err := json.Marshal(next)
	if err != nil {
		return StreamMeta{}, err
	}
	if err := b.Set(streamKey(m.Scope, m.Name), raw, nil); err != nil {
		return StreamMeta{}, err
	}
	return next, nil
}

// Commit commits a batch staged through StageRescale under the catalog lock.
func (c *Catalog) Commit(b *pebble.Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.CommitBatch(b)
}

// ListStreams calls fn with each stream name of scope in key order,
// stopping early if fn returns false.
func (c *Catalog) ListStreams(scope string, fn func(name string) bool) error {
	ok, err := c.ScopeExists(scope)
	if err != nil {
		return err
	}
	if !ok {
		return ErrScopeNotFound
	}
	prefix := streamKey(scope, "")
	iter, err := c.db.NewIter(&pebble.IterOptions{LowerBound: prefix, UpperBound: prefixEnd(prefix)})
	if err != nil {
		return err
	}
	defer iter.Close()
	for valid := iter.First(); valid; valid = iter.Next() {
		if !fn(string(iter.Key()[len(prefix):])) {
			break
		}
	}
	return iter.Error()
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
