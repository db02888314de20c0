package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go4org/hashtriemap"

	"github.com/rzbill/segstream/internal/catalog"
	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/internal/segmentlog"
	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
	"github.com/rzbill/segstream/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	Logger        log.Logger
}

// Runtime wires storage, catalog and segment logs for a single-node gateway.
type Runtime struct {
	db      *pebblestore.DB
	catalog *catalog.Catalog
	config  cfgpkg.Config
	logger  log.Logger

	logs    hashtriemap.HashTrieMap[string, *segmentlog.Log]
	streams hashtriemap.HashTrieMap[string, *streamState]
}

// streamState guards topology changes. Appends hold the read lock; a rescale
// holds the write lock while it seals segments and adds an epoch.
type streamState struct {
	mu     sync.RWMutex
	notify *segmentlog.Notifier
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{
		db:      db,
		catalog: catalog.New(db),
		config:  opts.Config,
		logger:  opts.Logger.WithComponent("runtime"),
	}, nil
}

func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth verifies the store can serve an iterator.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.db == nil {
		return errors.New("db not open")
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

func (r *Runtime) Config() cfgpkg.Config { return r.config }

func (r *Runtime) CreateScope(scope string) (bool, error) {
	created, err := r.catalog.CreateScope(scope)
	if created {
		r.logger.Info("scope created", log.Str("scope", scope))
	}
	return created, err
}

func (r *Runtime) CreateStream(scope, stream string, p catalog.Policy) (bool, error) {
	created, err := r.catalog.CreateStream(scope, stream, p)
	if created {
		r.logger.Info("stream created", log.Str("scope", scope), log.Str("stream", stream), log.Int("segments", int(p.MinSegments)))
	}
	return created, err
}

func (r *Runtime) ListStreams(scope string, fn func(name string) bool) error {
	return r.catalog.ListStreams(scope, fn)
}

func (r *Runtime) Stream(scope, stream string) (catalog.StreamMeta, error) {
	return r.catalog.Stream(scope, stream)
}

func (r *Runtime) state(scope, stream string) *streamState {
	key := scope + "/" + stream
	if st, ok := r.streams.Load(key); ok {
		return st
	}
	st, _ := r.streams.LoadOrStore(key, &streamState{notify: segmentlog.NewNotifier()})
	return st
}

// Notifier returns the append notifier shared by every segment of a stream.
func (r *Runtime) Notifier(scope, stream string) *segmentlog.Notifier {
	return r.state(scope, stream).notify
}

// Segment returns the cached log of one segment, opening it on first use.
func (r *Runtime) Segment(scope, stream string, seg int64) (*segmentlog.Log, error) {
	key := fmt.Sprintf("%s/%s/%d", scope, stream, seg)
	if l, ok := r.logs.Load(key); ok {
		return l, nil
	}
	l, err := segmentlog.Open(r.db, scope, stream, seg, r.Notifier(scope, stream))
	if err != nil {
		return nil, err
	}
	l, _ = r.logs.LoadOrStore(key, l)
	return l, nil
}

// Route picks the active segment for routingKey. Equal keys map to the same
// segment for as long as the epoch lasts.
func Route(e catalog.Epoch, routingKey string) int64 {
	return e.Segments[xxhash.Sum64String(routingKey)%uint64(len(e.Segments))]
}

// Append stores one event on the segment its routing key maps to.
func (r *Runtime) Append(ctx context.Context, scope, stream, routingKey string, payload []byte) (seg, off int64, err error) {
	st := r.state(scope, stream)
	st.mu.RLock()
	defer st.mu.RUnlock()

	meta, err := r.catalog.Stream(scope, stream)
	if err != nil {
		return 0, 0, err
	}
	seg = Route(meta.Current(), routingKey)
	l, err := r.Segment(scope, stream, seg)
	if err != nil {
		return 0, 0, err
	}
	offs, err := l.Append(ctx, []segmentlog.Record{{RoutingKey: routingKey, Payload: payload}})
	if err != nil {
		return 0, 0, err
	}
	return seg, offs[0], nil
}

// UpdateStream replaces the policy and starts a new epoch of
// p.MinSegments segments, sealing the previous ones atomically.
func (r *Runtime) UpdateStream(scope, stream string, p catalog.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	st := r.state(scope, stream)
	st.mu.Lock()
	defer st.mu.Unlock()

	meta, err := r.catalog.Stream(scope, stream)
	if err != nil {
		return err
	}
	b := r.db.NewBatch()
	defer b.Close()

	old := meta.Current().Segments
	logs := make([]*segmentlog.Log, 0, len(old))
	for _, seg := range old {
		l, err := r.Segment(scope, stream, seg)
		if err != nil {
			return err
		}
		if err := l.Seal(b); err != nil {
			return err
		}
		logs = append(logs, l)
	}
	next, err := r.catalog.StageRescale(b, meta, p)
	if err != nil {
		return err
	}
	if err := r.catalog.Commit(b); err != nil {
		return err
	}
	for _, l := range logs {
		l.MarkSealed()
	}
	r.logger.Info("stream rescaled",
		log.Str("scope", scope), log.Str("stream", stream),
		log.Int64("epoch", next.Current().Number), log.Int("segments", len(next.Current().Segments)))
	return nil
}

// View is a point-in-time picture of a stream: its metadata plus the tail
// offset of every segment of the current epoch.
type View struct {
	Meta  catalog.StreamMeta
	Tails map[int64]int64
}

// Snapshot reads a View from one Pebble snapshot, so the tails form a
// consistent cut without locking writers.
func (r *Runtime) Snapshot(scope, stream string) (View, error) {
	snap := r.db.NewSnapshot()
	defer snap.Close()

	meta, err := catalog.Stream(snap, scope, stream)
	if err != nil {
		return View{}, err
	}
	v := View{Meta: meta, Tails: make(map[int64]int64, len(meta.Current().Segments))}
	for _, seg := range meta.Current().Segments {
		m, err := segmentlog.ReadMeta(snap, scope, stream, seg)
		if err != nil {
			return View{}, err
		}
		v.Tails[seg] = m.Tail
	}
	return v, nil
}
