package segmentlog

import "encoding/binary"

// Keyspace (byte-wise sortable):
//
//	sc/{scope}/st/{stream}/sg/{seg_be8}/m
//	sc/{scope}/st/{stream}/sg/{seg_be8}/e/{off_be8}
//
// Scope and stream names never contain '/', so prefixes do not collide.

var (
	sep        = byte('/')
	scopeSeg   = []byte("sc/")
	streamSeg  = []byte("/st/")
	segmentSeg = []byte("/sg/")
	metaSuffix = []byte("/m")
	entrySeg   = []byte("/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func segmentPrefix(scope, stream string, seg int64) []byte {
	k := make([]byte, 0, len(scope)+len(stream)+40)
	k = append(k, scopeSeg...)
	k = append(k, scope...)
	k = append(k, streamSeg...)
	k = append(k, stream...)
	k = append(k, segmentSeg...)
	return appendBE8(k, uint64(seg))
}

// KeyMeta is the segment metadata key holding tail offset and seal state.
func KeyMeta(scope, stream string, seg int64) []byte {
	return append(segmentPrefix(scope, stream, seg), metaSuffix...)
}

// KeyEntry is the key of the event stored at byte offset off.
func KeyEntry(scope, stream string, seg, off int64) []byte {
	k := append(segmentPrefix(scope, stream, seg), entrySeg...)
	return appendBE8(k, uint64(off))
}

func offsetFromKey(k []byte) int64 {
	return int64(binary.BigEndian.Uint64(k[len(k)-8:]))
}

// StreamPrefix bounds every key belonging to one stream.
func StreamPrefix(scope, stream string) []byte {
	k := make([]byte, 0, len(scope)+len(stream)+8)
	k = append(k, scopeSeg...)
	k = append(k, scope...)
	k = append(k, streamSeg...)
	k = append(k, stream...)
	return append(k, sep)
}
