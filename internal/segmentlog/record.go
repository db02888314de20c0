package segmentlog

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// FrameOverhead is the logical size every event adds to a segment beyond its
// payload. Offsets advance by len(payload)+FrameOverhead.
const FrameOverhead = 8

// ErrCorrupt reports a stored record that fails its checksum.
var ErrCorrupt = errors.New("segmentlog: corrupt record")

// Record encoding: varint keyLen | routingKey | payload | crc32c(key|payload)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeRecord(routingKey string, payload []byte) []byte {
	out := make([]byte, 0, binary.MaxVarintLen64+len(routingKey)+len(payload)+4)
	out = binary.AppendUvarint(out, uint64(len(routingKey)))
	out = append(out, routingKey...)
	out = append(out, payload...)
	crc := crc32.Update(0, castagnoli, []byte(routingKey))
	crc = crc32.Update(crc, castagnoli, payload)
	return binary.BigEndian.AppendUint32(out, crc)
}

func decodeRecord(b []byte) (routingKey string, payload []byte, err error) {
	if len(b) < 1+4 {
		return "", nil, ErrCorrupt
	}
	klen, n := binary.Uvarint(b)
	if n <= 0 || n+int(klen)+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	key := b[n : n+int(klen)]
	body := b[n+int(klen) : len(b)-4]
	crc := crc32.Update(0, castagnoli, key)
	crc = crc32.Update(crc, castagnoli, body)
	if crc != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return "", nil, ErrCorrupt
	}
	return string(key), append([]byte(nil), body...), nil
}

// Meta is the persisted segment state.
type Meta struct {
	Tail   int64
	Count  int64
	Sealed bool
}

func (m Meta) encode() []byte {
	out := make([]byte, 0, 17)
	out = binary.BigEndian.AppendUint64(out, uint64(m.Tail))
	out = binary.BigEndian.AppendUint64(out, uint64(m.Count))
	if m.Sealed {
		return append(out, 1)
	}
	return append(out, 0)
}

func decodeMeta(b []byte) (Meta, error) {
	if len(b) != 17 {
		return Meta{}, ErrCorrupt
	}
	return Meta{
		Tail:   int64(binary.BigEndian.Uint64(b[0:8])),
		Count:  int64(binary.BigEndian.Uint64(b[8:16])),
		Sealed: b[16] == 1,
	}, nil
}
