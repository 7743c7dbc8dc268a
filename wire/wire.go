package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/c360/telemsend/parse"
)

// Frozen wire constants. The layout is the contract with receivers and must
// not change: big-endian throughout, uint16 length-prefixed strings for tag
// and key, uint32 length prefix for text payloads.
const (
	Magic = uint16(0x7E1E)

	SchemaEvent  = byte(0x01)
	SchemaTensor = byte(0x02)

	// magic(2) + schema(1) + timestampNs(8) + correlationId(8)
	headerSize = 19

	maxRank = 255

	// maxString16 is the largest tag or key the uint16 length prefix can
	// describe. Longer strings must be rejected, never wrapped.
	maxString16 = 1<<16 - 1
)

// Schema returns the schema byte of an encoded buffer, or 0 when the buffer
// is too short to carry a header.
func Schema(buf []byte) byte {
	if len(buf) < headerSize {
		return 0
	}
	return buf[2]
}

// checkString16 guards the uint16 length prefix of tag and key fields.
func checkString16(what, s string) error {
	if len(s) > maxString16 {
		return fmt.Errorf("%s length %d exceeds %d bytes", what, len(s), maxString16)
	}
	return nil
}

// Header carries the fixed per-message fields plus the tag.
type Header struct {
	Schema        byte
	TimestampNs   uint64
	CorrelationID uint64
	Tag           string
}

// headerLen returns the encoded size of the header including the tag field.
func headerLen(tag string) int {
	return headerSize + 2 + len(tag)
}

// putHeader writes the header and tag, returning the next write offset.
func putHeader(b []byte, schema byte, ts uint64, id uint64, tag string) int {
	binary.BigEndian.PutUint16(b[0:], Magic)
	b[2] = schema
	binary.BigEndian.PutUint64(b[3:], ts)
	binary.BigEndian.PutUint64(b[11:], id)
	return putString16(b, headerSize, tag)
}

// putString16 writes a uint16 length-prefixed string at off, returning the
// next write offset.
func putString16(b []byte, off int, s string) int {
	binary.BigEndian.PutUint16(b[off:], uint16(len(s)))
	off += 2
	copy(b[off:], s)
	return off + len(s)
}

// putString32 writes a uint32 length-prefixed string at off, returning the
// next write offset.
func putString32(b []byte, off int, s string) int {
	binary.BigEndian.PutUint32(b[off:], uint32(len(s)))
	off += 4
	copy(b[off:], s)
	return off + len(s)
}

// putScalar writes a fixed-width scalar payload at off, returning the next
// write offset. Signed integers are written as two's complement of the
// kind's width.
func putScalar(b []byte, off int, v parse.Value) int {
	switch v.Kind {
	case parse.KindBool:
		if v.Bool {
			b[off] = 1
		} else {
			b[off] = 0
		}
		return off + 1
	case parse.KindInt8:
		b[off] = byte(v.Int)
		return off + 1
	case parse.KindInt16:
		binary.BigEndian.PutUint16(b[off:], uint16(v.Int))
		return off + 2
	case parse.KindInt32:
		binary.BigEndian.PutUint32(b[off:], uint32(v.Int))
		return off + 4
	case parse.KindInt64:
		binary.BigEndian.PutUint64(b[off:], uint64(v.Int))
		return off + 8
	case parse.KindUint8:
		b[off] = byte(v.Uint)
		return off + 1
	case parse.KindUint16:
		binary.BigEndian.PutUint16(b[off:], uint16(v.Uint))
		return off + 2
	case parse.KindUint32:
		binary.BigEndian.PutUint32(b[off:], uint32(v.Uint))
		return off + 4
	case parse.KindUint64:
		binary.BigEndian.PutUint64(b[off:], v.Uint)
		return off + 8
	case parse.KindFloat64:
		binary.BigEndian.PutUint64(b[off:], math.Float64bits(v.Float))
		return off + 8
	}
	return off
}

// scalarSize returns the payload size in bytes for an event value.
func scalarSize(v parse.Value) int {
	switch v.Kind {
	case parse.KindNull:
		return 0
	case parse.KindText:
		return 4 + len(v.Text)
	default:
		return v.Kind.Width()
	}
}
