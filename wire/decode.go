package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/parse"
)

// reader is a bounds-checked cursor over one wire buffer.
type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.off+n > len(r.b) {
		r.err = fmt.Errorf("truncated buffer at offset %d, need %d bytes", r.off, n)
		return false
	}
	return true
}

func (r *reader) byte() byte {
	if !r.need(1) {
		return 0
	}
	v := r.b[r.off]
	r.off++
	return v
}

func (r *reader) uint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.b[r.off:])
	r.off += 2
	return v
}

func (r *reader) uint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.b[r.off:])
	r.off += 4
	return v
}

func (r *reader) uint64() uint64 {
	if !r.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.b[r.off:])
	r.off += 8
	return v
}

func (r *reader) string16() string {
	n := int(r.uint16())
	if !r.need(n) {
		return ""
	}
	s := string(r.b[r.off : r.off+n])
	r.off += n
	return s
}

func (r *reader) string32() string {
	n := int(r.uint32())
	if !r.need(n) {
		return ""
	}
	s := string(r.b[r.off : r.off+n])
	r.off += n
	return s
}

func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, r.b[r.off:])
	r.off += n
	return out
}

func (r *reader) header(wantSchema byte) Header {
	var h Header
	if magic := r.uint16(); magic != Magic && r.err == nil {
		r.err = fmt.Errorf("bad magic 0x%04X", magic)
		return h
	}
	h.Schema = r.byte()
	if r.err == nil && h.Schema != wantSchema {
		r.err = fmt.Errorf("schema 0x%02X, want 0x%02X", h.Schema, wantSchema)
		return h
	}
	h.TimestampNs = r.uint64()
	h.CorrelationID = r.uint64()
	h.Tag = r.string16()
	return h
}

// DecodeEvent reads one Event buffer back into its header, key and value.
// The sender never decodes; this is the codec's receiving half, used by
// consumers and by round-trip tests.
func DecodeEvent(buf []byte) (Header, string, parse.Value, error) {
	r := &reader{b: buf}
	h := r.header(SchemaEvent)
	key := r.string16()
	kind := parse.Kind(r.byte())

	var v parse.Value
	switch kind {
	case parse.KindNull:
		v = parse.Null()
	case parse.KindBool:
		v = parse.Bool(r.byte() != 0)
	case parse.KindInt8:
		v = parse.Int(kind, int64(int8(r.byte())))
	case parse.KindInt16:
		v = parse.Int(kind, int64(int16(r.uint16())))
	case parse.KindInt32:
		v = parse.Int(kind, int64(int32(r.uint32())))
	case parse.KindInt64:
		v = parse.Int(kind, int64(r.uint64()))
	case parse.KindUint8:
		v = parse.Uint(kind, uint64(r.byte()))
	case parse.KindUint16:
		v = parse.Uint(kind, uint64(r.uint16()))
	case parse.KindUint32:
		v = parse.Uint(kind, uint64(r.uint32()))
	case parse.KindUint64:
		v = parse.Uint(kind, r.uint64())
	case parse.KindFloat64:
		v = parse.Float(math.Float64frombits(r.uint64()))
	case parse.KindText:
		v = parse.Text(r.string32())
	default:
		r.err = fmt.Errorf("unknown payload kind 0x%02X", byte(kind))
	}

	if r.err != nil {
		return Header{}, "", parse.Value{}, errors.WrapInvalid(r.err, "wire", "DecodeEvent", "read")
	}
	return h, key, v, nil
}

// DecodeTensor reads one Tensor buffer back into its header and array value.
func DecodeTensor(buf []byte) (Header, parse.Value, error) {
	r := &reader{b: buf}
	h := r.header(SchemaTensor)
	elem := parse.Kind(r.byte())
	rank := int(r.byte())

	if r.err == nil && elem.Width() == 0 {
		r.err = fmt.Errorf("element kind 0x%02X is not fixed-width", byte(elem))
	}

	shape := make([]uint32, 0, rank)
	for i := 0; i < rank; i++ {
		shape = append(shape, r.uint32())
	}
	var data []byte
	if r.err == nil {
		data = r.bytes(parse.Count(shape) * elem.Width())
	}

	if r.err != nil {
		return Header{}, parse.Value{}, errors.WrapInvalid(r.err, "wire", "DecodeTensor", "read")
	}
	return h, parse.Array(elem, shape, data), nil
}
