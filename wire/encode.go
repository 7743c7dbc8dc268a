package wire

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/idclock"
	"github.com/c360/telemsend/parse"
	"github.com/c360/telemsend/resource"
)

// Encoder serializes tagged values into wire buffers. Each encode call draws
// exactly one correlation id from the source, success or not; gaps in the id
// sequence are acceptable.
type Encoder struct {
	src    idclock.Source
	loader resource.Loader
}

// NewEncoder creates an encoder. The loader may be nil when URI values will
// never be encoded.
func NewEncoder(src idclock.Source, loader resource.Loader) *Encoder {
	return &Encoder{src: src, loader: loader}
}

// EncodeEvent builds one Event message: header, key, then a type-tagged
// payload sized exactly to the value.
//
// Array values cannot ride in an Event and re-encode as a Tensor. URI values
// resolve through the resource loader and also re-encode as a Tensor:
// URI-sourced content is bulk data regardless of the requested schema.
func (e *Encoder) EncodeEvent(ctx context.Context, tag, key string, v parse.Value) ([]byte, error) {
	ts, id := e.draw()

	if err := checkString16("tag", tag); err != nil {
		return nil, errors.WrapInvalid(err, "wire", "EncodeEvent", "length check")
	}
	if err := checkString16("key", key); err != nil {
		return nil, errors.WrapInvalid(err, "wire", "EncodeEvent", "length check")
	}

	switch v.Kind {
	case parse.KindArray:
		return e.tensorBuffer(ts, id, tag, v.Elem, v.Shape, v.Data)
	case parse.KindURI:
		return e.resolveTensor(ctx, ts, id, tag, v.Text)
	}

	size := headerLen(tag) + 2 + len(key) + 1 + scalarSize(v)
	b := make([]byte, size)
	off := putHeader(b, SchemaEvent, ts, id, tag)
	off = putString16(b, off, key)
	b[off] = byte(v.Kind)
	off++
	if v.Kind == parse.KindText {
		putString32(b, off, v.Text)
	} else {
		putScalar(b, off, v)
	}
	return b, nil
}

// EncodeTensor builds one Tensor message: header, dimension sizes in order,
// then the flattened element bytes in row-major order. The value must be an
// array or a URI reference.
func (e *Encoder) EncodeTensor(ctx context.Context, tag string, v parse.Value) ([]byte, error) {
	ts, id := e.draw()

	switch v.Kind {
	case parse.KindArray:
		return e.tensorBuffer(ts, id, tag, v.Elem, v.Shape, v.Data)
	case parse.KindURI:
		return e.resolveTensor(ctx, ts, id, tag, v.Text)
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("value kind %s cannot be encoded as a tensor", v.Kind),
			"wire", "EncodeTensor", "kind check")
	}
}

// draw consumes one timestamp and one correlation id.
func (e *Encoder) draw() (uint64, uint64) {
	return uint64(e.src.Now()), e.src.NextID()
}

func (e *Encoder) resolveTensor(ctx context.Context, ts, id uint64, tag, uri string) ([]byte, error) {
	if e.loader == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: no resource loader configured", errors.ErrUnsupportedScheme),
			"wire", "resolveTensor", "load")
	}
	payload, err := e.loader.Load(ctx, uri)
	if err != nil {
		return nil, err
	}
	return e.tensorBuffer(ts, id, tag, payload.Elem, payload.Shape, payload.Data)
}

func (e *Encoder) tensorBuffer(ts, id uint64, tag string, elem parse.Kind, shape []uint32, data []byte) ([]byte, error) {
	if err := checkString16("tag", tag); err != nil {
		return nil, errors.WrapInvalid(err, "wire", "tensorBuffer", "length check")
	}
	width := elem.Width()
	if width == 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("element kind %s is not fixed-width", elem),
			"wire", "tensorBuffer", "element check")
	}
	if len(shape) == 0 || len(shape) > maxRank {
		return nil, errors.WrapInvalid(
			fmt.Errorf("rank %d out of range", len(shape)),
			"wire", "tensorBuffer", "shape check")
	}
	if want := parse.Count(shape) * width; want != len(data) {
		return nil, errors.WrapInvalid(
			fmt.Errorf("data length %d does not match shape %v of %s", len(data), shape, elem),
			"wire", "tensorBuffer", "shape check")
	}

	size := headerLen(tag) + 1 + 1 + 4*len(shape) + len(data)
	b := make([]byte, size)
	off := putHeader(b, SchemaTensor, ts, id, tag)
	b[off] = byte(elem)
	b[off+1] = byte(len(shape))
	off += 2
	for _, d := range shape {
		binary.BigEndian.PutUint32(b[off:], d)
		off += 4
	}
	copy(b[off:], data)
	return b, nil
}
