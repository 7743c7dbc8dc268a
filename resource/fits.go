package resource

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/c360/telemsend/errors"
	"github.com/c360/telemsend/parse"
)

// fitsSuffixes are the recognized scientific-image extensions. Matching is
// case-insensitive on the path's extension.
var fitsSuffixes = map[string]bool{
	".fits": true,
	".fit":  true,
	".fts":  true,
}

func isFITSPath(p string) bool {
	return fitsSuffixes[strings.ToLower(path.Ext(p))]
}

// decodeFITS decodes the primary HDU of a FITS file into a numeric payload
// with its native pixel shape. FITS stores elements big-endian with the
// fastest-varying axis first; the shape is reversed to row-major order and
// the raw element bytes pass through unchanged.
func decodeFITS(b []byte) (*Payload, error) {
	f, err := fitsio.Open(bytes.NewReader(b))
	if err != nil {
		return nil, errors.WrapInvalid(err, "resource", "decodeFITS", "open")
	}
	defer func() { _ = f.Close() }()

	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("primary HDU is not an image"),
			"resource", "decodeFITS", "hdu type")
	}

	hdr := img.Header()
	elem, err := kindForBitpix(hdr.Bitpix())
	if err != nil {
		return nil, err
	}

	axes := hdr.Axes()
	shape := make([]uint32, len(axes))
	for i, n := range axes {
		if n < 0 {
			return nil, errors.WrapInvalid(
				fmt.Errorf("negative axis length %d", n),
				"resource", "decodeFITS", "axes")
		}
		shape[len(axes)-1-i] = uint32(n)
	}

	raw := img.Raw()
	want := elem.Width() * parse.Count(shape)
	if len(raw) < want {
		return nil, errors.WrapInvalid(
			fmt.Errorf("image data truncated: have %d bytes, want %d", len(raw), want),
			"resource", "decodeFITS", "data")
	}

	return &Payload{Elem: elem, Shape: shape, Data: raw[:want]}, nil
}

func kindForBitpix(bitpix int) (parse.Kind, error) {
	switch bitpix {
	case 8:
		return parse.KindUint8, nil
	case 16:
		return parse.KindInt16, nil
	case 32:
		return parse.KindInt32, nil
	case 64:
		return parse.KindInt64, nil
	case -32:
		return parse.KindFloat32, nil
	case -64:
		return parse.KindFloat64, nil
	default:
		return parse.KindNull, errors.WrapInvalid(
			fmt.Errorf("unsupported BITPIX %d", bitpix),
			"resource", "decodeFITS", "bitpix")
	}
}
