package vjson

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Minify serializes a tape back to compact JSON. Reparsing the output
// yields an identical tape.
func Minify(t *Tape) ([]byte, error) {
	return AppendMinified(nil, t)
}

// AppendMinified appends the compact serialization of t to dst.
func AppendMinified(dst []byte, t *Tape) ([]byte, error) {
	if len(t.Entries) < 2 || t.Tag(0) != TagRoot {
		return nil, errors.New("vjson: tape has no root")
	}
	end := int(t.Payload(0))
	i := 1
	for i < end {
		var err error
		dst, i, err = appendTapeValue(dst, t, i)
		if err != nil {
			return nil, err
		}
		if i < end {
			dst = append(dst, '\n')
		}
	}
	return dst, nil
}

// appendTapeValue serializes the value starting at entry i and returns
// the index just past it.
func appendTapeValue(dst []byte, t *Tape, i int) ([]byte, int, error) {
	switch t.Tag(i) {
	case TagString:
		dst = append(dst, '"')
		dst = escapeBytes(dst, t.StringAt(t.Payload(i)))
		dst = append(dst, '"')
		return dst, i + 1, nil
	case TagInteger:
		return strconv.AppendInt(dst, int64(t.Entries[i+1]), 10), i + 2, nil
	case TagUint:
		return strconv.AppendUint(dst, t.Entries[i+1], 10), i + 2, nil
	case TagFloat:
		out, err := appendFloat(dst, math.Float64frombits(t.Entries[i+1]))
		return out, i + 2, err
	case TagTrue:
		return append(dst, "true"...), i + 1, nil
	case TagFalse:
		return append(dst, "false"...), i + 1, nil
	case TagNull:
		return append(dst, "null"...), i + 1, nil
	case TagObjectStart:
		dst = append(dst, '{')
		end := int(t.Payload(i))
		i++
		for i < end {
			if t.Tag(i) != TagString {
				return nil, 0, errors.New("vjson: object key is not a string")
			}
			dst = append(dst, '"')
			dst = escapeBytes(dst, t.StringAt(t.Payload(i)))
			dst = append(dst, '"', ':')
			var err error
			dst, i, err = appendTapeValue(dst, t, i+1)
			if err != nil {
				return nil, 0, err
			}
			if i < end {
				dst = append(dst, ',')
			}
		}
		return append(dst, '}'), end + 1, nil
	case TagArrayStart:
		dst = append(dst, '[')
		end := int(t.Payload(i))
		i++
		for i < end {
			var err error
			dst, i, err = appendTapeValue(dst, t, i)
			if err != nil {
				return nil, 0, err
			}
			if i < end {
				dst = append(dst, ',')
			}
		}
		return append(dst, ']'), end + 1, nil
	}
	return nil, 0, fmt.Errorf("vjson: unexpected tape entry %q at %d", byte(t.Tag(i)), i)
}

var hexDigits = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// escapeBytes appends src with JSON string escaping applied.
func escapeBytes(dst, src []byte) []byte {
	for _, s := range src {
		switch s {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if s <= 0x1f {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[s>>4], hexDigits[s&0xf])
			} else {
				dst = append(dst, s)
			}
		}
	}
	return dst
}

// appendFloat formats a float the way other JSON generators do: %g-like
// with different exponent cutoffs and unpadded exponents.
func appendFloat(dst []byte, f float64) ([]byte, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, errors.New("vjson: float is not finite")
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
		return dst, nil
	}
	// keep integral floats typed as floats on reparse
	for _, b := range dst[start:] {
		if b == '.' {
			return dst, nil
		}
	}
	return append(dst, '.', '0'), nil
}

// Dump writes a line-per-entry rendering of the tape, useful when
// debugging tape construction.
func Dump(w io.Writer, t *Tape) error {
	for i := 0; i < len(t.Entries); i++ {
		tag := t.Tag(i)
		var err error
		switch tag {
		case TagString:
			_, err = fmt.Fprintf(w, "%d : string %q\n", i, t.StringAt(t.Payload(i)))
		case TagInteger:
			_, err = fmt.Fprintf(w, "%d : integer %d\n", i, int64(t.Entries[i+1]))
			i++
		case TagUint:
			_, err = fmt.Fprintf(w, "%d : uint %d\n", i, t.Entries[i+1])
			i++
		case TagFloat:
			_, err = fmt.Fprintf(w, "%d : float %v\n", i, math.Float64frombits(t.Entries[i+1]))
			i++
		default:
			_, err = fmt.Fprintf(w, "%d : %c -> %d\n", i, byte(tag), t.Payload(i))
		}
		if err != nil {
			return err
		}
	}
	return nil
}
