package parser

import (
	"math"
	"strconv"
	"unsafe"

	"github.com/vectorparse/vjson/internal/status"
)

// Exact powers of ten representable in a float64. A product or quotient
// with one of these is a single correctly rounded operation.
var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

// parseNumber decodes the scalar starting at idx. Integers without
// fraction or exponent become int64 (negative) or uint64 (positive)
// when they fit; everything else takes the float path, which is exact
// when the significand and scale allow and falls back to the correctly
// rounded library conversion otherwise.
func parseNumber(msg []byte, idx uint32, t *Tape) status.Code {
	p := int(idx)
	i := p
	neg := msg[i] == '-'
	if neg {
		i++
	}
	if !isDigit(msg[i]) {
		return status.NumberError
	}

	intStart := i
	var mant uint64
	digits := 0
	truncated := false
	if msg[i] == '0' {
		i++
		if isDigit(msg[i]) {
			// leading zero
			return status.NumberError
		}
	} else {
		for isDigit(msg[i]) {
			if digits < 19 {
				mant = mant*10 + uint64(msg[i]-'0')
				digits++
			} else {
				truncated = true
			}
			i++
		}
	}
	intDigits := i - intStart

	isFloat := false
	fracDigits := 0
	if msg[i] == '.' {
		isFloat = true
		i++
		if !isDigit(msg[i]) {
			return status.NumberError
		}
		for isDigit(msg[i]) {
			if digits < 19 {
				mant = mant*10 + uint64(msg[i]-'0')
				digits++
				fracDigits++
			} else {
				truncated = true
			}
			i++
		}
	}

	exp := 0
	if msg[i] == 'e' || msg[i] == 'E' {
		isFloat = true
		i++
		expNeg := false
		if msg[i] == '+' || msg[i] == '-' {
			expNeg = msg[i] == '-'
			i++
		}
		if !isDigit(msg[i]) {
			return status.NumberError
		}
		for isDigit(msg[i]) {
			if exp < 10000 {
				exp = exp*10 + int(msg[i]-'0')
			}
			i++
		}
		if expNeg {
			exp = -exp
		}
	}

	if notStructuralOrWhitespace(msg[i]) {
		return status.NumberError
	}

	if !isFloat {
		return writeInteger(msg[intStart:i], neg, intDigits, mant, truncated, t)
	}

	if !truncated {
		if e := exp - fracDigits; e >= -22 && e <= 22 && mant <= 1<<53 {
			f := float64(mant)
			if e < 0 {
				f /= pow10[-e]
			} else {
				f *= pow10[e]
			}
			if neg {
				f = -f
			}
			t.writeFloat(f)
			return status.Success
		}
	}
	return writeFloatSlow(msg[p:i], t)
}

// writeInteger emits the tape entry for a pure integer literal,
// spilling to the float path when 64 bits cannot hold it.
func writeInteger(digits []byte, neg bool, count int, mant uint64, truncated bool, t *Tape) status.Code {
	v := mant
	if truncated || count > 19 {
		// reaccumulate with overflow detection; at most 20 digits can fit
		if count > 20 {
			return writeFloatSlowSigned(digits, neg, t)
		}
		v = 0
		for _, d := range digits {
			d -= '0'
			if v > (math.MaxUint64-uint64(d))/10 {
				return writeFloatSlowSigned(digits, neg, t)
			}
			v = v*10 + uint64(d)
		}
	}
	if neg {
		if v > 1<<63 {
			return writeFloatSlowSigned(digits, neg, t)
		}
		t.writeInt(-int64(v))
	} else {
		t.writeUint(v)
	}
	return status.Success
}

func writeFloatSlowSigned(digits []byte, neg bool, t *Tape) status.Code {
	f, err := strconv.ParseFloat(unsafeString(digits), 64)
	if err != nil && math.IsInf(f, 0) {
		return status.NumberError
	}
	if neg {
		f = -f
	}
	t.writeFloat(f)
	return status.Success
}

func writeFloatSlow(tok []byte, t *Tape) status.Code {
	f, err := strconv.ParseFloat(unsafeString(tok), 64)
	if err != nil {
		if math.IsInf(f, 0) {
			// magnitude beyond binary64 range
			return status.NumberError
		}
		// underflow to zero is representable
		if f != 0 {
			return status.NumberError
		}
	}
	t.writeFloat(f)
	return status.Success
}

func unsafeString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
