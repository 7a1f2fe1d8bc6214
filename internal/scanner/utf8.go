package scanner

import "github.com/vectorparse/vjson/internal/vector"

// Rolling UTF-8 validation. Each byte is classified through two nibble
// lookups on the previous byte and one on the current byte; the
// intersection flags ill-formed pairs (bad continuations, overlong 2/3/4
// byte forms, surrogates, codepoints above U+10FFFF). Third and fourth
// continuation bytes are cross-checked against the lead two and three
// bytes back. Only a sticky error flag survives the sweep.
const (
	utf8TooShort     = 1 << 0
	utf8TooLong      = 1 << 1
	utf8Overlong3    = 1 << 2
	utf8TooLarge     = 1 << 3
	utf8Surrogate    = 1 << 4
	utf8Overlong2    = 1 << 5
	utf8TooLarge1000 = 1 << 6
	utf8Overlong4    = 1 << 6
	utf8TwoConts     = 1 << 7

	utf8Carry = utf8TooShort | utf8TooLong | utf8TwoConts
)

// Indexed by the high nibble of the previous byte.
var utf8Byte1High = [16]byte{
	utf8TooLong, utf8TooLong, utf8TooLong, utf8TooLong,
	utf8TooLong, utf8TooLong, utf8TooLong, utf8TooLong,
	utf8TwoConts, utf8TwoConts, utf8TwoConts, utf8TwoConts,
	utf8TooShort | utf8Overlong2,
	utf8TooShort,
	utf8TooShort | utf8Overlong3 | utf8Surrogate,
	utf8TooShort | utf8TooLarge | utf8TooLarge1000 | utf8Overlong4,
}

// Indexed by the low nibble of the previous byte.
var utf8Byte1Low = [16]byte{
	utf8Carry | utf8Overlong3 | utf8Overlong2 | utf8Overlong4,
	utf8Carry | utf8Overlong2,
	utf8Carry,
	utf8Carry,
	utf8Carry | utf8TooLarge,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000 | utf8Surrogate,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
	utf8Carry | utf8TooLarge | utf8TooLarge1000,
}

// Indexed by the high nibble of the current byte.
var utf8Byte2High = [16]byte{
	utf8TooShort, utf8TooShort, utf8TooShort, utf8TooShort,
	utf8TooShort, utf8TooShort, utf8TooShort, utf8TooShort,
	utf8TooLong | utf8Overlong2 | utf8TwoConts | utf8Overlong3 | utf8TooLarge1000 | utf8Overlong4,
	utf8TooLong | utf8Overlong2 | utf8TwoConts | utf8Overlong3 | utf8TooLarge,
	utf8TooLong | utf8Overlong2 | utf8TwoConts | utf8Surrogate | utf8TooLarge,
	utf8TooLong | utf8Overlong2 | utf8TwoConts | utf8Surrogate | utf8TooLarge,
	utf8TooShort, utf8TooShort, utf8TooShort, utf8TooShort,
}

type utf8State struct {
	// last three bytes of the previous chunk, oldest first
	prev [3]byte
	// previous chunk ended on a truncated lead byte
	incomplete bool
	err        bool
}

func (u *utf8State) reset() {
	u.prev = [3]byte{}
	u.incomplete = false
	u.err = false
}

func (u *utf8State) check(c *vector.Chunk) {
	ascii := true
	for i := 0; i < vector.ChunkSize; i++ {
		if c[i] >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		if u.incomplete {
			u.err = true
		}
	} else {
		var w [vector.ChunkSize + 3]byte
		w[0], w[1], w[2] = u.prev[0], u.prev[1], u.prev[2]
		copy(w[3:], c[:])
		for i := 3; i < len(w); i++ {
			cur, prev1 := w[i], w[i-1]
			if cur < 0x80 && prev1 < 0x80 {
				continue
			}
			sc := utf8Byte1High[prev1>>4] & utf8Byte1Low[prev1&0x0f] & utf8Byte2High[cur>>4]
			var must byte
			if w[i-2] >= 0xe0 || w[i-3] >= 0xf0 {
				must = utf8TwoConts
			}
			if sc^must != 0 {
				u.err = true
			}
		}
	}
	u.prev = [3]byte{c[vector.ChunkSize-3], c[vector.ChunkSize-2], c[vector.ChunkSize-1]}
	u.incomplete = u.prev[2] >= 0xc0 || u.prev[1] >= 0xe0 || u.prev[0] >= 0xf0
}

// finish flags a sequence truncated at end of input.
func (u *utf8State) finish() {
	if u.incomplete {
		u.err = true
	}
}
