package parser

import (
	"encoding/binary"
	"math/bits"
	"unicode/utf8"

	"github.com/vectorparse/vjson/internal/status"
	"github.com/vectorparse/vjson/internal/vector"
)

// escapeMap resolves single-character escapes; zero marks an invalid
// escape byte ('u' is handled separately).
var escapeMap = [256]byte{
	'"': '"', '\\': '\\', '/': '/',
	'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r', 't': '\t',
}

// parseString decodes the string whose opening quote sits at idx into
// the arena and emits its tape entry. Clean runs are copied a chunk at
// a time; stage 1 guarantees a closing quote exists before n, so
// running past n means the tape walk went wrong.
func parseString(msg []byte, n int, idx uint32, t *Tape) status.Code {
	start := len(t.Strings)
	t.write(uint64(start), TagString)
	t.Strings = append(t.Strings, 0, 0, 0, 0)

	src := int(idx) + 1
	var c vector.Chunk
	for {
		if src >= n {
			return status.StringError
		}
		vector.Load(&c, msg, src)
		mask := c.EqMask('"') | c.EqMask('\\')
		if mask == 0 {
			if c.LtMask(0x20) != 0 {
				return status.StringError
			}
			t.Strings = append(t.Strings, c[:]...)
			src += vector.ChunkSize
			continue
		}
		i := bits.TrailingZeros64(mask)
		if c.LtMask(0x20)&(1<<uint(i)-1) != 0 {
			return status.StringError
		}
		t.Strings = append(t.Strings, c[:i]...)
		src += i

		if msg[src] == '"' {
			length := len(t.Strings) - start - 4
			binary.LittleEndian.PutUint32(t.Strings[start:start+4], uint32(length))
			t.Strings = append(t.Strings, 0)
			return status.Success
		}

		// backslash escape
		esc := msg[src+1]
		if esc == 'u' {
			var code status.Code
			src, code = decodeUnicodeEscape(msg, src, t)
			if code != status.Success {
				return code
			}
			continue
		}
		lit := escapeMap[esc]
		if lit == 0 {
			return status.StringError
		}
		t.Strings = append(t.Strings, lit)
		src += 2
	}
}

// decodeUnicodeEscape handles \uXXXX at msg[src], pairing surrogates,
// and appends the UTF-8 encoding to the arena. Returns the position
// after the escape.
func decodeUnicodeEscape(msg []byte, src int, t *Tape) (int, status.Code) {
	cp, ok := hex4(msg[src+2:])
	if !ok {
		return 0, status.StringError
	}
	switch {
	case cp >= 0xd800 && cp < 0xdc00:
		// high surrogate: a low surrogate escape must follow
		if msg[src+6] != '\\' || msg[src+7] != 'u' {
			return 0, status.StringError
		}
		low, ok := hex4(msg[src+8:])
		if !ok || low < 0xdc00 || low > 0xdfff {
			return 0, status.StringError
		}
		cp = 0x10000 + (cp-0xd800)<<10 + (low - 0xdc00)
		src += 12
	case cp >= 0xdc00 && cp <= 0xdfff:
		// lone low surrogate
		return 0, status.StringError
	default:
		src += 6
	}
	t.Strings = utf8.AppendRune(t.Strings, rune(cp))
	return src, status.Success
}

func hex4(b []byte) (uint32, bool) {
	var v uint32
	for i := 0; i < 4; i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint32(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint32(c-'A'+10)
		default:
			return 0, false
		}
	}
	return v, true
}
