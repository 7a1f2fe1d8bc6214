// Package scanner implements stage 1: a single forward sweep over the
// input that validates UTF-8 and produces the flat array of structural
// indexes stage 2 walks. The structural work per chunk is expressed as
// 64-bit masks built from the vector primitives; the state threaded
// between chunks is the small carry set in State plus the UTF-8
// validator's trailing bytes.
package scanner

import (
	"math/bits"

	"github.com/vectorparse/vjson/internal/status"
	"github.com/vectorparse/vjson/internal/vector"
)

// State holds the carries threaded from one chunk to the next. The
// document-stream splitter reads it after a streaming scan to decide
// whether a batch ended inside a string.
type State struct {
	// OddBackslash is 1 when the chunk ended with an odd-length
	// backslash run, escaping the next chunk's first byte.
	OddBackslash uint64
	// InsideQuote is all-ones while between an opening and closing
	// quote, all-zeros outside.
	InsideQuote uint64
	// PseudoPred is 1 when the chunk's last byte was whitespace, an
	// operator or a quote, making the next byte a potential scalar start. The
	// first byte of the input is treated as following whitespace.
	PseudoPred uint64
}

// NewState returns the carry set for the start of an input.
func NewState() State {
	return State{PseudoPred: 1}
}

// Scanner owns the structural index workspace. It is reused across
// scans and is not safe for concurrent use.
type Scanner struct {
	kernel     *vector.Kernel
	indexes    []uint32
	maxIndexes int

	state     State
	utf8      utf8State
	errorMask uint64
}

// New returns a scanner whose index array may hold up to maxIndexes
// entries including the terminating sentinel.
func New(maxIndexes int) *Scanner {
	initial := maxIndexes
	if initial > 1024 {
		initial = 1024
	}
	return &Scanner{
		kernel:     vector.Select(),
		indexes:    make([]uint32, 0, initial),
		maxIndexes: maxIndexes,
	}
}

// Implementation names the selected kernel.
func (s *Scanner) Implementation() string {
	return s.kernel.Name()
}

// Indexes returns the structural index array produced by the last scan,
// terminated by a sentinel equal to the scanned length.
func (s *Scanner) Indexes() []uint32 {
	return s.indexes
}

// EndState returns the cross-chunk carries as of the end of the last
// scan.
func (s *Scanner) EndState() State {
	return s.state
}

// Scan sweeps buf[:n] and fills the structural index array. buf must
// extend at least vector.ChunkSize bytes past n. Structural bits past n
// are dropped, but the bytes there still feed the UTF-8 check and the
// end-of-scan quote carry, so a quote or a non-ASCII byte in the padding
// can change the result; the Parser pads its copy with spaces. In
// streaming mode the scan tolerates ending inside a
// string (the caller grows the batch and retries) and skips UTF-8
// validation, which the caller performs once over the whole buffer.
func (s *Scanner) Scan(buf []byte, n int, streaming bool) status.Code {
	s.indexes = s.indexes[:0]
	s.state = NewState()
	s.utf8.reset()
	s.errorMask = 0

	var c vector.Chunk
	for off := 0; off < n; off += vector.ChunkSize {
		vector.Load(&c, buf, off)
		if !streaming {
			s.utf8.check(&c)
		}
		structurals := s.structuralBits(&c)
		if rem := n - off; rem < vector.ChunkSize {
			structurals &= 1<<uint(rem) - 1
		}
		if code := s.flatten(uint32(off), structurals); code != status.Success {
			return code
		}
	}

	if !streaming {
		s.utf8.finish()
		if s.utf8.err {
			return status.UTF8Error
		}
	}
	if s.errorMask != 0 {
		return status.UnescapedChars
	}
	if !streaming && s.state.InsideQuote != 0 {
		return status.UnclosedString
	}
	if len(s.indexes) == 0 {
		return status.Empty
	}
	s.indexes = append(s.indexes, uint32(n))
	return status.Success
}

// ValidateUTF8 checks buf[:n] in one pass. buf must carry the same
// padding guarantee as Scan.
func (s *Scanner) ValidateUTF8(buf []byte, n int) bool {
	s.utf8.reset()
	var c vector.Chunk
	for off := 0; off < n; off += vector.ChunkSize {
		vector.Load(&c, buf, off)
		s.utf8.check(&c)
	}
	s.utf8.finish()
	return !s.utf8.err
}

// structuralBits produces the chunk's structural bitmap: operators and
// quotes outside strings, plus one pseudo-structural bit at each scalar
// start. Control characters found inside strings accumulate into
// errorMask.
func (s *Scanner) structuralBits(c *vector.Chunk) uint64 {
	backslash := c.EqMask('\\')
	oddEnds := vector.OddBackslashEnds(backslash, &s.state.OddBackslash)

	quoteBits := c.EqMask('"') &^ oddEnds
	quoteMask := vector.PrefixXor(quoteBits) ^ s.state.InsideQuote
	s.errorMask |= quoteMask & c.LtMask(0x20)
	s.state.InsideQuote = uint64(int64(quoteMask) >> 63)

	op, whitespace := s.kernel.Classify(c)

	structurals := op&^quoteMask | quoteBits

	pseudoPred := structurals | whitespace
	shifted := vector.ShiftLeftCarry(pseudoPred, &s.state.PseudoPred)
	structurals |= shifted &^ whitespace &^ quoteMask

	// closing quotes were picked up as pseudo-structural; only the
	// opening quote marks the string
	structurals &^= quoteBits &^ quoteMask
	return structurals
}

// flatten appends the absolute offset of every set bit, low to high.
func (s *Scanner) flatten(base uint32, mask uint64) status.Code {
	if len(s.indexes)+bits.OnesCount64(mask) > s.maxIndexes-1 {
		return status.Capacity
	}
	for mask != 0 {
		s.indexes = append(s.indexes, base+uint32(bits.TrailingZeros64(mask)))
		mask &= mask - 1
	}
	return status.Success
}
