package vjson

import (
	"github.com/vectorparse/vjson/internal/parser"
	"github.com/vectorparse/vjson/internal/scanner"
	"github.com/vectorparse/vjson/internal/vector"
)

// Padding is the number of readable bytes the parser keeps past the
// logical end of its input copy. Chunked loads on the tail never fault.
const Padding = vector.ChunkSize

// MaxCapacity is the largest document a parser can be sized for.
const MaxCapacity = 1<<32 - 1

// DefaultMaxDepth bounds container nesting unless the caller asks for
// more.
const DefaultMaxDepth = 1024

// Tape is the decoded document produced by a parse. See the internal
// parser package for the entry layout.
type Tape = parser.Tape

// Tag is a tape entry kind.
type Tag = parser.Tag

// Tape entry kinds, stored as their ASCII codes in the top byte of each
// entry.
const (
	TagRoot        = parser.TagRoot
	TagObjectStart = parser.TagObjectStart
	TagObjectEnd   = parser.TagObjectEnd
	TagArrayStart  = parser.TagArrayStart
	TagArrayEnd    = parser.TagArrayEnd
	TagString      = parser.TagString
	TagInteger     = parser.TagInteger
	TagUint        = parser.TagUint
	TagFloat       = parser.TagFloat
	TagTrue        = parser.TagTrue
	TagFalse       = parser.TagFalse
	TagNull        = parser.TagNull
	TagEnd         = parser.TagEnd
)

// ValueMask extracts the 56-bit payload of a tape entry.
const ValueMask = parser.ValueMask

// Parser owns the reusable workspace for parsing: the padded input
// copy, the structural index array, the tape, the string arena and the
// scope stacks. A Parser is not safe for concurrent use; independent
// parsers are.
type Parser struct {
	msg []byte
	n   int

	scanner *scanner.Scanner
	builder *parser.Builder
	tape    parser.Tape

	maxBytes int
	maxDepth int
	stage1OK bool
}

// NewParser sets up a parser for documents up to maxBytes long with up
// to maxDepth nested containers. Only the scope stack is sized up front;
// the padded input copy, the index array, the tape and the arena grow on
// demand during a parse and are reused by later parses.
func NewParser(maxBytes, maxDepth int) (*Parser, error) {
	if maxBytes <= 0 || maxDepth <= 0 {
		return nil, Memalloc
	}
	if maxBytes > MaxCapacity {
		return nil, Capacity
	}
	return &Parser{
		scanner:  scanner.New(maxBytes + 2),
		builder:  parser.NewBuilder(maxDepth),
		maxBytes: maxBytes,
		maxDepth: maxDepth,
	}, nil
}

// Implementation names the kernel selected for this machine.
func (p *Parser) Implementation() string {
	return p.scanner.Implementation()
}

// MaxBytes reports the declared input capacity.
func (p *Parser) MaxBytes() int {
	return p.maxBytes
}

// setMessage copies buf into the space-padded workspace. The copy makes
// the padding contract the parser's own business and terminates a bare
// trailing number or atom with whitespace.
func (p *Parser) setMessage(buf []byte) ErrorCode {
	if len(buf) > p.maxBytes {
		return Capacity
	}
	need := len(buf) + Padding
	if cap(p.msg) < need {
		p.msg = make([]byte, need)
	} else {
		p.msg = p.msg[:need]
	}
	copy(p.msg, buf)
	for i := len(buf); i < need; i++ {
		p.msg[i] = ' '
	}
	p.n = len(buf)
	return Success
}

// Parse runs both stages over buf and returns the tape. The tape and
// its arena stay valid until the next call on this parser.
func (p *Parser) Parse(buf []byte) (*Tape, error) {
	if err := p.Stage1(buf, false); err != nil {
		p.tape.Reset()
		return nil, err
	}
	return p.Stage2()
}

// Stage1 populates the structural index without building the tape. In
// streaming mode the scan tolerates a batch that ends inside a string
// and leaves UTF-8 validation to the caller.
func (p *Parser) Stage1(buf []byte, streaming bool) error {
	p.stage1OK = false
	if code := p.setMessage(buf); code != Success {
		return code
	}
	if code := p.scanner.Scan(p.msg, p.n, streaming); code != Success {
		return code
	}
	p.stage1OK = true
	return nil
}

// Stage2 builds the tape from the index of a prior successful Stage1.
func (p *Parser) Stage2() (*Tape, error) {
	if !p.stage1OK {
		return nil, Uninitialized
	}
	_, code := p.builder.Build(p.msg, p.n, p.scanner.Indexes(), &p.tape, false)
	if code != Success {
		return nil, code
	}
	return &p.tape, nil
}
