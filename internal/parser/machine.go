package parser

import "github.com/vectorparse/vjson/internal/status"

// Return-address labels packed into the low bits of each scope entry;
// the saved tape offset sits above them.
const (
	retShift = 2
	retMask  = 1<<retShift - 1

	retStart  = 1
	retObject = 2
	retArray  = 3
)

// Builder runs the structural state machine. The scope stack remembers
// the tape offset and continuation of every open container.
type Builder struct {
	scope    []uint64
	maxDepth int
}

// NewBuilder returns a builder allowing maxDepth nested containers.
func NewBuilder(maxDepth int) *Builder {
	return &Builder{
		scope:    make([]uint64, 0, maxDepth+1),
		maxDepth: maxDepth,
	}
}

// Build walks the structural indexes over msg[:n] and fills t. indexes
// must end with the sentinel n. In streaming mode the walk stops after
// one complete top-level value and reports how many indexes it
// consumed; otherwise the sentinel must be the only index left after
// the root value.
func (b *Builder) Build(msg []byte, n int, indexes []uint32, t *Tape, streaming bool) (consumed int, code status.Code) {
	t.Reset()
	b.scope = b.scope[:0]

	if len(indexes) < 2 {
		return 0, status.Empty
	}

	last := len(indexes) - 1 // sentinel position
	pos := 0
	var idx uint32
	var c byte

	advance := func() bool {
		if pos >= last {
			return false
		}
		idx = indexes[pos]
		pos++
		c = msg[idx]
		return true
	}

	// classify a stage 2 failure by the byte it tripped on
	classify := func() status.Code {
		switch {
		case c == '"':
			return status.StringError
		case c == 't':
			return status.TAtomError
		case c == 'f':
			return status.FAtomError
		case c == 'n':
			return status.NAtomError
		case c == '-' || isDigit(c):
			return status.NumberError
		default:
			return status.TapeError
		}
	}

	push := func(ret uint64, tag Tag) bool {
		if len(b.scope) > b.maxDepth {
			return false
		}
		b.scope = append(b.scope, t.CurrentLoc()<<retShift|ret)
		t.write(0, tag)
		return true
	}

	// close the current container: the end entry points back at the
	// start, and the start entry is backpatched with the end's index.
	popScope := func(endTag Tag) uint64 {
		off := b.scope[len(b.scope)-1]
		b.scope = b.scope[:len(b.scope)-1]
		startLoc := off >> retShift
		t.write(startLoc, endTag)
		t.annotate(startLoc, t.CurrentLoc()-1)
		return off & retMask
	}

	parseScalar := func() status.Code {
		switch c {
		case '"':
			return parseString(msg, n, idx, t)
		case 't':
			if !parseTrueAtom(msg, idx, t) {
				return status.TAtomError
			}
		case 'f':
			if !parseFalseAtom(msg, idx, t) {
				return status.FAtomError
			}
		case 'n':
			if !parseNullAtom(msg, idx, t) {
				return status.NAtomError
			}
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return parseNumber(msg, idx, t)
		default:
			return classify()
		}
		return status.Success
	}

	var ret uint64

	// root scope
	b.scope = append(b.scope, retStart)
	t.write(0, TagRoot)

	if !advance() {
		return pos, status.Empty
	}
	switch c {
	case '{':
		if !push(retStart, TagObjectStart) {
			return pos, status.DepthError
		}
		goto objectBegin
	case '[':
		if !push(retStart, TagArrayStart) {
			return pos, status.DepthError
		}
		goto arrayBegin
	default:
		if sc := parseScalar(); sc != status.Success {
			return pos, sc
		}
		goto finish
	}

objectBegin:
	if !advance() {
		goto unexpectedEnd
	}
	switch c {
	case '"':
		if sc := parseString(msg, n, idx, t); sc != status.Success {
			return pos, sc
		}
		goto objectKey
	case '}':
		ret = popScope(TagObjectEnd)
		goto scopeEnd
	default:
		return pos, classify()
	}

objectKey:
	if !advance() {
		goto unexpectedEnd
	}
	if c != ':' {
		return pos, classify()
	}
	if !advance() {
		goto unexpectedEnd
	}
	switch c {
	case '{':
		if !push(retObject, TagObjectStart) {
			return pos, status.DepthError
		}
		goto objectBegin
	case '[':
		if !push(retObject, TagArrayStart) {
			return pos, status.DepthError
		}
		goto arrayBegin
	default:
		if sc := parseScalar(); sc != status.Success {
			return pos, sc
		}
	}

objectContinue:
	if !advance() {
		goto unexpectedEnd
	}
	switch c {
	case ',':
		if !advance() {
			goto unexpectedEnd
		}
		if c != '"' {
			return pos, classify()
		}
		if sc := parseString(msg, n, idx, t); sc != status.Success {
			return pos, sc
		}
		goto objectKey
	case '}':
		ret = popScope(TagObjectEnd)
		goto scopeEnd
	default:
		return pos, classify()
	}

arrayBegin:
	if !advance() {
		goto unexpectedEnd
	}
	if c == ']' {
		ret = popScope(TagArrayEnd)
		goto scopeEnd
	}

arrayValue:
	switch c {
	case '{':
		if !push(retArray, TagObjectStart) {
			return pos, status.DepthError
		}
		goto objectBegin
	case '[':
		if !push(retArray, TagArrayStart) {
			return pos, status.DepthError
		}
		goto arrayBegin
	default:
		if sc := parseScalar(); sc != status.Success {
			return pos, sc
		}
	}

arrayContinue:
	if !advance() {
		goto unexpectedEnd
	}
	switch c {
	case ',':
		if !advance() {
			goto unexpectedEnd
		}
		goto arrayValue
	case ']':
		ret = popScope(TagArrayEnd)
		goto scopeEnd
	default:
		return pos, classify()
	}

scopeEnd:
	switch ret {
	case retObject:
		goto objectContinue
	case retArray:
		goto arrayContinue
	default:
		goto finish
	}

finish:
	if !streaming && pos != last {
		// trailing structural before the sentinel
		return pos, status.TapeError
	}
	if len(b.scope) != 1 {
		return pos, status.TapeError
	}
	b.scope = b.scope[:0]
	t.annotate(0, t.CurrentLoc())
	t.write(0, TagRoot)
	return pos, status.Success

unexpectedEnd:
	// ran out of structurals with containers still open
	return pos, status.TapeError
}
