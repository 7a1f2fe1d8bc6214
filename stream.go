package vjson

import "io"

// DefaultBatchSize is the stage 1 window used by ParseMany when the
// caller passes no preference.
const DefaultBatchSize = 1 << 20

// Stream iterates over a buffer of concatenated top-level JSON values.
// Each Next reuses the parser workspace, so the returned tape is only
// valid until the following call.
type Stream struct {
	p     *Parser
	pos   int
	batch int
}

// ParseMany prepares iteration over the concatenated documents in buf.
// UTF-8 is validated once over the whole buffer; each document is then
// indexed and built lazily in batchSize windows.
func (p *Parser) ParseMany(buf []byte, batchSize int) (*Stream, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if code := p.setMessage(buf); code != Success {
		return nil, code
	}
	p.stage1OK = false
	if !p.scanner.ValidateUTF8(p.msg, p.n) {
		return nil, UTF8Error
	}
	return &Stream{p: p, batch: batchSize}, nil
}

// Next parses the next document and reports io.EOF after the last one.
func (s *Stream) Next() (*Tape, error) {
	p := s.p
	if s.pos >= p.n {
		return nil, io.EOF
	}
	batch := s.batch
	for {
		remaining := p.n - s.pos
		window := remaining
		if window > batch {
			window = batch
		}
		truncated := window < remaining

		code := p.scanner.Scan(p.msg[s.pos:], window, true)
		if code != Success {
			if code == Empty {
				if !truncated {
					// trailing whitespace only
					s.pos = p.n
					return nil, io.EOF
				}
				batch *= 2
				continue
			}
			return nil, code
		}
		if truncated && p.scanner.EndState().InsideQuote != 0 {
			// batch ended inside a string; grow and retry
			batch *= 2
			continue
		}
		if !truncated && p.scanner.EndState().InsideQuote != 0 {
			return nil, UnclosedString
		}

		consumed, code := p.builder.Build(p.msg[s.pos:], window, p.scanner.Indexes(), &p.tape, true)
		if code != Success {
			if truncated {
				// document may extend beyond the batch
				batch *= 2
				continue
			}
			return nil, code
		}

		indexes := p.scanner.Indexes()
		if consumed < len(indexes)-1 {
			// the next structural starts the next document
			s.pos += int(indexes[consumed])
			return &p.tape, nil
		}
		if !truncated {
			s.pos = p.n
			return &p.tape, nil
		}
		// the document ran to the window edge; it may be cut mid-scalar
		batch *= 2
	}
}
