// Package vjson is a high-throughput JSON parser. Input is scanned in
// wide byte-vector chunks and decoded into a compact linear tape in a
// single forward sweep: stage 1 validates UTF-8 and indexes every
// structural byte, stage 2 walks the index, decodes scalars and checks
// nesting. A streaming mode iterates over concatenated documents in one
// buffer.
package vjson

import "sync"

const pooledCapacity = 1 << 20

var parserPool = sync.Pool{
	New: func() interface{} {
		p, err := NewParser(pooledCapacity, DefaultMaxDepth)
		if err != nil {
			panic(err)
		}
		return p
	},
}

// Parse is the convenience entry point: it borrows a pooled parser and
// returns a detached tape the caller owns.
func Parse(buf []byte) (*Tape, error) {
	p := parserPool.Get().(*Parser)
	if len(buf) > p.maxBytes {
		np, err := NewParser(len(buf), DefaultMaxDepth)
		if err != nil {
			parserPool.Put(p)
			return nil, err
		}
		p = np
	}
	defer parserPool.Put(p)

	tape, err := p.Parse(buf)
	if err != nil {
		return nil, err
	}
	out := &Tape{
		Entries: append([]uint64(nil), tape.Entries...),
		Strings: append([]byte(nil), tape.Strings...),
	}
	return out, nil
}

// Valid reports whether buf is a single well-formed JSON document.
func Valid(buf []byte) bool {
	p := parserPool.Get().(*Parser)
	if len(buf) > p.maxBytes {
		np, err := NewParser(len(buf), DefaultMaxDepth)
		if err != nil {
			parserPool.Put(p)
			return false
		}
		p = np
	}
	defer parserPool.Put(p)

	_, err := p.Parse(buf)
	return err == nil
}
