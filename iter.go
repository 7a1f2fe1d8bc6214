package vjson

import (
	"errors"
	"math"
)

// Iter walks a tape. Advance steps over values at the current level,
// AdvanceInto descends into containers. A copied Iter is independent.
type Iter struct {
	tape *Tape

	// offset of the next entry to read
	off int
	// entries to skip before the next read
	addNext int

	cur uint64
	tag Tag
}

// NewIter returns an iterator positioned before the root entry.
func NewIter(t *Tape) *Iter {
	return &Iter{tape: t}
}

// Tag returns the kind of the current entry.
func (it *Iter) Tag() Tag {
	return it.tag
}

func (it *Iter) load() bool {
	it.off += it.addNext
	if it.off >= len(it.tape.Entries) {
		it.addNext = 0
		it.tag = TagEnd
		return false
	}
	v := it.tape.Entries[it.off]
	it.cur = v & ValueMask
	it.tag = Tag(v >> 56)
	it.off++
	return true
}

// AdvanceInto steps to the next entry, descending into containers.
func (it *Iter) AdvanceInto() Tag {
	if !it.load() {
		return TagEnd
	}
	switch it.tag {
	case TagInteger, TagUint, TagFloat:
		it.addNext = 1
	default:
		it.addNext = 0
	}
	return it.tag
}

// Advance steps to the next entry at the current level, skipping the
// contents of containers.
func (it *Iter) Advance() Tag {
	if !it.load() {
		return TagEnd
	}
	switch it.tag {
	case TagInteger, TagUint, TagFloat:
		it.addNext = 1
	case TagRoot, TagObjectStart, TagArrayStart:
		// payload is the index of the matching end entry
		it.addNext = int(it.cur) + 1 - it.off
	default:
		it.addNext = 0
	}
	return it.tag
}

// PeekNextTag returns the tag the next Advance would see.
func (it *Iter) PeekNextTag() Tag {
	at := it.off + it.addNext
	if at >= len(it.tape.Entries) {
		return TagEnd
	}
	return Tag(it.tape.Entries[at] >> 56)
}

// MatchingEnd returns the tape index of the end entry paired with the
// current container start.
func (it *Iter) MatchingEnd() int {
	return int(it.cur)
}

func (it *Iter) value() (uint64, error) {
	if it.off >= len(it.tape.Entries) {
		return 0, errors.New("vjson: truncated tape")
	}
	return it.tape.Entries[it.off], nil
}

// Int returns the current int64 entry.
func (it *Iter) Int() (int64, error) {
	switch it.tag {
	case TagInteger:
		v, err := it.value()
		return int64(v), err
	case TagUint:
		v, err := it.value()
		if err != nil {
			return 0, err
		}
		if v > math.MaxInt64 {
			return 0, errors.New("vjson: unsigned value overflows int64")
		}
		return int64(v), nil
	}
	return 0, errors.New("vjson: not an integer")
}

// Uint returns the current uint64 entry.
func (it *Iter) Uint() (uint64, error) {
	switch it.tag {
	case TagUint:
		return it.value()
	case TagInteger:
		v, err := it.value()
		if err != nil {
			return 0, err
		}
		if int64(v) < 0 {
			return 0, errors.New("vjson: negative value")
		}
		return v, nil
	}
	return 0, errors.New("vjson: not an integer")
}

// Float returns the current numeric entry as a float64.
func (it *Iter) Float() (float64, error) {
	v, err := it.value()
	if err != nil {
		return 0, err
	}
	switch it.tag {
	case TagFloat:
		return math.Float64frombits(v), nil
	case TagInteger:
		return float64(int64(v)), nil
	case TagUint:
		return float64(v), nil
	}
	return 0, errors.New("vjson: not a number")
}

// Bool returns the current atom entry as a bool.
func (it *Iter) Bool() (bool, error) {
	switch it.tag {
	case TagTrue:
		return true, nil
	case TagFalse:
		return false, nil
	}
	return false, errors.New("vjson: not a bool")
}

// StringBytes returns the arena bytes of the current string entry.
func (it *Iter) StringBytes() ([]byte, error) {
	if it.tag != TagString {
		return nil, errors.New("vjson: not a string")
	}
	return it.tape.StringAt(it.cur), nil
}

// String returns the current string entry.
func (it *Iter) String() (string, error) {
	b, err := it.StringBytes()
	return string(b), err
}

// Lookup finds the value of a top-level key in a root object and leaves
// the returned iterator positioned on it. A missing key reports
// NoSuchField.
func Lookup(t *Tape, key string) (*Iter, error) {
	it := NewIter(t)
	if it.AdvanceInto() != TagRoot {
		return nil, TapeError
	}
	if it.AdvanceInto() != TagObjectStart {
		return nil, TapeError
	}
	end := it.MatchingEnd()
	for {
		tag := it.Advance()
		if tag == TagObjectEnd || tag == TagEnd || it.off > end {
			return nil, NoSuchField
		}
		if tag != TagString {
			return nil, TapeError
		}
		name, err := it.StringBytes()
		if err != nil {
			return nil, err
		}
		if string(name) == key {
			it.Advance()
			return it, nil
		}
		// skip the value
		it.Advance()
	}
}
