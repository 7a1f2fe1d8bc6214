package parser

import "encoding/binary"

// Atom checks compare eight bytes at once against the little-endian
// encoding of the atom; the input padding guarantees the loads stay in
// bounds. The byte after the atom must terminate it.

func parseTrueAtom(msg []byte, idx uint32, t *Tape) bool {
	const tv = uint64(0x0000000065757274) // "true"
	v := binary.LittleEndian.Uint64(msg[idx:])
	if v&0x00000000ffffffff != tv || notStructuralOrWhitespace(msg[idx+4]) {
		return false
	}
	t.write(0, TagTrue)
	return true
}

func parseFalseAtom(msg []byte, idx uint32, t *Tape) bool {
	const fv = uint64(0x00000065736c6166) // "false"
	v := binary.LittleEndian.Uint64(msg[idx:])
	if v&0x000000ffffffffff != fv || notStructuralOrWhitespace(msg[idx+5]) {
		return false
	}
	t.write(0, TagFalse)
	return true
}

func parseNullAtom(msg []byte, idx uint32, t *Tape) bool {
	const nv = uint64(0x000000006c6c756e) // "null"
	v := binary.LittleEndian.Uint64(msg[idx:])
	if v&0x00000000ffffffff != nv || notStructuralOrWhitespace(msg[idx+4]) {
		return false
	}
	t.write(0, TagNull)
	return true
}
