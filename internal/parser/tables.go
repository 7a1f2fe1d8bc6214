package parser

// structuralOrWhitespace marks the bytes that legally terminate a bare
// scalar: the six operators, the four whitespace bytes, and NUL.
var structuralOrWhitespace = [256]bool{
	'{': true, '}': true, '[': true, ']': true, ':': true, ',': true,
	' ': true, '\t': true, '\n': true, '\r': true, 0: true,
}

func notStructuralOrWhitespace(b byte) bool {
	return !structuralOrWhitespace[b]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
