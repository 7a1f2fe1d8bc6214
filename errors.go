package vjson

import "github.com/vectorparse/vjson/internal/status"

// ErrorCode is the enumerated result of a parse. A non-success code is
// returned as the error value, so callers can branch on it directly:
//
//	if _, err := p.Parse(buf); err == vjson.Capacity { ... }
type ErrorCode = status.Code

const (
	Success                 = status.Success
	Capacity                = status.Capacity
	Memalloc                = status.Memalloc
	TapeError               = status.TapeError
	DepthError              = status.DepthError
	StringError             = status.StringError
	TAtomError              = status.TAtomError
	FAtomError              = status.FAtomError
	NAtomError              = status.NAtomError
	NumberError             = status.NumberError
	UTF8Error               = status.UTF8Error
	Uninitialized           = status.Uninitialized
	Empty                   = status.Empty
	UnescapedChars          = status.UnescapedChars
	UnclosedString          = status.UnclosedString
	UnsupportedArchitecture = status.UnsupportedArchitecture
	NoSuchField             = status.NoSuchField
)

// AsErrorCode extracts the code from an error returned by this package.
// A nil error maps to Success; foreign errors map to Uninitialized.
func AsErrorCode(err error) ErrorCode {
	if err == nil {
		return Success
	}
	if code, ok := err.(ErrorCode); ok {
		return code
	}
	return Uninitialized
}
