package aper

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies why an encode or decode primitive failed, so
// callers can branch on the taxonomy rather than parsing messages.
type ErrorKind int

const (
	// KindInvalidRange: a constraint's lower bound exceeds its upper bound.
	KindInvalidRange ErrorKind = iota
	// KindValueNotInRange: an encoded value fell outside [min, max].
	KindValueNotInRange
	// KindSizeNotInRange: a container's length fell outside its size constraint.
	KindSizeNotInRange
	// KindInvalidChoice: a choice/enumerated index was >= count.
	KindInvalidChoice
	// KindInvalidSize: a decoded length determinant was inconsistent with its constraint.
	KindInvalidSize
	// KindNotEnoughBits: the decoder cursor would advance past the end of the buffer.
	KindNotEnoughBits
	// KindMalformed: reserved bits or fragmentation framing violated the wire format.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRange:
		return "InvalidRange"
	case KindValueNotInRange:
		return "ValueNotInRange"
	case KindSizeNotInRange:
		return "SizeNotInRange"
	case KindInvalidChoice:
		return "InvalidChoice"
	case KindInvalidSize:
		return "InvalidSize"
	case KindNotEnoughBits:
		return "NotEnoughBits"
	case KindMalformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// CodecError is the concrete error type returned by every encode/decode
// primitive in this package. It pairs a taxonomy Kind with a wrapped,
// call-site-annotated cause.
type CodecError struct {
	kind ErrorKind
	err  error
}

func (e *CodecError) Error() string { return e.err.Error() }

// Unwrap lets errors.Is/errors.As reach the wrapped cause.
func (e *CodecError) Unwrap() error { return e.err }

// Kind returns the taxonomy classification of this error.
func (e *CodecError) Kind() ErrorKind { return e.kind }

var (
	errInvalidRange    = errors.New("invalid range: lower bound exceeds upper bound")
	errValueNotInRange = errors.New("value not in range")
	errSizeNotInRange  = errors.New("size not in range")
	errInvalidChoice   = errors.New("invalid choice index")
	errInvalidSize     = errors.New("invalid size")
	errNotEnoughBits   = errors.New("not enough bits remaining")
	errMalformed       = errors.New("malformed encoding")
)

func newError(kind ErrorKind, cause error, format string, args ...any) error {
	return &CodecError{kind: kind, err: errors.Wrapf(cause, format, args...)}
}

func invalidRangeErrorf(format string, args ...any) error {
	return newError(KindInvalidRange, errInvalidRange, format, args...)
}

func valueNotInRangeErrorf(format string, args ...any) error {
	return newError(KindValueNotInRange, errValueNotInRange, format, args...)
}

func sizeNotInRangeErrorf(format string, args ...any) error {
	return newError(KindSizeNotInRange, errSizeNotInRange, format, args...)
}

func invalidChoiceErrorf(format string, args ...any) error {
	return newError(KindInvalidChoice, errInvalidChoice, format, args...)
}

func invalidSizeErrorf(format string, args ...any) error {
	return newError(KindInvalidSize, errInvalidSize, format, args...)
}

func notEnoughBitsErrorf(format string, args ...any) error {
	return newError(KindNotEnoughBits, errNotEnoughBits, format, args...)
}

func malformedErrorf(format string, args ...any) error {
	return newError(KindMalformed, errMalformed, format, args...)
}

// Kind extracts the ErrorKind from err if it (or something it wraps) is a
// *CodecError, reporting ok=false otherwise.
func Kind(err error) (ErrorKind, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.kind, true
	}
	return 0, false
}
