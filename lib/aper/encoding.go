package aper

import "github.com/aperlib/aper/lib/bitvector"

// Encoding is the output of a successful encode: a BitVector plus
// convenience access to its packed bytes and bit length.
type Encoding struct {
	bits *bitvector.BitVector
}

// Bytes returns the packed bytes (trailing pad bits zero).
func (enc Encoding) Bytes() []byte {
	if enc.bits == nil {
		return nil
	}
	return enc.bits.Bytes()
}

// Len returns the exact bit length of the encoding.
func (enc Encoding) Len() uint64 {
	if enc.bits == nil {
		return 0
	}
	return enc.bits.LenBits()
}
