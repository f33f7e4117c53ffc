package aper

import "golang.org/x/exp/constraints"

// EncodeInt is the free function named in the library's external
// interface for encoding a bounded integer outside the context of an
// aggregate field: it builds a fresh Encoder, applies encode_int, and
// returns the resulting Encoding.
func EncodeInt(value int64, min, max *int64) (Encoding, error) {
	enc := NewEncoder()
	if err := enc.EncodeInt(value, min, max, false); err != nil {
		return Encoding{}, err
	}
	return enc.IntoEncoding(), nil
}

// DecodeInt is the dual of EncodeInt: it wraps bytes in a fresh Decoder
// and applies decode_int.
func DecodeInt(bytes []byte, bitLen uint64, min, max *int64) (int64, error) {
	dec := NewDecoder(bytes, bitLen)
	return dec.DecodeInt(min, max, false)
}

// Signed is the set of integer types EncodeIntGeneric/DecodeIntGeneric
// accept, covering the schema-level int/int32/int64 widths a generated
// binding might use for an INTEGER field.
type Signed interface {
	constraints.Signed
}

// EncodeIntGeneric is a generic convenience wrapper over EncodeInt for
// callers working with a narrower integer type than int64.
func EncodeIntGeneric[T Signed](enc *Encoder, value T, min, max *T, extensible bool) error {
	var minI, maxI *int64
	if min != nil {
		v := int64(*min)
		minI = &v
	}
	if max != nil {
		v := int64(*max)
		maxI = &v
	}
	return enc.EncodeInt(int64(value), minI, maxI, extensible)
}

// DecodeIntGeneric is the dual of EncodeIntGeneric.
func DecodeIntGeneric[T Signed](dec *Decoder, min, max *T, extensible bool) (T, error) {
	var minI, maxI *int64
	if min != nil {
		v := int64(*min)
		minI = &v
	}
	if max != nil {
		v := int64(*max)
		maxI = &v
	}
	v, err := dec.DecodeInt(minI, maxI, extensible)
	if err != nil {
		return 0, err
	}
	return T(v), nil
}
