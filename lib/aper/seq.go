package aper

// ExtensionGroup is the open-type-wrapped content of one extension
// addition in a sequence/choice's extension addition group, per X.691
// clause 19.9 / 23.8: the decoder surfaces it as an opaque, byte-aligned
// payload that the aggregate caller may parse (if it knows the addition's
// shape) or skip (if it does not).
type ExtensionGroup struct {
	Bytes []byte
}

// EncodeExtensionAdditions writes the clause 19.7-19.9 extension addition
// machinery: a normally-small length giving the count of extension
// addition slots, a presence bitmap, then each present addition's body as
// an open type field (length-prefixed octet string). additions must be
// in declaration order and aligned with present.
func EncodeExtensionAdditions(enc *Encoder, additions []ChoiceAlternative, present []bool, bodyConstraints Constraints) error {
	n := uint64(len(additions))
	if n == 0 {
		return nil
	}
	if err := enc.EncodeNormallySmallLength(n); err != nil {
		return err
	}
	for _, p := range present {
		if p {
			enc.bits.AppendBit(1)
		} else {
			enc.bits.AppendBit(0)
		}
	}
	for i, p := range present {
		if !p {
			continue
		}
		inner := NewEncoder()
		if err := additions[i].ToAPER(inner, bodyConstraints); err != nil {
			return err
		}
		encoded := inner.IntoEncoding()
		octets := OctetString{Bytes: encoded.Bytes()}
		if err := octets.ToAPER(enc, UNCONSTRAINED); err != nil {
			return err
		}
	}
	return nil
}

// DecodeExtensionAdditions is the inverse of EncodeExtensionAdditions. It
// returns the raw per-slot payloads (empty for absent slots); the caller
// is responsible for interpreting any slot whose shape it recognizes and
// is free to ignore the rest, matching this codec's scope boundary around
// unknown extension content.
func DecodeExtensionAdditions(dec *Decoder) ([]ExtensionGroup, error) {
	n, err := dec.DecodeNormallySmallLength()
	if err != nil {
		return nil, err
	}
	present := make([]bool, n)
	for i := range present {
		bit, err := dec.cursor.readBits(1)
		if err != nil {
			return nil, err
		}
		present[i] = bit == 1
	}
	groups := make([]ExtensionGroup, n)
	for i, p := range present {
		if !p {
			continue
		}
		var octets OctetString
		if err := octets.FromAPER(dec, UNCONSTRAINED); err != nil {
			return nil, err
		}
		groups[i] = ExtensionGroup{Bytes: octets.Bytes}
	}
	return groups, nil
}
