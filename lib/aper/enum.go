package aper

// Enumerated is the standard aggregate type for an ASN.1 ENUMERATED
// value: a root-relative index plus the count of root enumerators.
type Enumerated struct {
	Index uint64
	Count uint64
}

// ToAPER implements Codec for Enumerated using c.Extensible.
func (v Enumerated) ToAPER(enc *Encoder, c Constraints) error {
	return enc.EncodeEnumerated(v.Index, v.Count, c.Extensible)
}

// FromAPER implements Codec for Enumerated. Count must already be set on
// the receiver (it is schema-derived, not wire data).
func (v *Enumerated) FromAPER(dec *Decoder, c Constraints) error {
	idx, err := dec.DecodeEnumerated(v.Count, c.Extensible)
	if err != nil {
		return err
	}
	v.Index = idx
	return nil
}
