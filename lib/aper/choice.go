package aper

// ChoiceAlternative is satisfied by a CHOICE's per-alternative payload
// when it participates in the open-type encoding of an extension
// addition (clause 23.8): its own ToAPER/FromAPER still apply, but an
// extension-addition alternative is additionally wrapped in a
// length-prefixed open type field by EncodeChoiceWithBody /
// DecodeChoiceExtensionBody below.
type ChoiceAlternative = Codec

// EncodeChoiceWithBody writes a choice's extension bit (if extensible),
// index, and then the selected alternative's body, per X.691 clause 23.
// For extension-addition alternatives (index >= count), the body is
// wrapped as an open type field (length-prefixed octet string) per
// clause 23.8; root alternatives are written directly.
func EncodeChoiceWithBody(enc *Encoder, index, count uint64, extensible bool, body ChoiceAlternative, bodyConstraints Constraints) error {
	if err := enc.EncodeChoice(index, count, extensible); err != nil {
		return err
	}
	if !extensible || index < count {
		return body.ToAPER(enc, bodyConstraints)
	}
	inner := NewEncoder()
	if err := body.ToAPER(inner, bodyConstraints); err != nil {
		return err
	}
	encoded := inner.IntoEncoding()
	octets := OctetString{Bytes: encoded.Bytes()}
	return octets.ToAPER(enc, UNCONSTRAINED)
}

// DecodeChoiceIndex reads a choice's extension bit and index, returning
// the selected alternative index for the caller to switch on before
// decoding the matching body type.
func DecodeChoiceIndex(dec *Decoder, count uint64, extensible bool) (uint64, error) {
	return dec.DecodeChoice(count, extensible)
}

// DecodeChoiceExtensionBody reads an extension-addition alternative's
// open-type-wrapped body into dst.
func DecodeChoiceExtensionBody(dec *Decoder, dst ChoiceAlternative, bodyConstraints Constraints) error {
	var octets OctetString
	if err := octets.FromAPER(dec, UNCONSTRAINED); err != nil {
		return err
	}
	inner := NewDecoder(octets.Bytes, uint64(len(octets.Bytes))*8)
	return dst.FromAPER(inner, bodyConstraints)
}
