package aper

// Codec is the composition protocol: every encodable/decodable type
// satisfies these two dual capabilities plus a static default Constraints
// (conventionally exposed as a package-level var or method named
// DefaultConstraints on the type, since Go has no static interface
// members). Composition is static per call site; no registry or
// reflection-based dispatch is involved.
type Codec interface {
	ToAPER(enc *Encoder, c Constraints) error
	FromAPER(dec *Decoder, c Constraints) error
}

// EncodeValue encodes v's fields in schema order by delegating to its
// ToAPER method, using the given Constraints as the field-level override
// of whatever default the type otherwise carries.
func EncodeValue(enc *Encoder, v Codec, c Constraints) error {
	return v.ToAPER(enc, c)
}

// DecodeValue decodes into v by delegating to its FromAPER method.
func DecodeValue(dec *Decoder, v Codec, c Constraints) error {
	return v.FromAPER(dec, c)
}
