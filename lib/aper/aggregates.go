package aper

// BitString is the standard aggregate type for the ASN.1 BIT STRING
// type: a count of bits plus MSB-first packed storage.
type BitString struct {
	Bits   []byte
	Length uint64 // number of significant bits
}

// ToAPER implements Codec for BitString using c.Size as the size
// constraint and c.Extensible as the extensibility flag.
func (b BitString) ToAPER(enc *Encoder, c Constraints) error {
	return enc.EncodeBitString(b.Bits, b.Length, c.Size, c.Extensible)
}

// FromAPER implements Codec for BitString.
func (b *BitString) FromAPER(dec *Decoder, c Constraints) error {
	bits, length, err := dec.DecodeBitString(c.Size, c.Extensible)
	if err != nil {
		return err
	}
	b.Bits = bits
	b.Length = length
	return nil
}

// OctetString is the standard aggregate type for the ASN.1 OCTET STRING
// type.
type OctetString struct {
	Bytes []byte
}

// ToAPER implements Codec for OctetString.
func (o OctetString) ToAPER(enc *Encoder, c Constraints) error {
	return enc.EncodeOctetString(o.Bytes, c.Size, c.Extensible)
}

// FromAPER implements Codec for OctetString.
func (o *OctetString) FromAPER(dec *Decoder, c Constraints) error {
	data, err := dec.DecodeOctetString(c.Size, c.Extensible)
	if err != nil {
		return err
	}
	o.Bytes = data
	return nil
}

// SequenceOf is the standard aggregate type for a homogeneous ASN.1
// SEQUENCE OF T: a length determinant followed by n occurrences of T's
// own encoding. T must satisfy Codec via pointer receiver for decode to
// populate it in place.
type SequenceOf[T Codec] struct {
	Items []T
}

// ToAPER implements Codec for SequenceOf. Each element is encoded with
// UNCONSTRAINED; c.Size governs the count.
func (s SequenceOf[T]) ToAPER(enc *Encoder, c Constraints) error {
	return s.ToAPERWithElementConstraints(enc, c, UNCONSTRAINED)
}

// ToAPERWithElementConstraints is like ToAPER but lets the caller supply
// a distinct Constraints for each element, separate from the
// count-governing c.
func (s SequenceOf[T]) ToAPERWithElementConstraints(enc *Encoder, c Constraints, elem Constraints) error {
	n := uint64(len(s.Items))
	if !c.Extensible && c.Size != nil && !c.Size.InRange(int64(n)) {
		return sizeNotInRangeErrorf("sequence-of count %d outside size constraint", n)
	}
	fixed := c.Size != nil && c.Size.FullyConstrained()
	if fixed {
		rng, _ := c.Size.Range()
		if rng < maxConstrainedLength {
			if err := writeSequenceOfCount(enc, n, c); err != nil {
				return err
			}
			for i := range s.Items {
				if err := s.Items[i].ToAPER(enc, elem); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if c.Extensible && c.Size != nil {
		inRoot := c.Size.InRange(int64(n))
		if !inRoot {
			enc.bits.AppendBit(1)
			if err := enc.EncodeSemiConstrainedWholeNumber(0, int64(n)); err != nil {
				return err
			}
			for i := range s.Items {
				if err := s.Items[i].ToAPER(enc, elem); err != nil {
					return err
				}
			}
			return nil
		}
		enc.bits.AppendBit(0)
	}
	offset := uint64(0)
	for {
		remaining := n - offset
		pending, err := enc.EncodeLength(remaining, c.Size)
		if err != nil {
			return err
		}
		if pending == 0 {
			for i := offset; i < offset+remaining; i++ {
				if err := s.Items[i].ToAPER(enc, elem); err != nil {
					return err
				}
			}
			return nil
		}
		for i := offset; i < offset+pending; i++ {
			if err := s.Items[i].ToAPER(enc, elem); err != nil {
				return err
			}
		}
		offset += pending
	}
}

func writeSequenceOfCount(enc *Encoder, n uint64, c Constraints) error {
	_, err := enc.EncodeLength(n, c.Size)
	return err
}

// FromAPER is the decode counterpart of ToAPER; because of its extra
// newItem parameter, *SequenceOf[T] does not satisfy Codec. newItem must
// return a fresh
// *T-backed Codec each call since T's own FromAPER populates it in place.
func (s *SequenceOf[T]) FromAPER(dec *Decoder, c Constraints, newItem func() T) error {
	n, err := dec.DecodeLength(c.Size)
	if err != nil {
		return err
	}
	if !c.Extensible && c.Size != nil && !c.Size.InRange(int64(n)) {
		return invalidSizeErrorf("decoded sequence-of count %d outside size constraint", n)
	}
	items := make([]T, 0, n)
	for i := uint64(0); i < n; i++ {
		item := newItem()
		if err := item.FromAPER(dec, UNCONSTRAINED); err != nil {
			return err
		}
		items = append(items, item)
	}
	s.Items = items
	return nil
}

// Optional wraps a field that may be absent. Present is set by the
// sequence preamble's presence bitmap; Value is only meaningful when
// Present is true.
type Optional[T any] struct {
	Present bool
	Value   T
}

// Some constructs a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Present: true, Value: v}
}

// None constructs an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}
