package aper

import (
	"bytes"
	"testing"
)

func TestBitStringRoundTrip(t *testing.T) {
	bs := BitString{Bits: []byte{0xB4}, Length: 5} // 10110 (top 5 bits of 0xB4)
	enc := NewEncoder()
	if err := bs.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	var out BitString
	if err := out.FromAPER(dec, UNCONSTRAINED); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Length != bs.Length {
		t.Fatalf("got length %d, want %d", out.Length, bs.Length)
	}
}

func TestOctetStringSizeNotInRange(t *testing.T) {
	size := NewConstraint(3, 3)
	os := OctetString{Bytes: []byte{0x01, 0x02}}
	enc := NewEncoder()
	err := os.ToAPER(enc, UNCONSTRAINED.WithSize(size))
	if err == nil {
		t.Fatal("expected error for out-of-range octet string length")
	}
	if kind, ok := Kind(err); !ok || kind != KindSizeNotInRange {
		t.Errorf("expected KindSizeNotInRange, got %v (ok=%v)", kind, ok)
	}
}

func TestBitStringSizeNotInRange(t *testing.T) {
	size := NewConstraint(8, 8)
	bs := BitString{Bits: []byte{0xFF}, Length: 5}
	enc := NewEncoder()
	err := bs.ToAPER(enc, UNCONSTRAINED.WithSize(size))
	if err == nil {
		t.Fatal("expected error for out-of-range bit string length")
	}
	if kind, ok := Kind(err); !ok || kind != KindSizeNotInRange {
		t.Errorf("expected KindSizeNotInRange, got %v (ok=%v)", kind, ok)
	}
}

func TestSequenceOfSizeNotInRange(t *testing.T) {
	size := NewConstraint(1, 1)
	seq := SequenceOf[*fixedOctets]{Items: []*fixedOctets{
		{value: OctetString{Bytes: []byte{0x01}}},
		{value: OctetString{Bytes: []byte{0x02}}},
	}}
	enc := NewEncoder()
	err := seq.ToAPER(enc, UNCONSTRAINED.WithSize(size))
	if err == nil {
		t.Fatal("expected error for out-of-range sequence-of count")
	}
	if kind, ok := Kind(err); !ok || kind != KindSizeNotInRange {
		t.Errorf("expected KindSizeNotInRange, got %v (ok=%v)", kind, ok)
	}
}

func TestOctetStringDecodeInvalidSize(t *testing.T) {
	// Encoded with no size constraint (generic length-prefixed form), then
	// decoded against a semi-constrained size whose lower bound the actual
	// content length falls short of: the fragment loop has no structural
	// way to enforce the bound (unlike a small fully-constrained size,
	// which forces a width that can't represent an out-of-range value), so
	// the mismatch can only be caught after the fact.
	os := OctetString{Bytes: []byte{0x01, 0x02, 0x03}}
	enc := NewEncoder()
	if err := os.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	size := SemiConstraint(5)
	var out OctetString
	err := out.FromAPER(dec, UNCONSTRAINED.WithSize(size))
	if err == nil {
		t.Fatal("expected error decoding a length inconsistent with the size constraint")
	}
	if kind, ok := Kind(err); !ok || kind != KindInvalidSize {
		t.Errorf("expected KindInvalidSize, got %v (ok=%v)", kind, ok)
	}
}

func TestOctetStringRoundTripEmpty(t *testing.T) {
	os := OctetString{Bytes: []byte{}}
	enc := NewEncoder()
	if err := os.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	var out OctetString
	if err := out.FromAPER(dec, UNCONSTRAINED); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out.Bytes) != 0 {
		t.Fatalf("got %v, want empty", out.Bytes)
	}
}

type fixedOctets struct {
	value OctetString
}

func (f *fixedOctets) ToAPER(enc *Encoder, c Constraints) error {
	return f.value.ToAPER(enc, c)
}

func (f *fixedOctets) FromAPER(dec *Decoder, c Constraints) error {
	return f.value.FromAPER(dec, c)
}

func newFixedOctets() *fixedOctets { return &fixedOctets{} }

func TestSequenceOfRoundTrip(t *testing.T) {
	items := []*fixedOctets{
		{value: OctetString{Bytes: []byte{0x01}}},
		{value: OctetString{Bytes: []byte{0x02, 0x03}}},
		{value: OctetString{Bytes: []byte{}}},
	}
	seq := SequenceOf[*fixedOctets]{Items: items}
	enc := NewEncoder()
	if err := seq.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	var out SequenceOf[*fixedOctets]
	if err := out.FromAPER(dec, UNCONSTRAINED, newFixedOctets); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out.Items) != len(items) {
		t.Fatalf("got %d items, want %d", len(out.Items), len(items))
	}
	for i, want := range items {
		if !bytes.Equal(out.Items[i].value.Bytes, want.value.Bytes) {
			t.Errorf("item %d: got % x, want % x", i, out.Items[i].value.Bytes, want.value.Bytes)
		}
	}
}

func TestSequenceOfEmpty(t *testing.T) {
	seq := SequenceOf[*fixedOctets]{Items: nil}
	enc := NewEncoder()
	if err := seq.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	var out SequenceOf[*fixedOctets]
	if err := out.FromAPER(dec, UNCONSTRAINED, newFixedOctets); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(out.Items) != 0 {
		t.Fatalf("got %d items, want 0", len(out.Items))
	}
}

func TestEnumeratedRoundTrip(t *testing.T) {
	e := Enumerated{Index: 2, Count: 5}
	enc := NewEncoder()
	if err := e.ToAPER(enc, UNCONSTRAINED); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	var out Enumerated
	out.Count = 5
	if err := out.FromAPER(dec, UNCONSTRAINED); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.Index != 2 {
		t.Fatalf("got index %d, want 2", out.Index)
	}
}

func TestSequencePreambleRoundTrip(t *testing.T) {
	presence := []bool{true, false, true}
	enc := NewEncoder()
	if err := enc.EncodeSequencePreamble(presence, false, false); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	encoded := enc.IntoEncoding()
	dec := NewDecoder(encoded.Bytes(), encoded.Len())
	gotPresence, hasExt, err := dec.DecodeSequencePreamble(3, false)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if hasExt {
		t.Fatalf("did not expect extension bit")
	}
	for i, want := range presence {
		if gotPresence[i] != want {
			t.Errorf("presence[%d] = %v, want %v", i, gotPresence[i], want)
		}
	}
}
