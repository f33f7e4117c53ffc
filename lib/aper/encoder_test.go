package aper

import (
	"bytes"
	"testing"
)

func TestEncodeConstrainedWholeNumberScenarios(t *testing.T) {
	test := func(name string, lb, ub, n int64, want []byte) {
		t.Run(name, func(t *testing.T) {
			enc := NewEncoder()
			if err := enc.EncodeConstrainedWholeNumber(lb, ub, n); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			got := enc.Bytes()
			if !bytes.Equal(got, want) {
				t.Errorf("got % x, want % x", got, want)
			}
		})
	}

	// Scenario 1: encode_int(501, 500, 503) -> range=4, 2 bits, value-min=1 -> 01 -> 0x40.
	test("RANGE_4_VALUE_501", 500, 503, 501, []byte{0x40})

	// Scenario 2: encode_int(0, 0, 0) -> range=1, no bits, empty output.
	test("RANGE_1_VALUE_0", 0, 0, 0, []byte{})

	// Scenario 3: encode_int(256, 0, 65535) -> range=65536, byte-aligned, 2 octets 0x01 0x00.
	test("RANGE_65536_VALUE_256", 0, 65535, 256, []byte{0x01, 0x00})
}

func TestEncodeUnconstrainedWholeNumberScenarios(t *testing.T) {
	test := func(name string, n int64, want []byte) {
		t.Run(name, func(t *testing.T) {
			enc := NewEncoder()
			if err := enc.EncodeUnconstrainedWholeNumber(n); err != nil {
				t.Fatalf("encode failed: %v", err)
			}
			got := enc.Bytes()
			if !bytes.Equal(got, want) {
				t.Errorf("got % x, want % x", got, want)
			}
		})
	}

	// Scenario 4: encode_int(-1, None, None) -> minimal signed rep 0xFF, length 0x01.
	test("UNCONSTRAINED_MINUS_1", -1, []byte{0x01, 0xFF})

	// Scenario 5: encode_int(128, None, None) -> 0x00 0x80, length 0x02.
	test("UNCONSTRAINED_128", 128, []byte{0x02, 0x00, 0x80})
}

func TestEncodeIntDispatchesToUnconstrained(t *testing.T) {
	enc := NewEncoder()
	if err := enc.EncodeInt(-1, nil, nil, false); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	want := []byte{0x01, 0xFF}
	if !bytes.Equal(enc.Bytes(), want) {
		t.Errorf("got % x, want % x", enc.Bytes(), want)
	}
}

func TestEncodeIntRangeValidation(t *testing.T) {
	enc := NewEncoder()
	lo, hi := int64(500), int64(503)
	err := enc.EncodeInt(504, &lo, &hi, false)
	if err == nil {
		t.Fatal("expected error for out-of-range value")
	}
	if kind, ok := Kind(err); !ok || kind != KindValueNotInRange {
		t.Errorf("expected KindValueNotInRange, got %v (ok=%v)", kind, ok)
	}
}

func TestEncodeInvalidRange(t *testing.T) {
	enc := NewEncoder()
	err := enc.EncodeConstrainedWholeNumber(10, 5, 7)
	if err == nil {
		t.Fatal("expected error for inverted range")
	}
	if kind, ok := Kind(err); !ok || kind != KindInvalidRange {
		t.Errorf("expected KindInvalidRange, got %v (ok=%v)", kind, ok)
	}
}

func TestChoiceRoundTripScenario6(t *testing.T) {
	// Scenario 6: CHOICE of 3 alternatives, extension marker, alt index 1,
	// inner octet string [0xAA, 0xBB, 0xCC] constrained to size 3.
	enc := NewEncoder()
	if err := enc.EncodeChoice(1, 3, true); err != nil {
		t.Fatalf("encode choice failed: %v", err)
	}
	size := NewConstraint(3, 3)
	if err := enc.EncodeOctetString([]byte{0xAA, 0xBB, 0xCC}, &size, false); err != nil {
		t.Fatalf("encode octet string failed: %v", err)
	}

	bytesOut := enc.Bytes()
	bitLen := uint64(len(bytesOut)) * 8
	dec := NewDecoder(bytesOut, bitLen)
	idx, err := dec.DecodeChoice(3, true)
	if err != nil {
		t.Fatalf("decode choice failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("got index %d, want 1", idx)
	}
	got, err := dec.DecodeOctetString(&size, false)
	if err != nil {
		t.Fatalf("decode octet string failed: %v", err)
	}
	want := []byte{0xAA, 0xBB, 0xCC}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestBooleanRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		enc := NewEncoder()
		if err := enc.EncodeBoolean(v); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		dec := NewDecoder(enc.Bytes(), enc.IntoEncoding().Len())
		got, err := dec.DecodeBoolean()
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got != v {
			t.Errorf("got %v, want %v", got, v)
		}
	}
}

func TestAlignIsIdempotent(t *testing.T) {
	enc := NewEncoder()
	enc.EncodeBoolean(true)
	if err := enc.Align(); err != nil {
		t.Fatalf("align failed: %v", err)
	}
	afterFirst := enc.bits.LenBits()
	if err := enc.Align(); err != nil {
		t.Fatalf("second align failed: %v", err)
	}
	if enc.bits.LenBits() != afterFirst {
		t.Errorf("align on aligned buffer changed length: %d -> %d", afterFirst, enc.bits.LenBits())
	}
}
