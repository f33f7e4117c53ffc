package aper

import (
	"fmt"

	"github.com/aperlib/aper/lib/bitvector"
)

// Encoder owns an output BitVector and exposes the bit-accurate APER
// primitives. An Encoder is a mutable resource exclusively owned by its
// caller for the duration of one message; it carries no shared state
// across instances.
type Encoder struct {
	bits *bitvector.BitVector
}

// NewEncoder returns a ready-to-use Encoder with an empty output buffer.
func NewEncoder() *Encoder {
	return &Encoder{bits: bitvector.New()}
}

// Append concatenates the bits of an already-produced Encoding onto this
// Encoder's output, for composing sub-message encodings produced
// independently (e.g. an open-type extension addition).
func (e *Encoder) Append(enc Encoding) {
	e.bits.Concat(enc.bits)
}

// IntoEncoding finalizes this Encoder, returning its accumulated Encoding.
// The Encoder should not be reused afterward.
func (e *Encoder) IntoEncoding() Encoding {
	return Encoding{bits: e.bits}
}

// Bytes returns the packed output so far (trailing pad bits zero).
func (e *Encoder) Bytes() []byte {
	return e.bits.Bytes()
}

// Align pads the output to the next byte boundary.
func (e *Encoder) Align() error {
	traceEnter(EventAlign, "Align", "")
	e.bits.AlignToByte()
	traceExit(EventAlign, "Align", "")
	return nil
}

// EncodeBoolean writes a single bit.
func (e *Encoder) EncodeBoolean(value bool) error {
	if value {
		e.bits.AppendBit(1)
	} else {
		e.bits.AppendBit(0)
	}
	return nil
}

// EncodeConstrainedWholeNumber applies X.691 11.5 to n within [lb, ub].
// Both bounds must already be known present; callers with an absent bound
// should use EncodeSemiConstrainedWholeNumber or
// EncodeUnconstrainedWholeNumber instead.
func (e *Encoder) EncodeConstrainedWholeNumber(lb, ub, n int64) (err error) {
	traceEnter(EventInt, "EncodeConstrainedWholeNumber", fmt.Sprintf("lb=%d ub=%d n=%d", lb, ub, n))
	defer func() { traceExit(EventInt, "EncodeConstrainedWholeNumber", fmt.Sprintf("err=%v", err)) }()
	if lb > ub {
		return invalidRangeErrorf("lower bound %d exceeds upper bound %d", lb, ub)
	}
	if n < lb || n > ub {
		return valueNotInRangeErrorf("value %d outside [%d, %d]", n, lb, ub)
	}
	vr := ub - lb + 1
	if vr == 1 {
		return nil
	}
	value := uint64(n - lb)

	// 11.5.7.1: bit-field case, range <= 255. No alignment.
	if vr <= 0xFF {
		var width uint8
		switch {
		case vr == 0x02:
			width = 1
		case vr <= 0x04:
			width = 2
		case vr <= 0x08:
			width = 3
		case vr <= 0x10:
			width = 4
		case vr <= 0x20:
			width = 5
		case vr <= 0x40:
			width = 6
		case vr <= 0x80:
			width = 7
		default:
			width = 8
		}
		e.bits.AppendBits(value, width)
		return nil
	}
	// 11.5.7.2: one-octet case, range == 256.
	if vr == 0x100 {
		e.bits.AlignToByte()
		e.bits.AppendBits(value, 8)
		return nil
	}
	// 11.5.7.3: two-octet case, 257 <= range <= 64K.
	if vr <= 0x10000 {
		e.bits.AlignToByte()
		e.bits.AppendBits(value, 16)
		return nil
	}
	// 11.5.7.4: indefinite length case, range > 64K.
	octets := octetsForNonNegative(value)
	if octets == 0 {
		octets = 1
	}
	octetsRange := octetsForNonNegative(uint64(ub - lb))
	rangeConstraint := NewConstraint(1, int64(octetsRange))
	if _, err := e.EncodeLength(uint64(octets), &rangeConstraint); err != nil {
		return err
	}
	e.bits.AlignToByte()
	e.bits.AppendBits(value, uint8(octets*8))
	return nil
}

// EncodeNormallySmallNonNegativeWholeNumber applies X.691 11.6: values up
// to 63 use a single root bit plus a 6-bit field; larger values use a
// semi-constrained whole number with an explicit length.
func (e *Encoder) EncodeNormallySmallNonNegativeWholeNumber(n uint64) error {
	if n <= 63 {
		e.bits.AppendBit(0)
		e.bits.AppendBits(n, 6)
		return nil
	}
	e.bits.AppendBit(1)
	return e.EncodeSemiConstrainedWholeNumber(0, int64(n))
}

// EncodeSemiConstrainedWholeNumber applies X.691 11.7: n - lb encoded in
// the minimal octet count, length-prefixed, octet-aligned.
func (e *Encoder) EncodeSemiConstrainedWholeNumber(lb, n int64) error {
	if n < lb {
		return valueNotInRangeErrorf("value %d below lower bound %d", n, lb)
	}
	offset := uint64(n - lb)
	octets := octetsForNonNegative(offset)
	if octets == 0 {
		octets = 1
	}
	e.bits.AlignToByte()
	if _, err := e.EncodeLength(uint64(octets), nil); err != nil {
		return err
	}
	e.bits.AppendBits(offset, uint8(octets*8))
	return nil
}

// EncodeUnconstrainedWholeNumber applies X.691 11.8: n encoded as a
// 2's-complement-binary-integer in the minimal octet count,
// length-prefixed, octet-aligned.
func (e *Encoder) EncodeUnconstrainedWholeNumber(n int64) error {
	octets := octetsForTwosComplement(n)
	if octets == 0 {
		octets = 1
	}
	e.bits.AlignToByte()
	if _, err := e.EncodeLength(uint64(octets), nil); err != nil {
		return err
	}
	e.bits.AppendBits(uint64(n), uint8(octets*8))
	return nil
}

// EncodeInt implements encode_int / EncodeInteger (X.691 clause 13):
// dispatches to the constrained, semi-constrained, or unconstrained whole
// number rule depending on which of min/max are present, honoring the
// extensible out-of-root escape when set.
func (e *Encoder) EncodeInt(value int64, min, max *int64, extensible bool) error {
	if min != nil && max != nil && *min > *max {
		return invalidRangeErrorf("lower bound %d exceeds upper bound %d", *min, *max)
	}
	inRoot := true
	if min != nil && value < *min {
		inRoot = false
	}
	if max != nil && value > *max {
		inRoot = false
	}

	if extensible {
		if inRoot {
			e.bits.AppendBit(0)
		} else {
			e.bits.AppendBit(1)
			return e.EncodeUnconstrainedWholeNumber(value)
		}
	} else if !inRoot {
		return valueNotInRangeErrorf("value %d outside constraint", value)
	}

	switch {
	case min != nil && max != nil:
		return e.EncodeConstrainedWholeNumber(*min, *max, value)
	case min != nil:
		return e.EncodeSemiConstrainedWholeNumber(*min, value)
	default:
		return e.EncodeUnconstrainedWholeNumber(value)
	}
}

// EncodeEnumerated applies X.691 clause 14: one extension bit if
// extensible (root values write 0), then the root index via
// EncodeInt(index, 0, count-1).
func (e *Encoder) EncodeEnumerated(index uint64, count uint64, extensible bool) error {
	inRoot := index < count
	if extensible {
		if inRoot {
			e.bits.AppendBit(0)
		} else {
			e.bits.AppendBit(1)
			return e.EncodeNormallySmallNonNegativeWholeNumber(index - count)
		}
	} else if !inRoot {
		return invalidChoiceErrorf("enumerated index %d >= count %d", index, count)
	}
	max := int64(count) - 1
	zero := int64(0)
	return e.EncodeConstrainedWholeNumber(zero, max, int64(index))
}

// EncodeChoice applies X.691 clause 23: one extension bit if extensible,
// then the alternative index, encoded as a constrained whole number in
// [0, count-1] when within the root or a normally small non-negative
// whole number when it is an extension addition.
func (e *Encoder) EncodeChoice(index uint64, count uint64, extensible bool) (err error) {
	traceEnter(EventChoice, "EncodeChoice", fmt.Sprintf("index=%d count=%d", index, count))
	defer func() { traceExit(EventChoice, "EncodeChoice", fmt.Sprintf("err=%v", err)) }()
	inRoot := index < count
	if extensible {
		if inRoot {
			e.bits.AppendBit(0)
		} else {
			e.bits.AppendBit(1)
			return e.EncodeNormallySmallNonNegativeWholeNumber(index - count)
		}
	} else if !inRoot {
		return invalidChoiceErrorf("choice index %d >= count %d", index, count)
	}
	if count <= 1 {
		return nil
	}
	max := int64(count) - 1
	zero := int64(0)
	return e.EncodeConstrainedWholeNumber(zero, max, int64(index))
}

// EncodeSequencePreamble applies X.691 clause 19.1-19.3: an extension bit
// (iff extensible), then the optional/default presence bitmap, MSB-first,
// one bit per field in declaration order.
func (e *Encoder) EncodeSequencePreamble(presence []bool, extensible bool, hasExtensions bool) (err error) {
	traceEnter(EventSequence, "EncodeSequencePreamble", fmt.Sprintf("fields=%d", len(presence)))
	defer func() { traceExit(EventSequence, "EncodeSequencePreamble", fmt.Sprintf("err=%v", err)) }()
	if extensible {
		if hasExtensions {
			e.bits.AppendBit(1)
		} else {
			e.bits.AppendBit(0)
		}
	}
	n := uint64(len(presence))
	if n == 0 {
		return nil
	}
	if n < maxConstrainedLength {
		for _, p := range presence {
			if p {
				e.bits.AppendBit(1)
			} else {
				e.bits.AppendBit(0)
			}
		}
		return nil
	}
	fixed := NewConstraint(int64(n), int64(n))
	if _, err := e.EncodeLength(n, &fixed); err != nil {
		return err
	}
	for _, p := range presence {
		if p {
			e.bits.AppendBit(1)
		} else {
			e.bits.AppendBit(0)
		}
	}
	return nil
}

// EncodeBitString applies X.691 clause 16: fixed length <= 16 bits writes
// unaligned with no length determinant; otherwise a length determinant
// (in bits) followed by an octet-aligned field.
func (e *Encoder) EncodeBitString(bits []byte, bitLen uint64, size *Constraint, extensible bool) (err error) {
	traceEnter(EventBitString, "EncodeBitString", fmt.Sprintf("bitLen=%d", bitLen))
	defer func() { traceExit(EventBitString, "EncodeBitString", fmt.Sprintf("err=%v", err)) }()
	if extensible {
		extended := size == nil || !size.FullyConstrained()
		if size != nil && size.FullyConstrained() {
			rng, _ := size.Range()
			extended = bitLen < uint64(*size.Lower) || bitLen > uint64(*size.Lower)+uint64(rng)-1
		}
		if extended {
			e.bits.AppendBit(1)
			return e.encodeBitStringFragments(bits, bitLen, nil)
		}
		e.bits.AppendBit(0)
	} else if size != nil && !size.InRange(int64(bitLen)) {
		return sizeNotInRangeErrorf("bit string length %d outside size constraint", bitLen)
	}

	if size != nil && size.FullyConstrained() && *size.Lower == *size.Upper {
		fixed := uint64(*size.Lower)
		if fixed <= 16 {
			e.writeBitField(bits, bitLen)
			return nil
		}
		if fixed < 65536 {
			e.bits.AlignToByte()
			e.writeBitField(bits, bitLen)
			return nil
		}
	}
	return e.encodeBitStringFragments(bits, bitLen, size)
}

// encodeBitStringFragments writes a length determinant (in bits) followed
// by the bit content, looping to support fragmentation at 16K-bit
// boundaries per X.691 11.9.3.8. Termination is driven solely by
// EncodeLength's "pending" return, matching decodeBitStringFragments's own
// "n < fragmentSize" termination: a fragment-sized step always demands a
// follow-up determinant, even when it exactly exhausts the remainder.
func (e *Encoder) encodeBitStringFragments(bits []byte, bitLen uint64, size *Constraint) error {
	traceEnter(EventFragment, "encodeBitStringFragments", fmt.Sprintf("bitLen=%d", bitLen))
	defer traceExit(EventFragment, "encodeBitStringFragments", "")
	e.bits.AlignToByte()
	offset := uint64(0)
	for {
		remaining := bitLen - offset
		pending, err := e.EncodeLength(remaining, size)
		if err != nil {
			return err
		}
		if pending == 0 {
			if remaining > 0 {
				e.bits.AlignToByte()
				e.writeBitField(sliceBits(bits, offset, remaining), remaining)
			}
			return nil
		}
		e.writeBitField(sliceBits(bits, offset, pending), pending)
		offset += pending
	}
}

// writeBitField appends exactly bitLen bits from bits (MSB-first, as
// produced by sliceBits/callers holding a packed bit string).
func (e *Encoder) writeBitField(bits []byte, bitLen uint64) {
	full := bitLen / 8
	for i := uint64(0); i < full; i++ {
		e.bits.AppendBits(uint64(bits[i]), 8)
	}
	rem := uint8(bitLen % 8)
	if rem > 0 {
		last := bits[full]
		e.bits.AppendBits(uint64(last>>(8-rem)), rem)
	}
}

// sliceBits extracts a bitLen-bit, MSB-first-packed slice starting at bit
// offset from a packed bit string. Used to carve fragments out of a
// larger bit string for EncodeBitString's fragmentation loop.
func sliceBits(bits []byte, offset, bitLen uint64) []byte {
	out := make([]byte, (bitLen+7)/8)
	for i := uint64(0); i < bitLen; i++ {
		srcBit := offset + i
		byteIdx := srcBit / 8
		bitIdx := 7 - (srcBit % 8)
		if byteIdx >= uint64(len(bits)) {
			break
		}
		bit := (bits[byteIdx] >> bitIdx) & 1
		dstByte := i / 8
		dstBit := 7 - (i % 8)
		out[dstByte] |= bit << dstBit
	}
	return out
}

// EncodeOctetString applies X.691 clause 17, symmetric to EncodeBitString
// but counted and aligned in octets.
func (e *Encoder) EncodeOctetString(value []byte, size *Constraint, extensible bool) (err error) {
	n := uint64(len(value))
	traceEnter(EventOctetString, "EncodeOctetString", fmt.Sprintf("len=%d", n))
	defer func() { traceExit(EventOctetString, "EncodeOctetString", fmt.Sprintf("err=%v", err)) }()

	if extensible {
		extended := true
		if size != nil && size.FullyConstrained() {
			extended = n < uint64(*size.Lower) || n > uint64(*size.Upper)
		} else if size == nil {
			extended = false
		}
		if extended {
			e.bits.AppendBit(1)
			return e.encodeOctetStringFragments(value, nil)
		}
		e.bits.AppendBit(0)
	} else if size != nil && !size.InRange(int64(n)) {
		return sizeNotInRangeErrorf("octet string length %d outside size constraint", n)
	}

	if size != nil && size.FullyConstrained() && *size.Upper == 0 {
		return nil
	}
	if size != nil && size.FullyConstrained() && *size.Lower == *size.Upper {
		fixed := *size.Upper
		if fixed <= 2 {
			e.bits.AppendBytes(value)
			return nil
		}
		if fixed < 65536 {
			e.bits.AlignToByte()
			e.bits.AppendBytes(value)
			return nil
		}
	}
	return e.encodeOctetStringFragments(value, size)
}

// encodeOctetStringFragments writes a length determinant (in octets)
// followed by the byte content, looping to support fragmentation at 16K
// boundaries. Termination is driven solely by EncodeLength's "pending"
// return (see encodeBitStringFragments): a fragment-sized step always
// demands a follow-up determinant, even one that exactly exhausts value.
func (e *Encoder) encodeOctetStringFragments(value []byte, size *Constraint) error {
	n := uint64(len(value))
	traceEnter(EventFragment, "encodeOctetStringFragments", fmt.Sprintf("len=%d", n))
	defer traceExit(EventFragment, "encodeOctetStringFragments", "")
	e.bits.AlignToByte()
	offset := uint64(0)
	for {
		remaining := n - offset
		pending, err := e.EncodeLength(remaining, size)
		if err != nil {
			return err
		}
		if pending == 0 {
			if remaining > 0 {
				e.bits.AlignToByte()
				e.bits.AppendBytes(value[offset : offset+remaining])
			}
			return nil
		}
		e.bits.AppendBytes(value[offset : offset+pending])
		offset += pending
	}
}
