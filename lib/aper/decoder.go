package aper

import "fmt"

// cursor is a read position over an immutable, borrowed byte slice,
// measured in bits from the start of the input. It never mutates the
// underlying slice.
type cursor struct {
	data   []byte
	bitLen uint64
	pos    uint64
}

func newCursor(data []byte, bitLen uint64) cursor {
	return cursor{data: data, bitLen: bitLen}
}

// snapshot captures the current position for later restore.
func (c *cursor) snapshot() uint64 { return c.pos }

// restore rewinds the cursor to a previously captured snapshot.
func (c *cursor) restore(pos uint64) { c.pos = pos }

// readBits reads the next n bits (0 <= n <= 64), MSB-first, advancing the
// cursor by exactly n on success. It never advances on failure.
func (c *cursor) readBits(n uint8) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	if c.pos+uint64(n) > c.bitLen {
		return 0, notEnoughBitsErrorf("need %d bits at offset %d, have %d", n, c.pos, c.bitLen-c.pos)
	}
	var result uint64
	pos := c.pos
	remaining := n
	for remaining > 0 {
		byteIdx := pos / 8
		bitIdx := pos % 8
		avail := uint8(8 - bitIdx)
		take := remaining
		if take > avail {
			take = avail
		}
		shift := avail - take
		mask := uint8((1 << take) - 1)
		bits := (c.data[byteIdx] >> shift) & mask
		result = (result << take) | uint64(bits)
		pos += uint64(take)
		remaining -= take
	}
	c.pos += uint64(n)
	return result, nil
}

// alignToByte advances the cursor to the next byte boundary (a no-op if
// already aligned), mirroring BitVector.AlignToByte on the read side.
func (c *cursor) alignToByte() error {
	if c.pos%8 == 0 {
		return nil
	}
	pad := 8 - (c.pos % 8)
	if c.pos+pad > c.bitLen {
		return notEnoughBitsErrorf("cannot align: need %d pad bits, have %d", pad, c.bitLen-c.pos)
	}
	c.pos += pad
	return nil
}

// readBytes reads n full octets starting at the current (byte-aligned)
// position. Callers must align first; readBytes does not align for them.
func (c *cursor) readBytes(n uint64) ([]byte, error) {
	if c.pos%8 != 0 {
		return nil, malformedErrorf("readBytes called at non-byte-aligned offset %d", c.pos)
	}
	if c.pos+n*8 > c.bitLen {
		return nil, notEnoughBitsErrorf("need %d octets at offset %d", n, c.pos/8)
	}
	start := c.pos / 8
	out := make([]byte, n)
	copy(out, c.data[start:start+n])
	c.pos += n * 8
	return out, nil
}

// Decoder owns an input byte slice plus a read cursor, and exposes the
// inverse primitives of Encoder. It borrows its input and never mutates
// it.
type Decoder struct {
	cursor cursor
}

// NewDecoder returns a Decoder over data, with bitLen measured in bits
// (normally len(data)*8, but callers decoding a sub-range of a larger
// buffer may pass a shorter bitLen).
func NewDecoder(data []byte, bitLen uint64) *Decoder {
	return &Decoder{cursor: newCursor(data, bitLen)}
}

// ReadOffset returns the current cursor position in bits from the start
// of the input.
func (d *Decoder) ReadOffset() uint64 { return d.cursor.pos }

// Snapshot captures the cursor position for a later Restore, letting
// callers implement atomic field reads across multiple primitive calls.
func (d *Decoder) Snapshot() uint64 { return d.cursor.snapshot() }

// Restore rewinds the cursor to a previously captured Snapshot.
func (d *Decoder) Restore(pos uint64) { d.cursor.restore(pos) }

// Align advances the cursor to the next byte boundary.
func (d *Decoder) Align() error {
	traceEnter(EventAlign, "Align", "")
	defer traceExit(EventAlign, "Align", "")
	return d.cursor.alignToByte()
}

// DecodeBoolean reads a single bit.
func (d *Decoder) DecodeBoolean() (bool, error) {
	v, err := d.cursor.readBits(1)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// DecodeConstrainedWholeNumber is the inverse of
// Encoder.EncodeConstrainedWholeNumber.
func (d *Decoder) DecodeConstrainedWholeNumber(lb, ub int64) (n int64, err error) {
	traceEnter(EventInt, "DecodeConstrainedWholeNumber", fmt.Sprintf("lb=%d ub=%d", lb, ub))
	defer func() { traceExit(EventInt, "DecodeConstrainedWholeNumber", fmt.Sprintf("n=%d err=%v", n, err)) }()
	if lb > ub {
		return 0, invalidRangeErrorf("lower bound %d exceeds upper bound %d", lb, ub)
	}
	vr := ub - lb + 1
	if vr == 1 {
		return lb, nil
	}

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
		v, err := d.cursor.readBits(width)
		if err != nil {
			return 0, err
		}
		return lb + int64(v), nil
	}
	if vr == 0x100 {
		if err := d.cursor.alignToByte(); err != nil {
			return 0, err
		}
		v, err := d.cursor.readBits(8)
		if err != nil {
			return 0, err
		}
		return lb + int64(v), nil
	}
	if vr <= 0x10000 {
		if err := d.cursor.alignToByte(); err != nil {
			return 0, err
		}
		v, err := d.cursor.readBits(16)
		if err != nil {
			return 0, err
		}
		return lb + int64(v), nil
	}

	octetsRange := octetsForNonNegative(uint64(ub - lb))
	rangeConstraint := NewConstraint(1, int64(octetsRange))
	octets, err := d.DecodeLength(&rangeConstraint)
	if err != nil {
		return 0, err
	}
	if err := d.cursor.alignToByte(); err != nil {
		return 0, err
	}
	v, err := d.cursor.readBits(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	return lb + int64(v), nil
}

// DecodeNormallySmallNonNegativeWholeNumber is the inverse of
// Encoder.EncodeNormallySmallNonNegativeWholeNumber.
func (d *Decoder) DecodeNormallySmallNonNegativeWholeNumber() (uint64, error) {
	bit, err := d.cursor.readBits(1)
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		return d.cursor.readBits(6)
	}
	v, err := d.DecodeSemiConstrainedWholeNumber(0)
	return uint64(v), err
}

// DecodeSemiConstrainedWholeNumber is the inverse of
// Encoder.EncodeSemiConstrainedWholeNumber.
func (d *Decoder) DecodeSemiConstrainedWholeNumber(lb int64) (int64, error) {
	if err := d.cursor.alignToByte(); err != nil {
		return 0, err
	}
	octets, err := d.DecodeLength(nil)
	if err != nil {
		return 0, err
	}
	v, err := d.cursor.readBits(uint8(octets * 8))
	if err != nil {
		return 0, err
	}
	return lb + int64(v), nil
}

// DecodeUnconstrainedWholeNumber is the inverse of
// Encoder.EncodeUnconstrainedWholeNumber. It sign-extends the minimal
// 2's-complement octets back to int64.
func (d *Decoder) DecodeUnconstrainedWholeNumber() (int64, error) {
	if err := d.cursor.alignToByte(); err != nil {
		return 0, err
	}
	octets, err := d.DecodeLength(nil)
	if err != nil {
		return 0, err
	}
	width := uint8(octets * 8)
	v, err := d.cursor.readBits(width)
	if err != nil {
		return 0, err
	}
	if width < 64 && v&(uint64(1)<<(width-1)) != 0 {
		v |= ^uint64(0) << width
	}
	return int64(v), nil
}

// DecodeInt is the inverse of Encoder.EncodeInt.
func (d *Decoder) DecodeInt(min, max *int64, extensible bool) (int64, error) {
	if min != nil && max != nil && *min > *max {
		return 0, invalidRangeErrorf("lower bound %d exceeds upper bound %d", *min, *max)
	}
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			return d.DecodeUnconstrainedWholeNumber()
		}
	}
	switch {
	case min != nil && max != nil:
		return d.DecodeConstrainedWholeNumber(*min, *max)
	case min != nil:
		return d.DecodeSemiConstrainedWholeNumber(*min)
	default:
		return d.DecodeUnconstrainedWholeNumber()
	}
}

// DecodeEnumerated is the inverse of Encoder.EncodeEnumerated.
func (d *Decoder) DecodeEnumerated(count uint64, extensible bool) (uint64, error) {
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			ext, err := d.DecodeNormallySmallNonNegativeWholeNumber()
			if err != nil {
				return 0, err
			}
			return count + ext, nil
		}
	}
	zero := int64(0)
	max := int64(count) - 1
	v, err := d.DecodeConstrainedWholeNumber(zero, max)
	if err != nil {
		return 0, err
	}
	return uint64(v), nil
}

// DecodeChoice is the inverse of Encoder.EncodeChoice.
func (d *Decoder) DecodeChoice(count uint64, extensible bool) (index uint64, err error) {
	traceEnter(EventChoice, "DecodeChoice", fmt.Sprintf("count=%d", count))
	defer func() { traceExit(EventChoice, "DecodeChoice", fmt.Sprintf("index=%d err=%v", index, err)) }()
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			ext, err := d.DecodeNormallySmallNonNegativeWholeNumber()
			if err != nil {
				return 0, err
			}
			return count + ext, nil
		}
	}
	if count <= 1 {
		return 0, nil
	}
	zero := int64(0)
	max := int64(count) - 1
	v, err := d.DecodeConstrainedWholeNumber(zero, max)
	if err != nil {
		return 0, err
	}
	if uint64(v) >= count {
		return 0, invalidChoiceErrorf("decoded choice index %d >= count %d", v, count)
	}
	return uint64(v), nil
}

// DecodeSequencePreamble is the inverse of Encoder.EncodeSequencePreamble.
func (d *Decoder) DecodeSequencePreamble(fieldCount int, extensible bool) (presence []bool, hasExtensions bool, err error) {
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return nil, false, err
		}
		hasExtensions = bit == 1
	}
	if fieldCount == 0 {
		return nil, hasExtensions, nil
	}
	n := uint64(fieldCount)
	if n >= maxConstrainedLength {
		fixed := NewConstraint(int64(n), int64(n))
		decoded, err := d.DecodeLength(&fixed)
		if err != nil {
			return nil, hasExtensions, err
		}
		n = decoded
	}
	presence = make([]bool, n)
	for i := range presence {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return nil, hasExtensions, err
		}
		presence[i] = bit == 1
	}
	return presence, hasExtensions, nil
}

// DecodeBitString is the inverse of Encoder.EncodeBitString. It returns
// the packed bits (MSB-first) and the exact bit count.
func (d *Decoder) DecodeBitString(size *Constraint, extensible bool) (bits []byte, bitLen uint64, err error) {
	traceEnter(EventBitString, "DecodeBitString", "")
	defer func() { traceExit(EventBitString, "DecodeBitString", fmt.Sprintf("bitLen=%d err=%v", bitLen, err)) }()
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return nil, 0, err
		}
		if bit == 1 {
			return d.decodeBitStringFragments(nil)
		}
	}

	if size != nil && size.FullyConstrained() && *size.Lower == *size.Upper {
		fixed := uint64(*size.Lower)
		if fixed <= 16 {
			return d.readBitField(fixed)
		}
		if fixed < 65536 {
			if err := d.cursor.alignToByte(); err != nil {
				return nil, 0, err
			}
			return d.readBitField(fixed)
		}
	}
	out, total, err := d.decodeBitStringFragments(size)
	if err != nil {
		return nil, 0, err
	}
	if size != nil && !size.InRange(int64(total)) {
		return nil, 0, invalidSizeErrorf("decoded bit string length %d outside size constraint", total)
	}
	return out, total, nil
}

func (d *Decoder) decodeBitStringFragments(size *Constraint) ([]byte, uint64, error) {
	traceEnter(EventFragment, "decodeBitStringFragments", "")
	defer traceExit(EventFragment, "decodeBitStringFragments", "")
	if err := d.cursor.alignToByte(); err != nil {
		return nil, 0, err
	}
	var out []byte
	var total uint64
	for {
		n, err := d.DecodeLength(size)
		if err != nil {
			return nil, 0, err
		}
		if n == 0 {
			break
		}
		if err := d.cursor.alignToByte(); err != nil {
			return nil, 0, err
		}
		chunk, bitLen, err := d.readBitField(n)
		if err != nil {
			return nil, 0, err
		}
		out = appendBitField(out, total, chunk, bitLen)
		total += bitLen
		if n < fragmentSize {
			break
		}
	}
	return out, total, nil
}

// readBitField reads bitLen bits (MSB-first) packed into the minimal byte
// count.
func (d *Decoder) readBitField(bitLen uint64) ([]byte, uint64, error) {
	out := make([]byte, (bitLen+7)/8)
	full := bitLen / 8
	for i := uint64(0); i < full; i++ {
		v, err := d.cursor.readBits(8)
		if err != nil {
			return nil, 0, err
		}
		out[i] = uint8(v)
	}
	rem := uint8(bitLen % 8)
	if rem > 0 {
		v, err := d.cursor.readBits(rem)
		if err != nil {
			return nil, 0, err
		}
		out[full] = uint8(v) << (8 - rem)
	}
	return out, bitLen, nil
}

// appendBitField concatenates a bitLen-bit chunk onto dst, which already
// holds existingBits bits packed MSB-first, returning the combined
// packing. Used to reassemble fragmented bit strings.
func appendBitField(dst []byte, existingBits uint64, chunk []byte, bitLen uint64) []byte {
	total := existingBits + bitLen
	out := make([]byte, (total+7)/8)
	copy(out, dst)
	for i := uint64(0); i < bitLen; i++ {
		srcByte := i / 8
		srcBit := 7 - (i % 8)
		if srcByte >= uint64(len(chunk)) {
			break
		}
		bit := (chunk[srcByte] >> srcBit) & 1
		dstPos := existingBits + i
		dstByte := dstPos / 8
		dstBit := 7 - (dstPos % 8)
		out[dstByte] |= bit << dstBit
	}
	return out
}

// DecodeOctetString is the inverse of Encoder.EncodeOctetString.
func (d *Decoder) DecodeOctetString(size *Constraint, extensible bool) (value []byte, err error) {
	traceEnter(EventOctetString, "DecodeOctetString", "")
	defer func() { traceExit(EventOctetString, "DecodeOctetString", fmt.Sprintf("len=%d err=%v", len(value), err)) }()
	if extensible {
		bit, err := d.cursor.readBits(1)
		if err != nil {
			return nil, err
		}
		if bit == 1 {
			return d.decodeOctetStringFragments(nil)
		}
	}

	if size != nil && size.FullyConstrained() && *size.Upper == 0 {
		return []byte{}, nil
	}
	if size != nil && size.FullyConstrained() && *size.Lower == *size.Upper {
		fixed := uint64(*size.Upper)
		if fixed <= 2 {
			return d.cursor.readBytes(fixed)
		}
		if fixed < 65536 {
			if err := d.cursor.alignToByte(); err != nil {
				return nil, err
			}
			return d.cursor.readBytes(fixed)
		}
	}
	out, err := d.decodeOctetStringFragments(size)
	if err != nil {
		return nil, err
	}
	if size != nil && !size.InRange(int64(len(out))) {
		return nil, invalidSizeErrorf("decoded octet string length %d outside size constraint", len(out))
	}
	return out, nil
}

func (d *Decoder) decodeOctetStringFragments(size *Constraint) ([]byte, error) {
	traceEnter(EventFragment, "decodeOctetStringFragments", "")
	defer traceExit(EventFragment, "decodeOctetStringFragments", "")
	if err := d.cursor.alignToByte(); err != nil {
		return nil, err
	}
	var out []byte
	for {
		n, err := d.DecodeLength(size)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		if err := d.cursor.alignToByte(); err != nil {
			return nil, err
		}
		chunk, err := d.cursor.readBytes(n)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		if n < fragmentSize {
			break
		}
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
