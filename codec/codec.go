// Package codec implements the byte-exact integer and float encodings that
// underpin the dictionary and posting file formats: big-endian base-128
// varints and big-endian fixed-width integers, plus IEEE-754 float/double
// encoding via bit-pattern reinterpretation. See spec.md §4.1.
package codec

import (
	"math"

	"github.com/fschiettecatte/mpscore/internal/base"
	"golang.org/x/exp/constraints"
)

const (
	continuationBit byte = 0x80
	dataMask        byte = 0x7F
	dataBits             = 7
)

// MaxVarintLen32 is the largest number of bytes a varint-encoded uint32 can
// occupy (ceil(32/7) = 5).
const MaxVarintLen32 = 5

// MaxVarintLen64 is the largest number of bytes a varint-encoded uint64 can
// occupy (ceil(64/7) = 10).
const MaxVarintLen64 = 10

// Cursor is a cursor-style reader/writer over a byte slice: every encode and
// decode function advances Pos by exactly the number of bytes it consumed or
// produced, per the Design Note in spec.md §9 (no module-level scratch
// state; the cursor is owned by its caller).
type Cursor struct {
	Buf []byte
	Pos int
}

// NewCursor wraps buf for reading or writing starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{Buf: buf}
}

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int {
	return len(c.Buf) - c.Pos
}

// unsignedSize returns the number of 7-bit groups needed to represent v,
// generic over any unsigned integer width so the same logic serves both the
// uint32 and uint64 callers (and why golang.org/x/exp/constraints is wired
// in here rather than writing the size loop out twice).
func unsignedSize[T constraints.Unsigned](v T) int {
	n := 1
	for v >= (1 << dataBits) {
		v >>= dataBits
		n++
	}
	return n
}

// VarintSizeUint32 returns the number of bytes EncodeVarintUint32 would
// produce for v.
func VarintSizeUint32(v uint32) int { return unsignedSize(v) }

// VarintSizeUint64 returns the number of bytes EncodeVarintUint64 would
// produce for v.
func VarintSizeUint64(v uint64) int { return unsignedSize(v) }

// EncodeVarintUint32 appends the base-128 continuation-bit encoding of v.
func EncodeVarintUint32(c *Cursor, v uint32) {
	encodeVarint(c, uint64(v))
}

// EncodeVarintUint64 appends the base-128 continuation-bit encoding of v.
func EncodeVarintUint64(c *Cursor, v uint64) {
	encodeVarint(c, v)
}

func encodeVarint(c *Cursor, v uint64) {
	n := unsignedSize(v)
	start := len(c.Buf)
	c.Buf = append(c.Buf, make([]byte, n)...)
	for i := n - 1; i >= 0; i-- {
		b := byte(v & uint64(dataMask))
		if i != n-1 {
			b |= continuationBit
		}
		c.Buf[start+i] = b
		v >>= dataBits
	}
	c.Pos += n
}

// DecodeVarintUint32 reads a base-128 varint and returns it as a uint32,
// refusing to read past the end of the buffer.
func DecodeVarintUint32(c *Cursor) (uint32, error) {
	v, err := decodeVarint(c, MaxVarintLen32)
	return uint32(v), err
}

// DecodeVarintUint64 reads a base-128 varint and returns it as a uint64,
// refusing to read past the end of the buffer.
func DecodeVarintUint64(c *Cursor) (uint64, error) {
	return decodeVarint(c, MaxVarintLen64)
}

func decodeVarint(c *Cursor, maxLen int) (uint64, error) {
	var v uint64
	start := c.Pos
	for i := 0; ; i++ {
		if c.Pos >= len(c.Buf) {
			return 0, base.Errorf(base.KindIO, "codec: varint decode ran past end of buffer at offset %d", start)
		}
		if i >= maxLen {
			return 0, base.Errorf(base.KindCorruption, "codec: varint at offset %d exceeds %d bytes", start, maxLen)
		}
		b := c.Buf[c.Pos]
		c.Pos++
		v = (v << dataBits) | uint64(b&dataMask)
		if b&continuationBit == 0 {
			break
		}
	}
	return v, nil
}

// SkipVarint advances past a varint without decoding its value.
func SkipVarint(c *Cursor) error {
	start := c.Pos
	for {
		if c.Pos >= len(c.Buf) {
			return base.Errorf(base.KindIO, "codec: varint skip ran past end of buffer at offset %d", start)
		}
		b := c.Buf[c.Pos]
		c.Pos++
		if b&continuationBit == 0 {
			return nil
		}
	}
}

// EncodeFixedUint32 writes v as a big-endian fixed-width integer occupying
// exactly width bytes (1-4). The width is a structural constant at the call
// site, never encoded in the bytes themselves, matching spec.md §3.
func EncodeFixedUint32(c *Cursor, v uint32, width int) {
	base.Assert(width >= 1 && width <= 4, "codec: invalid fixed uint32 width")
	start := len(c.Buf)
	c.Buf = append(c.Buf, make([]byte, width)...)
	for i := width - 1; i >= 0; i-- {
		c.Buf[start+i] = byte(v)
		v >>= 8
	}
	c.Pos += width
}

// DecodeFixedUint32 reads a big-endian fixed-width integer of the given
// width (1-4) and returns it as a uint32.
func DecodeFixedUint32(c *Cursor, width int) (uint32, error) {
	base.Assert(width >= 1 && width <= 4, "codec: invalid fixed uint32 width")
	if c.Pos+width > len(c.Buf) {
		return 0, base.Errorf(base.KindIO, "codec: fixed uint32 decode (width %d) ran past end of buffer at offset %d", width, c.Pos)
	}
	var v uint32
	for i := 0; i < width; i++ {
		v = (v << 8) | uint32(c.Buf[c.Pos+i])
	}
	c.Pos += width
	return v, nil
}

// EncodeFixedUint64 writes v as a big-endian fixed-width integer occupying
// exactly width bytes (1-8).
func EncodeFixedUint64(c *Cursor, v uint64, width int) {
	base.Assert(width >= 1 && width <= 8, "codec: invalid fixed uint64 width")
	start := len(c.Buf)
	c.Buf = append(c.Buf, make([]byte, width)...)
	for i := width - 1; i >= 0; i-- {
		c.Buf[start+i] = byte(v)
		v >>= 8
	}
	c.Pos += width
}

// DecodeFixedUint64 reads a big-endian fixed-width integer of the given
// width (1-8) and returns it as a uint64.
func DecodeFixedUint64(c *Cursor, width int) (uint64, error) {
	base.Assert(width >= 1 && width <= 8, "codec: invalid fixed uint64 width")
	if c.Pos+width > len(c.Buf) {
		return 0, base.Errorf(base.KindIO, "codec: fixed uint64 decode (width %d) ran past end of buffer at offset %d", width, c.Pos)
	}
	var v uint64
	for i := 0; i < width; i++ {
		v = (v << 8) | uint64(c.Buf[c.Pos+i])
	}
	c.Pos += width
	return v, nil
}

// EncodeFloat32 writes f as its IEEE-754 bit pattern, fixed-width 4 bytes
// big-endian.
func EncodeFloat32(c *Cursor, f float32) {
	EncodeFixedUint32(c, math.Float32bits(f), 4)
}

// DecodeFloat32 reads a 4-byte IEEE-754 bit pattern and reinterprets it as
// a float32.
func DecodeFloat32(c *Cursor) (float32, error) {
	bits, err := DecodeFixedUint32(c, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// EncodeFloat64 writes f as its IEEE-754 bit pattern, fixed-width 8 bytes
// big-endian.
func EncodeFloat64(c *Cursor, f float64) {
	EncodeFixedUint64(c, math.Float64bits(f), 8)
}

// DecodeFloat64 reads an 8-byte IEEE-754 bit pattern and reinterprets it as
// a float64.
func DecodeFloat64(c *Cursor) (float64, error) {
	bits, err := DecodeFixedUint64(c, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// EncodeBytes writes raw bytes verbatim and advances the cursor by len(b).
func EncodeBytes(c *Cursor, b []byte) {
	c.Buf = append(c.Buf, b...)
	c.Pos += len(b)
}

// DecodeBytes reads n raw bytes verbatim.
func DecodeBytes(c *Cursor, n int) ([]byte, error) {
	if c.Pos+n > len(c.Buf) {
		return nil, base.Errorf(base.KindIO, "codec: raw read of %d bytes ran past end of buffer at offset %d", n, c.Pos)
	}
	b := c.Buf[c.Pos : c.Pos+n]
	c.Pos += n
	return b, nil
}
