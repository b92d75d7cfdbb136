package codec_test

import (
	"testing"

	"github.com/fschiettecatte/mpscore/codec"
	"github.com/stretchr/testify/require"
)

// TestVarintRoundTrip covers S1 from spec.md §8: the five literal byte
// sequences plus a property check that decode(encode(v)) == v for a spread
// of values and that the cursor always advances by the declared size.
func TestVarintRoundTrip(t *testing.T) {
	cases := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x81, 0x80, 0x00}},
	}
	for _, tc := range cases {
		c := codec.NewCursor(nil)
		codec.EncodeVarintUint32(c, tc.v)
		require.Equal(t, tc.want, c.Buf)
		require.Equal(t, len(tc.want), c.Pos)

		rc := codec.NewCursor(tc.want)
		got, err := codec.DecodeVarintUint32(rc)
		require.NoError(t, err)
		require.Equal(t, tc.v, got)
		require.Equal(t, len(tc.want), rc.Pos)
	}
}

func TestVarintRoundTripProperty(t *testing.T) {
	values := []uint32{0, 1, 63, 64, 127, 128, 129, 1 << 13, 1<<14 - 1, 1 << 14,
		1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28, ^uint32(0)}
	for _, v := range values {
		c := codec.NewCursor(nil)
		codec.EncodeVarintUint32(c, v)
		require.Equal(t, codec.VarintSizeUint32(v), c.Pos)

		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeVarintUint32(rc)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(c.Buf), rc.Pos)
	}
}

func TestVarint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 1 << 34, 1<<63 - 1, ^uint64(0)}
	for _, v := range values {
		c := codec.NewCursor(nil)
		codec.EncodeVarintUint64(c, v)
		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeVarintUint64(rc)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	for width := 1; width <= 4; width++ {
		var max uint32 = 0
		for i := 0; i < width*8; i++ {
			max = (max << 1) | 1
		}
		c := codec.NewCursor(nil)
		codec.EncodeFixedUint32(c, max, width)
		require.Equal(t, width, c.Pos)
		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeFixedUint32(rc, width)
		require.NoError(t, err)
		require.Equal(t, max, got)
	}
}

func TestFixedWidth64RoundTrip(t *testing.T) {
	for width := 1; width <= 8; width++ {
		var max uint64 = 0
		for i := 0; i < width*8; i++ {
			max = (max << 1) | 1
		}
		c := codec.NewCursor(nil)
		codec.EncodeFixedUint64(c, max, width)
		require.Equal(t, width, c.Pos)
		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeFixedUint64(rc, width)
		require.NoError(t, err)
		require.Equal(t, max, got)
	}
}

func TestFloatRoundTrip(t *testing.T) {
	for _, f := range []float32{0, 1.5, -1.5, 3.1415927, -0.0} {
		c := codec.NewCursor(nil)
		codec.EncodeFloat32(c, f)
		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeFloat32(rc)
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	for _, f := range []float64{0, 1.5, -1.5, 3.14159265358979, -0.0} {
		c := codec.NewCursor(nil)
		codec.EncodeFloat64(c, f)
		rc := codec.NewCursor(c.Buf)
		got, err := codec.DecodeFloat64(rc)
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
}

func TestDecodePastEndIsError(t *testing.T) {
	c := codec.NewCursor([]byte{0x81})
	_, err := codec.DecodeVarintUint32(c)
	require.Error(t, err)

	c2 := codec.NewCursor([]byte{0x01, 0x02})
	_, err = codec.DecodeFixedUint32(c2, 4)
	require.Error(t, err)
}
