package bitseq

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZadoffChuUnitMagnitude(t *testing.T) {
	for _, n := range []int{139, 839} {
		for _, u := range []uint32{1, 2, 29} {
			seq := ZadoffChu(u, n)
			for i, s := range seq {
				mag := math.Hypot(real(s), imag(s))
				assert.InDeltaf(t, 1.0, mag, 1e-6, "u=%d n=%d i=%d", u, n, i)
			}
		}
	}
}

func TestPSSMSequenceFirstBits(t *testing.T) {
	seq := PSSSequence(0)
	require.Len(t, seq, 127)
	base := PSSMSequence()
	require.Equal(t, []byte{0, 1, 1, 0, 1, 1, 1}, base[:7])
}

func TestPSSCyclicShift(t *testing.T) {
	a := PSSSequence(0)
	b := PSSSequence(1)
	require.Len(t, a, 127)
	require.Len(t, b, 127)
	assert.NotEqual(t, a, b)
}

func TestSSSDeterminism(t *testing.T) {
	seq := SSSSequence(45, 0)
	require.Len(t, seq, 127)
	for _, v := range seq {
		assert.InDelta(t, 0, imag(v), 1e-9)
		mag := math.Abs(real(v))
		assert.InDelta(t, 1.0, mag, 1e-9)
	}
}

func TestCRCRoundTrip(t *testing.T) {
	payload := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1, 0, 0, 0, 1, 1, 0, 1, 0, 1}
	for _, kind := range []CRCPoly{CRC24A, CRC24B, CRC24C, CRC16} {
		withCRC := Attach(kind, payload)
		assert.True(t, Check(kind, withCRC), "kind=%d", kind)
	}
}

func TestCRCDetectsCorruption(t *testing.T) {
	payload := []byte{1, 1, 0, 0, 1, 0, 1, 0}
	withCRC := Attach(CRC16, payload)
	withCRC[0] ^= 1
	assert.False(t, Check(CRC16, withCRC))
}

func TestGoldSequenceDeterministic(t *testing.T) {
	a := GoldSequence(42, 64)
	b := GoldSequence(42, 64)
	assert.Equal(t, a, b)
	c := GoldSequence(43, 64)
	assert.NotEqual(t, a, c)
}

func TestGoldQPSKAmplitude(t *testing.T) {
	bits := GoldSequence(1, 20)
	syms := GoldQPSK(bits)
	for _, s := range syms {
		mag := math.Hypot(real(s), imag(s))
		assert.InDelta(t, 1.0, mag, 1e-9)
	}
}

func TestModulationEnergyNormalization(t *testing.T) {
	cases := []struct {
		order    ModOrder
		expected float64
	}{
		{ModQPSK, 1.0},
		{Mod16QAM, 1.0},
		{Mod64QAM, 1.0},
		{Mod256QAM, 1.0},
	}
	for _, c := range cases {
		n := c.order.BitsPerSymbol()
		numPoints := 1 << n
		bits := make([]byte, n*numPoints)
		for s := 0; s < numPoints; s++ {
			for b := 0; b < n; b++ {
				bits[s*n+b] = byte((s >> (n - 1 - b)) & 1)
			}
		}
		syms := Modulate(c.order, bits)
		require.NotEmpty(t, syms)
		var avgEnergy float64
		for _, s := range syms {
			avgEnergy += real(s)*real(s) + imag(s)*imag(s)
		}
		avgEnergy /= float64(len(syms))
		assert.InDelta(t, c.expected, avgEnergy, 1e-9)
	}
}

func TestPackUnpackUint(t *testing.T) {
	bits := PackUint(0b1011, 4)
	assert.Equal(t, []byte{1, 0, 1, 1}, bits)
	assert.Equal(t, uint64(0b1011), UnpackUint(bits))
}

func TestPackUnpackBytes(t *testing.T) {
	orig := []byte{0xAB, 0xCD}
	bits := PackBytes(orig)
	require.Len(t, bits, 16)
	assert.Equal(t, orig, UnpackBytes(bits))
}
