package polar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationExactlyKInfoBits(t *testing.T) {
	code, err := New(32, 108, NMaxLog)
	require.NoError(t, err)

	info := make([]byte, 32)
	for i := range info {
		info[i] = 1
	}
	allocated := code.Allocate(info)

	count := 0
	for _, b := range allocated {
		if b == 1 {
			count++
		}
	}
	assert.Equal(t, 32, count)
	assert.Len(t, allocated, code.N)
}

func TestAllocationUsesMostReliablePositions(t *testing.T) {
	code, err := New(8, 32, NMaxLog)
	require.NoError(t, err)

	reliableSet := make(map[int]bool)
	for _, idx := range code.reliability[code.N-code.K:] {
		reliableSet[idx] = true
	}
	for i, isInfo := range code.frozen {
		assert.Equal(t, reliableSet[i], isInfo)
	}
}

func TestRateMatchProducesExactlyE(t *testing.T) {
	for _, e := range []int{50, 108, 256, 864} {
		code, err := New(24, e, NMaxLog)
		require.NoError(t, err)
		allocated := code.Allocate(make([]byte, 24))
		encoded := Encode(allocated, code.NLog)
		rm := code.RateMatch(encoded)
		assert.Len(t, rm, e)
	}
}

func TestPDCCHEncodeLength(t *testing.T) {
	payload := make([]byte, 41+24) // DCI 1_0 + CRC-24C typical size
	out, err := PDCCHEncode(payload, 4)
	require.NoError(t, err)
	assert.Len(t, out, 4*6*12*2)
}

func TestPBCHEncodeLength(t *testing.T) {
	payload := make([]byte, 32+24)
	out, err := PBCHEncode(payload, 864)
	require.NoError(t, err)
	assert.Len(t, out, 864)
}

func TestInvalidConstruction(t *testing.T) {
	_, err := New(0, 10, NMaxLog)
	assert.Error(t, err)
}
