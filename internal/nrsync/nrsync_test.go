package nrsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNIDDecomposition(t *testing.T) {
	nid1, nid2 := NID(500)
	assert.Equal(t, 166, nid1)
	assert.Equal(t, 2, nid2)
	assert.Equal(t, 500, 3*nid1+nid2)
}

func TestPSSAndSSSLength(t *testing.T) {
	pss := PSS(500)
	sss := SSS(500)
	require.Len(t, pss, 127)
	require.Len(t, sss, 127)
}

func TestPBCHDMRSAmplitude(t *testing.T) {
	dmrs := PBCHDMRS(500, 0, 4, 0)
	require.Len(t, dmrs, 60)
	for _, s := range dmrs {
		mag := real(s)*real(s) + imag(s)*imag(s)
		assert.InDelta(t, 1.0, mag, 1e-9)
	}
}

func TestPBCHDMRSVariesWithSSBIndex(t *testing.T) {
	a := PBCHDMRS(500, 0, 4, 0)
	b := PBCHDMRS(500, 1, 4, 0)
	assert.NotEqual(t, a, b)
}
