package ofdm

import (
	"math"
	"testing"

	"github.com/openran-go/gnb-core/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPLengthsNormal(t *testing.T) {
	s := NewSoftware(256, 14, CPNormal, 0)
	assert.Equal(t, ceilDiv(256*160, 2048), s.CPLength(0))
	assert.Equal(t, ceilDiv(256*160, 2048), s.CPLength(7))
	assert.Equal(t, ceilDiv(256*144, 2048), s.CPLength(1))
}

func TestCPLengthsExtended(t *testing.T) {
	s := NewSoftware(256, 12, CPExtended, 0)
	for sym := 0; sym < 12; sym++ {
		assert.Equal(t, ceilDiv(256*512, 2048), s.CPLength(sym))
	}
}

func TestModulateSingleToneEnergy(t *testing.T) {
	fftSize := 64
	g := grid.New(fftSize, 14, fftSize, false)
	g.ClearSymbol(1)
	require.NoError(t, g.MapRE(0, 1, complex(1, 0)))

	s := NewSoftware(fftSize, 14, CPNormal, 0)
	samples, err := s.Modulate(g, 1)
	require.NoError(t, err)

	cpLen := s.CPLength(1)
	td := samples[cpLen:]
	var power float64
	for _, v := range td {
		power += real(v)*real(v) + imag(v)*imag(v)
	}
	power /= float64(len(td))
	expected := 1.0 / float64(fftSize)
	assert.InDelta(t, 0, 10*math.Log10(power/expected), 0.1)
}

func TestCPContiguity(t *testing.T) {
	fftSize := 64
	g := grid.New(fftSize, 14, fftSize, false)
	g.ClearSymbol(2)
	require.NoError(t, g.MapRE(5, 2, complex(1, 1)))

	s := NewSoftware(fftSize, 14, CPNormal, 0)
	samples, err := s.Modulate(g, 2)
	require.NoError(t, err)

	cpLen := s.CPLength(2)
	for i := 0; i < cpLen; i++ {
		assert.InDelta(t, real(samples[i]), real(samples[cpLen+fftSize-cpLen+i]), 1e-9)
		assert.InDelta(t, imag(samples[i]), imag(samples[cpLen+fftSize-cpLen+i]), 1e-9)
	}
}

func TestSymbolLength(t *testing.T) {
	s := NewSoftware(256, 14, CPNormal, 0)
	assert.Equal(t, 256+s.CPLength(0), s.SymbolLength(0))
}
