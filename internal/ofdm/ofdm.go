// Package ofdm implements the OFDM modulator: per-symbol IFFT with cyclic
// prefix, baseband scaling, and a pluggable Backend contract so a
// hardware-accelerated implementation can stand in for the software FFT path
// (3GPP TS 38.211 §5.3.1).
package ofdm

import (
	"fmt"
	"math"

	"github.com/openran-go/gnb-core/internal/grid"
)

// Backend is the modulation contract a software or hardware-accelerated
// implementation must satisfy; build-time backend selection must not change
// it.
type Backend interface {
	Modulate(g *grid.Grid, symbol int) ([]complex128, error)
	ModulateSlot(g *grid.Grid) ([]complex128, error)
	SymbolLength(symbol int) int
	ConfigureBandwidth(rbs int, backoffDB float64)
}

// CPKind selects normal or extended cyclic prefix.
type CPKind int

const (
	CPNormal CPKind = iota
	CPExtended
)

// Software is the default, portable OFDM backend.
type Software struct {
	fftSize        int
	symbolsPerSlot int
	cpKind         CPKind
	gainLinear     float64
}

// NewSoftware constructs a software OFDM backend for the given FFT size,
// symbols-per-slot, and CP kind, with baseband backoff in dB (0 dB => unity
// gain).
func NewSoftware(fftSize, symbolsPerSlot int, cpKind CPKind, backoffDB float64) *Software {
	s := &Software{fftSize: fftSize, symbolsPerSlot: symbolsPerSlot, cpKind: cpKind}
	s.ConfigureBandwidth(0, backoffDB)
	return s
}

// ConfigureBandwidth sets the baseband gain from a backoff in dB; rbs is
// accepted for interface parity with hardware backends that size internal
// buffers from it, but the software backend's buffers are sized from
// fftSize alone.
func (s *Software) ConfigureBandwidth(rbs int, backoffDB float64) {
	s.gainLinear = math.Pow(10, backoffDB/20)
}

// CPLength returns the cyclic-prefix length in samples for the given symbol
// index within a slot, per 3GPP TS 38.211 §5.3.1: ceil(FFT*144/2048) for
// normal-CP symbols other than 0/7, ceil(FFT*160/2048) for symbols 0 and 7,
// ceil(FFT*512/2048) uniformly under extended CP.
func (s *Software) CPLength(symbol int) int {
	if s.cpKind == CPExtended {
		return ceilDiv(s.fftSize*512, 2048)
	}
	if symbol == 0 || symbol == 7 {
		return ceilDiv(s.fftSize*160, 2048)
	}
	return ceilDiv(s.fftSize*144, 2048)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// SymbolLength returns FFT size + CP length for the given symbol.
func (s *Software) SymbolLength(symbol int) int {
	return s.fftSize + s.CPLength(symbol)
}

// Modulate runs the IFFT + CP chain for one symbol column of the grid: copy
// the frequency-domain column, run the inverse FFT, apply baseband gain,
// prepend the cyclic prefix.
func (s *Software) Modulate(g *grid.Grid, symbol int) ([]complex128, error) {
	if symbol < 0 || symbol >= s.symbolsPerSlot {
		return nil, fmt.Errorf("ofdm: symbol %d out of range", symbol)
	}
	col := g.GetSymbol(symbol)
	if len(col) != s.fftSize {
		return nil, fmt.Errorf("ofdm: grid FFT size %d does not match backend FFT size %d", len(col), s.fftSize)
	}

	td := make([]complex128, s.fftSize)
	copy(td, col)
	ifftRadix2(td)

	for i := range td {
		td[i] *= complex(s.gainLinear, 0)
	}

	cpLen := s.CPLength(symbol)
	out := make([]complex128, s.fftSize+cpLen)
	copy(out[:cpLen], td[s.fftSize-cpLen:])
	copy(out[cpLen:], td)
	return out, nil
}

// ModulateSlot runs Modulate for every symbol of the slot and concatenates
// the results.
func (s *Software) ModulateSlot(g *grid.Grid) ([]complex128, error) {
	var out []complex128
	for sym := 0; sym < s.symbolsPerSlot; sym++ {
		samples, err := s.Modulate(g, sym)
		if err != nil {
			return nil, err
		}
		out = append(out, samples...)
	}
	return out, nil
}
