// Package grid implements the per-slot resource grid: a complex-valued
// subcarrier x symbol matrix with logical-to-FFT-bin mapping, DC nulling,
// and the channel-specific mapping primitives (3GPP TS 38.211 §4.4, as
// described in 3GPP TS 38.211 §4.4).
package grid

import "fmt"

// Grid is the frequency-domain resource grid for one slot: shape
// (fftSize, symbolsPerSlot). Exclusively owned by the downlink producer
// loop; never shared mutably (§5).
type Grid struct {
	FFTSize        int
	SymbolsPerSlot int
	usedBandwidth  int // number of used subcarriers, centered on DC
	dcNull         bool

	cols [][]complex128 // cols[symbol][fftBin]
}

// New allocates a grid for the given FFT size, symbol count, used-bandwidth
// window (in subcarriers, must be <= fftSize), and DC-null policy.
func New(fftSize, symbolsPerSlot, usedBandwidth int, dcNull bool) *Grid {
	cols := make([][]complex128, symbolsPerSlot)
	for s := range cols {
		cols[s] = make([]complex128, fftSize)
	}
	return &Grid{
		FFTSize:        fftSize,
		SymbolsPerSlot: symbolsPerSlot,
		usedBandwidth:  usedBandwidth,
		dcNull:         dcNull,
		cols:           cols,
	}
}

// bin maps a signed logical subcarrier index (relative to DC) to its FFT
// bin: non-negative sc maps to FFT/2+sc, negative sc wraps to FFT+sc.
func (g *Grid) bin(sc int) (int, error) {
	half := g.usedBandwidth / 2
	if sc < -half || sc >= half+(g.usedBandwidth%2) {
		return 0, fmt.Errorf("grid: subcarrier %d outside used-bandwidth window [%d,%d)", sc, -half, half+(g.usedBandwidth%2))
	}
	if sc >= 0 {
		return g.FFTSize/2 + sc, nil
	}
	return g.FFTSize + sc, nil
}

// Clear zeroes every symbol column.
func (g *Grid) Clear() {
	for s := range g.cols {
		g.ClearSymbol(s)
	}
}

// ClearSymbol zeroes one symbol column.
func (g *Grid) ClearSymbol(s int) {
	col := g.cols[s]
	for i := range col {
		col[i] = 0
	}
}

// MapRE writes v to the resource element at (logical subcarrier sc, symbol
// s). An out-of-window subcarrier is a fatal programmer error per §7, so the
// caller should treat a non-nil error as fatal, not transient.
func (g *Grid) MapRE(sc, s int, v complex128) error {
	bin, err := g.bin(sc)
	if err != nil {
		return err
	}
	g.cols[s][bin] = v
	if g.dcNull {
		g.cols[s][0] = 0
	}
	return nil
}

// MapRB writes 12 values v[0..12) to the resource block starting at logical
// subcarrier rb*12.
func (g *Grid) MapRB(rb, s int, v [12]complex128) error {
	base := rb * 12
	for i := 0; i < 12; i++ {
		if err := g.MapRE(base+i, s, v[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetSymbol returns the symbol column s as a zero-copy view (callers must
// not retain it past the next ClearSymbol on the same column).
func (g *Grid) GetSymbol(s int) []complex128 {
	return g.cols[s]
}

// NonZeroInRange counts non-zero bins within [scStart, scEnd) in symbol s,
// used by tests to assert mapping invariants (P10).
func (g *Grid) NonZeroInRange(s, scStart, scEnd int) int {
	count := 0
	for sc := scStart; sc < scEnd; sc++ {
		bin, err := g.bin(sc)
		if err != nil {
			continue
		}
		if g.cols[s][bin] != 0 {
			count++
		}
	}
	return count
}

// DCZero reports whether the DC bin of symbol s is zero.
func (g *Grid) DCZero(s int) bool {
	return g.cols[s][0] == 0
}
