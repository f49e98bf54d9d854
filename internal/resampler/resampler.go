// Package resampler implements a polyphase FIR fractional-rate resampler
// used to bridge the PHY's native sample rate and the RF transport's sample
// rate when they differ (3GPP-adjacent signal processing, no 3GPP spec
// section — grounded on layers/src/phy/resampler.rs).
package resampler

import (
	"math"
)

// Config describes the input/output rates and filter design parameters.
type Config struct {
	InputRate    float64
	OutputRate   float64
	FilterOrder  int
	CutoffFactor float64
}

// DefaultConfig returns the 15.36 MHz -> 11.52 MHz (4:3) configuration.
func DefaultConfig() Config {
	return Config{
		InputRate:    15.36e6,
		OutputRate:   11.52e6,
		FilterOrder:  64,
		CutoffFactor: 0.45,
	}
}

// Resampler is a polyphase FIR interpolator/decimator: it interpolates by L,
// filters, then decimates by M, implemented as a single polyphase filter
// bank so the interpolation is never materialized.
type Resampler struct {
	interpFactor      int
	decimFactor       int
	polyphaseFilters  [][]float64
	delayLine         []complex128
	phaseIndex        int
	sampleAccumulator int
	filterOrder       int
}

// New builds a Resampler for the given configuration.
func New(config Config) *Resampler {
	ratio := config.OutputRate / config.InputRate
	interp, decim := rationalApproximation(ratio, 1000)

	cutoffHz := config.CutoffFactor * math.Min(config.OutputRate, config.InputRate) / 2.0
	taps := designLowpassFilter(config.FilterOrder*interp, cutoffHz, config.InputRate*float64(interp))

	gain := float64(interp)
	for i := range taps {
		taps[i] *= gain
	}

	polyphase := make([][]float64, interp)
	for p := range polyphase {
		polyphase[p] = make([]float64, config.FilterOrder)
	}
	for i, tap := range taps {
		phase := i % interp
		tapIdx := i / interp
		if tapIdx < config.FilterOrder {
			polyphase[phase][tapIdx] = tap
		}
	}

	return &Resampler{
		interpFactor:     interp,
		decimFactor:      decim,
		polyphaseFilters: polyphase,
		delayLine:        make([]complex128, config.FilterOrder),
		filterOrder:      config.FilterOrder,
	}
}

// Process filters and resamples a block of input samples, returning the
// corresponding output block; state carries across calls.
func (r *Resampler) Process(input []complex128) []complex128 {
	var output []complex128

	for _, sample := range input {
		copy(r.delayLine[1:], r.delayLine[:len(r.delayLine)-1])
		r.delayLine[0] = sample

		for r.sampleAccumulator < r.interpFactor {
			filter := r.polyphaseFilters[r.phaseIndex]
			var out complex128
			for i, coeff := range filter {
				out += r.delayLine[i] * complex(coeff, 0)
			}
			output = append(output, out)

			r.sampleAccumulator += r.decimFactor
			r.phaseIndex = (r.phaseIndex + r.decimFactor) % r.interpFactor
		}
		r.sampleAccumulator -= r.interpFactor
	}

	return output
}

// OutputSize returns the expected output length for a given input length,
// accounting for accumulated fractional phase state.
func (r *Resampler) OutputSize(inputSize int) int {
	return (inputSize*r.interpFactor + r.sampleAccumulator) / r.decimFactor
}

// Reset clears the delay line and phase state.
func (r *Resampler) Reset() {
	for i := range r.delayLine {
		r.delayLine[i] = 0
	}
	r.phaseIndex = 0
	r.sampleAccumulator = 0
}

// rationalApproximation finds a rational p/q approximation of value via
// continued fractions, bounded by maxDenominator.
func rationalApproximation(value float64, maxDenominator int) (int, int) {
	a := math.Floor(value)
	h1, k1 := 1.0, 0.0
	h, k := a, 1.0
	remainder := value - a

	for int(k) <= maxDenominator && math.Abs(remainder) > 1e-10 {
		x := 1.0 / remainder
		a = math.Floor(x)
		remainder = x - a

		hTemp, kTemp := h, k
		h = a*h + h1
		k = a*k + k1
		h1, k1 = hTemp, kTemp
	}

	return int(math.Abs(h)), int(math.Abs(k))
}

// designLowpassFilter builds a windowed-sinc lowpass FIR: sinc truncated to
// numTaps and shaped by a Hamming window, normalized to unity DC gain.
func designLowpassFilter(numTaps int, cutoffHz, sampleRate float64) []float64 {
	taps := make([]float64, numTaps)
	center := float64(numTaps-1) / 2.0
	omegaC := 2 * math.Pi * (cutoffHz / sampleRate)

	for i := 0; i < numTaps; i++ {
		n := float64(i) - center
		var sinc float64
		if math.Abs(n) < 1e-10 {
			sinc = omegaC / math.Pi
		} else {
			sinc = math.Sin(omegaC*n) / (math.Pi * n)
		}
		window := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(numTaps-1))
		taps[i] = sinc * window
	}

	var sum float64
	for _, t := range taps {
		sum += t
	}
	for i := range taps {
		taps[i] /= sum
	}
	return taps
}
