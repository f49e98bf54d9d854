package prach

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFDDKnownEntry(t *testing.T) {
	cfg, ok := ConfigFDD(0)
	require.True(t, ok)
	assert.Equal(t, Format0, cfg.Format)
	assert.Equal(t, uint32(16), cfg.X)
	assert.Equal(t, []uint8{1}, cfg.Y)
	assert.Equal(t, []uint8{9}, cfg.SubframeNumbers)
}

func TestConfigFDDUnknownEntry(t *testing.T) {
	_, ok := ConfigFDD(250)
	assert.False(t, ok)
}

func TestIsOccasionMatchesConfigZero(t *testing.T) {
	d := NewDetector(1, DefaultRachConfigCommon())
	assert.True(t, d.IsOccasion(1, 9))
	assert.False(t, d.IsOccasion(0, 9))
	assert.False(t, d.IsOccasion(1, 0))
}

func TestGenerateRootSequencesUnitMagnitude(t *testing.T) {
	d := NewDetector(1, DefaultRachConfigCommon())
	d.generateRootSequences(LongSequenceLength)
	require.Len(t, d.rootSequences, MaxNumPreambles)
	for _, c := range d.rootSequences[0] {
		mag := math.Hypot(real(c), imag(c))
		assert.InDelta(t, 1.0, mag, 1e-9)
	}
}

func TestDetectNonOccasionReturnsEmpty(t *testing.T) {
	d := NewDetector(1, DefaultRachConfigCommon())
	result := d.Detect(make([]complex128, 839), 1, 0)
	assert.Empty(t, result.Preambles)
	assert.Equal(t, float32(-140.0), result.RSSIDBm)
}

func TestDetectWeakSignalReturnsEmpty(t *testing.T) {
	d := NewDetector(1, DefaultRachConfigCommon())
	samples := make([]complex128, 839)
	result := d.Detect(samples, 1, 9)
	assert.Empty(t, result.Preambles)
}

func TestDetectionThresholdHasFloor(t *testing.T) {
	assert.Equal(t, 0.01, detectionThreshold(0))
}

func TestSortByMetricDescending(t *testing.T) {
	preambles := []PreambleDetection{
		{PreambleIndex: 0, DetectionMetric: 1.5},
		{PreambleIndex: 1, DetectionMetric: 3.2},
		{PreambleIndex: 2, DetectionMetric: 2.0},
	}
	sortByMetricDescending(preambles)
	assert.Equal(t, uint8(1), preambles[0].PreambleIndex)
	assert.Equal(t, uint8(2), preambles[1].PreambleIndex)
	assert.Equal(t, uint8(0), preambles[2].PreambleIndex)
}

func TestIFFTRoundTripsDCImpulse(t *testing.T) {
	data := make([]complex128, 8)
	data[0] = complex(1, 0)
	ifft(data)
	for _, c := range data {
		assert.InDelta(t, 1.0, real(c), 1e-9)
		assert.InDelta(t, 0.0, imag(c), 1e-9)
	}
}
