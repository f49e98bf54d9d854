package prach

import (
	"math"

	"github.com/openran-go/gnb-core/internal/bitseq"
)

// PreambleDetection is one detected preamble within a PRACH occasion.
type PreambleDetection struct {
	PreambleIndex        uint8
	TimingAdvanceSamples uint32
	TimingAdvanceUs      float32
	DetectionMetric      float32
	PowerDBm             float32
}

// DetectionResult is the outcome of processing one PRACH occasion.
type DetectionResult struct {
	Frame              uint32
	Slot               uint8
	RSSIDBm            float32
	Preambles          []PreambleDetection
	TimeResolutionUs   float32
	MaxTimingAdvanceUs float32
}

func emptyResult(frame uint32, slot uint8, rssi float32) DetectionResult {
	return DetectionResult{Frame: frame, Slot: slot, RSSIDBm: rssi}
}

// Detector correlates received PRACH occasions against the cell's root
// Zadoff-Chu sequence family to detect UE preamble transmissions.
type Detector struct {
	cellID        int
	config        RachConfigCommon
	rootSequences [][]complex128
}

// NewDetector constructs a Detector for the given cell and RACH config.
func NewDetector(cellID int, config RachConfigCommon) *Detector {
	return &Detector{cellID: cellID, config: config}
}

// IsOccasion reports whether frame/slot carries a scheduled PRACH occasion
// for this cell's configuration index (FDD, 15 kHz subframe-to-slot mapping).
func (d *Detector) IsOccasion(frame uint32, slot uint8) bool {
	cfg, ok := ConfigFDD(d.config.PrachConfigIndex)
	if !ok {
		return false
	}
	frameInPeriod := uint8(frame % cfg.X)
	if !contains(cfg.Y, frameInPeriod) {
		return false
	}
	return contains(cfg.SubframeNumbers, slot)
}

// Detect runs PRACH preamble detection over one occasion's received samples.
func (d *Detector) Detect(samples []complex128, frame uint32, slot uint8) DetectionResult {
	if !d.IsOccasion(frame, slot) {
		return emptyResult(frame, slot, -140.0)
	}

	cfg, ok := ConfigFDD(d.config.PrachConfigIndex)
	if !ok {
		return emptyResult(frame, slot, -140.0)
	}

	seqLen := cfg.Format.SequenceLength()
	isLong := cfg.Format.IsLong()

	var energy float64
	for _, s := range samples {
		energy += real(s)*real(s) + imag(s)*imag(s)
	}
	rssi := energy / float64(len(samples))
	rssiDBm := float32(10 * math.Log10(rssi))

	if rssiDBm < -120.0 {
		return emptyResult(frame, slot, rssiDBm)
	}

	if len(d.rootSequences) == 0 {
		d.generateRootSequences(seqLen)
	}

	nCs := cyclicShiftN_cs(d.config.ZeroCorrelationZoneConfig)
	numShifts := 1
	if nCs > 0 {
		numShifts = int(uint32(seqLen) / nCs)
		if numShifts > MaxNumPreambles {
			numShifts = MaxNumPreambles
		}
		if numShifts < 1 {
			numShifts = 1
		}
	}
	numSequences := (MaxNumPreambles + numShifts - 1) / numShifts
	if numSequences > len(d.rootSequences) {
		numSequences = len(d.rootSequences)
	}

	threshold := detectionThreshold(rssi)
	var detected []PreambleDetection

	for seqIdx := 0; seqIdx < numSequences; seqIdx++ {
		correlation := correlateSequence(samples, d.rootSequences[seqIdx], isLong)

		for shiftIdx := 0; shiftIdx < numShifts; shiftIdx++ {
			preambleIdx := seqIdx*numShifts + shiftIdx
			if preambleIdx >= MaxNumPreambles {
				break
			}

			windowStart := 0
			if nCs > 0 {
				windowStart = shiftIdx * int(nCs)
			}

			peakIdx, peakVal, ok := findCorrelationPeak(correlation, windowStart, int(nCs))
			if !ok || peakVal <= threshold {
				continue
			}

			taSamples := uint32(peakIdx)
			taUs := float32(taSamples) * 1e6 / sampleRateHz

			detected = append(detected, PreambleDetection{
				PreambleIndex:        uint8(preambleIdx),
				TimingAdvanceSamples: taSamples,
				TimingAdvanceUs:      taUs,
				DetectionMetric:      float32(peakVal / threshold),
				PowerDBm:             float32(10 * math.Log10(peakVal)),
			})
		}
	}

	sortByMetricDescending(detected)

	return DetectionResult{
		Frame:              frame,
		Slot:               slot,
		RSSIDBm:            rssiDBm,
		Preambles:          detected,
		TimeResolutionUs:   float32(1e6 / sampleRateHz),
		MaxTimingAdvanceUs: float32(float64(nCs) * 1e6 / (1.25e3 * float64(seqLen))),
	}
}

func (d *Detector) generateRootSequences(seqLen int) {
	maxRoots := uint32(MaxNumRootSequencesLong)
	if seqLen != LongSequenceLength {
		maxRoots = MaxNumRootSequencesShort
	}

	root := uint32(d.config.PrachRootSeqIndex)
	sequences := make([][]complex128, 0, MaxNumPreambles)
	for i := 0; i < MaxNumPreambles; i++ {
		sequences = append(sequences, bitseq.ZadoffChu(root, seqLen))
		root = (root + 1) % maxRoots
	}
	d.rootSequences = sequences
}

// correlateSequence computes the frequency-domain matched-filter correlation
// between samples and the root sequence, returning a time-domain power
// profile via an inverse DFT (2048 points for long sequences, 256 for short
// ones, matching the original's plan sizes).
func correlateSequence(samples, rootSeq []complex128, isLong bool) []float64 {
	seqLen := len(rootSeq)
	idftSize := shortIDFTSize
	if isLong {
		idftSize = longIDFTSize
	}

	buf := make([]complex128, idftSize)
	signalLen := len(samples)
	if signalLen > seqLen {
		signalLen = seqLen
	}

	for i := 0; i < signalLen; i++ {
		prod := samples[i] * complex(real(rootSeq[i]), -imag(rootSeq[i]))
		if i < seqLen/2+1 {
			buf[i] = prod
		} else {
			buf[idftSize-(seqLen-i)] = prod
		}
	}

	ifft(buf)

	normFactor := 1.0 / (float64(idftSize) * float64(seqLen))
	correlation := make([]float64, idftSize)
	for i, c := range buf {
		correlation[i] = (real(c)*real(c) + imag(c)*imag(c)) * normFactor
	}
	return correlation
}

func findCorrelationPeak(correlation []float64, windowStart, windowSize int) (int, float64, bool) {
	windowEnd := windowStart + windowSize
	if windowEnd > len(correlation) {
		windowEnd = len(correlation)
	}
	maxIdx := windowStart
	maxVal := 0.0
	for i := windowStart; i < windowEnd; i++ {
		if correlation[i] > maxVal {
			maxVal = correlation[i]
			maxIdx = i
		}
	}
	if maxVal > 0.0 {
		return maxIdx, maxVal, true
	}
	return 0, 0, false
}

func detectionThreshold(rssi float64) float64 {
	const noiseFactor = 3.0
	const minThreshold = 0.01
	t := rssi * noiseFactor
	if t < minThreshold {
		return minThreshold
	}
	return t
}

func sortByMetricDescending(preambles []PreambleDetection) {
	for i := 1; i < len(preambles); i++ {
		for j := i; j > 0 && preambles[j].DetectionMetric > preambles[j-1].DetectionMetric; j-- {
			preambles[j], preambles[j-1] = preambles[j-1], preambles[j]
		}
	}
}
