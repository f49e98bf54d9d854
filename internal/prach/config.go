// Package prach implements PRACH preamble detection per 3GPP TS 38.211:
// root Zadoff-Chu sequence generation, frequency-domain correlation via
// IDFT, cyclic-shift peak search, and timing-advance estimation. Grounded on layers/src/phy/prach.rs.
package prach

const (
	// LongSequenceLength is N_ZC for formats 0-3.
	LongSequenceLength = 839
	// ShortSequenceLength is N_ZC for formats A1-C2.
	ShortSequenceLength = 139
	// MaxNumPreambles is the number of preamble indices per PRACH occasion.
	MaxNumPreambles = 64
	// MaxNumRootSequencesLong bounds root-index wraparound for long formats.
	MaxNumRootSequencesLong = 838
	// MaxNumRootSequencesShort bounds root-index wraparound for short formats.
	MaxNumRootSequencesShort = 138

	longIDFTSize  = 2048
	shortIDFTSize = 256

	sampleRateHz = 30.72e6
)

// Format is the PRACH preamble format (3GPP TS 38.211 Table 6.3.3.1-1/2).
type Format int

const (
	Format0 Format = iota
	Format1
	Format2
	Format3
	FormatA1
	FormatA2
	FormatA3
	FormatB1
	FormatB4
	FormatC0
	FormatC2
)

// IsLong reports whether this format uses the 839-sample long sequence.
func (f Format) IsLong() bool {
	switch f {
	case Format0, Format1, Format2, Format3:
		return true
	default:
		return false
	}
}

// SequenceLength returns N_ZC for this format.
func (f Format) SequenceLength() int {
	if f.IsLong() {
		return LongSequenceLength
	}
	return ShortSequenceLength
}

// NumSymbols returns the number of PRACH OFDM symbols this format occupies.
func (f Format) NumSymbols() int {
	switch f {
	case Format0:
		return 1
	case Format1:
		return 2
	case Format2, Format3:
		return 4
	case FormatA1:
		return 2
	case FormatA2:
		return 4
	case FormatA3:
		return 6
	case FormatB1:
		return 2
	case FormatB4:
		return 12
	case FormatC0:
		return 1
	case FormatC2:
		return 4
	default:
		return 1
	}
}

// RestrictedSet selects the cyclic-shift restriction scheme for high-speed
// cells; this module only implements the unrestricted set.
type RestrictedSet int

const (
	UnrestrictedSet RestrictedSet = iota
	RestrictedSetTypeA
	RestrictedSetTypeB
)

// SubcarrierSpacing is the PRACH subcarrier spacing family.
type SubcarrierSpacing int

const (
	SCS1_25kHz SubcarrierSpacing = iota
	SCS5kHz
)

// ConfigurationIndex is one row of 3GPP TS 38.211 Table 6.3.3.2-2 (FDD).
type ConfigurationIndex struct {
	Format                    Format
	X                         uint32
	Y                         []uint8
	SubframeNumbers           []uint8
	StartingSymbol            uint8
	NumSlotsWithinSubframe    uint8
	NumOccasionsWithinSlot    uint8
	Duration                  uint8
}

// configFDD is a transcription of the first 8 rows of the FDD PRACH
// configuration table, matching the original source's coverage.
var configFDD = map[uint8]ConfigurationIndex{
	0: {Format: Format0, X: 16, Y: []uint8{1}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	1: {Format: Format0, X: 8, Y: []uint8{1}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	2: {Format: Format0, X: 4, Y: []uint8{1}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	3: {Format: Format0, X: 2, Y: []uint8{0}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	4: {Format: Format0, X: 2, Y: []uint8{1}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	5: {Format: Format0, X: 2, Y: []uint8{0, 1}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	6: {Format: Format0, X: 1, Y: []uint8{0}, SubframeNumbers: []uint8{9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
	7: {Format: Format0, X: 1, Y: []uint8{0}, SubframeNumbers: []uint8{8, 9}, NumSlotsWithinSubframe: 1, NumOccasionsWithinSlot: 1, Duration: 1},
}

// ConfigFDD looks up a row of Table 6.3.3.2-2 by PRACH configuration index.
func ConfigFDD(index uint8) (ConfigurationIndex, bool) {
	c, ok := configFDD[index]
	return c, ok
}

func contains(list []uint8, v uint8) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// RachConfigCommon is the broadcast RACH configuration (SIB1 RACH-ConfigCommon).
type RachConfigCommon struct {
	PrachConfigIndex          uint8
	RAResponseWindowSlots     uint32
	Msg1FDM                   uint32
	Msg1FrequencyStart        uint32
	ZeroCorrelationZoneConfig uint16
	PreambleRxTargetPowerDBm  int16
	PreambleTransMax          uint8
	PowerRampingStepDB        uint8
	TotalNumRAPreambles       uint8
	PrachRootSeqIndex         uint16
	Msg1SCS                   SubcarrierSpacing
	RestrictedSet             RestrictedSet
}

// DefaultRachConfigCommon mirrors the original's RachConfigCommon::default().
func DefaultRachConfigCommon() RachConfigCommon {
	return RachConfigCommon{
		PrachConfigIndex:          0,
		RAResponseWindowSlots:     10,
		Msg1FDM:                   1,
		Msg1FrequencyStart:        0,
		ZeroCorrelationZoneConfig: 12,
		PreambleRxTargetPowerDBm:  -104,
		PreambleTransMax:          7,
		PowerRampingStepDB:        4,
		TotalNumRAPreambles:       64,
		PrachRootSeqIndex:         0,
		Msg1SCS:                   SCS1_25kHz,
		RestrictedSet:             UnrestrictedSet,
	}
}

// cyclicShiftTable maps zeroCorrelationZoneConfig to N_cs for the
// unrestricted set (3GPP TS 38.211 Table 6.3.3.1-5, long sequence).
var cyclicShiftTable = map[uint16]uint32{
	0: 0, 1: 13, 2: 15, 3: 18, 4: 22, 5: 26, 6: 32, 7: 38,
	8: 46, 9: 59, 10: 76, 11: 93, 12: 119, 13: 167, 14: 279, 15: 419,
}

func cyclicShiftN_cs(zccz uint16) uint32 {
	if v, ok := cyclicShiftTable[zccz]; ok {
		return v
	}
	return 119
}
