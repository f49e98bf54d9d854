package channels

import (
	"testing"

	"github.com/openran-go/gnb-core/internal/bitseq"
	"github.com/openran-go/gnb-core/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMIBRoundTrip(t *testing.T) {
	mib := NewMIB(100, 6, 0)
	bits := mib.Encode()
	require.Len(t, bits, 24)

	decoded, err := DecodeMIB(bits)
	require.NoError(t, err)
	assert.Equal(t, mib.SFN, decoded.SFN)
	assert.Equal(t, mib.PDCCHConfigSIB1, decoded.PDCCHConfigSIB1)
	assert.Equal(t, uint8(0x60), mib.PDCCHConfigSIB1)
}

func TestBuildPBCHPayloadLength(t *testing.T) {
	mib := NewMIB(100, 6, 0)
	a := BuildPBCHPayload(mib, 100, 0, 0)
	assert.Len(t, a, 32)
}

func TestScramblePBCHPayloadPreservesUnscrambledBits(t *testing.T) {
	mib := NewMIB(100, 6, 0)
	a := BuildPBCHPayload(mib, 100, 1, 0)
	aPrime := ScramblePBCHPayload(a, 123)

	assert.Equal(t, a[pbchGInterleave[10]], aPrime[pbchGInterleave[10]])
	assert.Equal(t, a[pbchGInterleave[7]], aPrime[pbchGInterleave[7]])
	assert.Equal(t, a[pbchGInterleave[8]], aPrime[pbchGInterleave[8]])
}

func TestEncodePBCHProducesExpectedSymbolCount(t *testing.T) {
	mib := NewMIB(100, 6, 0)
	symbols := EncodePBCH(mib, 100, 123, 0, 0)
	assert.Equal(t, pbchEncodedBits/2, len(symbols))
}

func TestAttachPDCCHCRCAndMaskChangesWithRNTI(t *testing.T) {
	dci := DCIFormat10SIRNTI{FrequencyResource: 5, TimeResource: 0, ModulationCodingScheme: 3}
	bits := EncodeDCI10SIRNTI(dci, 6, 41)
	withA := AttachPDCCHCRCAndMask(bits, 0xFFFF)
	withB := AttachPDCCHCRCAndMask(bits, 0x0001)
	assert.NotEqual(t, withA, withB)
	assert.Equal(t, len(bits)+24, len(withA))
}

func TestEncodePDCCHSIB1MapsIntoCoreset(t *testing.T) {
	g := grid.New(1024, 14, 720, true)
	g.Clear()

	dci := DCIFormat10SIRNTI{FrequencyResource: 0, TimeResource: 0, ModulationCodingScheme: 4}
	coresetRBs := []int{0, 1, 2, 3, 4, 5}
	err := EncodePDCCHSIB1(g, dci, 123, coresetRBs, 0, 1, 4, 0)
	require.NoError(t, err)

	nonZero := 0
	for _, rb := range coresetRBs {
		nonZero += g.NonZeroInRange(0, rb*12, rb*12+12)
	}
	assert.Greater(t, nonZero, 0)
}

func TestEncodePDSCHSIB1MapsData(t *testing.T) {
	g := grid.New(1024, 14, 720, true)
	g.Clear()

	config := PDSCHConfig{
		Modulation:      bitseq.ModQPSK,
		RV:              0,
		NID:             123,
		RNTI:            SIRNTI,
		PRBAllocation:   []int{0, 1, 2, 3, 4, 5},
		StartSymbol:     2,
		NumSymbols:      4,
		DMRSSymbolIndex: 0,
		Slot:            0,
	}
	payload := make([]byte, 40)
	for i := range payload {
		payload[i] = byte(i)
	}

	err := EncodePDSCHSIB1(g, payload, config)
	require.NoError(t, err)

	total := 0
	for symbol := config.StartSymbol; symbol < config.StartSymbol+config.NumSymbols; symbol++ {
		for _, rb := range config.PRBAllocation {
			total += g.NonZeroInRange(symbol, rb*12, rb*12+12)
		}
	}
	assert.Greater(t, total, 0)
}

func TestCodeBlockSegmentsSingleBlock(t *testing.T) {
	bits := make([]byte, 100)
	blocks := codeBlockSegments(bits)
	assert.Len(t, blocks, 1)
}
