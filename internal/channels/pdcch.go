package channels

import (
	"github.com/openran-go/gnb-core/internal/bitseq"
	"github.com/openran-go/gnb-core/internal/grid"
	"github.com/openran-go/gnb-core/internal/polar"
)

// SIRNTI is the fixed RNTI value used to scramble SIB1's PDCCH/PDSCH.
const SIRNTI uint16 = 0xFFFF

const regsPerCCE = 6

// DCIFormat10SIRNTI is DCI format 1_0 scrambled by SI-RNTI, used to schedule
// SIB1 (3GPP TS 38.212 §7.3.1.2.1).
type DCIFormat10SIRNTI struct {
	FrequencyResource         uint16
	TimeResource              uint8 // 2 bits
	VRBToPRBMapping           uint8 // 1 bit
	ModulationCodingScheme    uint8 // 5 bits
	RedundancyVersion         uint8 // 2 bits
	SystemInformationIndicator uint8 // 1 bit
}

// EncodeDCI10SIRNTI serializes the DCI fields MSB-first and pads to
// totalBits with reserved zero bits, per 3GPP TS 38.212 §7.3.1.2.1.
func EncodeDCI10SIRNTI(dci DCIFormat10SIRNTI, freqBits int, totalBits int) []byte {
	bits := make([]byte, 0, totalBits)
	bits = appendBits(bits, uint32(dci.FrequencyResource), freqBits)
	bits = appendBits(bits, uint32(dci.TimeResource), 2)
	bits = appendBits(bits, uint32(dci.VRBToPRBMapping), 1)
	bits = appendBits(bits, uint32(dci.ModulationCodingScheme), 5)
	bits = appendBits(bits, uint32(dci.RedundancyVersion), 2)
	bits = appendBits(bits, uint32(dci.SystemInformationIndicator), 1)
	for len(bits) < totalBits {
		bits = append(bits, 0)
	}
	return bits[:totalBits]
}

func appendBits(bits []byte, value uint32, n int) []byte {
	for i := n - 1; i >= 0; i-- {
		bits = append(bits, byte((value>>uint(i))&1))
	}
	return bits
}

// AttachPDCCHCRCAndMask attaches a CRC-24C computed over a 24-leading-ones
// prefix plus the DCI bits (3GPP TS 38.212 §7.3.2), then XORs the low 16
// bits of that CRC with rnti (the masking rule shared with every RNTI-
// scrambled DCI).
func AttachPDCCHCRCAndMask(dciBits []byte, rnti uint16) []byte {
	crc := bitseq.ComputeWithPrefix(bitseq.CRC24C, 24, dciBits)
	masked := make([]byte, len(crc))
	copy(masked, crc)
	maskedTail := bitseq.MaskRNTI(masked[8:24], rnti)
	copy(masked[8:24], maskedTail)

	out := make([]byte, 0, len(dciBits)+len(masked))
	out = append(out, dciBits...)
	out = append(out, masked...)
	return out
}

// pdcchDMRSCInit computes the PDCCH DMRS Gold-sequence seed, 3GPP TS 38.211
// §7.4.1.3.1: c_init = (2^17*(14*slot+symbol+1)*(2*N_ID+1) + 2*N_ID) mod 2^31.
func pdcchDMRSCInit(slot, symbol, nID int) uint32 {
	val := (uint64(1)<<17)*uint64(14*slot+symbol+1)*uint64(2*nID+1) + uint64(2*nID)
	return uint32(val & 0x7FFFFFFF)
}

// EncodePDCCHSIB1 runs the full SIB1 PDCCH chain: DCI encode, CRC
// attach+mask, polar encode/rate-match/channel-interleave, data scrambling,
// QPSK modulation, RE mapping to the CORESET with DMRS on every fourth
// subcarrier, and DMRS generation, per 3GPP TS 38.211 §7.3.2/§7.4.1.3 and
// TS 38.212 §7.3.3.
// coreset0RBs lists CORESET#0's PRB indices in the grid's signed,
// DC-centred convention (see grid.Grid.bin): the caller is responsible for
// offsetting absolute resource-block numbers to that frame before calling.
func EncodePDCCHSIB1(g *grid.Grid, dci DCIFormat10SIRNTI, pci int, coreset0RBs []int, startSymbol, duration int, aggregationLevel int, slot int) error {
	freqBits := frequencyResourceBits(len(coreset0RBs))
	totalBits := dciSize(freqBits)
	dciBits := EncodeDCI10SIRNTI(dci, freqBits, totalBits)
	withCRC := AttachPDCCHCRCAndMask(dciBits, SIRNTI)

	encoded, err := polar.PDCCHEncode(withCRC, aggregationLevel)
	if err != nil {
		return err
	}

	cInit := uint32((uint64(SIRNTI)<<16 + uint64(pci)) & 0x7FFFFFFF)
	scramblingSeq := bitseq.GoldSequence(cInit, len(encoded))
	scrambled := make([]byte, len(encoded))
	for i := range encoded {
		scrambled[i] = encoded[i] ^ scramblingSeq[i]
	}
	symbols := bitseq.Modulate(bitseq.ModQPSK, scrambled)

	prbs := cceToPRBs(coreset0RBs, aggregationLevel, duration)

	symIdx := 0
	for symbol := startSymbol; symbol < startSymbol+duration; symbol++ {
		for _, prb := range prbs {
			for sc := 0; sc < 12; sc++ {
				if sc%4 == 1 {
					continue // reserved for DMRS
				}
				if symIdx >= len(symbols) {
					break
				}
				if err := g.MapRE(prb*12+sc, symbol, symbols[symIdx]); err != nil {
					return err
				}
				symIdx++
			}
		}
	}

	for symbol := startSymbol; symbol < startSymbol+duration; symbol++ {
		cInitDMRS := pdcchDMRSCInit(slot, symbol, pci)
		dmrsBits := bitseq.GoldSequence(cInitDMRS, len(prbs)*2*3)
		dmrsSymbols := bitseq.Modulate(bitseq.ModQPSK, dmrsBits)
		dIdx := 0
		for _, prb := range prbs {
			for _, sc := range [3]int{1, 5, 9} {
				if dIdx >= len(dmrsSymbols) {
					break
				}
				if err := g.MapRE(prb*12+sc, symbol, dmrsSymbols[dIdx]); err != nil {
					return err
				}
				dIdx++
			}
		}
	}

	return nil
}

func frequencyResourceBits(numRBs int) int {
	bits := 0
	total := numRBs * (numRBs + 1) / 2
	for (1 << bits) < total {
		bits++
	}
	return bits
}

func dciSize(freqBits int) int {
	return freqBits + 2 + 1 + 5 + 2 + 1
}

// cceToPRBs maps the aggregation level's CCEs to PRBs within CORESET#0,
// non-interleaved (3GPP TS 38.211 §7.3.2.2): CCE 0 always used for SIB1's
// single search space candidate.
func cceToPRBs(coreset0RBs []int, aggregationLevel int, duration int) []int {
	regsNeeded := aggregationLevel * regsPerCCE
	prbsNeeded := regsNeeded / duration
	if prbsNeeded > len(coreset0RBs) {
		prbsNeeded = len(coreset0RBs)
	}
	return coreset0RBs[:prbsNeeded]
}
