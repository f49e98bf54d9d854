package channels

import (
	"github.com/openran-go/gnb-core/internal/bitseq"
	"github.com/openran-go/gnb-core/internal/grid"
	"github.com/openran-go/gnb-core/internal/ldpc"
)

// PDSCHConfig describes one SIB1 PDSCH transmission.
type PDSCHConfig struct {
	Modulation      bitseq.ModOrder
	RV              int
	NID             int
	RNTI            uint16
	PRBAllocation   []int // PRB indices in the grid's signed, DC-centred convention
	StartSymbol     int
	NumSymbols      int
	DMRSSymbolIndex int // symbol offset (relative to StartSymbol) carrying DMRS
	Slot            int
}

// codeBlockSegments splits a transport block (bits, MSB-first, CRC-24A
// already attached by the caller when applicable) into LDPC code blocks,
// per 3GPP TS 38.212 §5.2.2. When there is more than one block, each block
// leaves 24 bits of room for its CRC-24B; the CRC itself is attached by
// EncodePDSCHSIB1, not here.
func codeBlockSegments(tbBits []byte) [][]byte {
	bg := ldpc.SelectBaseGraph(len(tbBits))
	maxCB := 8448
	if bg == ldpc.BG2 {
		maxCB = 3840
	}

	if len(tbBits) <= maxCB {
		return [][]byte{tbBits}
	}

	numCB := (len(tbBits) + (maxCB - 24) - 1) / (maxCB - 24)
	cbSizeBits := (len(tbBits) + 24*numCB + numCB - 1) / numCB

	blocks := make([][]byte, 0, numCB)
	pos := 0
	for i := 0; i < numCB; i++ {
		end := pos + cbSizeBits - 24
		if end > len(tbBits) {
			end = len(tbBits)
		}
		chunk := make([]byte, cbSizeBits-24)
		copy(chunk, tbBits[pos:end])
		blocks = append(blocks, chunk)
		pos = end
	}
	return blocks
}

// availableREs returns the number of data (non-DMRS) resource elements
// across config's time/frequency allocation.
func availableREs(config PDSCHConfig) int {
	total := 0
	for symbol := config.StartSymbol; symbol < config.StartSymbol+config.NumSymbols; symbol++ {
		if symbol-config.StartSymbol == config.DMRSSymbolIndex {
			continue
		} else {
			total += len(config.PRBAllocation) * 12
		}
	}
	return total
}

// pdschDMRSCInit computes the PDSCH DMRS Gold-sequence seed for Type 1, 3GPP
// TS 38.211 §7.4.1.1.2: c_init = (2^17*(14*slot+symbol+1)*(2*N_ID+1) +
// 2*N_ID + n_SCID) mod 2^31.
func pdschDMRSCInit(slot, symbol, nID int, nSCID int) uint32 {
	val := (uint64(1)<<17)*uint64(14*slot+symbol+1)*uint64(2*nID+1) + uint64(2*nID) + uint64(nSCID)
	return uint32(val & 0x7FFFFFFF)
}

// pdschScramblingCInit computes the PDSCH data scrambling seed, 3GPP TS
// 38.211 §7.3.1.1: c_init = rnti*2^15 + q*2^14 + N_ID (codeword index q=0
// for single-codeword transmission).
func pdschScramblingCInit(rnti uint16, nID int) uint32 {
	val := uint32(rnti)<<15 + uint32(nID)
	return val & 0x7FFFFFFF
}

// EncodePDSCHSIB1 runs the full SIB1 PDSCH chain: TB CRC, code-block
// segmentation with per-block CRC, LDPC encode/rate-match, concatenation,
// scrambling, modulation, RE mapping around the DMRS symbol, and DMRS
// generation (3GPP TS 38.212 §5.2.2/§6.2, TS 38.211 §7.3.1/§7.4.1.1.2).
func EncodePDSCHSIB1(g *grid.Grid, payloadBytes []byte, config PDSCHConfig) error {
	tbBits := bitseq.PackBytes(payloadBytes)

	var tbWithCRC []byte
	if len(tbBits) > 3824 {
		crc := bitseq.Compute(bitseq.CRC24A, tbBits)
		tbWithCRC = append(append([]byte{}, tbBits...), crc...)
	} else {
		tbWithCRC = tbBits
	}

	blocks := codeBlockSegments(tbWithCRC)

	totalBits := availableREs(config) * config.Modulation.BitsPerSymbol()
	bitsPerCB := totalBits / len(blocks)

	var allEncoded []byte
	for _, cb := range blocks {
		cbWithCRC := cb
		if len(blocks) > 1 {
			crc := bitseq.Compute(bitseq.CRC24B, cb)
			cbWithCRC = append(append([]byte{}, cb...), crc...)
		}
		ldpcCfg, err := ldpc.NewConfig(len(cbWithCRC))
		if err != nil {
			return err
		}
		padded := make([]byte, ldpcCfg.K)
		copy(padded, cbWithCRC)
		codeword := ldpcCfg.Encode(padded)
		rateMatched := ldpcCfg.RateMatch(codeword, bitsPerCB, config.RV)
		allEncoded = append(allEncoded, rateMatched...)
	}

	cInit := pdschScramblingCInit(config.RNTI, config.NID)
	scramblingSeq := bitseq.GoldSequence(cInit, len(allEncoded))
	scrambled := make([]byte, len(allEncoded))
	for i := range allEncoded {
		scrambled[i] = allEncoded[i] ^ scramblingSeq[i]
	}

	symbols := bitseq.Modulate(config.Modulation, scrambled)

	symIdx := 0
	for symbol := config.StartSymbol; symbol < config.StartSymbol+config.NumSymbols; symbol++ {
		if symbol-config.StartSymbol == config.DMRSSymbolIndex {
			continue
		}
		for _, prb := range config.PRBAllocation {
			for sc := 0; sc < 12; sc++ {
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

	dmrsSymbol := config.StartSymbol + config.DMRSSymbolIndex
	cInitDMRS := pdschDMRSCInit(config.Slot, dmrsSymbol, config.NID, 0)
	dmrsBits := bitseq.GoldSequence(cInitDMRS, len(config.PRBAllocation)*2*6)
	dmrsSymbols := bitseq.Modulate(bitseq.ModQPSK, dmrsBits)
	dIdx := 0
	for _, prb := range config.PRBAllocation {
		for _, sc := range [6]int{0, 2, 4, 6, 8, 10} {
			if dIdx >= len(dmrsSymbols) {
				break
			}
			if err := g.MapRE(prb*12+sc, dmrsSymbol, dmrsSymbols[dIdx]); err != nil {
				return err
			}
			dIdx++
		}
	}

	return nil
}
