package channels

import (
	"github.com/openran-go/gnb-core/internal/bitseq"
	"github.com/openran-go/gnb-core/internal/polar"
)

// pbchEncodedBits is the fixed PBCH polar-coded length E (3GPP TS 38.212
// Table 7.1.1-1).
const pbchEncodedBits = 864

// pbchGInterleave is the payload interleaving pattern of 3GPP TS 38.212
// Table 7.1.1-1, mapping logical payload bit position to its place in the
// 32-bit A sequence.
var pbchGInterleave = [32]int{
	16, 23, 18, 17, 8, 30, 10, 6, 24, 7, 0, 5, 3, 2, 1, 4,
	9, 11, 12, 13, 14, 15, 19, 20, 21, 22, 25, 26, 27, 28, 29, 31,
}

// BuildPBCHPayload assembles the 32-bit PBCH payload "A" from the MIB and
// the timing/configuration bits carried outside the RRC-encoded MIB itself:
// 4 extra SFN LSBs, the half-frame bit, and (for Lmax<=4) the k_SSB MSB with
// two reserved bits, per 3GPP TS 38.212 §7.1.1.
func BuildPBCHPayload(mib MIB, sfn uint32, halfFrame int, kSSBMSB byte) []byte {
	a := make([]byte, 32)
	mibBits := mib.Encode()

	jSFN := 0
	jOther := 14
	for i := 0; i < 24; i++ {
		if i >= 1 && i < 7 {
			a[pbchGInterleave[jSFN]] = mibBits[i]
			jSFN++
		} else if jOther < 32 {
			a[pbchGInterleave[jOther]] = mibBits[i]
			jOther++
		}
	}

	a[pbchGInterleave[6]] = byte((sfn >> 3) & 1)
	a[pbchGInterleave[7]] = byte((sfn >> 2) & 1)
	a[pbchGInterleave[8]] = byte((sfn >> 1) & 1)
	a[pbchGInterleave[9]] = byte(sfn & 1)
	a[pbchGInterleave[10]] = byte(halfFrame & 1)
	a[pbchGInterleave[11]] = kSSBMSB & 1
	a[pbchGInterleave[12]] = 0
	a[pbchGInterleave[13]] = 0

	return a
}

// ScramblePBCHPayload applies PBCH's selective scrambling (3GPP TS 38.212
// §7.1.2): the HRF bit and the two SFN bits already placed at G[7]/G[8],
// plus (for Lmax<=4) G[11..13], are left unscrambled; every other position
// is XORed with a Gold sequence seeded by the PCI and offset by
// M*v, v = 2*a[G[7]] + a[G[8]].
func ScramblePBCHPayload(a []byte, pci int) []byte {
	v := 2*int(a[pbchGInterleave[7]]) + int(a[pbchGInterleave[8]])
	const m = 29 // Lmax <= 8 case
	offset := m * v

	seq := bitseq.GoldSequence(uint32(pci), 32+offset)

	noScramble := map[int]bool{
		pbchGInterleave[7]:  true,
		pbchGInterleave[8]:  true,
		pbchGInterleave[10]: true,
		pbchGInterleave[11]: true,
		pbchGInterleave[12]: true,
		pbchGInterleave[13]: true,
	}

	aPrime := make([]byte, 32)
	j := 0
	for i := 0; i < 32; i++ {
		if noScramble[i] {
			aPrime[i] = a[i]
			continue
		}
		aPrime[i] = a[i] ^ seq[offset+j]
		j++
	}
	return aPrime
}

// EncodePBCH runs the full PBCH chain: payload assembly, selective
// scrambling, CRC-24C attachment (with the 24-leading-ones prefix shared by
// PBCH/PDCCH per 3GPP TS 38.212 §7.1.2), polar encoding/rate matching,
// bit-level scrambling with a PCI-seeded Gold sequence, and QPSK modulation.
func EncodePBCH(mib MIB, sfn uint32, pci int, halfFrame int, kSSBMSB byte) []complex128 {
	a := BuildPBCHPayload(mib, sfn, halfFrame, kSSBMSB)
	aPrime := ScramblePBCHPayload(a, pci)

	crc := bitseq.ComputeWithPrefix(bitseq.CRC24C, 24, aPrime)
	payloadWithCRC := make([]byte, 0, 56)
	payloadWithCRC = append(payloadWithCRC, aPrime...)
	payloadWithCRC = append(payloadWithCRC, crc...)

	rateMatched, err := polar.PBCHEncode(payloadWithCRC, pbchEncodedBits)
	if err != nil {
		// A-bar/CRC sizes are fixed constants; a construction error here
		// means the polar package's own invariants are violated.
		panic(err)
	}

	cInit := uint32(pci)
	scramblingSeq := bitseq.GoldSequence(cInit, len(rateMatched))
	scrambled := make([]byte, len(rateMatched))
	for i := range rateMatched {
		scrambled[i] = rateMatched[i] ^ scramblingSeq[i]
	}

	return bitseq.Modulate(bitseq.ModQPSK, scrambled)
}
