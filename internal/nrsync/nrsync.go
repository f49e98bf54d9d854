// Package nrsync generates the synchronization-signal sequences (PSS, SSS,
// PBCH DMRS) that compose the SSB, grounded on 3GPP TS 38.211 §7.4.2-7.4.3
// and the bit-level primitives in internal/bitseq. Named nrsync, not sync,
// so it never shadows the standard library package of the same name at
// its import sites.
package nrsync

import "github.com/openran-go/gnb-core/internal/bitseq"

// NID splits a physical cell identity into its NID1/NID2 components, per
// PCI = 3*NID1 + NID2.
func NID(pci int) (nid1, nid2 int) {
	return pci / 3, pci % 3
}

// PSS returns the 127-symbol PSS sequence for the cell's NID2.
func PSS(pci int) []complex128 {
	_, nid2 := NID(pci)
	return bitseq.PSSSequence(nid2)
}

// SSS returns the 127-symbol SSS sequence for the cell's (NID1, NID2).
func SSS(pci int) []complex128 {
	nid1, nid2 := NID(pci)
	return bitseq.SSSSequence(nid1, nid2)
}

// PBCHDMRSCInit computes the Gold-sequence seed for PBCH's DMRS, per 3GPP TS
// 38.211 §7.4.1.4.1: c_init = 2^11*(iSSB+1)*(floor(NID/4)+1) +
// 2^6*(iSSB+1) + (NID mod 4), where iSSB is the SSB index's low bits (2 for
// Lmax<=4, adding 4*halfFrame; 3 for Lmax in {8,64}).
func PBCHDMRSCInit(pci int, ssbIndex int, lMax int, halfFrame int) uint32 {
	nid := pci
	var iSSB int
	if lMax <= 4 {
		iSSB = (ssbIndex & 0x3) + 4*halfFrame
	} else {
		iSSB = ssbIndex & 0x7
	}
	return uint32(2048*(iSSB+1)*(nid/4+1) + 64*(iSSB+1) + (nid % 4))
}

// PBCHDMRS returns the QPSK-mapped DMRS sequence for one PBCH symbol. Per
// 3GPP TS 38.211 §7.4.1.4.1 there are 60 DMRS REs across the 240 SSB
// subcarriers (every fourth), amplitude 1/sqrt(2).
func PBCHDMRS(pci int, ssbIndex int, lMax int, halfFrame int) []complex128 {
	cInit := PBCHDMRSCInit(pci, ssbIndex, lMax, halfFrame)
	bits := bitseq.GoldSequence(cInit, 120)
	return bitseq.GoldQPSK(bits)
}

// PBCHDMRSOffset returns v = NID mod 4, the subcarrier offset within each
// group of four for DMRS placement.
func PBCHDMRSOffset(pci int) int {
	return pci % 4
}
