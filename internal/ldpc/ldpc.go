// Package ldpc implements the 5G NR low-density parity-check encoder used by
// PDSCH: base-graph selection, lifting-size search, a structural
// dual-diagonal base-graph encoder, and circular-buffer rate matching
// (3GPP TS 38.212 §5.3.2, §5.4.2).
package ldpc

import "fmt"

// BaseGraph identifies one of the two 5G NR LDPC base graphs.
type BaseGraph int

const (
	BG1 BaseGraph = iota
	BG2
)

// liftingSizeSet is the standard 51-value lifting size set (3GPP TS 38.212
// Table 5.3.2-1), listed in ascending order so the first value satisfying
// the K <= kb*Z constraint is the minimum lifting.
var liftingSizeSet = []int{
	2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 18, 20, 22, 24,
	26, 28, 30, 32, 36, 40, 44, 48, 52, 56, 60, 64, 72, 80, 88, 96, 104,
	112, 120, 128, 144, 160, 176, 192, 208, 224, 240, 256, 288, 320, 352, 384,
}

const (
	maxCBSizeBG1 = 8448
	maxCBSizeBG2 = 3840
)

// Config describes a constructed LDPC code for one code block.
type Config struct {
	BaseGraph    BaseGraph
	Z            int // lifting size
	Kb           int // systematic block-column count (22 for BG1, 10 for BG2)
	K            int // number of information bits (Kb * Z)
	N            int // number of encoded bits (66Z for BG1, 50Z for BG2)
	coreBlocks   int // 4 for both base graphs
	extParityLen int // N/Z - Kb - coreBlocks
}

// SelectBaseGraph implements the base-graph selection rule of 3GPP TS 38.212
// §6.2.2 as simplified to the two-way split the original source describes:
// BG2 only for small, low-rate code blocks; BG1 otherwise.
func SelectBaseGraph(codeBlockSizeBits int) BaseGraph {
	if codeBlockSizeBits > 3840 {
		return BG1
	}
	if codeBlockSizeBits <= 308 {
		return BG2
	}
	return BG1
}

// NewConfig builds an LDPC configuration for a code block carrying k
// information bits, selecting the base graph and the minimal lifting size Z
// in the standard 51-value set such that K <= kb*Z.
func NewConfig(k int) (*Config, error) {
	if k <= 0 {
		return nil, fmt.Errorf("ldpc: invalid K=%d", k)
	}
	bg := SelectBaseGraph(k)

	kb := 22
	if bg == BG2 {
		kb = 10
	}

	z := 0
	for _, cand := range liftingSizeSet {
		if cand*kb >= k {
			z = cand
			break
		}
	}
	if z == 0 {
		z = liftingSizeSet[len(liftingSizeSet)-1]
	}

	maxCB := maxCBSizeBG1
	if bg == BG2 {
		maxCB = maxCBSizeBG2
	}
	if kb*z > maxCB {
		return nil, fmt.Errorf("ldpc: K=%d exceeds max code block size for base graph", k)
	}

	n := 66 * z
	if bg == BG2 {
		n = 50 * z
	}

	return &Config{
		BaseGraph:    bg,
		Z:            z,
		Kb:           kb,
		K:            kb * z,
		N:            n,
		coreBlocks:   4,
		extParityLen: n/z - kb - 4,
	}, nil
}
