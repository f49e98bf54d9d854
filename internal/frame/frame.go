// Package frame implements frame/slot/symbol timing derived from numerology,
// SSB case selection (Case A only), the CORESET#0 table, and
// Type0-PDCCH CSS monitoring-slot computation (3GPP TS 38.211 §4.3.2,
// TS 38.213 §13, grounded on layers/src/phy/frame_structure.rs and
// layers/src/mac/scheduler.rs).
package frame

import "fmt"

// Numerology is mu in 0..4, mapping to SCS = 15*2^mu kHz.
type Numerology int

// SlotsPerFrame returns 10 * 2^mu.
func (mu Numerology) SlotsPerFrame() int {
	return 10 * (1 << uint(mu))
}

// SlotDurationUs returns the slot duration in microseconds: 1000 / 2^mu.
func (mu Numerology) SlotDurationUs() float64 {
	return 1000.0 / float64(uint(1)<<uint(mu))
}

// SCSKHz returns the subcarrier spacing in kHz.
func (mu Numerology) SCSKHz() int {
	return 15 * (1 << uint(mu))
}

// SymbolsPerSlot returns 14 under normal CP (12 under extended CP, only
// possible at 60 kHz).
func SymbolsPerSlot(extendedCP bool) int {
	if extendedCP {
		return 12
	}
	return 14
}

// NumerologyFromSCS maps an SCS in kHz to its numerology; returns an error
// for an unsupported value (a configuration error at the caller).
func NumerologyFromSCS(scsKHz int) (Numerology, error) {
	switch scsKHz {
	case 15:
		return 0, nil
	case 30:
		return 1, nil
	case 60:
		return 2, nil
	case 120:
		return 3, nil
	case 240:
		return 4, nil
	default:
		return 0, fmt.Errorf("frame: unsupported SCS %d kHz", scsKHz)
	}
}

// SSBCase enumerates the 3GPP SSB time pattern cases. Only CaseA is
// exercised end-to-end in this core; CaseB/C/D/E exist as named states
// for completeness but are not wired to a working candidate-symbol table.
type SSBCase int

const (
	CaseA SSBCase = iota
	CaseB
	CaseC
	CaseD
	CaseE
)

// SSBCaseFromBandSCS selects the SSB case for the cell's band and SCS. Only
// the 15 kHz / sub-3GHz Case A path is implemented; any other combination
// returns CaseA as well since FR1 15 kHz sub-6GHz operation is this core's
// only exercised path.
func SSBCaseFromBandSCS(scsKHz int) SSBCase {
	if scsKHz == 15 {
		return CaseA
	}
	return CaseA
}

// SSBCandidate describes one SSB candidate position within a half-frame:
// its index and the starting OFDM symbol of its first (PSS) symbol.
type SSBCandidate struct {
	Index       int
	Slot        int
	StartSymbol int
}

// CaseACandidates returns the 4 SSB candidate positions for Case A (Lmax<=4):
// SSB 0 at slot 0 symbol 2, SSB 1 at slot 0 symbol 8, SSB 2 at slot 1 symbol
// 2, SSB 3 at slot 1 symbol 8 (3GPP TS 38.213 §4.1).
func CaseACandidates() []SSBCandidate {
	return []SSBCandidate{
		{Index: 0, Slot: 0, StartSymbol: 2},
		{Index: 1, Slot: 0, StartSymbol: 8},
		{Index: 2, Slot: 1, StartSymbol: 2},
		{Index: 3, Slot: 1, StartSymbol: 8},
	}
}

// SSBPeriodMs is the default SSB periodicity for initial cell search.
const SSBPeriodMs = 20

// IsSSBFrame reports whether sfn falls on an SSB occasion boundary (every
// 20 ms = 2 frames).
func IsSSBFrame(sfn int) bool {
	return sfn%(SSBPeriodMs/10) == 0
}
