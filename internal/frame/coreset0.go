package frame

import "fmt"

// Coreset0Config describes a CORESET#0 configuration entry: number of PRBs,
// number of OFDM symbols, and the RB offset from Point A.
type Coreset0Config struct {
	NumRBs     int
	NumSymbols int
	RBOffset   int
}

// coreset0Table is 3GPP TS 38.213 Table 13-1 for {SSB, PDCCH} SCS {15,15}
// kHz, indices 0..14, restated from layers/src/mac/scheduler.rs.
var coreset0Table = []Coreset0Config{
	{NumRBs: 24, NumSymbols: 2, RBOffset: 0},
	{NumRBs: 24, NumSymbols: 2, RBOffset: 2},
	{NumRBs: 24, NumSymbols: 2, RBOffset: 4},
	{NumRBs: 24, NumSymbols: 3, RBOffset: 0},
	{NumRBs: 24, NumSymbols: 3, RBOffset: 2},
	{NumRBs: 24, NumSymbols: 3, RBOffset: 4},
	{NumRBs: 48, NumSymbols: 1, RBOffset: 12},
	{NumRBs: 48, NumSymbols: 1, RBOffset: 16},
	{NumRBs: 48, NumSymbols: 2, RBOffset: 12},
	{NumRBs: 48, NumSymbols: 2, RBOffset: 16},
	{NumRBs: 48, NumSymbols: 3, RBOffset: 12},
	{NumRBs: 48, NumSymbols: 3, RBOffset: 16},
	{NumRBs: 96, NumSymbols: 1, RBOffset: 38},
	{NumRBs: 96, NumSymbols: 2, RBOffset: 38},
	{NumRBs: 96, NumSymbols: 3, RBOffset: 38},
}

// Coreset0FromIndex returns the CORESET#0 configuration for the given table
// index (0..14). An unknown index is a configuration error.
func Coreset0FromIndex(index int) (Coreset0Config, error) {
	if index < 0 || index >= len(coreset0Table) {
		return Coreset0Config{}, fmt.Errorf("frame: invalid CORESET#0 index %d", index)
	}
	return coreset0Table[index], nil
}

// Type0PDCCHMonitoringSlots returns the SIB1 Type0-PDCCH CSS monitoring
// slots within one 160 ms SI window, per 3GPP TS 38.213 Table 13-11. Only
// the 15 kHz / CORESET#0-index-6 configuration (n0=0, M=20 slots) is
// exercised end-to-end; other (index, SCS) combinations fall back to the
// same n0=0 periodicity scaled by slots-per-frame, an approximation rather
// than a verified table entry.
func Type0PDCCHMonitoringSlots(mu Numerology, coreset0Index int) []int {
	slotsPerFrame := mu.SlotsPerFrame()
	siWindowSlots := 160 * slotsPerFrame / 10
	monitoringPeriodSlots := 20 * slotsPerFrame / 10

	var slots []int
	for i := 0; i*monitoringPeriodSlots < siWindowSlots; i++ {
		slots = append(slots, i*monitoringPeriodSlots)
	}
	return slots
}
