// Package producer implements the sample-clocked downlink producer loop:
// the per-symbol state machine that pulls scheduling decisions from MAC,
// maps SSB/SIB1 channels into the resource grid, OFDM-modulates, and hands
// IQ blocks to the RF transport, including the pre-buffering phase that
// avoids handing the peer an empty ring on first connect.
// Grounded on layers/src/phy/mod.rs's EnhancedPhyLayer downlink task.
package producer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
	"github.com/openran-go/gnb-core/internal/channels"
	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/grid"
	"github.com/openran-go/gnb-core/internal/mac"
	"github.com/openran-go/gnb-core/internal/nrsync"
	"github.com/openran-go/gnb-core/internal/ofdm"
	"github.com/openran-go/gnb-core/internal/transport"
)

// sampleSink is the subset of *transport.RF the loop needs; tests substitute
// a fake to avoid opening real sockets.
type sampleSink interface {
	Transmit(buf transport.IQBuffer)
	WaitForSpace(ctx context.Context) error
}

// Config parameterizes one cell's downlink producer loop.
type Config struct {
	PCI              int
	CellID           int
	KSSB             int
	FFTSize          int
	BandwidthRBs     int
	Numerology       frame.Numerology
	CPKind           ofdm.CPKind
	BasebandBackoffDB float64
	PreBufferSymbols int
}

// state is the sample-clocked timing/position cursor, mirroring the
// original's PhyState.
type state struct {
	frameNumber  int
	slotNumber   int
	symbolNumber int
	sampleCount  uint64
	pbchCache    map[int][]complex128
}

func newState() *state {
	return &state{pbchCache: make(map[int][]complex128)}
}

func (st *state) advanceSymbol(symbolsPerSlot, slotsPerFrame int) {
	st.symbolNumber++
	if st.symbolNumber >= symbolsPerSlot {
		st.symbolNumber = 0
		st.slotNumber++
		if st.slotNumber >= slotsPerFrame {
			st.slotNumber = 0
			st.frameNumber = (st.frameNumber + 1) % 1024
			st.pbchCache = make(map[int][]complex128)
		}
	}
}

// Loop is the downlink producer: one instance per cell.
type Loop struct {
	config      Config
	mac         *mac.Layer
	sink        sampleSink
	logger      *zap.Logger
	modulator   *ofdm.Software
	grid        *grid.Grid

	mu    sync.Mutex
	state *state

	symbolsPerSlot int
	slotsPerFrame  int
	samplesPerSym  int
	symbolDuration time.Duration
}

// NewLoop constructs a producer loop wired to a MAC layer and an RF sink.
func NewLoop(config Config, macLayer *mac.Layer, sink sampleSink, logger *zap.Logger) *Loop {
	symbolsPerSlot := frame.SymbolsPerSlot(config.CPKind == ofdm.CPExtended)
	slotsPerFrame := config.Numerology.SlotsPerFrame()
	scsHz := float64(config.Numerology.SCSKHz()) * 1000.0
	naturalSampleRate := float64(config.FFTSize) * scsHz
	symbolDuration := time.Duration(config.Numerology.SlotDurationUs() / float64(symbolsPerSlot) * float64(time.Microsecond))

	samplesPerSymbol := int(naturalSampleRate*symbolDuration.Seconds()) + 1
	if samplesPerSymbol%2 != 0 {
		samplesPerSymbol++
	}

	g := grid.New(config.FFTSize, symbolsPerSlot, config.BandwidthRBs*12, true)
	modulator := ofdm.NewSoftware(config.FFTSize, symbolsPerSlot, config.CPKind, config.BasebandBackoffDB)
	modulator.ConfigureBandwidth(config.BandwidthRBs, config.BasebandBackoffDB)

	return &Loop{
		config:         config,
		mac:            macLayer,
		sink:           sink,
		logger:         logger,
		modulator:      modulator,
		grid:           g,
		state:          newState(),
		symbolsPerSlot: symbolsPerSlot,
		slotsPerFrame:  slotsPerFrame,
		samplesPerSym:  samplesPerSymbol,
		symbolDuration: symbolDuration,
	}
}

// PreBuffer generates and non-blockingly transmits PreBufferSymbols worth of
// symbols before the caller starts the timed Run loop, so an RF peer
// connecting immediately never observes an empty ring (same rationale as
// the original's pre-buffering phase, sized to one SSB period by default).
func (l *Loop) PreBuffer() {
	n := l.config.PreBufferSymbols
	if n <= 0 {
		n = int(20.0 / (float64(l.symbolDuration) / float64(time.Millisecond)))
	}
	l.logger.Info("pre-buffering downlink symbols", zap.Int("symbols", n))
	for i := 0; i < n; i++ {
		l.produceAndSend()
	}
	l.logger.Info("pre-buffering complete", zap.Int("symbols", n))
}

// Run drives the sample-clocked symbol loop until ctx is cancelled. Pacing
// comes from the transport's back-pressure (WaitForSpace blocks until the TX
// ring has room, i.e. until the peer has actually pulled a prior block) and
// not from a wall-clock sleep: a symbol is only produced once the transport
// is ready for it.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.sink.WaitForSpace(ctx); err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		l.produceAndSend()
	}
}

func (l *Loop) produceAndSend() {
	l.mu.Lock()
	defer l.mu.Unlock()

	frameNum := l.state.frameNumber
	slot := l.state.slotNumber
	symbol := l.state.symbolNumber

	if symbol == 0 {
		l.grid.Clear()
		l.populateSlot(frameNum, slot)
		metrics.SlotsProduced.Inc()
	}

	samples, err := l.modulator.Modulate(l.grid, symbol)
	if err != nil {
		l.logger.Warn("ofdm modulate failed, sending silence",
			zap.Int("frame", frameNum), zap.Int("slot", slot), zap.Int("symbol", symbol), zap.Error(err))
		samples = make([]complex128, l.samplesPerSym)
	}

	l.sink.Transmit(transport.IQBuffer{Samples: samples, Timestamp: l.state.sampleCount})
	metrics.SymbolsProduced.Inc()

	l.state.sampleCount += uint64(l.samplesPerSym)
	l.state.advanceSymbol(l.symbolsPerSlot, l.slotsPerFrame)
}

// CurrentPosition returns the frame and slot the loop is currently
// producing, for the admin API's schedule preview.
func (l *Loop) CurrentPosition() (frameNumber, slotNumber int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.frameNumber, l.state.slotNumber
}

// SlotsPerFrame returns the configured numerology's slots-per-frame, for
// callers walking the schedule forward from CurrentPosition.
func (l *Loop) SlotsPerFrame() int {
	return l.slotsPerFrame
}

// populateSlot maps every channel scheduled in this slot into the grid; it
// runs once per slot (at symbol 0) since the channel encoders already
// operate across a slot's full symbol span.
func (l *Loop) populateSlot(frameNum, slot int) {
	schedule, err := l.mac.GetSlotSchedule(frameNum, slot)
	if err != nil {
		return
	}

	for _, ssb := range schedule.SSBs {
		l.mapSSB(frameNum, ssb)
	}

	if schedule.SIB1Info != nil {
		l.mapSIB1(slot, *schedule.SIB1Info)
	}
}

// mapSSB maps PSS/SSS/PBCH+DMRS for one SSB candidate occupying 4
// consecutive symbols starting at ssb.StartSymbol (3GPP TS 38.211 §7.4.3.1):
// relative symbol 0 is PSS, 1 and 3 are full-bandwidth PBCH+DMRS, 2 is SSS
// plus the two PBCH sideband halves.
func (l *Loop) mapSSB(frameNum int, ssb frame.SSBScheduleInfo) {
	pci := l.config.PCI
	halfFrame := 0
	if frameNum%2 != 0 {
		halfFrame = 1
	}

	const ssbHalfWidth = 240 / 2

	pssSeq := nrsync.PSS(pci)
	_ = l.grid.MapContiguous(ssb.StartSymbol, -ssbHalfWidth+56, pssSeq)

	sssSeq := nrsync.SSS(pci)
	_ = l.grid.MapContiguous(ssb.StartSymbol+2, -ssbHalfWidth+56, sssSeq)

	pbchSymbols, cached := l.state.pbchCache[ssb.SSBIndex]
	if !cached {
		mib := channels.NewMIB(uint32(frameNum), 6, 0)
		pbchSymbols = channels.EncodePBCH(mib, uint32(frameNum), pci, halfFrame, byte(l.config.KSSB>>4))
		l.state.pbchCache[ssb.SSBIndex] = pbchSymbols
	}

	dmrsOffset := nrsync.PBCHDMRSOffset(pci)
	dmrs := nrsync.PBCHDMRS(pci, ssb.SSBIndex, 4, halfFrame)

	// symbol +1: full 240-subcarrier PBCH data (180 REs) + DMRS (60 REs)
	_ = l.grid.MapWithSkip(ssb.StartSymbol+1, -ssbHalfWidth, 240, dmrsOffset, 4, pbchSymbols[:180])
	_ = l.grid.MapStrided(ssb.StartSymbol+1, -ssbHalfWidth, dmrsOffset, 4, dmrs)

	// symbol +2: two 48-subcarrier PBCH sidebands (36 REs each) + DMRS
	_ = l.grid.MapWithSkip(ssb.StartSymbol+2, -ssbHalfWidth, 48, dmrsOffset, 4, pbchSymbols[180:216])
	_ = l.grid.MapStrided(ssb.StartSymbol+2, -ssbHalfWidth, dmrsOffset, 4, dmrs[:12])
	_ = l.grid.MapWithSkip(ssb.StartSymbol+2, -ssbHalfWidth+192, 48, dmrsOffset, 4, pbchSymbols[216:252])
	_ = l.grid.MapStrided(ssb.StartSymbol+2, -ssbHalfWidth+192, dmrsOffset, 4, dmrs[12:24])

	// symbol +3: full 240-subcarrier PBCH data (180 REs) + DMRS (60 REs)
	_ = l.grid.MapWithSkip(ssb.StartSymbol+3, -ssbHalfWidth, 240, dmrsOffset, 4, pbchSymbols[252:432])
	_ = l.grid.MapStrided(ssb.StartSymbol+3, -ssbHalfWidth, dmrsOffset, 4, dmrs)
}

// mapSIB1 maps the SI-RNTI PDCCH (pointing at the following PDSCH) and the
// PDSCH carrying the SIB1 payload, when MAC indicates this slot is a
// Type0-PDCCH CSS monitoring occasion.
func (l *Loop) mapSIB1(slot int, info frame.SIB1ScheduleInfo) {
	payload, err := l.mac.GetSIB1Payload()
	if err != nil {
		return
	}

	// coreset0RBs are expressed as PRB indices relative to the grid's DC
	// centre, matching grid.Grid's signed logical-subcarrier convention
	// (see grid.Grid.bin): PRB 0 sits at the first RB above the centre.
	halfRBs := l.config.BandwidthRBs / 2
	coreset0RBs := make([]int, info.Coreset0.NumRBs)
	for i := range coreset0RBs {
		coreset0RBs[i] = info.Coreset0.RBOffset + i - halfRBs
	}

	const aggregationLevel = 4
	dci := channels.DCIFormat10SIRNTI{
		FrequencyResource:      0,
		TimeResource:           0,
		ModulationCodingScheme: 4,
	}
	if err := channels.EncodePDCCHSIB1(l.grid, dci, l.config.PCI, coreset0RBs, 0, info.Coreset0.NumSymbols, aggregationLevel, slot); err != nil {
		l.logger.Warn("pdcch sib1 mapping failed", zap.Error(err))
		return
	}

	pdschStart := info.Coreset0.NumSymbols
	pdschConfig := channels.PDSCHConfig{
		Modulation:      0, // QPSK
		RV:              0,
		NID:             l.config.PCI,
		RNTI:            channels.SIRNTI,
		PRBAllocation:   coreset0RBs,
		StartSymbol:     pdschStart,
		NumSymbols:      l.symbolsPerSlot - pdschStart,
		DMRSSymbolIndex: pdschStart,
		Slot:            slot,
	}
	if err := channels.EncodePDSCHSIB1(l.grid, payload, pdschConfig); err != nil {
		l.logger.Warn("pdsch sib1 mapping failed", zap.Error(err))
	}
}
