package producer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/internal/mac"
	"github.com/openran-go/gnb-core/internal/ofdm"
	"github.com/openran-go/gnb-core/internal/transport"
)

// fakeSink records every IQBuffer handed to it instead of touching a socket;
// it has unlimited capacity, so WaitForSpace never blocks.
type fakeSink struct {
	buffers []transport.IQBuffer
}

func (f *fakeSink) Transmit(buf transport.IQBuffer) {
	f.buffers = append(f.buffers, buf)
}

func (f *fakeSink) WaitForSpace(ctx context.Context) error {
	return ctx.Err()
}

func newTestLoop(t *testing.T) (*Loop, *fakeSink) {
	t.Helper()

	macConfig := mac.Config{
		CellID:        1,
		Numerology:    0, // 15 kHz
		Coreset0Index: 6,
		SIB1Config:    mac.DefaultSIB1Config(1),
		MaxUEs:        32,
	}
	macLayer, err := mac.NewLayer(macConfig, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, macLayer.Initialize())

	sink := &fakeSink{}
	config := Config{
		PCI:               500,
		CellID:            1,
		KSSB:              0,
		FFTSize:           1024,
		BandwidthRBs:      106,
		Numerology:        0,
		CPKind:            ofdm.CPNormal,
		BasebandBackoffDB: 0,
		PreBufferSymbols:  28, // two slots
	}
	loop := NewLoop(config, macLayer, sink, zap.NewNop())
	return loop, sink
}

func TestPreBufferFillsDefaultSSBPeriodWhenUnset(t *testing.T) {
	loop, sink := newTestLoop(t)
	loop.config.PreBufferSymbols = 0
	loop.PreBuffer()
	assert.NotEmpty(t, sink.buffers)
}

func TestPreBufferEmitsConfiguredSymbolCount(t *testing.T) {
	loop, sink := newTestLoop(t)
	loop.PreBuffer()
	assert.Len(t, sink.buffers, 28)
}

func TestProduceAndSendAdvancesSymbolState(t *testing.T) {
	loop, sink := newTestLoop(t)
	loop.produceAndSend()
	assert.Len(t, sink.buffers, 1)
	assert.Equal(t, 1, loop.state.symbolNumber)
	assert.Equal(t, uint64(loop.samplesPerSym), loop.state.sampleCount)
}

func TestProduceAndSendRollsSlotAndFrame(t *testing.T) {
	loop, _ := newTestLoop(t)
	for i := 0; i < loop.symbolsPerSlot; i++ {
		loop.produceAndSend()
	}
	assert.Equal(t, 0, loop.state.symbolNumber)
	assert.Equal(t, 1, loop.state.slotNumber)
	assert.Equal(t, 0, loop.state.frameNumber)

	for i := 0; i < loop.symbolsPerSlot*(loop.slotsPerFrame-1); i++ {
		loop.produceAndSend()
	}
	assert.Equal(t, 1, loop.state.frameNumber)
}

func TestPopulateSlotMapsSSBAtSymbolZero(t *testing.T) {
	loop, _ := newTestLoop(t)
	loop.grid.Clear()
	loop.populateSlot(0, 0)

	// PSS occupies logical subcarriers [-64, 63) of symbol 2 (SSB candidate
	// 0 starts at symbol 2 in Case A).
	nonZero := loop.grid.NonZeroInRange(2, -64, 63)
	assert.Greater(t, nonZero, 0)
}

func TestPopulateSlotMapsSIB1WhenScheduled(t *testing.T) {
	loop, _ := newTestLoop(t)

	schedule, err := loop.mac.GetSlotSchedule(0, 0)
	require.NoError(t, err)
	if schedule.SIB1Info == nil {
		t.Skip("slot 0 of frame 0 is not a Type0-PDCCH monitoring occasion for this configuration")
	}

	loop.grid.Clear()
	loop.populateSlot(0, 0)

	found := false
	for symbol := 0; symbol < loop.symbolsPerSlot; symbol++ {
		if loop.grid.NonZeroInRange(symbol, -53, 53) > 0 {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestCachedPBCHSymbolsClearOnFrameRollover(t *testing.T) {
	loop, _ := newTestLoop(t)
	loop.populateSlot(0, 0)
	assert.NotEmpty(t, loop.state.pbchCache)

	loop.state.frameNumber = 0
	loop.state.slotNumber = loop.slotsPerFrame - 1
	loop.state.symbolNumber = loop.symbolsPerSlot - 1
	loop.state.advanceSymbol(loop.symbolsPerSlot, loop.slotsPerFrame)

	assert.Empty(t, loop.state.pbchCache)
}
