package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRingDropsOldestOnOverflow(t *testing.T) {
	r := newRing(2)
	assert.False(t, r.push(IQBuffer{Timestamp: 1}))
	assert.False(t, r.push(IQBuffer{Timestamp: 2}))
	assert.True(t, r.push(IQBuffer{Timestamp: 3}))

	first, ok := r.pop()
	require.True(t, ok)
	assert.Equal(t, uint64(2), first.Timestamp)
}

func TestRingPopEmpty(t *testing.T) {
	r := newRing(4)
	_, ok := r.pop()
	assert.False(t, ok)
}

func TestEncodeDecodeIQRoundTrip(t *testing.T) {
	samples := []complex128{complex(1.5, -0.25), complex(-2, 3)}
	encoded := encodeIQ(samples)
	require.Len(t, encoded, 16)

	decoded := decodeIQ(encoded)
	require.Len(t, decoded, 2)
	assert.InDelta(t, real(samples[0]), real(decoded[0]), 1e-6)
	assert.InDelta(t, imag(samples[1]), imag(decoded[1]), 1e-6)
}

func TestTransmitQueuesBlockWhileTXServerListens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TXListenAddr = "127.0.0.1:0"
	cfg.RXPollInterval = 5 * time.Millisecond

	logger := zap.NewNop()
	rf := New(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go rf.runTXServer(ctx, errCh)
	time.Sleep(20 * time.Millisecond)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	default:
	}

	rf.Transmit(IQBuffer{Samples: []complex128{complex(1, 0), complex(0, 1)}, Timestamp: 42})
	assert.Equal(t, 1, rf.txRing.len())
}

func TestStatsSnapshotInitiallyZero(t *testing.T) {
	rf := New(DefaultConfig(), zap.NewNop())
	stats := rf.Stats()
	assert.Equal(t, uint64(0), stats.TXSamples)
	assert.Equal(t, uint64(0), stats.RXOverruns)
}
