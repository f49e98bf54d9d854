package audit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
)

func TestNewSinkWithEmptyDSNIsDisabled(t *testing.T) {
	s, err := NewSink("", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, s.enabled)
}

func TestRecordOnDisabledSinkNeverBlocksAndCountsDrop(t *testing.T) {
	s, err := NewSink("", zap.NewNop())
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.AuditEventsDropped)
	s.Record(Event{Kind: KindPRACHDetection, RNTI: 1, Timestamp: time.Now()})
	after := testutil.ToFloat64(metrics.AuditEventsDropped)

	assert.Equal(t, before+1, after)
}

func TestCloseOnDisabledSinkIsNoop(t *testing.T) {
	s, err := NewSink("", zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, s.Close())
}

func TestRecordDropsWhenChannelFull(t *testing.T) {
	s := &Sink{enabled: true, ch: make(chan Event), logger: zap.NewNop()}

	before := testutil.ToFloat64(metrics.AuditEventsDropped)
	// Unbuffered channel with no reader: the first Record always drops.
	s.Record(Event{Kind: KindRRCSetup, RNTI: 7})
	after := testutil.ToFloat64(metrics.AuditEventsDropped)

	assert.Equal(t, before+1, after)
}
