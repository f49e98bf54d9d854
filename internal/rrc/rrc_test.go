package rrc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/internal/mac"
)

type fakeMAC struct {
	mu   sync.Mutex
	sent []mac.RRCMessage
	fail bool
}

func (f *fakeMAC) SendRRCMessage(rnti uint16, msgType mac.RRCMessageType, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return assert.AnError
	}
	f.sent = append(f.sent, mac.RRCMessage{RNTI: rnti, Type: msgType, Data: data})
	return nil
}

func (f *fakeMAC) snapshot() []mac.RRCMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]mac.RRCMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestHandleRRCSetupRequestCreatesConnectedContext(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())

	require.NoError(t, l.HandleRRCSetupRequest(context.Background(), 0x4601))

	ueCtx, err := l.GetUEContext(0x4601)
	require.NoError(t, err)
	assert.Equal(t, StateConnected, ueCtx.State)

	sent := backend.snapshot()
	require.Len(t, sent, 1)
	assert.Equal(t, mac.RRCSetup, sent[0].Type)
	assert.Equal(t, uint16(0x4601), sent[0].RNTI)
}

func TestHandleRRCSetupRequestPropagatesMACFailure(t *testing.T) {
	backend := &fakeMAC{fail: true}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())

	err := l.HandleRRCSetupRequest(context.Background(), 1)
	assert.Error(t, err)
}

func TestHandleRRCReleaseRemovesContext(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())

	require.NoError(t, l.HandleRRCSetupRequest(context.Background(), 7))
	require.NoError(t, l.HandleRRCRelease(context.Background(), 7))

	_, err := l.GetUEContext(7)
	assert.Error(t, err)

	sent := backend.snapshot()
	require.Len(t, sent, 2)
	assert.Equal(t, mac.RRCRelease, sent[1].Type)
}

func TestHandleRRCReleaseUnknownRNTIFails(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())

	err := l.HandleRRCRelease(context.Background(), 99)
	assert.Error(t, err)
}

func TestRunConsumesUplinkMessagesFromChannel(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage, 1)
	l := NewLayer(backend, rx, zap.NewNop())

	l.Start(context.Background())
	rx <- mac.RRCMessage{RNTI: 42}

	require.Eventually(t, func() bool {
		_, err := l.GetUEContext(42)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	l.Stop()
}

type fakeAuditSink struct {
	setupCalls   int
	releaseCalls int
}

func (f *fakeAuditSink) RecordRRCSetup(rnti uint16)   { f.setupCalls++ }
func (f *fakeAuditSink) RecordRRCRelease(rnti uint16) { f.releaseCalls++ }

func TestHandleRRCSetupAndReleaseNotifyAuditSink(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())
	sink := &fakeAuditSink{}
	l.SetAuditSink(sink)

	require.NoError(t, l.HandleRRCSetupRequest(context.Background(), 5))
	require.NoError(t, l.HandleRRCRelease(context.Background(), 5))

	assert.Equal(t, 1, sink.setupCalls)
	assert.Equal(t, 1, sink.releaseCalls)
}

func TestActiveUEsReturnsSnapshot(t *testing.T) {
	backend := &fakeMAC{}
	rx := make(chan mac.RRCMessage)
	l := NewLayer(backend, rx, zap.NewNop())

	require.NoError(t, l.HandleRRCSetupRequest(context.Background(), 1))
	require.NoError(t, l.HandleRRCSetupRequest(context.Background(), 2))

	ues := l.ActiveUEs()
	assert.Len(t, ues, 2)
}
