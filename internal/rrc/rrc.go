// Package rrc tracks per-UE RRC state and turns around the RRC Setup
// procedure once an uplink Msg3 payload arrives on its input channel:
// contention resolution completing means the UE's RRC connection request
// has arrived, and rrc's job is to move that UE to CONNECTED and hand MAC
// the Msg4 (RRC Setup) payload through SendRRCMessage.
//
// Grounded on nf/gnb/internal/cu/cu.go's CentralUnit: a mutex-guarded
// per-UE context map, an otel span per procedure, and a placeholder
// fixed-byte RRC PDU in place of a full ASN.1 PER encoder. This core has no
// F1 CU-DU split (no F1Server, no GNBDUUEF1APID) and no N2/N3 clients of its
// own (NGAP is internal/ngap, a separate single-shot NG Setup client; GTP-U
// forwarding is out of scope) — rrc.Layer keeps only the UE-context and
// RRC-state-machine slice of CentralUnit, keyed by RNTI instead of a
// CU-assigned UE ID since this core has no F1AP ID space to hand out.
package rrc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
	"github.com/openran-go/gnb-core/internal/mac"
)

// State is a UE's RRC connection state.
type State int

const (
	StateIdle State = iota
	StateConnected
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnected:
		return "CONNECTED"
	case StateReleased:
		return "RELEASED"
	default:
		return "UNKNOWN"
	}
}

// UEContext is the per-UE RRC state this layer tracks, from RRC Setup
// Request through release.
type UEContext struct {
	RNTI      uint16
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MACBackend is the slice of internal/mac.Layer that rrc depends on:
// handing downlink RRC messages to MAC. A narrow interface instead of the
// concrete *mac.Layer keeps this package's tests free of a full MAC/PHY
// stand-up.
type MACBackend interface {
	SendRRCMessage(rnti uint16, msgType mac.RRCMessageType, data []byte) error
}

// AuditSink is the slice of internal/audit.Sink that rrc depends on. Left
// nil, RRC Setup/Release procedures simply aren't audited.
type AuditSink interface {
	RecordRRCSetup(rnti uint16)
	RecordRRCRelease(rnti uint16)
}

// Layer consumes uplink RRC messages from the channel passed to NewLayer,
// tracks each UE's RRC state, and hands the corresponding downlink RRC
// response to MAC's SendRRCMessage.
type Layer struct {
	macLayer MACBackend
	logger   *zap.Logger
	tracer   trace.Tracer

	mu   sync.RWMutex
	ues  map[uint16]*UEContext
	rx   <-chan mac.RRCMessage
	stop chan struct{}
	done chan struct{}

	auditSink AuditSink
}

// SetAuditSink wires an audit collaborator. Call before Start; nil is the
// default and simply disables auditing of RRC procedures.
func (l *Layer) SetAuditSink(sink AuditSink) {
	l.auditSink = sink
}

// NewLayer builds an RRC layer reading uplink messages off rx. The caller
// is expected to have wired rx via macLayer.SetRRCChannel beforehand (the
// channel is owned by the caller assembling the gNodeB, not by rrc itself,
// matching how internal/mac leaves channel lifetime to its caller).
func NewLayer(macLayer MACBackend, rx <-chan mac.RRCMessage, logger *zap.Logger) *Layer {
	return &Layer{
		macLayer: macLayer,
		logger:   logger,
		tracer:   otel.Tracer("gnb-rrc"),
		ues:      make(map[uint16]*UEContext),
		rx:       rx,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the goroutine that drains rx and drives the RRC state
// machine. It returns immediately; Stop blocks until the goroutine exits.
func (l *Layer) Start(ctx context.Context) {
	go l.run(ctx)
}

func (l *Layer) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-l.stop:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-l.rx:
			if !ok {
				return
			}
			if err := l.handleUplinkMessage(ctx, msg); err != nil {
				l.logger.Warn("rrc: handling uplink message failed",
					zap.Uint16("rnti", msg.RNTI),
					zap.Error(err),
				)
			}
		}
	}
}

// Stop signals the run loop to exit and waits for it.
func (l *Layer) Stop() {
	close(l.stop)
	<-l.done
}

// handleUplinkMessage processes one uplink RRC message read off rx. This
// core only originates RRC Setup Request traffic from contention
// resolution (there is no RRC Reconfiguration Complete / Release Complete
// path without a PDU session layer), so any uplink arrival is treated as
// the initial connection request.
func (l *Layer) handleUplinkMessage(ctx context.Context, msg mac.RRCMessage) error {
	ctx, span := l.tracer.Start(ctx, "Layer.handleUplinkMessage")
	defer span.End()

	return l.HandleRRCSetupRequest(ctx, msg.RNTI)
}

// HandleRRCSetupRequest moves a UE into CONNECTED and hands the RRC Setup
// (Msg4) response to MAC, mirroring CentralUnit.HandleRRCSetupRequest minus
// the F1 hop: the payload goes to MAC directly instead of to a DU.
func (l *Layer) HandleRRCSetupRequest(ctx context.Context, rnti uint16) error {
	ctx, span := l.tracer.Start(ctx, "Layer.HandleRRCSetupRequest")
	defer span.End()

	now := time.Now()
	l.mu.Lock()
	ueCtx, exists := l.ues[rnti]
	if !exists {
		ueCtx = &UEContext{RNTI: rnti, CreatedAt: now}
		l.ues[rnti] = ueCtx
	}
	ueCtx.State = StateConnected
	ueCtx.UpdatedAt = now
	metrics.ConnectedUEs.Set(float64(len(l.ues)))
	l.mu.Unlock()

	payload := buildRRCSetup(rnti)
	if err := l.macLayer.SendRRCMessage(rnti, mac.RRCSetup, payload); err != nil {
		return fmt.Errorf("rrc: scheduling rrc setup for rnti %d: %w", rnti, err)
	}

	l.logger.Info("rrc setup sent",
		zap.Uint16("rnti", rnti),
		zap.String("state", ueCtx.State.String()),
	)
	span.SetAttributes(
		attribute.Int("rnti", int(rnti)),
		attribute.String("state", ueCtx.State.String()),
	)
	if l.auditSink != nil {
		l.auditSink.RecordRRCSetup(rnti)
	}
	return nil
}

// HandleRRCRelease tears down a UE's RRC context and hands an RRC Release
// to MAC. The caller supplies the RNTI directly; nothing in the gNodeB
// calls it on a timer, and internal/config's cu_cp.inactivity_timer is not
// read.
func (l *Layer) HandleRRCRelease(ctx context.Context, rnti uint16) error {
	ctx, span := l.tracer.Start(ctx, "Layer.HandleRRCRelease")
	defer span.End()

	l.mu.Lock()
	ueCtx, exists := l.ues[rnti]
	if !exists {
		l.mu.Unlock()
		return fmt.Errorf("rrc: no context for rnti %d", rnti)
	}
	ueCtx.State = StateReleased
	ueCtx.UpdatedAt = time.Now()
	delete(l.ues, rnti)
	metrics.ConnectedUEs.Set(float64(len(l.ues)))
	l.mu.Unlock()

	if err := l.macLayer.SendRRCMessage(rnti, mac.RRCRelease, buildRRCRelease(rnti)); err != nil {
		return fmt.Errorf("rrc: scheduling rrc release for rnti %d: %w", rnti, err)
	}

	l.logger.Info("rrc release sent", zap.Uint16("rnti", rnti))
	span.SetAttributes(attribute.Int("rnti", int(rnti)))
	if l.auditSink != nil {
		l.auditSink.RecordRRCRelease(rnti)
	}
	return nil
}

// GetUEContext returns a snapshot of a tracked UE's RRC state.
func (l *Layer) GetUEContext(rnti uint16) (UEContext, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ueCtx, exists := l.ues[rnti]
	if !exists {
		return UEContext{}, fmt.Errorf("rrc: no context for rnti %d", rnti)
	}
	return *ueCtx, nil
}

// ActiveUEs returns a snapshot of every UE currently tracked, for the
// admin API's connection listing.
func (l *Layer) ActiveUEs() []UEContext {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]UEContext, 0, len(l.ues))
	for _, ueCtx := range l.ues {
		out = append(out, *ueCtx)
	}
	return out
}

// buildRRCSetup returns a fixed-layout placeholder RRC Setup PDU, the same
// simplification the MAC SIB1 generator and the original's
// CentralUnit.createRRCSetup use in place of a full ASN.1 PER encoder.
func buildRRCSetup(rnti uint16) []byte {
	return []byte{0x20, byte(rnti >> 8), byte(rnti), 0x00}
}

// buildRRCRelease returns a fixed-layout placeholder RRC Release PDU.
func buildRRCRelease(rnti uint16) []byte {
	return []byte{0x28, byte(rnti >> 8), byte(rnti), 0x00}
}
