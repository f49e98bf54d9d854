package mac

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/common/metrics"
	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/prach"
)

// AuditSink is the slice of internal/audit.Sink that MAC depends on: an
// async, never-blocking record of RA procedures. Left nil, the hooks in
// ReportPRACHDetection/ScheduleRAR are skipped entirely.
type AuditSink interface {
	RecordPRACHDetection(rnti uint16, timingAdvanceUs float32)
	RecordRARScheduled(rnti uint16)
}

// RRCMessageType distinguishes the RRC procedure a MAC-forwarded message
// belongs to.
type RRCMessageType int

const (
	RRCSetup RRCMessageType = iota
	RRCRelease
	RRCReconfiguration
)

// RRCMessage is a MAC-to-RRC (or RRC-to-MAC) handoff envelope.
type RRCMessage struct {
	RNTI uint16
	Type RRCMessageType
	Data []byte
}

// RandomAccessProcedure tracks one in-flight contention-based RA attempt
// from PRACH detection through Msg3.
type RandomAccessProcedure struct {
	TCRNTI         uint16
	TimingAdvance  uint16
	PRACHFrame     uint32
	PRACHSlot      uint8
	PreambleIndex  uint8
}

// Config configures a MAC layer instance for one cell.
type Config struct {
	CellID        int
	Numerology    frame.Numerology
	Coreset0Index int
	SIB1Config    SIB1Config
	MaxUEs        uint16
}

// Layer is the gNodeB MAC surface: it hands slot schedules and the SIB1
// payload to the PHY, tracks random access procedures triggered by PRACH
// detections, allocates C-RNTIs, and accepts downlink RRC messages (logged
// only).
type Layer struct {
	config        Config
	scheduler     *frame.Scheduler
	sib1Generator *SIB1Generator
	logger        *zap.Logger
	tracer        trace.Tracer

	mu          sync.Mutex
	sib1Payload []byte
	initialized bool
	raProcs     []RandomAccessProcedure

	nextCRNTI atomic.Uint32

	rrcMu sync.RWMutex
	rrcTx chan<- RRCMessage

	auditSink AuditSink
}

// SetAuditSink wires an audit collaborator. Call before Initialize; nil is
// the default and simply disables auditing of RA procedures.
func (l *Layer) SetAuditSink(sink AuditSink) {
	l.auditSink = sink
}

// NewLayer constructs a MAC layer for the given cell configuration.
func NewLayer(config Config, logger *zap.Logger) (*Layer, error) {
	scheduler, err := frame.NewScheduler(config.Numerology, config.Coreset0Index)
	if err != nil {
		return nil, fmt.Errorf("mac: building scheduler: %w", err)
	}

	l := &Layer{
		config:        config,
		scheduler:     scheduler,
		sib1Generator: NewSIB1Generator(config.SIB1Config),
		logger:        logger,
		tracer:        otel.Tracer("gnb-mac"),
	}
	l.nextCRNTI.Store(0x4601) // first usable C-RNTI per 3GPP TS 38.321 Table 7.1-1

	return l, nil
}

// Initialize generates the SIB1 payload and marks the layer ready.
func (l *Layer) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sib1Payload = l.sib1Generator.Generate()
	l.initialized = true

	l.logger.Info("mac layer initialized",
		zap.Int("cell_id", l.config.CellID),
		zap.Int("sib1_bytes", len(l.sib1Payload)),
	)
	return nil
}

// SetRRCChannel stores the channel for uplink RRC messages (Msg3 payloads)
// bound for internal/rrc. No code in Layer sends on it.
func (l *Layer) SetRRCChannel(tx chan<- RRCMessage) {
	l.rrcMu.Lock()
	defer l.rrcMu.Unlock()
	l.rrcTx = tx
}

// GetSlotSchedule returns the PHY's SSB/SIB1 schedule for a slot.
func (l *Layer) GetSlotSchedule(sfn, slot int) (frame.SlotSchedule, error) {
	l.mu.Lock()
	initialized := l.initialized
	l.mu.Unlock()
	if !initialized {
		return frame.SlotSchedule{}, fmt.Errorf("mac: not initialized")
	}
	return l.scheduler.GetSlotSchedule(sfn, slot), nil
}

// GetSIB1Payload returns the generated SIB1 bytes.
func (l *Layer) GetSIB1Payload() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.initialized {
		return nil, fmt.Errorf("mac: not initialized")
	}
	return l.sib1Payload, nil
}

// AllocateCRNTI hands out the next C-RNTI, counting up from 0x4601. 3GPP TS
// 38.321's 0xFFF3 upper bound is not enforced and the counter does not wrap
// back to the start of the range: a single-cell lab deployment stays well
// under the 16-bit allocation range regardless.
func (l *Layer) AllocateCRNTI() uint16 {
	return uint16(l.nextCRNTI.Add(1) - 1)
}

// ReportPRACHDetection processes a PHY-reported PRACH detection result,
// starting a random access procedure per detected preamble.
func (l *Layer) ReportPRACHDetection(ctx context.Context, detection prach.DetectionResult) error {
	ctx, span := l.tracer.Start(ctx, "Layer.ReportPRACHDetection")
	defer span.End()

	l.mu.Lock()
	initialized := l.initialized
	l.mu.Unlock()
	if !initialized {
		return fmt.Errorf("mac: not initialized")
	}

	l.logger.Info("prach detection reported",
		zap.Uint32("frame", detection.Frame),
		zap.Uint8("slot", detection.Slot),
		zap.Int("preambles", len(detection.Preambles)),
	)

	for _, preamble := range detection.Preambles {
		metrics.PRACHDetections.Inc()
		tcRNTI := l.AllocateCRNTI()

		proc := RandomAccessProcedure{
			TCRNTI:        tcRNTI,
			TimingAdvance: uint16(preamble.TimingAdvanceUs * 16.0),
			PRACHFrame:    detection.Frame,
			PRACHSlot:     detection.Slot,
			PreambleIndex: preamble.PreambleIndex,
		}

		l.mu.Lock()
		l.raProcs = append(l.raProcs, proc)
		l.mu.Unlock()

		l.logger.Info("scheduled rar",
			zap.Uint16("tc_rnti", tcRNTI),
			zap.Float32("timing_advance_us", preamble.TimingAdvanceUs),
		)

		if l.auditSink != nil {
			l.auditSink.RecordPRACHDetection(tcRNTI, preamble.TimingAdvanceUs)
		}
	}

	span.SetAttributes(attribute.Int("preambles", len(detection.Preambles)))
	return nil
}

// SendRRCMessage accepts an RRC message destined for a UE and logs it, as
// the original's MAC layer does. The message is not scheduled: no PDSCH
// carrying it is built, here or in the producer loop.
func (l *Layer) SendRRCMessage(rnti uint16, msgType RRCMessageType, data []byte) error {
	l.mu.Lock()
	initialized := l.initialized
	l.mu.Unlock()
	if !initialized {
		return fmt.Errorf("mac: not initialized")
	}

	l.logger.Info("mac sending rrc message",
		zap.Uint16("rnti", rnti),
		zap.Int("msg_type", int(msgType)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// ScheduleRAR generates a Random Access Response MAC PDU for a TC-RNTI.
// MAC subheader (E/T/RAPID) + MAC RAR (TA command, UL grant, TC-RNTI), per
// 3GPP TS 38.321 §6.2.3.
func (l *Layer) ScheduleRAR(tcRNTI uint16, timingAdvance uint16) []byte {
	buf := make([]byte, 0, 8)
	buf = append(buf, 0x40) // E=0, T=1, RAPID=0

	taHigh := byte((timingAdvance >> 4) & 0xFF)
	taLow := byte((timingAdvance & 0x0F) << 4)
	buf = append(buf, taHigh)
	buf = append(buf, taLow|0x0F) // TA low nibble + UL grant high bits
	buf = append(buf, 0xFF, 0xFF) // remainder of UL grant (fixed placeholder)
	buf = append(buf, byte(tcRNTI>>8), byte(tcRNTI))

	l.logger.Info("generated rar pdu", zap.Uint16("tc_rnti", tcRNTI), zap.Int("bytes", len(buf)))
	metrics.RARsScheduled.Inc()
	if l.auditSink != nil {
		l.auditSink.RecordRARScheduled(tcRNTI)
	}
	return buf
}

// PendingRandomAccess returns a snapshot of in-flight RA procedures.
func (l *Layer) PendingRandomAccess() []RandomAccessProcedure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]RandomAccessProcedure, len(l.raProcs))
	copy(out, l.raProcs)
	return out
}
