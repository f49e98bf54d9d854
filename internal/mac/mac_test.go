package mac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/prach"
)

func TestPlmnEncoding(t *testing.T) {
	plmn := TestPLMN()
	encoded := plmn.Encode()
	assert.Equal(t, byte(0x00), encoded[0])
	assert.Equal(t, byte(0xF1), encoded[1])
	assert.Equal(t, byte(0x10), encoded[2])
}

func TestSIB1GenerationMinimumSize(t *testing.T) {
	config := DefaultSIB1Config(1)
	gen := NewSIB1Generator(config)
	payload := gen.Generate()
	assert.GreaterOrEqual(t, len(payload), 100)
}

func newTestLayer(t *testing.T) *Layer {
	t.Helper()
	mu, err := frame.NumerologyFromSCS(15)
	require.NoError(t, err)
	config := Config{
		CellID:        1,
		Numerology:    mu,
		Coreset0Index: 6,
		SIB1Config:    DefaultSIB1Config(1),
		MaxUEs:        32,
	}
	l, err := NewLayer(config, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, l.Initialize())
	return l
}

func TestLayerInitializationAndSlotSchedule(t *testing.T) {
	l := newTestLayer(t)

	schedule, err := l.GetSlotSchedule(0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.SSBs)

	sib1, err := l.GetSIB1Payload()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(sib1), 100)
}

func TestAllocateCRNTIIncrementsAndStartsAtReservedValue(t *testing.T) {
	l := newTestLayer(t)
	rnti1 := l.AllocateCRNTI()
	rnti2 := l.AllocateCRNTI()
	assert.Equal(t, uint16(0x4601), rnti1)
	assert.NotEqual(t, rnti1, rnti2)
}

func TestReportPRACHDetectionStartsRAProcedure(t *testing.T) {
	l := newTestLayer(t)

	detection := prach.DetectionResult{
		Frame: 10,
		Slot:  9,
		Preambles: []prach.PreambleDetection{
			{PreambleIndex: 3, TimingAdvanceUs: 2.0},
		},
	}

	err := l.ReportPRACHDetection(context.Background(), detection)
	require.NoError(t, err)

	pending := l.PendingRandomAccess()
	require.Len(t, pending, 1)
	assert.Equal(t, uint8(3), pending[0].PreambleIndex)
	assert.Equal(t, uint16(32), pending[0].TimingAdvance)
}

type fakeAuditSink struct {
	prachCalls int
	rarCalls   int
}

func (f *fakeAuditSink) RecordPRACHDetection(rnti uint16, timingAdvanceUs float32) {
	f.prachCalls++
}

func (f *fakeAuditSink) RecordRARScheduled(rnti uint16) {
	f.rarCalls++
}

func TestReportPRACHDetectionNotifiesAuditSink(t *testing.T) {
	l := newTestLayer(t)
	sink := &fakeAuditSink{}
	l.SetAuditSink(sink)

	detection := prach.DetectionResult{
		Frame:     10,
		Slot:      9,
		Preambles: []prach.PreambleDetection{{PreambleIndex: 3, TimingAdvanceUs: 2.0}},
	}
	require.NoError(t, l.ReportPRACHDetection(context.Background(), detection))

	assert.Equal(t, 1, sink.prachCalls)
}

func TestScheduleRARNotifiesAuditSink(t *testing.T) {
	l := newTestLayer(t)
	sink := &fakeAuditSink{}
	l.SetAuditSink(sink)

	l.ScheduleRAR(0x4601, 100)

	assert.Equal(t, 1, sink.rarCalls)
}

func TestScheduleRARProducesExpectedLength(t *testing.T) {
	l := newTestLayer(t)
	rar := l.ScheduleRAR(0x4601, 100)
	assert.Len(t, rar, 7)
	assert.Equal(t, byte(0x40), rar[0])
	assert.Equal(t, byte(0x46), rar[5])
	assert.Equal(t, byte(0x01), rar[6])
}

func TestSendRRCMessageRequiresInitialization(t *testing.T) {
	mu, err := frame.NumerologyFromSCS(15)
	require.NoError(t, err)
	config := Config{
		CellID:        1,
		Numerology:    mu,
		Coreset0Index: 6,
		SIB1Config:    DefaultSIB1Config(1),
	}
	l, err := NewLayer(config, zap.NewNop())
	require.NoError(t, err)

	err = l.SendRRCMessage(0x4601, RRCSetup, []byte{1, 2, 3})
	assert.Error(t, err)
}
