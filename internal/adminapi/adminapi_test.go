package adminapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openran-go/gnb-core/internal/config"
	"github.com/openran-go/gnb-core/internal/frame"
	"github.com/openran-go/gnb-core/internal/mac"
	"github.com/openran-go/gnb-core/internal/rrc"
	"github.com/openran-go/gnb-core/internal/transport"
)

type fakeSchedule struct{}

func (fakeSchedule) GetSlotSchedule(sfn, slot int) (frame.SlotSchedule, error) {
	return frame.SlotSchedule{SFN: sfn, Slot: slot}, nil
}

type fakeRA struct{ procs []mac.RandomAccessProcedure }

func (f fakeRA) PendingRandomAccess() []mac.RandomAccessProcedure { return f.procs }

type fakePosition struct {
	sfn, slot, slotsPerFrame int
}

func (f fakePosition) CurrentPosition() (int, int) { return f.sfn, f.slot }
func (f fakePosition) SlotsPerFrame() int          { return f.slotsPerFrame }

type fakeUEs struct{ ues []rrc.UEContext }

func (f fakeUEs) ActiveUEs() []rrc.UEContext { return f.ues }

type fakeTransportStats struct{ stats transport.Stats }

func (f fakeTransportStats) Stats() transport.Stats { return f.stats }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Cell.PCI = 42
	cfg.Cell.PLMN = "00101"
	cfg.Cell.TAC = 1
	cfg.Cell.DLArfcn = 368500
	cfg.Cell.Band = 78
	cfg.Cell.ChannelBandwidthMHz = 20
	cfg.Cell.CommonSCSkHz = 30
	cfg.Obs.AdminPort = 9101
	return cfg
}

func TestHandleStatusReportsCellIdentity(t *testing.T) {
	s := New(testConfig(), fakeSchedule{}, fakeRA{}, fakePosition{slotsPerFrame: 20}, fakeUEs{}, fakeTransportStats{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 42, body["pci"])
	assert.Equal(t, "00101", body["plmn"])
}

func TestHandleScheduleReturnsRequestedCount(t *testing.T) {
	s := New(testConfig(), fakeSchedule{}, fakeRA{}, fakePosition{sfn: 5, slot: 0, slotsPerFrame: 20}, fakeUEs{}, fakeTransportStats{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/schedule?n=3", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Schedule []frame.SlotSchedule `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Schedule, 3)
}

func TestHandleScheduleUnavailableWithoutDependencies(t *testing.T) {
	s := New(testConfig(), nil, fakeRA{}, nil, fakeUEs{}, fakeTransportStats{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/schedule", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStatsAggregatesCounters(t *testing.T) {
	s := New(testConfig(), fakeSchedule{}, fakeRA{procs: []mac.RandomAccessProcedure{{TCRNTI: 1}}},
		fakePosition{slotsPerFrame: 20}, fakeUEs{ues: []rrc.UEContext{{RNTI: 1}, {RNTI: 2}}},
		fakeTransportStats{stats: transport.Stats{TXSamples: 100}}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["pending_random_access"])
	assert.EqualValues(t, 2, body["connected_ues"])
}
