package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
cu_cp:
  amf:
    addr: 127.0.0.1
    port: 38412
    bind_addr: 0.0.0.0
cu_up:
  gtpu_bind_addr: 0.0.0.0
  gtpu_ext_addr: 127.0.0.1
ru_sdr:
  device_driver: tcp
  device_args: ""
  srate: 23.04
  tx_gain: 0
  rx_gain: 0
cell_cfg:
  dl_arfcn: 368500
  band: 3
  channel_bandwidth_MHz: 20
  common_scs: 15
  plmn: "00101"
  tac: 1
  pci: 500
  pdcch:
    ss0_index: 0
    coreset0_index: 6
  prach:
    prach_config_index: 0
    prach_root_sequence_index: 1
    zero_correlation_zone: 12
    prach_frequency_start: 0
log:
  all_level: info
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gnb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(500), cfg.Cell.PCI)
	assert.Equal(t, uint32(7200), cfg.CuCP.InactivityTimer)
	assert.Equal(t, uint8(64), cfg.Cell.PRACH.TotalPreambles)
}

func TestLoadAppliesObservabilityDefaults(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint16(9100), cfg.Obs.MetricsPort)
	assert.Equal(t, uint16(9101), cfg.Obs.AdminPort)
	assert.Equal(t, "", cfg.Obs.ClickHouse.DSN)
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	path := writeTempConfig(t, validYAML+"\nbogus_key: true\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/gnb.yaml")
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRangePCI(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Cell.PCI = 2000
	err = cfg.Validate()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidateRejectsUnsupportedSCS(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Cell.CommonSCSkHz = 60
	assert.Error(t, cfg.Validate())
}

func TestParsePLMNFiveAndSixDigit(t *testing.T) {
	mcc, mnc, err := ParsePLMN("00101")
	require.NoError(t, err)
	assert.Equal(t, uint16(1), mcc)
	assert.Equal(t, uint16(1), mnc)

	mcc, mnc, err = ParsePLMN("310260")
	require.NoError(t, err)
	assert.Equal(t, uint16(310), mcc)
	assert.Equal(t, uint16(260), mnc)
}

func TestParsePLMNInvalidLength(t *testing.T) {
	_, _, err := ParsePLMN("1")
	assert.Error(t, err)
}
