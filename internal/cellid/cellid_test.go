package cellid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposePCIMatchesFormula(t *testing.T) {
	nid1, nid2 := DecomposePCI(500)
	assert.Equal(t, 500, nid1*3+nid2)
}

func TestNewCellIdentityPacksGNBIDAndLocalID(t *testing.T) {
	ci, err := NewCellIdentity(0x19B, 28, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x19B)<<8|1, ci.Value())
}

func TestNewCellIdentityRejectsOversizedGNBID(t *testing.T) {
	_, err := NewCellIdentity(1<<22, 22, 0)
	assert.Error(t, err)
}

func TestNewCellIdentityRejectsOversizedLocalID(t *testing.T) {
	_, err := NewCellIdentity(0, 32, 1<<4)
	assert.Error(t, err)
}

func TestNRCGIString(t *testing.T) {
	ci, err := NewCellIdentity(0x19B, 28, 1)
	require.NoError(t, err)
	cgi := NRCGI{PLMNMCC: 1, PLMNMNC: 1, Cell: ci}
	assert.Equal(t, "001-01-000019B01", cgi.String())
}
