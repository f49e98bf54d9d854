// Package cellid consolidates the cell-identity helpers scattered across
// the PHY/MAC surface: physical cell identity decomposition (already
// implemented in internal/nrsync for PSS/SSS generation) and the NR Cell
// Identity / NR-CGI construction consumed by the admin API.
// Grounded on gnb/src/main.rs's "gnb_id: PCI as gNB ID
// for now" placeholder (original source) and 3GPP TS 38.413's 36-bit NR
// Cell Identity (gNB ID + cell local ID) layout.
package cellid

import (
	"fmt"

	"github.com/openran-go/gnb-core/internal/nrsync"
)

// DecomposePCI splits a physical cell identity into its NID1 (0..335) and
// NID2 (0..2) components, per PCI = 3*NID1 + NID2. Thin re-export of
// internal/nrsync.NID so callers outside the PHY sync-signal path don't need
// to import a package named for PSS/SSS generation just to decompose a PCI.
func DecomposePCI(pci int) (nid1, nid2 int) {
	return nrsync.NID(pci)
}

// CellIdentity is the 36-bit NR Cell Identity (3GPP TS 38.413 §9.3.1.7):
// a gNB ID of configurable length (22..32 bits) plus a cell local ID filling
// the remaining low-order bits.
type CellIdentity struct {
	GNBID       uint32
	GNBIDBits   int
	CellLocalID uint32
}

// NewCellIdentity builds a CellIdentity, validating that gnbID fits in
// gnbIDBits and the cell local ID fills exactly the remaining bits of the
// 36-bit identity.
func NewCellIdentity(gnbID uint32, gnbIDBits int, cellLocalID uint32) (CellIdentity, error) {
	if gnbIDBits < 22 || gnbIDBits > 32 {
		return CellIdentity{}, fmt.Errorf("cellid: gNB ID bit length %d outside [22,32]", gnbIDBits)
	}
	if gnbID >= (1 << uint(gnbIDBits)) {
		return CellIdentity{}, fmt.Errorf("cellid: gNB ID %d does not fit in %d bits", gnbID, gnbIDBits)
	}
	localBits := 36 - gnbIDBits
	if cellLocalID >= (1 << uint(localBits)) {
		return CellIdentity{}, fmt.Errorf("cellid: cell local ID %d does not fit in %d bits", cellLocalID, localBits)
	}
	return CellIdentity{GNBID: gnbID, GNBIDBits: gnbIDBits, CellLocalID: cellLocalID}, nil
}

// Value packs the identity into its 36-bit integer form, MSB-first
// (gNB ID, then cell local ID).
func (c CellIdentity) Value() uint64 {
	localBits := uint(36 - c.GNBIDBits)
	return (uint64(c.GNBID) << localBits) | uint64(c.CellLocalID)
}

// NRCGI is an NR Cell Global Identity: a PLMN plus a cell identity.
type NRCGI struct {
	PLMNMCC uint16
	PLMNMNC uint16
	Cell    CellIdentity
}

// String formats the NR-CGI as "<mcc>-<mnc>-<cell identity hex>", the same
// human-readable shape used for PLMN strings in logs throughout the pack.
func (n NRCGI) String() string {
	return fmt.Sprintf("%03d-%02d-%09X", n.PLMNMCC, n.PLMNMNC, n.Cell.Value())
}
