// Package mac implements the gNodeB MAC surface above the PHY: slot
// scheduling hand-off, SIB1 payload generation, PRACH-triggered random
// access, C-RNTI allocation, and RRC message dispatch.
// Grounded on layers/src/mac/mod.rs and layers/src/mac/sib1.rs.
package mac

import "fmt"

// PlmnID is a Mobile Country Code + Mobile Network Code pair.
type PlmnID struct {
	MCC [3]byte
	MNC []byte
}

// TestPLMN returns the well-known 001-01 test PLMN.
func TestPLMN() PlmnID {
	return PlmnID{MCC: [3]byte{0, 0, 1}, MNC: []byte{0, 1}}
}

// PlmnIDFromDigits parses a 5- or 6-digit PLMN string ("00101", "310260")
// into its per-digit PlmnID form, the digit-wise counterpart of
// internal/config.ParsePLMN (which returns combined MCC/MNC numbers instead
// of the digit bytes Encode needs).
func PlmnIDFromDigits(plmn string) (PlmnID, error) {
	if len(plmn) != 5 && len(plmn) != 6 {
		return PlmnID{}, fmt.Errorf("mac: invalid PLMN digit string %q", plmn)
	}
	var id PlmnID
	for i := 0; i < 3; i++ {
		d := plmn[i] - '0'
		if d > 9 {
			return PlmnID{}, fmt.Errorf("mac: invalid PLMN digit string %q", plmn)
		}
		id.MCC[i] = d
	}
	mnc := plmn[3:]
	id.MNC = make([]byte, len(mnc))
	for i := 0; i < len(mnc); i++ {
		d := mnc[i] - '0'
		if d > 9 {
			return PlmnID{}, fmt.Errorf("mac: invalid PLMN digit string %q", plmn)
		}
		id.MNC[i] = d
	}
	return id, nil
}

// Encode packs the PLMN identity into its 3-octet BCD-nibble wire layout
// (3GPP TS 24.008 §10.5.1.3): MCC digit2|digit1, MNC digit3|MCC digit3
// (0xF filler for a 2-digit MNC), MNC digit2|digit1.
func (p PlmnID) Encode() [3]byte {
	var out [3]byte
	out[0] = (p.MCC[1] << 4) | p.MCC[0]
	if len(p.MNC) == 3 {
		out[1] = (p.MNC[2] << 4) | p.MCC[2]
	} else {
		out[1] = (0xF << 4) | p.MCC[2]
	}
	out[2] = (p.MNC[1] << 4) | p.MNC[0]
	return out
}

// CellSelectionInfo carries the minimum RX level cell-selection parameters.
type CellSelectionInfo struct {
	QRxLevMin       int8
	QRxLevMinOffset uint8
}

// DefaultCellSelectionInfo matches the original's -140 dBm (encoded as -70,
// doubled per 3GPP TS 38.331 Q-RxLevMin units) default.
func DefaultCellSelectionInfo() CellSelectionInfo {
	return CellSelectionInfo{QRxLevMin: -70, QRxLevMinOffset: 0}
}

// SIB1Config configures the broadcast SIB1 content for one cell.
type SIB1Config struct {
	CellID            int
	PLMNID            PlmnID
	TAC               uint32
	CellSelectionInfo CellSelectionInfo
	FreqBandList      []uint16
}

// DefaultSIB1Config returns the test configuration (PLMN 001-01, TAC 1,
// band 3) used when no operator-specific SIB1 config is supplied.
func DefaultSIB1Config(cellID int) SIB1Config {
	return SIB1Config{
		CellID:            cellID,
		PLMNID:            TestPLMN(),
		TAC:               1,
		CellSelectionInfo: DefaultCellSelectionInfo(),
		FreqBandList:      []uint16{3},
	}
}

// SIB1Generator produces the SIB1 broadcast payload for a cell.
type SIB1Generator struct {
	config SIB1Config
}

// NewSIB1Generator constructs a generator for the given config.
func NewSIB1Generator(config SIB1Config) *SIB1Generator {
	return &SIB1Generator{config: config}
}

// Generate builds the SIB1 payload. This is the same simplified
// fixed-layout encoding as the original (a full ASN.1 PER encoder is out of
// out of scope here), padded to a minimum of 100 bytes.
func (g *SIB1Generator) Generate() []byte {
	buf := make([]byte, 0, 256)

	buf = append(buf, 0x80) // message type indicator

	buf = append(buf, 1) // number of PLMNs
	plmn := g.config.PLMNID.Encode()
	buf = append(buf, plmn[:]...)

	buf = append(buf,
		byte((g.config.TAC>>16)&0xFF),
		byte((g.config.TAC>>8)&0xFF),
		byte(g.config.TAC&0xFF),
	)

	cellID := uint32(g.config.CellID) << 4
	buf = append(buf,
		byte(cellID>>24), byte(cellID>>16), byte(cellID>>8), byte(cellID),
	)

	buf = append(buf, 0x00) // cell barred: not barred
	buf = append(buf, 0x01) // intra-freq reselection: allowed

	buf = append(buf, byte(g.config.CellSelectionInfo.QRxLevMin))
	buf = append(buf, g.config.CellSelectionInfo.QRxLevMinOffset)

	buf = append(buf, byte(len(g.config.FreqBandList)))
	for _, band := range g.config.FreqBandList {
		buf = append(buf, byte(band>>8), byte(band))
	}

	buf = append(buf, 0) // scheduling info list: empty
	buf = append(buf, 0) // SI scheduling info: empty

	buf = append(buf, 0x01) // downlink config common presence flags
	buf = append(buf, 0x80) // SSB positions in burst: first active
	buf = append(buf, 20)   // SSB periodicity: 20ms
	buf = append(buf, 0x00) // PDCCH config common: use MIB CORESET#0
	buf = append(buf, 0x00) // PDSCH config common: default
	buf = append(buf, 0x00) // uplink config common: default (FDD)
	buf = append(buf, 0x00) // supplementary uplink: not present
	buf = append(buf, 0x00) // TDD-UL-DL-ConfigCommon: not present (FDD)

	for len(buf) < 100 {
		buf = append(buf, 0x00)
	}

	return buf
}
