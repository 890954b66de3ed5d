package cart

import "strings"

const headerSize = 0xC0

// Header is the decoded GBA ROM header (GBATEK cartridge header layout):
// fixed offsets, trimmed ASCII title, graceful failure on a too-small ROM.
type Header struct {
	Title          string // 0xA0-0xAB, trimmed ASCII
	GameCode       string // 0xAC-0xAF
	MakerCode      string // 0xB0-0xB1
	MainUnitCode   byte   // 0xB3
	SoftwareVer    byte   // 0xBC
	HeaderChecksum byte   // 0xBD
}

func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerSize {
		return nil, errTooSmall
	}
	h := &Header{
		Title:          strings.TrimRight(string(rom[0xA0:0xAC]), "\x00"),
		GameCode:       string(rom[0xAC:0xB0]),
		MakerCode:      string(rom[0xB0:0xB2]),
		MainUnitCode:   rom[0xB3],
		SoftwareVer:    rom[0xBC],
		HeaderChecksum: rom[0xBD],
	}
	return h, nil
}
