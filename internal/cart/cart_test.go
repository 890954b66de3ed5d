package cart

import "testing"

func makeTestROM() []byte {
	rom := make([]byte, 0x100)
	copy(rom[0xA0:0xAC], []byte("GBACORETEST "))
	copy(rom[0xAC:0xB0], []byte("GBAE"))
	copy(rom[0xB0:0xB2], []byte("01"))
	rom[0xB3] = 0x96
	rom[0xBC] = 0x01
	rom[0xBD] = 0x42
	return rom
}

func TestParseHeaderFields(t *testing.T) {
	h, err := ParseHeader(makeTestROM())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.GameCode != "GBAE" {
		t.Errorf("GameCode = %q", h.GameCode)
	}
	if h.SoftwareVer != 0x01 || h.HeaderChecksum != 0x42 {
		t.Errorf("version/checksum = %02X/%02X", h.SoftwareVer, h.HeaderChecksum)
	}
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x10))
	if err == nil {
		t.Fatal("expected errTooSmall for a truncated ROM")
	}
}

func TestReadROM8Mirrors(t *testing.T) {
	c := New([]byte{1, 2, 3, 4})
	if c.ReadROM8(4) != 1 {
		t.Errorf("expected ROM to wrap at its own length")
	}
}

func TestSRAMRoundTrip(t *testing.T) {
	c := New(makeTestROM())
	c.WriteSRAM8(0x10, 0x7F)
	if c.ReadSRAM8(0x10) != 0x7F {
		t.Errorf("SRAM round trip failed")
	}
}

func TestSaveLoadRAM(t *testing.T) {
	c := New(makeTestROM())
	c.WriteSRAM8(0, 0xAA)
	saved := c.SaveRAM()

	c2 := New(makeTestROM())
	c2.LoadRAM(saved)
	if c2.ReadSRAM8(0) != 0xAA {
		t.Errorf("LoadRAM did not restore saved byte")
	}
}
