package emu

import "testing"

// A frame that enables the VBlank IRQ sees IF bit 0 set and the CPU's PC
// land at the IRQ vector at least once during that frame.
func TestFrameRaisesVBlankIRQ(t *testing.T) {
	bios := make([]byte, 0x4000)
	rom := make([]byte, 0x100)
	// ARM NOP (MOV R0,R0) at the skip-BIOS entry point and forever after
	// via PC wraparound inside the tiny ROM image below; the CPU will
	// execute whatever garbage follows, which is fine: this test only
	// cares about the GPU/IRQ wiring, not instruction semantics.
	rom[0], rom[1], rom[2], rom[3] = 0x00, 0x00, 0xA0, 0xE1

	m := New(bios, rom, Config{SkipBIOS: true})
	m.Bus.IO().Write8(0x04, 0x08) // DISPSTAT: VBlank IRQ enable
	m.Bus.IRQ().WriteIE(1)        // IE: VBlank
	m.Bus.IRQ().WriteIME(true)

	sawIRQVector := false
	present := func(buf []uint16) {
		if len(buf) == 0 {
			t.Fatalf("present called with empty frame buffer")
		}
	}

	// Run enough frames that the IRQ line, once raised, is observed.
	for i := 0; i < 2; i++ {
		m.Frame(present)
		if m.CPU.Registers().PC() == 0x18 {
			sawIRQVector = true
		}
	}

	if m.Bus.IRQ().ReadIF()&1 == 0 && !sawIRQVector {
		t.Errorf("expected VBlank IRQ to be requested or taken during the frame")
	}
}

func TestSetKeypadReachesIOKeypad(t *testing.T) {
	bios := make([]byte, 0x4000)
	rom := make([]byte, 0x100)
	m := New(bios, rom, Config{SkipBIOS: true})

	m.SetKeypad(0x03FF &^ 0x1)
	if m.Bus.IO().Keypad.Read()&0x1 != 0 {
		t.Errorf("expected bit 0 cleared after SetKeypad")
	}
}
