package cpu

import (
	"testing"

	"github.com/rolfmatthias/gbacore/internal/bus"
)

// BIOS boot: the first fetched instruction is a branch to 0x08, and the
// cycle counter advances.
func TestBIOSBootBranch(t *testing.T) {
	bios := make([]byte, bus.BIOSSize)
	// B #0 encoded with cond=AL, offset computed so target = 0x08:
	// target = instrAddr(0) + 8 + (offset<<2) = 8 => offset = 0.
	bios[0], bios[1], bios[2], bios[3] = 0x00, 0x00, 0x00, 0xEA
	b := bus.New(bios, nil)

	c := New()
	c.Reset()
	before := c.Cycles()
	cycles, err := c.Step(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Registers().PC() != 0x08 {
		t.Errorf("PC = %08X, want 00000008", c.Registers().PC())
	}
	if cycles <= 0 {
		t.Errorf("cycles = %d, want > 0", cycles)
	}
	if c.Cycles() <= before {
		t.Errorf("cumulative cycle counter did not advance")
	}
}

// Skip-BIOS init register values match what the BIOS leaves behind.
func TestSkipBIOSInit(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	if c.Registers().PC() != 0x0800_0000 {
		t.Errorf("PC = %08X", c.Registers().PC())
	}
	if c.Registers().Mode() != ModeSystem {
		t.Errorf("mode = %X, want System", c.Registers().Mode())
	}
	if c.Registers().Reg(13) != 0x0300_7F00 {
		t.Errorf("SP_usr = %08X", c.Registers().Reg(13))
	}
	if c.Registers().bankedSP[bankIRQ] != 0x0300_7FA0 {
		t.Errorf("SP_irq = %08X", c.Registers().bankedSP[bankIRQ])
	}
	if c.Registers().bankedSP[bankSVC] != 0x0300_7FE0 {
		t.Errorf("SP_svc = %08X", c.Registers().bankedSP[bankSVC])
	}
}

// LDMFD R13!, {R0-R3, PC} with write-back.
func TestLDMFDWriteBack(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	// LDMFD R13!, {R0,R1,R2,R3,R15}: cond=AL, P=0(post),U=1(up),S=0,W=1,L=1
	// Rn=13, register list = 0x800F (R0-R3, R15). Baked into the ROM image
	// at the skip-BIOS entry point; ROM is read-only through the bus.
	rom := make([]byte, 0x200)
	rom[0], rom[1], rom[2], rom[3] = 0x0F, 0x80, 0xBD, 0xE8
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.Registers().SetReg(13, 0x0300_7F00)
	b.Write32(0x0300_7F00, 0)
	b.Write32(0x0300_7F04, 1)
	b.Write32(0x0300_7F08, 2)
	b.Write32(0x0300_7F0C, 3)
	b.Write32(0x0300_7F10, 0x0800_0100)

	c.regs.SetPC(0x0800_0000)

	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := uint8(0); i < 4; i++ {
		if got := c.Registers().Reg(i); got != uint32(i) {
			t.Errorf("R%d = %08X, want %08X", i, got, i)
		}
	}
	if c.Registers().PC() != 0x0800_0100 {
		t.Errorf("PC = %08X, want 08000100", c.Registers().PC())
	}
	if c.Registers().Reg(13) != 0x0300_7F14 {
		t.Errorf("R13 = %08X, want 03007F14", c.Registers().Reg(13))
	}
}

// THUMB long branch with link at PC=0x0800_0100, offset 0x10:
// first halfword F000 loads the high part into LR, second halfword F810
// completes the branch. Post: LR=0x0800_0105 (bit 0 set), PC=0x0800_0124.
func TestThumbLongBranchLink(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x400)
	rom[0x100], rom[0x101] = 0x00, 0xF0
	rom[0x102], rom[0x103] = 0x10, 0xF8
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetThumbState(true)
	c.regs.SetPC(0x0800_0100)

	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Registers().PC() != 0x0800_0124 {
		t.Errorf("PC = %08X, want 08000124", c.Registers().PC())
	}
	if c.Registers().Reg(14) != 0x0800_0105 {
		t.Errorf("LR = %08X, want 08000105", c.Registers().Reg(14))
	}
}

// A push followed by a pop of the same register set restores the
// registers exactly and leaves SP where it started.
func TestThumbPushPopRoundTrip(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x100)
	rom[0], rom[1] = 0x0F, 0xB4 // PUSH {R0-R3}
	rom[2], rom[3] = 0x0F, 0xBC // POP  {R0-R3}
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetThumbState(true)
	c.regs.SetPC(0x0800_0000)
	want := [4]uint32{0x11, 0x22, 0x33, 0x44}
	for i, v := range want {
		c.regs.SetReg(uint8(i), v)
	}
	spBefore := c.Registers().Reg(13)

	if _, err := c.Step(b); err != nil {
		t.Fatalf("push: %v", err)
	}
	for i := range want {
		c.regs.SetReg(uint8(i), 0xDEAD)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatalf("pop: %v", err)
	}

	for i, v := range want {
		if got := c.Registers().Reg(uint8(i)); got != v {
			t.Errorf("R%d = %08X, want %08X", i, got, v)
		}
	}
	if got := c.Registers().Reg(13); got != spBefore {
		t.Errorf("SP = %08X, want %08X after balanced push/pop", got, spBefore)
	}
}

func TestARMCompareFlags(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x100)
	// CMP R0, R1 (E1500001), then CMP R2, R3 (E1520003).
	rom[0], rom[1], rom[2], rom[3] = 0x01, 0x00, 0x50, 0xE1
	rom[4], rom[5], rom[6], rom[7] = 0x03, 0x00, 0x52, 0xE1
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetPC(0x0800_0000)
	c.regs.SetReg(0, 5)
	c.regs.SetReg(1, 5)
	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Registers().FlagZ() || !c.Registers().FlagC() {
		t.Errorf("CMP of equal values: Z=%v C=%v, want both true", c.Registers().FlagZ(), c.Registers().FlagC())
	}

	c.regs.SetReg(2, 3)
	c.regs.SetReg(3, 7)
	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Registers().FlagZ() || c.Registers().FlagC() || !c.Registers().FlagN() {
		t.Errorf("CMP 3,7: Z=%v C=%v N=%v, want borrow (C clear) and negative",
			c.Registers().FlagZ(), c.Registers().FlagC(), c.Registers().FlagN())
	}
}

func TestHalfwordStoreLoadRoundTrip(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x100)
	// STRH R0, [R1] (E1C100B0), then LDRH R2, [R1] (E1D120B0).
	rom[0], rom[1], rom[2], rom[3] = 0xB0, 0x00, 0xC1, 0xE1
	rom[4], rom[5], rom[6], rom[7] = 0xB0, 0x20, 0xD1, 0xE1
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetPC(0x0800_0000)
	c.regs.SetReg(0, 0xBEEF)
	c.regs.SetReg(1, 0x0300_1000)
	if _, err := c.Step(b); err != nil {
		t.Fatalf("STRH: %v", err)
	}
	if _, err := c.Step(b); err != nil {
		t.Fatalf("LDRH: %v", err)
	}
	if got := c.Registers().Reg(2); got != 0xBEEF {
		t.Errorf("R2 = %08X, want 0000BEEF", got)
	}
}

func TestUMULLProducesFullProduct(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x100)
	// UMULL R0, R1, R2, R3: E0810392 (RdLo=R0, RdHi=R1, Rm=R2, Rs=R3).
	rom[0], rom[1], rom[2], rom[3] = 0x92, 0x03, 0x81, 0xE0
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetPC(0x0800_0000)
	c.regs.SetReg(2, 0xFFFF_FFFF)
	c.regs.SetReg(3, 2)
	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lo, hi := c.Registers().Reg(0), c.Registers().Reg(1); lo != 0xFFFF_FFFE || hi != 1 {
		t.Errorf("UMULL = %08X:%08X, want 00000001:FFFFFFFE", hi, lo)
	}
}

func TestIRQExceptionEntry(t *testing.T) {
	c := New()
	c.InitSkipBIOS()

	rom := make([]byte, 0x100)
	rom[0], rom[1], rom[2], rom[3] = 0x00, 0x00, 0xA0, 0xE1 // MOV R0,R0 (NOP)
	b := bus.New(make([]byte, bus.BIOSSize), rom)

	c.regs.SetPC(0x0800_0000)
	b.IRQ().WriteIME(true)
	b.IRQ().WriteIE(1)
	b.IRQ().Request(1)

	if _, err := c.Step(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Registers().PC() != 0x18 {
		t.Errorf("PC = %08X, want 18", c.Registers().PC())
	}
	if c.Registers().Mode() != ModeIRQ {
		t.Errorf("mode = %X, want IRQ", c.Registers().Mode())
	}
	if !c.Registers().IRQDisabled() {
		t.Errorf("IRQ should be disabled after exception entry")
	}
}
