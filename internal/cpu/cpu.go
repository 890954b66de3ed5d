// Package cpu implements the ARM7TDMI interpreter: fetch/decode/execute
// for ARM and THUMB instruction streams, mode-banked registers, CPSR
// flags, exception entry and per-instruction cycle accounting.
package cpu

import "github.com/rolfmatthias/gbacore/internal/bus"

// ARM7TDMI exception vectors.
const (
	vectorReset          uint32 = 0x00
	vectorUndefined      uint32 = 0x04
	vectorSWI            uint32 = 0x08
	vectorPrefetchAbort  uint32 = 0x0C
	vectorDataAbort      uint32 = 0x10
	vectorIRQ            uint32 = 0x18
	vectorFIQ            uint32 = 0x1C
)

// Register values the BIOS leaves behind when it hands control to the
// cartridge; used when the boot sequence is skipped.
const (
	skipBIOSEntry  uint32 = 0x0800_0000
	skipBIOSSPUsr  uint32 = 0x0300_7F00
	skipBIOSSPIRQ  uint32 = 0x0300_7FA0
	skipBIOSSPSVC  uint32 = 0x0300_7FE0
)

// CPU is the ARM7TDMI interpreter. It holds no bus of its own; every Step
// takes the *bus.Bus it should fetch and transfer through.
type CPU struct {
	regs   *Registers
	cycles uint64
}

func New() *CPU {
	return &CPU{regs: NewRegisters()}
}

func (c *CPU) Registers() *Registers { return c.regs }
func (c *CPU) Cycles() uint64        { return c.cycles }

// Reset seeds the CPU to start executing the BIOS from its reset vector,
// the normal (non-skip) boot path.
func (c *CPU) Reset() {
	c.regs = NewRegisters()
	c.regs.SetPC(vectorReset)
}

// InitSkipBIOS seeds CPU state as if the BIOS had already run its startup
// and handed control to the cartridge.
func (c *CPU) InitSkipBIOS() {
	c.regs = NewRegisters()
	c.regs.SetCPSR(uint32(ModeSystem))
	c.regs.SetPC(skipBIOSEntry)
	c.regs.r[13] = skipBIOSSPUsr
	c.regs.bankedSP[bankIRQ] = skipBIOSSPIRQ
	c.regs.bankedSP[bankSVC] = skipBIOSSPSVC
}

// Step fetches, decodes and executes exactly one instruction, honoring any
// pending level-sensitive IRQ first. It returns the number of cycles
// consumed (always >= 1) and a non-nil error only for
// UndefinedInstruction/UnalignedPCFetch; the caller (frame driver) keeps
// running regardless.
func (c *CPU) Step(b *bus.Bus) (int, error) {
	cycles, err := c.step(b)
	c.addCycles(cycles)
	return cycles, err
}

func (c *CPU) step(b *bus.Bus) (int, error) {
	if c.checkIRQ(b) {
		return 3, nil // exception entry refill: 2N + 1S fetch, approximated as a flat 3
	}

	if c.regs.IsThumb() {
		if c.regs.PC()&1 != 0 {
			return c.raiseUnaligned(b)
		}
		return c.stepThumb(b)
	}
	if c.regs.PC()&3 != 0 {
		return c.raiseUnaligned(b)
	}
	return c.stepARM(b)
}

func (c *CPU) raiseUnaligned(b *bus.Bus) (int, error) {
	pc := c.regs.PC()
	c.enterException(b, vectorUndefined, ModeUND, 4, false)
	return 3, &Error{Kind: UnalignedPCFetch, PC: pc}
}

// checkIRQ implements the level-sensitive IRQ line: if the controller
// reports a pending, unmasked request and the CPU's own I bit allows it,
// exception entry happens before the next fetch.
func (c *CPU) checkIRQ(b *bus.Bus) bool {
	if c.regs.IRQDisabled() {
		return false
	}
	if !b.IRQ().Pending() {
		return false
	}
	c.enterException(b, vectorIRQ, ModeIRQ, 4, false)
	return true
}

// enterException performs ARM7TDMI exception entry: save CPSR to the
// target mode's SPSR, save a return address into its LR, switch mode,
// disable IRQ (and FIQ, for Reset/FIQ entry only), clear THUMB, and set PC
// to the vector.
func (c *CPU) enterException(b *bus.Bus, vector uint32, mode Mode, lrAdjust uint32, disableFIQ bool) {
	oldCPSR := c.regs.CPSR()
	returnAddr := c.regs.PC()
	c.regs.SetMode(mode)
	c.regs.SetSPSR(oldCPSR)
	c.regs.SetReg(14, returnAddr+lrAdjust)
	c.regs.SetIRQDisabled(true)
	if disableFIQ {
		c.regs.SetFIQDisabled(true)
	}
	c.regs.SetThumbState(false)
	c.regs.SetPC(vector)
}

func (c *CPU) addCycles(n int) { c.cycles += uint64(n) }
