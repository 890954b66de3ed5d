package cpu

import "github.com/rolfmatthias/gbacore/internal/bus"

// conditionPasses evaluates a 4-bit condition field (the top 4 bits of an
// ARM opcode) against the current flags, per the ARM7TDMI condition field
// table.
func (c *CPU) conditionPasses(cond uint32) bool {
	n, z, cf, v := c.regs.FlagN(), c.regs.FlagZ(), c.regs.FlagC(), c.regs.FlagV()
	switch cond {
	case 0x0: // EQ
		return z
	case 0x1: // NE
		return !z
	case 0x2: // CS/HS
		return cf
	case 0x3: // CC/LO
		return !cf
	case 0x4: // MI
		return n
	case 0x5: // PL
		return !n
	case 0x6: // VS
		return v
	case 0x7: // VC
		return !v
	case 0x8: // HI
		return cf && !z
	case 0x9: // LS
		return !cf || z
	case 0xA: // GE
		return n == v
	case 0xB: // LT
		return n != v
	case 0xC: // GT
		return !z && n == v
	case 0xD: // LE
		return z || n != v
	case 0xE: // AL
		return true
	default: // 0xF reserved/NV: never executes on the ARM7TDMI
		return false
	}
}

// stepARM fetches one 32-bit ARM instruction, decodes and executes it.
func (c *CPU) stepARM(b *bus.Bus) (int, error) {
	instrAddr := c.regs.PC()
	opcode := b.Read32(instrAddr)
	c.regs.SetPC(instrAddr + 4)

	cond := opcode >> 28
	if !c.conditionPasses(cond) {
		return 1, nil
	}
	return c.executeARM(b, instrAddr, opcode)
}

func (c *CPU) executeARM(b *bus.Bus, instrAddr, op uint32) (int, error) {
	switch {
	case op&0x0FFF_FFF0 == 0x012F_FF10: // BX
		return c.armBX(op), nil
	case op&0x0E00_0000 == 0x0A00_0000: // B/BL
		return c.armBranch(instrAddr, op), nil
	case op&0x0F00_0000 == 0x0F00_0000: // SWI
		c.enterException(b, vectorSWI, ModeSVC, 0, false)
		return 3, nil
	case op&0x0FC0_00F0 == 0x0000_0090: // MUL/MLA
		return c.armMultiply(op), nil
	case op&0x0F80_00F0 == 0x0080_0090: // UMULL/UMLAL/SMULL/SMLAL
		return c.armMultiplyLong(op), nil
	case op&0x0FB0_0FF0 == 0x0100_0090: // SWP/SWPB
		return c.armSWP(b, op), nil
	case op&0x0E00_0090 == 0x0000_0090 && op&0x60 != 0: // LDRH/STRH/LDRSB/LDRSH
		return c.armHalfwordTransfer(b, op), nil
	case op&0x0FBF_0FFF == 0x010F_0000: // MRS
		return c.armMRS(op), nil
	case op&0x0DB0_F000 == 0x0120_F000: // MSR
		return c.armMSR(op), nil
	case op&0x0C00_0000 == 0x0000_0000: // data processing
		return c.armDataProcessing(instrAddr, op), nil
	case op&0x0E00_0000 == 0x0800_0000: // LDM/STM
		return c.armBlockTransfer(b, op), nil
	case op&0x0C00_0000 == 0x0400_0000: // LDR/STR
		return c.armSingleTransfer(b, instrAddr, op), nil
	default:
		// Coprocessor and genuinely unallocated patterns alike: the GBA has
		// no coprocessor, so both take the Undefined trap (vector 0x04) and
		// are surfaced to the debugger as an error.
		c.enterException(b, vectorUndefined, ModeUND, 0, false)
		return 3, &Error{Kind: UndefinedInstruction, PC: instrAddr, Opcode: op}
	}
}

func (c *CPU) armBX(op uint32) int {
	rm := uint8(op & 0xF)
	target := c.operandReg(rm)
	c.regs.SetThumbState(target&1 != 0)
	c.regs.SetPC(target &^ 1)
	return 3
}

func (c *CPU) armBranch(instrAddr, op uint32) int {
	offset := op & 0x00FF_FFFF
	if offset&0x0080_0000 != 0 {
		offset |= 0xFF00_0000 // sign-extend 24-bit immediate
	}
	target := instrAddr + 8 + (offset << 2)
	if op&0x0100_0000 != 0 { // link
		c.regs.SetReg(14, instrAddr+4)
	}
	c.regs.SetPC(target)
	return 3
}

// operandReg reads a register as a data-processing/addressing operand,
// applying the pipeline prefetch offset when n==15.
func (c *CPU) operandReg(n uint8) uint32 {
	if n == 15 {
		// regs.PC() already holds instrAddr+width (set right after fetch);
		// adding width again reproduces the ARM PC+8 / THUMB PC+4 pipeline
		// read every operand fetch of R15 sees.
		if c.regs.IsThumb() {
			return c.regs.PC() + 2
		}
		return c.regs.PC() + 4
	}
	return c.regs.Reg(n)
}
