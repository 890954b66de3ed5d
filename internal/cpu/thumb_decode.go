package cpu

import "github.com/rolfmatthias/gbacore/internal/bus"

// stepThumb fetches one 16-bit THUMB instruction and dispatches it across
// the 19 ARMv4T encoding formats.
func (c *CPU) stepThumb(b *bus.Bus) (int, error) {
	instrAddr := c.regs.PC()
	opcode := uint32(b.Read16(instrAddr))
	c.regs.SetPC(instrAddr + 2)
	return c.executeThumb(b, instrAddr, uint16(opcode))
}

func (c *CPU) executeThumb(b *bus.Bus, instrAddr uint32, op uint16) (int, error) {
	switch {
	case op&0xF800 == 0x1800: // format 2: add/subtract
		return c.thumbAddSub(op), nil
	case op&0xE000 == 0x0000: // format 1: move shifted register
		return c.thumbShifted(op), nil
	case op&0xE000 == 0x2000: // format 3: move/compare/add/subtract immediate
		return c.thumbImmediateOp(op), nil
	case op&0xFC00 == 0x4000: // format 4: ALU operations
		return c.thumbALU(op), nil
	case op&0xFC00 == 0x4400: // format 5: hi register ops / BX
		return c.thumbHiReg(op), nil
	case op&0xF800 == 0x4800: // format 6: PC-relative load
		return c.thumbPCRelLoad(b, instrAddr, op), nil
	case op&0xF200 == 0x5000: // format 7: load/store with register offset
		return c.thumbLoadStoreReg(b, op), nil
	case op&0xF200 == 0x5200: // format 8: load/store sign-extended byte/halfword
		return c.thumbLoadStoreSignExt(b, op), nil
	case op&0xE000 == 0x6000: // format 9: load/store with immediate offset
		return c.thumbLoadStoreImm(b, op), nil
	case op&0xF000 == 0x8000: // format 10: load/store halfword
		return c.thumbLoadStoreHalf(b, op), nil
	case op&0xF000 == 0x9000: // format 11: SP-relative load/store
		return c.thumbSPRelLoadStore(b, op), nil
	case op&0xF000 == 0xA000: // format 12: load address
		return c.thumbLoadAddress(instrAddr, op), nil
	case op&0xFF00 == 0xB000: // format 13: add offset to SP
		return c.thumbAddSP(op), nil
	case op&0xF600 == 0xB400: // format 14: push/pop
		return c.thumbPushPop(b, op), nil
	case op&0xF000 == 0xC000: // format 15: multiple load/store
		return c.thumbMultipleLoadStore(b, op), nil
	case op&0xFF00 == 0xDF00: // format 17: SWI
		c.enterException(b, vectorSWI, ModeSVC, 0, false)
		return 3, nil
	case op&0xF000 == 0xD000: // format 16: conditional branch
		return c.thumbCondBranch(instrAddr, op), nil
	case op&0xF800 == 0xE000: // format 18: unconditional branch
		return c.thumbBranch(instrAddr, op), nil
	case op&0xF000 == 0xF000: // format 19: long branch with link
		return c.thumbLongBranchLink(instrAddr, op), nil
	default:
		c.enterException(b, vectorUndefined, ModeUND, 0, false)
		return 3, &Error{Kind: UndefinedInstruction, PC: instrAddr, Opcode: uint32(op)}
	}
}
