package cpu

import "github.com/rolfmatthias/gbacore/internal/bus"

func thumbReg(op uint16, shift uint) uint8 { return uint8((op >> shift) & 0x7) }

// thumbShifted: format 1, LSL/LSR/ASR Rd, Rs, #offset.
func (c *CPU) thumbShifted(op uint16) int {
	opKind := (op >> 11) & 0x3
	offset := uint8((op >> 6) & 0x1F)
	rs := thumbReg(op, 3)
	rd := thumbReg(op, 0)

	var st ShiftType
	switch opKind {
	case 0:
		st = ShiftLSL
	case 1:
		st = ShiftLSR
	default:
		st = ShiftASR
	}
	result, carry := ShiftImmediate(st, c.regs.Reg(rs), offset, c.regs.FlagC())
	c.regs.SetReg(rd, result)
	c.regs.SetNZ(result)
	c.regs.SetFlagC(carry)
	return 1
}

// thumbAddSub: format 2, ADD/SUB Rd, Rs, Rn|#imm3.
func (c *CPU) thumbAddSub(op uint16) int {
	immediate := op&0x0400 != 0
	subtract := op&0x0200 != 0
	rnOrImm := uint32((op >> 6) & 0x7)
	rs := thumbReg(op, 3)
	rd := thumbReg(op, 0)

	operand := rnOrImm
	if !immediate {
		operand = c.regs.Reg(uint8(rnOrImm))
	}

	var result uint32
	if subtract {
		result = c.subWithFlags(c.regs.Reg(rs), operand, true)
	} else {
		result = c.addWithFlags(c.regs.Reg(rs), operand, true)
	}
	c.regs.SetReg(rd, result)
	return 1
}

// thumbImmediateOp: format 3, MOV/CMP/ADD/SUB Rd, #imm8.
func (c *CPU) thumbImmediateOp(op uint16) int {
	kind := (op >> 11) & 0x3
	rd := thumbReg(op, 8)
	imm := uint32(op & 0xFF)

	switch kind {
	case 0: // MOV
		c.regs.SetReg(rd, imm)
		c.regs.SetNZ(imm)
	case 1: // CMP
		c.subWithFlags(c.regs.Reg(rd), imm, true)
	case 2: // ADD
		c.regs.SetReg(rd, c.addWithFlags(c.regs.Reg(rd), imm, true))
	case 3: // SUB
		c.regs.SetReg(rd, c.subWithFlags(c.regs.Reg(rd), imm, true))
	}
	return 1
}

// thumbALU: format 4, two-operand ALU ops (AND..MVN) over Rd, Rs.
func (c *CPU) thumbALU(op uint16) int {
	opcode := (op >> 6) & 0xF
	rs := thumbReg(op, 3)
	rd := thumbReg(op, 0)
	a := c.regs.Reg(rd)
	b := c.regs.Reg(rs)
	carryIn := c.regs.FlagC()

	var result uint32
	writesResult := true
	switch opcode {
	case 0x0: // AND
		result = a & b
	case 0x1: // EOR
		result = a ^ b
	case 0x2: // LSL
		result, carryIn = ShiftRegister(ShiftLSL, a, b&0xFF, carryIn)
		c.regs.SetFlagC(carryIn)
	case 0x3: // LSR
		result, carryIn = ShiftRegister(ShiftLSR, a, b&0xFF, carryIn)
		c.regs.SetFlagC(carryIn)
	case 0x4: // ASR
		result, carryIn = ShiftRegister(ShiftASR, a, b&0xFF, carryIn)
		c.regs.SetFlagC(carryIn)
	case 0x5: // ADC
		result = c.adcWithFlags(a, b, boolToCarryIn(carryIn), true)
	case 0x6: // SBC
		result = c.sbcWithFlags(a, b, carryIn, true)
	case 0x7: // ROR
		result, carryIn = ShiftRegister(ShiftROR, a, b&0xFF, carryIn)
		c.regs.SetFlagC(carryIn)
	case 0x8: // TST
		result = a & b
		writesResult = false
	case 0x9: // NEG
		result = c.subWithFlags(0, b, true)
	case 0xA: // CMP
		c.subWithFlags(a, b, true)
		writesResult = false
	case 0xB: // CMN
		c.addWithFlags(a, b, true)
		writesResult = false
	case 0xC: // ORR
		result = a | b
	case 0xD: // MUL
		result = a * b
		return c.finishThumbALU(rd, result, writesResult, true)
	case 0xE: // BIC
		result = a &^ b
	case 0xF: // MVN
		result = ^b
	}
	return c.finishThumbALU(rd, result, writesResult, true)
}

func (c *CPU) finishThumbALU(rd uint8, result uint32, writesResult, setNZ bool) int {
	if setNZ {
		c.regs.SetNZ(result)
	}
	if writesResult {
		c.regs.SetReg(rd, result)
	}
	return 1
}

// thumbHiReg: format 5, ADD/CMP/MOV over the full r0-r15 range, plus BX.
func (c *CPU) thumbHiReg(op uint16) int {
	opKind := (op >> 8) & 0x3
	hFlag1 := op&0x80 != 0
	hFlag2 := op&0x40 != 0
	rs := thumbReg(op, 3)
	if hFlag2 {
		rs += 8
	}
	rd := thumbReg(op, 0)
	if hFlag1 {
		rd += 8
	}

	switch opKind {
	case 0: // ADD
		result := c.operandReg(rd) + c.operandReg(rs)
		if rd == 15 {
			result &^= 1
		}
		c.regs.SetReg(rd, result)
	case 1: // CMP
		c.subWithFlags(c.operandReg(rd), c.operandReg(rs), true)
	case 2: // MOV
		result := c.operandReg(rs)
		if rd == 15 {
			result &^= 1
		}
		c.regs.SetReg(rd, result)
	case 3: // BX
		target := c.operandReg(rs)
		c.regs.SetThumbState(target&1 != 0)
		c.regs.SetPC(target &^ 1)
		return 3
	}
	if rd == 15 {
		return 3
	}
	return 1
}

// thumbPCRelLoad: format 6, LDR Rd, [PC, #imm8*4].
func (c *CPU) thumbPCRelLoad(b *bus.Bus, instrAddr uint32, op uint16) int {
	rd := thumbReg(op, 8)
	imm := uint32(op&0xFF) * 4
	base := (instrAddr + 4) &^ 3 // PC is word-aligned before the offset is applied
	c.regs.SetReg(rd, b.Read32(base+imm))
	return 3
}

// thumbLoadStoreReg: format 7, LDR/STR{B} Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreReg(b *bus.Bus, op uint16) int {
	load := op&0x0800 != 0
	byteTransfer := op&0x0400 != 0
	ro := thumbReg(op, 6)
	rb := thumbReg(op, 3)
	rd := thumbReg(op, 0)
	addr := c.regs.Reg(rb) + c.regs.Reg(ro)

	if load {
		if byteTransfer {
			c.regs.SetReg(rd, uint32(b.Read8(addr)))
		} else {
			c.regs.SetReg(rd, rotateMisaligned32(b.Read32(addr&^3), addr))
		}
		return 3
	}
	if byteTransfer {
		b.Write8(addr, byte(c.regs.Reg(rd)))
	} else {
		b.Write32(addr&^3, c.regs.Reg(rd))
	}
	return 2
}

// thumbLoadStoreSignExt: format 8, LDRH/LDSB/LDSH/STRH Rd, [Rb, Ro].
func (c *CPU) thumbLoadStoreSignExt(b *bus.Bus, op uint16) int {
	hFlag := op&0x0800 != 0
	signExtend := op&0x0400 != 0
	ro := thumbReg(op, 6)
	rb := thumbReg(op, 3)
	rd := thumbReg(op, 0)
	addr := c.regs.Reg(rb) + c.regs.Reg(ro)

	switch {
	case !signExtend && !hFlag: // STRH
		b.Write16(addr&^1, uint16(c.regs.Reg(rd)))
		return 2
	case !signExtend && hFlag: // LDRH
		c.regs.SetReg(rd, uint32(b.Read16(addr&^1)))
		return 3
	case signExtend && !hFlag: // LDSB
		v := int32(int8(b.Read8(addr)))
		c.regs.SetReg(rd, uint32(v))
		return 3
	default: // LDSH
		v := int32(int16(b.Read16(addr &^ 1)))
		c.regs.SetReg(rd, uint32(v))
		return 3
	}
}

// thumbLoadStoreImm: format 9, LDR/STR{B} Rd, [Rb, #imm].
func (c *CPU) thumbLoadStoreImm(b *bus.Bus, op uint16) int {
	byteTransfer := op&0x1000 != 0
	load := op&0x0800 != 0
	imm := uint32((op >> 6) & 0x1F)
	rb := thumbReg(op, 3)
	rd := thumbReg(op, 0)

	if !byteTransfer {
		imm *= 4
	}
	addr := c.regs.Reg(rb) + imm

	if load {
		if byteTransfer {
			c.regs.SetReg(rd, uint32(b.Read8(addr)))
		} else {
			c.regs.SetReg(rd, rotateMisaligned32(b.Read32(addr&^3), addr))
		}
		return 3
	}
	if byteTransfer {
		b.Write8(addr, byte(c.regs.Reg(rd)))
	} else {
		b.Write32(addr&^3, c.regs.Reg(rd))
	}
	return 2
}

// thumbLoadStoreHalf: format 10, LDRH/STRH Rd, [Rb, #imm*2].
func (c *CPU) thumbLoadStoreHalf(b *bus.Bus, op uint16) int {
	load := op&0x0800 != 0
	imm := uint32((op>>6)&0x1F) * 2
	rb := thumbReg(op, 3)
	rd := thumbReg(op, 0)
	addr := c.regs.Reg(rb) + imm

	if load {
		c.regs.SetReg(rd, uint32(b.Read16(addr&^1)))
		return 3
	}
	b.Write16(addr&^1, uint16(c.regs.Reg(rd)))
	return 2
}

// thumbSPRelLoadStore: format 11, LDR/STR Rd, [SP, #imm8*4].
func (c *CPU) thumbSPRelLoadStore(b *bus.Bus, op uint16) int {
	load := op&0x0800 != 0
	rd := thumbReg(op, 8)
	imm := uint32(op&0xFF) * 4
	addr := c.regs.Reg(13) + imm

	if load {
		c.regs.SetReg(rd, rotateMisaligned32(b.Read32(addr&^3), addr))
		return 3
	}
	b.Write32(addr&^3, c.regs.Reg(rd))
	return 2
}

// thumbLoadAddress: format 12, ADD Rd, PC|SP, #imm8*4.
func (c *CPU) thumbLoadAddress(instrAddr uint32, op uint16) int {
	usesSP := op&0x0800 != 0
	rd := thumbReg(op, 8)
	imm := uint32(op&0xFF) * 4

	var base uint32
	if usesSP {
		base = c.regs.Reg(13)
	} else {
		base = (instrAddr + 4) &^ 3
	}
	c.regs.SetReg(rd, base+imm)
	return 1
}

// thumbAddSP: format 13, ADD SP, #+/-imm7*4.
func (c *CPU) thumbAddSP(op uint16) int {
	negative := op&0x80 != 0
	imm := uint32(op&0x7F) * 4
	if negative {
		c.regs.SetReg(13, c.regs.Reg(13)-imm)
	} else {
		c.regs.SetReg(13, c.regs.Reg(13)+imm)
	}
	return 1
}

// thumbPushPop: format 14, PUSH/POP {Rlist, LR|PC}.
func (c *CPU) thumbPushPop(b *bus.Bus, op uint16) int {
	load := op&0x0800 != 0
	pclrBit := op&0x0100 != 0
	list := uint8(op & 0xFF)

	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}
	if pclrBit {
		count++
	}

	sp := c.regs.Reg(13)
	if load { // POP
		addr := sp
		for i := 0; i < 8; i++ {
			if list&(1<<uint(i)) != 0 {
				c.regs.SetReg(uint8(i), b.Read32(addr))
				addr += 4
			}
		}
		if pclrBit {
			c.regs.SetPC(b.Read32(addr) &^ 1)
			addr += 4
		}
		c.regs.SetReg(13, addr)
		if pclrBit {
			return count + 2
		}
		return count + 1
	}

	// PUSH writes registers in ascending order starting below the current
	// SP, LR last if present.
	addr := sp - uint32(count)*4
	c.regs.SetReg(13, addr)
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			b.Write32(addr, c.regs.Reg(uint8(i)))
			addr += 4
		}
	}
	if pclrBit {
		b.Write32(addr, c.regs.Reg(14))
	}
	return count
}

// thumbMultipleLoadStore: format 15, LDMIA/STMIA Rb!, {Rlist}.
func (c *CPU) thumbMultipleLoadStore(b *bus.Bus, op uint16) int {
	load := op&0x0800 != 0
	rb := thumbReg(op, 8)
	list := uint8(op & 0xFF)

	count := 0
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}

	addr := c.regs.Reg(rb)
	for i := 0; i < 8; i++ {
		if list&(1<<uint(i)) != 0 {
			if load {
				c.regs.SetReg(uint8(i), b.Read32(addr))
			} else {
				b.Write32(addr, c.regs.Reg(uint8(i)))
			}
			addr += 4
		}
	}
	if !(load && list&(1<<rb) != 0) {
		c.regs.SetReg(rb, addr)
	}
	if load {
		return count + 1
	}
	return count
}

// thumbCondBranch: format 16, Bcc label (8-bit signed, *2).
func (c *CPU) thumbCondBranch(instrAddr uint32, op uint16) int {
	cond := uint32((op >> 8) & 0xF)
	if !c.conditionPasses(cond) {
		return 1
	}
	offset := int32(int8(op & 0xFF)) * 2
	c.regs.SetPC(uint32(int32(instrAddr+4) + offset))
	return 3
}

// thumbBranch: format 18, unconditional B label (11-bit signed, *2).
func (c *CPU) thumbBranch(instrAddr uint32, op uint16) int {
	offset := op & 0x7FF
	signed := int32(offset << 1)
	if offset&0x400 != 0 {
		signed -= 0x1000
	}
	c.regs.SetPC(uint32(int32(instrAddr+4) + signed))
	return 3
}

// thumbLongBranchLink: format 19, BL label, assembled from two consecutive
// halfwords (H=0 sets LR to a partial target, H=1 completes the branch).
func (c *CPU) thumbLongBranchLink(instrAddr uint32, op uint16) int {
	high := op&0x0800 != 0
	offset := uint32(op & 0x7FF)

	if !high {
		signed := int32(offset << 12)
		if offset&0x400 != 0 {
			signed |= ^int32(0x7FFFFF) // sign-extend the 23-bit field held in LR
		}
		c.regs.SetReg(14, uint32(int32(instrAddr+4)+signed))
		return 1
	}

	nextInstr := instrAddr + 2
	target := c.regs.Reg(14) + (offset << 1)
	c.regs.SetReg(14, nextInstr|1)
	c.regs.SetPC(target)
	return 3
}
