package cpu

import "github.com/rolfmatthias/gbacore/internal/bus"

// Data-processing opcodes, bits 24-21.
const (
	opAND = iota
	opEOR
	opSUB
	opRSB
	opADD
	opADC
	opSBC
	opRSC
	opTST
	opTEQ
	opCMP
	opCMN
	opORR
	opMOV
	opBIC
	opMVN
)

// armDataProcessing executes ANDs through MVNs, including the PSR-restore
// special case of "MOVS PC, LR" and its family in privileged modes
// (S-bit set, Rd==15).
func (c *CPU) armDataProcessing(instrAddr, op uint32) int {
	rn := uint8((op >> 16) & 0xF)
	rd := uint8((op >> 12) & 0xF)
	setFlags := op&0x0010_0000 != 0
	opcode := (op >> 21) & 0xF

	op2, shiftCarry := c.resolveOperand2(op)
	rnVal := c.operandReg(rn)

	var result uint32
	writesResult := true
	logical := true // logical ops take C from the shifter; arithmetic ops compute it
	carryIn := c.regs.FlagC()

	switch opcode {
	case opAND:
		result = rnVal & op2
	case opEOR:
		result = rnVal ^ op2
	case opSUB:
		result = c.subWithFlags(rnVal, op2, setFlags)
		logical = false
	case opRSB:
		result = c.subWithFlags(op2, rnVal, setFlags)
		logical = false
	case opADD:
		result = c.addWithFlags(rnVal, op2, setFlags)
		logical = false
	case opADC:
		result = c.adcWithFlags(rnVal, op2, boolToCarryIn(carryIn), setFlags)
		logical = false
	case opSBC:
		result = c.sbcWithFlags(rnVal, op2, carryIn, setFlags)
		logical = false
	case opRSC:
		result = c.sbcWithFlags(op2, rnVal, carryIn, setFlags)
		logical = false
	case opTST:
		result = rnVal & op2
		writesResult = false
	case opTEQ:
		result = rnVal ^ op2
		writesResult = false
	case opCMP:
		c.subWithFlags(rnVal, op2, true)
		writesResult = false
		logical = false
	case opCMN:
		c.addWithFlags(rnVal, op2, true)
		writesResult = false
		logical = false
	case opORR:
		result = rnVal | op2
	case opMOV:
		result = op2
	case opBIC:
		result = rnVal &^ op2
	case opMVN:
		result = ^op2
	}

	if rd == 15 && setFlags && writesResult && c.regs.HasSPSR() {
		// MOVS PC,LR and kin: restoring CPSR from SPSR doubles as the
		// privileged-mode return-from-exception idiom.
		c.regs.SetCPSR(c.regs.SPSR())
	} else if setFlags && logical {
		c.regs.SetNZ(result)
		c.regs.SetFlagC(shiftCarry)
	}
	if writesResult {
		c.regs.SetReg(rd, result)
	}
	return c.dpCycles(op)
}

func (c *CPU) dpCycles(op uint32) int {
	if op&0x0200_0000 == 0 && op&0x0000_0010 != 0 {
		return 2 // register-specified shift amount costs an extra cycle
	}
	return 1
}

func boolToCarryIn(c bool) uint32 {
	if c {
		return 1
	}
	return 0
}

// resolveOperand2 decodes a data-processing operand2 field, returning its
// value and the carry the barrel shifter produced (used by logical ops
// when S is set).
func (c *CPU) resolveOperand2(op uint32) (uint32, bool) {
	carryIn := c.regs.FlagC()
	if op&0x0200_0000 != 0 {
		imm := op & 0xFF
		rotate := (op >> 8) & 0xF
		if rotate == 0 {
			return imm, carryIn
		}
		return shiftROR(imm, rotate*2)
	}

	rm := uint8(op & 0xF)
	shiftType := ShiftType((op >> 5) & 0x3)
	value := c.operandReg(rm)

	if op&0x0000_0010 != 0 {
		rs := uint8((op >> 8) & 0xF)
		amount := c.regs.Reg(rs) & 0xFF
		// A register-specified shift makes Rm==PC read as PC+12 (one
		// extra pipeline stage versus the immediate-shift PC+8 case).
		if rm == 15 {
			value += 4
		}
		return ShiftRegister(shiftType, value, amount, carryIn)
	}

	amount := uint8((op >> 7) & 0x1F)
	return ShiftImmediate(shiftType, value, amount, carryIn)
}

func (c *CPU) addWithFlags(a, b uint32, setFlags bool) uint32 {
	result := a + b
	if setFlags {
		c.regs.SetNZ(result)
		c.regs.SetFlagC(result < a)
		c.regs.SetFlagV((a^result)&(b^result)&0x8000_0000 != 0)
	}
	return result
}

func (c *CPU) adcWithFlags(a, b, carryIn uint32, setFlags bool) uint32 {
	wide := uint64(a) + uint64(b) + uint64(carryIn)
	result := uint32(wide)
	if setFlags {
		c.regs.SetNZ(result)
		c.regs.SetFlagC(wide > 0xFFFF_FFFF)
		c.regs.SetFlagV((a^result)&(b^result)&0x8000_0000 != 0)
	}
	return result
}

func (c *CPU) subWithFlags(a, b uint32, setFlags bool) uint32 {
	result := a - b
	if setFlags {
		c.regs.SetNZ(result)
		c.regs.SetFlagC(a >= b)
		c.regs.SetFlagV((a^b)&(a^result)&0x8000_0000 != 0)
	}
	return result
}

func (c *CPU) sbcWithFlags(a, b uint32, carryIn bool, setFlags bool) uint32 {
	borrow := uint64(1)
	if carryIn {
		borrow = 0
	}
	wide := uint64(a) - uint64(b) - borrow
	result := uint32(wide)
	if setFlags {
		c.regs.SetNZ(result)
		c.regs.SetFlagC(uint64(a) >= uint64(b)+borrow)
		c.regs.SetFlagV((a^b)&(a^result)&0x8000_0000 != 0)
	}
	return result
}

func (c *CPU) armMultiply(op uint32) int {
	rd := uint8((op >> 16) & 0xF)
	rn := uint8((op >> 12) & 0xF)
	rs := uint8((op >> 8) & 0xF)
	rm := uint8(op & 0xF)
	accumulate := op&0x0020_0000 != 0
	setFlags := op&0x0010_0000 != 0

	multiplier := c.regs.Reg(rs)
	result := c.regs.Reg(rm) * multiplier
	extra := 0
	if accumulate {
		result += c.regs.Reg(rn)
		extra = 1
	}
	c.regs.SetReg(rd, result)
	if setFlags {
		c.regs.SetNZ(result)
	}
	return 1 + multiplierCycles(multiplier) + extra
}

// multiplierCycles is the ARM7TDMI's early-termination rule: the multiply
// array runs 1-4 internal cycles depending on how many significant bytes
// the multiplier has.
func multiplierCycles(m uint32) int {
	switch {
	case m&0xFFFF_FF00 == 0 || m&0xFFFF_FF00 == 0xFFFF_FF00:
		return 1
	case m&0xFFFF_0000 == 0 || m&0xFFFF_0000 == 0xFFFF_0000:
		return 2
	case m&0xFF00_0000 == 0 || m&0xFF00_0000 == 0xFF00_0000:
		return 3
	default:
		return 4
	}
}

func (c *CPU) armMultiplyLong(op uint32) int {
	rdHi := uint8((op >> 16) & 0xF)
	rdLo := uint8((op >> 12) & 0xF)
	rs := uint8((op >> 8) & 0xF)
	rm := uint8(op & 0xF)
	signed := op&0x0040_0000 != 0
	accumulate := op&0x0020_0000 != 0
	setFlags := op&0x0010_0000 != 0

	multiplier := c.regs.Reg(rs)
	var result uint64
	if signed {
		result = uint64(int64(int32(c.regs.Reg(rm))) * int64(int32(multiplier)))
	} else {
		result = uint64(c.regs.Reg(rm)) * uint64(multiplier)
	}
	extra := 1
	if accumulate {
		acc := uint64(c.regs.Reg(rdHi))<<32 | uint64(c.regs.Reg(rdLo))
		result += acc
		extra = 2
	}
	c.regs.SetReg(rdLo, uint32(result))
	c.regs.SetReg(rdHi, uint32(result>>32))
	if setFlags {
		c.regs.SetFlagN(result&0x8000_0000_0000_0000 != 0)
		c.regs.SetFlagZ(result == 0)
	}
	return 1 + multiplierCycles(multiplier) + extra
}

// armSWP atomically exchanges a register with memory (SWP/SWPB). The GBA's
// single-master bus makes the read-then-write sequence inherently atomic.
func (c *CPU) armSWP(b *bus.Bus, op uint32) int {
	byteSwap := op&0x0040_0000 != 0
	rn := uint8((op >> 16) & 0xF)
	rd := uint8((op >> 12) & 0xF)
	rm := uint8(op & 0xF)
	addr := c.regs.Reg(rn)

	if byteSwap {
		old := b.Read8(addr)
		b.Write8(addr, byte(c.regs.Reg(rm)))
		c.regs.SetReg(rd, uint32(old))
	} else {
		old := rotateMisaligned32(b.Read32(addr&^3), addr)
		b.Write32(addr&^3, c.regs.Reg(rm))
		c.regs.SetReg(rd, old)
	}
	return 4
}

// armHalfwordTransfer covers the LDRH/STRH/LDRSB/LDRSH family (the
// bits[7:4]==1SH1 extension of single data transfer), sharing the
// pre/post/up/write-back addressing rules with armSingleTransfer.
func (c *CPU) armHalfwordTransfer(b *bus.Bus, op uint32) int {
	pre := op&0x0100_0000 != 0
	up := op&0x0080_0000 != 0
	immediate := op&0x0040_0000 != 0
	writeBack := op&0x0020_0000 != 0
	load := op&0x0010_0000 != 0
	rn := uint8((op >> 16) & 0xF)
	rd := uint8((op >> 12) & 0xF)
	sh := (op >> 5) & 0x3

	var offset uint32
	if immediate {
		offset = (op>>4)&0xF0 | op&0xF
	} else {
		offset = c.regs.Reg(uint8(op & 0xF))
	}

	base := c.operandReg(rn)
	effective := base + offset
	if !up {
		effective = base - offset
	}
	addr := base
	if pre {
		addr = effective
	}

	if load {
		switch sh {
		case 0x1: // LDRH
			c.regs.SetReg(rd, uint32(b.Read16(addr&^1)))
		case 0x2: // LDRSB
			c.regs.SetReg(rd, uint32(int32(int8(b.Read8(addr)))))
		case 0x3: // LDRSH
			c.regs.SetReg(rd, uint32(int32(int16(b.Read16(addr&^1)))))
		}
	} else {
		b.Write16(addr&^1, uint16(c.operandReg(rd)))
	}

	if (!pre || writeBack) && !(load && rn == rd) {
		c.regs.SetReg(rn, effective)
	}
	if load {
		return 3
	}
	return 2
}

func (c *CPU) armMRS(op uint32) int {
	rd := uint8((op >> 12) & 0xF)
	fromSPSR := op&0x0040_0000 != 0
	if fromSPSR {
		c.regs.SetReg(rd, c.regs.SPSR())
	} else {
		c.regs.SetReg(rd, c.regs.CPSR())
	}
	return 1
}

func (c *CPU) armMSR(op uint32) int {
	toSPSR := op&0x0040_0000 != 0

	var value uint32
	if op&0x0200_0000 != 0 {
		imm := op & 0xFF
		rotate := (op >> 8) & 0xF
		value, _ = shiftROR(imm, rotate*2)
	} else {
		rm := uint8(op & 0xF)
		value = c.regs.Reg(rm)
	}

	// Field mask bits 19/18/17/16 select the flags/status/extension/control
	// bytes independently, per the ARM7TDMI's MSR field-mask encoding.
	mask := uint32(0)
	if op&(1<<19) != 0 {
		mask |= 0xFF00_0000
	}
	if op&(1<<18) != 0 {
		mask |= 0x00FF_0000
	}
	if op&(1<<17) != 0 {
		mask |= 0x0000_FF00
	}
	if op&(1<<16) != 0 {
		mask |= 0x0000_00FF
	}

	if toSPSR {
		if c.regs.HasSPSR() {
			c.regs.SetSPSR((c.regs.SPSR() &^ mask) | (value & mask))
		}
	} else {
		c.regs.SetCPSR((c.regs.CPSR() &^ mask) | (value & mask))
	}
	return 1
}

func (c *CPU) armSingleTransfer(b *bus.Bus, instrAddr, op uint32) int {
	immediate := op&0x0200_0000 == 0
	pre := op&0x0100_0000 != 0
	up := op&0x0080_0000 != 0
	byteTransfer := op&0x0040_0000 != 0
	writeBack := op&0x0020_0000 != 0
	load := op&0x0010_0000 != 0
	rn := uint8((op >> 16) & 0xF)
	rd := uint8((op >> 12) & 0xF)

	var offset uint32
	if immediate {
		offset = op & 0xFFF
	} else {
		rm := uint8(op & 0xF)
		shiftType := ShiftType((op >> 5) & 0x3)
		amount := uint8((op >> 7) & 0x1F)
		offset, _ = ShiftImmediate(shiftType, c.regs.Reg(rm), amount, c.regs.FlagC())
	}

	base := c.operandReg(rn)
	var effective uint32
	if up {
		effective = base + offset
	} else {
		effective = base - offset
	}

	addr := base
	if pre {
		addr = effective
	}

	if load {
		if byteTransfer {
			c.regs.SetReg(rd, uint32(b.Read8(addr)))
		} else {
			c.regs.SetReg(rd, rotateMisaligned32(b.Read32(addr&^3), addr))
		}
	} else {
		val := c.operandReg(rd)
		if byteTransfer {
			b.Write8(addr, byte(val))
		} else {
			b.Write32(addr&^3, val)
		}
	}

	// Write-back never clobbers a just-loaded destination.
	if (!pre || writeBack) && !(load && rn == rd) {
		c.regs.SetReg(rn, effective)
	}
	if load {
		return 3
	}
	return 2
}

// rotateMisaligned32 reproduces the ARM7TDMI's unaligned-LDR rotate: a
// non-word-aligned address rotates the fetched word right by the
// misalignment in bits, rather than faulting.
func rotateMisaligned32(word, addr uint32) uint32 {
	rot := (addr & 3) * 8
	if rot == 0 {
		return word
	}
	r, _ := shiftROR(word, rot)
	return r
}

func (c *CPU) armBlockTransfer(b *bus.Bus, op uint32) int {
	pre := op&0x0100_0000 != 0
	up := op&0x0080_0000 != 0
	sBit := op&0x0040_0000 != 0
	writeBack := op&0x0020_0000 != 0
	load := op&0x0010_0000 != 0
	rn := uint8((op >> 16) & 0xF)
	list := op & 0xFFFF

	count := 0
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			count++
		}
	}
	if count == 0 {
		return 1
	}

	base := c.regs.Reg(rn)

	// The ARM7TDMI always assigns the lowest register number to the
	// lowest memory address regardless of direction; only the starting
	// address depends on up/pre (IA/IB/DA/DB).
	start := base
	if !up {
		start -= uint32(count) * 4
	}
	if pre == up {
		start += 4
	}

	order := make([]uint8, 0, count)
	for i := 0; i < 16; i++ {
		if list&(1<<uint(i)) != 0 {
			order = append(order, uint8(i))
		}
	}

	usesUserBank := sBit && (!load || list&0x8000 == 0)
	cur := start
	for _, reg := range order {
		if load {
			val := b.Read32(cur)
			switch {
			case reg == 15 && sBit:
				c.regs.SetReg(15, val)
				c.regs.SetCPSR(c.regs.SPSR())
			case usesUserBank && reg >= 8 && reg < 15:
				c.setUserBankReg(reg, val)
			default:
				c.regs.SetReg(reg, val)
			}
		} else {
			var val uint32
			if usesUserBank && reg >= 8 && reg < 15 {
				val = c.userBankReg(reg)
			} else {
				val = c.operandReg(reg)
			}
			b.Write32(cur, val)
		}
		cur += 4
	}

	// An LDM that loads the base register keeps the loaded value; the
	// write-back is suppressed.
	if writeBack && !(load && list&(1<<uint(rn)) != 0) {
		if up {
			c.regs.SetReg(rn, base+uint32(count)*4)
		} else {
			c.regs.SetReg(rn, base-uint32(count)*4)
		}
	}

	if load {
		return count + 2
	}
	return count + 1
}

// setUserBankReg/userBankReg give S-bit LDM/STM access to the User-mode
// shadow of R8-R14 while executing in a privileged mode, without a mode
// switch. Outside User/System the banked register file keeps User R13/R14
// in bankedSP/bankedLR; User R8-R12 sit in fiqLowBank[0] only in FIQ mode
// and are the live r[] entries in every other mode.
func (c *CPU) setUserBankReg(n uint8, v uint32) {
	if c.regs.Mode() == ModeUser || c.regs.Mode() == ModeSystem {
		c.regs.SetReg(n, v)
		return
	}
	switch {
	case n >= 8 && n <= 12:
		if c.regs.Mode() != ModeFIQ {
			c.regs.SetReg(n, v)
			return
		}
		c.regs.fiqLowBank[0][n-8] = v
	case n == 13:
		c.regs.bankedSP[bankUser] = v
	case n == 14:
		c.regs.bankedLR[bankUser] = v
	}
}

func (c *CPU) userBankReg(n uint8) uint32 {
	if c.regs.Mode() == ModeUser || c.regs.Mode() == ModeSystem {
		return c.regs.Reg(n)
	}
	switch {
	case n >= 8 && n <= 12:
		if c.regs.Mode() != ModeFIQ {
			return c.regs.Reg(n)
		}
		return c.regs.fiqLowBank[0][n-8]
	case n == 13:
		return c.regs.bankedSP[bankUser]
	case n == 14:
		return c.regs.bankedLR[bankUser]
	}
	return c.regs.Reg(n)
}
