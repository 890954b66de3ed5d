package cpu

// Mode is the processor mode encoded in CPSR bits 4-0.
type Mode uint32

const (
	ModeUser   Mode = 0x10
	ModeFIQ    Mode = 0x11
	ModeIRQ    Mode = 0x12
	ModeSVC    Mode = 0x13
	ModeABT    Mode = 0x17
	ModeUND    Mode = 0x1B
	ModeSystem Mode = 0x1F
)

// CPSR bit positions.
const (
	flagN uint32 = 1 << 31
	flagZ uint32 = 1 << 30
	flagC uint32 = 1 << 29
	flagV uint32 = 1 << 28
	flagI uint32 = 1 << 7 // IRQ disable
	flagF uint32 = 1 << 6 // FIQ disable
	flagT uint32 = 1 << 5 // Thumb state
	modeMask uint32 = 0x1F
)

// bank indexes the per-mode shadow registers. User and System share a bank
// (they have no SPSR and no private R13/R14).
const (
	bankUser = iota
	bankFIQ
	bankIRQ
	bankSVC
	bankABT
	bankUND
	numBanks
)

func bankFor(m Mode) int {
	switch m {
	case ModeFIQ:
		return bankFIQ
	case ModeIRQ:
		return bankIRQ
	case ModeSVC:
		return bankSVC
	case ModeABT:
		return bankABT
	case ModeUND:
		return bankUND
	default:
		return bankUser
	}
}

// Registers is the ARM7TDMI register file: 16 live registers, mode-banked
// shadows for R8-R12 (FIQ only), R13/R14 (every privileged mode) and SPSR
// (every mode but User/System). Mode transitions swap slots in place; there
// is no per-mode allocation, per the "flat array plus shadows" design note.
type Registers struct {
	r [16]uint32

	fiqLowBank [2][5]uint32 // [0]=User/other-mode R8-R12, [1]=FIQ-private R8-R12
	bankedSP   [numBanks]uint32
	bankedLR   [numBanks]uint32
	spsrBank   [numBanks]uint32

	cpsr uint32
}

// NewRegisters returns a register file reset as if just out of hardware
// reset: mode=Supervisor, IRQ/FIQ disabled, ARM state, PC=0.
func NewRegisters() *Registers {
	reg := &Registers{}
	reg.cpsr = uint32(ModeSVC) | flagI | flagF
	return reg
}

func (r *Registers) CPSR() uint32 { return r.cpsr }

// SetCPSR installs a new CPSR, performing the register bank swap implied by
// a mode change. Used both by guest MSR instructions and by exception entry.
func (r *Registers) SetCPSR(v uint32) {
	newMode := Mode(v & modeMask)
	oldMode := r.Mode()
	if newMode != oldMode {
		r.switchBanks(oldMode, newMode)
	}
	r.cpsr = v
}

func (r *Registers) switchBanks(oldMode, newMode Mode) {
	oldBank := bankFor(oldMode)
	newBank := bankFor(newMode)

	// Save live R13/R14 into the outgoing mode's bank.
	r.bankedSP[oldBank] = r.r[13]
	r.bankedLR[oldBank] = r.r[14]
	// Save live R8-R12 into the FIQ-aware slot.
	fiqSlot := 0
	if oldMode == ModeFIQ {
		fiqSlot = 1
	}
	for i := 0; i < 5; i++ {
		r.fiqLowBank[fiqSlot][i] = r.r[8+i]
	}

	// Load incoming mode's R13/R14.
	r.r[13] = r.bankedSP[newBank]
	r.r[14] = r.bankedLR[newBank]
	newFiqSlot := 0
	if newMode == ModeFIQ {
		newFiqSlot = 1
	}
	for i := 0; i < 5; i++ {
		r.r[8+i] = r.fiqLowBank[newFiqSlot][i]
	}
}

func (r *Registers) Mode() Mode { return Mode(r.cpsr & modeMask) }

// SetMode changes only the mode bits, swapping banks as SetCPSR does.
func (r *Registers) SetMode(m Mode) {
	r.SetCPSR((r.cpsr &^ modeMask) | uint32(m))
}

func (r *Registers) IsThumb() bool        { return r.cpsr&flagT != 0 }
func (r *Registers) SetThumbState(t bool) {
	if t {
		r.cpsr |= flagT
	} else {
		r.cpsr &^= flagT
	}
}

func (r *Registers) IRQDisabled() bool    { return r.cpsr&flagI != 0 }
func (r *Registers) SetIRQDisabled(v bool) { r.setCPSRBit(flagI, v) }
func (r *Registers) FIQDisabled() bool    { return r.cpsr&flagF != 0 }
func (r *Registers) SetFIQDisabled(v bool) { r.setCPSRBit(flagF, v) }

func (r *Registers) setCPSRBit(bit uint32, v bool) {
	if v {
		r.cpsr |= bit
	} else {
		r.cpsr &^= bit
	}
}

func (r *Registers) FlagN() bool      { return r.cpsr&flagN != 0 }
func (r *Registers) FlagZ() bool      { return r.cpsr&flagZ != 0 }
func (r *Registers) FlagC() bool      { return r.cpsr&flagC != 0 }
func (r *Registers) FlagV() bool      { return r.cpsr&flagV != 0 }
func (r *Registers) SetFlagN(v bool)  { r.setCPSRBit(flagN, v) }
func (r *Registers) SetFlagZ(v bool)  { r.setCPSRBit(flagZ, v) }
func (r *Registers) SetFlagC(v bool)  { r.setCPSRBit(flagC, v) }
func (r *Registers) SetFlagV(v bool)  { r.setCPSRBit(flagV, v) }

func (r *Registers) SetNZ(v uint32) {
	r.SetFlagN(v&0x8000_0000 != 0)
	r.SetFlagZ(v == 0)
}

// SPSR returns the saved PSR of the current mode. User/System have none;
// callers must not invoke this there (mirrors hardware, which has no SPSR
// register to bank in those modes).
func (r *Registers) SPSR() uint32        { return r.spsrBank[bankFor(r.Mode())] }
func (r *Registers) SetSPSR(v uint32)    { r.spsrBank[bankFor(r.Mode())] = v }
func (r *Registers) HasSPSR() bool {
	m := r.Mode()
	return m != ModeUser && m != ModeSystem
}

// Reg reads a raw register value. R15 returns the raw "next fetch address"
// field, NOT the pipeline-adjusted operand value; callers executing an
// instruction must use the CPU's operandReg helper for R15-as-operand reads,
// matching the ARM7TDMI pipeline model described in arm_decode.go.
func (r *Registers) Reg(n uint8) uint32 { return r.r[n&0xF] }
func (r *Registers) SetReg(n uint8, v uint32) {
	r.r[n&0xF] = v
}

func (r *Registers) PC() uint32      { return r.r[15] }
func (r *Registers) SetPC(v uint32)  { r.r[15] = v }
