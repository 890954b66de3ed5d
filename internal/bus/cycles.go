package bus

import "github.com/rolfmatthias/gbacore/internal/gpu"

// nonSeqCycles and seqCycles are shared by WS0/WS1/WS2; each window
// selects its own index through its WAITCNT fields (GBATEK 4000204h).
var nonSeqCycles = [4]int{4, 3, 2, 8}
var seqCycles = [2]int{2, 1}

// Cycles computes the wait-state-adjusted cycle cost of one bus access.
// GAMEPAK costs are read from the WAITCNT-derived tables; Palette/VRAM/OAM
// costs add 1 cycle during HDraw (bus contention with the renderer).
func (b *Bus) Cycles(addr uint32, access Access, width Width) int {
	kind, _ := decode(addr)
	switch kind {
	case regionEWRAM:
		if width == Width32 {
			return 6
		}
		return 3
	case regionPalette, regionVRAM, regionOAM:
		cost := 1
		if width == Width32 {
			cost = 2
		}
		if b.gpu.Phase() == gpu.HDraw {
			cost++
		}
		return cost
	case regionGamePak:
		return gamePakCycles(access, width, b.io.WaitCnt().WS0First(), b.io.WaitCnt().WS0Second())
	case regionGamePakWS1:
		return gamePakCycles(access, width, b.io.WaitCnt().WS1First(), b.io.WaitCnt().WS1Second())
	case regionGamePakWS2:
		return gamePakCycles(access, width, b.io.WaitCnt().WS2First(), b.io.WaitCnt().WS2Second())
	default:
		return 0
	}
}

func gamePakCycles(access Access, width Width, firstIdx, secondIdx int) int {
	first := nonSeqCycles[firstIdx]
	second := seqCycles[secondIdx]
	switch {
	case width == Width32 && access == NonSequential:
		return first + second
	case width == Width32 && access == Sequential:
		return 2 * second
	case access == NonSequential:
		return first
	default:
		return second
	}
}
