package bus

import (
	"github.com/rolfmatthias/gbacore/internal/cart"
	"github.com/rolfmatthias/gbacore/internal/gpu"
	"github.com/rolfmatthias/gbacore/internal/io"
	"github.com/rolfmatthias/gbacore/internal/irq"
)

// Bus owns every memory-mapped device: BIOS/EWRAM/IWRAM storage, the GPU
// (which itself owns Palette/VRAM/OAM and the LCD register bank), the
// cartridge, the interrupt controller and the I/O aggregate. The CPU holds
// no bus of its own; it receives *Bus for each step, so a store to an
// I/O address reaches GPU/IRQ registers through the same reference used
// for the fetch.
type Bus struct {
	bios  bios
	ewram *ram
	iwram *ram

	gpu  *gpu.GPU
	cart *cart.Cartridge
	io   *io.Regs
	irqc *irq.Controller
}

// New builds a Bus with fresh EWRAM/IWRAM, a fresh GPU and interrupt
// controller, and the given BIOS/ROM images.
func New(biosImage, rom []byte) *Bus {
	g := gpu.New()
	ic := irq.New()
	b := &Bus{
		ewram: newRAM(EWRAMSize),
		iwram: newRAM(IWRAMSize),
		gpu:   g,
		cart:  cart.New(rom),
		io:    io.New(g, ic),
		irqc:  ic,
	}
	copy(b.bios.data[:], biosImage)
	return b
}

func (b *Bus) GPU() *gpu.GPU           { return b.gpu }
func (b *Bus) Cart() *cart.Cartridge   { return b.cart }
func (b *Bus) IRQ() *irq.Controller    { return b.irqc }
func (b *Bus) IO() *io.Regs            { return b.io }

// Read8/Write8 are the byte-granular bus operations; Read16/Read32/
// Write16/Write32 compose bytes little-endian on top. Callers are
// responsible for alignment: the CPU applies the ARM7TDMI
// rotation/truncation rule before calling these.
func (b *Bus) Read8(addr uint32) byte {
	kind, off := decode(addr)
	switch kind {
	case regionBIOS:
		return b.bios.read8(off)
	case regionEWRAM:
		return b.ewram.read8(off)
	case regionIWRAM:
		return b.iwram.read8(off)
	case regionIO:
		return b.io.Read8(off)
	case regionPalette:
		return b.gpu.ReadPalette8(off)
	case regionVRAM:
		return b.gpu.ReadVRAM8(off)
	case regionOAM:
		return b.gpu.ReadOAM8(off)
	case regionGamePak, regionGamePakWS1, regionGamePakWS2:
		return b.cart.ReadROM8(off)
	case regionSRAM:
		return b.cart.ReadSRAM8(off)
	default:
		return 0
	}
}

func (b *Bus) Write8(addr uint32, v byte) {
	kind, off := decode(addr)
	switch kind {
	case regionBIOS, regionGamePak, regionGamePakWS1, regionGamePakWS2:
		// Read-only regions; writes are silently discarded, never panic.
	case regionEWRAM:
		b.ewram.write8(off, v)
	case regionIWRAM:
		b.iwram.write8(off, v)
	case regionIO:
		b.io.Write8(off, v)
	case regionPalette:
		b.gpu.WritePalette8(off, v)
	case regionVRAM:
		b.gpu.WriteVRAM8(off, v)
	case regionOAM:
		b.gpu.WriteOAM8(off, v)
	case regionSRAM:
		b.cart.WriteSRAM8(off, v)
	}
}

func (b *Bus) Read16(addr uint32) uint16 {
	lo := uint16(b.Read8(addr))
	hi := uint16(b.Read8(addr + 1))
	return lo | hi<<8
}

func (b *Bus) Write16(addr uint32, v uint16) {
	b.Write8(addr, byte(v))
	b.Write8(addr+1, byte(v>>8))
}

func (b *Bus) Read32(addr uint32) uint32 {
	lo := uint32(b.Read16(addr))
	hi := uint32(b.Read16(addr + 2))
	return lo | hi<<16
}

func (b *Bus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}
