package emu

import (
	"time"

	"github.com/rolfmatthias/gbacore/internal/bus"
	"github.com/rolfmatthias/gbacore/internal/cpu"
	"github.com/rolfmatthias/gbacore/internal/gpu"
	"github.com/rolfmatthias/gbacore/internal/tracelog"
)

// Machine exclusively owns the CPU and bus and drives the frame loop.
type Machine struct {
	Bus *bus.Bus
	CPU *cpu.CPU

	cfg Config
	log *tracelog.Logger

	frameBudget time.Duration
	lastFrame   time.Time
}

// New builds a Machine from a BIOS image and a cartridge ROM image. If
// cfg.SkipBIOS is set the CPU starts past the BIOS boot sequence;
// otherwise it starts at the reset vector and executes whatever BIOS
// image was supplied.
func New(biosImage, rom []byte, cfg Config) *Machine {
	b := bus.New(biosImage, rom)
	c := cpu.New()
	if cfg.SkipBIOS {
		c.InitSkipBIOS()
	} else {
		c.Reset()
	}

	l := tracelog.New("emu: ")
	l.Enabled = cfg.Trace

	return &Machine{
		Bus:         b,
		CPU:         c,
		cfg:         cfg,
		log:         l,
		frameBudget: time.Second / 60,
	}
}

// SetKeypad refreshes the KEYINPUT register from the host's polling hook,
// called between frames by the shell.
func (m *Machine) SetKeypad(state uint16) {
	m.Bus.IO().Keypad.SetState(state)
}

// Frame runs one simulated 60Hz frame: drives the CPU/GPU pair through one
// full HDraw..VBlank..HDraw cycle. present is called once, right as VBlank
// begins, with the just-completed frame buffer.
func (m *Machine) Frame(present func([]uint16)) {
	for m.Bus.GPU().Phase() != gpu.VBlank {
		m.stepOnce()
	}
	present(m.Bus.GPU().Frame())
	m.Bus.GPU().ClearFrameReady()
	for m.Bus.GPU().Phase() == gpu.VBlank {
		m.stepOnce()
	}

	if m.cfg.LimitFPS {
		m.throttle()
	}
}

func (m *Machine) stepOnce() {
	cycles, err := m.CPU.Step(m.Bus)
	if err != nil {
		m.log.Printf("cpu error: %v", err)
	}
	m.advancePeripherals(cycles)
}

// advancePeripherals steps the GPU by the CPU's elapsed cycles and
// requests any interrupt it raised. DMA and timer fan-out would hang off
// this point as well.
func (m *Machine) advancePeripherals(cycles int) {
	_, src, ok := m.Bus.GPU().Step(cycles)
	if ok {
		m.Bus.IRQ().Request(src)
	}
}

func (m *Machine) throttle() {
	if m.lastFrame.IsZero() {
		m.lastFrame = time.Now()
		return
	}
	elapsed := time.Since(m.lastFrame)
	if elapsed < m.frameBudget {
		time.Sleep(m.frameBudget - elapsed)
	}
	m.lastFrame = time.Now()
}
