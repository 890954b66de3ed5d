package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolfmatthias/gbacore/internal/irq"
)

func TestLineCompletesIn1232Cycles(t *testing.T) {
	g := New()
	startPhase := g.Phase()
	startVCount := g.VCount()

	changed, _, _ := g.Step(CyclesPerLine)

	assert.True(t, changed, "phase should change at least once across a full line")
	assert.Equal(t, (startVCount+1)%TotalLines, g.VCount())
	assert.Equal(t, startPhase, g.Phase(), "phase returns to its starting value after 1232 cycles")
}

func TestHDrawToHBlankRaisesHBlankIRQWhenEnabled(t *testing.T) {
	g := New()
	g.regs.DISPSTAT |= dispstatHBlankIRQEnable

	_, src, ok := g.Step(CyclesHDraw)
	assert.True(t, ok)
	assert.Equal(t, irq.HBlank, src)
	assert.Equal(t, HBlank, g.Phase())
}

func TestFullFrameEntersVBlankExactlyOnce(t *testing.T) {
	g := New()
	vblankTransitions := 0
	lastPhase := g.Phase()

	for i := 0; i < CyclesPerLine*TotalLines; i++ {
		g.Step(1)
		if g.Phase() == VBlank && lastPhase != VBlank {
			vblankTransitions++
		}
		lastPhase = g.Phase()
	}

	assert.Equal(t, 1, vblankTransitions)
	assert.True(t, g.FrameReady())
}

func TestVBlankIRQRaisedOnEntry(t *testing.T) {
	g := New()
	g.regs.DISPSTAT |= dispstatVBlankIRQEnable

	sawVBlankIRQ := false
	for i := 0; i < CyclesPerLine*VisibleLines+1; i++ {
		_, src, ok := g.Step(1)
		if ok && src == irq.VBlank {
			sawVBlankIRQ = true
		}
	}
	assert.True(t, sawVBlankIRQ)
}

func TestVRAMMirrorFold(t *testing.T) {
	g := New()
	g.WriteVRAM8(0x10000, 0x55)
	assert.Equal(t, byte(0x55), g.ReadVRAM8(0x18000))
}

func TestIsIORegisterBoundary(t *testing.T) {
	assert.True(t, IsIORegister(0x00))
	assert.True(t, IsIORegister(0x56))
	assert.False(t, IsIORegister(0x58))
}
