// Package shell is the windowed demo host: an ebiten.Game that blits the
// core's 240x160 RGB555 frame buffer and maps keyboard input to the 10-bit
// keypad register, plus an oto-backed consumer draining the audio ring
// buffer. None of this is part of the emulation core; the core only sees
// a keypad word coming in and a pixel buffer going out.
package shell

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rolfmatthias/gbacore/internal/emu"
)

const (
	screenWidth  = 240
	screenHeight = 160
	windowScale  = 3
)

// keyMap maps host keys onto the KEYINPUT bit layout:
// A/B/Select/Start/Right/Left/Up/Down/R/L.
var keyMap = []struct {
	key  ebiten.Key
	mask uint16
}{
	{ebiten.KeyX, 1 << 0},         // A
	{ebiten.KeyZ, 1 << 1},         // B
	{ebiten.KeyBackspace, 1 << 2}, // Select
	{ebiten.KeyEnter, 1 << 3},     // Start
	{ebiten.KeyRight, 1 << 4},
	{ebiten.KeyLeft, 1 << 5},
	{ebiten.KeyUp, 1 << 6},
	{ebiten.KeyDown, 1 << 7},
	{ebiten.KeyS, 1 << 8}, // R
	{ebiten.KeyA, 1 << 9}, // L
}

// App implements ebiten.Game, wrapping a *emu.Machine.
type App struct {
	machine *emu.Machine
	img     *ebiten.Image
	pixels  []byte
}

func newApp(m *emu.Machine) *App {
	return &App{
		machine: m,
		img:     ebiten.NewImage(screenWidth, screenHeight),
		pixels:  make([]byte, screenWidth*screenHeight*4),
	}
}

func (a *App) Update() error {
	var state uint16 = 0x03FF // all released
	for _, k := range keyMap {
		if ebiten.IsKeyPressed(k.key) {
			state &^= k.mask
		}
	}
	a.machine.SetKeypad(state)

	a.machine.Frame(func(buf []uint16) {
		a.blit(buf)
	})

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return fmt.Errorf("shell: quit requested")
	}
	return nil
}

func (a *App) blit(buf []uint16) {
	for i, v := range buf {
		r := uint8((v & 0x1F) << 3)
		g := uint8(((v >> 5) & 0x1F) << 3)
		b := uint8(((v >> 10) & 0x1F) << 3)
		a.pixels[i*4+0] = r
		a.pixels[i*4+1] = g
		a.pixels[i*4+2] = b
		a.pixels[i*4+3] = 0xFF
	}
	a.img.WritePixels(a.pixels)
}

func (a *App) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(windowScale, windowScale)
	screen.DrawImage(a.img, op)
	ebitenutil.DebugPrint(screen, "gbacore")
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth * windowScale, screenHeight * windowScale
}

// Run opens a window and drives the machine one frame per ebiten tick
// until the user closes it or presses Escape.
func Run(m *emu.Machine) {
	player, err := NewAudioPlayer()
	if err != nil {
		fmt.Println("shell: audio disabled:", err)
	} else {
		player.Start()
		defer player.Stop()
	}

	ebiten.SetWindowSize(screenWidth*windowScale, screenHeight*windowScale)
	ebiten.SetWindowTitle("gbacore")
	if err := ebiten.RunGame(newApp(m)); err != nil {
		fmt.Println("shell:", err)
	}
}
