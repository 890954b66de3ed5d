package gpu

// applyMosaic stretches blocks of the just-rendered line horizontally to
// simulate the GBA mosaic effect: every hsize-wide block is replaced with
// the color of its first column.
func (g *GPU) applyMosaic(y int, line []uint16) {
	hsize, vsize := g.regs.MosaicBGSize()
	hsize++
	vsize++
	if hsize <= 1 && vsize <= 1 {
		return
	}
	mosaicOn := false
	for bg := 0; bg < 4; bg++ {
		if g.regs.DisplayBG(bg) && g.regs.BGCNT[bg].Mosaic() {
			mosaicOn = true
		}
	}
	if !mosaicOn {
		return
	}
	// Vertical mosaic would require caching the sampled row across the
	// vsize-line band; this single-pass-per-line renderer applies the
	// horizontal fold only.
	for x := 0; x < ScreenWidth; x++ {
		src := x - (x % hsize)
		line[x] = line[src]
	}
}

// applyWindows masks pixels outside any enabled window to the backdrop
// color. A simplified, non-overlapping implementation of WIN0/WIN1: pixels
// inside either window pass through; with windows enabled and a pixel
// outside both, WINOUT's "outside" setting governs (approximated here as
// fully masked to the backdrop when WINOUT disables every layer).
func (g *GPU) applyWindows(y int, line []uint16) {
	if !g.regs.DisplayWin(0) && !g.regs.DisplayWin(1) && !g.regs.DisplayOBJWin() {
		return
	}
	backdrop := g.paletteEntry(0, 0)
	for x := 0; x < ScreenWidth; x++ {
		inside := false
		if g.regs.DisplayWin(0) && g.insideWindow(x, y, g.regs.WIN0H, g.regs.WIN0V) {
			inside = true
		}
		if g.regs.DisplayWin(1) && g.insideWindow(x, y, g.regs.WIN1H, g.regs.WIN1V) {
			inside = true
		}
		if !inside && (g.regs.WINOUT&0x1F) == 0 {
			line[x] = backdrop
		}
	}
}

func (g *GPU) insideWindow(x, y int, h, v uint16) bool {
	x1, x2 := int(h>>8), int(h&0xFF)
	y1, y2 := int(v>>8), int(v&0xFF)
	if x2 <= x1 {
		x2 = ScreenWidth
	}
	if y2 <= y1 {
		y2 = ScreenHeight
	}
	return x >= x1 && x < x2 && y >= y1 && y < y2
}

// applyBlend implements the BLDY brightness effects. Alpha blending
// between two specific layers needs per-pixel layer tags this compositor
// does not track, so BLDCNT mode 1 is a no-op; modes 2/3 (brightness
// increase/decrease) apply uniformly to the composed line.
func (g *GPU) applyBlend(y int, line []uint16) {
	mode := (g.regs.BLDCNT >> 6) & 0x3
	if mode != 2 && mode != 3 {
		return
	}
	evy := int(g.regs.BLDY & 0x1F)
	if evy > 16 {
		evy = 16
	}
	for x := 0; x < ScreenWidth; x++ {
		line[x] = blendBrightness(line[x], mode == 2, evy)
	}
}

func blendBrightness(c uint16, increase bool, evy int) uint16 {
	r := int(c & 0x1F)
	gr := int((c >> 5) & 0x1F)
	b := int((c >> 10) & 0x1F)
	if increase {
		r += (31 - r) * evy / 16
		gr += (31 - gr) * evy / 16
		b += (31 - b) * evy / 16
	} else {
		r -= r * evy / 16
		gr -= gr * evy / 16
		b -= b * evy / 16
	}
	return uint16(r&0x1F) | uint16(gr&0x1F)<<5 | uint16(b&0x1F)<<10
}
