package gpu

// renderScanline produces line y (0..159) into the frame buffer, honoring
// DISPCNT's background mode and forced-blank bit, then applies mosaic,
// window and blend effects, in that order.
func (g *GPU) renderScanline(y int) {
	if y < 0 || y >= ScreenHeight {
		return
	}
	line := g.frame[y*ScreenWidth : y*ScreenWidth+ScreenWidth]

	if g.regs.ForcedBlank() {
		for x := range line {
			line[x] = 0x7FFF // white, matches a blanked LCD
		}
		return
	}

	switch g.regs.BGMode() {
	case 3:
		g.renderBitmapMode3(y, line)
	case 4:
		g.renderBitmapMode4(y, line)
	case 5:
		g.renderBitmapMode5(y, line)
	default:
		// Modes 0-2: tiled backgrounds. Mode 0 is rendered in full; modes
		// 1/2 draw only BG0/BG1 as text layers, and their affine layers
		// (BG2/BG3) are not drawn.
		g.renderTiledMode(y, line)
	}

	g.applyMosaic(y, line)
	g.composeOBJ(y, line)
	g.applyWindows(y, line)
	g.applyBlend(y, line)
}

// renderBitmapMode3 reads one 16bpp BGR555 line directly from VRAM (BG2).
func (g *GPU) renderBitmapMode3(y int, line []uint16) {
	base := y * ScreenWidth * 2
	for x := 0; x < ScreenWidth; x++ {
		off := uint32(base + x*2)
		lo := uint16(g.ReadVRAM8(off))
		hi := uint16(g.ReadVRAM8(off + 1))
		line[x] = lo | (hi << 8)
	}
}

// renderBitmapMode4 reads one 8bpp paletted line (with page flip) from VRAM.
func (g *GPU) renderBitmapMode4(y int, line []uint16) {
	var page uint32
	if g.regs.DISPCNT&(1<<4) != 0 {
		page = 0xA000
	}
	base := page + uint32(y*ScreenWidth)
	for x := 0; x < ScreenWidth; x++ {
		idx := g.ReadVRAM8(base + uint32(x))
		line[x] = g.paletteEntry(0, idx)
	}
}

// renderBitmapMode5 reads a 160x128 16bpp bitmap (with page flip), letterboxed.
func (g *GPU) renderBitmapMode5(y int, line []uint16) {
	const w, h = 160, 128
	if y >= h {
		for x := range line {
			line[x] = 0
		}
		return
	}
	var page uint32
	if g.regs.DISPCNT&(1<<4) != 0 {
		page = 0xA000
	}
	base := page + uint32(y*w*2)
	for x := 0; x < ScreenWidth; x++ {
		if x >= w {
			line[x] = 0
			continue
		}
		off := base + uint32(x*2)
		lo := uint16(g.ReadVRAM8(off))
		hi := uint16(g.ReadVRAM8(off + 1))
		line[x] = lo | (hi << 8)
	}
}

// renderTiledMode composes up to 4 text-mode background layers, back to
// front by priority, into line. In modes 1/2 only BG0 and BG1 are drawn,
// as text layers; the affine backgrounds BG2/BG3 are skipped.
func (g *GPU) renderTiledMode(y int, line []uint16) {
	for x := range line {
		line[x] = g.paletteEntry(0, 0) // backdrop
	}
	mode := g.regs.BGMode()
	maxBG := 4
	if mode != 0 {
		maxBG = 2
	}
	// Draw lowest priority first so higher-priority layers overdraw.
	for pr := 3; pr >= 0; pr-- {
		for bg := maxBG - 1; bg >= 0; bg-- {
			if !g.regs.DisplayBG(bg) || g.regs.BGCNT[bg].Priority() != pr {
				continue
			}
			g.renderTextBGLine(bg, y, line)
		}
	}
}

func (g *GPU) renderTextBGLine(bg, y int, line []uint16) {
	cnt := g.regs.BGCNT[bg]
	hofs := int(g.regs.BGHOFS[bg])
	vofs := int(g.regs.BGVOFS[bg])
	charBase := uint32(cnt.CharBase()) * 0x4000
	screenBase := uint32(cnt.ScreenBase()) * 0x800

	bgY := (y + vofs) & 0xFF
	tileRow := bgY / 8
	within := bgY % 8

	for x := 0; x < ScreenWidth; x++ {
		bgX := (x + hofs) & 0xFF
		tileCol := bgX / 8
		entryOff := screenBase + uint32(tileRow*32+tileCol)*2
		entry := uint16(g.ReadVRAM8(entryOff)) | uint16(g.ReadVRAM8(entryOff+1))<<8
		tileIdx := entry & 0x3FF
		flipH := entry&(1<<10) != 0
		flipV := entry&(1<<11) != 0
		palBank := byte((entry >> 12) & 0xF)

		col := bgX % 8
		row := within
		if flipH {
			col = 7 - col
		}
		if flipV {
			row = 7 - row
		}

		if cnt.Palette256() {
			tileAddr := charBase + uint32(tileIdx)*64 + uint32(row*8+col)
			idx := g.ReadVRAM8(tileAddr)
			if idx != 0 {
				line[x] = g.paletteEntry(0, idx)
			}
		} else {
			tileAddr := charBase + uint32(tileIdx)*32 + uint32(row*4+col/2)
			b := g.ReadVRAM8(tileAddr)
			var idx byte
			if col%2 == 0 {
				idx = b & 0xF
			} else {
				idx = b >> 4
			}
			if idx != 0 {
				line[x] = g.paletteEntry(int(palBank), idx)
			}
		}
	}
}

// paletteEntry reads a 15-bit BGR555 color from BG palette bank*16+index.
func (g *GPU) paletteEntry(bank int, index byte) uint16 {
	off := uint32(bank*16+int(index)) * 2
	lo := uint16(g.ReadPalette8(off))
	hi := uint16(g.ReadPalette8(off + 1))
	return lo | (hi << 8)
}

// objPaletteEntry reads from the OBJ palette bank (second 256-entry half of
// palette RAM, 0x200-0x3FF).
func (g *GPU) objPaletteEntry(bank int, index byte) uint16 {
	off := 0x200 + uint32(bank*16+int(index))*2
	lo := uint16(g.ReadPalette8(off))
	hi := uint16(g.ReadPalette8(off + 1))
	return lo | (hi << 8)
}

// composeOBJ draws sprite pixels from OAM over the background line.
// Per-sprite priority against BG layers is approximated by overdraw;
// sprites are not priority-sorted per pixel against each BG's priority
// value.
func (g *GPU) composeOBJ(y int, line []uint16) {
	if !g.regs.DisplayOBJ() {
		return
	}
	for i := 0; i < 128; i++ {
		base := uint32(i * 8)
		attr0 := uint16(g.ReadOAM8(base)) | uint16(g.ReadOAM8(base+1))<<8
		attr1 := uint16(g.ReadOAM8(base+2)) | uint16(g.ReadOAM8(base+3))<<8
		attr2 := uint16(g.ReadOAM8(base+4)) | uint16(g.ReadOAM8(base+5))<<8

		shape := (attr0 >> 14) & 0x3
		objY := int(attr0 & 0xFF)
		if attr0&(1<<8) != 0 {
			continue // affine OBJ, unsupported in this pass
		}
		if attr0&(1<<9) != 0 {
			continue // disabled (double-size bit reused as disable for non-affine)
		}
		size := (attr1 >> 14) & 0x3
		w, h := objDimensions(shape, size)
		if objY+h <= 256 && (y < objY || y >= objY+h) {
			continue
		}
		objX := int(attr1 & 0x1FF)
		if objX >= 512 {
			objX -= 512
		}
		row := y - objY
		if row < 0 {
			row += 256
		}
		flipH := attr1&(1<<12) != 0
		flipV := attr1&(1<<13) != 0
		if flipV {
			row = h - 1 - row
		}
		tileBase := 0x10000 + uint32(attr2&0x3FF)*32
		palBank := int((attr2 >> 12) & 0xF)
		use256 := attr0&(1<<13) != 0

		tilesWide := w / 8
		for col := 0; col < w; col++ {
			px := objX + col
			if px < 0 || px >= ScreenWidth {
				continue
			}
			sc := col
			if flipH {
				sc = w - 1 - col
			}
			tileX := sc / 8
			tileY := row / 8
			inX := sc % 8
			inY := row % 8
			var tileIdx uint32
			if use256 {
				tileIdx = uint32(tileY*tilesWide + tileX)
				addr := tileBase + tileIdx*64 + uint32(inY*8+inX)
				val := g.readVRAMObj(addr)
				if val != 0 {
					line[px] = g.objPaletteEntry(0, val)
				}
			} else {
				tileIdx = uint32(tileY*tilesWide + tileX)
				addr := tileBase + tileIdx*32 + uint32(inY*4+inX/2)
				b := g.readVRAMObj(addr)
				var idx byte
				if inX%2 == 0 {
					idx = b & 0xF
				} else {
					idx = b >> 4
				}
				if idx != 0 {
					line[px] = g.objPaletteEntry(palBank, idx)
				}
			}
		}
	}
}

// readVRAMObj reads from OBJ tile VRAM (0x10000-0x17FFF), shared storage
// with BG VRAM in modes 0-2 and the upper half of VRAM in modes 3-5.
func (g *GPU) readVRAMObj(addr uint32) byte { return g.ReadVRAM8(addr) }

func objDimensions(shape, size uint16) (w, h int) {
	table := [4][4][2]int{
		{{8, 8}, {16, 16}, {32, 32}, {64, 64}},    // square
		{{16, 8}, {32, 8}, {32, 16}, {64, 32}},    // horizontal
		{{8, 16}, {8, 32}, {16, 32}, {32, 64}},    // vertical
		{{8, 8}, {8, 8}, {8, 8}, {8, 8}},           // invalid
	}
	d := table[shape][size]
	return d[0], d[1]
}
