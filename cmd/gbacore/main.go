// Command gbacore runs the GBA core headless or windowed: it can either
// blit frames to an ebiten window or run N frames headless and report a
// CRC32 of the final frame buffer for smoke-test style verification.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/rolfmatthias/gbacore/internal/emu"
	"github.com/rolfmatthias/gbacore/internal/shell"
)

func main() {
	biosPath := flag.String("bios", "", "path to a GBA BIOS image")
	romPath := flag.String("rom", "", "path to a GBA cartridge ROM")
	skipBIOS := flag.Bool("skip-bios", false, "start execution past the BIOS boot sequence")
	frames := flag.Int("frames", 0, "headless mode: run this many frames then exit")
	headless := flag.Bool("headless", false, "run without opening a window")
	outPNG := flag.String("outpng", "", "headless mode: dump the final frame to this PNG path")
	expect := flag.String("expect", "", "headless mode: fail if the final frame's CRC32 doesn't match this hex value")
	trace := flag.Bool("trace", false, "enable trace logging of CPU errors")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "gbacore: -rom is required")
		os.Exit(2)
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("gbacore: reading ROM: %v", err)
	}

	var bios []byte
	if *biosPath != "" {
		bios, err = os.ReadFile(*biosPath)
		if err != nil {
			log.Fatalf("gbacore: reading BIOS: %v", err)
		}
	}

	cfg := emu.Config{Trace: *trace, SkipBIOS: *skipBIOS || len(bios) == 0, LimitFPS: !*headless}
	machine := emu.New(bios, rom, cfg)

	if !*headless {
		shell.Run(machine)
		return
	}

	runHeadless(machine, *frames, *outPNG, *expect)
}

func runHeadless(machine *emu.Machine, frames int, outPNG, expect string) {
	var last []uint16
	for i := 0; i < frames; i++ {
		machine.Frame(func(buf []uint16) {
			last = append(last[:0], buf...)
		})
	}

	sum := crc32.ChecksumIEEE(uint16SliceToBytes(last))
	fmt.Printf("gbacore: ran %d frames, final CRC32=%08X\n", frames, sum)

	if expect != "" {
		var want uint32
		if _, err := fmt.Sscanf(expect, "%08X", &want); err != nil {
			log.Fatalf("gbacore: invalid -expect value %q: %v", expect, err)
		}
		if want != sum {
			log.Fatalf("gbacore: CRC32 mismatch: got %08X want %08X", sum, want)
		}
	}

	if outPNG != "" {
		if err := dumpPNG(outPNG, last); err != nil {
			log.Fatalf("gbacore: writing PNG: %v", err)
		}
	}
}

func uint16SliceToBytes(s []uint16) []byte {
	out := make([]byte, len(s)*2)
	for i, v := range s {
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

const frameWidth, frameHeight = 240, 160

func dumpPNG(path string, buf []uint16) error {
	img := image.NewRGBA(image.Rect(0, 0, frameWidth, frameHeight))
	for y := 0; y < frameHeight; y++ {
		for x := 0; x < frameWidth; x++ {
			v := buf[y*frameWidth+x]
			r := uint8((v & 0x1F) << 3)
			g := uint8(((v >> 5) & 0x1F) << 3)
			b := uint8(((v >> 10) & 0x1F) << 3)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
