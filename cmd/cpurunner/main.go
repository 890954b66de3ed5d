// Command cpurunner is a CPU-only step harness: it loads a flat binary at
// a fixed address, runs the interpreter for a bounded number of steps and
// prints a register trace line per instruction.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rolfmatthias/gbacore/internal/bus"
	"github.com/rolfmatthias/gbacore/internal/cpu"
)

func main() {
	binPath := flag.String("bin", "", "flat ARM/THUMB binary to load at -base")
	base := flag.Uint("base", 0x0800_0000, "load address (defaults to GAMEPAK start)")
	steps := flag.Int("steps", 1000, "number of instructions to execute")
	traceEvery := flag.Int("trace-every", 1, "print a register line every N steps (0 disables tracing)")
	thumb := flag.Bool("thumb", false, "start execution in THUMB state")
	flag.Parse()

	if *binPath == "" {
		fmt.Fprintln(os.Stderr, "cpurunner: -bin is required")
		os.Exit(2)
	}

	image, err := os.ReadFile(*binPath)
	if err != nil {
		log.Fatalf("cpurunner: %v", err)
	}

	romOffset := *base - 0x0800_0000
	rom := make([]byte, romOffset+uint(len(image)))
	copy(rom[romOffset:], image)

	b := bus.New(nil, rom)
	c := cpu.New()
	c.InitSkipBIOS()
	c.Registers().SetThumbState(*thumb)
	c.Registers().SetPC(uint32(*base))

	for i := 0; i < *steps; i++ {
		pc := c.Registers().PC()
		cycles, err := c.Step(b)
		if *traceEvery > 0 && i%*traceEvery == 0 {
			fmt.Printf("%6d pc=%08X cycles=%d cpsr=%08X r0=%08X r1=%08X sp=%08X\n",
				i, pc, cycles, c.Registers().CPSR(), c.Registers().Reg(0), c.Registers().Reg(1), c.Registers().Reg(13))
		}
		if err != nil {
			fmt.Printf("cpurunner: stopped at step %d: %v\n", i, err)
			return
		}
	}
}
