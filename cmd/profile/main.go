// Package main provides a profiling wrapper for the VR4300 emulator to
// identify performance bottlenecks.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/vr4300/cache"
	"github.com/sarchlab/vr4300/emu"
	"github.com/sarchlab/vr4300/loader"
)

var (
	hle         = flag.Bool("hle", true, "Start at the cartridge entry instead of the reset vector")
	dcache      = flag.Bool("dcache", false, "Enable the data cache")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 1000000, "max instructions to execute (0 = unlimited)")
)

// chunk is how many instructions run between timeout checks.
const chunk = 1 << 16

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <rom.z64|program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Start CPU profiling if requested
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	programPath := flag.Arg(0)

	e, err := newEmulator(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s\n", programPath)
	fmt.Printf("Entry point: 0x%016X\n", e.RegFile().PC)

	start := time.Now()
	result := run(e, start.Add(*duration))
	elapsed := time.Since(start)

	// Write memory profile if requested
	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	instrCount := e.InstructionCount()

	fmt.Printf("\nProfiling Results:\n")
	fmt.Printf("Stopped by: %s\n", result)
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
	if dc := e.DataCache(); dc != nil {
		stats := dc.Stats()
		fmt.Printf("D-Cache hits/misses: %d/%d\n", stats.Hits, stats.Misses)
	}
}

func newEmulator(path string) (*emu.Emulator, error) {
	img, prog, err := loader.Open(path)
	if err != nil {
		return nil, err
	}

	opts := []emu.EmulatorOption{
		emu.WithHLEBoot(*hle),
		emu.WithMaxInstructions(*instruction),
	}
	if *dcache {
		opts = append(opts, emu.WithDataCache(cache.DefaultDataCacheConfig()))
	}

	if img != nil {
		return emu.NewEmulator(append(opts, emu.WithROM(img.Data))...), nil
	}

	e := emu.NewEmulator(opts...)
	if err := prog.Install(e.MMU()); err != nil {
		return nil, err
	}
	e.RegFile().PC = prog.EntryPoint
	e.RegFile().NextPC = prog.EntryPoint + 4
	return e, nil
}

// run steps the emulator in chunks until it stops or the deadline passes,
// and describes why it stopped.
func run(e *emu.Emulator, deadline time.Time) string {
	for {
		n, result := e.Run(chunk)
		switch {
		case result.Err != nil:
			return result.Err.Error()
		case result.Fault != nil:
			return result.Fault.Error()
		case n < chunk:
			return "stopped"
		case time.Now().After(deadline):
			return "timeout"
		}
	}
}
