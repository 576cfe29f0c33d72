// Package main provides the entry point for vr4300.
// vr4300 is a functional emulator of the NEC VR4300 (64-bit MIPS III) core
// and the N64 memory map.
//
// For the full CLI, use: go run ./cmd/vr4300
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("vr4300 - NEC VR4300 functional emulator")
	fmt.Println("")
	fmt.Println("Usage: vr4300 [options] <rom.z64|program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config    Path to machine configuration JSON file")
	fmt.Println("  -hle       Skip the boot code and start at the cartridge entry")
	fmt.Println("  -max       Stop after this many instructions")
	fmt.Println("  -script    Run a Starlark script instead of free-running")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/vr4300' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/vr4300' instead.")
	}
}
