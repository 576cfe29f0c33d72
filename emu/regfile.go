// Package emu provides functional VR4300 emulation.
package emu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/vr4300/insts"
)

// Reset and HLE boot vectors.
const (
	ResetVector uint64 = 0xBFC00000
	HLEEntry    uint64 = 0x80001000
)

// ABI register indices used by the HLE boot state.
const (
	RegT3 uint8 = 11
	RegS4 uint8 = 20
	RegS6 uint8 = 22
	RegSP uint8 = 29
	RegRA uint8 = 31
)

// RegFile represents the VR4300 integer register file.
type RegFile struct {
	// GPR holds the 32 general-purpose registers. GPR[0] is never written.
	GPR [32]uint64

	// PC is the address of the next instruction to execute.
	PC uint64

	// NextPC is the address of the instruction after PC. Branches write
	// NextPC, which delays their effect by one instruction.
	NextPC uint64

	// HI and LO receive multiply and divide results.
	HI uint64
	LO uint64

	// LLBit is set by LL and LLD and consumed by SC and SCD.
	LLBit bool
}

// NewRegFile creates a register file in the cold reset state.
func NewRegFile() *RegFile {
	return &RegFile{
		PC:     ResetVector,
		NextPC: ResetVector + 4,
	}
}

// NewHLERegFile creates a register file in the state the boot code leaves
// behind, ready to run from HLEEntry.
func NewHLERegFile() *RegFile {
	r := &RegFile{
		PC:     HLEEntry,
		NextPC: HLEEntry + 4,
	}
	r.GPR[RegT3] = 0xFFFFFFFFA4000040
	r.GPR[RegS4] = 0x1
	r.GPR[RegS6] = 0x3F
	r.GPR[RegSP] = 0xFFFFFFFFA4001FF0
	return r
}

// ReadReg reads a register value. Register 0 always reads as 0.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	if reg > 31 {
		panic(fmt.Sprintf("emu: register index %d out of range", reg))
	}
	if reg == 0 {
		return 0
	}
	return r.GPR[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	if reg > 31 {
		panic(fmt.Sprintf("emu: register index %d out of range", reg))
	}
	if reg == 0 {
		return
	}
	r.GPR[reg] = value
}

// IncrementPC advances PC by delta, wrapping at 2^64.
func (r *RegFile) IncrementPC(delta uint64) {
	r.PC += delta
}

// IncrementNextPC advances NextPC by delta, wrapping at 2^64.
func (r *RegFile) IncrementNextPC(delta uint64) {
	r.NextPC += delta
}

// RegIndex returns the index of a register given its ABI name ("sp") or
// its number ("r29", "$29", "29").
func RegIndex(name string) (uint8, bool) {
	for i, n := range insts.RegNames {
		if n == name {
			return uint8(i), true
		}
	}
	if name == "fp" {
		return 30, true
	}

	num := strings.TrimPrefix(strings.TrimPrefix(name, "r"), "$")
	idx, err := strconv.Atoi(num)
	if err == nil && idx >= 0 && idx <= 31 {
		return uint8(idx), true
	}
	return 0, false
}

// ReadRegByName reads a register by name.
func (r *RegFile) ReadRegByName(name string) (uint64, error) {
	idx, ok := RegIndex(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return r.ReadReg(idx), nil
}

// WriteRegByName writes a register by name.
func (r *RegFile) WriteRegByName(name string, value uint64) error {
	idx, ok := RegIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	r.WriteReg(idx, value)
	return nil
}
