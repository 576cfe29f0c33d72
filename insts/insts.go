// Package insts provides VR4300 instruction definitions and decoding.
//
// This package decodes big-endian MIPS III machine words into structured
// instruction representations. It supports:
//   - SPECIAL (R-type): shifts, HI/LO moves, multiply/divide, ALU, JR/JALR
//   - REGIMM: BLTZ/BGEZ and their likely and linking forms
//   - Primary (I/J-type): immediates, branches, jumps, loads and stores
//   - COP0: MFC0, DMFC0, MTC0, DMTC0 and ERET
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x2508002A) // ADDIU t0, t0, 42
//	fmt.Println(inst)
package insts
