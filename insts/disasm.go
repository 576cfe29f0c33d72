package insts

import "fmt"

// RegNames are the conventional ABI names of the 32 general-purpose
// registers.
var RegNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "s8", "ra",
}

var mnemonics = [NumOps]string{
	OpUnknown: "UNKNOWN", OpSLL: "SLL", OpSRL: "SRL", OpSRA: "SRA",
	OpSLLV: "SLLV", OpSRLV: "SRLV", OpSRAV: "SRAV",
	OpJR: "JR", OpJALR: "JALR", OpSYSCALL: "SYSCALL", OpBREAK: "BREAK", OpSYNC: "SYNC",
	OpMFHI: "MFHI", OpMTHI: "MTHI", OpMFLO: "MFLO", OpMTLO: "MTLO",
	OpDSLLV: "DSLLV", OpDSRLV: "DSRLV", OpDSRAV: "DSRAV",
	OpMULT: "MULT", OpMULTU: "MULTU", OpDIV: "DIV", OpDIVU: "DIVU",
	OpDMULT: "DMULT", OpDMULTU: "DMULTU", OpDDIV: "DDIV", OpDDIVU: "DDIVU",
	OpADD: "ADD", OpADDU: "ADDU", OpSUB: "SUB", OpSUBU: "SUBU",
	OpAND: "AND", OpOR: "OR", OpXOR: "XOR", OpNOR: "NOR",
	OpSLT: "SLT", OpSLTU: "SLTU",
	OpDADD: "DADD", OpDADDU: "DADDU", OpDSUB: "DSUB", OpDSUBU: "DSUBU",
	OpDSLL: "DSLL", OpDSRL: "DSRL", OpDSRA: "DSRA",
	OpDSLL32: "DSLL32", OpDSRL32: "DSRL32", OpDSRA32: "DSRA32",
	OpBLTZ: "BLTZ", OpBGEZ: "BGEZ", OpBLTZL: "BLTZL", OpBGEZL: "BGEZL",
	OpBLTZAL: "BLTZAL", OpBGEZAL: "BGEZAL", OpBLTZALL: "BLTZALL", OpBGEZALL: "BGEZALL",
	OpJ: "J", OpJAL: "JAL",
	OpBEQ: "BEQ", OpBNE: "BNE", OpBLEZ: "BLEZ", OpBGTZ: "BGTZ",
	OpADDI: "ADDI", OpADDIU: "ADDIU", OpSLTI: "SLTI", OpSLTIU: "SLTIU",
	OpANDI: "ANDI", OpORI: "ORI", OpXORI: "XORI", OpLUI: "LUI",
	OpBEQL: "BEQL", OpBNEL: "BNEL", OpBLEZL: "BLEZL", OpBGTZL: "BGTZL",
	OpDADDI: "DADDI", OpDADDIU: "DADDIU", OpLDL: "LDL", OpLDR: "LDR",
	OpLB: "LB", OpLH: "LH", OpLWL: "LWL", OpLW: "LW",
	OpLBU: "LBU", OpLHU: "LHU", OpLWR: "LWR", OpLWU: "LWU",
	OpSB: "SB", OpSH: "SH", OpSWL: "SWL", OpSW: "SW",
	OpSDL: "SDL", OpSDR: "SDR", OpSWR: "SWR", OpCACHE: "CACHE",
	OpLL: "LL", OpLLD: "LLD", OpLD: "LD",
	OpSC: "SC", OpSCD: "SCD", OpSD: "SD",
	OpMFC0: "MFC0", OpDMFC0: "DMFC0", OpMTC0: "MTC0", OpDMTC0: "DMTC0", OpERET: "ERET",
}

// String returns the mnemonic of the operation.
func (o Op) String() string {
	if o >= NumOps {
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
	return mnemonics[o]
}

// String disassembles the instruction. Branch offsets are printed in
// instructions relative to the delay slot.
func (i *Instruction) String() string {
	rs, rt, rd := RegNames[i.Rs], RegNames[i.Rt], RegNames[i.Rd]
	imm := int16(i.Imm)

	switch i.Op {
	case OpUnknown:
		return fmt.Sprintf("UNKNOWN 0x%08x", i.Raw)
	case OpSLL:
		if i.Raw == 0 {
			return "NOP"
		}
		fallthrough
	case OpSRL, OpSRA, OpDSLL, OpDSRL, OpDSRA, OpDSLL32, OpDSRL32, OpDSRA32:
		return fmt.Sprintf("%v %s, %s, %d", i.Op, rd, rt, i.Sa)
	case OpSLLV, OpSRLV, OpSRAV, OpDSLLV, OpDSRLV, OpDSRAV:
		return fmt.Sprintf("%v %s, %s, %s", i.Op, rd, rt, rs)
	case OpJR, OpMTHI, OpMTLO:
		return fmt.Sprintf("%v %s", i.Op, rs)
	case OpJALR:
		return fmt.Sprintf("%v %s, %s", i.Op, rd, rs)
	case OpSYSCALL, OpBREAK, OpSYNC, OpERET:
		return i.Op.String()
	case OpMFHI, OpMFLO:
		return fmt.Sprintf("%v %s", i.Op, rd)
	case OpMULT, OpMULTU, OpDIV, OpDIVU, OpDMULT, OpDMULTU, OpDDIV, OpDDIVU:
		return fmt.Sprintf("%v %s, %s", i.Op, rs, rt)
	case OpJ, OpJAL:
		return fmt.Sprintf("%v 0x%07x", i.Op, i.Target<<2)
	case OpBEQ, OpBNE, OpBEQL, OpBNEL:
		return fmt.Sprintf("%v %s, %s, %d", i.Op, rs, rt, imm)
	case OpBLEZ, OpBGTZ, OpBLEZL, OpBGTZL,
		OpBLTZ, OpBGEZ, OpBLTZL, OpBGEZL,
		OpBLTZAL, OpBGEZAL, OpBLTZALL, OpBGEZALL:
		return fmt.Sprintf("%v %s, %d", i.Op, rs, imm)
	case OpADDI, OpADDIU, OpSLTI, OpSLTIU, OpDADDI, OpDADDIU:
		return fmt.Sprintf("%v %s, %s, %d", i.Op, rt, rs, imm)
	case OpANDI, OpORI, OpXORI:
		return fmt.Sprintf("%v %s, %s, 0x%04x", i.Op, rt, rs, i.Imm)
	case OpLUI:
		return fmt.Sprintf("%v %s, 0x%04x", i.Op, rt, i.Imm)
	case OpMFC0, OpDMFC0, OpMTC0, OpDMTC0:
		return fmt.Sprintf("%v %s, $%d", i.Op, rt, i.Rd)
	case OpCACHE:
		return fmt.Sprintf("%v 0x%02x, %d(%s)", i.Op, i.Rt, imm, rs)
	}

	if i.Format == FormatR {
		return fmt.Sprintf("%v %s, %s, %s", i.Op, rd, rs, rt)
	}
	// Loads and stores.
	return fmt.Sprintf("%v %s, %d(%s)", i.Op, rt, imm, rs)
}
