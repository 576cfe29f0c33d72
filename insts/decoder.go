// Package insts provides VR4300 instruction definitions and decoding.
package insts

// Op represents a VR4300 opcode.
type Op uint8

// VR4300 opcodes.
const (
	OpUnknown Op = iota

	// SPECIAL
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpSRAV
	OpJR
	OpJALR
	OpSYSCALL
	OpBREAK
	OpSYNC
	OpMFHI
	OpMTHI
	OpMFLO
	OpMTLO
	OpDSLLV
	OpDSRLV
	OpDSRAV
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpDMULT
	OpDMULTU
	OpDDIV
	OpDDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpNOR
	OpSLT
	OpSLTU
	OpDADD
	OpDADDU
	OpDSUB
	OpDSUBU
	OpDSLL
	OpDSRL
	OpDSRA
	OpDSLL32
	OpDSRL32
	OpDSRA32

	// REGIMM
	OpBLTZ
	OpBGEZ
	OpBLTZL
	OpBGEZL
	OpBLTZAL
	OpBGEZAL
	OpBLTZALL
	OpBGEZALL

	// Primary
	OpJ
	OpJAL
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpBEQL
	OpBNEL
	OpBLEZL
	OpBGTZL
	OpDADDI
	OpDADDIU
	OpLDL
	OpLDR
	OpLB
	OpLH
	OpLWL
	OpLW
	OpLBU
	OpLHU
	OpLWR
	OpLWU
	OpSB
	OpSH
	OpSWL
	OpSW
	OpSDL
	OpSDR
	OpSWR
	OpCACHE
	OpLL
	OpLLD
	OpLD
	OpSC
	OpSCD
	OpSD

	// COP0
	OpMFC0
	OpDMFC0
	OpMTC0
	OpDMTC0
	OpERET

	// NumOps is the size of an Op-indexed table.
	NumOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR       // SPECIAL, register operands
	FormatI       // Primary, 16-bit immediate
	FormatJ       // Primary, 26-bit jump target
	FormatRegImm  // REGIMM, rt selects the operation
	FormatCop0    // COP0, rs selects the operation
)

// Primary opcode field values.
const (
	primarySPECIAL = 0x00
	primaryREGIMM  = 0x01
	primaryCOP0    = 0x10
)

// Instruction represents a decoded VR4300 instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format

	Rs uint8 // bits [25:21]
	Rt uint8 // bits [20:16]
	Rd uint8 // bits [15:11]
	Sa uint8 // bits [10:6]

	Imm    uint16 // bits [15:0]
	Target uint32 // bits [25:0], J and JAL only

	Raw uint32 // The undecoded word
}

// SignExtImm returns the immediate sign-extended to 64 bits.
func (i *Instruction) SignExtImm() uint64 {
	return uint64(int64(int16(i.Imm)))
}

// ZeroExtImm returns the immediate zero-extended to 64 bits.
func (i *Instruction) ZeroExtImm() uint64 {
	return uint64(i.Imm)
}

// Decoder decodes VR4300 machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new VR4300 instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

var primaryOps = [64]Op{
	0x02: OpJ, 0x03: OpJAL, 0x04: OpBEQ, 0x05: OpBNE, 0x06: OpBLEZ, 0x07: OpBGTZ,
	0x08: OpADDI, 0x09: OpADDIU, 0x0A: OpSLTI, 0x0B: OpSLTIU,
	0x0C: OpANDI, 0x0D: OpORI, 0x0E: OpXORI, 0x0F: OpLUI,
	0x14: OpBEQL, 0x15: OpBNEL, 0x16: OpBLEZL, 0x17: OpBGTZL,
	0x18: OpDADDI, 0x19: OpDADDIU, 0x1A: OpLDL, 0x1B: OpLDR,
	0x20: OpLB, 0x21: OpLH, 0x22: OpLWL, 0x23: OpLW,
	0x24: OpLBU, 0x25: OpLHU, 0x26: OpLWR, 0x27: OpLWU,
	0x28: OpSB, 0x29: OpSH, 0x2A: OpSWL, 0x2B: OpSW,
	0x2C: OpSDL, 0x2D: OpSDR, 0x2E: OpSWR, 0x2F: OpCACHE,
	0x30: OpLL, 0x34: OpLLD, 0x37: OpLD,
	0x38: OpSC, 0x3C: OpSCD, 0x3F: OpSD,
}

var specialOps = [64]Op{
	0x00: OpSLL, 0x02: OpSRL, 0x03: OpSRA,
	0x04: OpSLLV, 0x06: OpSRLV, 0x07: OpSRAV,
	0x08: OpJR, 0x09: OpJALR, 0x0C: OpSYSCALL, 0x0D: OpBREAK, 0x0F: OpSYNC,
	0x10: OpMFHI, 0x11: OpMTHI, 0x12: OpMFLO, 0x13: OpMTLO,
	0x14: OpDSLLV, 0x16: OpDSRLV, 0x17: OpDSRAV,
	0x18: OpMULT, 0x19: OpMULTU, 0x1A: OpDIV, 0x1B: OpDIVU,
	0x1C: OpDMULT, 0x1D: OpDMULTU, 0x1E: OpDDIV, 0x1F: OpDDIVU,
	0x20: OpADD, 0x21: OpADDU, 0x22: OpSUB, 0x23: OpSUBU,
	0x24: OpAND, 0x25: OpOR, 0x26: OpXOR, 0x27: OpNOR,
	0x2A: OpSLT, 0x2B: OpSLTU,
	0x2C: OpDADD, 0x2D: OpDADDU, 0x2E: OpDSUB, 0x2F: OpDSUBU,
	0x38: OpDSLL, 0x3A: OpDSRL, 0x3B: OpDSRA,
	0x3C: OpDSLL32, 0x3E: OpDSRL32, 0x3F: OpDSRA32,
}

var regimmOps = [32]Op{
	0x00: OpBLTZ, 0x01: OpBGEZ, 0x02: OpBLTZL, 0x03: OpBGEZL,
	0x10: OpBLTZAL, 0x11: OpBGEZAL, 0x12: OpBLTZALL, 0x13: OpBGEZALL,
}

// Decode decodes a 32-bit VR4300 instruction word. Words that do not name a
// supported operation decode to OpUnknown with the fields still extracted.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Raw:    word,
		Rs:     uint8((word >> 21) & 0x1F),
		Rt:     uint8((word >> 16) & 0x1F),
		Rd:     uint8((word >> 11) & 0x1F),
		Sa:     uint8((word >> 6) & 0x1F),
		Imm:    uint16(word),
		Target: word & 0x03FFFFFF,
	}

	primary := word >> 26
	switch primary {
	case primarySPECIAL:
		inst.Format = FormatR
		inst.Op = specialOps[word&0x3F]
	case primaryREGIMM:
		inst.Format = FormatRegImm
		inst.Op = regimmOps[inst.Rt]
	case primaryCOP0:
		inst.Format = FormatCop0
		inst.Op = d.decodeCop0(word, inst)
	case 0x02, 0x03:
		inst.Format = FormatJ
		inst.Op = primaryOps[primary]
	default:
		inst.Format = FormatI
		inst.Op = primaryOps[primary]
	}

	if inst.Op == OpUnknown {
		inst.Format = FormatUnknown
	}
	return inst
}

// decodeCop0 handles the COP0 sub-opcode in rs. TLB operations are not
// supported and decode as unknown.
func (d *Decoder) decodeCop0(word uint32, inst *Instruction) Op {
	if inst.Rs&0x10 != 0 {
		if word&0x3F == 0x18 {
			return OpERET
		}
		return OpUnknown
	}

	switch inst.Rs {
	case 0x00:
		return OpMFC0
	case 0x01:
		return OpDMFC0
	case 0x04:
		return OpMTC0
	case 0x05:
		return OpDMTC0
	}
	return OpUnknown
}

// IsBranch reports whether the operation changes nextPC.
func (o Op) IsBranch() bool {
	switch o {
	case OpJ, OpJAL, OpJR, OpJALR,
		OpBEQ, OpBNE, OpBLEZ, OpBGTZ,
		OpBEQL, OpBNEL, OpBLEZL, OpBGTZL,
		OpBLTZ, OpBGEZ, OpBLTZL, OpBGEZL,
		OpBLTZAL, OpBGEZAL, OpBLTZALL, OpBGEZALL:
		return true
	}
	return false
}

// IsLikely reports whether the operation nullifies its delay slot when the
// branch is not taken.
func (o Op) IsLikely() bool {
	switch o {
	case OpBEQL, OpBNEL, OpBLEZL, OpBGTZL,
		OpBLTZL, OpBGEZL, OpBLTZALL, OpBGEZALL:
		return true
	}
	return false
}

// IsStore reports whether the operation writes memory.
func (o Op) IsStore() bool {
	switch o {
	case OpSB, OpSH, OpSW, OpSD,
		OpSWL, OpSWR, OpSDL, OpSDR,
		OpSC, OpSCD:
		return true
	}
	return false
}
