package emu

// Cond represents a branch condition.
type Cond uint8

// Branch conditions.
const (
	CondEQ  Cond = iota // rs == rt
	CondNE              // rs != rt
	CondLEZ             // rs <= 0
	CondGTZ             // rs > 0
	CondLTZ             // rs < 0
	CondGEZ             // rs >= 0
)

// BranchUnit implements VR4300 jumps and branches. Every method takes the
// address of the branch instruction itself and writes NextPC, so the
// instruction already at PC (the delay slot) executes before the transfer.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// J jumps within the 256MB region of the branch: the low 28 bits come from
// the target field.
func (b *BranchUnit) J(pc uint64, target uint32) {
	b.regFile.NextPC = pc&^0x0FFFFFFF | uint64(target)<<2
}

// JAL jumps like J and links the return address (pc + 8) into ra.
func (b *BranchUnit) JAL(pc uint64, target uint32) {
	b.regFile.WriteReg(RegRA, pc+8)
	b.J(pc, target)
}

// JR jumps to the address in rs.
func (b *BranchUnit) JR(rs uint8) {
	b.regFile.NextPC = b.regFile.ReadReg(rs)
}

// JALR jumps to the address in rs and links pc + 8 into rd.
func (b *BranchUnit) JALR(pc uint64, rd, rs uint8) {
	// Read target first (in case rd == rs)
	target := b.regFile.ReadReg(rs)
	b.regFile.WriteReg(rd, pc+8)
	b.regFile.NextPC = target
}

// Branch evaluates cond on rs and rt and, when it holds, transfers to the
// delay slot address plus the sign-extended word offset. Linking forms
// write pc + 8 to ra whether or not the branch is taken. Likely forms that
// are not taken nullify the delay slot. It reports whether the branch was
// taken.
func (b *BranchUnit) Branch(pc uint64, cond Cond, rs, rt uint8, offset uint16, likely, link bool) bool {
	taken := b.CheckCondition(cond, b.regFile.ReadReg(rs), b.regFile.ReadReg(rt))

	if link {
		b.regFile.WriteReg(RegRA, pc+8)
	}

	switch {
	case taken:
		b.regFile.NextPC = pc + 4 + signExtend16(offset)<<2
	case likely:
		b.regFile.PC = b.regFile.NextPC
		b.regFile.IncrementNextPC(4)
	}
	return taken
}

// CheckCondition evaluates a branch condition.
func (b *BranchUnit) CheckCondition(cond Cond, rs, rt uint64) bool {
	switch cond {
	case CondEQ:
		return rs == rt
	case CondNE:
		return rs != rt
	case CondLEZ:
		return int64(rs) <= 0
	case CondGTZ:
		return int64(rs) > 0
	case CondLTZ:
		return int64(rs) < 0
	case CondGEZ:
		return int64(rs) >= 0
	default:
		return false
	}
}
