package emu

// ALU implements VR4300 integer arithmetic, logic and shift operations.
// Trapping forms return ErrArithmeticOverflow and leave the destination
// untouched.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func signExtend16(v uint16) uint64 {
	return uint64(int64(int16(v)))
}

func add32Overflows(x, y, sum int32) bool {
	return (x >= 0) == (y >= 0) && (sum >= 0) != (x >= 0)
}

func sub32Overflows(x, y, diff int32) bool {
	return (x >= 0) != (y >= 0) && (diff >= 0) != (x >= 0)
}

func add64Overflows(x, y, sum int64) bool {
	return (x >= 0) == (y >= 0) && (sum >= 0) != (x >= 0)
}

func sub64Overflows(x, y, diff int64) bool {
	return (x >= 0) != (y >= 0) && (diff >= 0) != (x >= 0)
}

func boolToReg(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// ADD performs trapping 32-bit addition: rd = sext(rs + rt)
func (a *ALU) ADD(rd, rs, rt uint8) error {
	x, y := int32(a.regFile.ReadReg(rs)), int32(a.regFile.ReadReg(rt))
	sum := x + y
	if add32Overflows(x, y, sum) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rd, signExtend32(uint32(sum)))
	return nil
}

// ADDU performs 32-bit addition without trapping: rd = sext(rs + rt)
func (a *ALU) ADDU(rd, rs, rt uint8) {
	sum := uint32(a.regFile.ReadReg(rs)) + uint32(a.regFile.ReadReg(rt))
	a.regFile.WriteReg(rd, signExtend32(sum))
}

// SUB performs trapping 32-bit subtraction: rd = sext(rs - rt)
func (a *ALU) SUB(rd, rs, rt uint8) error {
	x, y := int32(a.regFile.ReadReg(rs)), int32(a.regFile.ReadReg(rt))
	diff := x - y
	if sub32Overflows(x, y, diff) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rd, signExtend32(uint32(diff)))
	return nil
}

// SUBU performs 32-bit subtraction without trapping: rd = sext(rs - rt)
func (a *ALU) SUBU(rd, rs, rt uint8) {
	diff := uint32(a.regFile.ReadReg(rs)) - uint32(a.regFile.ReadReg(rt))
	a.regFile.WriteReg(rd, signExtend32(diff))
}

// ADDI performs trapping 32-bit addition with immediate: rt = sext(rs + sext(imm))
func (a *ALU) ADDI(rt, rs uint8, imm uint16) error {
	x, y := int32(a.regFile.ReadReg(rs)), int32(int16(imm))
	sum := x + y
	if add32Overflows(x, y, sum) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rt, signExtend32(uint32(sum)))
	return nil
}

// ADDIU performs 32-bit addition with immediate without trapping.
func (a *ALU) ADDIU(rt, rs uint8, imm uint16) {
	sum := uint32(a.regFile.ReadReg(rs)) + uint32(int32(int16(imm)))
	a.regFile.WriteReg(rt, signExtend32(sum))
}

// DADD performs trapping 64-bit addition: rd = rs + rt
func (a *ALU) DADD(rd, rs, rt uint8) error {
	x, y := int64(a.regFile.ReadReg(rs)), int64(a.regFile.ReadReg(rt))
	sum := x + y
	if add64Overflows(x, y, sum) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rd, uint64(sum))
	return nil
}

// DADDU performs 64-bit addition without trapping.
func (a *ALU) DADDU(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)+a.regFile.ReadReg(rt))
}

// DSUB performs trapping 64-bit subtraction: rd = rs - rt
func (a *ALU) DSUB(rd, rs, rt uint8) error {
	x, y := int64(a.regFile.ReadReg(rs)), int64(a.regFile.ReadReg(rt))
	diff := x - y
	if sub64Overflows(x, y, diff) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rd, uint64(diff))
	return nil
}

// DSUBU performs 64-bit subtraction without trapping.
func (a *ALU) DSUBU(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)-a.regFile.ReadReg(rt))
}

// DADDI performs trapping 64-bit addition with immediate.
func (a *ALU) DADDI(rt, rs uint8, imm uint16) error {
	x, y := int64(a.regFile.ReadReg(rs)), int64(int16(imm))
	sum := x + y
	if add64Overflows(x, y, sum) {
		return ErrArithmeticOverflow
	}
	a.regFile.WriteReg(rt, uint64(sum))
	return nil
}

// DADDIU performs 64-bit addition with immediate without trapping.
func (a *ALU) DADDIU(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)+signExtend16(imm))
}

// AND performs bitwise AND: rd = rs & rt
func (a *ALU) AND(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)&a.regFile.ReadReg(rt))
}

// OR performs bitwise OR: rd = rs | rt
func (a *ALU) OR(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)|a.regFile.ReadReg(rt))
}

// XOR performs bitwise exclusive OR: rd = rs ^ rt
func (a *ALU) XOR(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)^a.regFile.ReadReg(rt))
}

// NOR performs bitwise NOR: rd = ^(rs | rt)
func (a *ALU) NOR(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, ^(a.regFile.ReadReg(rs) | a.regFile.ReadReg(rt)))
}

// ANDI performs bitwise AND with a zero-extended immediate.
func (a *ALU) ANDI(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)&uint64(imm))
}

// ORI performs bitwise OR with a zero-extended immediate.
func (a *ALU) ORI(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)|uint64(imm))
}

// XORI performs bitwise exclusive OR with a zero-extended immediate.
func (a *ALU) XORI(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)^uint64(imm))
}

// LUI loads the immediate into the upper halfword: rt = sext(imm << 16)
func (a *ALU) LUI(rt uint8, imm uint16) {
	a.regFile.WriteReg(rt, signExtend32(uint32(imm)<<16))
}

// SLT sets rd to 1 if rs < rt as signed values.
func (a *ALU) SLT(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, boolToReg(int64(a.regFile.ReadReg(rs)) < int64(a.regFile.ReadReg(rt))))
}

// SLTU sets rd to 1 if rs < rt as unsigned values.
func (a *ALU) SLTU(rd, rs, rt uint8) {
	a.regFile.WriteReg(rd, boolToReg(a.regFile.ReadReg(rs) < a.regFile.ReadReg(rt)))
}

// SLTI sets rt to 1 if rs < sext(imm) as signed values.
func (a *ALU) SLTI(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, boolToReg(int64(a.regFile.ReadReg(rs)) < int64(int16(imm))))
}

// SLTIU sets rt to 1 if rs < sext(imm) as unsigned values.
func (a *ALU) SLTIU(rt, rs uint8, imm uint16) {
	a.regFile.WriteReg(rt, boolToReg(a.regFile.ReadReg(rs) < signExtend16(imm)))
}

// SLL shifts the low word left: rd = sext(rt << sa)
func (a *ALU) SLL(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, signExtend32(uint32(a.regFile.ReadReg(rt))<<(sa&31)))
}

// SRL shifts the low word right logically: rd = sext(rt >> sa)
func (a *ALU) SRL(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, signExtend32(uint32(a.regFile.ReadReg(rt))>>(sa&31)))
}

// SRA shifts the low word right arithmetically: rd = sext(rt >> sa)
func (a *ALU) SRA(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, signExtend32(uint32(int32(uint32(a.regFile.ReadReg(rt)))>>(sa&31))))
}

// SLLV is SLL by the low five bits of rs.
func (a *ALU) SLLV(rd, rt, rs uint8) {
	a.SLL(rd, rt, uint8(a.regFile.ReadReg(rs)))
}

// SRLV is SRL by the low five bits of rs.
func (a *ALU) SRLV(rd, rt, rs uint8) {
	a.SRL(rd, rt, uint8(a.regFile.ReadReg(rs)))
}

// SRAV is SRA by the low five bits of rs.
func (a *ALU) SRAV(rd, rt, rs uint8) {
	a.SRA(rd, rt, uint8(a.regFile.ReadReg(rs)))
}

// DSLL shifts left: rd = rt << sa
func (a *ALU) DSLL(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rt)<<(sa&63))
}

// DSRL shifts right logically: rd = rt >> sa
func (a *ALU) DSRL(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rt)>>(sa&63))
}

// DSRA shifts right arithmetically: rd = rt >> sa
func (a *ALU) DSRA(rd, rt, sa uint8) {
	a.regFile.WriteReg(rd, uint64(int64(a.regFile.ReadReg(rt))>>(sa&63)))
}

// DSLL32 shifts left by sa + 32.
func (a *ALU) DSLL32(rd, rt, sa uint8) {
	a.DSLL(rd, rt, sa+32)
}

// DSRL32 shifts right logically by sa + 32.
func (a *ALU) DSRL32(rd, rt, sa uint8) {
	a.DSRL(rd, rt, sa+32)
}

// DSRA32 shifts right arithmetically by sa + 32.
func (a *ALU) DSRA32(rd, rt, sa uint8) {
	a.DSRA(rd, rt, sa+32)
}

// DSLLV is DSLL by the low six bits of rs.
func (a *ALU) DSLLV(rd, rt, rs uint8) {
	a.DSLL(rd, rt, uint8(a.regFile.ReadReg(rs)))
}

// DSRLV is DSRL by the low six bits of rs.
func (a *ALU) DSRLV(rd, rt, rs uint8) {
	a.DSRL(rd, rt, uint8(a.regFile.ReadReg(rs)))
}

// DSRAV is DSRA by the low six bits of rs.
func (a *ALU) DSRAV(rd, rt, rs uint8) {
	a.DSRA(rd, rt, uint8(a.regFile.ReadReg(rs)))
}
