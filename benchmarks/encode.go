package benchmarks

// Register numbers used by the workloads.
const (
	regZero = 0
	regV0   = 2
	regT0   = 8
	regT1   = 9
	regT2   = 10
	regT3   = 11
	regT4   = 12
	regT5   = 13
	regT9   = 25
	regRA   = 31
)

// Instruction encoding helpers

func encodeR(funct, rs, rt, rd, sa uint8) uint32 {
	return uint32(rs)<<21 | uint32(rt)<<16 | uint32(rd)<<11 | uint32(sa)<<6 | uint32(funct)
}

func encodeI(op, rs, rt uint8, imm uint16) uint32 {
	return uint32(op)<<26 | uint32(rs)<<21 | uint32(rt)<<16 | uint32(imm)
}

// EncodeNOP encodes NOP (SLL zero, zero, 0).
func EncodeNOP() uint32 {
	return 0
}

// EncodeSYSCALL encodes SYSCALL. Workloads end with it.
func EncodeSYSCALL() uint32 {
	return 0x0000000C
}

// EncodeADDU encodes ADDU rd, rs, rt.
func EncodeADDU(rd, rs, rt uint8) uint32 {
	return encodeR(0x21, rs, rt, rd, 0)
}

// EncodeSLL encodes SLL rd, rt, sa.
func EncodeSLL(rd, rt, sa uint8) uint32 {
	return encodeR(0x00, 0, rt, rd, sa)
}

// EncodeDSLL32 encodes DSLL32 rd, rt, sa.
func EncodeDSLL32(rd, rt, sa uint8) uint32 {
	return encodeR(0x3C, 0, rt, rd, sa)
}

// EncodeDSRA32 encodes DSRA32 rd, rt, sa.
func EncodeDSRA32(rd, rt, sa uint8) uint32 {
	return encodeR(0x3F, 0, rt, rd, sa)
}

// EncodeJR encodes JR rs.
func EncodeJR(rs uint8) uint32 {
	return encodeR(0x08, rs, 0, 0, 0)
}

// EncodeMULT encodes MULT rs, rt.
func EncodeMULT(rs, rt uint8) uint32 {
	return encodeR(0x18, rs, rt, 0, 0)
}

// EncodeDIV encodes DIV rs, rt.
func EncodeDIV(rs, rt uint8) uint32 {
	return encodeR(0x1A, rs, rt, 0, 0)
}

// EncodeMFHI encodes MFHI rd.
func EncodeMFHI(rd uint8) uint32 {
	return encodeR(0x10, 0, 0, rd, 0)
}

// EncodeMFLO encodes MFLO rd.
func EncodeMFLO(rd uint8) uint32 {
	return encodeR(0x12, 0, 0, rd, 0)
}

// EncodeADDIU encodes ADDIU rt, rs, imm.
func EncodeADDIU(rt, rs uint8, imm int16) uint32 {
	return encodeI(0x09, rs, rt, uint16(imm))
}

// EncodeORI encodes ORI rt, rs, imm.
func EncodeORI(rt, rs uint8, imm uint16) uint32 {
	return encodeI(0x0D, rs, rt, imm)
}

// EncodeLUI encodes LUI rt, imm.
func EncodeLUI(rt uint8, imm uint16) uint32 {
	return encodeI(0x0F, 0, rt, imm)
}

// EncodeLW encodes LW rt, offset(base).
func EncodeLW(rt, base uint8, offset int16) uint32 {
	return encodeI(0x23, base, rt, uint16(offset))
}

// EncodeSW encodes SW rt, offset(base).
func EncodeSW(rt, base uint8, offset int16) uint32 {
	return encodeI(0x2B, base, rt, uint16(offset))
}

// EncodeBNE encodes BNE rs, rt, offset. The offset counts instructions
// from the delay slot.
func EncodeBNE(rs, rt uint8, offset int16) uint32 {
	return encodeI(0x05, rs, rt, uint16(offset))
}

// EncodeBGTZ encodes BGTZ rs, offset.
func EncodeBGTZ(rs uint8, offset int16) uint32 {
	return encodeI(0x07, rs, 0, uint16(offset))
}

// EncodeJAL encodes JAL to an absolute address in the same 256MB region.
func EncodeJAL(target uint64) uint32 {
	return 0x03<<26 | uint32(target>>2)&0x03FFFFFF
}
