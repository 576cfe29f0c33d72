package emu

import "math/bits"

// MulDivUnit implements multiply and divide into the HI/LO pair.
// Division by zero does not trap; the divide methods report it so the
// caller can log it.
type MulDivUnit struct {
	regFile *RegFile
}

// NewMulDivUnit creates a new MulDivUnit connected to the given register
// file.
func NewMulDivUnit(regFile *RegFile) *MulDivUnit {
	return &MulDivUnit{regFile: regFile}
}

func (m *MulDivUnit) set32(hi, lo uint32) {
	m.regFile.HI = signExtend32(hi)
	m.regFile.LO = signExtend32(lo)
}

// MULT multiplies the low words as signed values.
func (m *MulDivUnit) MULT(rs, rt uint8) {
	p := int64(int32(m.regFile.ReadReg(rs))) * int64(int32(m.regFile.ReadReg(rt)))
	m.set32(uint32(uint64(p)>>32), uint32(p))
}

// MULTU multiplies the low words as unsigned values.
func (m *MulDivUnit) MULTU(rs, rt uint8) {
	p := uint64(uint32(m.regFile.ReadReg(rs))) * uint64(uint32(m.regFile.ReadReg(rt)))
	m.set32(uint32(p>>32), uint32(p))
}

// DMULT multiplies 64-bit signed values into the 128-bit HI:LO.
func (m *MulDivUnit) DMULT(rs, rt uint8) {
	x, y := m.regFile.ReadReg(rs), m.regFile.ReadReg(rt)
	hi, lo := bits.Mul64(x, y)
	if int64(x) < 0 {
		hi -= y
	}
	if int64(y) < 0 {
		hi -= x
	}
	m.regFile.HI, m.regFile.LO = hi, lo
}

// DMULTU multiplies 64-bit unsigned values into the 128-bit HI:LO.
func (m *MulDivUnit) DMULTU(rs, rt uint8) {
	m.regFile.HI, m.regFile.LO = bits.Mul64(m.regFile.ReadReg(rs), m.regFile.ReadReg(rt))
}

// DIV divides the low words as signed values: LO = quotient, HI = remainder.
// A zero divisor yields LO = -1 for a non-negative dividend, +1 for a
// negative one, and HI = dividend. It reports whether the divisor was zero.
func (m *MulDivUnit) DIV(rs, rt uint8) bool {
	n, d := int32(m.regFile.ReadReg(rs)), int32(m.regFile.ReadReg(rt))
	if d == 0 {
		lo := int32(-1)
		if n < 0 {
			lo = 1
		}
		m.set32(uint32(n), uint32(lo))
		return true
	}
	if n == -1<<31 && d == -1 {
		m.set32(0, uint32(n))
		return false
	}
	m.set32(uint32(n%d), uint32(n/d))
	return false
}

// DIVU divides the low words as unsigned values.
func (m *MulDivUnit) DIVU(rs, rt uint8) bool {
	n, d := uint32(m.regFile.ReadReg(rs)), uint32(m.regFile.ReadReg(rt))
	if d == 0 {
		m.set32(n, 0xFFFFFFFF)
		return true
	}
	m.set32(n%d, n/d)
	return false
}

// DDIV divides 64-bit signed values.
func (m *MulDivUnit) DDIV(rs, rt uint8) bool {
	n, d := int64(m.regFile.ReadReg(rs)), int64(m.regFile.ReadReg(rt))
	if d == 0 {
		lo := int64(-1)
		if n < 0 {
			lo = 1
		}
		m.regFile.HI, m.regFile.LO = uint64(n), uint64(lo)
		return true
	}
	if n == -1<<63 && d == -1 {
		m.regFile.HI, m.regFile.LO = 0, uint64(n)
		return false
	}
	m.regFile.HI, m.regFile.LO = uint64(n%d), uint64(n/d)
	return false
}

// DDIVU divides 64-bit unsigned values.
func (m *MulDivUnit) DDIVU(rs, rt uint8) bool {
	n, d := m.regFile.ReadReg(rs), m.regFile.ReadReg(rt)
	if d == 0 {
		m.regFile.HI, m.regFile.LO = n, ^uint64(0)
		return true
	}
	m.regFile.HI, m.regFile.LO = n%d, n/d
	return false
}

// MFHI copies HI to rd.
func (m *MulDivUnit) MFHI(rd uint8) {
	m.regFile.WriteReg(rd, m.regFile.HI)
}

// MFLO copies LO to rd.
func (m *MulDivUnit) MFLO(rd uint8) {
	m.regFile.WriteReg(rd, m.regFile.LO)
}

// MTHI copies rs to HI.
func (m *MulDivUnit) MTHI(rs uint8) {
	m.regFile.HI = m.regFile.ReadReg(rs)
}

// MTLO copies rs to LO.
func (m *MulDivUnit) MTLO(rs uint8) {
	m.regFile.LO = m.regFile.ReadReg(rs)
}
