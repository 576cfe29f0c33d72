package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/emu"
)

var _ = Describe("ALU", func() {
	var (
		regFile *emu.RegFile
		alu     *emu.ALU
	)

	BeforeEach(func() {
		regFile = emu.NewRegFile()
		alu = emu.NewALU(regFile)
	})

	Describe("32-bit add and subtract", func() {
		It("should trap ADD on signed overflow and leave rd alone", func() {
			regFile.WriteReg(t0, 0x7FFFFFFF)
			regFile.WriteReg(t1, 1)
			regFile.WriteReg(t2, 0x55)

			Expect(alu.ADD(t2, t0, t1)).To(MatchError(emu.ErrArithmeticOverflow))
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x55)))
		})

		It("should wrap ADDU and sign-extend the result", func() {
			regFile.WriteReg(t0, 0x7FFFFFFF)
			regFile.WriteReg(t1, 1)

			alu.ADDU(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("should add without overflow", func() {
			regFile.WriteReg(t0, 0xFFFFFFFFFFFFFFFF) // -1
			regFile.WriteReg(t1, 5)

			Expect(alu.ADD(t2, t0, t1)).To(Succeed())
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(4)))
		})

		It("should trap SUB on signed overflow", func() {
			regFile.WriteReg(t0, 0xFFFFFFFF80000000)
			regFile.WriteReg(t1, 1)

			Expect(alu.SUB(t2, t0, t1)).To(MatchError(emu.ErrArithmeticOverflow))
			alu.SUBU(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x7FFFFFFF)))
		})

		It("should trap ADDI and sign-extend its immediate", func() {
			regFile.WriteReg(t0, 0xFFFFFFFF80000000)
			Expect(alu.ADDI(t1, t0, 0xFFFF)).To(MatchError(emu.ErrArithmeticOverflow))

			regFile.WriteReg(t0, 10)
			Expect(alu.ADDI(t1, t0, 0xFFFF)).To(Succeed())
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(9)))
		})

		It("should wrap ADDIU", func() {
			alu.ADDIU(t1, zero, 0x8000)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFFFFFF8000)))
		})
	})

	Describe("64-bit add and subtract", func() {
		It("should trap DADD on signed overflow", func() {
			regFile.WriteReg(t0, 0x7FFFFFFFFFFFFFFF)
			regFile.WriteReg(t1, 1)

			Expect(alu.DADD(t2, t0, t1)).To(MatchError(emu.ErrArithmeticOverflow))
			Expect(regFile.ReadReg(t2)).To(BeZero())

			alu.DADDU(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x8000000000000000)))
		})

		It("should trap DSUB on signed overflow", func() {
			regFile.WriteReg(t0, 0x8000000000000000)
			regFile.WriteReg(t1, 1)

			Expect(alu.DSUB(t2, t0, t1)).To(MatchError(emu.ErrArithmeticOverflow))
			alu.DSUBU(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x7FFFFFFFFFFFFFFF)))
		})

		It("should sign-extend the DADDIU immediate", func() {
			regFile.WriteReg(t0, 0x100000000)
			alu.DADDIU(t1, t0, 0xFFFF)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFF)))

			Expect(alu.DADDI(t1, t0, 1)).To(Succeed())
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0x100000001)))
		})
	})

	Describe("logic", func() {
		It("should zero-extend ANDI, ORI and XORI immediates", func() {
			regFile.WriteReg(t0, 0xFFFFFFFFFFFFFFFF)

			alu.ANDI(t1, t0, 0x8000)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0x8000)))

			alu.ORI(t1, zero, 0x8000)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0x8000)))

			alu.XORI(t1, t0, 0xFFFF)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFFFFFF0000)))
		})

		It("should compute register logic", func() {
			regFile.WriteReg(t0, 0xF0F0)
			regFile.WriteReg(t1, 0xFF00)

			alu.AND(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0xF000)))
			alu.OR(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0xFFF0)))
			alu.XOR(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x0FF0)))
			alu.NOR(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(^uint64(0xFFF0)))
		})

		It("should sign-extend LUI", func() {
			alu.LUI(t0, 0x8000)
			Expect(regFile.ReadReg(t0)).To(Equal(uint64(0xFFFFFFFF80000000)))
			alu.LUI(t0, 0x1234)
			Expect(regFile.ReadReg(t0)).To(Equal(uint64(0x12340000)))
		})
	})

	Describe("set on less than", func() {
		It("should compare signed and unsigned", func() {
			regFile.WriteReg(t0, 0xFFFFFFFFFFFFFFFF)
			regFile.WriteReg(t1, 1)

			alu.SLT(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(1)))
			alu.SLTU(t2, t0, t1)
			Expect(regFile.ReadReg(t2)).To(BeZero())
		})

		It("should sign-extend the SLTIU immediate before comparing unsigned", func() {
			regFile.WriteReg(t0, 0xFFFFFFFFFFFF0000)

			alu.SLTIU(t1, t0, 0xFFFF)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(1)))

			alu.SLTI(t1, t0, 0xFFFF)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(1)))

			alu.SLTI(t1, zero, 0xFFFF)
			Expect(regFile.ReadReg(t1)).To(BeZero())
		})
	})

	Describe("shifts", func() {
		It("should sign-extend 32-bit shift results", func() {
			regFile.WriteReg(t0, 0x40000000)
			alu.SLL(t1, t0, 1)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFF80000000)))

			regFile.WriteReg(t0, 0xFFFFFFFF80000000)
			alu.SRL(t1, t0, 4)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0x08000000)))
			alu.SRA(t1, t0, 4)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFFF8000000)))
		})

		It("should ignore the upper word of rt in SRA and SRAV", func() {
			regFile.WriteReg(t0, 0x0000000100000000)
			alu.SRA(t1, t0, 1)
			Expect(regFile.ReadReg(t1)).To(BeZero())

			regFile.WriteReg(t0, 0x00000000F0000000)
			regFile.WriteReg(t2, 36)
			alu.SRAV(t1, t0, t2)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0xFFFFFFFFFF000000)))
		})

		It("should use the low five bits for variable 32-bit shifts", func() {
			regFile.WriteReg(t0, 1)
			regFile.WriteReg(t2, 33)
			alu.SLLV(t1, t0, t2)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(2)))
		})

		It("should shift doublewords", func() {
			regFile.WriteReg(t0, 1)
			alu.DSLL32(t1, t0, 31)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(0x8000000000000000)))

			alu.DSRA32(t2, t1, 0)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0xFFFFFFFF80000000)))
			alu.DSRL32(t2, t1, 0)
			Expect(regFile.ReadReg(t2)).To(Equal(uint64(0x80000000)))

			regFile.WriteReg(t2, 65)
			alu.DSLLV(t1, t0, t2)
			Expect(regFile.ReadReg(t1)).To(Equal(uint64(2)))
		})
	})
})
