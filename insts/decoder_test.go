package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("SPECIAL", func() {
		// ADD v0, a0, a1 -> 0x00851020
		It("should decode ADD v0, a0, a1", func() {
			inst := decoder.Decode(0x00851020)

			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rs).To(Equal(uint8(4)))
			Expect(inst.Rt).To(Equal(uint8(5)))
			Expect(inst.Rd).To(Equal(uint8(2)))
		})

		// SLL t0, t1, 4 -> 0x00094100
		It("should decode SLL t0, t1, 4", func() {
			inst := decoder.Decode(0x00094100)

			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.Rt).To(Equal(uint8(9)))
			Expect(inst.Rd).To(Equal(uint8(8)))
			Expect(inst.Sa).To(Equal(uint8(4)))
		})

		It("should decode the zero word as SLL zero, zero, 0", func() {
			inst := decoder.Decode(0x00000000)

			Expect(inst.Op).To(Equal(insts.OpSLL))
			Expect(inst.Rd).To(BeZero())
		})

		// DSRA32 t0, t1, 1 -> 0x0009407F
		It("should decode DSRA32", func() {
			inst := decoder.Decode(0x0009407F)

			Expect(inst.Op).To(Equal(insts.OpDSRA32))
			Expect(inst.Sa).To(Equal(uint8(1)))
		})

		It("should reject unassigned function codes", func() {
			inst := decoder.Decode(0x00000001)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
			Expect(inst.Raw).To(Equal(uint32(0x00000001)))
		})
	})

	Describe("REGIMM", func() {
		// BLTZAL v1, 16 -> 0x04700010
		It("should decode BLTZAL", func() {
			inst := decoder.Decode(0x04700010)

			Expect(inst.Op).To(Equal(insts.OpBLTZAL))
			Expect(inst.Format).To(Equal(insts.FormatRegImm))
			Expect(inst.Rs).To(Equal(uint8(3)))
			Expect(inst.Imm).To(Equal(uint16(0x10)))
		})

		// BGEZL v1, 4 -> 0x04630004
		It("should decode BGEZL", func() {
			inst := decoder.Decode(0x04630004)

			Expect(inst.Op).To(Equal(insts.OpBGEZL))
			Expect(inst.Op.IsLikely()).To(BeTrue())
			Expect(inst.Op.IsBranch()).To(BeTrue())
		})

		It("should reject unassigned rt selectors", func() {
			Expect(decoder.Decode(0x04040000).Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("Primary", func() {
		// ADDIU t0, t0, 42 -> 0x2508002A
		It("should decode ADDIU t0, t0, 42", func() {
			inst := decoder.Decode(0x2508002A)

			Expect(inst.Op).To(Equal(insts.OpADDIU))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rs).To(Equal(uint8(8)))
			Expect(inst.Rt).To(Equal(uint8(8)))
			Expect(inst.Imm).To(Equal(uint16(42)))
		})

		// BEQ at, v0, -1 -> 0x1022FFFF
		It("should sign-extend branch offsets", func() {
			inst := decoder.Decode(0x1022FFFF)

			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.SignExtImm()).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
			Expect(inst.ZeroExtImm()).To(Equal(uint64(0xFFFF)))
		})

		// J 0x400 -> 0x08000100
		It("should decode J and JAL targets", func() {
			j := decoder.Decode(0x08000100)
			Expect(j.Op).To(Equal(insts.OpJ))
			Expect(j.Format).To(Equal(insts.FormatJ))
			Expect(j.Target).To(Equal(uint32(0x100)))

			jal := decoder.Decode(0x0FFFFFFF)
			Expect(jal.Op).To(Equal(insts.OpJAL))
			Expect(jal.Target).To(Equal(uint32(0x03FFFFFF)))
		})

		DescribeTable("loads and stores",
			func(word uint32, op insts.Op) {
				Expect(decoder.Decode(word).Op).To(Equal(op))
			},
			Entry("LW t0, 16(sp)", uint32(0x8FA80010), insts.OpLW),
			Entry("SD ra, 8(sp)", uint32(0xFFBF0008), insts.OpSD),
			Entry("LWL", uint32(0x88A80000), insts.OpLWL),
			Entry("LWR", uint32(0x98A80000), insts.OpLWR),
			Entry("LDL", uint32(0x68A80000), insts.OpLDL),
			Entry("LDR", uint32(0x6CA80000), insts.OpLDR),
			Entry("SWL", uint32(0xA8A80000), insts.OpSWL),
			Entry("SWR", uint32(0xB8A80000), insts.OpSWR),
			Entry("SDL", uint32(0xB0A80000), insts.OpSDL),
			Entry("SDR", uint32(0xB4A80000), insts.OpSDR),
			Entry("LL", uint32(0xC0A80000), insts.OpLL),
			Entry("LLD", uint32(0xD0A80000), insts.OpLLD),
			Entry("SC", uint32(0xE0A80000), insts.OpSC),
			Entry("SCD", uint32(0xF0A80000), insts.OpSCD),
			Entry("CACHE", uint32(0xBCA80000), insts.OpCACHE),
		)

		It("should reject coprocessor 1 and unassigned opcodes", func() {
			Expect(decoder.Decode(0x44000000).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0xEC000000).Op).To(Equal(insts.OpUnknown))
		})
	})

	Describe("COP0", func() {
		DescribeTable("moves",
			func(word uint32, op insts.Op) {
				inst := decoder.Decode(word)
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Format).To(Equal(insts.FormatCop0))
				Expect(inst.Rt).To(Equal(uint8(8)))
				Expect(inst.Rd).To(Equal(uint8(12)))
			},
			Entry("MFC0 t0, $12", uint32(0x40086000), insts.OpMFC0),
			Entry("DMFC0 t0, $12", uint32(0x40286000), insts.OpDMFC0),
			Entry("MTC0 t0, $12", uint32(0x40886000), insts.OpMTC0),
			Entry("DMTC0 t0, $12", uint32(0x40A86000), insts.OpDMTC0),
		)

		It("should decode ERET", func() {
			Expect(decoder.Decode(0x42000018).Op).To(Equal(insts.OpERET))
		})

		It("should not decode TLB operations", func() {
			Expect(decoder.Decode(0x42000002).Op).To(Equal(insts.OpUnknown))
			Expect(decoder.Decode(0x42000001).Op).To(Equal(insts.OpUnknown))
		})
	})
})
