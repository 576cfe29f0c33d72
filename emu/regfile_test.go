package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = emu.NewRegFile()
	})

	It("should start at the reset vector", func() {
		Expect(regFile.PC).To(Equal(uint64(0xBFC00000)))
		Expect(regFile.NextPC).To(Equal(uint64(0xBFC00004)))
		for i := uint8(0); i < 32; i++ {
			Expect(regFile.ReadReg(i)).To(BeZero())
		}
	})

	It("should read register 0 as zero after any write", func() {
		regFile.WriteReg(0, 0xDEADBEEF)
		Expect(regFile.ReadReg(0)).To(BeZero())
		Expect(regFile.GPR[0]).To(BeZero())
	})

	It("should read back writes to other registers", func() {
		regFile.WriteReg(31, 0xFFFFFFFF80001234)
		Expect(regFile.ReadReg(31)).To(Equal(uint64(0xFFFFFFFF80001234)))
	})

	It("should panic on an out-of-range index", func() {
		Expect(func() { regFile.ReadReg(32) }).To(Panic())
		Expect(func() { regFile.WriteReg(40, 1) }).To(Panic())
	})

	It("should wrap PC arithmetic", func() {
		regFile.PC = 0xFFFFFFFFFFFFFFFC
		regFile.NextPC = 0xFFFFFFFFFFFFFFFC
		regFile.IncrementPC(4)
		regFile.IncrementNextPC(8)
		Expect(regFile.PC).To(BeZero())
		Expect(regFile.NextPC).To(Equal(uint64(4)))
	})

	Describe("HLE state", func() {
		It("should seed the boot registers", func() {
			hle := emu.NewHLERegFile()
			Expect(hle.PC).To(Equal(uint64(0x80001000)))
			Expect(hle.NextPC).To(Equal(uint64(0x80001004)))
			Expect(hle.ReadReg(11)).To(Equal(uint64(0xFFFFFFFFA4000040)))
			Expect(hle.ReadReg(20)).To(Equal(uint64(1)))
			Expect(hle.ReadReg(22)).To(Equal(uint64(0x3F)))
			Expect(hle.ReadReg(29)).To(Equal(uint64(0xFFFFFFFFA4001FF0)))
		})
	})

	Describe("names", func() {
		DescribeTable("RegIndex",
			func(name string, idx uint8) {
				got, ok := emu.RegIndex(name)
				Expect(ok).To(BeTrue())
				Expect(got).To(Equal(idx))
			},
			Entry("zero", "zero", uint8(0)),
			Entry("sp", "sp", uint8(29)),
			Entry("ra", "ra", uint8(31)),
			Entry("fp alias", "fp", uint8(30)),
			Entry("r form", "r8", uint8(8)),
			Entry("dollar form", "$31", uint8(31)),
			Entry("bare number", "2", uint8(2)),
		)

		It("should reject unknown names", func() {
			_, ok := emu.RegIndex("r32")
			Expect(ok).To(BeFalse())

			_, err := regFile.ReadRegByName("x0")
			Expect(errors.Is(err, emu.ErrUnknownRegister)).To(BeTrue())
		})

		It("should read and write by name", func() {
			Expect(regFile.WriteRegByName("t0", 42)).To(Succeed())
			Expect(regFile.ReadReg(8)).To(Equal(uint64(42)))

			v, err := regFile.ReadRegByName("t0")
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(uint64(42)))
		})
	})
})
