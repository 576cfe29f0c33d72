package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/emu"
)

var _ = Describe("CP0", func() {
	var cp0 *emu.CP0

	BeforeEach(func() {
		cp0 = emu.NewCP0()
	})

	It("should use the fixed width table", func() {
		for _, idx := range []uint8{0, 1, 5, 6, 9, 11, 12, 13, 15, 16, 17, 18, 19, 26, 27, 28, 29} {
			Expect(cp0.Is32Bit(idx)).To(BeTrue(), "index %d", idx)
		}
		for _, idx := range []uint8{2, 3, 4, 7, 8, 10, 14, 20, 21, 22, 23, 24, 25, 30, 31} {
			Expect(cp0.Is32Bit(idx)).To(BeFalse(), "index %d", idx)
		}
	})

	It("should panic on a width mismatch", func() {
		Expect(func() { cp0.Read64(emu.CP0Status) }).To(Panic())
		Expect(func() { cp0.Write32(emu.CP0EPC, 0) }).To(Panic())
		Expect(func() { cp0.Read32(32) }).To(Panic())
	})

	It("should keep reserved registers as 64-bit scratch", func() {
		cp0.Write64(7, 0x0123456789ABCDEF)
		Expect(cp0.Read64(7)).To(Equal(uint64(0x0123456789ABCDEF)))
	})

	It("should seed the HLE boot values", func() {
		hle := emu.NewHLECP0()
		Expect(hle.Read32(emu.CP0Random)).To(Equal(uint32(0x1F)))
		Expect(hle.Read32(emu.CP0Status)).To(Equal(uint32(0x70400004)))
		Expect(hle.Read32(emu.CP0PRId)).To(Equal(uint32(0xB00)))
		Expect(hle.Read32(emu.CP0Config)).To(Equal(uint32(0x6E463)))
	})

	Describe("moves", func() {
		It("should sign-extend 32-bit reads", func() {
			cp0.Write32(emu.CP0Status, 0x80000001)
			Expect(cp0.MoveFrom(emu.CP0Status)).To(Equal(uint64(0xFFFFFFFF80000001)))
		})

		It("should sign-extend MTC0 into 64-bit registers", func() {
			cp0.MoveTo(emu.CP0EPC, 0x0000000080001000)
			Expect(cp0.Read64(emu.CP0EPC)).To(Equal(uint64(0xFFFFFFFF80001000)))
		})

		It("should move full doublewords with DMTC0 and DMFC0", func() {
			cp0.DoubleMoveTo(emu.CP0EPC, 0x0000000180001000)
			Expect(cp0.DoubleMoveFrom(emu.CP0EPC)).To(Equal(uint64(0x0000000180001000)))
			Expect(cp0.MoveFrom(emu.CP0EPC)).To(Equal(uint64(0xFFFFFFFF80001000)))
		})
	})

	Describe("exceptions", func() {
		It("should record EPC and cause and return the general vector", func() {
			vector := cp0.EnterException(emu.ExcOv, 0x80000010, false, 0, false)

			Expect(vector).To(Equal(emu.GeneralVector))
			Expect(cp0.Read64(emu.CP0EPC)).To(Equal(uint64(0x80000010)))
			Expect(cp0.Read32(emu.CP0Cause)).To(Equal(uint32(12 << 2)))
			Expect(cp0.Read32(emu.CP0Status) & emu.StatusEXL).NotTo(BeZero())
		})

		It("should set BD and BadVAddr for a delay slot address error", func() {
			cp0.EnterException(emu.ExcAdES, 0x80000020, true, 0x80000101, true)

			Expect(cp0.Read32(emu.CP0Cause) & emu.CauseBD).NotTo(BeZero())
			Expect(cp0.Read64(emu.CP0BadVAddr)).To(Equal(uint64(0x80000101)))
		})

		It("should use the bootstrap vector when BEV is set", func() {
			cp0.Write32(emu.CP0Status, emu.StatusBEV)
			Expect(cp0.EnterException(emu.ExcSys, 0x80000000, false, 0, false)).
				To(Equal(emu.BootstrapVector))
		})

		It("should keep EPC for a nested exception", func() {
			cp0.EnterException(emu.ExcSys, 0x80000010, false, 0, false)
			cp0.EnterException(emu.ExcBp, 0x80000180, false, 0, false)

			Expect(cp0.Read64(emu.CP0EPC)).To(Equal(uint64(0x80000010)))
			Expect(cp0.Read32(emu.CP0Cause) >> 2 & 0x1F).To(Equal(uint32(emu.ExcBp)))
		})

		It("should return to EPC and clear EXL", func() {
			cp0.EnterException(emu.ExcSys, 0x80000010, false, 0, false)

			Expect(cp0.ReturnFromException()).To(Equal(uint64(0x80000010)))
			Expect(cp0.Read32(emu.CP0Status) & emu.StatusEXL).To(BeZero())
		})

		It("should prefer ErrorEPC when ERL is set", func() {
			cp0.Write32(emu.CP0Status, emu.StatusERL|emu.StatusEXL)
			cp0.Write64(emu.CP0ErrorEPC, 0xBFC00000)
			cp0.Write64(emu.CP0EPC, 0x80000000)

			Expect(cp0.ReturnFromException()).To(Equal(uint64(0xBFC00000)))
			Expect(cp0.Read32(emu.CP0Status)).To(Equal(emu.StatusEXL))
		})
	})
})
