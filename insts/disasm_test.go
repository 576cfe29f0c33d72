package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vr4300/insts"
)

var _ = Describe("Disassembly", func() {
	decoder := insts.NewDecoder()

	DescribeTable("String",
		func(word uint32, text string) {
			Expect(decoder.Decode(word).String()).To(Equal(text))
		},
		Entry("nop", uint32(0x00000000), "NOP"),
		Entry("shift", uint32(0x00094100), "SLL t0, t1, 4"),
		Entry("register ALU", uint32(0x00851020), "ADD v0, a0, a1"),
		Entry("immediate ALU", uint32(0x2508002A), "ADDIU t0, t0, 42"),
		Entry("logical immediate", uint32(0x3128FFFF), "ANDI t0, t1, 0xffff"),
		Entry("upper immediate", uint32(0x3C088000), "LUI t0, 0x8000"),
		Entry("load", uint32(0x8FA80010), "LW t0, 16(sp)"),
		Entry("store", uint32(0xFFBF0008), "SD ra, 8(sp)"),
		Entry("branch", uint32(0x1022FFFF), "BEQ at, v0, -1"),
		Entry("regimm", uint32(0x04700010), "BLTZAL v1, 16"),
		Entry("jump", uint32(0x08000100), "J 0x0000400"),
		Entry("jump register", uint32(0x03E00008), "JR ra"),
		Entry("cop0 move", uint32(0x40086000), "MFC0 t0, $12"),
		Entry("eret", uint32(0x42000018), "ERET"),
		Entry("unknown", uint32(0xEC000000), "UNKNOWN 0xec000000"),
	)
})
