package script_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.starlark.net/starlark"

	"github.com/sarchlab/vr4300/emu"
	"github.com/sarchlab/vr4300/script"
)

// program writes a short program at 0x80000000 and points PC at it:
// addiu t0, zero, 5; addiu t1, zero, 7; addu t2, t0, t1; syscall.
const program = `
base = 0x80000000
write32(base, 0x24080005)
write32(base + 4, 0x24090007)
write32(base + 8, 0x01095021)
write32(base + 12, 0x0000000C)
set_reg("pc", base)
`

func asInt(v starlark.Value) uint64 {
	i, ok := v.(starlark.Int)
	Expect(ok).To(BeTrue(), "not an int: %v", v)
	u, ok := i.Uint64()
	Expect(ok).To(BeTrue())
	return u
}

var _ = Describe("Runner", func() {
	var (
		e      *emu.Emulator
		out    *bytes.Buffer
		runner *script.Runner
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		out = &bytes.Buffer{}
		runner = script.NewRunner(e, script.WithOutput(out))
	})

	It("should step the machine and read registers", func() {
		globals, err := runner.Exec("step.star", program+`
n = step(2)
t0 = reg("t0")
t1 = reg("$9")
pc = reg("pc")
text = disasm(pc)
`)
		Expect(err).NotTo(HaveOccurred())

		Expect(asInt(globals["n"])).To(Equal(uint64(2)))
		Expect(asInt(globals["t0"])).To(Equal(uint64(5)))
		Expect(asInt(globals["t1"])).To(Equal(uint64(7)))
		Expect(asInt(globals["pc"])).To(Equal(uint64(0x80000008)))
		Expect(globals["text"]).To(Equal(starlark.String("ADDU t2, t0, t1")))
	})

	It("should run to a fault and report it", func() {
		globals, err := runner.Exec("run.star", program+`
n = run()
t2 = reg("t2")
stopped = halted()
f = fault()
kind = f.kind
at = f.pc
`)
		Expect(err).NotTo(HaveOccurred())

		Expect(asInt(globals["n"])).To(Equal(uint64(3)))
		Expect(asInt(globals["t2"])).To(Equal(uint64(12)))
		Expect(globals["stopped"]).To(Equal(starlark.True))
		Expect(globals["kind"]).To(Equal(starlark.String("Syscall")))
		Expect(asInt(globals["at"])).To(Equal(uint64(0x8000000C)))
		Expect(e.Halted()).To(BeTrue())
	})

	It("should stop a step loop at a fault", func() {
		globals, err := runner.Exec("loop.star", program+`
n = step(10)
`)
		Expect(err).NotTo(HaveOccurred())
		Expect(asInt(globals["n"])).To(Equal(uint64(3)))
	})

	It("should return None when nothing faulted", func() {
		globals, err := runner.Exec("none.star", `f = fault()`)
		Expect(err).NotTo(HaveOccurred())
		Expect(globals["f"]).To(Equal(starlark.None))
	})

	It("should write registers including HI and LO", func() {
		_, err := runner.Exec("regs.star", `
set_reg("s0", -1)
set_reg("hi", 3)
set_reg("lo", 4)
set_reg("zero", 9)
`)
		Expect(err).NotTo(HaveOccurred())

		Expect(e.RegFile().ReadReg(16)).To(Equal(^uint64(0)))
		Expect(e.RegFile().HI).To(Equal(uint64(3)))
		Expect(e.RegFile().LO).To(Equal(uint64(4)))
		Expect(e.RegFile().ReadReg(0)).To(BeZero())
	})

	It("should read CP0 by index and by name", func() {
		e.CP0().Write32(emu.CP0Status, 0x80000001)

		globals, err := runner.Exec("cp0.star", `
a = cp0(12)
b = cp0("Status")
`)
		Expect(err).NotTo(HaveOccurred())
		Expect(asInt(globals["a"])).To(Equal(uint64(0x80000001)))
		Expect(asInt(globals["b"])).To(Equal(uint64(0x80000001)))
	})

	It("should access memory big-endian at every width", func() {
		globals, err := runner.Exec("mem.star", `
write64(0x80000100, 0x0102030405060708)
b = read8(0x80000100)
h = read16(0xA0000102)
w = read32(0x80000104)
write16(0x80000100, 0xBEEF)
d = read64(0x80000100)
`)
		Expect(err).NotTo(HaveOccurred())

		Expect(asInt(globals["b"])).To(Equal(uint64(0x01)))
		Expect(asInt(globals["h"])).To(Equal(uint64(0x0304)))
		Expect(asInt(globals["w"])).To(Equal(uint64(0x05060708)))
		Expect(asInt(globals["d"])).To(Equal(uint64(0xBEEF030405060708)))
	})

	It("should print to the configured output", func() {
		_, err := runner.Exec("print.star", `print("hello", 42)`)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(Equal("hello 42\n"))
	})

	It("should reset the machine", func() {
		globals, err := runner.Exec("reset.star", program+`
run()
reset()
n = count()
pc = reg("pc")
f = fault()
`)
		Expect(err).NotTo(HaveOccurred())
		Expect(asInt(globals["n"])).To(BeZero())
		Expect(asInt(globals["pc"])).To(Equal(emu.ResetVector))
		Expect(globals["f"]).To(Equal(starlark.None))
	})

	Describe("errors", func() {
		It("should reject unknown registers", func() {
			_, err := runner.Exec("bad.star", `reg("x99")`)
			Expect(err).To(MatchError(ContainSubstring("unknown register")))
		})

		It("should reject values wider than the access", func() {
			_, err := runner.Exec("wide.star", `write8(0x80000000, 0x100)`)
			Expect(err).To(MatchError(ContainSubstring("out of range")))
		})

		It("should surface translation failures", func() {
			_, err := runner.Exec("xlat.star", `read32(0xFF00000000000000)`)
			Expect(err).To(HaveOccurred())
		})

		It("should report syntax errors", func() {
			_, err := runner.Exec("syntax.star", `step(`)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ExecFile", func() {
		It("should run a script from disk", func() {
			dir, err := os.MkdirTemp("", "script-test")
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func() { _ = os.RemoveAll(dir) })

			path := filepath.Join(dir, "test.star")
			Expect(os.WriteFile(path, []byte(program+"n = run()\n"), 0644)).To(Succeed())

			globals, err := runner.ExecFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(asInt(globals["n"])).To(Equal(uint64(3)))
		})

		It("should return error for non-existent file", func() {
			_, err := runner.ExecFile("/nonexistent/path/test.star")
			Expect(err).To(HaveOccurred())
		})
	})
})
