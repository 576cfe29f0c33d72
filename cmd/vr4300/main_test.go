package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// testProgram is addiu t0, zero, 7; addiu t0, t0, 1; syscall.
var testProgram = []uint32{0x24080007, 0x25080001, 0x0000000C}

// writeROM writes a z64 cartridge whose boot segment holds words.
func writeROM(path string, words []uint32) {
	rom := make([]byte, 0x2000)
	binary.BigEndian.PutUint32(rom[0x00:], 0x80371240)
	binary.BigEndian.PutUint32(rom[0x08:], 0x80001000)
	copy(rom[0x20:0x34], "CLI TEST            ")
	for i, w := range words {
		binary.BigEndian.PutUint32(rom[0x1000+4*i:], w)
	}
	Expect(os.WriteFile(path, rom, 0644)).To(Succeed())
}

// writeELF writes a big-endian ELF32 MIPS executable with one segment.
func writeELF(path string, vaddr uint32, words []uint32) {
	be := binary.BigEndian
	code := make([]byte, 4*len(words))
	for i, w := range words {
		be.PutUint32(code[4*i:], w)
	}

	header := make([]byte, 52+32)
	copy(header, []byte{0x7f, 'E', 'L', 'F', 1, 2, 1})
	be.PutUint16(header[16:], 2) // executable
	be.PutUint16(header[18:], 8) // MIPS
	be.PutUint32(header[20:], 1) // version
	be.PutUint32(header[24:], vaddr)
	be.PutUint32(header[28:], 52) // phoff
	be.PutUint16(header[40:], 52) // ehsize
	be.PutUint16(header[42:], 32) // phentsize
	be.PutUint16(header[44:], 1)  // phnum
	be.PutUint16(header[46:], 40) // shentsize

	ph := header[52:]
	be.PutUint32(ph[0:], 1) // PT_LOAD
	be.PutUint32(ph[4:], 84)
	be.PutUint32(ph[8:], vaddr)
	be.PutUint32(ph[12:], vaddr)
	be.PutUint32(ph[16:], uint32(len(code)))
	be.PutUint32(ph[20:], uint32(len(code)))
	be.PutUint32(ph[24:], 5)

	Expect(os.WriteFile(path, append(header, code...), 0644)).To(Succeed())
}

var _ = Describe("vr4300", func() {
	var (
		tempDir        string
		stdout, stderr *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "vr4300-cli-test")
		Expect(err).NotTo(HaveOccurred())

		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	It("should print usage without a program", func() {
		Expect(run(nil, stdout, stderr)).To(Equal(exitError))
		Expect(stderr.String()).To(ContainSubstring("Usage: vr4300"))
	})

	It("should boot a cartridge with HLE and run to SYSCALL", func() {
		rom := filepath.Join(tempDir, "test.z64")
		writeROM(rom, testProgram)

		Expect(run([]string{"-hle", rom}, stdout, stderr)).To(Equal(exitOK))
		Expect(stdout.String()).To(ContainSubstring("Instructions executed: 2"))
		Expect(stdout.String()).To(ContainSubstring("Syscall"))
		Expect(stderr.String()).To(ContainSubstring("CLI TEST"))
	})

	It("should stop at the instruction limit", func() {
		rom := filepath.Join(tempDir, "test.z64")
		writeROM(rom, testProgram)

		Expect(run([]string{"-hle", "-max", "1", rom}, stdout, stderr)).To(Equal(exitOK))
		Expect(stdout.String()).To(ContainSubstring("instruction limit reached"))
	})

	It("should run a MIPS ELF program", func() {
		elf := filepath.Join(tempDir, "test.elf")
		writeELF(elf, 0x80000400, testProgram)

		Expect(run([]string{elf}, stdout, stderr)).To(Equal(exitOK))
		Expect(stdout.String()).To(ContainSubstring("Instructions executed: 2"))
		Expect(stdout.String()).To(ContainSubstring("PC: 0xffffffff80000408"))
	})

	It("should exit with the fault code on an illegal instruction", func() {
		elf := filepath.Join(tempDir, "bad.elf")
		writeELF(elf, 0x80000400, []uint32{0xEC000000})

		Expect(run([]string{elf}, stdout, stderr)).To(Equal(exitFault))
		Expect(stdout.String()).To(ContainSubstring("IllegalInstruction"))
	})

	It("should drive the machine from a script", func() {
		elf := filepath.Join(tempDir, "test.elf")
		writeELF(elf, 0x80000400, testProgram)
		star := filepath.Join(tempDir, "test.star")
		Expect(os.WriteFile(star, []byte(`step(2)
print("t0 =", reg("t0"))
`), 0644)).To(Succeed())

		Expect(run([]string{"-script", star, elf}, stdout, stderr)).To(Equal(exitOK))
		Expect(stdout.String()).To(ContainSubstring("t0 = 8"))
		Expect(stdout.String()).To(ContainSubstring("Instructions executed: 2"))
	})

	It("should apply the configuration file", func() {
		rom := filepath.Join(tempDir, "test.z64")
		writeROM(rom, testProgram)
		cfg := filepath.Join(tempDir, "vr4300.json")
		Expect(os.WriteFile(cfg, []byte(`{"boot": "hle", "max_instructions": 1}`), 0644)).To(Succeed())

		Expect(run([]string{"-config", cfg, rom}, stdout, stderr)).To(Equal(exitOK))
		Expect(stdout.String()).To(ContainSubstring("Instructions executed: 1"))
	})

	It("should reject an invalid configuration", func() {
		rom := filepath.Join(tempDir, "test.z64")
		writeROM(rom, testProgram)
		cfg := filepath.Join(tempDir, "bad.json")
		Expect(os.WriteFile(cfg, []byte(`{"fault_policy": "ignore"}`), 0644)).To(Succeed())

		Expect(run([]string{"-config", cfg, rom}, stdout, stderr)).To(Equal(exitError))
		Expect(stderr.String()).To(ContainSubstring("fault_policy"))
	})

	It("should reject an unreadable program", func() {
		Expect(run([]string{filepath.Join(tempDir, "missing.z64")}, stdout, stderr)).To(Equal(exitError))
		Expect(stderr.String()).To(ContainSubstring("Error loading program"))
	})
})
