package emu

import "fmt"

// CP0 register indices.
const (
	CP0Index    uint8 = 0
	CP0Random   uint8 = 1
	CP0EntryLo0 uint8 = 2
	CP0EntryLo1 uint8 = 3
	CP0Context  uint8 = 4
	CP0PageMask uint8 = 5
	CP0Wired    uint8 = 6
	CP0BadVAddr uint8 = 8
	CP0Count    uint8 = 9
	CP0EntryHi  uint8 = 10
	CP0Compare  uint8 = 11
	CP0Status   uint8 = 12
	CP0Cause    uint8 = 13
	CP0EPC      uint8 = 14
	CP0PRId     uint8 = 15
	CP0Config   uint8 = 16
	CP0LLAddr   uint8 = 17
	CP0WatchLo  uint8 = 18
	CP0WatchHi  uint8 = 19
	CP0XContext uint8 = 20
	CP0PErr     uint8 = 26
	CP0CacheErr uint8 = 27
	CP0TagLo    uint8 = 28
	CP0TagHi    uint8 = 29
	CP0ErrorEPC uint8 = 30
)

// Status register bits.
const (
	StatusIE  uint32 = 1 << 0
	StatusEXL uint32 = 1 << 1
	StatusERL uint32 = 1 << 2
	StatusBEV uint32 = 1 << 22
)

// Cause register fields.
const (
	causeExcCodeShift        = 2
	causeExcCodeMask  uint32 = 0x1F << causeExcCodeShift
	CauseBD           uint32 = 1 << 31
)

// Exception vectors.
const (
	GeneralVector   uint64 = 0x80000180
	BootstrapVector uint64 = 0xBFC00380
)

// CP0RegNames are the names of the CP0 registers. Reserved slots are named
// by index.
var CP0RegNames = [32]string{
	"Index", "Random", "EntryLo0", "EntryLo1",
	"Context", "PageMask", "Wired", "Reserved7",
	"BadVAddr", "Count", "EntryHi", "Compare",
	"Status", "Cause", "EPC", "PRId",
	"Config", "LLAddr", "WatchLo", "WatchHi",
	"XContext", "Reserved21", "Reserved22", "Reserved23",
	"Reserved24", "Reserved25", "PErr", "CacheErr",
	"TagLo", "TagHi", "ErrorEPC", "Reserved31",
}

// cp0Is32Bit is the fixed width of each CP0 slot. Reserved slots are
// 64-bit scratch registers.
var cp0Is32Bit = [32]bool{
	CP0Index: true, CP0Random: true, CP0PageMask: true, CP0Wired: true,
	CP0Count: true, CP0Compare: true, CP0Status: true, CP0Cause: true,
	CP0PRId: true, CP0Config: true, CP0LLAddr: true, CP0WatchLo: true,
	CP0WatchHi: true, CP0PErr: true, CP0CacheErr: true, CP0TagLo: true,
	CP0TagHi: true,
}

// CP0 is the system control coprocessor register file. Each slot has a
// fixed width, and accessing a slot at the other width is a programming
// error.
type CP0 struct {
	regs [32]uint64
}

// NewCP0 creates a CP0 register file with every register cleared.
func NewCP0() *CP0 {
	return &CP0{}
}

// NewHLECP0 creates a CP0 register file in the state the boot code leaves
// behind.
func NewHLECP0() *CP0 {
	c := NewCP0()
	c.Write32(CP0Random, 0x0000001F)
	c.Write32(CP0Status, 0x70400004)
	c.Write32(CP0PRId, 0x00000B00)
	c.Write32(CP0Config, 0x0006E463)
	return c
}

// Is32Bit reports whether the register at index is 32 bits wide.
func (c *CP0) Is32Bit(index uint8) bool {
	return cp0Is32Bit[c.check(index)]
}

func (c *CP0) check(index uint8) uint8 {
	if index > 31 {
		panic(fmt.Sprintf("emu: cp0 index %d out of range", index))
	}
	return index
}

// Read32 reads a 32-bit register.
func (c *CP0) Read32(index uint8) uint32 {
	if !c.Is32Bit(index) {
		panic(fmt.Sprintf("emu: 32-bit read of 64-bit cp0 register %s", CP0RegNames[index]))
	}
	return uint32(c.regs[index])
}

// Write32 writes a 32-bit register.
func (c *CP0) Write32(index uint8, value uint32) {
	if !c.Is32Bit(index) {
		panic(fmt.Sprintf("emu: 32-bit write of 64-bit cp0 register %s", CP0RegNames[index]))
	}
	c.regs[index] = uint64(value)
}

// Read64 reads a 64-bit register.
func (c *CP0) Read64(index uint8) uint64 {
	if c.Is32Bit(index) {
		panic(fmt.Sprintf("emu: 64-bit read of 32-bit cp0 register %s", CP0RegNames[index]))
	}
	return c.regs[index]
}

// Write64 writes a 64-bit register.
func (c *CP0) Write64(index uint8, value uint64) {
	if c.Is32Bit(index) {
		panic(fmt.Sprintf("emu: 64-bit write of 32-bit cp0 register %s", CP0RegNames[index]))
	}
	c.regs[index] = value
}

// MoveFrom returns the value MFC0 places in a GPR: the low word of the
// register, sign-extended.
func (c *CP0) MoveFrom(index uint8) uint64 {
	if c.Is32Bit(index) {
		return signExtend32(c.Read32(index))
	}
	return signExtend32(uint32(c.Read64(index)))
}

// MoveTo performs MTC0. 64-bit registers receive the sign-extended low word.
func (c *CP0) MoveTo(index uint8, value uint64) {
	if c.Is32Bit(index) {
		c.Write32(index, uint32(value))
		return
	}
	c.Write64(index, signExtend32(uint32(value)))
}

// DoubleMoveFrom returns the value DMFC0 places in a GPR.
func (c *CP0) DoubleMoveFrom(index uint8) uint64 {
	if c.Is32Bit(index) {
		return signExtend32(c.Read32(index))
	}
	return c.Read64(index)
}

// DoubleMoveTo performs DMTC0. 32-bit registers keep the low word.
func (c *CP0) DoubleMoveTo(index uint8, value uint64) {
	if c.Is32Bit(index) {
		c.Write32(index, uint32(value))
		return
	}
	c.Write64(index, value)
}

// EnterException records an exception and returns the vector to continue
// at. EPC and the BD bit are only updated when EXL is clear, so a nested
// exception keeps the original return address.
func (c *CP0) EnterException(code ExcCode, epc uint64, inDelaySlot bool, badVAddr uint64, hasBadVAddr bool) uint64 {
	status := c.Read32(CP0Status)
	cause := c.Read32(CP0Cause)

	cause = cause&^causeExcCodeMask | uint32(code)<<causeExcCodeShift
	if status&StatusEXL == 0 {
		cause &^= CauseBD
		if inDelaySlot {
			cause |= CauseBD
		}
		c.Write64(CP0EPC, epc)
	}
	c.Write32(CP0Cause, cause)

	if hasBadVAddr {
		c.Write64(CP0BadVAddr, badVAddr)
	}

	c.Write32(CP0Status, status|StatusEXL)

	if status&StatusBEV != 0 {
		return BootstrapVector
	}
	return GeneralVector
}

// ReturnFromException performs the register side of ERET and returns the
// address to resume at. ERL takes priority over EXL.
func (c *CP0) ReturnFromException() uint64 {
	status := c.Read32(CP0Status)
	if status&StatusERL != 0 {
		c.Write32(CP0Status, status&^StatusERL)
		return c.Read64(CP0ErrorEPC)
	}
	c.Write32(CP0Status, status&^StatusEXL)
	return c.Read64(CP0EPC)
}

// ExcCode is the exception code written to Cause.
type ExcCode uint8

// Exception codes.
const (
	ExcInt  ExcCode = 0
	ExcAdEL ExcCode = 4
	ExcAdES ExcCode = 5
	ExcSys  ExcCode = 8
	ExcBp   ExcCode = 9
	ExcRI   ExcCode = 10
	ExcOv   ExcCode = 12
)
