package emu

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/vr4300/cache"
	"github.com/sarchlab/vr4300/insts"
	"github.com/sarchlab/vr4300/mem"
)

// FaultPolicy selects what happens after a Fault.
type FaultPolicy uint8

// Fault policies.
const (
	// FaultHalt restores PC and NextPC to their values before the faulting
	// Step and halts the machine.
	FaultHalt FaultPolicy = iota
	// FaultVector records the fault in CP0 and continues at the exception
	// vector.
	FaultVector
)

// HLE boot copies this much of the cartridge, starting at hleCopyOffset,
// into RAM at the same offset.
const (
	hleCopyOffset = 0x1000
	hleCopySize   = 0x100000
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Fault is set if the instruction raised an architectural fault.
	Fault *Fault

	// Err is set if the step did not run, for example because the
	// instruction limit was reached.
	Err error
}

// Emulator executes VR4300 instructions functionally.
type Emulator struct {
	regFile *RegFile
	cp0     *CP0
	mmu     *mem.MMU
	ram     *mem.RAM
	rom     *mem.ROM
	sram    *mem.SRAM
	dcache  *cache.Cache
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	mulDiv     *MulDivUnit
	branchUnit *BranchUnit
	lsu        *LoadStoreUnit

	logger *logrus.Logger

	// Configuration
	hleBoot         bool
	unaligned       UnalignedPolicy
	faultPolicy     FaultPolicy
	sramSize        int
	dcacheConfig    *cache.Config
	maxInstructions uint64 // 0 means no limit

	// Execution state
	instructionCount uint64
	inDelaySlot      bool
	halted           bool
	fault            *Fault
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithLogger sets the logger. Step traces are logged at debug level and
// faults at warn level.
func WithLogger(logger *logrus.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.logger = logger
	}
}

// WithHLEBoot starts the machine in the state the boot code leaves behind
// instead of at the reset vector.
func WithHLEBoot(hle bool) EmulatorOption {
	return func(e *Emulator) {
		e.hleBoot = hle
	}
}

// WithUnalignedPolicy sets the unaligned access policy.
func WithUnalignedPolicy(policy UnalignedPolicy) EmulatorOption {
	return func(e *Emulator) {
		e.unaligned = policy
	}
}

// WithFaultPolicy sets the fault policy.
func WithFaultPolicy(policy FaultPolicy) EmulatorOption {
	return func(e *Emulator) {
		e.faultPolicy = policy
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDataCache places a write-back data cache in front of RDRAM.
func WithDataCache(config cache.Config) EmulatorOption {
	return func(e *Emulator) {
		e.dcacheConfig = &config
	}
}

// WithROM installs a cartridge image.
func WithROM(data []byte) EmulatorOption {
	return func(e *Emulator) {
		e.rom = mem.NewROM(data)
	}
}

// WithSRAMSize sets the cartridge SRAM size in bytes.
func WithSRAMSize(size int) EmulatorOption {
	return func(e *Emulator) {
		e.sramSize = size
	}
}

// NewEmulator creates a new VR4300 emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder:  insts.NewDecoder(),
		sramSize: mem.DefaultSRAMSize,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logrus.New()
		e.logger.SetOutput(io.Discard)
	}
	if e.rom == nil {
		e.rom = mem.NewROM(nil)
	}
	e.sram = mem.NewSRAM(e.sramSize)

	e.Reset()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// CP0 returns the emulator's system control registers.
func (e *Emulator) CP0() *CP0 {
	return e.cp0
}

// MMU returns the emulator's memory management unit.
func (e *Emulator) MMU() *mem.MMU {
	return e.mmu
}

// RAM returns the emulator's main memory.
func (e *Emulator) RAM() *mem.RAM {
	return e.ram
}

// DataCache returns the data cache, or nil when none is configured.
func (e *Emulator) DataCache() *cache.Cache {
	return e.dcache
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether a fault has stopped the machine.
func (e *Emulator) Halted() bool {
	return e.halted
}

// Fault returns the fault that halted the machine, if any.
func (e *Emulator) Fault() *Fault {
	return e.fault
}

// LoadROM installs a cartridge image and resets the machine.
func (e *Emulator) LoadROM(data []byte) {
	e.rom = mem.NewROM(data)
	e.Reset()
}

// Reset returns the machine to its boot state. RAM is cleared; the
// cartridge and its SRAM are kept.
func (e *Emulator) Reset() {
	if e.hleBoot {
		e.regFile = NewHLERegFile()
		e.cp0 = NewHLECP0()
	} else {
		e.regFile = NewRegFile()
		e.cp0 = NewCP0()
	}

	e.ram = mem.NewRAM(mem.RAMSize)
	e.mmu = mem.NewDefaultMMU(e.ram, e.rom, e.sram)

	e.dcache = nil
	if e.dcacheConfig != nil {
		e.dcache = cache.New(*e.dcacheConfig, cache.NewDeviceBacking(e.ram))
		if err := e.mmu.Replace(mem.RDRAM1, e.dcache); err != nil {
			panic(err)
		}
	}

	if e.hleBoot {
		e.copyBootSegment()
	}

	// Recreate execution units
	e.alu = NewALU(e.regFile)
	e.mulDiv = NewMulDivUnit(e.regFile)
	e.branchUnit = NewBranchUnit(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.cp0, e.mmu, e.unaligned)

	e.instructionCount = 0
	e.inDelaySlot = false
	e.halted = false
	e.fault = nil
}

// copyBootSegment performs the copy the boot code would do.
func (e *Emulator) copyBootSegment() {
	end := uint64(hleCopyOffset + hleCopySize)
	if end > e.rom.Size() {
		end = e.rom.Size()
	}
	for off := uint64(hleCopyOffset); off < end; off++ {
		e.ram.Write8(off, e.rom.Read8(off))
	}
}

// FlushCaches writes back and invalidates the data cache.
func (e *Emulator) FlushCaches() {
	if e.dcache != nil {
		e.dcache.Flush()
	}
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Fault: e.fault}
	}

	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	rf := e.regFile
	pc, nextPC := rf.PC, rf.NextPC
	inDelaySlot := e.inDelaySlot

	word, err := e.fetch(pc)
	if err != nil {
		flt := newFault(err, pc, 0, inDelaySlot, false)
		flt.Address = pc
		return e.raise(flt, pc, nextPC)
	}

	rf.PC = nextPC
	rf.IncrementNextPC(4)
	slot := rf.PC

	inst := e.decoder.Decode(word)
	if e.logger.IsLevelEnabled(logrus.DebugLevel) {
		e.logger.WithFields(logrus.Fields{
			"pc":   fmt.Sprintf("0x%016x", pc),
			"word": fmt.Sprintf("0x%08x", word),
			"op":   inst.Op.String(),
		}).Debug(f("step"))
	}

	if err := e.execute(inst, pc); err != nil {
		return e.raise(newFault(err, pc, word, inDelaySlot, inst.Op.IsStore()), pc, nextPC)
	}

	e.inDelaySlot = inst.Op.IsBranch() && rf.PC == slot
	e.instructionCount++

	return StepResult{}
}

// fetch reads the instruction word at pc.
func (e *Emulator) fetch(pc uint64) (uint32, error) {
	if pc&3 != 0 {
		return 0, &mem.AddressError{Addr: pc, Err: ErrUnalignedAccess}
	}
	return e.mmu.Read32(pc)
}

// raise applies the fault policy to a fault raised by the instruction at pc.
func (e *Emulator) raise(flt *Fault, pc, nextPC uint64) StepResult {
	rf := e.regFile
	rf.PC, rf.NextPC = pc, nextPC

	e.logger.WithFields(logrus.Fields{
		"pc":      fmt.Sprintf("0x%016x", flt.PC),
		"kind":    flt.Kind.String(),
		"address": fmt.Sprintf("0x%016x", flt.Address),
		"slot":    flt.InDelaySlot,
	}).Warn(f("fault"))

	if e.faultPolicy == FaultVector {
		epc := pc
		if flt.InDelaySlot {
			epc = pc - 4
		}
		vector := e.cp0.EnterException(flt.excCode(), epc, flt.InDelaySlot, flt.Address, flt.hasAddress())
		rf.PC, rf.NextPC = vector, vector+4
		e.inDelaySlot = false
		return StepResult{Fault: flt}
	}

	e.halted = true
	e.fault = flt
	return StepResult{Fault: flt}
}

// Run executes up to max instructions, or without limit when max is 0. It
// stops early when the machine halts or a step cannot run, and returns the
// number of instructions stepped together with the last result.
func (e *Emulator) Run(max uint64) (uint64, StepResult) {
	var n uint64
	for max == 0 || n < max {
		result := e.Step()
		if result.Err != nil || e.halted {
			return n, result
		}
		n++
	}
	return n, StepResult{}
}

// execute dispatches a decoded instruction to its handler.
func (e *Emulator) execute(inst *insts.Instruction, pc uint64) error {
	handler := handlers[inst.Op]
	if handler == nil {
		return ErrIllegalInstruction
	}
	return handler(e, inst, pc)
}

// logDivideByZero notes a division by zero. The result is defined, so this
// is not a fault.
func (e *Emulator) logDivideByZero(pc uint64, op insts.Op) {
	e.logger.WithFields(logrus.Fields{
		"pc": fmt.Sprintf("0x%016x", pc),
		"op": op.String(),
	}).Debug(f("division by zero"))
}
