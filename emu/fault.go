package emu

import (
	"errors"

	"github.com/sarchlab/vr4300/mem"
	"github.com/sarchlab/vr4300/translate"
)

var f = translate.From

// Sentinel errors. Every *Fault unwraps to the sentinel for its kind.
var (
	ErrIllegalInstruction = errors.New(f("illegal instruction"))
	ErrArithmeticOverflow = errors.New(f("arithmetic overflow"))
	ErrUnalignedAccess    = errors.New(f("unaligned access"))
	ErrSyscall            = errors.New(f("syscall"))
	ErrBreakpoint         = errors.New(f("breakpoint"))

	// ErrTranslation is the translation failure reported by mem.
	ErrTranslation = mem.ErrTranslation

	// ErrMaxInstructions reports that the instruction limit was reached.
	ErrMaxInstructions = errors.New(f("max instructions reached"))
	// ErrUnknownRegister reports a register name that does not resolve.
	ErrUnknownRegister = errors.New(f("unknown register"))
)

// FaultKind classifies a Fault.
type FaultKind uint8

// Fault kinds.
const (
	FaultIllegalInstruction FaultKind = iota + 1
	FaultArithmeticOverflow
	FaultTranslation
	FaultUnalignedAccess
	FaultSyscall
	FaultBreakpoint
)

func (k FaultKind) String() string {
	switch k {
	case FaultIllegalInstruction:
		return "IllegalInstruction"
	case FaultArithmeticOverflow:
		return "ArithmeticOverflow"
	case FaultTranslation:
		return "TranslationFault"
	case FaultUnalignedAccess:
		return "UnalignedAccess"
	case FaultSyscall:
		return "Syscall"
	case FaultBreakpoint:
		return "Breakpoint"
	}
	return "FaultKind(?)"
}

func (k FaultKind) sentinel() error {
	switch k {
	case FaultArithmeticOverflow:
		return ErrArithmeticOverflow
	case FaultTranslation:
		return ErrTranslation
	case FaultUnalignedAccess:
		return ErrUnalignedAccess
	case FaultSyscall:
		return ErrSyscall
	case FaultBreakpoint:
		return ErrBreakpoint
	}
	return ErrIllegalInstruction
}

// Fault is an architectural fault raised by an instruction. A faulting
// instruction commits no register or memory effects.
type Fault struct {
	Kind FaultKind

	// PC is the address of the faulting instruction.
	PC uint64

	// Address is the offending virtual address of a translation or
	// alignment fault. For fetch faults it equals PC.
	Address uint64

	// Word is the instruction word, zero when the fetch itself faulted.
	Word uint32

	// InDelaySlot is set when the faulting instruction sits in the delay
	// slot of a taken branch.
	InDelaySlot bool

	// Store is set when a data access fault was raised by a store.
	Store bool
}

func (flt *Fault) Error() string {
	switch flt.Kind {
	case FaultTranslation, FaultUnalignedAccess:
		return f("%v at pc 0x%016x: address 0x%016x", flt.Kind, flt.PC, flt.Address)
	}
	return f("%v at pc 0x%016x: word 0x%08x", flt.Kind, flt.PC, flt.Word)
}

func (flt *Fault) Unwrap() error {
	return flt.Kind.sentinel()
}

// hasAddress reports whether the fault carries a bad virtual address.
func (flt *Fault) hasAddress() bool {
	return flt.Kind == FaultTranslation || flt.Kind == FaultUnalignedAccess
}

// excCode maps the fault onto the Cause exception code.
func (flt *Fault) excCode() ExcCode {
	switch flt.Kind {
	case FaultArithmeticOverflow:
		return ExcOv
	case FaultTranslation, FaultUnalignedAccess:
		if flt.Store {
			return ExcAdES
		}
		return ExcAdEL
	case FaultSyscall:
		return ExcSys
	case FaultBreakpoint:
		return ExcBp
	}
	return ExcRI
}

// newFault classifies an execution error into a Fault.
func newFault(err error, pc uint64, word uint32, inDelaySlot, store bool) *Fault {
	flt := &Fault{
		PC:          pc,
		Word:        word,
		InDelaySlot: inDelaySlot,
		Store:       store,
	}

	var addrErr *mem.AddressError
	if errors.As(err, &addrErr) {
		flt.Address = addrErr.Addr
	}

	switch {
	case errors.Is(err, ErrArithmeticOverflow):
		flt.Kind = FaultArithmeticOverflow
	case errors.Is(err, ErrTranslation):
		flt.Kind = FaultTranslation
	case errors.Is(err, ErrUnalignedAccess):
		flt.Kind = FaultUnalignedAccess
	case errors.Is(err, ErrSyscall):
		flt.Kind = FaultSyscall
	case errors.Is(err, ErrBreakpoint):
		flt.Kind = FaultBreakpoint
	default:
		flt.Kind = FaultIllegalInstruction
	}
	return flt
}
