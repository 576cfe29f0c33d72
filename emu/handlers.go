package emu

import (
	"github.com/sarchlab/vr4300/insts"
)

// handler executes one decoded instruction. pc is the address of the
// instruction; by the time a handler runs, PC and NextPC have already
// advanced past it.
type handler func(e *Emulator, inst *insts.Instruction, pc uint64) error

// handlers is indexed by insts.Op. A nil entry is an illegal instruction.
var handlers [insts.NumOps]handler

func aluR(op func(*ALU, uint8, uint8, uint8)) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		op(e.alu, inst.Rd, inst.Rs, inst.Rt)
		return nil
	}
}

func aluRTrap(op func(*ALU, uint8, uint8, uint8) error) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		return op(e.alu, inst.Rd, inst.Rs, inst.Rt)
	}
}

func aluI(op func(*ALU, uint8, uint8, uint16)) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		op(e.alu, inst.Rt, inst.Rs, inst.Imm)
		return nil
	}
}

func aluITrap(op func(*ALU, uint8, uint8, uint16) error) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		return op(e.alu, inst.Rt, inst.Rs, inst.Imm)
	}
}

func shift(op func(*ALU, uint8, uint8, uint8)) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		op(e.alu, inst.Rd, inst.Rt, inst.Sa)
		return nil
	}
}

func shiftVar(op func(*ALU, uint8, uint8, uint8)) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		op(e.alu, inst.Rd, inst.Rt, inst.Rs)
		return nil
	}
}

func mul(op func(*MulDivUnit, uint8, uint8)) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		op(e.mulDiv, inst.Rs, inst.Rt)
		return nil
	}
}

func div(op func(*MulDivUnit, uint8, uint8) bool) handler {
	return func(e *Emulator, inst *insts.Instruction, pc uint64) error {
		if op(e.mulDiv, inst.Rs, inst.Rt) {
			e.logDivideByZero(pc, inst.Op)
		}
		return nil
	}
}

func memOp(op func(*LoadStoreUnit, uint8, uint8, uint16) error) handler {
	return func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		return op(e.lsu, inst.Rt, inst.Rs, inst.Imm)
	}
}

func branch(cond Cond, likely, link bool) handler {
	return func(e *Emulator, inst *insts.Instruction, pc uint64) error {
		e.branchUnit.Branch(pc, cond, inst.Rs, inst.Rt, inst.Imm, likely, link)
		return nil
	}
}

func nop(*Emulator, *insts.Instruction, uint64) error {
	return nil
}

func init() {
	h := &handlers

	// SPECIAL
	h[insts.OpSLL] = shift((*ALU).SLL)
	h[insts.OpSRL] = shift((*ALU).SRL)
	h[insts.OpSRA] = shift((*ALU).SRA)
	h[insts.OpSLLV] = shiftVar((*ALU).SLLV)
	h[insts.OpSRLV] = shiftVar((*ALU).SRLV)
	h[insts.OpSRAV] = shiftVar((*ALU).SRAV)
	h[insts.OpDSLL] = shift((*ALU).DSLL)
	h[insts.OpDSRL] = shift((*ALU).DSRL)
	h[insts.OpDSRA] = shift((*ALU).DSRA)
	h[insts.OpDSLL32] = shift((*ALU).DSLL32)
	h[insts.OpDSRL32] = shift((*ALU).DSRL32)
	h[insts.OpDSRA32] = shift((*ALU).DSRA32)
	h[insts.OpDSLLV] = shiftVar((*ALU).DSLLV)
	h[insts.OpDSRLV] = shiftVar((*ALU).DSRLV)
	h[insts.OpDSRAV] = shiftVar((*ALU).DSRAV)

	h[insts.OpJR] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.branchUnit.JR(inst.Rs)
		return nil
	}
	h[insts.OpJALR] = func(e *Emulator, inst *insts.Instruction, pc uint64) error {
		e.branchUnit.JALR(pc, inst.Rd, inst.Rs)
		return nil
	}
	h[insts.OpSYSCALL] = func(*Emulator, *insts.Instruction, uint64) error {
		return ErrSyscall
	}
	h[insts.OpBREAK] = func(*Emulator, *insts.Instruction, uint64) error {
		return ErrBreakpoint
	}
	h[insts.OpSYNC] = nop

	h[insts.OpMFHI] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.mulDiv.MFHI(inst.Rd)
		return nil
	}
	h[insts.OpMFLO] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.mulDiv.MFLO(inst.Rd)
		return nil
	}
	h[insts.OpMTHI] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.mulDiv.MTHI(inst.Rs)
		return nil
	}
	h[insts.OpMTLO] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.mulDiv.MTLO(inst.Rs)
		return nil
	}
	h[insts.OpMULT] = mul((*MulDivUnit).MULT)
	h[insts.OpMULTU] = mul((*MulDivUnit).MULTU)
	h[insts.OpDMULT] = mul((*MulDivUnit).DMULT)
	h[insts.OpDMULTU] = mul((*MulDivUnit).DMULTU)
	h[insts.OpDIV] = div((*MulDivUnit).DIV)
	h[insts.OpDIVU] = div((*MulDivUnit).DIVU)
	h[insts.OpDDIV] = div((*MulDivUnit).DDIV)
	h[insts.OpDDIVU] = div((*MulDivUnit).DDIVU)

	h[insts.OpADD] = aluRTrap((*ALU).ADD)
	h[insts.OpADDU] = aluR((*ALU).ADDU)
	h[insts.OpSUB] = aluRTrap((*ALU).SUB)
	h[insts.OpSUBU] = aluR((*ALU).SUBU)
	h[insts.OpDADD] = aluRTrap((*ALU).DADD)
	h[insts.OpDADDU] = aluR((*ALU).DADDU)
	h[insts.OpDSUB] = aluRTrap((*ALU).DSUB)
	h[insts.OpDSUBU] = aluR((*ALU).DSUBU)
	h[insts.OpAND] = aluR((*ALU).AND)
	h[insts.OpOR] = aluR((*ALU).OR)
	h[insts.OpXOR] = aluR((*ALU).XOR)
	h[insts.OpNOR] = aluR((*ALU).NOR)
	h[insts.OpSLT] = aluR((*ALU).SLT)
	h[insts.OpSLTU] = aluR((*ALU).SLTU)

	// REGIMM
	h[insts.OpBLTZ] = branch(CondLTZ, false, false)
	h[insts.OpBGEZ] = branch(CondGEZ, false, false)
	h[insts.OpBLTZL] = branch(CondLTZ, true, false)
	h[insts.OpBGEZL] = branch(CondGEZ, true, false)
	h[insts.OpBLTZAL] = branch(CondLTZ, false, true)
	h[insts.OpBGEZAL] = branch(CondGEZ, false, true)
	h[insts.OpBLTZALL] = branch(CondLTZ, true, true)
	h[insts.OpBGEZALL] = branch(CondGEZ, true, true)

	// Primary
	h[insts.OpJ] = func(e *Emulator, inst *insts.Instruction, pc uint64) error {
		e.branchUnit.J(pc, inst.Target)
		return nil
	}
	h[insts.OpJAL] = func(e *Emulator, inst *insts.Instruction, pc uint64) error {
		e.branchUnit.JAL(pc, inst.Target)
		return nil
	}
	h[insts.OpBEQ] = branch(CondEQ, false, false)
	h[insts.OpBNE] = branch(CondNE, false, false)
	h[insts.OpBLEZ] = branch(CondLEZ, false, false)
	h[insts.OpBGTZ] = branch(CondGTZ, false, false)
	h[insts.OpBEQL] = branch(CondEQ, true, false)
	h[insts.OpBNEL] = branch(CondNE, true, false)
	h[insts.OpBLEZL] = branch(CondLEZ, true, false)
	h[insts.OpBGTZL] = branch(CondGTZ, true, false)

	h[insts.OpADDI] = aluITrap((*ALU).ADDI)
	h[insts.OpADDIU] = aluI((*ALU).ADDIU)
	h[insts.OpDADDI] = aluITrap((*ALU).DADDI)
	h[insts.OpDADDIU] = aluI((*ALU).DADDIU)
	h[insts.OpSLTI] = aluI((*ALU).SLTI)
	h[insts.OpSLTIU] = aluI((*ALU).SLTIU)
	h[insts.OpANDI] = aluI((*ALU).ANDI)
	h[insts.OpORI] = aluI((*ALU).ORI)
	h[insts.OpXORI] = aluI((*ALU).XORI)
	h[insts.OpLUI] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.alu.LUI(inst.Rt, inst.Imm)
		return nil
	}

	h[insts.OpLB] = memOp((*LoadStoreUnit).LB)
	h[insts.OpLBU] = memOp((*LoadStoreUnit).LBU)
	h[insts.OpLH] = memOp((*LoadStoreUnit).LH)
	h[insts.OpLHU] = memOp((*LoadStoreUnit).LHU)
	h[insts.OpLW] = memOp((*LoadStoreUnit).LW)
	h[insts.OpLWU] = memOp((*LoadStoreUnit).LWU)
	h[insts.OpLD] = memOp((*LoadStoreUnit).LD)
	h[insts.OpLWL] = memOp((*LoadStoreUnit).LWL)
	h[insts.OpLWR] = memOp((*LoadStoreUnit).LWR)
	h[insts.OpLDL] = memOp((*LoadStoreUnit).LDL)
	h[insts.OpLDR] = memOp((*LoadStoreUnit).LDR)
	h[insts.OpSB] = memOp((*LoadStoreUnit).SB)
	h[insts.OpSH] = memOp((*LoadStoreUnit).SH)
	h[insts.OpSW] = memOp((*LoadStoreUnit).SW)
	h[insts.OpSD] = memOp((*LoadStoreUnit).SD)
	h[insts.OpSWL] = memOp((*LoadStoreUnit).SWL)
	h[insts.OpSWR] = memOp((*LoadStoreUnit).SWR)
	h[insts.OpSDL] = memOp((*LoadStoreUnit).SDL)
	h[insts.OpSDR] = memOp((*LoadStoreUnit).SDR)
	h[insts.OpLL] = memOp((*LoadStoreUnit).LL)
	h[insts.OpLLD] = memOp((*LoadStoreUnit).LLD)
	h[insts.OpSC] = memOp((*LoadStoreUnit).SC)
	h[insts.OpSCD] = memOp((*LoadStoreUnit).SCD)
	h[insts.OpCACHE] = nop

	// COP0
	h[insts.OpMFC0] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.regFile.WriteReg(inst.Rt, e.cp0.MoveFrom(inst.Rd))
		return nil
	}
	h[insts.OpDMFC0] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.regFile.WriteReg(inst.Rt, e.cp0.DoubleMoveFrom(inst.Rd))
		return nil
	}
	h[insts.OpMTC0] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.cp0.MoveTo(inst.Rd, e.regFile.ReadReg(inst.Rt))
		return nil
	}
	h[insts.OpDMTC0] = func(e *Emulator, inst *insts.Instruction, _ uint64) error {
		e.cp0.DoubleMoveTo(inst.Rd, e.regFile.ReadReg(inst.Rt))
		return nil
	}
	h[insts.OpERET] = func(e *Emulator, _ *insts.Instruction, _ uint64) error {
		target := e.cp0.ReturnFromException()
		e.regFile.PC, e.regFile.NextPC = target, target+4
		e.regFile.LLBit = false
		return nil
	}
}
