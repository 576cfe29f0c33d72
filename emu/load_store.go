package emu

import (
	"github.com/sarchlab/vr4300/mem"
)

// UnalignedPolicy selects how naturally-aligned accesses at unaligned
// addresses are handled.
type UnalignedPolicy uint8

// Unaligned access policies.
const (
	// UnalignedFault raises an address error and changes no state.
	UnalignedFault UnalignedPolicy = iota
	// UnalignedAllow performs the access byte by byte.
	UnalignedAllow
)

// LoadStoreUnit implements VR4300 load and store operations. Every access
// goes through the MMU, and a failed access changes no register or memory.
type LoadStoreUnit struct {
	regFile *RegFile
	cp0     *CP0
	mmu     *mem.MMU
	policy  UnalignedPolicy
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file, CP0 and MMU.
func NewLoadStoreUnit(regFile *RegFile, cp0 *CP0, mmu *mem.MMU, policy UnalignedPolicy) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		cp0:     cp0,
		mmu:     mmu,
		policy:  policy,
	}
}

// address computes base + sext(offset) and checks alignment for size.
func (lsu *LoadStoreUnit) address(base uint8, offset uint16, size uint64) (uint64, error) {
	addr := lsu.regFile.ReadReg(base) + signExtend16(offset)
	if size > 1 && addr&(size-1) != 0 && lsu.policy == UnalignedFault {
		return 0, &mem.AddressError{Addr: addr, Err: ErrUnalignedAccess}
	}
	return addr, nil
}

// LB loads a sign-extended byte.
func (lsu *LoadStoreUnit) LB(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	v, err := lsu.mmu.Read8(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, uint64(int64(int8(v))))
	return nil
}

// LBU loads a zero-extended byte.
func (lsu *LoadStoreUnit) LBU(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	v, err := lsu.mmu.Read8(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, uint64(v))
	return nil
}

// LH loads a sign-extended halfword.
func (lsu *LoadStoreUnit) LH(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 2)
	if err != nil {
		return err
	}
	v, err := lsu.mmu.Read16(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, signExtend16(v))
	return nil
}

// LHU loads a zero-extended halfword.
func (lsu *LoadStoreUnit) LHU(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 2)
	if err != nil {
		return err
	}
	v, err := lsu.mmu.Read16(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, uint64(v))
	return nil
}

// LW loads a sign-extended word.
func (lsu *LoadStoreUnit) LW(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 4)
	if err != nil {
		return err
	}
	v, err := lsu.mmu.Read32(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, signExtend32(v))
	return nil
}

// LWU loads a zero-extended word.
func (lsu *LoadStoreUnit) LWU(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 4)
	if err != nil {
		return err
	}
	v, err := lsu.mmu.Read32(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, uint64(v))
	return nil
}

// LD loads a doubleword.
func (lsu *LoadStoreUnit) LD(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 8)
	if err != nil {
		return err
	}
	v, err := lsu.mmu.Read64(addr)
	if err != nil {
		return err
	}
	lsu.regFile.WriteReg(rt, v)
	return nil
}

// LWL loads the bytes from the effective address to the end of its word
// into the most significant end of the low word of rt.
func (lsu *LoadStoreUnit) LWL(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	shift := 8 * (addr & 3)
	w, err := lsu.mmu.Read32(addr &^ 3)
	if err != nil {
		return err
	}
	old := uint32(lsu.regFile.ReadReg(rt))
	keep := uint32(1)<<shift - 1
	lsu.regFile.WriteReg(rt, signExtend32(old&keep|w<<shift))
	return nil
}

// LWR loads the bytes from the start of the word to the effective address
// into the least significant end of the low word of rt.
func (lsu *LoadStoreUnit) LWR(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	shift := 8 * (3 - addr&3)
	w, err := lsu.mmu.Read32(addr &^ 3)
	if err != nil {
		return err
	}
	old := uint32(lsu.regFile.ReadReg(rt))
	mask := uint32(0xFFFFFFFF) >> shift
	lsu.regFile.WriteReg(rt, signExtend32(old&^mask|w>>shift))
	return nil
}

// LDL is the doubleword form of LWL.
func (lsu *LoadStoreUnit) LDL(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	shift := 8 * (addr & 7)
	d, err := lsu.mmu.Read64(addr &^ 7)
	if err != nil {
		return err
	}
	old := lsu.regFile.ReadReg(rt)
	keep := uint64(1)<<shift - 1
	lsu.regFile.WriteReg(rt, old&keep|d<<shift)
	return nil
}

// LDR is the doubleword form of LWR.
func (lsu *LoadStoreUnit) LDR(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	shift := 8 * (7 - addr&7)
	d, err := lsu.mmu.Read64(addr &^ 7)
	if err != nil {
		return err
	}
	old := lsu.regFile.ReadReg(rt)
	mask := ^uint64(0) >> shift
	lsu.regFile.WriteReg(rt, old&^mask|d>>shift)
	return nil
}

// SB stores the low byte of rt.
func (lsu *LoadStoreUnit) SB(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	return lsu.mmu.Write8(addr, uint8(lsu.regFile.ReadReg(rt)))
}

// SH stores the low halfword of rt.
func (lsu *LoadStoreUnit) SH(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 2)
	if err != nil {
		return err
	}
	return lsu.mmu.Write16(addr, uint16(lsu.regFile.ReadReg(rt)))
}

// SW stores the low word of rt.
func (lsu *LoadStoreUnit) SW(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 4)
	if err != nil {
		return err
	}
	return lsu.mmu.Write32(addr, uint32(lsu.regFile.ReadReg(rt)))
}

// SD stores rt.
func (lsu *LoadStoreUnit) SD(rt, base uint8, offset uint16) error {
	addr, err := lsu.address(base, offset, 8)
	if err != nil {
		return err
	}
	return lsu.mmu.Write64(addr, lsu.regFile.ReadReg(rt))
}

// partialBytes returns the size-byte big-endian image of value.
func partialBytes(value uint64, size uint64) []byte {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(value >> (8 * (size - 1 - uint64(i))))
	}
	return buf
}

// SWL stores the most significant bytes of the low word of rt from the
// effective address to the end of its word.
func (lsu *LoadStoreUnit) SWL(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	k := addr & 3
	v := uint32(lsu.regFile.ReadReg(rt))
	return lsu.mmu.WriteBytes(addr, partialBytes(uint64(v), 4)[:4-k])
}

// SWR stores the least significant bytes of the low word of rt from the
// start of the word to the effective address.
func (lsu *LoadStoreUnit) SWR(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	k := addr & 3
	v := uint32(lsu.regFile.ReadReg(rt))
	return lsu.mmu.WriteBytes(addr&^3, partialBytes(uint64(v), 4)[3-k:])
}

// SDL is the doubleword form of SWL.
func (lsu *LoadStoreUnit) SDL(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	k := addr & 7
	return lsu.mmu.WriteBytes(addr, partialBytes(lsu.regFile.ReadReg(rt), 8)[:8-k])
}

// SDR is the doubleword form of SWR.
func (lsu *LoadStoreUnit) SDR(rt, base uint8, offset uint16) error {
	addr, _ := lsu.address(base, offset, 1)
	k := addr & 7
	return lsu.mmu.WriteBytes(addr&^7, partialBytes(lsu.regFile.ReadReg(rt), 8)[7-k:])
}

// link sets the load-linked flag and records the physical address.
func (lsu *LoadStoreUnit) link(addr uint64) {
	paddr, _ := mem.Translate(addr)
	lsu.regFile.LLBit = true
	lsu.cp0.Write32(CP0LLAddr, uint32(paddr>>4))
}

// LL loads a sign-extended word and sets the load-linked flag.
func (lsu *LoadStoreUnit) LL(rt, base uint8, offset uint16) error {
	addr := lsu.regFile.ReadReg(base) + signExtend16(offset)
	if err := lsu.LW(rt, base, offset); err != nil {
		return err
	}
	lsu.link(addr)
	return nil
}

// LLD loads a doubleword and sets the load-linked flag.
func (lsu *LoadStoreUnit) LLD(rt, base uint8, offset uint16) error {
	addr := lsu.regFile.ReadReg(base) + signExtend16(offset)
	if err := lsu.LD(rt, base, offset); err != nil {
		return err
	}
	lsu.link(addr)
	return nil
}

// SC stores the low word of rt if the load-linked flag is set. rt becomes
// 1 on success and 0 on failure, and the flag is cleared either way.
func (lsu *LoadStoreUnit) SC(rt, base uint8, offset uint16) error {
	return lsu.storeConditional(rt, base, offset, 4, lsu.SW)
}

// SCD is the doubleword form of SC.
func (lsu *LoadStoreUnit) SCD(rt, base uint8, offset uint16) error {
	return lsu.storeConditional(rt, base, offset, 8, lsu.SD)
}

func (lsu *LoadStoreUnit) storeConditional(
	rt, base uint8,
	offset uint16,
	size uint64,
	store func(rt, base uint8, offset uint16) error,
) error {
	// Alignment is checked before the flag, so a misaligned SC faults
	// like the plain store would.
	if _, err := lsu.address(base, offset, size); err != nil {
		return err
	}
	if !lsu.regFile.LLBit {
		lsu.regFile.WriteReg(rt, 0)
		return nil
	}
	if err := store(rt, base, offset); err != nil {
		return err
	}
	lsu.regFile.LLBit = false
	lsu.regFile.WriteReg(rt, 1)
	return nil
}
