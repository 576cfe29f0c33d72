package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	// Addresses from 32-bit files are sign-extended.
	EntryPoint uint64
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
}

// LoadELF parses a big-endian MIPS ELF executable, 32- or 64-bit.
func LoadELF(path string) (*Program, error) {
	file, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if file.Machine != elf.EM_MIPS || file.Data != elf.ELFDATA2MSB {
		return nil, fmt.Errorf("%w (machine %v, %v)", ErrNotMIPS, file.Machine, file.Data)
	}

	addr := func(a uint64) uint64 { return a }
	if file.Class == elf.ELFCLASS32 {
		addr = func(a uint64) uint64 { return uint64(int64(int32(uint32(a)))) }
	}

	prog := &Program{EntryPoint: addr(file.Entry)}

	for _, phdr := range file.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: addr(phdr.Vaddr),
			Data:     data,
			MemSize:  phdr.Memsz,
			Flags:    flags,
		})
	}

	return prog, nil
}

// Install writes every segment through w and zero-fills the part of each
// segment that is not backed by file data.
func (p *Program) Install(w Writer) error {
	for _, seg := range p.Segments {
		if err := w.WriteBytes(seg.VirtAddr, seg.Data); err != nil {
			return fmt.Errorf("failed to install segment at 0x%x: %w", seg.VirtAddr, err)
		}
		if seg.MemSize > uint64(len(seg.Data)) {
			bss := make([]byte, seg.MemSize-uint64(len(seg.Data)))
			if err := w.WriteBytes(seg.VirtAddr+uint64(len(seg.Data)), bss); err != nil {
				return fmt.Errorf("failed to clear segment at 0x%x: %w", seg.VirtAddr, err)
			}
		}
	}
	return nil
}

// IsELF reports whether data starts with the ELF magic number.
func IsELF(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == elf.ELFMAG
}
