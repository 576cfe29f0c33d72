// Package mem provides virtual address translation and physical address
// dispatch for the VR4300 memory map.
package mem

// Range is an inclusive address range.
type Range struct {
	Low, High uint64
}

// Contains reports whether addr lies inside the range.
func (r Range) Contains(addr uint64) bool {
	return addr >= r.Low && addr <= r.High
}

// Overlaps reports whether two ranges share at least one address.
func (r Range) Overlaps(o Range) bool {
	return r.Low <= o.High && o.Low <= r.High
}

// Size returns the number of addresses covered by the range.
func (r Range) Size() uint64 {
	return r.High - r.Low + 1
}

// Segment is a fixed virtual window translated by subtracting its base.
type Segment struct {
	Name  string
	Range Range
}

// The five fixed segments of the 32-bit compatibility address space.
var (
	KUSEG = Segment{Name: "KUSEG", Range: Range{Low: 0x00000000, High: 0x7FFFFFFF}}
	KSEG0 = Segment{Name: "KSEG0", Range: Range{Low: 0x80000000, High: 0x9FFFFFFF}}
	KSEG1 = Segment{Name: "KSEG1", Range: Range{Low: 0xA0000000, High: 0xBFFFFFFF}}
	KSSEG = Segment{Name: "KSSEG", Range: Range{Low: 0xC0000000, High: 0xDFFFFFFF}}
	KSEG3 = Segment{Name: "KSEG3", Range: Range{Low: 0xE0000000, High: 0xFFFFFFFF}}
)

// Segments lists the segments in match order.
var Segments = []Segment{KUSEG, KSEG0, KSEG1, KSSEG, KSEG3}

// compat folds a sign-extended 32-bit address onto its low word. Any other
// 64-bit address is returned unchanged and will not match a segment.
func compat(vaddr uint64) uint64 {
	if uint64(int64(int32(uint32(vaddr)))) == vaddr {
		return vaddr & 0xFFFFFFFF
	}
	return vaddr
}

// SegmentOf returns the segment that vaddr falls into.
func SegmentOf(vaddr uint64) (Segment, bool) {
	addr := compat(vaddr)
	for _, s := range Segments {
		if s.Range.Contains(addr) {
			return s, true
		}
	}
	return Segment{}, false
}

// Translate converts a virtual address into a physical address.
func Translate(vaddr uint64) (uint64, error) {
	s, ok := SegmentOf(vaddr)
	if !ok {
		return 0, &AddressError{Addr: vaddr, Err: ErrTranslation}
	}
	return compat(vaddr) - s.Range.Low, nil
}
