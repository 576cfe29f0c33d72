package mem

import (
	"fmt"
)

// Window binds a named physical range to a device. Offset is added to the
// window-relative address before it reaches the device, which lets two
// windows share one device.
type Window struct {
	Name   string
	Range  Range
	Device Device
	Offset uint64
}

// Physical window names of the default memory map.
const (
	RDRAM1              = "RDRAM1"
	RDRAM2              = "RDRAM2"
	Reserved1           = "RESERVED1"
	RDRAMRegisters      = "RDRAM_REGISTERS"
	RSPDMEM             = "RSP_DMEM"
	RSPIMEM             = "RSP_IMEM"
	Unknown             = "UNKNOWN"
	RSPRegisters        = "RSP_REGISTERS"
	RDPCommandRegisters = "RDP_COMMAND_REGISTERS"
	RDPSpanRegisters    = "RDP_SPAN_REGISTERS"
	MIPSInterface       = "MIPS_INTERFACE"
	VideoInterface      = "VIDEO_INTERFACE"
	AudioInterface      = "AUDIO_INTERFACE"
	PeripheralInterface = "PERIPHERAL_INTERFACE"
	RDRAMInterface      = "RDRAM_INTERFACE"
	SerialInterface     = "SERIAL_INTERFACE"
	Unused              = "UNUSED"
	CartD2A1            = "CARTRIDGE_DOMAIN_2_ADDRESS_1"
	CartD1A1            = "CARTRIDGE_DOMAIN_1_ADDRESS_1"
	CartD2A2            = "CARTRIDGE_DOMAIN_2_ADDRESS_2"
	CartD1A2            = "CARTRIDGE_DOMAIN_1_ADDRESS_2"
	PIFROM              = "PIF_ROM"
	PIFRAM              = "PIF_RAM"
	Reserved2           = "RESERVED2"
	CartD1A3            = "CARTRIDGE_DOMAIN_1_ADDRESS_3"
	SysAD               = "EXTERNAL_SYSAD_DEVICE_BUS"
)

// defaultLayout is the physical memory map in dispatch order.
var defaultLayout = []struct {
	name string
	rng  Range
}{
	{RDRAM1, Range{0x00000000, 0x003FFFFF}},
	{RDRAM2, Range{0x00400000, 0x007FFFFF}},
	{Reserved1, Range{0x00800000, 0x03EFFFFF}},
	{RDRAMRegisters, Range{0x03F00000, 0x03FFFFFF}},
	{RSPDMEM, Range{0x04000000, 0x04000FFF}},
	{RSPIMEM, Range{0x04001000, 0x04001FFF}},
	{Unknown, Range{0x04002000, 0x0403FFFF}},
	{RSPRegisters, Range{0x04040000, 0x040FFFFF}},
	{RDPCommandRegisters, Range{0x04100000, 0x041FFFFF}},
	{RDPSpanRegisters, Range{0x04200000, 0x042FFFFF}},
	{MIPSInterface, Range{0x04300000, 0x043FFFFF}},
	{VideoInterface, Range{0x04400000, 0x044FFFFF}},
	{AudioInterface, Range{0x04500000, 0x045FFFFF}},
	{PeripheralInterface, Range{0x04600000, 0x046FFFFF}},
	{RDRAMInterface, Range{0x04700000, 0x047FFFFF}},
	{SerialInterface, Range{0x04800000, 0x048FFFFF}},
	{Unused, Range{0x04900000, 0x04FFFFFF}},
	{CartD2A1, Range{0x05000000, 0x05FFFFFF}},
	{CartD1A1, Range{0x06000000, 0x07FFFFFF}},
	{CartD2A2, Range{0x08000000, 0x0FFFFFFF}},
	{CartD1A2, Range{0x10000000, 0x1FBFFFFF}},
	{PIFROM, Range{0x1FC00000, 0x1FC007BF}},
	{PIFRAM, Range{0x1FC007C0, 0x1FC007FF}},
	{Reserved2, Range{0x1FC00800, 0x1FCFFFFF}},
	{CartD1A3, Range{0x1FD00000, 0x7FFFFFFF}},
	{SysAD, Range{0x80000000, 0xFFFFFFFF}},
}

// MMU translates virtual addresses and routes physical accesses to the
// window that contains them.
type MMU struct {
	windows []Window
	last    int
}

// NewMMU creates an MMU with an empty dispatch table.
func NewMMU() *MMU {
	return &MMU{}
}

// NewDefaultMMU creates an MMU with the standard memory map. RAM backs both
// RDRAM windows, rom backs cartridge domain 1 address 2 and sram backs
// cartridge domain 2 address 2. Every other window is a Stub.
func NewDefaultMMU(ram *RAM, rom *ROM, sram *SRAM) *MMU {
	m := NewMMU()
	for _, l := range defaultLayout {
		w := Window{Name: l.name, Range: l.rng, Device: Stub{}}
		switch l.name {
		case RDRAM1, RDRAM2:
			w.Device = ram
			w.Offset = l.rng.Low
		case CartD1A2:
			w.Device = rom
		case CartD2A2:
			w.Device = sram
		}
		if err := m.Map(w); err != nil {
			panic(err)
		}
	}
	return m
}

// Map appends a window to the dispatch table.
func (m *MMU) Map(w Window) error {
	for _, tmp := range m.windows {
		if tmp.Range.Overlaps(w.Range) {
			return fmt.Errorf("%s: %w (%s)", w.Name, ErrWindowOverlap, tmp.Name)
		}
	}
	m.windows = append(m.windows, w)
	return nil
}

// Replace swaps the device behind a named window.
func (m *MMU) Replace(name string, dev Device) error {
	found := false
	for i := range m.windows {
		if m.windows[i].Name == name {
			m.windows[i].Device = dev
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%s: %w", name, ErrWindowUnknown)
	}
	return nil
}

// Windows returns a copy of the dispatch table.
func (m *MMU) Windows() []Window {
	out := make([]Window, len(m.windows))
	copy(out, m.windows)
	return out
}

// WindowAt returns the window containing a physical address.
func (m *MMU) WindowAt(paddr uint64) (Window, bool) {
	i := m.find(paddr)
	if i < 0 {
		return Window{}, false
	}
	return m.windows[i], true
}

func (m *MMU) find(paddr uint64) int {
	if m.last < len(m.windows) && m.windows[m.last].Range.Contains(paddr) {
		return m.last
	}
	for i := range m.windows {
		if m.windows[i].Range.Contains(paddr) {
			m.last = i
			return i
		}
	}
	return -1
}

// ReadPhys8 reads one byte from a physical address. Unmapped addresses read
// StubSentinel.
func (m *MMU) ReadPhys8(paddr uint64) byte {
	i := m.find(paddr)
	if i < 0 {
		return StubSentinel
	}
	w := &m.windows[i]
	return w.Device.Read8(paddr - w.Range.Low + w.Offset)
}

// WritePhys8 writes one byte to a physical address.
func (m *MMU) WritePhys8(paddr uint64, value byte) {
	i := m.find(paddr)
	if i < 0 {
		return
	}
	w := &m.windows[i]
	w.Device.Write8(paddr-w.Range.Low+w.Offset, value)
}

// ReadBytes reads n bytes starting at a virtual address.
func (m *MMU) ReadBytes(vaddr uint64, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		paddr, err := Translate(vaddr + uint64(i))
		if err != nil {
			return nil, err
		}
		out[i] = m.ReadPhys8(paddr)
	}
	return out, nil
}

// WriteBytes writes data starting at a virtual address. Every address is
// translated before the first byte is written, so a failed write leaves
// memory untouched.
func (m *MMU) WriteBytes(vaddr uint64, data []byte) error {
	paddrs := make([]uint64, len(data))
	for i := range data {
		paddr, err := Translate(vaddr + uint64(i))
		if err != nil {
			return err
		}
		paddrs[i] = paddr
	}
	for i, b := range data {
		m.WritePhys8(paddrs[i], b)
	}
	return nil
}

// read assembles a big-endian value of size bytes.
func (m *MMU) read(vaddr uint64, size int) (uint64, error) {
	var value uint64
	for i := 0; i < size; i++ {
		paddr, err := Translate(vaddr + uint64(i))
		if err != nil {
			return 0, err
		}
		value = value<<8 | uint64(m.ReadPhys8(paddr))
	}
	return value, nil
}

// write stores the low size bytes of value, most significant byte first.
func (m *MMU) write(vaddr uint64, size int, value uint64) error {
	var buf [8]byte
	for i := 0; i < size; i++ {
		buf[i] = byte(value >> (8 * (size - 1 - i)))
	}
	return m.WriteBytes(vaddr, buf[:size])
}

// Read8 reads a byte at a virtual address.
func (m *MMU) Read8(vaddr uint64) (uint8, error) {
	v, err := m.read(vaddr, 1)
	return uint8(v), err
}

// Read16 reads a big-endian halfword at a virtual address.
func (m *MMU) Read16(vaddr uint64) (uint16, error) {
	v, err := m.read(vaddr, 2)
	return uint16(v), err
}

// Read32 reads a big-endian word at a virtual address.
func (m *MMU) Read32(vaddr uint64) (uint32, error) {
	v, err := m.read(vaddr, 4)
	return uint32(v), err
}

// Read64 reads a big-endian doubleword at a virtual address.
func (m *MMU) Read64(vaddr uint64) (uint64, error) {
	return m.read(vaddr, 8)
}

// Write8 writes a byte at a virtual address.
func (m *MMU) Write8(vaddr uint64, value uint8) error {
	return m.write(vaddr, 1, uint64(value))
}

// Write16 writes a big-endian halfword at a virtual address.
func (m *MMU) Write16(vaddr uint64, value uint16) error {
	return m.write(vaddr, 2, uint64(value))
}

// Write32 writes a big-endian word at a virtual address.
func (m *MMU) Write32(vaddr uint64, value uint32) error {
	return m.write(vaddr, 4, uint64(value))
}

// Write64 writes a big-endian doubleword at a virtual address.
func (m *MMU) Write64(vaddr uint64, value uint64) error {
	return m.write(vaddr, 8, value)
}
