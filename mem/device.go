package mem

// StubSentinel is the byte returned by reads of unmodeled windows.
const StubSentinel byte = 0x00

// OpenBus is the byte returned by reads past the end of a backed store.
const OpenBus byte = 0xFF

// RAMSize is the size of the built-in RDRAM.
const RAMSize = 4 * 1024 * 1024

// DefaultSRAMSize is the size of the cartridge save RAM.
const DefaultSRAMSize = 128 * 1024

// Device is the byte primitive behind a physical window. Offsets are
// relative to the start of the device.
type Device interface {
	Read8(offset uint64) byte
	Write8(offset uint64, value byte)
}

// Stub stands in for a peripheral that is not modeled.
type Stub struct{}

// Read8 returns StubSentinel.
func (Stub) Read8(uint64) byte { return StubSentinel }

// Write8 discards the value.
func (Stub) Write8(uint64, byte) {}

// RAM is a flat byte-addressable store.
type RAM struct {
	data []byte
}

// NewRAM creates a zeroed RAM of the given size.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Size returns the RAM size in bytes.
func (r *RAM) Size() uint64 {
	return uint64(len(r.data))
}

// Read8 reads a byte. Offsets past the end read OpenBus.
func (r *RAM) Read8(offset uint64) byte {
	if offset >= uint64(len(r.data)) {
		return OpenBus
	}
	return r.data[offset]
}

// Write8 writes a byte. Offsets past the end are ignored.
func (r *RAM) Write8(offset uint64, value byte) {
	if offset >= uint64(len(r.data)) {
		return
	}
	r.data[offset] = value
}

// Read16 reads a big-endian halfword.
func (r *RAM) Read16(offset uint64) uint16 {
	return uint16(r.Read8(offset))<<8 | uint16(r.Read8(offset+1))
}

// Write16 writes a big-endian halfword.
func (r *RAM) Write16(offset uint64, value uint16) {
	r.Write8(offset, byte(value>>8))
	r.Write8(offset+1, byte(value))
}

// Load copies data into RAM starting at offset, truncating at the end.
func (r *RAM) Load(offset uint64, data []byte) {
	if offset >= uint64(len(r.data)) {
		return
	}
	copy(r.data[offset:], data)
}

// ROM is read-only cartridge storage.
type ROM struct {
	data []byte
}

// NewROM wraps a ROM image. The slice is not copied.
func NewROM(data []byte) *ROM {
	return &ROM{data: data}
}

// Size returns the image size in bytes.
func (r *ROM) Size() uint64 {
	return uint64(len(r.data))
}

// Read8 reads a byte. Offsets past the image read OpenBus.
func (r *ROM) Read8(offset uint64) byte {
	if offset >= uint64(len(r.data)) {
		return OpenBus
	}
	return r.data[offset]
}

// Write8 is ignored.
func (r *ROM) Write8(uint64, byte) {}

// SRAM is the cartridge's writable save memory.
type SRAM struct {
	RAM
}

// NewSRAM creates a zeroed SRAM of the given size.
func NewSRAM(size int) *SRAM {
	return &SRAM{RAM: RAM{data: make([]byte, size)}}
}
