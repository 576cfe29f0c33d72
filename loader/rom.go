package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// ByteOrder identifies how a cartridge dump is laid out on disk.
type ByteOrder uint8

// Cartridge dump layouts, named by their usual file extensions.
const (
	// OrderZ64 is the native big-endian layout.
	OrderZ64 ByteOrder = iota
	// OrderV64 swaps the bytes of every halfword.
	OrderV64
	// OrderN64 reverses the bytes of every word.
	OrderN64
)

func (o ByteOrder) String() string {
	switch o {
	case OrderZ64:
		return "z64"
	case OrderV64:
		return "v64"
	case OrderN64:
		return "n64"
	}
	return "unknown"
}

// First word of a cartridge header in each layout.
const (
	magicZ64 = 0x80371240
	magicV64 = 0x37804012
	magicN64 = 0x40123780
)

// HeaderSize is the size of the cartridge header.
const HeaderSize = 0x40

// Image is a cartridge image normalized to big-endian order.
type Image struct {
	// Data is the whole cartridge in big-endian order.
	Data []byte

	// Order is the layout the image was read in.
	Order ByteOrder

	ClockRate  uint32
	EntryPoint uint64
	Release    uint32
	CRC1       uint32
	CRC2       uint32
	Title      string
	GameCode   string
	Version    uint8
}

// Load reads a cartridge image from a file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM file: %w", err)
	}

	img, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ROM %s: %w", path, err)
	}
	return img, nil
}

// Parse detects the layout of a cartridge dump, normalizes it to big-endian
// order and decodes the header. The input is not modified.
func Parse(data []byte) (*Image, error) {
	if len(data) < HeaderSize {
		return nil, ErrTruncated
	}

	img := &Image{Data: make([]byte, len(data))}
	copy(img.Data, data)

	switch binary.BigEndian.Uint32(data) {
	case magicZ64:
		img.Order = OrderZ64
	case magicV64:
		if len(data)%2 != 0 {
			return nil, ErrTruncated
		}
		img.Order = OrderV64
		swap16(img.Data)
	case magicN64:
		if len(data)%4 != 0 {
			return nil, ErrTruncated
		}
		img.Order = OrderN64
		swap32(img.Data)
	default:
		return nil, ErrUnknownFormat
	}

	img.parseHeader()
	return img, nil
}

func (img *Image) parseHeader() {
	h := img.Data[:HeaderSize]
	img.ClockRate = binary.BigEndian.Uint32(h[0x04:])
	img.EntryPoint = uint64(int64(int32(binary.BigEndian.Uint32(h[0x08:]))))
	img.Release = binary.BigEndian.Uint32(h[0x0C:])
	img.CRC1 = binary.BigEndian.Uint32(h[0x10:])
	img.CRC2 = binary.BigEndian.Uint32(h[0x14:])
	img.Title = string(bytes.TrimRight(h[0x20:0x34], " \x00"))
	img.GameCode = string(bytes.TrimRight(h[0x3B:0x3F], " \x00"))
	img.Version = h[0x3F]
}

// swap16 swaps the bytes of every halfword in place.
func swap16(data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}
}

// swap32 reverses the bytes of every word in place.
func swap32(data []byte) {
	for i := 0; i+3 < len(data); i += 4 {
		data[i], data[i+1], data[i+2], data[i+3] = data[i+3], data[i+2], data[i+1], data[i]
	}
}
