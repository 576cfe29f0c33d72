// Package loader reads cartridge images and MIPS ELF executables.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/vr4300/translate"
)

var f = translate.From

// Errors returned by the loaders.
var (
	ErrUnknownFormat = errors.New(f("unknown image format"))
	ErrTruncated     = errors.New(f("image truncated"))
	ErrNotMIPS       = errors.New(f("not a big-endian MIPS ELF file"))
)

// Writer is the memory a Program is installed into.
type Writer interface {
	WriteBytes(vaddr uint64, data []byte) error
}

// Open reads path as a MIPS ELF executable when it starts with the ELF
// magic number and as a cartridge image otherwise. Exactly one of the
// returned values is non-nil on success.
func Open(path string) (*Image, *Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read program: %w", err)
	}

	if IsELF(data) {
		prog, err := LoadELF(path)
		if err != nil {
			return nil, nil, err
		}
		return nil, prog, nil
	}

	img, err := Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse ROM %s: %w", path, err)
	}
	return img, nil, nil
}
