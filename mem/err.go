package mem

import (
	"errors"

	"github.com/sarchlab/vr4300/translate"
)

var f = translate.From

var (
	// ErrTranslation reports a virtual address outside every segment.
	ErrTranslation = errors.New(f("address outside all segments"))
	// ErrWindowOverlap reports a window that collides with a mapped one.
	ErrWindowOverlap = errors.New(f("window overlaps a mapped window"))
	// ErrWindowUnknown reports a lookup of a window name that is not mapped.
	ErrWindowUnknown = errors.New(f("window not mapped"))
)

// AddressError ties a failed access to the virtual address that caused it.
type AddressError struct {
	Addr uint64
	Err  error
}

func (err *AddressError) Error() string {
	return f("address 0x%016x: %v", err.Addr, err.Err)
}

func (err *AddressError) Unwrap() error {
	return err.Err
}
