// Package script drives an emulator from Starlark programs.
//
// A script sees the machine through a small set of builtins:
//
//	step(n=1)            execute up to n instructions, return the count
//	run(max=0)           run until a fault, the limit, or max instructions
//	reg(name)            read a GPR by ABI or numeric name, or "pc", "hi", "lo"
//	set_reg(name, value) write a register
//	cp0(reg)             read a CP0 register by index or name
//	read8..read64(addr)  read memory through the MMU
//	write8..write64(addr, value)
//	disasm(addr)         disassemble the word at addr
//	halted()             whether a fault stopped the machine
//	fault()              the last fault as a struct, or None
//	count()              instructions executed since reset
//	reset()              reset the machine
package script

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/sarchlab/vr4300/emu"
	"github.com/sarchlab/vr4300/insts"
	"github.com/sarchlab/vr4300/translate"
)

var f = translate.From

// ErrValueRange is returned when a script passes an integer that does not
// fit the register or memory width.
var ErrValueRange = errors.New(f("value out of range"))

// Runner executes Starlark scripts against an emulator.
type Runner struct {
	emu     *emu.Emulator
	decoder *insts.Decoder
	out     io.Writer
	logger  *logrus.Logger

	// last is the most recent fault seen by step or run, under either
	// fault policy.
	last *emu.Fault
}

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithOutput sets where print() writes.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner bound to e.
func NewRunner(e *emu.Emulator, opts ...Option) *Runner {
	r := &Runner{
		emu:     e,
		decoder: insts.NewDecoder(),
		out:     os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logrus.New()
		r.logger.SetOutput(io.Discard)
	}

	return r
}

// ExecFile runs the script at path.
func (r *Runner) ExecFile(path string) (starlark.StringDict, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return r.Exec(path, src)
}

// Exec runs a script. src may be a string, a []byte or an io.Reader. The
// script's global variables are returned.
func (r *Runner) Exec(filename string, src any) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			_, _ = fmt.Fprintln(r.out, msg)
		},
	}

	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, r.builtins())
	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			r.logger.WithField("script", filename).Debug(evalErr.Backtrace())
		}
		return nil, fmt.Errorf("script %s failed: %w", filename, err)
	}

	r.logger.WithFields(logrus.Fields{
		"script":       filename,
		"instructions": r.emu.InstructionCount(),
	}).Debug(f("script finished"))

	return globals, nil
}

func (r *Runner) builtins() starlark.StringDict {
	b := starlark.StringDict{}
	add := func(name string, fn func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error)) {
		b[name] = starlark.NewBuiltin(name, fn)
	}

	add("step", r.step)
	add("run", r.run)
	add("reg", r.reg)
	add("set_reg", r.setReg)
	add("cp0", r.cp0)
	for _, size := range []int{1, 2, 4, 8} {
		add(fmt.Sprintf("read%d", size*8), r.read(size))
		add(fmt.Sprintf("write%d", size*8), r.write(size))
	}
	add("disasm", r.disasm)
	add("halted", r.halted)
	add("fault", r.fault)
	add("count", r.count)
	add("reset", r.reset)

	return b
}

// toUint64 accepts any integer that fits in 64 bits, signed or unsigned.
func toUint64(v starlark.Int) (uint64, error) {
	if u, ok := v.Uint64(); ok {
		return u, nil
	}
	if s, ok := v.Int64(); ok {
		return uint64(s), nil
	}
	return 0, fmt.Errorf("%v: %w", v, ErrValueRange)
}

func (r *Runner) note(result emu.StepResult) {
	if result.Fault != nil {
		r.last = result.Fault
	}
}

func (r *Runner) step(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	n := 1
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "n?", &n); err != nil {
		return nil, err
	}

	executed := 0
	for ; executed < n; executed++ {
		result := r.emu.Step()
		r.note(result)
		if result.Err != nil || result.Fault != nil {
			break
		}
	}
	return starlark.MakeInt(executed), nil
}

func (r *Runner) run(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	max := starlark.MakeInt(0)
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "max?", &max); err != nil {
		return nil, err
	}
	limit, err := toUint64(max)
	if err != nil {
		return nil, err
	}

	n, result := r.emu.Run(limit)
	r.note(result)
	return starlark.MakeUint64(n), nil
}

func (r *Runner) reg(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}

	rf := r.emu.RegFile()
	switch name {
	case "pc":
		return starlark.MakeUint64(rf.PC), nil
	case "hi":
		return starlark.MakeUint64(rf.HI), nil
	case "lo":
		return starlark.MakeUint64(rf.LO), nil
	}

	v, err := rf.ReadRegByName(name)
	if err != nil {
		return nil, err
	}
	return starlark.MakeUint64(v), nil
}

func (r *Runner) setReg(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name  string
		value starlark.Int
	)
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &name, &value); err != nil {
		return nil, err
	}
	v, err := toUint64(value)
	if err != nil {
		return nil, err
	}

	rf := r.emu.RegFile()
	switch name {
	case "pc":
		rf.PC, rf.NextPC = v, v+4
	case "hi":
		rf.HI = v
	case "lo":
		rf.LO = v
	default:
		if err := rf.WriteRegByName(name, v); err != nil {
			return nil, err
		}
	}
	return starlark.None, nil
}

func (r *Runner) cp0(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var which starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &which); err != nil {
		return nil, err
	}

	index := -1
	switch w := which.(type) {
	case starlark.Int:
		if i, ok := w.Int64(); ok && i >= 0 && i < 32 {
			index = int(i)
		}
	case starlark.String:
		for i, name := range emu.CP0RegNames {
			if name == string(w) {
				index = i
			}
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%s: %w %v", fn.Name(), emu.ErrUnknownRegister, which)
	}

	cp0 := r.emu.CP0()
	if cp0.Is32Bit(uint8(index)) {
		return starlark.MakeUint64(uint64(cp0.Read32(uint8(index)))), nil
	}
	return starlark.MakeUint64(cp0.Read64(uint8(index))), nil
}

func (r *Runner) read(size int) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var addr starlark.Int
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr); err != nil {
			return nil, err
		}
		vaddr, err := toUint64(addr)
		if err != nil {
			return nil, err
		}

		data, err := r.emu.MMU().ReadBytes(vaddr, size)
		if err != nil {
			return nil, err
		}
		var v uint64
		for _, b := range data {
			v = v<<8 | uint64(b)
		}
		return starlark.MakeUint64(v), nil
	}
}

func (r *Runner) write(size int) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var addr, value starlark.Int
		if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &addr, &value); err != nil {
			return nil, err
		}
		vaddr, err := toUint64(addr)
		if err != nil {
			return nil, err
		}
		v, err := toUint64(value)
		if err != nil {
			return nil, err
		}
		if size < 8 && v>>(8*size) != 0 {
			return nil, fmt.Errorf("%s: %w", fn.Name(), ErrValueRange)
		}

		data := make([]byte, size)
		for i := range data {
			data[i] = byte(v >> (8 * (size - 1 - i)))
		}
		if err := r.emu.MMU().WriteBytes(vaddr, data); err != nil {
			return nil, err
		}
		return starlark.None, nil
	}
}

func (r *Runner) disasm(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var addr starlark.Int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr); err != nil {
		return nil, err
	}
	vaddr, err := toUint64(addr)
	if err != nil {
		return nil, err
	}

	word, err := r.emu.MMU().Read32(vaddr)
	if err != nil {
		return nil, err
	}
	return starlark.String(r.decoder.Decode(word).String()), nil
}

func (r *Runner) halted(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.Bool(r.emu.Halted()), nil
}

func (r *Runner) fault(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}

	flt := r.last
	if flt == nil {
		return starlark.None, nil
	}
	return starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"kind":          starlark.String(flt.Kind.String()),
		"pc":            starlark.MakeUint64(flt.PC),
		"address":       starlark.MakeUint64(flt.Address),
		"word":          starlark.MakeUint64(uint64(flt.Word)),
		"in_delay_slot": starlark.Bool(flt.InDelaySlot),
		"message":       starlark.String(flt.Error()),
	}), nil
}

func (r *Runner) count(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeUint64(r.emu.InstructionCount()), nil
}

func (r *Runner) reset(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	r.emu.Reset()
	r.last = nil
	return starlark.None, nil
}
