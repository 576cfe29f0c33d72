// Package main provides the entry point for the VR4300 emulator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/sarchlab/vr4300/config"
	"github.com/sarchlab/vr4300/emu"
	"github.com/sarchlab/vr4300/loader"
	"github.com/sarchlab/vr4300/script"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitFault = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	configPath string
	hle        bool
	max        uint64
	scriptPath string
	verbose    bool
	program    string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("vr4300", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to machine configuration JSON file")
	fs.BoolVar(&opts.hle, "hle", false, "Skip the boot code and start at the cartridge entry")
	fs.Uint64Var(&opts.max, "max", 0, "Stop after this many instructions (0 = no limit)")
	fs.StringVar(&opts.scriptPath, "script", "", "Run a Starlark script instead of free-running")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(stderr, "Usage: vr4300 [options] <rom.z64|program.elf>\n")
		_, _ = fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, errors.New("missing program path")
	}
	opts.program = fs.Arg(0)

	return opts, nil
}

// loadConfig applies the command line on top of the configuration file.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.hle {
		cfg.Boot = config.BootHLE
	}
	if opts.max > 0 {
		cfg.MaxInstructions = opts.max
	}
	if opts.verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)

	tty := false
	if file, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(file.Fd()))
	}
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   tty,
		DisableColors: !tty,
		FullTimestamp: true,
	})
	return logger
}

// newEmulator builds the machine and installs the program, which may be a
// cartridge image or a MIPS ELF executable.
func newEmulator(path string, cfg *config.Config, logger *logrus.Logger) (*emu.Emulator, error) {
	img, prog, err := loader.Open(path)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.EmulatorOptions(), emu.WithLogger(logger))

	if prog != nil {
		e := emu.NewEmulator(opts...)
		if err := prog.Install(e.MMU()); err != nil {
			return nil, err
		}
		e.RegFile().PC = prog.EntryPoint
		e.RegFile().NextPC = prog.EntryPoint + 4

		logger.WithFields(logrus.Fields{
			"entry":    fmt.Sprintf("0x%016x", prog.EntryPoint),
			"segments": len(prog.Segments),
		}).Info("loaded ELF program")
		return e, nil
	}

	logger.WithFields(logrus.Fields{
		"title": img.Title,
		"code":  img.GameCode,
		"order": img.Order.String(),
		"entry": fmt.Sprintf("0x%016x", img.EntryPoint),
		"size":  len(img.Data),
	}).Info("loaded cartridge")

	return emu.NewEmulator(append(opts, emu.WithROM(img.Data))...), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return exitError
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitError
	}

	logger := newLogger(stderr, cfg.Level())

	e, err := newEmulator(opts.program, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return exitError
	}

	if opts.scriptPath != "" {
		runner := script.NewRunner(e, script.WithOutput(stdout), script.WithLogger(logger))
		if _, err := runner.ExecFile(opts.scriptPath); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		return report(e, emu.StepResult{Fault: e.Fault()}, stdout)
	}

	_, result := e.Run(0)
	return report(e, result, stdout)
}

// report prints the final machine state and picks the exit code. SYSCALL
// and BREAK end a program normally.
func report(e *emu.Emulator, result emu.StepResult, stdout io.Writer) int {
	rf := e.RegFile()
	_, _ = fmt.Fprintf(stdout, "Instructions executed: %d\n", e.InstructionCount())
	_, _ = fmt.Fprintf(stdout, "PC: 0x%016x\n", rf.PC)

	if errors.Is(result.Err, emu.ErrMaxInstructions) {
		_, _ = fmt.Fprintf(stdout, "Stopped: instruction limit reached\n")
	}

	flt := result.Fault
	if flt == nil {
		return exitOK
	}
	_, _ = fmt.Fprintf(stdout, "Stopped: %v\n", flt)

	switch flt.Kind {
	case emu.FaultSyscall, emu.FaultBreakpoint:
		return exitOK
	}
	return exitFault
}
