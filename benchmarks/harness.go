// Package benchmarks runs MIPS workloads through the emulator, checks their
// results and reports throughput and data cache behavior.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/vr4300/cache"
	"github.com/sarchlab/vr4300/emu"
)

// ProgramBase is where workloads are loaded (KSEG0, the HLE entry point).
const ProgramBase uint64 = emu.HLEEntry

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Instructions is the number of instructions executed before the
	// final SYSCALL
	Instructions uint64 `json:"instructions"`

	// Result is v0 when the workload stopped
	Result uint64 `json:"result"`

	// Passed is set when the workload ended at SYSCALL with the expected
	// result
	Passed bool `json:"passed"`

	// Fault describes how the workload stopped, if not at SYSCALL
	Fault string `json:"fault,omitempty"`

	// DCacheHits/Misses (if cache enabled)
	DCacheHits   uint64 `json:"dcache_hits,omitempty"`
	DCacheMisses uint64 `json:"dcache_misses,omitempty"`

	// WallTime is the actual time taken to run the workload
	WallTime time.Duration `json:"wall_time_ns"`

	// InstructionsPerSecond is the emulation throughput
	InstructionsPerSecond float64 `json:"instructions_per_second"`
}

// Benchmark defines a single workload.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Setup prepares the emulator state (e.g., initialize registers, memory)
	Setup func(e *emu.Emulator)

	// Program is the MIPS machine code, loaded at ProgramBase
	Program []uint32

	// ExpectedResult is the value v0 must hold at the final SYSCALL
	ExpectedResult uint64
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableDCache places a data cache in front of RDRAM
	EnableDCache bool

	// DCache is the data cache geometry
	DCache cache.Config

	// MaxInstructions bounds each workload
	MaxInstructions uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableDCache:    true,
		DCache:          cache.DefaultDataCacheConfig(),
		MaxInstructions: 1_000_000,
		Output:          os.Stdout,
		Verbose:         false,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	opts := []emu.EmulatorOption{emu.WithMaxInstructions(h.config.MaxInstructions)}
	if h.config.EnableDCache {
		opts = append(opts, emu.WithDataCache(h.config.DCache))
	}
	e := emu.NewEmulator(opts...)

	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	for i, word := range bench.Program {
		if err := e.MMU().Write32(ProgramBase+uint64(4*i), word); err != nil {
			result.Fault = err.Error()
			return result
		}
	}
	e.RegFile().PC = ProgramBase
	e.RegFile().NextPC = ProgramBase + 4

	if bench.Setup != nil {
		bench.Setup(e)
	}

	// Run and measure time
	start := time.Now()
	n, step := e.Run(0)
	result.WallTime = time.Since(start)

	result.Instructions = n
	result.Result = e.RegFile().ReadReg(regV0)
	if result.WallTime > 0 {
		result.InstructionsPerSecond = float64(n) / result.WallTime.Seconds()
	}

	switch {
	case step.Err != nil:
		result.Fault = step.Err.Error()
	case step.Fault == nil:
		result.Fault = "stopped without a fault"
	case step.Fault.Kind != emu.FaultSyscall:
		result.Fault = step.Fault.Error()
	default:
		result.Passed = result.Result == bench.ExpectedResult
	}

	if dc := e.DataCache(); dc != nil {
		stats := dc.Stats()
		result.DCacheHits = stats.Hits
		result.DCacheMisses = stats.Misses
	}

	if h.config.Verbose {
		_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d instructions, v0=%d\n",
			bench.Name, result.Instructions, result.Result)
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== VR4300 Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}

		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s [%s]\n", r.Name, status)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintf(h.config.Output, "  Result (v0):  %d\n", r.Result)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions: %d\n", r.Instructions)
		if r.Fault != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Stopped by:   %s\n", r.Fault)
		}

		if r.DCacheHits > 0 || r.DCacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- D-Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.DCacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.DCacheMisses)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v (%.0f inst/s)\n", r.WallTime, r.InstructionsPerSecond)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,passed,result,instructions,dcache_hits,dcache_misses,wall_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%t,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Passed,
			r.Result,
			r.Instructions,
			r.DCacheHits,
			r.DCacheMisses,
			r.WallTime.Nanoseconds(),
		)
	}
}

// BenchmarkReport is the JSON document written by PrintJSON.
type BenchmarkReport struct {
	Metadata ReportMetadata    `json:"metadata"`
	Results  []BenchmarkResult `json:"results"`
	Summary  ReportSummary     `json:"summary"`
}

// ReportMetadata describes the run.
type ReportMetadata struct {
	Timestamp     string `json:"timestamp"`
	DCacheEnabled bool   `json:"dcache_enabled"`
}

// ReportSummary aggregates all results.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// Passed is the number of benchmarks that produced the expected result
	Passed int `json:"passed"`

	// TotalInstructions is the sum of all instructions executed
	TotalInstructions uint64 `json:"total_instructions"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	summary := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		if r.Passed {
			summary.Passed++
		}
		summary.TotalInstructions += r.Instructions
		summary.TotalWallTime += r.WallTime
	}
	return summary
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			DCacheEnabled: h.config.EnableDCache,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
