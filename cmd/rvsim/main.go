// Package main provides the entry point for rvsim, a RISC-V hart
// simulator.
//
// Usage:
//
//	rvsim [flags] <image>
//
// The image is either a flat binary, loaded at 0x80000000, or a RISC-V ELF
// executable. The program reports its result through the tohost word (or
// a halt device); rvsim prints PASS, FAIL(<result>) or TIMEOUT(<cycles>)
// and exits 0 only on a pass.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

type options struct {
	timeout    uint64
	debug      bool
	tohost     uint64
	halt       uint64
	console    uint64
	xlen       int
	memSize    uint64
	timing     bool
	configPath string
	cpuProfile string
	verbose    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, string, error) {
	opts := &options{}

	fs := flag.NewFlagSet("rvsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Uint64Var(&opts.timeout, "timeout", 0, "Halt after this many cycles (0 = no limit)")
	fs.BoolVar(&opts.debug, "debug", false, "Trace every retired instruction to stderr")
	fs.Uint64Var(&opts.tohost, "tohost", 0, "Address of the tohost word (default: ELF symbol or 0x80001000)")
	fs.Uint64Var(&opts.halt, "halt", 0, "Address of a write-to-halt device (0 = none)")
	fs.Uint64Var(&opts.console, "console", 0, "Address of a byte console device (0 = none)")
	fs.IntVar(&opts.xlen, "xlen", 0, "Register width, 32 or 64 (default: from the image, else 64)")
	fs.Uint64Var(&opts.memSize, "mem", emu.DefaultMemorySize, "Memory size in bytes")
	fs.BoolVar(&opts.timing, "timing", false, "Enable the timing model and print its statistics")
	fs.StringVar(&opts.configPath, "config", "", "Path to timing configuration JSON file")
	fs.StringVar(&opts.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: rvsim [options] <image>\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return nil, "", errors.New("expected exactly one image")
	}

	if opts.xlen != 0 && opts.xlen != 32 && opts.xlen != 64 {
		return nil, "", fmt.Errorf("invalid -xlen %d", opts.xlen)
	}

	return opts, fs.Arg(0), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, path, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Error creating CPU profile: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Error starting CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	prog, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading program: %v\n", err)
		return 1
	}

	if opts.verbose {
		fmt.Fprintf(stdout, "Loaded: %s\n", path)
		fmt.Fprintf(stdout, "Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Fprintf(stdout, "Segments: %d\n", len(prog.Segments))
	}

	e, err := newEmulator(opts, prog, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var c *core.Core
	if opts.timing {
		config := latency.DefaultTimingConfig()
		if opts.configPath != "" {
			config, err = latency.LoadConfig(opts.configPath)
			if err != nil {
				fmt.Fprintf(stderr, "Error loading timing config: %v\n", err)
				return 1
			}
		}
		if err := config.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error in timing config: %v\n", err)
			return 1
		}
		c = core.NewCore(e, core.WithTimingConfig(config))
	}

	start := time.Now()

	var result uint64
	if c != nil {
		result, err = c.Run(context.Background())
	} else {
		result, err = e.Run(context.Background())
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if opts.verbose {
		elapsed := time.Since(start)
		fmt.Fprintf(stdout, "Instructions executed: %d\n", e.InstructionCount())
		fmt.Fprintf(stdout, "Elapsed time: %v\n", elapsed)
	}
	if c != nil {
		printTiming(stdout, c.Stats())
	}

	return report(stdout, path, result, e.Cycle(), opts.timeout)
}

func newEmulator(opts *options, prog *loader.Program, stdout, stderr io.Writer) (*emu.Emulator, error) {
	xlen := opts.xlen
	if xlen == 0 {
		xlen = prog.XLEN
	}
	if xlen == 0 {
		xlen = 64
	}

	tohost := opts.tohost
	if tohost == 0 {
		tohost = emu.DefaultToHostAddress
		if prog.HasToHost {
			tohost = prog.ToHost
		}
	}

	preds := []emu.Predicate{emu.ToHostPredicate(tohost)}
	if opts.timeout > 0 {
		preds = append(preds, emu.TimeoutPredicate(opts.timeout))
	}

	emuOpts := []emu.EmulatorOption{
		emu.WithXLEN(xlen),
		emu.WithMemorySize(opts.memSize),
		emu.WithStdout(stdout),
	}
	if opts.halt != 0 {
		dev := emu.NewHaltDevice(opts.halt)
		emuOpts = append(emuOpts, emu.WithDevice(dev))
		preds = append(preds, emu.HaltPredicate(dev))
	}
	if opts.console != 0 {
		emuOpts = append(emuOpts, emu.WithConsole(opts.console))
	}
	if opts.debug {
		emuOpts = append(emuOpts, emu.WithTrace(stderr))
	}
	emuOpts = append(emuOpts, emu.WithPredicate(emu.AnyPredicate(preds...)))

	e := emu.NewEmulator(emuOpts...)
	if err := prog.LoadInto(e); err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	return e, nil
}

// report prints the outcome line(s) and returns the process exit code.
// A pass wins over a timeout on the same cycle. A timeout is reported on
// its own line before the generic failure line.
func report(w io.Writer, path string, result, cycles, timeout uint64) int {
	if result == emu.ToHostPass {
		fmt.Fprintf(w, "PASS: %s\n", path)
		return 0
	}

	if timeout > 0 && cycles >= timeout {
		fmt.Fprintf(w, "TIMEOUT(%d): %s\n", cycles, path)
	}

	fmt.Fprintf(w, "FAIL(%d): %s\n", result, path)
	return 1
}

func printTiming(w io.Writer, stats core.Stats) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Total Instructions: %d\n", stats.Instructions)
	fmt.Fprintf(w, "Total Cycles: %d\n", stats.Cycles)
	fmt.Fprintf(w, "CPI: %.2f\n", stats.CPI())
	fmt.Fprintf(w, "Traps: %d\n", stats.Traps)
	fmt.Fprintf(w, "Taken branches: %d\n", stats.TakenBranches)
	fmt.Fprintf(w, "I-Cache: %d hits, %d misses\n", stats.ICacheHits, stats.ICacheMisses)
	fmt.Fprintf(w, "D-Cache: %d hits, %d misses\n", stats.DCacheHits, stats.DCacheMisses)
	fmt.Fprintf(w, "\n")
}
