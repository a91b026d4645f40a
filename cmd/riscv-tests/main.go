// Command riscv-tests runs riscv-tests images through the emulator.
//
// Usage:
//
//	go run ./cmd/riscv-tests [flags] [test ...]
//
// Flags:
//
//	-dir      Directory holding the test images (default: riscv-tests/isa)
//	-suite    Comma-separated suites to run, e.g. rv64ui,rv64um
//	-timeout  Cycle limit per test
//	-timing   Also estimate cycles with the timing model
//	-json     Output results as JSON
//
// Example:
//
//	# Run the 32-bit integer suite
//	go run ./cmd/riscv-tests -suite rv32ui
//
//	# Run two tests and save a JSON report
//	go run ./cmd/riscv-tests -json rv64ui-p-add rv64ui-p-sub > report.json
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/sarchlab/rvsim/compliance"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("riscv-tests", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "riscv-tests/isa", "Directory holding the test images")
	suites := fs.String("suite", "", "Comma-separated suites to run")
	timeout := fs.Uint64("timeout", compliance.DefaultTimeout, "Cycle limit per test")
	timing := fs.Bool("timing", false, "Estimate cycles with the timing model")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	names, err := testNames(*suites, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	runner := &compliance.Runner{Dir: *dir, Timeout: *timeout, Timing: *timing}
	results, err := runner.Run(ctx, names)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOutput {
		if err := compliance.WriteJSON(stdout, results); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else {
		compliance.PrintResults(stdout, results)
	}

	if _, failed := compliance.Summary(results); failed > 0 {
		return 1
	}
	return 0
}

// testNames expands the suite list and appends the explicit names. With
// neither given, every known suite runs.
func testNames(suites string, explicit []string) ([]string, error) {
	var keys []string
	if suites != "" {
		keys = strings.Split(suites, ",")
	} else if len(explicit) == 0 {
		for k := range compliance.Suites {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var names []string
	for _, k := range keys {
		suite, ok := compliance.Suites[strings.TrimSpace(k)]
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", k)
		}
		names = append(names, suite...)
	}

	return append(names, explicit...), nil
}
