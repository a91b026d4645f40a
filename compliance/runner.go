package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/timing/core"
)

// DefaultTimeout is the cycle limit used when a Runner has none.
const DefaultTimeout uint64 = 1_000_000

// ErrImageNotFound is reported for tests whose image is missing.
var ErrImageNotFound = errors.New("test image not found")

// Result holds the outcome of a single test image.
type Result struct {
	// Name identifies the test, e.g. rv64ui-p-add.
	Name string `json:"name"`

	// Passed is set when the image wrote the pass value to tohost.
	Passed bool `json:"passed"`

	// Code is the failing check number (tohost>>1) for failed tests.
	Code uint64 `json:"code,omitempty"`

	// TimedOut is set when the cycle limit ended the run.
	TimedOut bool `json:"timed_out,omitempty"`

	// Instructions is the number of instructions executed.
	Instructions uint64 `json:"instructions"`

	// Cycles is the timing model's estimate, when timing is enabled.
	Cycles uint64 `json:"cycles,omitempty"`

	// Error describes why the image could not be run.
	Error string `json:"error,omitempty"`

	// WallTime is the host time the run took.
	WallTime time.Duration `json:"wall_time_ns"`
}

// Runner executes riscv-tests images from a directory.
type Runner struct {
	// Dir holds the images. A test named n is read from n.bin, or from
	// the ELF file n when no flat binary exists.
	Dir string

	// Timeout is the cycle limit per test. Zero means DefaultTimeout.
	Timeout uint64

	// Timing runs each image under the timing model and reports cycles.
	Timing bool
}

// Run executes every named test in order. Missing or unloadable images
// are reported in their Result rather than stopping the run; only context
// cancellation returns an error.
func (r *Runner) Run(ctx context.Context, names []string) ([]Result, error) {
	results := make([]Result, 0, len(names))

	for _, name := range names {
		result, err := r.runOne(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return results, err
			}
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	return results, nil
}

func (r *Runner) timeout() uint64 {
	if r.Timeout == 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

func (r *Runner) imagePath(name string) (string, error) {
	for _, path := range []string{
		filepath.Join(r.Dir, name+".bin"),
		filepath.Join(r.Dir, name),
	} {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
}

func (r *Runner) runOne(ctx context.Context, name string) (Result, error) {
	result := Result{Name: name}

	path, err := r.imagePath(name)
	if err != nil {
		return result, err
	}

	prog, err := loader.Load(path)
	if err != nil {
		return result, err
	}

	xlen := prog.XLEN
	if xlen == 0 {
		xlen = XLENOf(name)
	}

	tohost := emu.DefaultToHostAddress
	if prog.HasToHost {
		tohost = prog.ToHost
	}

	timeout := r.timeout()
	e := emu.NewEmulator(
		emu.WithXLEN(xlen),
		emu.WithPredicate(emu.AnyPredicate(
			emu.ToHostPredicate(tohost),
			emu.TimeoutPredicate(timeout),
		)),
	)
	if err := prog.LoadInto(e); err != nil {
		return result, err
	}

	start := time.Now()

	var value uint64
	if r.Timing {
		c := core.NewCore(e)
		value, err = c.Run(ctx)
		result.Cycles = c.Stats().Cycles
	} else {
		value, err = e.Run(ctx)
	}

	result.WallTime = time.Since(start)
	result.Instructions = e.InstructionCount()
	if err != nil {
		return result, err
	}

	switch {
	case value == emu.ToHostPass:
		result.Passed = true
	case e.Cycle() >= timeout:
		result.TimedOut = true
	default:
		result.Code = value >> 1
	}

	return result, nil
}

// Summary counts passed and failed results.
func Summary(results []Result) (passed, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// PrintResults writes one line per result in the CLI's format followed by
// a summary line.
func PrintResults(w io.Writer, results []Result) {
	for _, r := range results {
		switch {
		case r.Error != "":
			_, _ = fmt.Fprintf(w, "ERROR: %s: %s\n", r.Name, r.Error)
		case r.Passed:
			_, _ = fmt.Fprintf(w, "PASS: %s\n", r.Name)
		case r.TimedOut:
			_, _ = fmt.Fprintf(w, "TIMEOUT: %s\n", r.Name)
		default:
			_, _ = fmt.Fprintf(w, "FAIL(%d): %s\n", r.Code, r.Name)
		}
	}

	passed, failed := Summary(results)
	_, _ = fmt.Fprintf(w, "%d passed, %d failed\n", passed, failed)
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
