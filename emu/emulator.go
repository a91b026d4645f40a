package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rvsim/insts"
)

// ErrMaxInstructions is returned by Step once the instruction limit set
// with WithMaxInstructions is reached.
var ErrMaxInstructions = errors.New("max instructions reached")

// cancelCheckInterval is how many retirements Run executes between context
// checks.
const cancelCheckInterval = 4096

// HaltReason tells why the emulator stopped.
type HaltReason uint8

// Halt reasons.
const (
	HaltNone HaltReason = iota
	HaltByPredicate
	HaltLeftMemory
)

func (r HaltReason) String() string {
	switch r {
	case HaltByPredicate:
		return "predicate"
	case HaltLeftMemory:
		return "left memory"
	default:
		return "running"
	}
}

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true once the emulator has stopped.
	Halted bool

	// Result is the halt value if Halted is true.
	Result uint64

	// PC is the address the instruction was fetched from.
	PC uint64

	// Inst is the decoded instruction, nil when nothing was fetched.
	Inst *insts.Instruction

	// Access is the data access the instruction made.
	Access MemAccess

	// Trap is the cause raised by the instruction, if any.
	Trap *Cause

	// Err is set if an error occurred outside the architectural model.
	Err error
}

// Emulator runs a single RISC-V hart: it fetches, decodes, executes and
// retires one instruction per step.
type Emulator struct {
	xlen       int
	memSize    uint64
	memory     *Memory
	bus        *SystemBus
	hart       *Hart
	extensions []Extension
	custom     []Extension
	devices    []Device
	predicate  Predicate
	state      *State

	// I/O
	stdout io.Writer
	trace  io.Writer

	// Execution state
	instructionCount uint64
	cycle            uint64
	maxInstructions  uint64 // 0 means no limit
	halted           bool
	haltReason       HaltReason
	result           uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithXLEN selects an RV32 (32) or RV64 (64) hart.
func WithXLEN(xlen int) EmulatorOption {
	return func(e *Emulator) {
		e.xlen = xlen
	}
}

// WithMemorySize sets the RAM size in bytes.
func WithMemorySize(size uint64) EmulatorOption {
	return func(e *Emulator) {
		e.memSize = size
	}
}

// WithPredicate sets the termination predicate checked after every
// retirement.
func WithPredicate(p Predicate) EmulatorOption {
	return func(e *Emulator) {
		e.predicate = p
	}
}

// WithTrace writes a line per instruction, the registers it changed and
// every trap taken to w.
func WithTrace(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.trace = w
	}
}

// WithStdout sets the writer console devices print to.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithDevice maps a device onto the bus ahead of RAM.
func WithDevice(d Device) EmulatorOption {
	return func(e *Emulator) {
		e.devices = append(e.devices, d)
	}
}

// WithConsole maps a console transmit register at addr that prints to the
// emulator's stdout.
func WithConsole(addr uint64) EmulatorOption {
	return func(e *Emulator) {
		e.devices = append(e.devices, &ConsoleDevice{addr: addr})
	}
}

// WithExtension appends a custom extension after the standard ones.
func WithExtension(ext Extension) EmulatorOption {
	return func(e *Emulator) {
		e.custom = append(e.custom, ext)
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates a hart in machine mode with its program counter at
// MemoryBaseAddress.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		xlen:    64,
		memSize: DefaultMemorySize,
		stdout:  os.Stdout,
	}

	// Apply options first (may set xlen, memory size and stdout)
	for _, opt := range opts {
		opt(e)
	}

	for _, d := range e.devices {
		if c, ok := d.(*ConsoleDevice); ok && c.out == nil {
			c.out = e.stdout
		}
	}

	e.memory = NewMemory(MemoryBaseAddress, e.memSize)
	e.bus = NewSystemBus(e.memory, e.devices...)
	e.hart = NewHart(e.xlen, MemoryBaseAddress, e.bus)
	e.extensions = append(DefaultExtensions(e.xlen), e.custom...)
	e.state = &State{e: e}
	e.resetRegisters()

	return e
}

// Hart returns the architectural state.
func (e *Emulator) Hart() *Hart {
	return e.hart
}

// RegFile returns the integer register file.
func (e *Emulator) RegFile() *RegFile {
	return e.hart.X
}

// Memory returns the emulator's RAM.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// Bus returns the system bus.
func (e *Emulator) Bus() *SystemBus {
	return e.bus
}

// XLEN returns the register width in bits.
func (e *Emulator) XLEN() int {
	return e.xlen
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Cycle returns the number of loop iterations run.
func (e *Emulator) Cycle() uint64 {
	return e.cycle
}

// Halted reports whether the emulator has stopped, and its result.
func (e *Emulator) Halted() (uint64, bool) {
	return e.result, e.halted
}

// HaltReason returns why the emulator stopped.
func (e *Emulator) HaltReason() HaltReason {
	return e.haltReason
}

// LoadImage copies a flat binary to MemoryBaseAddress and points the
// program counter at it.
func (e *Emulator) LoadImage(image []byte) error {
	if err := e.LoadSegment(MemoryBaseAddress, image); err != nil {
		return err
	}
	e.SetEntry(MemoryBaseAddress)
	return nil
}

// LoadSegment copies data into RAM at addr.
func (e *Emulator) LoadSegment(addr uint64, data []byte) error {
	if err := e.memory.Write(addr, data); err != nil {
		return fmt.Errorf("load segment at 0x%x: %w", addr, err)
	}
	return nil
}

// SetEntry sets the program counter and the address Reset returns to.
func (e *Emulator) SetEntry(addr uint64) {
	e.hart.PC.SetReset(addr)
	e.hart.PC.Jump(addr)
}

// Reset restores the hart and the counters to their reset state. Memory
// keeps the loaded image.
func (e *Emulator) Reset() {
	e.hart.Reset()
	e.resetRegisters()

	for _, d := range e.devices {
		if r, ok := d.(interface{ Reset() }); ok {
			r.Reset()
		}
	}

	e.instructionCount = 0
	e.cycle = 0
	e.halted = false
	e.haltReason = HaltNone
	e.result = 0
}

func (e *Emulator) resetRegisters() {
	e.hart.WriteX(insts.RegSP, e.memory.End())
}

func (e *Emulator) halt(reason HaltReason, result uint64) {
	e.halted = true
	e.haltReason = reason
	e.result = result
}

// decode tries each extension in order and returns the first match.
func (e *Emulator) decode(word uint32) (*insts.Instruction, Extension) {
	for _, ext := range e.extensions {
		if inst, ok := ext.Decode(word); ok {
			return inst, ext
		}
	}
	return &insts.Instruction{Op: insts.OpUnknown, Raw: word}, nil
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true, Result: e.result}
	}

	h := e.hart
	pc := h.PC.Read()

	// Leaving memory ends the program with a0 as its result
	if !e.memory.Contains(pc, uint64(Word)) {
		e.halt(HaltLeftMemory, h.ReadX(insts.RegA0))
		return StepResult{Halted: true, Result: e.result, PC: pc}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{PC: pc, Err: ErrMaxInstructions}
	}

	// 1. Fetch
	raw, err := e.memory.Load(pc, Word)
	if err != nil {
		return StepResult{PC: pc, Err: fmt.Errorf("fetch at 0x%x: %w", pc, err)}
	}
	word := uint32(raw)

	// 2. Decode
	inst, ext := e.decode(word)

	var snapshot [32]uint64
	if e.trace != nil {
		snapshot = h.X.Snapshot()
		fmt.Fprintf(e.trace, "%x: %s\n", pc, inst)
	}

	// 3. Execute
	h.LastAccess = MemAccess{}
	h.PC.ClearJumped()

	execErr := illegal()
	if ext != nil {
		execErr = ext.Execute(inst, h)
	}

	// 4. Retire
	result := StepResult{PC: pc, Inst: inst, Access: h.LastAccess}
	if execErr != nil {
		var cause *Cause
		if !errors.As(execErr, &cause) {
			result.Err = fmt.Errorf("execute %s at 0x%x: %w", inst, pc, execErr)
			return result
		}
		result.Trap = cause
		e.takeTrap(cause, pc, word)
	} else if !h.PC.Jumped() {
		h.PC.Increment(4)
	}

	if e.trace != nil {
		e.traceRegisters(snapshot)
	}

	e.instructionCount++
	e.cycle++

	if e.predicate != nil {
		if v, ok := e.predicate(e.state); ok {
			e.halt(HaltByPredicate, v)
			result.Halted, result.Result = true, v
		}
	}

	h.CSR.AdvanceCounters()
	return result
}

// takeTrap delivers cause raised at pc, or completes a trap return.
func (e *Emulator) takeTrap(cause *Cause, pc uint64, word uint32) {
	h := e.hart

	var (
		mode   PrivilegeMode
		target uint64
	)
	if cause.IsReturn() {
		mode, target = ReturnFromTrap(cause.Mode, h.CSR)
	} else {
		mode, target = HandleTrap(cause, pc, word, h.Mode, h.CSR)
	}

	if e.trace != nil {
		fmt.Fprintf(e.trace, "trap: %s, %s -> %s at 0x%x\n", cause, h.Mode, mode, target)
	}

	h.Mode = mode
	h.PC.Jump(h.Addr(target))
}

func (e *Emulator) traceRegisters(snapshot [32]uint64) {
	diff := e.hart.X.Diff(snapshot)
	for _, d := range diff {
		fmt.Fprintf(e.trace, "\t%-8s: %x -> %x\n", insts.XRegNames[d.Reg], d.Old, d.New)
	}
}

// Run executes instructions until the emulator halts, an error occurs or
// ctx is cancelled. It returns the halt result.
func (e *Emulator) Run(ctx context.Context) (uint64, error) {
	for n := 0; ; n++ {
		if n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		result := e.Step()
		if result.Err != nil {
			return 0, result.Err
		}
		if result.Halted {
			return result.Result, nil
		}
	}
}
