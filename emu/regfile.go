package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/rvsim/insts"
)

// RegFile represents the RISC-V integer register file.
// It contains 32 registers; x0 always reads as zero.
type RegFile struct {
	// X holds x0-x31. X[0] is never written.
	X [32]uint64
}

// ReadReg reads a register value. Register 0 and out-of-range indices
// return 0.
func (r *RegFile) ReadReg(reg uint8) uint64 {
	if reg == 0 || reg >= 32 {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint64) {
	if reg == 0 || reg >= 32 {
		return
	}
	r.X[reg] = value
}

// Snapshot returns a copy of the register values.
func (r *RegFile) Snapshot() [32]uint64 {
	return r.X
}

// RegChange is one register whose value differs from a snapshot.
type RegChange struct {
	Reg      uint8
	Old, New uint64
}

// Diff lists the registers that changed since snapshot was taken.
func (r *RegFile) Diff(snapshot [32]uint64) []RegChange {
	var changes []RegChange
	for i := range r.X {
		if r.X[i] != snapshot[i] {
			changes = append(changes, RegChange{Reg: uint8(i), Old: snapshot[i], New: r.X[i]})
		}
	}
	return changes
}

// Dump writes all registers by ABI name, four per line.
func (r *RegFile) Dump(w io.Writer) {
	for i := 0; i < 32; i += 4 {
		for j := i; j < i+4; j++ {
			fmt.Fprintf(w, "%-4s 0x%016x  ", insts.XRegNames[j], r.X[j])
		}
		fmt.Fprintln(w)
	}
}

// FPRegFile represents the floating-point register file. Each cell holds a
// single-precision value in its low 32 bits; the upper bits are kept zero.
type FPRegFile struct {
	F [32]uint64
}

// ReadF32 returns the single-precision bit pattern held in a register.
func (r *FPRegFile) ReadF32(reg uint8) uint32 {
	return uint32(r.F[reg&0x1F])
}

// WriteF32 stores a single-precision bit pattern in a register.
func (r *FPRegFile) WriteF32(reg uint8, value uint32) {
	r.F[reg&0x1F] = uint64(value)
}

// ProgramCounter holds the address of the instruction being executed.
type ProgramCounter struct {
	value  uint64
	reset  uint64
	jumped bool
}

// NewProgramCounter creates a program counter starting at addr.
func NewProgramCounter(addr uint64) *ProgramCounter {
	return &ProgramCounter{value: addr, reset: addr}
}

// Read returns the current address.
func (p *ProgramCounter) Read() uint64 {
	return p.value
}

// Increment advances the program counter by n bytes.
func (p *ProgramCounter) Increment(n uint64) {
	p.value += n
}

// Jump moves to an absolute address.
func (p *ProgramCounter) Jump(addr uint64) {
	p.value = addr
	p.jumped = true
}

// JumpRelative moves by a signed offset from the current address.
func (p *ProgramCounter) JumpRelative(offset int64) {
	p.Jump(p.value + uint64(offset))
}

// Reset returns to the reset address.
func (p *ProgramCounter) Reset() {
	p.value = p.reset
	p.jumped = false
}

// Jumped reports whether Jump was called since the last ClearJumped.
func (p *ProgramCounter) Jumped() bool {
	return p.jumped
}

// ClearJumped forgets earlier jumps.
func (p *ProgramCounter) ClearJumped() {
	p.jumped = false
}

// SetReset changes the address that Reset returns to.
func (p *ProgramCounter) SetReset(addr uint64) {
	p.reset = addr
}
