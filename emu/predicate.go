package emu

import "github.com/sarchlab/rvsim/insts"

// DefaultToHostAddress is the tohost word of the riscv-tests environment.
const DefaultToHostAddress uint64 = 0x8000_1000

// ToHostPass is the tohost value that reports success.
const ToHostPass uint64 = 1

// State is the read-only view of a hart handed to a Predicate.
type State struct {
	e *Emulator
}

// PC returns the address of the next instruction.
func (s *State) PC() uint64 {
	return s.e.hart.PC.Read()
}

// Mode returns the current privilege mode.
func (s *State) Mode() PrivilegeMode {
	return s.e.hart.Mode
}

// Cycle returns the number of loop iterations completed, including the
// current one.
func (s *State) Cycle() uint64 {
	return s.e.cycle
}

// InstRet returns the number of instructions executed, trapped ones
// included.
func (s *State) InstRet() uint64 {
	return s.e.instructionCount
}

// ReadX reads an integer register.
func (s *State) ReadX(reg uint8) uint64 {
	return s.e.hart.ReadX(reg)
}

// Load reads memory without going through devices.
func (s *State) Load(addr uint64, size Size) (uint64, error) {
	return s.e.memory.Load(addr, size)
}

// Predicate is consulted after every retirement. Returning true halts the
// emulator with the returned value as its result.
type Predicate func(s *State) (uint64, bool)

// ToHostPredicate halts as soon as the word at addr becomes non-zero and
// reports that word. A value of ToHostPass means the program passed;
// otherwise value>>1 is the number of the failing check.
func ToHostPredicate(addr uint64) Predicate {
	return func(s *State) (uint64, bool) {
		v, err := s.Load(addr, Word)
		if err != nil || v == 0 {
			return 0, false
		}
		return v, true
	}
}

// TimeoutPredicate halts once limit cycles have run, reporting a0.
func TimeoutPredicate(limit uint64) Predicate {
	return func(s *State) (uint64, bool) {
		if s.Cycle() < limit {
			return 0, false
		}
		return s.ReadX(insts.RegA0), true
	}
}

// HaltPredicate halts once dev has been written, reporting the value
// written.
func HaltPredicate(dev *HaltDevice) Predicate {
	return func(*State) (uint64, bool) {
		return dev.Halted()
	}
}

// AnyPredicate halts on the first of preds that does.
func AnyPredicate(preds ...Predicate) Predicate {
	return func(s *State) (uint64, bool) {
		for _, p := range preds {
			if p == nil {
				continue
			}
			if v, ok := p(s); ok {
				return v, true
			}
		}
		return 0, false
	}
}
