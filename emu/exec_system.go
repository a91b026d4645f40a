package emu

import (
	"errors"

	"github.com/sarchlab/rvsim/insts"
)

// returnLevel maps each trap-return instruction to the level it leaves.
var returnLevel = map[insts.Op]PrivilegeMode{
	insts.OpURET: UserMode,
	insts.OpSRET: SupervisorMode,
	insts.OpMRET: MachineMode,
}

// executePrivileged runs the trap returns, wfi and sfence.vma. A return is
// only legal from the level it leaves; the emulator completes it when it
// sees the returned Cause.
func executePrivileged(inst *insts.Instruction, h *Hart) error {
	if level, ok := returnLevel[inst.Op]; ok {
		if h.Mode != level {
			return illegal()
		}
		return NewExceptionReturn(level)
	}

	switch inst.Op {
	case insts.OpWFI, insts.OpSFENCEVMA:
		return nil
	default:
		return illegal()
	}
}

// executeZifencei runs fence.i. Instruction fetch always reads memory
// directly, so there is nothing to synchronize.
func executeZifencei(_ *insts.Instruction, _ *Hart) error {
	return nil
}

// csrWrites reports whether a CSR instruction modifies its CSR. The set and
// clear forms with a zero source leave the CSR untouched.
func csrWrites(inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpCSRRS, insts.OpCSRRC, insts.OpCSRRSI, insts.OpCSRRCI:
		return inst.Rs1 != 0
	default:
		return true
	}
}

// executeZicsr runs the CSR read-modify-write instructions. The old value
// of the CSR lands in rd.
func executeZicsr(inst *insts.Instruction, h *Hart) error {
	addr := inst.CSR
	writes := csrWrites(inst)

	if PrivilegeMode((addr>>8)&0x3) > h.Mode {
		return illegal()
	}
	if writes && addr>>10 == 0x3 {
		return illegal()
	}

	src := uint64(inst.Rs1)
	if !insts.IsImmediateCSR(inst.Op) {
		src = h.ReadX(inst.Rs1)
	}

	var (
		old uint64
		err error
	)

	switch {
	case !writes:
		old, err = h.CSR.Read(addr)
	case inst.Op == insts.OpCSRRW || inst.Op == insts.OpCSRRWI:
		old, err = h.CSR.ReadWrite(addr, src)
	case inst.Op == insts.OpCSRRS || inst.Op == insts.OpCSRRSI:
		old, err = h.CSR.ReadSet(addr, src)
	default:
		old, err = h.CSR.ReadClear(addr, src)
	}

	if errors.Is(err, ErrCSRNotFound) {
		return illegal()
	}
	if err != nil {
		return err
	}

	h.WriteX(inst.Rd, old)
	return nil
}
