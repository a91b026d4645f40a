package emu

import "github.com/sarchlab/rvsim/insts"

// integerExecutor executes the RV32I and RV64I instructions.
type integerExecutor struct {
	xlen   int
	alu    *ALU
	lsu    *LoadStoreUnit
	branch *BranchUnit
}

func newIntegerExecutor(xlen int) *integerExecutor {
	return &integerExecutor{
		xlen:   xlen,
		alu:    NewALU(xlen),
		lsu:    NewLoadStoreUnit(),
		branch: NewBranchUnit(),
	}
}

func (e *integerExecutor) Execute(inst *insts.Instruction, h *Hart) error {
	switch inst.Op {
	case insts.OpLUI:
		h.WriteX(inst.Rd, uint64(inst.Imm))
	case insts.OpAUIPC:
		h.WriteX(inst.Rd, h.PC.Read()+uint64(inst.Imm))
	case insts.OpJAL:
		return e.branch.JAL(h, inst)
	case insts.OpJALR:
		return e.branch.JALR(h, inst)
	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		return e.branch.Branch(h, inst)
	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU, insts.OpLWU, insts.OpLD:
		v, err := e.lsu.Load(h, inst.Op, e.lsu.EffectiveAddress(h, inst))
		if err != nil {
			return err
		}
		h.WriteX(inst.Rd, v)
	case insts.OpSB, insts.OpSH, insts.OpSW, insts.OpSD:
		return e.lsu.Store(h, inst.Op, e.lsu.EffectiveAddress(h, inst), h.ReadX(inst.Rs2))
	case insts.OpFENCE:
	case insts.OpECALL:
		return NewException(ecallCause(h.Mode))
	case insts.OpEBREAK:
		return NewException(Breakpoint)
	default:
		return e.compute(inst, h)
	}

	return nil
}

// compute handles the register-register and register-immediate operations.
func (e *integerExecutor) compute(inst *insts.Instruction, h *Hart) error {
	operand := h.ReadX(inst.Rs2)
	if inst.Format == insts.FormatI {
		operand = uint64(inst.Imm)

		if e.xlen == 32 && inst.Shamt()&0x20 != 0 {
			switch inst.Op {
			case insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
				return illegal()
			}
		}
	}

	v, ok := e.alu.Compute(RegisterForm(inst.Op), h.ReadX(inst.Rs1), operand)
	if !ok {
		return illegal()
	}

	h.WriteX(inst.Rd, v)
	return nil
}

func ecallCause(mode PrivilegeMode) ExceptionCode {
	switch mode {
	case UserMode:
		return EnvironmentCallFromUMode
	case SupervisorMode:
		return EnvironmentCallFromSMode
	default:
		return EnvironmentCallFromMMode
	}
}

// mulDivExecutor executes the RV32M and RV64M instructions.
type mulDivExecutor struct {
	alu *ALU
}

func newMulDivExecutor(xlen int) *mulDivExecutor {
	return &mulDivExecutor{alu: NewALU(xlen)}
}

func (e *mulDivExecutor) Execute(inst *insts.Instruction, h *Hart) error {
	v, ok := e.alu.Compute(inst.Op, h.ReadX(inst.Rs1), h.ReadX(inst.Rs2))
	if !ok {
		return illegal()
	}
	h.WriteX(inst.Rd, v)
	return nil
}
