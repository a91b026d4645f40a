package emu

import "github.com/sarchlab/rvsim/insts"

// BranchUnit implements RISC-V jumps and conditional branches.
type BranchUnit struct{}

// NewBranchUnit creates a new BranchUnit.
func NewBranchUnit() *BranchUnit {
	return &BranchUnit{}
}

// CheckCondition evaluates a conditional branch on two register values.
func (b *BranchUnit) CheckCondition(op insts.Op, x, y uint64) bool {
	switch op {
	case insts.OpBEQ:
		return x == y
	case insts.OpBNE:
		return x != y
	case insts.OpBLT:
		return int64(x) < int64(y)
	case insts.OpBGE:
		return int64(x) >= int64(y)
	case insts.OpBLTU:
		return x < y
	case insts.OpBGEU:
		return x >= y
	default:
		return false
	}
}

// Branch jumps PC-relative by the instruction's offset when its condition
// holds.
func (b *BranchUnit) Branch(h *Hart, inst *insts.Instruction) error {
	if !b.CheckCondition(inst.Op, h.ReadX(inst.Rs1), h.ReadX(inst.Rs2)) {
		return nil
	}
	return h.JumpRelative(inst.Imm)
}

// JAL jumps PC-relative and links the return address into rd.
func (b *BranchUnit) JAL(h *Hart, inst *insts.Instruction) error {
	pc := h.PC.Read()
	if err := h.JumpRelative(inst.Imm); err != nil {
		return err
	}
	h.WriteX(inst.Rd, pc+4)
	return nil
}

// JALR jumps to rs1 plus offset with bit 0 cleared and links the return
// address into rd.
func (b *BranchUnit) JALR(h *Hart, inst *insts.Instruction) error {
	pc := h.PC.Read()
	target := (h.ReadX(inst.Rs1) + uint64(inst.Imm)) &^ 1
	if err := h.Jump(target); err != nil {
		return err
	}
	h.WriteX(inst.Rd, pc+4)
	return nil
}
