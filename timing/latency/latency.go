// Package latency provides per-instruction-class timing for the timing
// model.
//
// Latencies are configured via TimingConfig, which can be loaded from JSON.
package latency

import (
	"github.com/sarchlab/rvsim/insts"
)

// Class groups operations that share a latency.
type Class uint8

// Instruction classes.
const (
	ClassALU Class = iota
	ClassBranch
	ClassLoad
	ClassStore
	ClassMultiply
	ClassDivide
	ClassFP
	ClassFPFused
	ClassFPDivSqrt
	ClassCSR
	ClassSystem
)

var classNames = [...]string{
	ClassALU:       "alu",
	ClassBranch:    "branch",
	ClassLoad:      "load",
	ClassStore:     "store",
	ClassMultiply:  "multiply",
	ClassDivide:    "divide",
	ClassFP:        "fp",
	ClassFPFused:   "fp-fused",
	ClassFPDivSqrt: "fp-div-sqrt",
	ClassCSR:       "csr",
	ClassSystem:    "system",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// ClassOf returns the class an instruction's latency is drawn from.
// Unknown operations count as ALU operations.
func ClassOf(inst *insts.Instruction) Class {
	switch inst.Op {
	case insts.OpJAL, insts.OpJALR,
		insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE, insts.OpBLTU, insts.OpBGEU:
		return ClassBranch

	case insts.OpLB, insts.OpLH, insts.OpLW, insts.OpLBU, insts.OpLHU,
		insts.OpLWU, insts.OpLD, insts.OpFLW:
		return ClassLoad

	case insts.OpSB, insts.OpSH, insts.OpSW, insts.OpSD, insts.OpFSW:
		return ClassStore

	case insts.OpMUL, insts.OpMULH, insts.OpMULHSU, insts.OpMULHU, insts.OpMULW:
		return ClassMultiply

	case insts.OpDIV, insts.OpDIVU, insts.OpREM, insts.OpREMU,
		insts.OpDIVW, insts.OpDIVUW, insts.OpREMW, insts.OpREMUW:
		return ClassDivide

	case insts.OpFMADDS, insts.OpFMSUBS, insts.OpFNMSUBS, insts.OpFNMADDS:
		return ClassFPFused

	case insts.OpFDIVS, insts.OpFSQRTS:
		return ClassFPDivSqrt

	case insts.OpCSRRW, insts.OpCSRRS, insts.OpCSRRC,
		insts.OpCSRRWI, insts.OpCSRRSI, insts.OpCSRRCI:
		return ClassCSR

	case insts.OpECALL, insts.OpEBREAK, insts.OpFENCE, insts.OpFENCEI,
		insts.OpURET, insts.OpSRET, insts.OpMRET, insts.OpWFI, insts.OpSFENCEVMA:
		return ClassSystem
	}

	if inst.Ext == insts.ExtRV32F || inst.Ext == insts.ExtRV64F {
		return ClassFP
	}

	return ClassALU
}

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given
// instruction. A nil instruction, such as a word that failed to decode,
// costs one cycle.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	return t.ClassLatency(ClassOf(inst))
}

// ClassLatency returns the configured latency of a class.
func (t *Table) ClassLatency(class Class) uint64 {
	switch class {
	case ClassBranch:
		return t.config.BranchLatency
	case ClassLoad:
		return t.config.LoadLatency
	case ClassStore:
		return t.config.StoreLatency
	case ClassMultiply:
		return t.config.MultiplyLatency
	case ClassDivide:
		return t.config.DivideLatency
	case ClassFP:
		return t.config.FPLatency
	case ClassFPFused:
		return t.config.FPFusedLatency
	case ClassFPDivSqrt:
		return t.config.FPDivSqrtLatency
	case ClassCSR:
		return t.config.CSRLatency
	case ClassSystem:
		return t.config.SystemLatency
	default:
		return t.config.ALULatency
	}
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return t.IsLoadOp(inst) || t.IsStoreOp(inst)
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	return inst != nil && ClassOf(inst) == ClassLoad
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return inst != nil && ClassOf(inst) == ClassStore
}

// IsBranchOp returns true if the instruction is a branch or jump.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	return inst != nil && ClassOf(inst) == ClassBranch
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
