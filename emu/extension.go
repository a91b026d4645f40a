package emu

import "github.com/sarchlab/rvsim/insts"

// Extension pairs the decoder and the executor of one ISA extension family.
// The emulator tries its extensions in order and executes the first
// successful decode.
type Extension interface {
	// Family names the extension family.
	Family() insts.Extension

	// Decode reports whether word belongs to the family.
	Decode(word uint32) (*insts.Instruction, bool)

	// Execute runs a decoded instruction against the hart. A non-nil error
	// is always a *Cause.
	Execute(inst *insts.Instruction, h *Hart) error
}

// ExecuteFunc executes one decoded instruction.
type ExecuteFunc func(inst *insts.Instruction, h *Hart) error

type extension struct {
	family  insts.Extension
	decode  insts.DecodeFunc
	execute ExecuteFunc
}

// NewExtension builds an Extension from a decode and an execute function.
func NewExtension(family insts.Extension, decode insts.DecodeFunc, execute ExecuteFunc) Extension {
	return &extension{family: family, decode: decode, execute: execute}
}

func (e *extension) Family() insts.Extension {
	return e.family
}

func (e *extension) Decode(word uint32) (*insts.Instruction, bool) {
	return e.decode(word)
}

func (e *extension) Execute(inst *insts.Instruction, h *Hart) error {
	return e.execute(inst, h)
}

// DefaultExtensions returns the standard extension chain for a hart of the
// given XLEN in decode priority order.
func DefaultExtensions(xlen int) []Extension {
	integer := newIntegerExecutor(xlen)
	mulDiv := newMulDivExecutor(xlen)
	float := newFloatExecutor()

	executors := map[insts.Extension]ExecuteFunc{
		insts.ExtPrivileged: executePrivileged,
		insts.ExtZifencei:   executeZifencei,
		insts.ExtZicsr:      executeZicsr,
		insts.ExtRV32I:      integer.Execute,
		insts.ExtRV64I:      integer.Execute,
		insts.ExtRV32M:      mulDiv.Execute,
		insts.ExtRV64M:      mulDiv.Execute,
		insts.ExtRV32F:      float.Execute,
		insts.ExtRV64F:      float.Execute,
	}

	var exts []Extension
	for _, family := range insts.Families(xlen) {
		exts = append(exts, NewExtension(family, insts.DecodeFuncFor(family), executors[family]))
	}
	return exts
}

func illegal() error {
	return NewException(IllegalInstruction)
}
