package emu

import "github.com/sarchlab/rvsim/insts"

// loadShape gives the width and signedness of each load.
var loadShape = map[insts.Op]struct {
	size   Size
	signed bool
}{
	insts.OpLB:  {Byte, true},
	insts.OpLH:  {HalfWord, true},
	insts.OpLW:  {Word, true},
	insts.OpLD:  {DoubleWord, true},
	insts.OpLBU: {Byte, false},
	insts.OpLHU: {HalfWord, false},
	insts.OpLWU: {Word, false},
	insts.OpFLW: {Word, false},
}

var storeSize = map[insts.Op]Size{
	insts.OpSB:  Byte,
	insts.OpSH:  HalfWord,
	insts.OpSW:  Word,
	insts.OpSD:  DoubleWord,
	insts.OpFSW: Word,
}

// LoadStoreUnit implements RISC-V load and store operations over the
// hart's bus. Bus failures become access-fault exceptions.
type LoadStoreUnit struct{}

// NewLoadStoreUnit creates a new LoadStoreUnit.
func NewLoadStoreUnit() *LoadStoreUnit {
	return &LoadStoreUnit{}
}

// EffectiveAddress returns base register plus sign-extended offset,
// truncated to XLEN.
func (lsu *LoadStoreUnit) EffectiveAddress(h *Hart, inst *insts.Instruction) uint64 {
	return h.Addr(h.ReadX(inst.Rs1) + uint64(inst.Imm))
}

// Load performs the load op and returns the extended value.
func (lsu *LoadStoreUnit) Load(h *Hart, op insts.Op, addr uint64) (uint64, error) {
	shape := loadShape[op]
	h.LastAccess = MemAccess{Valid: true, Addr: addr, Size: shape.size}

	v, err := h.Bus.Load(addr, shape.size)
	if err != nil {
		return 0, NewAddressException(LoadAccessFault, addr)
	}

	if shape.signed {
		return uint64(insts.SignExtend(v, uint(shape.size)*8)), nil
	}
	return v, nil
}

// Store performs the store op, writing the low bytes of value.
func (lsu *LoadStoreUnit) Store(h *Hart, op insts.Op, addr, value uint64) error {
	size := storeSize[op]
	h.LastAccess = MemAccess{Valid: true, Write: true, Addr: addr, Size: size}

	if err := h.Bus.Store(addr, size, value); err != nil {
		return NewAddressException(StoreAccessFault, addr)
	}
	return nil
}
