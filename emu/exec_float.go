package emu

import (
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/softfloat"
)

// floatExecutor executes the RV32F and RV64F instructions.
type floatExecutor struct {
	lsu *LoadStoreUnit
}

func newFloatExecutor() *floatExecutor {
	return &floatExecutor{lsu: NewLoadStoreUnit()}
}

type binaryOp func(a, b uint32, rm softfloat.RoundingMode) (uint32, softfloat.Flags)

type fusedOp func(a, b, c uint32, rm softfloat.RoundingMode) (uint32, softfloat.Flags)

type toIntOp func(a uint32, rm softfloat.RoundingMode) (uint64, softfloat.Flags)

type fromIntOp func(v uint64, rm softfloat.RoundingMode) (uint32, softfloat.Flags)

type compareOp func(a, b uint32) (bool, softfloat.Flags)

var binaryOps = map[insts.Op]binaryOp{
	insts.OpFADDS: softfloat.Add,
	insts.OpFSUBS: softfloat.Sub,
	insts.OpFMULS: softfloat.Mul,
	insts.OpFDIVS: softfloat.Div,
}

var fusedOps = map[insts.Op]fusedOp{
	insts.OpFMADDS:  softfloat.MulAdd,
	insts.OpFMSUBS:  softfloat.MulSub,
	insts.OpFNMSUBS: softfloat.NegMulSub,
	insts.OpFNMADDS: softfloat.NegMulAdd,
}

var toIntOps = map[insts.Op]toIntOp{
	insts.OpFCVTWS:  softfloat.ToInt32,
	insts.OpFCVTWUS: softfloat.ToUint32,
	insts.OpFCVTLS:  softfloat.ToInt64,
	insts.OpFCVTLUS: softfloat.ToUint64,
}

var fromIntOps = map[insts.Op]fromIntOp{
	insts.OpFCVTSW:  softfloat.FromInt32,
	insts.OpFCVTSWU: softfloat.FromUint32,
	insts.OpFCVTSL:  softfloat.FromInt64,
	insts.OpFCVTSLU: softfloat.FromUint64,
}

var compareOps = map[insts.Op]compareOp{
	insts.OpFEQS: softfloat.Eq,
	insts.OpFLTS: softfloat.Lt,
	insts.OpFLES: softfloat.Le,
}

var signInjectOps = map[insts.Op]func(a, b uint32) uint32{
	insts.OpFSGNJS:  softfloat.SignInject,
	insts.OpFSGNJNS: softfloat.SignInjectNeg,
	insts.OpFSGNJXS: softfloat.SignInjectXor,
}

// roundingMode resolves the instruction's rounding mode, reading frm for
// the dynamic encoding.
func roundingMode(inst *insts.Instruction, h *Hart) (softfloat.RoundingMode, error) {
	rm := softfloat.RoundingMode(inst.RM())
	if rm == softfloat.RoundDynamic {
		rm = h.CSR.RoundingMode()
	}
	if !rm.Valid() {
		return 0, illegal()
	}
	return rm, nil
}

func (e *floatExecutor) Execute(inst *insts.Instruction, h *Hart) error {
	f := h.F
	rs1, rs2, rs3 := f.ReadF32(inst.Rs1), f.ReadF32(inst.Rs2), f.ReadF32(inst.Rs3)

	switch inst.Op {
	case insts.OpFLW:
		v, err := e.lsu.Load(h, inst.Op, e.lsu.EffectiveAddress(h, inst))
		if err != nil {
			return err
		}
		f.WriteF32(inst.Rd, uint32(v))
		return nil
	case insts.OpFSW:
		return e.lsu.Store(h, inst.Op, e.lsu.EffectiveAddress(h, inst), uint64(rs2))
	case insts.OpFMVXW:
		h.WriteX(inst.Rd, sext32(uint64(rs1)))
		return nil
	case insts.OpFMVWX:
		f.WriteF32(inst.Rd, uint32(h.ReadX(inst.Rs1)))
		return nil
	case insts.OpFCLASSS:
		h.WriteX(inst.Rd, uint64(softfloat.Classify(rs1)))
		return nil
	}

	if op, ok := signInjectOps[inst.Op]; ok {
		f.WriteF32(inst.Rd, op(rs1, rs2))
		return nil
	}

	if op, ok := compareOps[inst.Op]; ok {
		r, flags := op(rs1, rs2)
		h.CSR.AccrueFlags(flags)
		h.WriteX(inst.Rd, boolToReg(r))
		return nil
	}

	if inst.Op == insts.OpFMINS || inst.Op == insts.OpFMAXS {
		minMax := softfloat.Min
		if inst.Op == insts.OpFMAXS {
			minMax = softfloat.Max
		}
		r, flags := minMax(rs1, rs2)
		h.CSR.AccrueFlags(flags)
		f.WriteF32(inst.Rd, r)
		return nil
	}

	rm, err := roundingMode(inst, h)
	if err != nil {
		return err
	}

	return e.executeRounded(inst, h, rm, rs1, rs2, rs3)
}

// executeRounded handles the operations that take a rounding mode.
func (e *floatExecutor) executeRounded(
	inst *insts.Instruction, h *Hart, rm softfloat.RoundingMode, rs1, rs2, rs3 uint32,
) error {
	var flags softfloat.Flags

	switch {
	case binaryOps[inst.Op] != nil:
		var r uint32
		r, flags = binaryOps[inst.Op](rs1, rs2, rm)
		h.F.WriteF32(inst.Rd, r)
	case fusedOps[inst.Op] != nil:
		var r uint32
		r, flags = fusedOps[inst.Op](rs1, rs2, rs3, rm)
		h.F.WriteF32(inst.Rd, r)
	case inst.Op == insts.OpFSQRTS:
		var r uint32
		r, flags = softfloat.Sqrt(rs1, rm)
		h.F.WriteF32(inst.Rd, r)
	case toIntOps[inst.Op] != nil:
		var r uint64
		r, flags = toIntOps[inst.Op](rs1, rm)
		h.WriteX(inst.Rd, r)
	case fromIntOps[inst.Op] != nil:
		var r uint32
		r, flags = fromIntOps[inst.Op](h.ReadX(inst.Rs1), rm)
		h.F.WriteF32(inst.Rd, r)
	default:
		return illegal()
	}

	h.CSR.AccrueFlags(flags)
	return nil
}
