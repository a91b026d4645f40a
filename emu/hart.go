package emu

// MemAccess describes the data access made by the last instruction.
type MemAccess struct {
	Valid bool
	Write bool
	Addr  uint64
	Size  Size
}

// Hart is the architectural state an executor operates on. It is passed
// explicitly to every executor.
type Hart struct {
	XLEN int
	Mode PrivilegeMode
	PC   *ProgramCounter
	X    *RegFile
	F    *FPRegFile
	CSR  *CSRFile
	Bus  Bus

	// LastAccess is filled in by loads and stores.
	LastAccess MemAccess
}

// NewHart creates a hart in machine mode with the program counter at pc.
func NewHart(xlen int, pc uint64, bus Bus) *Hart {
	return &Hart{
		XLEN: xlen,
		Mode: MachineMode,
		PC:   NewProgramCounter(pc),
		X:    &RegFile{},
		F:    &FPRegFile{},
		CSR:  NewCSRFile(xlen),
		Bus:  bus,
	}
}

// ReadX reads an integer register.
func (h *Hart) ReadX(reg uint8) uint64 {
	return h.X.ReadReg(reg)
}

// WriteX writes an integer register. On RV32 harts the value is
// sign-extended from bit 31 so registers always hold XLEN-bit values in
// canonical form.
func (h *Hart) WriteX(reg uint8, value uint64) {
	h.X.WriteReg(reg, h.normalize(value))
}

func (h *Hart) normalize(value uint64) uint64 {
	if h.XLEN == 32 {
		return uint64(int64(int32(value)))
	}
	return value
}

// Addr truncates an effective address to XLEN bits.
func (h *Hart) Addr(value uint64) uint64 {
	if h.XLEN == 32 {
		return value & 0xFFFFFFFF
	}
	return value
}

// Jump sets the program counter to target. Targets that are not four-byte
// aligned raise an instruction-address-misaligned exception.
func (h *Hart) Jump(target uint64) error {
	target = h.Addr(target)
	if target&0x3 != 0 {
		return NewAddressException(InstructionAddressMisaligned, target)
	}
	h.PC.Jump(target)
	return nil
}

// JumpRelative jumps by offset from the current program counter.
func (h *Hart) JumpRelative(offset int64) error {
	return h.Jump(h.PC.Read() + uint64(offset))
}

// Reset restores the architectural reset state. Memory is left untouched.
func (h *Hart) Reset() {
	h.Mode = MachineMode
	h.PC.Reset()
	h.X = &RegFile{}
	h.F = &FPRegFile{}
	h.CSR.Reset()
	h.LastAccess = MemAccess{}
}
