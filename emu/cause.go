package emu

import "fmt"

// ExceptionCode is the cause code of a synchronous exception.
type ExceptionCode uint64

// Exception codes.
const (
	InstructionAddressMisaligned ExceptionCode = 0
	InstructionAccessFault       ExceptionCode = 1
	IllegalInstruction           ExceptionCode = 2
	Breakpoint                   ExceptionCode = 3
	LoadAddressMisaligned        ExceptionCode = 4
	LoadAccessFault              ExceptionCode = 5
	StoreAddressMisaligned       ExceptionCode = 6
	StoreAccessFault             ExceptionCode = 7
	EnvironmentCallFromUMode     ExceptionCode = 8
	EnvironmentCallFromSMode     ExceptionCode = 9
	EnvironmentCallFromMMode     ExceptionCode = 11
	InstructionPageFault         ExceptionCode = 12
	LoadPageFault                ExceptionCode = 13
	StorePageFault               ExceptionCode = 15
)

var exceptionNames = map[ExceptionCode]string{
	InstructionAddressMisaligned: "instruction address misaligned",
	InstructionAccessFault:       "instruction access fault",
	IllegalInstruction:           "illegal instruction",
	Breakpoint:                   "breakpoint",
	LoadAddressMisaligned:        "load address misaligned",
	LoadAccessFault:              "load access fault",
	StoreAddressMisaligned:       "store address misaligned",
	StoreAccessFault:             "store access fault",
	EnvironmentCallFromUMode:     "environment call from U-mode",
	EnvironmentCallFromSMode:     "environment call from S-mode",
	EnvironmentCallFromMMode:     "environment call from M-mode",
	InstructionPageFault:         "instruction page fault",
	LoadPageFault:                "load page fault",
	StorePageFault:               "store page fault",
}

// InterruptCode is the cause code of an asynchronous interrupt.
type InterruptCode uint64

// Interrupt codes.
const (
	UserSoftwareInterrupt       InterruptCode = 0
	SupervisorSoftwareInterrupt InterruptCode = 1
	MachineSoftwareInterrupt    InterruptCode = 3
	UserTimerInterrupt          InterruptCode = 4
	SupervisorTimerInterrupt    InterruptCode = 5
	MachineTimerInterrupt       InterruptCode = 7
	UserExternalInterrupt       InterruptCode = 8
	SupervisorExternalInterrupt InterruptCode = 9
	MachineExternalInterrupt    InterruptCode = 11
)

// CauseKind distinguishes the variants of Cause.
type CauseKind uint8

// Cause kinds.
const (
	KindException CauseKind = iota
	KindInterrupt
	KindReturn
)

// Cause is the reason an instruction did not retire normally: an
// exception, an interrupt, or a trap return. It implements error so that
// executors can return it directly.
type Cause struct {
	Kind CauseKind
	Code uint64

	// Addr is the faulting address of misaligned, access and page faults.
	Addr uint64

	// Mode is the privilege level a trap return leaves.
	Mode PrivilegeMode
}

// NewException creates an exception cause.
func NewException(code ExceptionCode) *Cause {
	return &Cause{Kind: KindException, Code: uint64(code)}
}

// NewAddressException creates an exception cause that carries the faulting
// address.
func NewAddressException(code ExceptionCode, addr uint64) *Cause {
	return &Cause{Kind: KindException, Code: uint64(code), Addr: addr}
}

// NewInterrupt creates an interrupt cause.
func NewInterrupt(code InterruptCode) *Cause {
	return &Cause{Kind: KindInterrupt, Code: uint64(code)}
}

// NewExceptionReturn creates the cause signalled by uret, sret and mret.
func NewExceptionReturn(mode PrivilegeMode) *Cause {
	return &Cause{Kind: KindReturn, Mode: mode}
}

// IsInterrupt reports whether the cause is an interrupt.
func (c *Cause) IsInterrupt() bool {
	return c.Kind == KindInterrupt
}

// IsReturn reports whether the cause is a trap return.
func (c *Cause) IsReturn() bool {
	return c.Kind == KindReturn
}

// ExceptionCode returns the low four bits of the cause encoding.
func (c *Cause) ExceptionCode() uint64 {
	return c.Code & 0xF
}

// ToPrimitive returns the xcause encoding for a hart of the given XLEN.
func (c *Cause) ToPrimitive(xlen int) uint64 {
	if c.IsInterrupt() {
		return 1<<(xlen-1) | c.Code
	}
	return c.Code
}

// HasAddress reports whether the cause records a faulting address in tval.
func (c *Cause) HasAddress() bool {
	if c.Kind != KindException {
		return false
	}

	switch ExceptionCode(c.Code) {
	case InstructionAddressMisaligned, InstructionAccessFault,
		LoadAddressMisaligned, LoadAccessFault,
		StoreAddressMisaligned, StoreAccessFault,
		InstructionPageFault, LoadPageFault, StorePageFault:
		return true
	}
	return false
}

func (c *Cause) Error() string {
	switch c.Kind {
	case KindInterrupt:
		return fmt.Sprintf("interrupt %d", c.Code)
	case KindReturn:
		return fmt.Sprintf("return from %s-mode trap", c.Mode)
	}

	name, ok := exceptionNames[ExceptionCode(c.Code)]
	if !ok {
		name = fmt.Sprintf("exception %d", c.Code)
	}
	if c.HasAddress() {
		return fmt.Sprintf("%s at 0x%x", name, c.Addr)
	}
	return name
}
