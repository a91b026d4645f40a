package emu

// trapCSRs are the trap-handling registers of one privilege level.
type trapCSRs struct {
	cause, epc, tval, tvec uint16
}

var trapRegs = map[PrivilegeMode]trapCSRs{
	MachineMode:    {CSRMCause, CSRMEPC, CSRMTVal, CSRMTVec},
	SupervisorMode: {CSRSCause, CSRSEPC, CSRSTVal, CSRSTVec},
	UserMode:       {CSRUCause, CSRUEPC, CSRUTVal, CSRUTVec},
}

// delegatedMode returns the privilege level that handles cause. A trap is
// taken in supervisor mode only when both the machine and the supervisor
// delegation registers select it, and never below the current mode.
func delegatedMode(cause *Cause, mode PrivilegeMode, csr *CSRFile) PrivilegeMode {
	if mode == MachineMode {
		return MachineMode
	}

	machineDeleg, supervisorDeleg := CSRMEDeleg, CSRSEDeleg
	if cause.IsInterrupt() {
		machineDeleg, supervisorDeleg = CSRMIDeleg, CSRSIDeleg
	}

	bit := uint64(1) << cause.ExceptionCode()
	if csr.get(machineDeleg)&bit != 0 && csr.get(supervisorDeleg)&bit != 0 {
		return SupervisorMode
	}
	return MachineMode
}

// trapValue returns the xtval value for a cause.
func trapValue(cause *Cause, raw uint32) uint64 {
	if cause.HasAddress() {
		return cause.Addr
	}
	if cause.Kind == KindException && ExceptionCode(cause.Code) == IllegalInstruction {
		return uint64(raw)
	}
	return 0
}

// HandleTrap delivers cause, raised by the instruction word raw at pc while
// running in mode. It records the trap in the CSRs of the handling level
// and returns that level with the address of its trap vector.
func HandleTrap(cause *Cause, pc uint64, raw uint32, mode PrivilegeMode, csr *CSRFile) (PrivilegeMode, uint64) {
	target := delegatedMode(cause, mode, csr)
	regs := trapRegs[target]

	csr.set(regs.cause, cause.ToPrimitive(csr.xlen))
	csr.set(regs.epc, pc)
	csr.set(regs.tval, trapValue(cause, raw))

	status := csr.Status()
	switch target {
	case MachineMode:
		status = StatusMPP.Set(status, uint64(mode))
		status = StatusMPIE.Set(status, StatusMIE.Get(status))
		status = StatusMIE.Set(status, 0)
	case SupervisorMode:
		status = StatusSPP.Set(status, uint64(mode)&1)
		status = StatusSPIE.Set(status, StatusSIE.Get(status))
		status = StatusSIE.Set(status, 0)
	}
	csr.setStatus(status)

	tvec := csr.get(regs.tvec)
	base := tvec &^ 0x3
	if tvec&0x3 == 1 && cause.IsInterrupt() {
		base += 4 * cause.Code
	}

	return target, base
}

// ReturnFromTrap completes uret, sret or mret leaving level mode. It
// restores the interrupt-enable bit and privilege saved on trap entry and
// returns the new mode with the address to resume at.
func ReturnFromTrap(mode PrivilegeMode, csr *CSRFile) (PrivilegeMode, uint64) {
	status := csr.Status()
	var next PrivilegeMode

	switch mode {
	case MachineMode:
		next = PrivilegeMode(StatusMPP.Get(status))
		status = StatusMIE.Set(status, StatusMPIE.Get(status))
		status = StatusMPIE.Set(status, 1)
		status = StatusMPP.Set(status, uint64(UserMode))
		if next != MachineMode {
			status = StatusMPRV.Set(status, 0)
		}
	case SupervisorMode:
		next = UserMode
		if StatusSPP.Get(status) == 1 {
			next = SupervisorMode
		}
		status = StatusSIE.Set(status, StatusSPIE.Get(status))
		status = StatusSPIE.Set(status, 1)
		status = StatusSPP.Set(status, uint64(UserMode))
		status = StatusMPRV.Set(status, 0)
	default:
		next = UserMode
		status = StatusUIE.Set(status, StatusUPIE.Get(status))
		status = StatusUPIE.Set(status, 1)
	}

	csr.setStatus(status)
	return next, csr.get(trapRegs[mode].epc)
}
