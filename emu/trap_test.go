package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Trap handling", func() {
	var csr *emu.CSRFile

	BeforeEach(func() {
		csr = emu.NewCSRFile(64)
		Expect(csr.Write(emu.CSRMTVec, 0x8000_0100)).To(Succeed())
		Expect(csr.Write(emu.CSRSTVec, 0x8000_0200)).To(Succeed())
	})

	read := func(addr uint16) uint64 {
		v, err := csr.Read(addr)
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	delegate := func(machine, supervisor uint16, code uint64) {
		Expect(csr.Write(machine, 1<<code)).To(Succeed())
		Expect(csr.Write(supervisor, 1<<code)).To(Succeed())
	}

	Describe("HandleTrap", func() {
		It("should record an exception in the machine CSRs", func() {
			Expect(csr.Write(emu.CSRMStatus, emu.StatusMIE.Set(csr.Status(), 1))).To(Succeed())

			mode, pc := emu.HandleTrap(
				emu.NewException(emu.IllegalInstruction), 0x8000_0040, 0xDEAD_BEEF,
				emu.MachineMode, csr)

			Expect(mode).To(Equal(emu.MachineMode))
			Expect(pc).To(Equal(uint64(0x8000_0100)))
			Expect(read(emu.CSRMCause)).To(Equal(uint64(emu.IllegalInstruction)))
			Expect(read(emu.CSRMEPC)).To(Equal(uint64(0x8000_0040)))
			Expect(read(emu.CSRMTVal)).To(Equal(uint64(0xDEAD_BEEF)))

			status := csr.Status()
			Expect(emu.StatusMPP.Get(status)).To(Equal(uint64(emu.MachineMode)))
			Expect(emu.StatusMPIE.Get(status)).To(Equal(uint64(1)))
			Expect(emu.StatusMIE.Get(status)).To(BeZero())
		})

		It("should record the faulting address", func() {
			emu.HandleTrap(emu.NewAddressException(emu.LoadAccessFault, 0x1234),
				0x8000_0000, 0, emu.MachineMode, csr)
			Expect(read(emu.CSRMTVal)).To(Equal(uint64(0x1234)))
		})

		It("should delegate to supervisor mode when both levels select it", func() {
			code := uint64(emu.EnvironmentCallFromUMode)
			delegate(emu.CSRMEDeleg, emu.CSRSEDeleg, code)
			Expect(csr.Write(emu.CSRSStatus, emu.StatusSIE.Set(0, 1))).To(Succeed())

			mode, pc := emu.HandleTrap(emu.NewException(emu.EnvironmentCallFromUMode),
				0x8000_0010, 0, emu.UserMode, csr)

			Expect(mode).To(Equal(emu.SupervisorMode))
			Expect(pc).To(Equal(uint64(0x8000_0200)))
			Expect(read(emu.CSRSCause)).To(Equal(code))
			Expect(read(emu.CSRSEPC)).To(Equal(uint64(0x8000_0010)))
			Expect(read(emu.CSRMCause)).To(BeZero())

			status := csr.Status()
			Expect(emu.StatusSPP.Get(status)).To(BeZero())
			Expect(emu.StatusSPIE.Get(status)).To(Equal(uint64(1)))
			Expect(emu.StatusSIE.Get(status)).To(BeZero())
		})

		It("should stay in machine mode when only medeleg selects it", func() {
			Expect(csr.Write(emu.CSRMEDeleg, 1<<uint64(emu.Breakpoint))).To(Succeed())

			mode, _ := emu.HandleTrap(emu.NewException(emu.Breakpoint),
				0x8000_0000, 0, emu.SupervisorMode, csr)

			Expect(mode).To(Equal(emu.MachineMode))
			Expect(emu.StatusMPP.Get(csr.Status())).To(Equal(uint64(emu.SupervisorMode)))
		})

		It("should never delegate traps taken in machine mode", func() {
			delegate(emu.CSRMEDeleg, emu.CSRSEDeleg, uint64(emu.IllegalInstruction))

			mode, _ := emu.HandleTrap(emu.NewException(emu.IllegalInstruction),
				0x8000_0000, 0, emu.MachineMode, csr)

			Expect(mode).To(Equal(emu.MachineMode))
		})

		It("should delegate interrupts through mideleg and sideleg", func() {
			delegate(emu.CSRMIDeleg, emu.CSRSIDeleg, uint64(emu.SupervisorTimerInterrupt))

			mode, _ := emu.HandleTrap(emu.NewInterrupt(emu.SupervisorTimerInterrupt),
				0x8000_0000, 0, emu.UserMode, csr)

			Expect(mode).To(Equal(emu.SupervisorMode))
			Expect(read(emu.CSRSCause)).To(Equal(uint64(1)<<63 | 5))
		})

		It("should offset interrupts in vectored mode", func() {
			Expect(csr.Write(emu.CSRMTVec, 0x8000_0101)).To(Succeed())

			_, pc := emu.HandleTrap(emu.NewInterrupt(emu.MachineTimerInterrupt),
				0x8000_0000, 0, emu.MachineMode, csr)

			Expect(pc).To(Equal(uint64(0x8000_0100 + 4*7)))
			Expect(read(emu.CSRMTVal)).To(BeZero())
		})

		It("should not offset exceptions in vectored mode", func() {
			Expect(csr.Write(emu.CSRMTVec, 0x8000_0101)).To(Succeed())

			_, pc := emu.HandleTrap(emu.NewException(emu.EnvironmentCallFromMMode),
				0x8000_0000, 0, emu.MachineMode, csr)

			Expect(pc).To(Equal(uint64(0x8000_0100)))
		})
	})

	Describe("ReturnFromTrap", func() {
		It("should restore the state saved by a machine trap", func() {
			status := emu.StatusMPP.Set(csr.Status(), uint64(emu.SupervisorMode))
			status = emu.StatusMPIE.Set(status, 1)
			status = emu.StatusMPRV.Set(status, 1)
			Expect(csr.Write(emu.CSRMStatus, status)).To(Succeed())
			Expect(csr.Write(emu.CSRMEPC, 0x8000_0444)).To(Succeed())

			mode, pc := emu.ReturnFromTrap(emu.MachineMode, csr)

			Expect(mode).To(Equal(emu.SupervisorMode))
			Expect(pc).To(Equal(uint64(0x8000_0444)))

			status = csr.Status()
			Expect(emu.StatusMIE.Get(status)).To(Equal(uint64(1)))
			Expect(emu.StatusMPIE.Get(status)).To(Equal(uint64(1)))
			Expect(emu.StatusMPP.Get(status)).To(Equal(uint64(emu.UserMode)))
			Expect(emu.StatusMPRV.Get(status)).To(BeZero())
		})

		It("should return to the mode held in SPP", func() {
			status := emu.StatusSPP.Set(csr.Status(), 1)
			Expect(csr.Write(emu.CSRMStatus, status)).To(Succeed())
			Expect(csr.Write(emu.CSRSEPC, 0x8000_0888)).To(Succeed())

			mode, pc := emu.ReturnFromTrap(emu.SupervisorMode, csr)

			Expect(mode).To(Equal(emu.SupervisorMode))
			Expect(pc).To(Equal(uint64(0x8000_0888)))
			Expect(emu.StatusSPP.Get(csr.Status())).To(BeZero())
			Expect(emu.StatusSPIE.Get(csr.Status())).To(Equal(uint64(1)))
		})

		It("should return to user mode with uret", func() {
			Expect(csr.Write(emu.CSRUEPC, 0x8000_0010)).To(Succeed())
			Expect(csr.Write(emu.CSRUStatus, emu.StatusUPIE.Set(0, 1))).To(Succeed())

			mode, pc := emu.ReturnFromTrap(emu.UserMode, csr)

			Expect(mode).To(Equal(emu.UserMode))
			Expect(pc).To(Equal(uint64(0x8000_0010)))
			Expect(emu.StatusUIE.Get(csr.Status())).To(Equal(uint64(1)))
		})

		It("should round-trip a trap and its return", func() {
			mode, _ := emu.HandleTrap(emu.NewException(emu.EnvironmentCallFromUMode),
				0x8000_0020, 0, emu.UserMode, csr)
			Expect(mode).To(Equal(emu.MachineMode))

			mode, pc := emu.ReturnFromTrap(mode, csr)

			Expect(mode).To(Equal(emu.UserMode))
			Expect(pc).To(Equal(uint64(0x8000_0020)))
		})
	})

	Describe("Cause", func() {
		It("should describe itself", func() {
			Expect(emu.NewException(emu.IllegalInstruction).Error()).To(Equal("illegal instruction"))
			Expect(emu.NewAddressException(emu.StoreAccessFault, 0x10).Error()).
				To(Equal("store access fault at 0x10"))
			Expect(emu.NewExceptionReturn(emu.MachineMode).IsReturn()).To(BeTrue())
		})

		It("should set the interrupt bit for the hart width", func() {
			Expect(emu.NewInterrupt(emu.MachineExternalInterrupt).ToPrimitive(64)).
				To(Equal(uint64(1)<<63 | 11))
		})
	})
})
