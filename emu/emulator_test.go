package emu_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

const base = emu.MemoryBaseAddress

func readCSR(e *emu.Emulator, addr uint16) uint64 {
	v, err := e.Hart().CSR.Read(addr)
	Expect(err).NotTo(HaveOccurred())
	return v
}

func stepN(e *emu.Emulator, n int) {
	for i := 0; i < n; i++ {
		result := e.Step()
		Expect(result.Err).NotTo(HaveOccurred())
	}
}

// toHostProgram writes value to the tohost word and spins.
func toHostProgram(value int64) []byte {
	return program(
		auipc(t0, 1),
		addi(t1, zero, value),
		sw(t1, t0, 0),
		jal(zero, 0),
	)
}

var _ = Describe("Emulator", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator(emu.WithMemorySize(1 << 16))
	})

	Describe("NewEmulator", func() {
		It("should start in machine mode at the memory base", func() {
			Expect(e.Hart().Mode).To(Equal(emu.MachineMode))
			Expect(e.Hart().PC.Read()).To(Equal(base))
			Expect(e.XLEN()).To(Equal(64))
		})

		It("should point sp at the top of memory", func() {
			Expect(e.RegFile().ReadReg(sp)).To(Equal(base + 1<<16))
		})
	})

	Describe("Step", func() {
		It("should execute addi and advance the PC", func() {
			Expect(e.LoadImage(program(addi(a0, zero, 42)))).To(Succeed())

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeFalse())
			Expect(result.PC).To(Equal(base))
			Expect(result.Inst.Op).To(Equal(insts.OpADDI))
			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(42)))
			Expect(e.Hart().PC.Read()).To(Equal(base + 4))
		})

		It("should keep x0 at zero", func() {
			Expect(e.LoadImage(program(addi(zero, zero, 5)))).To(Succeed())
			stepN(e, 1)
			Expect(e.RegFile().ReadReg(zero)).To(BeZero())
		})

		It("should not advance past a jump to itself", func() {
			Expect(e.LoadImage(program(jal(zero, 0)))).To(Succeed())
			stepN(e, 3)
			Expect(e.Hart().PC.Read()).To(Equal(base))
		})

		It("should link and jump with jal and jalr", func() {
			Expect(e.LoadImage(program(
				jal(ra, 8),
				addi(a0, zero, 1),
				jalr(zero, ra, 0),
			))).To(Succeed())

			stepN(e, 3)

			Expect(e.RegFile().ReadReg(ra)).To(Equal(base + 4))
			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(1)))
			Expect(e.Hart().PC.Read()).To(Equal(base + 8))
		})

		It("should take and skip branches", func() {
			Expect(e.LoadImage(program(
				addi(t0, zero, 1),
				beq(t0, zero, 8),
				bne(t0, zero, 8),
				addi(a0, zero, 1),
				addi(a1, zero, 2),
			))).To(Succeed())

			stepN(e, 4)

			Expect(e.RegFile().ReadReg(a0)).To(BeZero())
			Expect(e.RegFile().ReadReg(a1)).To(Equal(uint64(2)))
		})

		It("should store and load doublewords", func() {
			Expect(e.LoadImage(program(
				addi(t0, zero, -1),
				sd(t0, sp, -8),
				ld(a0, sp, -8),
			))).To(Succeed())

			stepN(e, 3)

			Expect(e.RegFile().ReadReg(a0)).To(Equal(^uint64(0)))
			Expect(e.Hart().LastAccess).To(Equal(emu.MemAccess{
				Valid: true, Addr: base + 1<<16 - 8, Size: emu.DoubleWord,
			}))
		})

		It("should advance the counters every iteration", func() {
			Expect(e.LoadImage(program(
				addi(a0, zero, 1),
				ebreak,
			))).To(Succeed())

			stepN(e, 2)

			Expect(readCSR(e, emu.CSRCycle)).To(Equal(uint64(2)))
			Expect(readCSR(e, emu.CSRInstRet)).To(Equal(uint64(2)))
			Expect(readCSR(e, emu.CSRMCycle)).To(Equal(uint64(2)))
			Expect(e.Cycle()).To(Equal(uint64(2)))
		})
	})

	Describe("Traps", func() {
		It("should deliver an illegal instruction to mtvec", func() {
			Expect(e.LoadImage(program(
				auipc(t0, 0),
				addi(t0, t0, 16),
				csrrw(zero, emu.CSRMTVec, t0),
				0xFFFFFFFF,
				csrrs(a0, emu.CSRMCause, zero),
			))).To(Succeed())

			stepN(e, 3)
			result := e.Step()

			Expect(result.Trap).NotTo(BeNil())
			Expect(result.Trap.Code).To(Equal(uint64(emu.IllegalInstruction)))
			Expect(e.Hart().PC.Read()).To(Equal(base + 16))
			Expect(readCSR(e, emu.CSRMEPC)).To(Equal(base + 12))
			Expect(readCSR(e, emu.CSRMTVal)).To(Equal(uint64(0xFFFFFFFF)))

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(emu.IllegalInstruction)))
		})

		It("should raise an environment call from machine mode", func() {
			Expect(e.LoadImage(program(ecall))).To(Succeed())

			result := e.Step()

			Expect(result.Trap.Code).To(Equal(uint64(emu.EnvironmentCallFromMMode)))
			Expect(readCSR(e, emu.CSRMTVal)).To(BeZero())
			Expect(readCSR(e, emu.CSRMEPC)).To(Equal(base))
		})

		It("should report a zero tval for breakpoints", func() {
			Expect(e.LoadImage(program(ebreak))).To(Succeed())
			stepN(e, 1)
			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.Breakpoint)))
			Expect(readCSR(e, emu.CSRMTVal)).To(BeZero())
		})

		It("should report misaligned jump targets", func() {
			Expect(e.LoadImage(program(
				auipc(t0, 0),
				jalr(ra, t0, 2),
			))).To(Succeed())

			stepN(e, 2)

			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.InstructionAddressMisaligned)))
			Expect(readCSR(e, emu.CSRMTVal)).To(Equal(base + 2))
			Expect(e.RegFile().ReadReg(ra)).To(BeZero())
		})

		It("should fault on stores outside memory", func() {
			Expect(e.LoadImage(program(sw(zero, zero, 0x100)))).To(Succeed())
			stepN(e, 1)
			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.StoreAccessFault)))
			Expect(readCSR(e, emu.CSRMTVal)).To(Equal(uint64(0x100)))
		})

		It("should return to user mode with mret and trap back on ecall", func() {
			Expect(e.LoadImage(program(
				auipc(t0, 0),
				addi(t0, t0, 16),
				csrrw(zero, emu.CSRMEPC, t0),
				mret,
				addi(a0, zero, 7),
				ecall,
			))).To(Succeed())

			stepN(e, 5)

			Expect(e.Hart().Mode).To(Equal(emu.UserMode))
			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(7)))
			Expect(emu.StatusMPIE.Get(e.Hart().CSR.Status())).To(Equal(uint64(1)))

			stepN(e, 1)

			Expect(e.Hart().Mode).To(Equal(emu.MachineMode))
			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.EnvironmentCallFromUMode)))
			Expect(emu.StatusMPP.Get(e.Hart().CSR.Status())).To(Equal(uint64(emu.UserMode)))
		})

		It("should reject sret from machine mode", func() {
			Expect(e.LoadImage(program(sret))).To(Succeed())
			result := e.Step()
			Expect(result.Trap.Code).To(Equal(uint64(emu.IllegalInstruction)))
			Expect(e.Hart().Mode).To(Equal(emu.MachineMode))
		})

		It("should reject CSR access above the current privilege", func() {
			Expect(e.LoadImage(program(
				auipc(t0, 0),
				addi(t0, t0, 16),
				csrrw(zero, emu.CSRMEPC, t0),
				mret,
				csrrs(a0, emu.CSRMStatus, zero),
			))).To(Succeed())

			stepN(e, 5)

			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.IllegalInstruction)))
			Expect(e.Hart().Mode).To(Equal(emu.MachineMode))
		})

		It("should reject writes to read-only CSRs", func() {
			Expect(e.LoadImage(program(csrrwi(zero, emu.CSRCycle, 1)))).To(Succeed())
			stepN(e, 1)
			Expect(readCSR(e, emu.CSRMCause)).To(Equal(uint64(emu.IllegalInstruction)))
		})

		It("should allow reading read-only CSRs", func() {
			Expect(e.LoadImage(program(csrrs(a0, emu.CSRMHartID, zero)))).To(Succeed())
			result := e.Step()
			Expect(result.Trap).To(BeNil())
		})

		It("should treat unknown CSRs as illegal instructions", func() {
			Expect(e.LoadImage(program(csrrs(a0, 0x7C0, zero)))).To(Succeed())
			result := e.Step()
			Expect(result.Trap.Code).To(Equal(uint64(emu.IllegalInstruction)))
		})
	})

	Describe("Run", func() {
		It("should pass when tohost is written with 1", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithPredicate(emu.ToHostPredicate(emu.DefaultToHostAddress)),
			)
			Expect(e.LoadImage(toHostProgram(1))).To(Succeed())

			result, err := e.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(emu.ToHostPass))
			Expect(e.HaltReason()).To(Equal(emu.HaltByPredicate))
			Expect(e.InstructionCount()).To(Equal(uint64(3)))
		})

		It("should report the failing value", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithPredicate(emu.ToHostPredicate(emu.DefaultToHostAddress)),
			)
			Expect(e.LoadImage(toHostProgram(3))).To(Succeed())

			result, err := e.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(uint64(3)))
		})

		It("should stop an endless loop with the timeout predicate", func() {
			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithPredicate(emu.AnyPredicate(
					emu.ToHostPredicate(emu.DefaultToHostAddress),
					emu.TimeoutPredicate(100),
				)),
			)
			Expect(e.LoadImage(program(jal(zero, 0)))).To(Succeed())

			_, err := e.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(e.Cycle()).To(Equal(uint64(100)))
			Expect(e.HaltReason()).To(Equal(emu.HaltByPredicate))
		})

		It("should return a0 when the PC leaves memory", func() {
			e = emu.NewEmulator(emu.WithMemorySize(16))
			Expect(e.LoadImage(program(
				addi(a0, zero, 9),
				auipc(t0, 0),
				jalr(zero, t0, 12),
			))).To(Succeed())

			result, err := e.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(uint64(9)))
			Expect(e.HaltReason()).To(Equal(emu.HaltLeftMemory))

			again := e.Step()
			Expect(again.Halted).To(BeTrue())
			Expect(again.Result).To(Equal(uint64(9)))
		})

		It("should stop when the context is cancelled", func() {
			Expect(e.LoadImage(program(jal(zero, 0)))).To(Succeed())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := e.Run(ctx)

			Expect(err).To(MatchError(context.Canceled))
		})

		It("should stop at the instruction limit", func() {
			e = emu.NewEmulator(emu.WithMemorySize(1<<16), emu.WithMaxInstructions(10))
			Expect(e.LoadImage(program(jal(zero, 0)))).To(Succeed())

			_, err := e.Run(context.Background())

			Expect(err).To(MatchError(emu.ErrMaxInstructions))
			Expect(e.InstructionCount()).To(Equal(uint64(10)))
		})
	})

	Describe("Devices", func() {
		It("should halt on a write to the halt register", func() {
			dev := emu.NewHaltDevice(0x1000_0000)
			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithDevice(dev),
				emu.WithPredicate(emu.HaltPredicate(dev)),
			)
			Expect(e.LoadImage(program(
				lui(t0, 0x10000),
				addi(t1, zero, 5),
				sw(t1, t0, 0),
				jal(zero, 0),
			))).To(Succeed())

			result, err := e.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(uint64(5)))
		})

		It("should print console writes", func() {
			out := &bytes.Buffer{}
			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithStdout(out),
				emu.WithConsole(0x1000_1000),
			)
			Expect(e.LoadImage(program(
				lui(t0, 0x10001),
				addi(t1, zero, 'h'),
				sw(t1, t0, 0),
				addi(t1, zero, 'i'),
				sw(t1, t0, 0),
			))).To(Succeed())

			stepN(e, 5)

			Expect(out.String()).To(Equal("hi"))
		})
	})

	Describe("Trace", func() {
		It("should print each instruction and its register changes", func() {
			trace := &bytes.Buffer{}
			e = emu.NewEmulator(emu.WithMemorySize(1<<16), emu.WithTrace(trace))
			Expect(e.LoadImage(program(addi(a0, zero, 42), ebreak))).To(Succeed())

			stepN(e, 2)

			Expect(trace.String()).To(ContainSubstring("80000000: addi a0, zero, 42"))
			Expect(trace.String()).To(ContainSubstring("a0      : 0 -> 2a"))
			Expect(trace.String()).To(ContainSubstring("trap: breakpoint"))
		})
	})

	Describe("Extensions", func() {
		It("should execute instructions of a custom extension", func() {
			const custom0 = 0b0001011
			decode := func(word uint32) (*insts.Instruction, bool) {
				if word&0x7F != custom0 {
					return nil, false
				}
				return &insts.Instruction{Raw: word, Rd: uint8(word>>7) & 0x1F}, true
			}
			execute := func(inst *insts.Instruction, h *emu.Hart) error {
				h.WriteX(inst.Rd, 99)
				return nil
			}

			e = emu.NewEmulator(
				emu.WithMemorySize(1<<16),
				emu.WithExtension(emu.NewExtension(insts.ExtUnknown, decode, execute)),
			)
			Expect(e.LoadImage(program(uint32(a0)<<7 | custom0))).To(Succeed())

			stepN(e, 1)

			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(99)))
			Expect(e.Hart().PC.Read()).To(Equal(base + 4))
		})
	})

	Describe("RV32", func() {
		BeforeEach(func() {
			e = emu.NewEmulator(emu.WithMemorySize(1<<16), emu.WithXLEN(32))
		})

		It("should sign-extend results from bit 31", func() {
			Expect(e.LoadImage(program(
				lui(a0, 0x80000),
				addi(a1, a0, -1),
			))).To(Succeed())

			stepN(e, 2)

			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(0xFFFFFFFF80000000)))
			Expect(e.RegFile().ReadReg(a1)).To(Equal(uint64(0x7FFFFFFF)))
		})

		It("should treat RV64-only instructions as illegal", func() {
			Expect(e.LoadImage(program(ld(a0, sp, -8)))).To(Succeed())
			result := e.Step()
			Expect(result.Trap.Code).To(Equal(uint64(emu.IllegalInstruction)))
		})

		It("should set bit 31 of mcause for interrupts", func() {
			cause := emu.NewInterrupt(emu.MachineTimerInterrupt)
			Expect(cause.ToPrimitive(32)).To(Equal(uint64(0x80000007)))
		})
	})

	Describe("Reset", func() {
		It("should restore the reset state but keep memory", func() {
			Expect(e.LoadImage(program(addi(a0, zero, 1), ecall))).To(Succeed())
			stepN(e, 2)

			e.Reset()

			Expect(e.Hart().PC.Read()).To(Equal(base))
			Expect(e.RegFile().ReadReg(a0)).To(BeZero())
			Expect(e.RegFile().ReadReg(sp)).To(Equal(base + 1<<16))
			Expect(e.InstructionCount()).To(BeZero())
			Expect(readCSR(e, emu.CSRMCause)).To(BeZero())

			stepN(e, 1)
			Expect(e.RegFile().ReadReg(a0)).To(Equal(uint64(1)))
		})
	})
})
