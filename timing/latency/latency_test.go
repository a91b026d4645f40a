package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/latency"
)

var _ = Describe("Latency", func() {
	var (
		table   *latency.Table
		decoder *insts.Decoder
	)

	BeforeEach(func() {
		table = latency.NewTable()
		decoder = insts.NewDecoder(64)
	})

	decode := func(word uint32) *insts.Instruction {
		inst := decoder.Decode(word)
		Expect(inst).NotTo(BeNil())
		return inst
	}

	Describe("Default Timing Values", func() {
		It("should have the default latencies", func() {
			config := table.Config()
			Expect(config.ALULatency).To(Equal(uint64(1)))
			Expect(config.BranchLatency).To(Equal(uint64(1)))
			Expect(config.BranchMispredictPenalty).To(Equal(uint64(2)))
			Expect(config.LoadLatency).To(Equal(uint64(2)))
			Expect(config.StoreLatency).To(Equal(uint64(1)))
			Expect(config.DivideLatency).To(Equal(uint64(20)))
		})
	})

	DescribeTable("instruction classes",
		func(word uint32, class latency.Class, want uint64) {
			inst := decode(word)
			Expect(latency.ClassOf(inst)).To(Equal(class))
			Expect(table.GetLatency(inst)).To(Equal(want))
		},
		// addi a0, zero, 1
		Entry("addi", uint32(0x00100513), latency.ClassALU, uint64(1)),
		// add a0, a1, a2
		Entry("add", uint32(0x00c58533), latency.ClassALU, uint64(1)),
		// lui a0, 1
		Entry("lui", uint32(0x00001537), latency.ClassALU, uint64(1)),
		// beq a0, a1, 8
		Entry("beq", uint32(0x00b50463), latency.ClassBranch, uint64(1)),
		// jal ra, 8
		Entry("jal", uint32(0x008000ef), latency.ClassBranch, uint64(1)),
		// ld a0, 0(sp)
		Entry("ld", uint32(0x00013503), latency.ClassLoad, uint64(2)),
		// sw a0, 0(sp)
		Entry("sw", uint32(0x00a12023), latency.ClassStore, uint64(1)),
		// mul a0, a1, a2
		Entry("mul", uint32(0x02c58533), latency.ClassMultiply, uint64(3)),
		// divw a0, a1, a2
		Entry("divw", uint32(0x02c5c53b), latency.ClassDivide, uint64(20)),
		// fadd.s f0, f1, f2
		Entry("fadd.s", uint32(0x00208053), latency.ClassFP, uint64(4)),
		// fmadd.s f0, f1, f2, f3
		Entry("fmadd.s", uint32(0x18208043), latency.ClassFPFused, uint64(5)),
		// fsqrt.s f0, f1
		Entry("fsqrt.s", uint32(0x58008053), latency.ClassFPDivSqrt, uint64(16)),
		// flw f0, 0(sp)
		Entry("flw", uint32(0x00012007), latency.ClassLoad, uint64(2)),
		// csrrs a0, mstatus, zero
		Entry("csrrs", uint32(0x30002573), latency.ClassCSR, uint64(1)),
		// ecall
		Entry("ecall", uint32(0x00000073), latency.ClassSystem, uint64(1)),
		// mret
		Entry("mret", uint32(0x30200073), latency.ClassSystem, uint64(1)),
	)

	Describe("Instruction Type Detection", func() {
		It("should detect memory operations", func() {
			Expect(table.IsMemoryOp(decode(0x00013503))).To(BeTrue())
			Expect(table.IsMemoryOp(decode(0x00a12023))).To(BeTrue())
			Expect(table.IsMemoryOp(decode(0x00100513))).To(BeFalse())
		})

		It("should separate loads from stores", func() {
			Expect(table.IsLoadOp(decode(0x00013503))).To(BeTrue())
			Expect(table.IsStoreOp(decode(0x00013503))).To(BeFalse())
			Expect(table.IsStoreOp(decode(0x00a12023))).To(BeTrue())
		})

		It("should detect branch operations", func() {
			Expect(table.IsBranchOp(decode(0x00b50463))).To(BeTrue())
			Expect(table.IsBranchOp(decode(0x00100513))).To(BeFalse())
		})
	})

	Describe("Nil Instruction Handling", func() {
		It("should return 1 for nil instruction", func() {
			Expect(table.GetLatency(nil)).To(Equal(uint64(1)))
		})

		It("should return false for nil instruction checks", func() {
			Expect(table.IsMemoryOp(nil)).To(BeFalse())
			Expect(table.IsBranchOp(nil)).To(BeFalse())
		})
	})

	Describe("Custom Configuration", func() {
		It("should use custom config values", func() {
			config := latency.DefaultTimingConfig()
			config.LoadLatency = 7
			config.DivideLatency = 33
			table = latency.NewTableWithConfig(config)

			Expect(table.GetLatency(decode(0x00013503))).To(Equal(uint64(7)))
			Expect(table.ClassLatency(latency.ClassDivide)).To(Equal(uint64(33)))
		})
	})

	It("should name classes", func() {
		Expect(latency.ClassFPDivSqrt.String()).To(Equal("fp-div-sqrt"))
		Expect(latency.Class(200).String()).To(Equal("unknown"))
	})
})

var _ = Describe("TimingConfig", func() {
	Describe("Default Config", func() {
		It("should create valid default config", func() {
			Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
		})
	})

	Describe("Validation", func() {
		It("should reject zero ALU latency", func() {
			config := latency.DefaultTimingConfig()
			config.ALULatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("alu_latency")))
		})

		It("should reject zero divide latency", func() {
			config := latency.DefaultTimingConfig()
			config.DivideLatency = 0
			Expect(config.Validate()).To(MatchError(ContainSubstring("divide_latency")))
		})

		It("should allow zero penalties", func() {
			config := latency.DefaultTimingConfig()
			config.BranchMispredictPenalty = 0
			config.TrapPenalty = 0
			Expect(config.Validate()).To(Succeed())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := latency.DefaultTimingConfig()
			clone := original.Clone()
			clone.ALULatency = 100

			Expect(original.ALULatency).To(Equal(uint64(1)))
			Expect(clone.ALULatency).To(Equal(uint64(100)))
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			tempDir = GinkgoT().TempDir()
		})

		It("should save and load config", func() {
			original := latency.DefaultTimingConfig()
			original.ALULatency = 5
			original.FPDivSqrtLatency = 30

			path := filepath.Join(tempDir, "timing.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "partial.json")
			Expect(os.WriteFile(path, []byte(`{"load_latency": 9}`), 0644)).To(Succeed())

			loaded, err := latency.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.LoadLatency).To(Equal(uint64(9)))
			Expect(loaded.ALULatency).To(Equal(uint64(1)))
		})

		It("should return error for non-existent file", func() {
			_, err := latency.LoadConfig(filepath.Join(tempDir, "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			Expect(os.WriteFile(path, []byte("not valid json"), 0644)).To(Succeed())

			_, err := latency.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
