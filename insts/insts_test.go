package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should list every family for RV64", func() {
		Expect(insts.Families(64)).To(Equal([]insts.Extension{
			insts.ExtPrivileged, insts.ExtZifencei, insts.ExtZicsr,
			insts.ExtRV32I, insts.ExtRV64I, insts.ExtRV32M, insts.ExtRV64M,
			insts.ExtRV32F, insts.ExtRV64F,
		}))
	})

	It("should drop the RV64-only families for RV32", func() {
		for _, ext := range insts.Families(32) {
			Expect(ext.Is64Only()).To(BeFalse())
		}
		Expect(insts.Families(32)).To(HaveLen(6))
	})

	Describe("SignExtend", func() {
		It("should extend negative values", func() {
			Expect(insts.SignExtend(0x800, 12)).To(Equal(int64(-2048)))
			Expect(insts.SignExtend(0xFFF, 12)).To(Equal(int64(-1)))
		})

		It("should leave positive values unchanged", func() {
			Expect(insts.SignExtend(0x7FF, 12)).To(Equal(int64(2047)))
			Expect(insts.SignExtend(0, 12)).To(Equal(int64(0)))
		})

		It("should ignore bits above the field", func() {
			Expect(insts.SignExtend(0xF7FF, 12)).To(Equal(int64(2047)))
		})
	})

	Describe("ShiftAmount", func() {
		It("should mask 32-bit shifts to 5 bits", func() {
			Expect(insts.ShiftAmount(33, 32)).To(Equal(uint(1)))
		})

		It("should mask 64-bit shifts to 6 bits", func() {
			Expect(insts.ShiftAmount(65, 64)).To(Equal(uint(1)))
			Expect(insts.ShiftAmount(33, 64)).To(Equal(uint(33)))
		})
	})
})
