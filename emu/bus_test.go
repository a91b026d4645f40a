package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Memory", func() {
	var mem *emu.Memory

	BeforeEach(func() {
		mem = emu.NewMemory(emu.MemoryBaseAddress, 64)
	})

	It("should store and load little-endian values", func() {
		Expect(mem.Store(emu.MemoryBaseAddress, emu.DoubleWord, 0x0102030405060708)).To(Succeed())

		v, err := mem.Load(emu.MemoryBaseAddress, emu.Byte)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0x08)))

		v, err = mem.Load(emu.MemoryBaseAddress+4, emu.Word)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0x01020304)))
	})

	It("should allow misaligned accesses", func() {
		Expect(mem.Store(emu.MemoryBaseAddress+3, emu.Word, 0xAABBCCDD)).To(Succeed())
		v, err := mem.Load(emu.MemoryBaseAddress+3, emu.Word)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0xAABBCCDD)))
	})

	It("should reject accesses outside its range", func() {
		_, err := mem.Load(emu.MemoryBaseAddress+62, emu.Word)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		_, err = mem.Load(emu.MemoryBaseAddress-1, emu.Byte)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
		Expect(mem.Write(emu.MemoryBaseAddress+60, make([]byte, 8))).
			To(MatchError(emu.ErrAddressOutOfRange))
	})

	It("should copy byte slices in and out", func() {
		Expect(mem.Write(emu.MemoryBaseAddress+8, []byte{1, 2, 3})).To(Succeed())
		data, err := mem.Read(emu.MemoryBaseAddress+8, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{1, 2, 3}))

		mem.Clear()
		data, err = mem.Read(emu.MemoryBaseAddress+8, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{0, 0, 0}))
	})
})

var _ = Describe("SystemBus", func() {
	var (
		mem *emu.Memory
		bus *emu.SystemBus
		dev *emu.HaltDevice
	)

	BeforeEach(func() {
		mem = emu.NewMemory(emu.MemoryBaseAddress, 64)
		dev = emu.NewHaltDevice(0x1000)
		bus = emu.NewSystemBus(mem, dev)
	})

	It("should route device addresses to the device", func() {
		Expect(bus.Store(0x1000, emu.Word, 3)).To(Succeed())
		v, ok := dev.Halted()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint64(3)))
	})

	It("should keep the first halt value until reset", func() {
		Expect(bus.Store(0x1000, emu.Word, 3)).To(Succeed())
		Expect(bus.Store(0x1000, emu.Word, 5)).To(Succeed())
		v, _ := dev.Halted()
		Expect(v).To(Equal(uint64(3)))

		dev.Reset()
		_, ok := dev.Halted()
		Expect(ok).To(BeFalse())
	})

	It("should only claim accesses that fit in the device", func() {
		Expect(dev.Contains(0x1004, emu.Word)).To(BeTrue())
		Expect(dev.Contains(0x1000, emu.DoubleWord)).To(BeTrue())
		Expect(dev.Contains(0x1004, emu.DoubleWord)).To(BeFalse())

		Expect(bus.Store(0x1004, emu.DoubleWord, 3)).To(MatchError(emu.ErrAddressOutOfRange))
		_, ok := dev.Halted()
		Expect(ok).To(BeFalse())
	})

	It("should route everything else to memory", func() {
		Expect(bus.Store(emu.MemoryBaseAddress, emu.Word, 7)).To(Succeed())
		v, err := mem.Load(emu.MemoryBaseAddress, emu.Word)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(7)))

		_, err = bus.Load(0x2000, emu.Word)
		Expect(err).To(MatchError(emu.ErrAddressOutOfRange))
	})

	It("should accept devices attached later", func() {
		out := &bytes.Buffer{}
		bus.Attach(emu.NewConsoleDevice(0x3000, out))
		Expect(bus.Store(0x3000, emu.Byte, 'x')).To(Succeed())
		Expect(out.String()).To(Equal("x"))
		Expect(bus.Memory()).To(BeIdenticalTo(mem))
	})
})

var _ = Describe("RegFile", func() {
	It("should ignore writes to x0", func() {
		r := &emu.RegFile{}
		r.WriteReg(0, 5)
		Expect(r.ReadReg(0)).To(BeZero())
	})

	It("should list changed registers", func() {
		r := &emu.RegFile{}
		snapshot := r.Snapshot()
		r.WriteReg(10, 42)

		Expect(r.Diff(snapshot)).To(Equal([]emu.RegChange{{Reg: 10, Old: 0, New: 42}}))
	})

	It("should dump registers by ABI name", func() {
		r := &emu.RegFile{}
		r.WriteReg(10, 0x2A)
		out := &bytes.Buffer{}
		r.Dump(out)
		Expect(out.String()).To(ContainSubstring("a0   0x000000000000002a"))
	})
})

var _ = Describe("ProgramCounter", func() {
	It("should move relative to the current address", func() {
		pc := emu.NewProgramCounter(0x1000)
		pc.JumpRelative(-8)
		Expect(pc.Read()).To(Equal(uint64(0xFF8)))
		Expect(pc.Jumped()).To(BeTrue())

		pc.Reset()
		Expect(pc.Read()).To(Equal(uint64(0x1000)))
		Expect(pc.Jumped()).To(BeFalse())
	})
})
