package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/compliance"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/internal/rvasm"
)

const (
	zero = 0
	t0   = 5
	t1   = 6
)

// toHostImage stores value to the tohost word at base+0x1000 and spins.
func toHostImage(value int64) []byte {
	words := []uint32{
		rvasm.EncodeU(insts.OpcodeAUIPC, t0, 1),
		rvasm.EncodeI(insts.OpcodeOpImm, t1, 0, zero, value),
		rvasm.EncodeS(insts.OpcodeStore, 0b010, t0, t1, 0),
		rvasm.EncodeJ(insts.OpcodeJAL, zero, 0),
	}
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

var _ = Describe("riscv-tests", func() {
	var (
		dir            string
		stdout, stderr *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}

		Expect(os.WriteFile(filepath.Join(dir, "rv64ui-p-add.bin"), toHostImage(1), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "rv64ui-p-sub.bin"), toHostImage(5), 0o644)).To(Succeed())
	})

	It("should print results and exit 0 when everything passes", func() {
		code := run(context.Background(), []string{"-dir", dir, "rv64ui-p-add"}, stdout, stderr)

		Expect(code).To(Equal(0))
		Expect(stdout.String()).To(Equal("PASS: rv64ui-p-add\n1 passed, 0 failed\n"))
	})

	It("should write a JSON report and exit 1 on failures", func() {
		args := []string{"-dir", dir, "-json", "-timeout", "500", "rv64ui-p-add", "rv64ui-p-sub"}

		code := run(context.Background(), args, stdout, stderr)

		Expect(code).To(Equal(1))
		var results []compliance.Result
		Expect(json.Unmarshal(stdout.Bytes(), &results)).To(Succeed())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Passed).To(BeTrue())
		Expect(results[1].Name).To(Equal("rv64ui-p-sub"))
		Expect(results[1].Code).To(Equal(uint64(2)))
	})

	It("should report missing images as errors", func() {
		code := run(context.Background(), []string{"-dir", dir, "rv64ui-p-xor"}, stdout, stderr)

		Expect(code).To(Equal(1))
		Expect(stdout.String()).To(ContainSubstring("ERROR: rv64ui-p-xor"))
	})

	It("should reject unknown suites and flags", func() {
		Expect(run(context.Background(), []string{"-suite", "rv128ui"}, stdout, stderr)).To(Equal(1))
		Expect(stderr.String()).To(ContainSubstring(`unknown suite "rv128ui"`))

		Expect(run(context.Background(), []string{"-bogus"}, stdout, stderr)).To(Equal(1))
	})

	It("should expand suites before explicit names", func() {
		names, err := testNames("rv32um", []string{"extra"})

		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(HaveLen(len(compliance.RV32UM) + 1))
		Expect(names[len(names)-1]).To(Equal("extra"))
	})
})
