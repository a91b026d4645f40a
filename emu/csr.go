package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvsim/softfloat"
)

// ErrCSRNotFound is returned for an address that no privilege level maps.
var ErrCSRNotFound = errors.New("csr not found")

// Fields of sstatus and ustatus, which are views of mstatus.
var (
	ustatusMask = StatusUIE.Mask() | StatusUPIE.Mask()
	sstatusMask = ustatusMask | StatusSIE.Mask() | StatusSPIE.Mask() |
		StatusSPP.Mask() | StatusFS.Mask() | StatusXS.Mask() |
		StatusSUM.Mask() | StatusMXR.Mask() | StatusUXL.Mask() |
		StatusSD.Mask()
)

// misa extension bits.
const (
	misaF = 1 << 5
	misaI = 1 << 8
	misaM = 1 << 12
	misaS = 1 << 18
	misaU = 1 << 20
)

// csrSpace holds the CSRs of one privilege level.
type csrSpace struct {
	level PrivilegeMode
	regs  map[uint16]uint64
}

func newCSRSpace(level PrivilegeMode, addrs []uint16) *csrSpace {
	s := &csrSpace{level: level, regs: make(map[uint16]uint64, len(addrs))}
	for _, a := range addrs {
		s.regs[a] = 0
	}
	return s
}

// CSRFile is the control and status register bank of a hart. It is split
// into user, supervisor and machine spaces, searched in that order.
type CSRFile struct {
	xlen   int
	spaces [3]*csrSpace
}

// NewCSRFile creates a CSR bank with reset values for a hart of the given
// XLEN.
func NewCSRFile(xlen int) *CSRFile {
	c := &CSRFile{xlen: xlen}
	c.Reset()
	return c
}

// Reset restores every CSR to its reset value.
func (c *CSRFile) Reset() {
	c.spaces = [3]*csrSpace{
		newCSRSpace(UserMode, userAddrs()),
		newCSRSpace(SupervisorMode, supervisorAddrs()),
		newCSRSpace(MachineMode, machineAddrs()),
	}

	machine := c.spaces[2].regs
	extensions := uint64(misaI | misaM | misaF | misaS | misaU)
	if c.xlen == 32 {
		machine[CSRMISA] = 1<<30 | extensions
		return
	}

	machine[CSRMISA] = 2<<62 | extensions
	status := StatusUXL.Set(0, 2)
	machine[CSRMStatus] = StatusSXL.Set(status, 2)
}

func (c *CSRFile) space(addr uint16) (*csrSpace, error) {
	for _, s := range c.spaces {
		if _, ok := s.regs[addr]; ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: 0x%03x", ErrCSRNotFound, addr)
}

// Contains reports whether addr names a CSR.
func (c *CSRFile) Contains(addr uint16) bool {
	_, err := c.space(addr)
	return err == nil
}

// Read returns the value of a CSR.
func (c *CSRFile) Read(addr uint16) (uint64, error) {
	s, err := c.space(addr)
	if err != nil {
		return 0, err
	}

	switch addr {
	case CSRFFlags:
		return s.regs[CSRFCSR] & 0x1F, nil
	case CSRFRM:
		return (s.regs[CSRFCSR] >> 5) & 0x7, nil
	case CSRUStatus:
		return c.spaces[2].regs[CSRMStatus] & ustatusMask, nil
	case CSRSStatus:
		return c.spaces[2].regs[CSRMStatus] & sstatusMask, nil
	}

	return s.regs[addr], nil
}

// Write sets the value of a CSR. Writes to fflags, frm and fcsr update the
// shared fcsr storage, and writes to sstatus and ustatus update mstatus.
func (c *CSRFile) Write(addr uint16, value uint64) error {
	s, err := c.space(addr)
	if err != nil {
		return err
	}

	if c.xlen == 32 {
		value &= 0xFFFFFFFF
	}

	mstatus := c.spaces[2].regs[CSRMStatus]

	switch addr {
	case CSRFFlags:
		s.regs[CSRFCSR] = s.regs[CSRFCSR]&^0x1F | value&0x1F
	case CSRFRM:
		s.regs[CSRFCSR] = s.regs[CSRFCSR]&^0xE0 | (value&0x7)<<5
	case CSRFCSR:
		s.regs[CSRFCSR] = value & 0xFF
	case CSRUStatus:
		c.writeMStatus(mstatus&^ustatusMask | value&ustatusMask)
	case CSRSStatus:
		c.writeMStatus(mstatus&^sstatusMask | value&sstatusMask)
	case CSRMStatus:
		c.writeMStatus(value)
	case CSRMISA:
		// WARL: the extension set is fixed.
	case CSRMEPC, CSRSEPC, CSRUEPC:
		s.regs[addr] = value &^ 0x3
	default:
		s.regs[addr] = value
	}

	return nil
}

func (c *CSRFile) writeMStatus(value uint64) {
	old := c.spaces[2].regs[CSRMStatus]

	// MPP is WARL; the reserved encoding 2 keeps the previous value.
	if StatusMPP.Get(value) == 2 {
		value = StatusMPP.Set(value, StatusMPP.Get(old))
	}

	if c.xlen == 64 {
		value = StatusUXL.Set(value, StatusUXL.Get(old))
		value = StatusSXL.Set(value, StatusSXL.Get(old))
	}

	c.spaces[2].regs[CSRMStatus] = value
}

// ReadWrite atomically swaps value into a CSR and returns the old value
// (csrrw).
func (c *CSRFile) ReadWrite(addr uint16, value uint64) (uint64, error) {
	old, err := c.Read(addr)
	if err != nil {
		return 0, err
	}
	return old, c.Write(addr, value)
}

// ReadSet atomically sets the mask bits of a CSR and returns the old value
// (csrrs).
func (c *CSRFile) ReadSet(addr uint16, mask uint64) (uint64, error) {
	old, err := c.Read(addr)
	if err != nil {
		return 0, err
	}
	return old, c.Write(addr, old|mask)
}

// ReadClear atomically clears the mask bits of a CSR and returns the old
// value (csrrc).
func (c *CSRFile) ReadClear(addr uint16, mask uint64) (uint64, error) {
	old, err := c.Read(addr)
	if err != nil {
		return 0, err
	}
	return old, c.Write(addr, old&^mask)
}

// get reads a CSR that is known to exist.
func (c *CSRFile) get(addr uint16) uint64 {
	v, err := c.Read(addr)
	if err != nil {
		panic(err)
	}
	return v
}

// set writes a CSR that is known to exist.
func (c *CSRFile) set(addr uint16, value uint64) {
	if err := c.Write(addr, value); err != nil {
		panic(err)
	}
}

// Status returns mstatus.
func (c *CSRFile) Status() uint64 {
	return c.spaces[2].regs[CSRMStatus]
}

func (c *CSRFile) setStatus(value uint64) {
	c.spaces[2].regs[CSRMStatus] = value
}

// RoundingMode returns the dynamic rounding mode held in frm.
func (c *CSRFile) RoundingMode() softfloat.RoundingMode {
	return softfloat.RoundingMode(c.get(CSRFRM))
}

// AccrueFlags ORs floating-point exception flags into fflags.
func (c *CSRFile) AccrueFlags(flags softfloat.Flags) {
	if flags == 0 {
		return
	}
	user := c.spaces[0].regs
	user[CSRFCSR] |= uint64(flags)
}

// counterPairs maps each counter to its RV32 upper-half CSR.
var counterPairs = [][2]uint16{
	{CSRCycle, CSRCycleH},
	{CSRTime, CSRTimeH},
	{CSRInstRet, CSRInstRetH},
	{CSRMCycle, CSRMCycleH},
	{CSRMInstRet, CSRMInstRetH},
}

// AdvanceCounters increments cycle, time and instret together with their
// machine-level aliases.
func (c *CSRFile) AdvanceCounters() {
	for _, pair := range counterPairs {
		s, _ := c.space(pair[0])
		if c.xlen == 64 {
			s.regs[pair[0]]++
			continue
		}

		v := (s.regs[pair[1]]<<32 | s.regs[pair[0]]) + 1
		s.regs[pair[0]] = v & 0xFFFFFFFF
		s.regs[pair[1]] = v >> 32
	}
}
