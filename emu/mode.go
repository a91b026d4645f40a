// Package emu provides functional RISC-V hart emulation.
package emu

import "fmt"

// PrivilegeMode is a RISC-V privilege level, encoded as in the
// previous-privilege fields of mstatus.
type PrivilegeMode uint8

// Privilege modes.
const (
	UserMode       PrivilegeMode = 0b00
	SupervisorMode PrivilegeMode = 0b01
	MachineMode    PrivilegeMode = 0b11
)

func (m PrivilegeMode) String() string {
	switch m {
	case UserMode:
		return "U"
	case SupervisorMode:
		return "S"
	case MachineMode:
		return "M"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// StatusField locates a field inside mstatus.
type StatusField struct {
	Offset uint
	Width  uint
}

// mstatus fields.
var (
	StatusUIE  = StatusField{0, 1}
	StatusSIE  = StatusField{1, 1}
	StatusMIE  = StatusField{3, 1}
	StatusUPIE = StatusField{4, 1}
	StatusSPIE = StatusField{5, 1}
	StatusMPIE = StatusField{7, 1}
	StatusSPP  = StatusField{8, 1}
	StatusMPP  = StatusField{11, 2}
	StatusFS   = StatusField{13, 2}
	StatusXS   = StatusField{15, 2}
	StatusMPRV = StatusField{17, 1}
	StatusSUM  = StatusField{18, 1}
	StatusMXR  = StatusField{19, 1}
	StatusTVM  = StatusField{20, 1}
	StatusTW   = StatusField{21, 1}
	StatusTSR  = StatusField{22, 1}
	StatusUXL  = StatusField{32, 2}
	StatusSXL  = StatusField{34, 2}
	StatusSD   = StatusField{63, 1}
)

// Mask returns the field's bits in place.
func (f StatusField) Mask() uint64 {
	return (uint64(1)<<f.Width - 1) << f.Offset
}

// Get extracts the field from status.
func (f StatusField) Get(status uint64) uint64 {
	return (status & f.Mask()) >> f.Offset
}

// Set returns status with the field replaced by value.
func (f StatusField) Set(status, value uint64) uint64 {
	return status&^f.Mask() | (value<<f.Offset)&f.Mask()
}
