package emu

import (
	"fmt"
	"io"
)

// Bus routes loads and stores from the hart to memory and devices.
type Bus interface {
	Load(addr uint64, size Size) (uint64, error)
	Store(addr uint64, size Size, value uint64) error
}

// Device is a memory-mapped peripheral.
type Device interface {
	Bus

	// Contains reports whether the device decodes [addr, addr+size).
	Contains(addr uint64, size Size) bool
}

// SystemBus dispatches accesses to the first device that claims them and
// otherwise to RAM.
type SystemBus struct {
	memory  *Memory
	devices []Device
}

// NewSystemBus creates a bus over memory and the given devices.
func NewSystemBus(memory *Memory, devices ...Device) *SystemBus {
	return &SystemBus{memory: memory, devices: devices}
}

// Attach adds a device to the bus.
func (b *SystemBus) Attach(d Device) {
	b.devices = append(b.devices, d)
}

// Memory returns the RAM behind the bus.
func (b *SystemBus) Memory() *Memory {
	return b.memory
}

func (b *SystemBus) route(addr uint64, size Size) Bus {
	for _, d := range b.devices {
		if d.Contains(addr, size) {
			return d
		}
	}
	return b.memory
}

// Load reads from the device or memory mapped at addr.
func (b *SystemBus) Load(addr uint64, size Size) (uint64, error) {
	return b.route(addr, size).Load(addr, size)
}

// Store writes to the device or memory mapped at addr.
func (b *SystemBus) Store(addr uint64, size Size, value uint64) error {
	return b.route(addr, size).Store(addr, size, value)
}

// HaltDevice is a write-triggered halt register: the first store to it
// records the stored value as the program's result.
type HaltDevice struct {
	addr   uint64
	halted bool
	value  uint64
}

// NewHaltDevice creates a halt register at addr.
func NewHaltDevice(addr uint64) *HaltDevice {
	return &HaltDevice{addr: addr}
}

// Contains implements Device. The register is eight bytes wide and only
// claims accesses that fit inside it.
func (d *HaltDevice) Contains(addr uint64, size Size) bool {
	return addr >= d.addr && addr+uint64(size) <= d.addr+8
}

// Load returns the last value written.
func (d *HaltDevice) Load(addr uint64, size Size) (uint64, error) {
	return d.value, nil
}

// Store records value and requests a halt.
func (d *HaltDevice) Store(addr uint64, size Size, value uint64) error {
	if !d.halted {
		d.halted = true
		d.value = value
	}
	return nil
}

// Halted reports whether the register was written, and the value written.
func (d *HaltDevice) Halted() (uint64, bool) {
	return d.value, d.halted
}

// Reset re-arms the register.
func (d *HaltDevice) Reset() {
	d.halted = false
	d.value = 0
}

// ConsoleDevice is a one-byte transmit register: each store writes its low
// byte to an output stream.
type ConsoleDevice struct {
	addr uint64
	out  io.Writer
}

// NewConsoleDevice creates a console register at addr writing to out.
func NewConsoleDevice(addr uint64, out io.Writer) *ConsoleDevice {
	return &ConsoleDevice{addr: addr, out: out}
}

// Contains implements Device.
func (d *ConsoleDevice) Contains(addr uint64, size Size) bool {
	return addr == d.addr
}

// Load always reads zero.
func (d *ConsoleDevice) Load(addr uint64, size Size) (uint64, error) {
	return 0, nil
}

// Store writes the low byte of value.
func (d *ConsoleDevice) Store(addr uint64, size Size, value uint64) error {
	if _, err := d.out.Write([]byte{byte(value)}); err != nil {
		return fmt.Errorf("console write: %w", err)
	}
	return nil
}
