package emu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MemoryBaseAddress is where RAM starts and where images are loaded.
const MemoryBaseAddress uint64 = 0x8000_0000

// DefaultMemorySize is the RAM size used when none is configured.
const DefaultMemorySize uint64 = 128 << 20

// ErrAddressOutOfRange is returned for accesses outside every mapped region.
var ErrAddressOutOfRange = errors.New("address out of range")

// Size is the width of a memory access in bytes.
type Size uint8

// Access sizes.
const (
	Byte       Size = 1
	HalfWord   Size = 2
	Word       Size = 4
	DoubleWord Size = 8
)

// Memory is a flat little-endian RAM covering [base, base+size).
type Memory struct {
	base uint64
	data []byte
}

// NewMemory creates a zero-filled memory of size bytes starting at base.
func NewMemory(base, size uint64) *Memory {
	return &Memory{base: base, data: make([]byte, size)}
}

// Base returns the first mapped address.
func (m *Memory) Base() uint64 {
	return m.base
}

// Size returns the number of mapped bytes.
func (m *Memory) Size() uint64 {
	return uint64(len(m.data))
}

// End returns the first address past the memory.
func (m *Memory) End() uint64 {
	return m.base + m.Size()
}

// Contains reports whether [addr, addr+n) lies inside the memory.
func (m *Memory) Contains(addr uint64, n uint64) bool {
	return addr >= m.base && addr-m.base <= m.Size() && n <= m.Size()-(addr-m.base)
}

func (m *Memory) offset(addr uint64, size Size) (uint64, error) {
	if !m.Contains(addr, uint64(size)) {
		return 0, fmt.Errorf("%w: 0x%x", ErrAddressOutOfRange, addr)
	}
	return addr - m.base, nil
}

// Load reads a little-endian value of the given size.
func (m *Memory) Load(addr uint64, size Size) (uint64, error) {
	off, err := m.offset(addr, size)
	if err != nil {
		return 0, err
	}

	b := m.data[off:]
	switch size {
	case Byte:
		return uint64(b[0]), nil
	case HalfWord:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case Word:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		return binary.LittleEndian.Uint64(b), nil
	}
}

// Store writes the low size bytes of value little-endian.
func (m *Memory) Store(addr uint64, size Size, value uint64) error {
	off, err := m.offset(addr, size)
	if err != nil {
		return err
	}

	b := m.data[off:]
	switch size {
	case Byte:
		b[0] = byte(value)
	case HalfWord:
		binary.LittleEndian.PutUint16(b, uint16(value))
	case Word:
		binary.LittleEndian.PutUint32(b, uint32(value))
	default:
		binary.LittleEndian.PutUint64(b, value)
	}
	return nil
}

// Write copies raw bytes to addr.
func (m *Memory) Write(addr uint64, data []byte) error {
	if !m.Contains(addr, uint64(len(data))) {
		return fmt.Errorf("%w: 0x%x+%d", ErrAddressOutOfRange, addr, len(data))
	}
	copy(m.data[addr-m.base:], data)
	return nil
}

// Read copies n raw bytes starting at addr.
func (m *Memory) Read(addr uint64, n int) ([]byte, error) {
	if !m.Contains(addr, uint64(n)) {
		return nil, fmt.Errorf("%w: 0x%x+%d", ErrAddressOutOfRange, addr, n)
	}
	out := make([]byte, n)
	copy(out, m.data[addr-m.base:])
	return out, nil
}

// Clear zeroes the whole memory.
func (m *Memory) Clear() {
	clear(m.data)
}
