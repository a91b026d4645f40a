// Package loader reads RISC-V program images, either flat binaries or ELF
// executables, and places them in an emulator's memory.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rvsim/emu"
)

// ErrNotRISCV is returned for ELF files built for another machine.
var ErrNotRISCV = errors.New("not a RISC-V ELF file")

// ToHostSymbol is the symbol riscv-tests images use for their result word.
const ToHostSymbol = "tohost"

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment is a piece of the image to copy into memory.
type Segment struct {
	// Addr is the physical address the segment is loaded at.
	Addr uint64
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint64
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded image ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint64
	// Segments contains all loadable segments.
	Segments []Segment
	// XLEN is 32 or 64 for ELF images and 0 for flat binaries.
	XLEN int
	// ToHost is the address of the tohost symbol if HasToHost is set.
	ToHost    uint64
	HasToHost bool
}

// Load reads an image. Files starting with the ELF magic are parsed as
// RISC-V ELF executables; anything else is a flat binary placed at
// emu.MemoryBaseAddress.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return parseELF(bytes.NewReader(data))
	}

	return &Program{
		EntryPoint: emu.MemoryBaseAddress,
		Segments: []Segment{{
			Addr:    emu.MemoryBaseAddress,
			Data:    data,
			MemSize: uint64(len(data)),
			Flags:   SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

func parseELF(r io.ReaderAt) (*Program, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("%w (machine type: %v)", ErrNotRISCV, f.Machine)
	}

	prog := &Program{EntryPoint: f.Entry, XLEN: 64}
	if f.Class == elf.ELFCLASS32 {
		prog.XLEN = 32
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		seg, err := readSegment(phdr)
		if err != nil {
			return nil, err
		}
		prog.Segments = append(prog.Segments, seg)
	}

	syms, err := f.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, fmt.Errorf("failed to read symbols: %w", err)
	}
	for _, s := range syms {
		if s.Name == ToHostSymbol {
			prog.ToHost, prog.HasToHost = s.Value, true
			break
		}
	}

	return prog, nil
}

func readSegment(phdr *elf.Prog) (Segment, error) {
	data := make([]byte, phdr.Filesz)
	if phdr.Filesz > 0 {
		n, err := phdr.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return Segment{}, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Paddr, err)
		}
		if uint64(n) != phdr.Filesz {
			return Segment{}, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
				phdr.Paddr, n, phdr.Filesz)
		}
	}

	// Convert ELF flags to our segment flags
	var flags SegmentFlags
	if phdr.Flags&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if phdr.Flags&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if phdr.Flags&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}

	return Segment{
		Addr:    phdr.Paddr,
		Data:    data,
		MemSize: phdr.Memsz,
		Flags:   flags,
	}, nil
}

// LoadInto copies every segment into the emulator's memory, zero-filling
// the BSS tail of each, and points the program counter at the entry point.
func (p *Program) LoadInto(e *emu.Emulator) error {
	for _, seg := range p.Segments {
		if err := e.LoadSegment(seg.Addr, seg.Data); err != nil {
			return err
		}

		if seg.MemSize > uint64(len(seg.Data)) {
			bss := make([]byte, seg.MemSize-uint64(len(seg.Data)))
			if err := e.LoadSegment(seg.Addr+uint64(len(seg.Data)), bss); err != nil {
				return err
			}
		}
	}

	e.SetEntry(p.EntryPoint)
	return nil
}
