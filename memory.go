package chip8

import (
	"fmt"
	"strings"
)

const (
	MemorySize     = 4096
	StartOfProgram = 0x200
	// RomCapacity is the largest ROM that fits between StartOfProgram and the end of memory
	RomCapacity = MemorySize - StartOfProgram

	FontHeight = 5
)

// ErrRomTooLarge is returned when a ROM does not fit into the program area.
type ErrRomTooLarge struct {
	Size int
}

func (err ErrRomTooLarge) Error() string {
	return fmt.Sprintf("rom of %d bytes does not fit into memory (capacity=%d)", err.Size, RomCapacity)
}

type Memory [MemorySize]byte

// NewMemory creates a memory of 4096 bytes with the font table loaded at address 0
func NewMemory() *Memory {
	m := Memory([MemorySize]byte{})
	loadFontInto(&m)

	return &m
}

func (mem Memory) Clone() *Memory {
	m := Memory{}

	copy(m[:], mem[:])

	return &m
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

func (mem Memory) IsEqual(other Memory) bool {
	return mem == other
}

// LoadRom copies the ROM at StartOfProgram.
// A ROM larger than RomCapacity is rejected and memory is left untouched.
func (mem *Memory) LoadRom(rom []byte) error {
	if len(rom) > RomCapacity {
		return ErrRomTooLarge{Size: len(rom)}
	}

	copy(mem[StartOfProgram:], rom)

	return nil
}

// Clear zeroes the memory and reloads the font table
func (mem *Memory) Clear() {
	*mem = Memory{}
	loadFontInto(mem)
}

func (mem *Memory) ReadByte(addr uint16) byte {
	return mem[addr]
}

func (mem *Memory) WriteByte(addr uint16, b byte) {
	mem[addr] = b
}

// ReadWord reads the big-endian word at addr, addr+1.
// Both addresses wrap inside the 12-bit address space.
func (mem *Memory) ReadWord(addr uint16) uint16 {
	return uint16(mem[addr&(MemorySize-1)])<<8 | uint16(mem[(addr+1)&(MemorySize-1)])
}

// WriteWord writes w big-endian at addr, addr+1, wrapping like ReadWord
func (mem *Memory) WriteWord(addr uint16, w uint16) {
	mem[addr&(MemorySize-1)] = byte(w >> 8)
	mem[(addr+1)&(MemorySize-1)] = byte(w)
}

// FontAddress is the location of the glyph for the hex digit d
func FontAddress(d byte) uint16 {
	return uint16(d) * FontHeight
}

var font = [16 * FontHeight]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

func loadFontInto(mem *Memory) {
	copy(mem[:], font[:])
}
