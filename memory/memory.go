// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the flat, byte addressable store of the machine.
package memory

import (
	"errors"
	"slices"
)

const (
	DEFAULT_SIZE = 1 << 16 // Default capacity, one full 16-bit address space.
	MAX_SIZE     = 1 << 16 // Largest useful capacity for 16-bit addresses.
)

// Memory is a fixed capacity byte store.
// Every address is taken modulo the capacity, so no access can fall
// outside of the backing storage.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of the given capacity.
// A size of zero or less selects DEFAULT_SIZE.
func NewMemory(size int) (mem *Memory) {
	if size <= 0 {
		size = DEFAULT_SIZE
	}

	mem = &Memory{
		data: make([]byte, size),
	}

	return
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// Clear zeroes all of memory.
func (mem *Memory) Clear() {
	clear(mem.data)
}

// Load copies an image to the start of memory.
// Images longer than the capacity are rejected, leaving memory untouched.
func (mem *Memory) Load(image []byte) (err error) {
	if len(image) > len(mem.data) {
		err = errors.Join(ErrImageTooLarge, ErrSize{Size: len(image), Capacity: len(mem.data)})
		return
	}

	copy(mem.data, image)

	return
}

func (mem *Memory) index(addr uint16) int {
	return int(addr) % len(mem.data)
}

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint16) byte {
	return mem.data[mem.index(addr)]
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint16, value byte) {
	mem.data[mem.index(addr)] = value
}

// Snapshot returns a copy of the memory contents.
func (mem *Memory) Snapshot() []byte {
	return slices.Clone(mem.data)
}
