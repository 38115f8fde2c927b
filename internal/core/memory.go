package core

import (
	"encoding/binary"
	"fmt"
)

// Memory is the persistent state the platform owns on behalf of a module.
//
// Modules keep their long-lived state in Permanent and scratch data in
// Transient. The platform never interprets either arena; it only copies
// them for record/replay.
type Memory struct {
	IsInitialized bool
	Permanent     []byte
	Transient     []byte
}

// NewMemory allocates both arenas.
func NewMemory(permanentSize, transientSize int) *Memory {
	return &Memory{
		Permanent: make([]byte, permanentSize),
		Transient: make([]byte, transientSize),
	}
}

// TotalSize is the number of bytes a memory snapshot occupies:
// one byte for the init flag plus both arenas.
func (m *Memory) TotalSize() int {
	return 1 + len(m.Permanent) + len(m.Transient)
}

// Reset zeroes both arenas and clears the init flag.
func (m *Memory) Reset() {
	m.IsInitialized = false
	clear(m.Permanent)
	clear(m.Transient)
}

// LoadState decodes a fixed-size little-endian struct from the start of the
// permanent arena into dst.
func (m *Memory) LoadState(dst any) error {
	if _, err := binary.Decode(m.Permanent, binary.LittleEndian, dst); err != nil {
		return fmt.Errorf("memory: cannot decode state: %w", err)
	}
	return nil
}

// StoreState encodes src into the start of the permanent arena.
func (m *Memory) StoreState(src any) error {
	if _, err := binary.Encode(m.Permanent, binary.LittleEndian, src); err != nil {
		return fmt.Errorf("memory: cannot encode state: %w", err)
	}
	return nil
}
