// Package module holds the active simulation module and swaps it between
// frames.
package module

import (
	"sync/atomic"

	"github.com/vovakirdan/handmade/internal/registry"
)

type holder struct {
	m registry.Module
}

// Slot is the loop's handle on the active module. Replacements may be staged
// from any goroutine but only take effect at Commit, which the loop calls at
// the frame boundary, so a call in progress always finishes on the module it
// started with.
type Slot struct {
	current atomic.Pointer[holder]
	pending atomic.Pointer[holder]
}

// NewSlot creates a slot holding m, or the stub when m is nil.
func NewSlot(m registry.Module) *Slot {
	s := &Slot{}
	s.current.Store(&holder{m: orStub(m)})
	return s
}

// Current returns the active module. It is never nil.
func (s *Slot) Current() registry.Module {
	return s.current.Load().m
}

// Stage records m as the replacement for the next Commit. A later Stage
// before Commit wins.
func (s *Slot) Stage(m registry.Module) {
	s.pending.Store(&holder{m: orStub(m)})
}

// Pending reports whether a replacement is staged.
func (s *Slot) Pending() bool {
	return s.pending.Load() != nil
}

// Commit installs the staged module, if any, and returns it.
func (s *Slot) Commit() (registry.Module, bool) {
	h := s.pending.Swap(nil)
	if h == nil {
		return nil, false
	}
	s.current.Store(h)
	return h.m, true
}

func orStub(m registry.Module) registry.Module {
	if m == nil {
		return registry.Stub{}
	}
	return m
}
