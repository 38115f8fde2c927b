//go:build debug

package core

// DebugAsserts is true only in builds tagged "debug".
const DebugAsserts = true

// Assert panics with msg when cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic("assertion failed: " + msg)
	}
}
