//go:build !debug

package core

// DebugAsserts is true only in builds tagged "debug".
const DebugAsserts = false

// Assert panics with msg when cond is false in debug builds.
// Release builds compile it to nothing.
func Assert(cond bool, msg string) {}
