//go:build !particledebug

package invariant

// Check is a no-op in release builds; violating the documented
// preconditions is undefined behavior, not a checked error (spec §7).
func Check(cond bool, msg string) {}
