//go:build debugvalidation

package detect

// BugOn panics when cond is true. Enabled with -tags debugvalidation;
// release builds compile it to a no-op.
func BugOn(cond bool, msg string) {
	if cond {
		panic(msg)
	}
}
