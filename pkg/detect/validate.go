//go:build !debugvalidation

package detect

// BugOn is a defensive assertion for states that setup-time validation
// makes unreachable. In release builds it is a no-op; build with
// -tags debugvalidation to turn violations into panics.
func BugOn(cond bool, msg string) {}
