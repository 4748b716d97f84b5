// Package clock provides a tiny time abstraction.
//
// Business code depends on the Clocker interface instead of calling
// time.Now() directly, so expiry rules can be exercised with a fixed or
// manually advanced time in tests (see Func).
package clock
