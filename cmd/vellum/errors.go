package main

import "fmt"

// usageErrorf formats a command-line usage error. Kept distinct from the
// synchronizer's own typed errors since this one only ever reaches a
// terminal, never a caller that branches on its kind.
func usageErrorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
