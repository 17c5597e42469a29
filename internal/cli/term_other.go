//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package cli

// IsTerminal always reports false; colour must be requested explicitly.
func IsTerminal(fd uintptr) bool {
	return false
}
