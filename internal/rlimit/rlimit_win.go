//go:build windows

// Package rlimit contains a function to raise rlimit.
package rlimit

// Raise is a no-op on Windows.
func Raise() (uint64, error) {
	return 0, nil
}
