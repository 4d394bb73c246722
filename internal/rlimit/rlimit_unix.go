//go:build !windows

// Package rlimit contains a function to raise rlimit.
package rlimit

import (
	"syscall"
)

// Raise raises the number of file descriptors that can be opened
// up to the hard limit, and returns the new soft limit.
// Every publisher holds a socket and, with the command transcode method,
// the pipes of a process.
func Raise() (uint64, error) {
	var rlim syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlim)
	if err != nil {
		return 0, err
	}

	if rlim.Cur < rlim.Max {
		rlim.Cur = rlim.Max
		err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rlim)
		if err != nil {
			return 0, err
		}
	}

	err = syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlim)
	if err != nil {
		return 0, err
	}

	return uint64(rlim.Cur), nil
}
