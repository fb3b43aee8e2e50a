//go:build unix

package main

import (
	"fmt"
	"os"
	"syscall"
)

// pollableStdin returns stdin as a file that Close can interrupt while a
// read is pending. release puts the descriptor back into blocking mode,
// since the shell that started us shares it.
func pollableStdin(fd int) (*os.File, func(), error) {
	if err := syscall.SetNonblock(fd, true); err != nil {
		return nil, nil, fmt.Errorf("stdin nonblocking: %w", err)
	}
	return os.NewFile(uintptr(fd), "/dev/stdin"), func() {
		_ = syscall.SetNonblock(fd, false)
	}, nil
}
