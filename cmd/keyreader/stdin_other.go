//go:build !unix

package main

import "os"

func pollableStdin(int) (*os.File, func(), error) {
	return os.Stdin, func() {}, nil
}
