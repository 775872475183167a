//go:build !unix && !windows

package mmap

import "errors"

var errUnsupported = errors.New("mmap: anonymous mappings not supported on this platform")

func osMapAnon(int) ([]byte, func([]byte) error, error) {
	return nil, nil, errUnsupported
}
