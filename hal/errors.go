package hal

import "errors"

var (
	errBadFreq        = errors.New("hal: tick frequency must be positive")
	errBadSize        = errors.New("hal: allocation size must be positive")
	errNotImplemented = errors.New("hal: baremetal backend not implemented")
)
