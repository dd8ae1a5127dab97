package bmos

import "errors"

// Error kinds the API reports, mirroring the error taxonomy in
// _examples/original_source/rtos/sys/err.h generalized to Go error values
// in the style of _examples/zhoujunjun-apple-xinu-go/include/kernel.go's
// package-level error variables.
var (
	ErrBadParam       = errors.New("bmos: bad parameter")
	ErrNoMem          = errors.New("bmos: out of memory")
	ErrInUse          = errors.New("bmos: resource in use")
	ErrDevice         = errors.New("bmos: device error")
	ErrNotSupported   = errors.New("bmos: not supported")
	ErrTimeout        = errors.New("bmos: timed out")
	ErrSchedulerFault = errors.New("bmos: scheduler fault")
	ErrNotInit        = errors.New("bmos: not initialized")
	ErrFail           = errors.New("bmos: failure")
)
