// Package hal declares the external interfaces the kernel treats as
// collaborators rather than implementing itself: a periodic tick source, a
// switch/supervisor-call trigger, a memory allocator, and a console writer.
// Each has a host-backed implementation usable under `go test` and a
// sketched (unwired) baremetal counterpart gated by the "baremetal" build
// tag, following the HAL split in
// _examples/QubicOS-Spark/hal (host_*.go vs stub_baremetal.go).
package hal

import "io"

// Clock supplies the periodic tick that drives task delays and, if
// preemption is enabled, preemption checks. Configure is a one-shot call
// made during (*bmos.Kernel).Start; Ticks delivers one signal per tick.
type Clock interface {
	Configure(freqHz int) error
	Ticks() <-chan struct{}
	Stop()
}

// Allocator is the memory allocator the kernel uses for TCBs and task
// stacks. Allocate returns an error (never a nil slice with nil error) on
// failure. Called from thread context only, never from handler mode.
type Allocator interface {
	Allocate(n int) ([]byte, error)
	Free(buf []byte)
}

// Console is the diagnostic writer the idle task flushes its log buffer to.
type Console interface {
	io.Writer
}

// SwitchTrigger is the architectural mechanism for requesting that the
// switch handler run (a pendable service request) and for raising a
// one-shot supervisor call during rtos_start. A real backend would pend an
// interrupt; the goroutine-baton engine in package bmos satisfies this
// trivially since its "switch handler" is an ordinary function call.
type SwitchTrigger interface {
	PendSwitch()
	SVCall()
}
