//go:build !baremetal

package hal

import (
	"os"
	"sync"
	"time"
)

// hostClock wraps time.Ticker to deliver ticks over a channel. Grounded on
// _examples/QubicOS-Spark/hal/host_time.go's hostTime, simplified since the
// kernel's own tick handler (not the clock) owns delay/preemption
// bookkeeping.
type hostClock struct {
	ticker *time.Ticker
	ch     chan struct{}
	done   chan struct{}
}

// NewClock returns the host implementation of hal.Clock, suitable for use
// under `go test` and for any hosted (non-baremetal) build.
func NewClock() Clock {
	return &hostClock{}
}

func (c *hostClock) Configure(freqHz int) error {
	if freqHz <= 0 {
		return errBadFreq
	}
	c.ticker = time.NewTicker(time.Second / time.Duration(freqHz))
	c.ch = make(chan struct{}, 1)
	c.done = make(chan struct{})
	go c.pump()
	return nil
}

func (c *hostClock) pump() {
	for {
		select {
		case <-c.done:
			return
		case <-c.ticker.C:
			select {
			case c.ch <- struct{}{}:
			default:
				// Tick handler hasn't drained the last signal yet; coalesce.
			}
		}
	}
}

func (c *hostClock) Ticks() <-chan struct{} { return c.ch }

func (c *hostClock) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
	}
	if c.done != nil {
		close(c.done)
	}
}

// hostAllocator is a thin wrapper over the Go heap. The allocator contract
// is explicitly thread-context-only (never called from handler mode), so
// relying on Go's garbage-collected heap here is a faithful host realization
// of _examples/zhoujunjun-apple-xinu-go/include/memory.go's GetStk.
type hostAllocator struct{}

// NewAllocator returns the host implementation of hal.Allocator.
func NewAllocator() Allocator { return hostAllocator{} }

func (hostAllocator) Allocate(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errBadSize
	}
	return make([]byte, n), nil
}

func (hostAllocator) Free(buf []byte) {
	// Left to the garbage collector on host builds.
}

// hostConsole wraps os.Stdout with a mutex, grounded on
// _examples/QubicOS-Spark/hal/host_serial.go's hostSerial.
type hostConsole struct {
	mu sync.Mutex
	w  *os.File
}

// NewConsole returns the host implementation of hal.Console, writing to w
// (typically os.Stdout).
func NewConsole(w *os.File) Console {
	return &hostConsole{w: w}
}

func (c *hostConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.Write(p)
}

// hostSwitchTrigger satisfies SwitchTrigger with direct calls: on a hosted
// build there is no real exception to pend, so "pending" a switch just
// means "the caller will invoke the switch handler directly next."
type hostSwitchTrigger struct{}

// NewSwitchTrigger returns the host implementation of hal.SwitchTrigger.
func NewSwitchTrigger() SwitchTrigger { return hostSwitchTrigger{} }

func (hostSwitchTrigger) PendSwitch() {}
func (hostSwitchTrigger) SVCall()     {}
