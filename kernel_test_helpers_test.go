package bmos

import (
	"bytes"
	"sync"
)

// fakeClock gives tests manual control over when a tick fires, instead of
// depending on wall-clock time like hal's host implementation.
type fakeClock struct {
	ch chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{ch: make(chan struct{}, 1)}
}

func (c *fakeClock) Configure(freqHz int) error { return nil }
func (c *fakeClock) Ticks() <-chan struct{}     { return c.ch }
func (c *fakeClock) Stop()                      {}
func (c *fakeClock) fire()                      { c.ch <- struct{}{} }

type fakeAllocator struct{}

func (fakeAllocator) Allocate(n int) ([]byte, error) { return make([]byte, n), nil }
func (fakeAllocator) Free(buf []byte)                {}

// trackingAllocator records every buffer passed to Free, so tests can
// assert invariant 8 (a destroyed task's stack is released iff the kernel
// allocated it).
type trackingAllocator struct {
	mu    sync.Mutex
	freed [][]byte
}

func (a *trackingAllocator) Allocate(n int) ([]byte, error) { return make([]byte, n), nil }

func (a *trackingAllocator) Free(buf []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freed = append(a.freed, buf)
}

func (a *trackingAllocator) freedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.freed)
}

type fakeConsole struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *fakeConsole) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *fakeConsole) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

type fakeTrigger struct {
	mu      sync.Mutex
	pends   int
	svcalls int
}

func (t *fakeTrigger) PendSwitch() {
	t.mu.Lock()
	t.pends++
	t.mu.Unlock()
}

func (t *fakeTrigger) SVCall() {
	t.mu.Lock()
	t.svcalls++
	t.mu.Unlock()
}

// testKernel returns a Kernel wired to fakes and already started, plus the
// fakes so the test can drive ticks and inspect console output.
func testKernel(cfg Config) (*Kernel, *fakeClock, *fakeConsole) {
	clk := newFakeClock()
	console := &fakeConsole{}
	k := New(cfg, clk, fakeAllocator{}, console, &fakeTrigger{})
	if err := k.Start(); err != nil {
		panic(err)
	}
	return k, clk, console
}
