//go:build baremetal

package hal

// Baremetal implementations of the External Interfaces. These are
// deliberately unimplemented sketches, not wired into any test: a real
// Cortex-M4 target needs SysTick/NVIC register programming, a bump or pool
// allocator over a linker-reserved heap region
// (_examples/iansmith-mazarin/src/mazboot/golang/main/heap.go is the shape
// to follow), and a UART or SWO console. The teacher stubs the equivalent
// architecture glue the same way: see
// _examples/zhoujunjun-apple-xinu-go/include/intutils.go's Disable/Restore
// and resched.go's ctxsw, both of which print a placeholder instead of
// touching real hardware.

type baremetalClock struct{}

// NewClock returns the baremetal implementation of hal.Clock.
// TODO: program SysTick for freqHz and deliver ticks from its ISR.
func NewClock() Clock { return &baremetalClock{} }

func (*baremetalClock) Configure(freqHz int) error { return errNotImplemented }
func (*baremetalClock) Ticks() <-chan struct{}      { return nil }
func (*baremetalClock) Stop()                       {}

type baremetalAllocator struct{}

// NewAllocator returns the baremetal implementation of hal.Allocator.
// TODO: bump-allocate from the linker-reserved heap region.
func NewAllocator() Allocator { return baremetalAllocator{} }

func (baremetalAllocator) Allocate(n int) ([]byte, error) { return nil, errNotImplemented }
func (baremetalAllocator) Free(buf []byte)                {}

type baremetalConsole struct{}

// NewConsole returns the baremetal implementation of hal.Console.
// TODO: wire to UART or SWO, per _examples/original_source/rtos/config.h's
// SYSLOG options.
func NewConsole() Console { return baremetalConsole{} }

func (baremetalConsole) Write(p []byte) (int, error) { return 0, errNotImplemented }

type baremetalSwitchTrigger struct{}

// NewSwitchTrigger returns the baremetal implementation of hal.SwitchTrigger.
// TODO: set SCB->ICSR.PENDSVSET and issue `svc 0`, per
// _examples/original_source/rtos/sys/task/task.c's set_pendsv/trigger_svcall.
func NewSwitchTrigger() SwitchTrigger { return baremetalSwitchTrigger{} }

func (baremetalSwitchTrigger) PendSwitch() {}
func (baremetalSwitchTrigger) SVCall()     {}
