package bmos

// InfiniteTimeout is the reserved sentinel passed to (*Semaphore).Pend to
// block indefinitely, matching SYS_TIMEOUT_INF in
// _examples/original_source/rtos/sys/semaphore/semaphore.h.
const InfiniteTimeout = -1

// Config holds the compile-time options spec.md §6 documents. Defaults are
// sourced from _examples/original_source/rtos/config.h and
// rtos/sys/task/task.h.
type Config struct {
	// NPriorities is the number of distinct priority levels; priority 0 is
	// reserved for the idle task.
	NPriorities int
	// TickHz is the tick frequency; governs delay resolution.
	TickHz int
	// DefaultStackBytes is the stack size used when a caller creates a task
	// without supplying a buffer.
	DefaultStackBytes int
	// IdleStackBytes is the stack size of the idle task.
	IdleStackBytes int
	// Preemption enables the tick handler's preemption request path.
	Preemption bool
	// StackGuardBytes is the size of the overflow pad; 0 disables the guard.
	StackGuardBytes int
	// LogCapacity bounds the diagnostic log buffer; 0 means unbounded.
	LogCapacity int
}

// DefaultConfig returns the configuration the donor implementation ships
// with (DEFAULT_STACKSIZE=2048, PREEMPTION_ENABLED,
// SYS_STACK_PROTECTION_SIZE_DEFAULT=16, SYSLOG_BUFSIZE=512). There is no
// default task priority: every TaskConfig must set Priority explicitly.
func DefaultConfig() Config {
	return Config{
		NPriorities:       7,
		TickHz:            1000,
		DefaultStackBytes: 2048,
		IdleStackBytes:    512,
		Preemption:        true,
		StackGuardBytes:   16,
		LogCapacity:       512,
	}
}

// TaskConfig is the configuration record accepted by (*Kernel).TaskCreate,
// matching spec.md §4.4's cfg fields.
type TaskConfig struct {
	// Stack is a caller-provided stack buffer. If nil, the kernel allocates
	// DefaultStackBytes (or StackBytes, if set) via the configured
	// hal.Allocator and owns it.
	Stack []byte
	// StackBytes overrides DefaultStackBytes when the kernel allocates the
	// stack itself. Ignored if Stack is non-nil.
	StackBytes int
	// Priority must be in [1, NPriorities). 0 is reserved for the idle task.
	Priority int
	// Name is an optional human-readable label used in diagnostics.
	Name string
}
