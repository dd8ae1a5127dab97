package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// taskState mirrors the PrFree/PrCurr/PrReady/... state set in
// _examples/zhoujunjun-apple-xinu-go/include/process.go, trimmed to the
// states spec.md §3 names.
type taskState uint8

const (
	stateReady taskState = iota
	stateActive
	stateDelayed
	stateBlocked
	stateExited
)

func (s taskState) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateActive:
		return "active"
	case stateDelayed:
		return "delayed"
	case stateBlocked:
		return "blocked"
	case stateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// blockReason identifies the primitive a blocked TCB is waiting on, per
// spec.md §3's block_info field.
type blockReason uint8

const (
	reasonNone blockReason = iota
	reasonSemaphore
)

const guardSentinel byte = 0xDE

// tcb is the Task Control Block. It embeds a single intrusive link, since
// spec.md §4.1 requires an element be a member of at most one list at a
// time: the link is reused across the ready/delayed/blocked/exited queues
// over the TCB's lifetime, never held in two of them at once.
//
// The real Cortex-M4 register-bank save/restore spec.md §4.3 describes is
// realized by the goroutine-baton engine in switch.go, so the TCB carries no
// saved stack pointer: nothing in this model executes directly on the
// allocated stack buffer, which only holds the guard pad.
type tcb struct {
	link ill.Link[tcb]

	state    taskState
	priority int
	name     string

	entry func(arg any)
	arg   any

	stack      []byte
	stackOwned bool
	guardBytes int
	stackFault bool

	delayRemaining int
	blockOn        blockReason
	pendingWaiter  *waiter

	resume  chan struct{}
	reaped  bool
}

func writeGuard(stack []byte, guardBytes int) {
	for i := 0; i < guardBytes && i < len(stack); i++ {
		stack[i] = guardSentinel
	}
}

func guardIntact(stack []byte, guardBytes int) bool {
	for i := 0; i < guardBytes && i < len(stack); i++ {
		if stack[i] != guardSentinel {
			return false
		}
	}
	return true
}

// Task is the opaque handle the public API hands callers, per design notes
// §9's "public types should be opaque to callers; internal layouts must not
// leak." Its zero value is not usable; obtain one from (*Kernel).TaskCreate.
type Task struct {
	t *tcb
	k *Kernel
}

func (h *Task) valid() bool {
	return h != nil && h.t != nil && h.k != nil && !h.t.reaped
}

// Name returns the task's diagnostic label.
func (h *Task) Name() string {
	if !h.valid() {
		return ""
	}
	return h.t.name
}
