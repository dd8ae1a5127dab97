package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// selectNextActive implements spec.md §4.2's select_next_active contract.
// Callers must hold the kernel's critical section. outgoing is the TCB that
// was active before this call, or nil for the very first call after start.
// Its state field must already reflect where it belongs (set by the caller
// before invoking this function); selectNextActive files it into that
// queue itself, before scanning for an incoming task, so a still-runnable
// outgoing task (idle with nothing else ready) is a candidate for its own
// re-selection rather than vanishing from every queue at once.
func (k *Kernel) selectNextActive(outgoing *tcb) *tcb {
	if outgoing != nil {
		switch outgoing.state {
		case stateBlocked:
			ill.Append(&k.blocked, outgoing, &outgoing.link)
		case stateDelayed:
			ill.Append(&k.delayed, outgoing, &outgoing.link)
		case stateReady:
			// Round-robin: rejoin at the tail of its own priority queue.
			// Open question in spec.md §9 resolved as tail.
			ill.Append(&k.ready[outgoing.priority], outgoing, &outgoing.link)
		case stateExited:
			ill.Append(&k.exited, outgoing, &outgoing.link)
		case stateActive:
			// Documented-impossible per spec.md §4.2: a caller must move the
			// outgoing task out of the active state before requesting a
			// switch. Reaching this is a handler-mode fatal condition.
			k.fatal(ErrSchedulerFault)
		}
	}

	var incoming *tcb
	for p := len(k.ready) - 1; p >= 1; p-- {
		if head := popHead(&k.ready[p]); head != nil {
			incoming = head
			break
		}
	}
	if incoming == nil {
		// Priority 0 (idle) is scanned last and is always non-empty after
		// start, per spec.md §3 invariant 3 — including the case where the
		// outgoing task just disposed of above *is* idle, re-queued onto
		// ready[0] an instant ago.
		incoming = popHead(&k.ready[0])
	}
	if incoming == nil {
		panic(ErrSchedulerFault)
	}

	incoming.state = stateActive
	k.active = incoming
	return incoming
}

// CheckPreempt observes a pending preemption request raised by the tick
// handler and, if one is outstanding, voluntarily switches out. Called
// internally at the start of every Pend; Yield and Delay switch out
// unconditionally and neither consult nor clear the flag. Exported so a
// long-running task can call it directly (the spinning task in the S2
// scenario test does).
func (h *Task) CheckPreempt() {
	if !h.valid() {
		return
	}
	k := h.k
	if !k.cfg.Preemption {
		return
	}
	if !k.pendingPreempt.CompareAndSwap(true, false) {
		return
	}
	t := h.t
	cs := k.enterCritical()
	if t.state != stateActive {
		cs.exit()
		return
	}
	t.state = stateReady
	cs.exit()
	k.performSwitch(t)
}

// fatal reports an unrecoverable handler-mode condition: flush logs and
// halt. Matches spec.md §7: "unrecoverable invariants [in handler mode] are
// fatal and terminate the system with a scheduler-fault exit code after
// flushing logs."
func (k *Kernel) fatal(err error) {
	if k.log != nil && k.console != nil {
		k.log.Append(LogError, "fatal: "+err.Error())
		k.log.Flush(k.console)
	}
	panic(err)
}
