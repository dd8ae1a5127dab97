package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// TaskCreate installs a new TCB onto the ready queue at cfg.Priority and
// spawns the goroutine that will run entry once the scheduler selects it,
// matching spec.md §4.4's create contract. It does not run entry itself;
// the task is not guaranteed to execute before this call returns.
func (k *Kernel) TaskCreate(entry func(arg any), arg any, cfg TaskConfig) (*Task, error) {
	if entry == nil {
		return nil, ErrBadParam
	}
	if cfg.Priority <= 0 || cfg.Priority >= k.cfg.NPriorities {
		return nil, ErrBadParam
	}

	stack := cfg.Stack
	owned := false
	if stack == nil {
		stackBytes := cfg.StackBytes
		if stackBytes <= 0 {
			stackBytes = k.cfg.DefaultStackBytes
		}
		buf, err := k.alloc.Allocate(stackBytes)
		if err != nil {
			return nil, ErrNoMem
		}
		stack = buf
		owned = true
	}

	t := &tcb{
		state:      stateReady,
		priority:   cfg.Priority,
		name:       cfg.Name,
		entry:      entry,
		arg:        arg,
		stack:      stack,
		stackOwned: owned,
		guardBytes: k.cfg.StackGuardBytes,
		resume:     make(chan struct{}, 1),
	}
	writeGuard(t.stack, t.guardBytes)

	cs := k.enterCritical()
	ill.Append(&k.ready[t.priority], t, &t.link)
	cs.exit()

	h := &Task{t: t, k: k}
	go k.runTask(t)
	return h, nil
}

// runTask is the goroutine body for a user task: it parks until the
// scheduler first selects it, runs its entry function, then falls through
// to the exit trampoline if entry returns — spec.md §4.4's "automatic
// destroy(self) if the entry function returns."
func (k *Kernel) runTask(t *tcb) {
	<-t.resume
	t.entry(t.arg)
	k.exitSelf(t)
}

func (k *Kernel) exitSelf(t *tcb) {
	cs := k.enterCritical()
	t.state = stateExited
	cs.exit()
	k.performFinalSwitch(t)
}

// Yield transitions the calling task from active to ready and pends a
// switch, returning only once the scheduler selects it again.
func (h *Task) Yield() error {
	if !h.valid() {
		return ErrBadParam
	}
	t := h.t
	k := h.k
	cs := k.enterCritical()
	t.state = stateReady
	cs.exit()
	k.performSwitch(t)
	return nil
}

// Delay transitions the calling task from active to delayed for
// approximately ms milliseconds (rounded to the nearest tick at the
// kernel's configured TickHz), returning when the count reaches zero.
// Delay(0) is a no-op, per spec.md §4.4.
func (h *Task) Delay(ms uint32) error {
	if !h.valid() {
		return ErrBadParam
	}
	if ms == 0 {
		return nil
	}
	t := h.t
	k := h.k
	ticks := int((uint64(ms)*uint64(k.cfg.TickHz) + 500) / 1000)
	if ticks <= 0 {
		ticks = 1
	}
	cs := k.enterCritical()
	t.state = stateDelayed
	t.delayRemaining = ticks
	cs.exit()
	k.performSwitch(t)
	return nil
}

// Destroy removes the target task. If it is the calling task's own handle,
// it is enqueued on the exited queue and reaped later by the idle task
// (spec.md §7: the idle reaper is the sole authority that frees an exited
// task's resources), and the call never returns: spec.md §4.4 requires
// destroy-of-self to suspend permanently, so the calling goroutine must not
// go on executing whatever code follows this call while the incoming task
// also runs. Otherwise the target is detached from whichever queue holds
// it and its resources are released immediately.
func (k *Kernel) Destroy(h *Task) error {
	if !h.valid() {
		return ErrBadParam
	}
	t := h.t

	cs := k.enterCritical()
	if t == k.active {
		t.state = stateExited
		cs.exit()
		k.performFinalSwitch(t)
		// Unlike the exit trampoline (runTask returning naturally after
		// entry), this call sits beneath arbitrary task code with a live Go
		// call stack above it, so there is no return path that reaches the
		// end of runTask on its own. Park here for good: t.resume is never
		// sent again once t is exited, so the calling goroutine suspends
		// permanently, exactly as spec.md §4.4 requires.
		<-t.resume
		return nil
	}

	switch t.state {
	case stateReady:
		ill.Remove(&k.ready[t.priority], &t.link)
	case stateDelayed:
		ill.Remove(&k.delayed, &t.link)
	case stateBlocked:
		ill.Remove(&k.blocked, &t.link)
	case stateExited:
		// Already disposed into the exited queue (exit trampoline ran, but
		// the idle reaper hasn't freed it yet); spec.md §4.4 lists an
		// exited target as supported, so detach it here and free it now
		// instead of rejecting the call or leaving it for the reaper.
		ill.Remove(&k.exited, &t.link)
	default:
		// stateActive is handled above (the t == k.active branch); reaching
		// here means an unrecognized state, which is genuinely invalid.
		cs.exit()
		return ErrBadParam
	}
	// A task destroyed while mid-Pend — blocked on an infinite timeout or
	// delayed on a finite one (semaphore.go's Pend uses both, depending on
	// timeoutTicks) — still owns a waiter record on some semaphore's wait
	// queue. Reaping it here, regardless of which queue the TCB itself came
	// from, is what keeps spec.md §9's destroy-reaps-its-own-waiter
	// resolution (DESIGN.md) actually in effect for both cases: a ghost
	// waiter left behind would otherwise wedge Semaphore.Destroy forever and
	// hand a later Post a reaped TCB to reschedule.
	w := t.pendingWaiter
	t.pendingWaiter = nil
	cs.exit()
	if w != nil {
		k.reapWaiter(w)
	}
	k.freeTask(t)
	return nil
}

// reapWaiter removes w from its semaphore's wait queue, resolving spec.md
// §9's open question: destroy of a blocked task reaps its own waiter
// record rather than leaving semaphore_destroy permanently refusing a
// semaphore whose only remaining "waiter" no longer exists.
func (k *Kernel) reapWaiter(w *waiter) {
	s := w.sem
	if s == nil {
		return
	}
	s.lock.Lock()
	if w.link.InList() {
		ill.Remove(&s.waitQ, &w.link)
	}
	s.lock.Unlock()
}

func (k *Kernel) freeTask(t *tcb) {
	if t.stackFault && k.log != nil {
		k.log.Append(LogWarn, "reaped a task terminated by stack-guard violation: "+t.name)
	}
	if t.stackOwned {
		k.alloc.Free(t.stack)
	}
	t.reaped = true
}
