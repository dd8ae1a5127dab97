package bmos

// CriticalSection is a scoped acquisition of the kernel's preemption mask,
// guaranteeing release on every exit path via defer, per spec.md §4.8.
// Grounded on _examples/original_source/rtos/sys/isr/isr.h's
// mask_irq/unmask_irq and the teacher's intutils.go Disable/Restore naming.
//
// Usage:
//
//	cs := k.enterCritical()
//	defer cs.exit()
type CriticalSection struct {
	k *Kernel
}

// enterCritical masks preemption and returns a CriticalSection whose exit
// releases it. Every mutation of the ready/delayed/blocked/exited queues
// from thread mode must be bracketed this way.
func (k *Kernel) enterCritical() CriticalSection {
	k.mu.Lock()
	return CriticalSection{k: k}
}

// exit releases the critical section. Acting on a pending preemption
// request is left to the active task's own next checkpoint (sched.go's
// CheckPreempt): only the goroutine that owns the active TCB may legally
// park it on the switch baton, so exit itself never forces a switch. The
// teacher's resched.go ReschedCntl carries a Defer/Attempt nesting counter
// for its equivalent of this release point; that counter has no
// counterpart here, since k.mu.Lock/Unlock already nest correctly on its
// own and nothing downstream needs to know the nesting depth.
func (cs CriticalSection) exit() {
	k := cs.k
	k.mu.Unlock()
}
