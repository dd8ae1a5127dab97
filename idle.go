package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// createIdleTask installs the priority-0 idle task spec.md §4.7 requires
// to exist after start and always be ready to run. It never blocks,
// delays, or exits.
func (k *Kernel) createIdleTask() error {
	stackBytes := k.cfg.IdleStackBytes
	if stackBytes <= 0 {
		stackBytes = 512
	}
	stack, err := k.alloc.Allocate(stackBytes)
	if err != nil {
		return ErrNoMem
	}
	t := &tcb{
		state:      stateReady,
		priority:   0,
		name:       "idle",
		stack:      stack,
		stackOwned: true,
		guardBytes: k.cfg.StackGuardBytes,
		resume:     make(chan struct{}, 1),
	}
	writeGuard(t.stack, t.guardBytes)
	ill.Append(&k.ready[0], t, &t.link)
	k.idle = t
	go k.runIdle(t)
	return nil
}

// runIdle is the idle task's loop: drain the exited queue, free each
// reaped task's resources, flush the console buffer, then "wait for the
// next interrupt" — realized as performSwitch, which parks this goroutine
// whenever some other task is ready, and otherwise re-selects idle itself
// immediately so the loop spins until a tick or a new task gives it
// something to do. On a host build this means idle pegs a CPU core at
// 100% whenever it's the only ready task, since there is no real WFI to
// block on in this model; a baremetal backend's idle task would issue WFI
// instead and actually sleep the core between ticks.
func (k *Kernel) runIdle(t *tcb) {
	<-t.resume
	for {
		k.reapExited()
		k.flushConsole()
		cs := k.enterCritical()
		t.state = stateReady
		cs.exit()
		k.performSwitch(t)
	}
}

// reapExited drains the exited queue under the critical section, checking
// each drained task's stack guard, then frees each drained task's
// resources outside of it, since Allocator.Free
// may be arbitrarily slow and must never run with preemption masked.
func (k *Kernel) reapExited() {
	cs := k.enterCritical()
	var drained []*tcb
	for {
		head := popHead(&k.exited)
		if head == nil {
			break
		}
		k.checkStackGuardLocked(head)
		drained = append(drained, head)
	}
	cs.exit()

	for _, t := range drained {
		k.freeTask(t)
	}
}

func (k *Kernel) flushConsole() {
	if k.log != nil && k.console != nil {
		k.log.Flush(k.console)
	}
}
