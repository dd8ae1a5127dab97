package bmos

import (
	"sync/atomic"

	"github.com/danieldegrasse/BMOS/internal/ill"
)

// waiter is the record spec.md §3 calls out as the semaphore's per-waiter
// queue entry, distinct from the TCB's own queue membership: a blocked or
// delayed TCB sits in the kernel's global blocked/delayed queue via its own
// link (for scheduler bookkeeping), while simultaneously being referenced
// by a waiter record on the specific semaphore it is waiting on (for FIFO
// wake order). Grounded on the shape of
// _examples/other_examples/webriots-corio__sema.go's wait queue, adapted
// from a flat deque of tasks to an ill-linked record so a blocked task's
// semaphore membership can be found and reaped independently (see
// (*Kernel).Destroy's handling of a blocked target, resolving spec.md
// §9's open question about who reaps a destroyed task's waiter record).
type waiter struct {
	link ill.Link[waiter]
	task *tcb
	sem  *Semaphore
}

// spinLock is the "low-level lock byte" spec.md §3 mandates for a
// semaphore, realized per design notes §9's explicit direction to replace
// the source's LDREX/STREX pair
// (_examples/original_source/rtos/sys/semaphore/semaphore.c's
// get_semaphore_lock/drop_semaphore_lock) with "the architecture's best
// primitive (an atomic compare-and-swap on the lock byte)".
type spinLock struct {
	state atomic.Uint32
}

func (l *spinLock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
	}
}

func (l *spinLock) Unlock() {
	l.state.Store(0)
}

// Semaphore is a counting or binary semaphore per spec.md §3/§4.5.
type Semaphore struct {
	k      *Kernel
	lock   spinLock
	binary bool
	value  int
	waitQ  ill.List[waiter]
}

// CreateCounting returns a counting semaphore with the given non-negative
// initial value.
func (k *Kernel) CreateCounting(start int) (*Semaphore, error) {
	if start < 0 {
		return nil, ErrBadParam
	}
	return &Semaphore{k: k, value: start}, nil
}

// CreateBinary returns a binary semaphore, forced to an initial value of 0.
func (k *Kernel) CreateBinary() (*Semaphore, error) {
	return &Semaphore{k: k, binary: true, value: 0}, nil
}

// Pend blocks the calling task until the semaphore can be acquired or
// timeoutTicks elapses. Pass InfiniteTimeout to block indefinitely. Must
// be called by the task the handle h identifies (it suspends h's own
// goroutine), matching spec.md §4.5's pend contract.
func (s *Semaphore) Pend(h *Task, timeoutTicks int) error {
	if !h.valid() {
		return ErrBadParam
	}
	h.CheckPreempt()
	k := s.k
	self := h.t

	s.lock.Lock()
	if s.value > 0 {
		s.value--
		s.lock.Unlock()
		return nil
	}
	w := &waiter{task: self, sem: s}
	ill.Append(&s.waitQ, w, &w.link)
	self.pendingWaiter = w
	s.lock.Unlock()

	for {
		cs := k.enterCritical()
		if timeoutTicks == InfiniteTimeout {
			self.state = stateBlocked
			self.blockOn = reasonSemaphore
		} else {
			self.state = stateDelayed
			self.delayRemaining = timeoutTicks
		}
		cs.exit()

		k.performSwitch(self)

		s.lock.Lock()
		if s.value > 0 {
			s.value--
			ill.Remove(&s.waitQ, &w.link)
			self.pendingWaiter = nil
			s.lock.Unlock()
			return nil
		}
		s.lock.Unlock()

		if timeoutTicks != InfiniteTimeout {
			s.lock.Lock()
			if w.link.InList() {
				ill.Remove(&s.waitQ, &w.link)
			}
			self.pendingWaiter = nil
			s.lock.Unlock()
			return ErrTimeout
		}

		// Infinite wait, lost the race for value to a concurrent fast-path
		// pend: re-join the wait queue (post already detached us to wake
		// us) and block again.
		s.lock.Lock()
		if !w.link.InList() {
			ill.Append(&s.waitQ, w, &w.link)
			self.pendingWaiter = w
		}
		s.lock.Unlock()
	}
}

// Post increments the semaphore's value (saturating at 1 for binary
// semaphores) and, if a task is waiting, wakes the head of the FIFO wait
// queue. It never blocks.
func (s *Semaphore) Post() error {
	s.lock.Lock()
	if s.binary && s.value == 1 {
		// Already signaled; no-op per spec.md §4.5.
	} else {
		s.value++
	}
	var woken *waiter
	if head := ill.GetHead(&s.waitQ); head != nil {
		ill.Remove(&s.waitQ, &head.link)
		woken = head
	}
	s.lock.Unlock()

	if woken == nil {
		return nil
	}
	s.k.unblockWaiter(woken.task)
	return nil
}

// Destroy releases the semaphore's resources. Fails with ErrBadParam
// without freeing anything if any task is still waiting, per spec.md
// §3/§4.5.
func (s *Semaphore) Destroy() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if !s.waitQ.Empty() {
		return ErrBadParam
	}
	return nil
}

// unblockWaiter moves a task that Post detached from a semaphore's wait
// queue back onto the ready queue, canceling a delay if it was waiting
// with a timeout.
func (k *Kernel) unblockWaiter(t *tcb) {
	cs := k.enterCritical()
	defer cs.exit()
	switch t.state {
	case stateBlocked:
		ill.Remove(&k.blocked, &t.link)
	case stateDelayed:
		ill.Remove(&k.delayed, &t.link)
	default:
		// Already moved (e.g. raced with a timeout at the same tick); the
		// waiter's own Pend loop will observe the posted value directly.
		return
	}
	t.state = stateReady
	ill.Append(&k.ready[t.priority], t, &t.link)
}
