package bmos

import "github.com/danieldegrasse/BMOS/internal/ill"

// This file realizes spec.md §4.3's three handler entry points (start,
// switch, tick) as a goroutine-baton execution engine rather than
// Cortex-M4 register-bank save/restore assembly: each tcb owns a resume
// channel of capacity 1, and "switching to" a task means sending on its
// channel while the outgoing task blocks receiving on its own — the
// goroutine's Go stack stands in for the hardware stack frame, parked by
// the Go runtime exactly where the assembly would have stored registers.
// See SPEC_FULL.md §4.3 for the full justification and corpus grounding
// (Nonepf-xv6-in-go's swtch/Context, ysoldak-tinygo's futex Pause/wake).

// switchOut masks preemption, checks the outgoing task's stack guard,
// selects the next active task, and returns it. Callers decide afterward
// whether to park (performSwitch) or let their goroutine end
// (performFinalSwitch).
func (k *Kernel) switchOut(outgoing *tcb) *tcb {
	k.trigger.PendSwitch()
	cs := k.enterCritical()
	k.checkStackGuardLocked(outgoing)
	incoming := k.selectNextActive(outgoing)
	cs.exit()
	return incoming
}

// performSwitch hands off execution to whichever task the scheduler
// selects next, then parks the calling goroutine until it is resumed.
// Must be called from the outgoing task's own goroutine.
func (k *Kernel) performSwitch(outgoing *tcb) {
	incoming := k.switchOut(outgoing)
	if incoming == outgoing {
		return
	}
	incoming.resume <- struct{}{}
	<-outgoing.resume
}

// performFinalSwitch is performSwitch's counterpart for a task that will
// never run again (self-destroy, exit trampoline): it hands off to the
// next task but does not park, letting the calling goroutine return and
// exit instead of leaking a permanently blocked receive.
func (k *Kernel) performFinalSwitch(outgoing *tcb) {
	incoming := k.switchOut(outgoing)
	if incoming != outgoing {
		incoming.resume <- struct{}{}
	}
}

// tick is the periodic tick handler: decrement every delayed TCB's
// remaining count, move to ready any that reached zero, and — if
// preemption is enabled — flag a pending preemption request when some
// priority strictly greater than the active task's has a ready member.
// spec.md §4.3 describes this per-tick full scan directly ("decrement
// every delayed TCB"), so unlike the teacher's delta-list optimization in
// clock.go's InsertDelta, this walks the whole delayed queue every tick;
// the spec's list contract (append/prepend/iterate/remove only, no
// insert-before) does not support delta-ordered insertion, which is the
// grounding for this deliberate simplification (see DESIGN.md).
func (k *Kernel) tick() {
	cs := k.enterCritical()
	defer cs.exit()

	var expired []*tcb
	ill.Iterate(&k.delayed, func(t *tcb) bool {
		t.delayRemaining--
		if t.delayRemaining <= 0 {
			expired = append(expired, t)
		}
		return false
	})
	for _, t := range expired {
		ill.Remove(&k.delayed, &t.link)
		t.state = stateReady
		ill.Append(&k.ready[t.priority], t, &t.link)
	}

	if !k.cfg.Preemption || k.active == nil {
		return
	}
	for p := len(k.ready) - 1; p > k.active.priority; p-- {
		if !k.ready[p].Empty() {
			k.pendingPreempt.Store(true)
			break
		}
	}
}

// runTickLoop drains the configured hal.Clock's tick channel, calling
// tick() for each one. It returns only if the clock closes that channel;
// the host clock's Stop ends tick delivery without closing it, so after
// Stop this goroutine stays parked on the receive. Started by
// (*Kernel).Start as its own goroutine, standing in for the SysTick ISR.
func (k *Kernel) runTickLoop() {
	for range k.clock.Ticks() {
		k.tick()
	}
}
