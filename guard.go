package bmos

import "fmt"

// checkStackGuardLocked verifies the sentinel pad spec.md §4.6 describes
// is intact. Must be called with the critical section held. On corruption
// it marks the task exited instead of whatever disposal its prior state
// would have dictated — selectNextActive then files it straight into the
// exited queue for the idle reaper, which is how "the kernel terminates
// the offending task (destroy + switch)" is realized here: termination is
// just a forced state transition plus the switch already in flight.
func (k *Kernel) checkStackGuardLocked(t *tcb) {
	if t == nil || t.guardBytes <= 0 || t.stackFault {
		return
	}
	if !guardIntact(t.stack, t.guardBytes) {
		t.stackFault = true
		t.state = stateExited
		if k.log != nil {
			k.log.Append(LogError, fmt.Sprintf("stack overflow detected in task %q", t.name))
		}
	}
}
